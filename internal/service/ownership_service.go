package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/AdamBeresnev/spread-pool/internal/bracket"
	"github.com/AdamBeresnev/spread-pool/internal/events"
	"github.com/AdamBeresnev/spread-pool/internal/store"
	"github.com/AdamBeresnev/spread-pool/internal/utils"
)

// OwnershipService is the audited override path. It never edits earlier
// log entries or reopens games.
type OwnershipService struct {
	db     *sqlx.DB
	stores *store.Stores
	events events.Publisher
	logger *slog.Logger
}

func NewOwnershipService(db *sqlx.DB, stores *store.Stores, publisher events.Publisher) *OwnershipService {
	if publisher == nil {
		publisher = events.Discard{}
	}
	return &OwnershipService{db: db, stores: stores, events: publisher, logger: slog.Default()}
}

// Correct moves a team to ownerID by appending a correction entry. The owner
// shown in the team's undecided game follows.
func (s *OwnershipService) Correct(ctx context.Context, teamID, ownerID uuid.UUID, note string) (*bracket.OwnershipTransfer, error) {
	if strings.TrimSpace(note) == "" {
		return nil, bracket.Invalid("note", "a correction needs a reason")
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	team, err := s.stores.Teams.GetTeam(ctx, tx, teamID)
	if err != nil {
		return nil, err
	}
	if _, err := s.stores.Participants.GetParticipant(ctx, tx, ownerID); err != nil {
		return nil, err
	}
	if team.CurrentOwnerID == nil {
		return nil, bracket.Invalid("team", fmt.Sprintf("%s has not been drafted", team.Name))
	}
	if *team.CurrentOwnerID == ownerID {
		return nil, bracket.Invalid("owner_id", fmt.Sprintf("%s already owns %s", ownerID, team.Name))
	}

	entry := &bracket.OwnershipTransfer{
		ID:          uuid.New(),
		Year:        team.Year,
		TeamID:      team.ID,
		Kind:        bracket.TransferCorrection,
		FromOwnerID: team.CurrentOwnerID,
		ToOwnerID:   ownerID,
		Note:        utils.StringOrNil(note),
	}
	if err := s.stores.Transfers.Append(ctx, tx, entry); err != nil {
		return nil, fmt.Errorf("failed to record correction: %w", err)
	}
	if err := s.stores.Games.RefreshOwnerSnapshot(ctx, tx, team.ID, ownerID); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	s.logger.Info("Ownership corrected",
		slog.String("team_id", team.ID.String()),
		slog.String("from", team.CurrentOwnerID.String()),
		slog.String("to", ownerID.String()),
		slog.String("note", note),
	)
	if err := s.events.Publish(ctx, events.TopicOwnershipCorrected, entry); err != nil {
		s.logger.Error("Failed to publish correction", slog.Any("error", err))
	}
	return entry, nil
}

// History lists a team's ownership log, oldest first.
func (s *OwnershipService) History(ctx context.Context, teamID uuid.UUID) ([]bracket.OwnershipTransfer, error) {
	if _, err := s.stores.Teams.GetTeam(ctx, nil, teamID); err != nil {
		return nil, err
	}
	return s.stores.Transfers.ListForTeam(ctx, nil, teamID)
}
