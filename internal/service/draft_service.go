package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/AdamBeresnev/spread-pool/internal/bracket"
	"github.com/AdamBeresnev/spread-pool/internal/simulate"
	"github.com/AdamBeresnev/spread-pool/internal/store"
)

// PoolSize is the number of participants a random draft needs: one team from
// each region per participant.
const PoolSize = bracket.TeamsPerRegion

type DraftService struct {
	db     *sqlx.DB
	stores *store.Stores
	logger *slog.Logger
}

func NewDraftService(db *sqlx.DB, stores *store.Stores) *DraftService {
	return &DraftService{db: db, stores: stores, logger: slog.Default()}
}

type DraftPick struct {
	Participant bracket.Participant `json:"participant"`
	Team        bracket.Team        `json:"team"`
}

// RandomDraft deals every team of year to the pool so that each participant
// holds exactly one team per region, then starts the tournament.
func (s *DraftService) RandomDraft(ctx context.Context, year int, rng simulate.Rand) ([]DraftPick, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	participants, err := s.stores.Participants.ListParticipants(ctx, tx)
	if err != nil {
		return nil, err
	}
	if len(participants) != PoolSize {
		return nil, bracket.Invalid("participants", fmt.Sprintf("have %d, a draft needs %d", len(participants), PoolSize))
	}

	teams, err := s.stores.Teams.ListTeams(ctx, tx, year)
	if err != nil {
		return nil, err
	}
	if len(teams) != PoolSize*len(bracket.Regions) {
		return nil, bracket.Invalid("year", fmt.Sprintf("%d has %d teams; seed it first", year, len(teams)))
	}

	byRegion := make(map[bracket.Region][]bracket.Team, len(bracket.Regions))
	for _, t := range teams {
		if t.CurrentOwnerID != nil {
			return nil, bracket.Invalid("year", fmt.Sprintf("%d is already drafted", year))
		}
		byRegion[t.Region] = append(byRegion[t.Region], t)
	}

	var picks []DraftPick
	for _, region := range bracket.Regions {
		order := shuffled(len(participants), rng)
		for i, team := range byRegion[region] {
			p := participants[order[i]]
			if err := s.draft(ctx, tx, &team, p.ID); err != nil {
				return nil, err
			}
			picks = append(picks, DraftPick{Participant: p, Team: team})
		}
	}

	if err := s.stores.Tournaments.SetStatus(ctx, tx, year, bracket.TournamentStarted); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	s.logger.Info("Draft complete", slog.Int("year", year), slog.Int("picks", len(picks)))
	return picks, nil
}

// Assign hands one undrafted team to a participant before the team has played.
func (s *DraftService) Assign(ctx context.Context, teamID, participantID uuid.UUID) (*bracket.Team, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	team, err := s.stores.Teams.GetTeam(ctx, tx, teamID)
	if err != nil {
		return nil, err
	}
	if _, err := s.stores.Participants.GetParticipant(ctx, tx, participantID); err != nil {
		return nil, err
	}
	if team.CurrentOwnerID != nil {
		return nil, bracket.Invalid("team", fmt.Sprintf("%s is already drafted; record a correction instead", team.Name))
	}

	played, err := s.stores.Games.ListGames(ctx, tx, team.Year, store.GameFilter{TeamID: &teamID, Status: bracket.GameFinal})
	if err != nil {
		return nil, err
	}
	if len(played) > 0 {
		return nil, bracket.Invalid("team", fmt.Sprintf("%s has already played", team.Name))
	}

	if err := s.draft(ctx, tx, team, participantID); err != nil {
		return nil, err
	}
	return team, tx.Commit()
}

func (s *DraftService) draft(ctx context.Context, tx *sqlx.Tx, team *bracket.Team, ownerID uuid.UUID) error {
	if err := s.stores.Teams.SetInitialOwner(ctx, tx, team.ID, ownerID); err != nil {
		return err
	}
	entry := &bracket.OwnershipTransfer{
		ID:        uuid.New(),
		Year:      team.Year,
		TeamID:    team.ID,
		Kind:      bracket.TransferDraft,
		ToOwnerID: ownerID,
	}
	if err := s.stores.Transfers.Append(ctx, tx, entry); err != nil {
		return fmt.Errorf("failed to record draft of %s: %w", team.Name, err)
	}
	if err := s.stores.Games.RefreshOwnerSnapshot(ctx, tx, team.ID, ownerID); err != nil {
		return err
	}
	team.InitialOwnerID = &ownerID
	team.CurrentOwnerID = &ownerID
	return nil
}

// shuffled returns a random permutation of [0, n).
func shuffled(n int, rng simulate.Rand) []int {
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	for i := n - 1; i > 0; i-- {
		j := rng.Number(0, i)
		order[i], order[j] = order[j], order[i]
	}
	return order
}
