package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/AdamBeresnev/spread-pool/internal/bracket"
	"github.com/AdamBeresnev/spread-pool/internal/events"
	"github.com/AdamBeresnev/spread-pool/internal/metrics"
	"github.com/AdamBeresnev/spread-pool/internal/store"
)

// ProgressionService finalizes games and moves winners and owners forward
// through the bracket.
type ProgressionService struct {
	db      *sqlx.DB
	stores  *store.Stores
	policy  bracket.PushPolicy
	events  events.Publisher
	metrics *metrics.Metrics
	logger  *slog.Logger
	now     func() time.Time
}

func NewProgressionService(db *sqlx.DB, stores *store.Stores, policy bracket.PushPolicy) *ProgressionService {
	return &ProgressionService{
		db:     db,
		stores: stores,
		policy: policy,
		events: events.Discard{},
		logger: slog.Default(),
		now:    time.Now,
	}
}

func (s *ProgressionService) WithEvents(p events.Publisher) *ProgressionService {
	s.events = p
	return s
}

func (s *ProgressionService) WithMetrics(m *metrics.Metrics) *ProgressionService {
	s.metrics = m
	return s
}

func (s *ProgressionService) WithLogger(l *slog.Logger) *ProgressionService {
	s.logger = l
	return s
}

func (s *ProgressionService) Policy() bracket.PushPolicy {
	return s.policy
}

// Finalize records a finished game. The game goes final, the winning team
// advances into its next slot, and the owner of whichever slot covered the
// spread becomes the advancing team's owner, all in one transaction. Calling
// it again on a final game returns the stored result and writes nothing.
func (s *ProgressionService) Finalize(ctx context.Context, gameID uuid.UUID, in bracket.FinalizeInput) (*bracket.FinalizeResult, error) {
	start := time.Now()
	res, decision, err := s.finalize(ctx, gameID, in)
	if err != nil {
		s.metrics.Rejected(err)
		s.logger.Warn("Finalize rejected", slog.String("game_id", gameID.String()), slog.Any("error", err))
		return nil, err
	}

	if decision == nil {
		s.metrics.Replayed()
		if res.ScoreA != in.ScoreA || res.ScoreB != in.ScoreB {
			s.logger.Warn("Finalize replayed with different scores; kept the stored result",
				slog.String("game_id", gameID.String()),
				slog.String("stored", fmt.Sprintf("%d-%d", res.ScoreA, res.ScoreB)),
				slog.String("given", fmt.Sprintf("%d-%d", in.ScoreA, in.ScoreB)),
			)
		} else {
			s.logger.Info("Finalize replayed", slog.String("game_id", gameID.String()))
		}
		return res, nil
	}

	s.metrics.Finalized(res.Round, decision.OwnerChanged())
	s.metrics.ObserveDuration(time.Since(start).Seconds())
	s.logger.Info("Game finalized",
		slog.String("game_id", res.GameID.String()),
		slog.Int("round", int(res.Round)),
		slog.String("team_winner_id", res.TeamWinnerID.String()),
		slog.String("owner_winner_id", res.OwnerWinnerID.String()),
		slog.Bool("owner_changed", decision.OwnerChanged()),
		slog.Bool("champion", res.Champion),
	)

	if err := s.events.Publish(ctx, events.TopicGameFinalized, res); err != nil {
		s.logger.Error("Failed to publish finalized game", slog.String("game_id", gameID.String()), slog.Any("error", err))
	}
	return res, nil
}

// finalize returns a nil decision for a replay.
func (s *ProgressionService) finalize(ctx context.Context, gameID uuid.UUID, in bracket.FinalizeInput) (*bracket.FinalizeResult, *bracket.Decision, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback()

	game, err := s.stores.Games.GetGame(ctx, tx, gameID)
	if err != nil {
		return nil, nil, err
	}
	if game.IsFinal() {
		res, err := bracket.ResultOf(game)
		return res, nil, err
	}

	if in.Spread == nil {
		in.Spread = game.Spread
	}

	teamA, err := s.slotTeam(ctx, tx, game, bracket.SlotA)
	if err != nil {
		return nil, nil, err
	}
	teamB, err := s.slotTeam(ctx, tx, game, bracket.SlotB)
	if err != nil {
		return nil, nil, err
	}

	decision, err := bracket.Decide(game, teamA, teamB, in, s.policy)
	if err != nil {
		return nil, nil, err
	}

	games, err := s.stores.Games.ListGames(ctx, tx, game.Year, store.GameFilter{})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load bracket: %w", err)
	}
	graph, err := bracket.NewGraph(game.Year, games)
	if err != nil {
		return nil, nil, err
	}
	link, err := graph.NextSlotFor(game.ID)
	if err != nil {
		return nil, nil, err
	}

	decision.Apply(game, in, s.now().UTC())
	saved, err := s.stores.Games.SaveFinal(ctx, tx, game)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to save game: %w", err)
	}
	if !saved {
		return nil, nil, bracket.Integrity(nil, "%s was finalized concurrently", game.Label())
	}

	if err := s.recordAdvance(ctx, tx, game, decision); err != nil {
		return nil, nil, err
	}

	if link != nil {
		if err := s.fillNext(ctx, tx, graph, link, decision); err != nil {
			return nil, nil, err
		}
	} else {
		if err := s.stores.Tournaments.SetChampion(ctx, tx, game.Year, decision.WinnerTeamID, decision.OwnerWinnerID); err != nil {
			return nil, nil, fmt.Errorf("failed to record champion: %w", err)
		}
	}

	res, err := bracket.ResultOf(game)
	if err != nil {
		return nil, nil, err
	}
	return res, decision, tx.Commit()
}

func (s *ProgressionService) slotTeam(ctx context.Context, tx *sqlx.Tx, game *bracket.Game, slot bracket.Slot) (*bracket.Team, error) {
	id := game.TeamIn(slot)
	if id == nil {
		return nil, nil
	}
	team, err := s.stores.Teams.GetTeam(ctx, tx, *id)
	if errors.Is(err, bracket.ErrTeamNotFound) {
		return nil, bracket.Integrity(bracket.ErrMalformedBracket, "slot %s of %s holds unknown team %s", slot, game.Label(), *id)
	}
	return team, err
}

// recordAdvance appends the ownership log entry for the advancing team. The
// (team, round) index turns a second advance from the same round into an
// integrity error.
func (s *ProgressionService) recordAdvance(ctx context.Context, tx *sqlx.Tx, game *bracket.Game, d *bracket.Decision) error {
	round := game.Round
	gameID := game.ID
	from := d.PreviousOwnerID
	entry := &bracket.OwnershipTransfer{
		ID:          uuid.New(),
		Year:        game.Year,
		TeamID:      d.WinnerTeamID,
		GameID:      &gameID,
		Round:       &round,
		Kind:        bracket.TransferAdvance,
		FromOwnerID: &from,
		ToOwnerID:   d.OwnerWinnerID,
	}
	if err := s.stores.Transfers.Append(ctx, tx, entry); err != nil {
		if store.IsUniqueViolation(err) {
			return bracket.Integrity(bracket.ErrSlotConflict, "team %s already advanced out of the %s", d.WinnerTeamID, round)
		}
		return fmt.Errorf("failed to record ownership: %w", err)
	}
	return nil
}

func (s *ProgressionService) fillNext(ctx context.Context, tx *sqlx.Tx, graph *bracket.Graph, link *bracket.Link, d *bracket.Decision) error {
	next, ok := graph.Game(link.NextGameID)
	if !ok {
		return bracket.Integrity(bracket.ErrGameNotFound, "next game %s is missing", link.NextGameID)
	}

	if current := next.TeamIn(link.Slot); current != nil && *current != d.WinnerTeamID {
		return bracket.Integrity(bracket.ErrSlotConflict, "slot %s of %s already holds team %s", link.Slot, next.Label(), *current)
	}
	if next.IsFinal() {
		return bracket.Integrity(bracket.ErrSlotConflict, "%s is already final", next.Label())
	}

	owner := d.OwnerWinnerID
	next.Fill(link.Slot, d.WinnerTeamID, &owner)
	if err := s.stores.Games.UpdateSlots(ctx, tx, next); err != nil {
		return fmt.Errorf("failed to fill next game: %w", err)
	}
	return nil
}

// SetSpread stores the pre-game line. A nil spread clears it.
func (s *ProgressionService) SetSpread(ctx context.Context, gameID uuid.UUID, spread *float64) (*bracket.Game, error) {
	if err := bracket.ValidateSpread(spread); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	game, err := s.stores.Games.GetGame(ctx, tx, gameID)
	if err != nil {
		return nil, err
	}
	if game.IsFinal() {
		return nil, bracket.Integrity(nil, "%s is final; its line can no longer change", game.Label())
	}
	if err := s.stores.Games.SetSpread(ctx, tx, gameID, spread); err != nil {
		return nil, err
	}
	game.Spread = spread

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	s.logger.Info("Spread set", slog.String("game_id", gameID.String()), slog.Any("spread", spread))
	return game, nil
}

// UpdateLiveScore records an in-game score. Ties are fine mid-game.
func (s *ProgressionService) UpdateLiveScore(ctx context.Context, gameID uuid.UUID, scoreA, scoreB int) (*bracket.Game, error) {
	if scoreA < 0 {
		return nil, bracket.Invalid("score_a", "must not be negative")
	}
	if scoreB < 0 {
		return nil, bracket.Invalid("score_b", "must not be negative")
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	game, err := s.stores.Games.GetGame(ctx, tx, gameID)
	if err != nil {
		return nil, err
	}
	switch game.Status {
	case bracket.GameFinal:
		return nil, bracket.Integrity(nil, "%s is already final", game.Label())
	case bracket.GameAwaiting:
		return nil, bracket.Integrity(bracket.ErrOutOfOrder, "%s has not been set yet", game.Label())
	}
	if err := s.stores.Games.SetLiveScore(ctx, tx, gameID, scoreA, scoreB); err != nil {
		return nil, err
	}
	game.ScoreA, game.ScoreB = &scoreA, &scoreB
	game.Status = bracket.GameInProgress

	return game, tx.Commit()
}

// LiveLead says whose owner is covering an in-progress game right now.
type LiveLead struct {
	GameID  uuid.UUID     `json:"game_id"`
	Covered bool          `json:"covered"`
	Slot    bracket.Slot  `json:"slot,omitempty"`
	OwnerID *uuid.UUID    `json:"owner_id,omitempty"`
	Game    *bracket.Game `json:"game"`
}

func (s *ProgressionService) LiveLeader(ctx context.Context, gameID uuid.UUID) (*LiveLead, error) {
	game, err := s.stores.Games.GetGame(ctx, nil, gameID)
	if err != nil {
		return nil, err
	}
	slot, owner, ok := bracket.LiveLeader(game, s.policy)
	return &LiveLead{GameID: gameID, Covered: ok, Slot: slot, OwnerID: owner, Game: game}, nil
}
