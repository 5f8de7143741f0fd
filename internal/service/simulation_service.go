package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/AdamBeresnev/spread-pool/internal/bracket"
	"github.com/AdamBeresnev/spread-pool/internal/simulate"
	"github.com/AdamBeresnev/spread-pool/internal/store"
)

// ErrNothingToPlay means every game of the year is final.
var ErrNothingToPlay = errors.New("no playable games left")

// SimulationService makes up scores and lines and feeds them to Finalize.
type SimulationService struct {
	progression *ProgressionService
	stores      *store.Stores
	logger      *slog.Logger

	mu  sync.Mutex
	sim *simulate.Simulator
}

func NewSimulationService(progression *ProgressionService, stores *store.Stores, sim *simulate.Simulator) *SimulationService {
	return &SimulationService{progression: progression, stores: stores, sim: sim, logger: slog.Default()}
}

// SimulateGame plays one game. A game without a stored line gets the
// seed-based one.
func (s *SimulationService) SimulateGame(ctx context.Context, gameID uuid.UUID) (*bracket.FinalizeResult, error) {
	game, err := s.stores.Games.GetGame(ctx, nil, gameID)
	if err != nil {
		return nil, err
	}
	if game.IsFinal() {
		return bracket.ResultOf(game)
	}
	if game.Status == bracket.GameAwaiting {
		return nil, bracket.Integrity(bracket.ErrOutOfOrder, "%s cannot be played before its feeder games", game.Label())
	}

	teamA, err := s.team(ctx, game, bracket.SlotA)
	if err != nil {
		return nil, err
	}
	teamB, err := s.team(ctx, game, bracket.SlotB)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	scoreA, scoreB := s.sim.Scores(teamA.Seed, teamB.Seed)
	s.mu.Unlock()

	in := bracket.FinalizeInput{ScoreA: scoreA, ScoreB: scoreB, Spread: game.Spread}
	if in.Spread == nil {
		line := simulate.Spread(teamA.Seed, teamB.Seed)
		in.Spread = &line
	}

	res, err := s.progression.Finalize(ctx, gameID, in)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("Game simulated",
		slog.String("game", game.Label()),
		slog.String("teams", teamA.Name+" v "+teamB.Name),
		slog.Int("score_a", scoreA),
		slog.Int("score_b", scoreB),
	)
	return res, nil
}

func (s *SimulationService) team(ctx context.Context, game *bracket.Game, slot bracket.Slot) (*bracket.Team, error) {
	id := game.TeamIn(slot)
	if id == nil {
		return nil, bracket.Invalid("slot_"+string(slot), "no team in slot")
	}
	return s.stores.Teams.GetTeam(ctx, nil, *id)
}

// SimulateRound plays every unfinished game of a round, in bracket order.
func (s *SimulationService) SimulateRound(ctx context.Context, year int, round bracket.Round) ([]bracket.FinalizeResult, error) {
	if !round.Valid() {
		return nil, bracket.Invalid("round", "not a tournament round")
	}
	games, err := s.stores.Games.ListGames(ctx, nil, year, store.GameFilter{Round: round})
	if err != nil {
		return nil, err
	}

	var results []bracket.FinalizeResult
	for _, g := range games {
		if g.IsFinal() {
			continue
		}
		if err := ctx.Err(); err != nil {
			return results, err
		}
		res, err := s.SimulateGame(ctx, g.ID)
		if err != nil {
			return results, err
		}
		results = append(results, *res)
	}
	return results, nil
}

// SimulateTournament plays whatever is left of year through the championship.
func (s *SimulationService) SimulateTournament(ctx context.Context, year int) ([]bracket.FinalizeResult, error) {
	var results []bracket.FinalizeResult
	for _, r := range bracket.Rounds {
		played, err := s.SimulateRound(ctx, year, r)
		results = append(results, played...)
		if err != nil {
			return results, err
		}
	}
	return results, nil
}

// SimulateNext plays the earliest unfinished game that has both teams.
func (s *SimulationService) SimulateNext(ctx context.Context, year int) (*bracket.FinalizeResult, error) {
	games, err := s.stores.Games.ListGames(ctx, nil, year, store.GameFilter{})
	if err != nil {
		return nil, err
	}
	for _, g := range games {
		if g.Status == bracket.GameScheduled || g.Status == bracket.GameInProgress {
			return s.SimulateGame(ctx, g.ID)
		}
	}
	return nil, ErrNothingToPlay
}
