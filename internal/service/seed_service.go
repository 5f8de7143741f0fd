package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/jmoiron/sqlx"

	"github.com/AdamBeresnev/spread-pool/internal/bracket"
	"github.com/AdamBeresnev/spread-pool/internal/store"
)

type SeedService struct {
	db     *sqlx.DB
	stores *store.Stores
	logger *slog.Logger
}

func NewSeedService(db *sqlx.DB, stores *store.Stores) *SeedService {
	return &SeedService{db: db, stores: stores, logger: slog.Default()}
}

type SeedResult struct {
	Year  int `json:"year"`
	Teams int `json:"teams"`
	Games int `json:"games"`
}

// SeedYear loads a 64-team field for year and lays out its 63 linked games
// with the round-of-64 matchups in place. An existing year is only replaced
// when replace is set, and everything recorded for it is discarded.
func (s *SeedService) SeedYear(ctx context.Context, year int, seeds []bracket.TeamSeed, replace bool) (*SeedResult, error) {
	if err := bracket.ValidateSeeds(seeds); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	existing, err := s.stores.Teams.CountTeams(ctx, tx, year)
	if err != nil {
		return nil, err
	}
	if existing > 0 && !replace {
		return nil, bracket.Invalid("year", fmt.Sprintf("%d is already seeded", year))
	}
	if err := s.stores.Tournaments.DeleteYear(ctx, tx, year); err != nil {
		return nil, err
	}

	if err := s.stores.Tournaments.CreateTournament(ctx, tx, &bracket.Tournament{Year: year, Status: bracket.TournamentDraft}); err != nil {
		return nil, fmt.Errorf("failed to create tournament: %w", err)
	}

	teams := make([]bracket.Team, 0, len(seeds))
	bySeed := make(map[bracket.Region]map[int]uuid.UUID, len(bracket.Regions))
	for _, sd := range seeds {
		region, _ := bracket.ParseRegion(string(sd.Region))
		t := bracket.Team{
			ID:     uuid.New(),
			Year:   year,
			Region: region,
			Seed:   sd.Seed,
			Name:   sd.Name,
			Slug:   slug.Make(sd.Name),
		}
		teams = append(teams, t)
		if bySeed[region] == nil {
			bySeed[region] = make(map[int]uuid.UUID, bracket.TeamsPerRegion)
		}
		bySeed[region][sd.Seed] = t.ID
	}
	if err := s.stores.Teams.CreateTeams(ctx, tx, teams); err != nil {
		if store.IsUniqueViolation(err) {
			return nil, bracket.Integrity(bracket.ErrMalformedBracket, "two teams share a slug")
		}
		return nil, fmt.Errorf("failed to create teams: %w", err)
	}

	games := bracket.Layout(year)
	for i := range games {
		g := &games[i]
		if g.Round != bracket.RoundOf64 {
			continue
		}
		pair := bracket.FirstRoundSeeds[g.Position]
		g.Fill(bracket.SlotA, bySeed[g.Region][pair[0]], nil)
		g.Fill(bracket.SlotB, bySeed[g.Region][pair[1]], nil)
	}
	if err := s.stores.Games.CreateGames(ctx, tx, games); err != nil {
		return nil, fmt.Errorf("failed to create games: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	s.logger.Info("Year seeded", slog.Int("year", year), slog.Int("teams", len(teams)), slog.Int("games", len(games)))
	return &SeedResult{Year: year, Teams: len(teams), Games: len(games)}, nil
}
