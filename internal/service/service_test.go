package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/AdamBeresnev/spread-pool/internal/bracket"
	"github.com/AdamBeresnev/spread-pool/internal/db"
	"github.com/AdamBeresnev/spread-pool/internal/store"
)

const testYear = 2024

func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	database, err := db.OpenMigrated(filepath.Join(t.TempDir(), "service.db"))
	require.NoError(t, err, "Failed to open test DB")
	t.Cleanup(func() { database.Close() })
	return database
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testField() []bracket.TeamSeed {
	var seeds []bracket.TeamSeed
	for _, r := range bracket.Regions {
		for s := 1; s <= bracket.TeamsPerRegion; s++ {
			seeds = append(seeds, bracket.TeamSeed{Name: fmt.Sprintf("%s Team %d", r, s), Seed: s, Region: r})
		}
	}
	return seeds
}

type fixture struct {
	db           *sqlx.DB
	stores       *store.Stores
	progression  *ProgressionService
	participants []bracket.Participant
}

// newFixture seeds testYear and drafts it to sixteen participants.
func newFixture(t *testing.T, policy bracket.PushPolicy) *fixture {
	t.Helper()
	ctx := context.Background()

	database := setupTestDB(t)
	stores := store.New(database)

	_, err := NewSeedService(database, stores).SeedYear(ctx, testYear, testField(), false)
	require.NoError(t, err)

	people := NewParticipantService(database, stores)
	var participants []bracket.Participant
	for i := 1; i <= PoolSize; i++ {
		p, err := people.Create(ctx, fmt.Sprintf("Participant %02d", i), "")
		require.NoError(t, err)
		participants = append(participants, *p)
	}

	_, err = NewDraftService(database, stores).RandomDraft(ctx, testYear, gofakeit.New(1))
	require.NoError(t, err)

	progression := NewProgressionService(database, stores, policy).WithLogger(quietLogger())
	return &fixture{db: database, stores: stores, progression: progression, participants: participants}
}

func (f *fixture) graph(t *testing.T) *bracket.Graph {
	t.Helper()
	games, err := f.stores.Games.ListGames(context.Background(), nil, testYear, store.GameFilter{})
	require.NoError(t, err)
	g, err := bracket.NewGraph(testYear, games)
	require.NoError(t, err)
	return g
}

func (f *fixture) gameAt(t *testing.T, k bracket.GameKey) *bracket.Game {
	t.Helper()
	g, ok := f.graph(t).At(k)
	require.True(t, ok, "no game at %s", k)
	return g
}

func (f *fixture) team(t *testing.T, id uuid.UUID) *bracket.Team {
	t.Helper()
	team, err := f.stores.Teams.GetTeam(context.Background(), nil, id)
	require.NoError(t, err)
	return team
}

func (f *fixture) transferCount(t *testing.T) int {
	t.Helper()
	log, err := f.stores.Transfers.ListForYear(context.Background(), nil, testYear)
	require.NoError(t, err)
	return len(log)
}

// r64 returns the round-of-64 game at position in East.
func (f *fixture) r64(t *testing.T, position int) *bracket.Game {
	return f.gameAt(t, bracket.GameKey{Round: bracket.RoundOf64, Region: bracket.East, Position: position})
}
