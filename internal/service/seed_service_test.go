package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AdamBeresnev/spread-pool/internal/bracket"
	"github.com/AdamBeresnev/spread-pool/internal/store"
)

func TestSeedYear(t *testing.T) {
	database := setupTestDB(t)
	stores := store.New(database)
	ctx := context.Background()
	seeder := NewSeedService(database, stores)

	res, err := seeder.SeedYear(ctx, testYear, testField(), false)
	require.NoError(t, err)
	assert.Equal(t, &SeedResult{Year: testYear, Teams: 64, Games: 63}, res)

	games, err := stores.Games.ListGames(ctx, nil, testYear, store.GameFilter{})
	require.NoError(t, err)
	graph, err := bracket.NewGraph(testYear, games)
	require.NoError(t, err)

	for _, region := range bracket.Regions {
		for pos, pair := range bracket.FirstRoundSeeds {
			g, ok := graph.At(bracket.GameKey{Round: bracket.RoundOf64, Region: region, Position: pos})
			require.True(t, ok)
			a, err := stores.Teams.GetTeam(ctx, nil, *g.SlotATeamID)
			require.NoError(t, err)
			b, err := stores.Teams.GetTeam(ctx, nil, *g.SlotBTeamID)
			require.NoError(t, err)
			assert.Equal(t, [2]int{pair[0], pair[1]}, [2]int{a.Seed, b.Seed})
			assert.Equal(t, region, a.Region)
			assert.Equal(t, bracket.GameScheduled, g.Status)
		}
	}

	team, err := stores.Teams.GetTeamBySeed(ctx, nil, testYear, bracket.Midwest, 11)
	require.NoError(t, err)
	assert.Equal(t, "midwest-team-11", team.Slug)

	tournament, err := stores.Tournaments.GetTournament(ctx, nil, testYear)
	require.NoError(t, err)
	assert.Equal(t, bracket.TournamentDraft, tournament.Status)

	_, err = seeder.SeedYear(ctx, testYear, testField(), false)
	assert.True(t, bracket.IsValidation(err), "reseeding needs replace")

	_, err = seeder.SeedYear(ctx, testYear, testField(), true)
	require.NoError(t, err)
	n, err := stores.Teams.CountTeams(ctx, nil, testYear)
	require.NoError(t, err)
	assert.Equal(t, 64, n)
}

func TestSeedYearRejectsMalformedField(t *testing.T) {
	database := setupTestDB(t)
	stores := store.New(database)

	field := testField()
	field[5].Seed = 1
	_, err := NewSeedService(database, stores).SeedYear(context.Background(), testYear, field, false)
	assert.ErrorIs(t, err, bracket.ErrMalformedBracket)

	n, err := stores.Teams.CountTeams(context.Background(), nil, testYear)
	require.NoError(t, err)
	assert.Zero(t, n)
}
