package store

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/AdamBeresnev/spread-pool/internal/bracket"
	"github.com/AdamBeresnev/spread-pool/internal/db"
	"github.com/AdamBeresnev/spread-pool/internal/utils"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testYear = 2025

func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	database, err := db.OpenMigrated(filepath.Join(t.TempDir(), "store.db"))
	require.NoError(t, err, "Failed to open test DB")
	t.Cleanup(func() { database.Close() })
	return database
}

func createParticipant(t *testing.T, database *sqlx.DB, name string) *bracket.Participant {
	t.Helper()
	p := &bracket.Participant{ID: uuid.New(), Name: name}
	require.NoError(t, NewParticipantStore(database).CreateParticipant(context.Background(), nil, p))
	return p
}

func seedTeams(t *testing.T, database *sqlx.DB) []bracket.Team {
	t.Helper()
	var teams []bracket.Team
	for _, region := range bracket.Regions {
		for seed := 1; seed <= 16; seed++ {
			name := fmt.Sprintf("%s %d", region, seed)
			teams = append(teams, bracket.Team{
				ID:     uuid.New(),
				Year:   testYear,
				Region: region,
				Seed:   seed,
				Name:   name,
				Slug:   fmt.Sprintf("%s-%d", region, seed),
			})
		}
	}
	require.NoError(t, NewTeamStore(database).CreateTeams(context.Background(), nil, teams))
	return teams
}

func TestParticipantStore(t *testing.T) {
	database := setupTestDB(t)
	ctx := context.Background()
	s := NewParticipantStore(database)

	alice := createParticipant(t, database, "Alice")
	createParticipant(t, database, "Bob")

	got, err := s.GetParticipant(ctx, nil, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.Name)

	byName, err := s.GetParticipantByName(ctx, nil, "alice")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, byName.ID)

	_, err = s.GetParticipant(ctx, nil, uuid.New())
	assert.ErrorIs(t, err, bracket.ErrParticipantNotFound)

	err = s.CreateParticipant(ctx, nil, &bracket.Participant{ID: uuid.New(), Name: "Alice"})
	assert.True(t, IsUniqueViolation(err), "duplicate name should violate UNIQUE, got %v", err)

	all, err := s.ListParticipants(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestTeamCurrentOwnerFollowsLog(t *testing.T) {
	database := setupTestDB(t)
	ctx := context.Background()
	teams := NewTeamStore(database)
	transfers := NewTransferStore(database)

	alice := createParticipant(t, database, "Alice")
	bob := createParticipant(t, database, "Bob")
	seeded := seedTeams(t, database)
	team := seeded[0]

	got, err := teams.GetTeam(ctx, nil, team.ID)
	require.NoError(t, err)
	assert.Nil(t, got.CurrentOwnerID, "undrafted team has no owner")

	require.NoError(t, transfers.Append(ctx, nil, &bracket.OwnershipTransfer{
		ID: uuid.New(), Year: testYear, TeamID: team.ID, Kind: bracket.TransferDraft, ToOwnerID: alice.ID,
	}))
	second := &bracket.OwnershipTransfer{
		ID: uuid.New(), Year: testYear, TeamID: team.ID, Kind: bracket.TransferCorrection,
		FromOwnerID: &alice.ID, ToOwnerID: bob.ID, Note: utils.Ptr("wrong pick"),
	}
	require.NoError(t, transfers.Append(ctx, nil, second))
	assert.NotZero(t, second.Seq)
	assert.False(t, second.CreatedAt.IsZero())

	got, err = teams.GetTeam(ctx, nil, team.ID)
	require.NoError(t, err)
	require.NotNil(t, got.CurrentOwnerID)
	assert.Equal(t, bob.ID, *got.CurrentOwnerID)

	owned, err := teams.TeamsOwnedBy(ctx, nil, testYear, bob.ID)
	require.NoError(t, err)
	require.Len(t, owned, 1)
	assert.Equal(t, team.ID, owned[0].ID)

	owned, err = teams.TeamsOwnedBy(ctx, nil, testYear, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, owned)

	log, err := transfers.ListForTeam(ctx, nil, team.ID)
	require.NoError(t, err)
	require.Len(t, log, 2)
	assert.Equal(t, bob.ID, *bracket.CurrentOwner(log))
}

func TestAdvanceTransferIsUniquePerRound(t *testing.T) {
	database := setupTestDB(t)
	ctx := context.Background()
	transfers := NewTransferStore(database)

	alice := createParticipant(t, database, "Alice")
	team := seedTeams(t, database)[0]
	round := bracket.RoundOf64

	entry := func() *bracket.OwnershipTransfer {
		return &bracket.OwnershipTransfer{
			ID: uuid.New(), Year: testYear, TeamID: team.ID, Round: &round,
			Kind: bracket.TransferAdvance, FromOwnerID: &alice.ID, ToOwnerID: alice.ID,
		}
	}

	require.NoError(t, transfers.Append(ctx, nil, entry()))
	err := transfers.Append(ctx, nil, entry())
	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err))

	got, err := transfers.AdvanceFor(ctx, nil, team.ID, round)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, round, *got.Round)

	none, err := transfers.AdvanceFor(ctx, nil, team.ID, bracket.RoundOf32)
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestGameStoreRoundTrip(t *testing.T) {
	database := setupTestDB(t)
	ctx := context.Background()
	games := NewGameStore(database)

	layout := bracket.Layout(testYear)
	require.NoError(t, games.CreateGames(ctx, nil, layout))

	all, err := games.ListGames(ctx, nil, testYear, GameFilter{})
	require.NoError(t, err)
	require.Len(t, all, 63)

	graph, err := bracket.NewGraph(testYear, all)
	require.NoError(t, err, "stored links must survive a round trip")
	assert.Equal(t, bracket.Championship, graph.Championship().Round)

	east, err := games.ListGames(ctx, nil, testYear, GameFilter{Round: bracket.RoundOf64, Region: bracket.East})
	require.NoError(t, err)
	require.Len(t, east, 8)
	for i, g := range east {
		assert.Equal(t, i, g.Position)
		assert.Equal(t, bracket.GameScheduled, g.Status)
	}

	national, err := games.ListGames(ctx, nil, testYear, GameFilter{Round: bracket.FinalFour})
	require.NoError(t, err)
	require.Len(t, national, 2)
	assert.Equal(t, bracket.Region(""), national[0].Region)
}

func TestSaveFinalOnlyOnce(t *testing.T) {
	database := setupTestDB(t)
	ctx := context.Background()
	games := NewGameStore(database)

	alice := createParticipant(t, database, "Alice")
	teams := seedTeams(t, database)
	layout := bracket.Layout(testYear)
	require.NoError(t, games.CreateGames(ctx, nil, layout))

	var first bracket.Game
	for _, g := range layout {
		if g.Round == bracket.RoundOf64 {
			first = g
			break
		}
	}
	first.Fill(bracket.SlotA, teams[0].ID, &alice.ID)
	first.Fill(bracket.SlotB, teams[15].ID, &alice.ID)
	require.NoError(t, games.UpdateSlots(ctx, nil, &first))

	spread := 12.5
	require.NoError(t, games.SetSpread(ctx, nil, first.ID, &spread))
	require.NoError(t, games.SetLiveScore(ctx, nil, first.ID, 40, 30))

	live, err := games.GetGame(ctx, nil, first.ID)
	require.NoError(t, err)
	assert.Equal(t, bracket.GameInProgress, live.Status)
	assert.Equal(t, 40, *live.ScoreA)

	decision := &bracket.Decision{
		TeamWinner:      bracket.SlotA,
		WinnerTeamID:    teams[0].ID,
		Coverage:        bracket.Coverage{Slot: bracket.SlotA, AdjustedMargin: 7.5},
		OwnerWinnerID:   alice.ID,
		PreviousOwnerID: alice.ID,
	}
	decision.Apply(live, bracket.FinalizeInput{ScoreA: 80, ScoreB: 60, Spread: &spread}, time.Now().UTC())

	ok, err := games.SaveFinal(ctx, nil, live)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = games.SaveFinal(ctx, nil, live)
	require.NoError(t, err)
	assert.False(t, ok, "a final game cannot be finalized again")

	stored, err := games.GetGame(ctx, nil, first.ID)
	require.NoError(t, err)
	assert.Equal(t, bracket.GameFinal, stored.Status)
	assert.Equal(t, bracket.SlotA, *stored.TeamWinner)
	assert.Equal(t, alice.ID, *stored.OwnerWinnerID)
	require.NotNil(t, stored.FinalizedAt)

	err = games.SetSpread(ctx, nil, first.ID, nil)
	assert.True(t, bracket.IsIntegrity(err))

	_, err = games.GetGame(ctx, nil, uuid.New())
	assert.ErrorIs(t, err, bracket.ErrGameNotFound)
}

func TestTournamentStore(t *testing.T) {
	database := setupTestDB(t)
	ctx := context.Background()
	tournaments := NewTournamentStore(database)
	games := NewGameStore(database)

	alice := createParticipant(t, database, "Alice")
	teams := seedTeams(t, database)
	require.NoError(t, games.CreateGames(ctx, nil, bracket.Layout(testYear)))
	require.NoError(t, tournaments.CreateTournament(ctx, nil, &bracket.Tournament{Year: testYear, Status: bracket.TournamentDraft}))

	require.NoError(t, tournaments.SetStatus(ctx, nil, testYear, bracket.TournamentStarted))
	require.NoError(t, tournaments.SetChampion(ctx, nil, testYear, teams[0].ID, alice.ID))

	got, err := tournaments.GetTournament(ctx, nil, testYear)
	require.NoError(t, err)
	assert.Equal(t, bracket.TournamentCompleted, got.Status)
	assert.Equal(t, teams[0].ID, *got.ChampionTeamID)

	_, err = tournaments.GetTournament(ctx, nil, 1999)
	assert.ErrorIs(t, err, ErrTournamentNotFound)

	tx, err := database.BeginTxx(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, tournaments.DeleteYear(ctx, tx, testYear))
	require.NoError(t, tx.Commit())

	n, err := NewTeamStore(database).CountTeams(ctx, nil, testYear)
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = NewParticipantStore(database).GetParticipant(ctx, nil, alice.ID)
	assert.NoError(t, err, "participants outlive a year")
}
