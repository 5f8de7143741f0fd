package bracket

import (
	"math"
	"testing"
	"time"

	"github.com/AdamBeresnev/spread-pool/internal/utils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type matchup struct {
	game   *Game
	teamA  *Team
	teamB  *Team
	ownerA uuid.UUID
	ownerB uuid.UUID
}

func newMatchup(round Round) matchup {
	ownerA, ownerB := uuid.New(), uuid.New()
	teamA := &Team{ID: uuid.New(), Name: "Favorite U", Seed: 1, CurrentOwnerID: &ownerA}
	teamB := &Team{ID: uuid.New(), Name: "Underdog State", Seed: 16, CurrentOwnerID: &ownerB}
	next := uuid.New()
	slot := SlotB
	game := &Game{
		ID:           uuid.New(),
		Year:         2024,
		Round:        round,
		Region:       East,
		Status:       GameScheduled,
		SlotATeamID:  &teamA.ID,
		SlotBTeamID:  &teamB.ID,
		SlotAOwnerID: &ownerA,
		SlotBOwnerID: &ownerB,
		NextGameID:   &next,
		NextSlot:     &slot,
	}
	return matchup{game: game, teamA: teamA, teamB: teamB, ownerA: ownerA, ownerB: ownerB}
}

func TestDecide_OwnershipDecoupledFromWinner(t *testing.T) {
	m := newMatchup(RoundOf64)

	// slot a favored by 10, wins by 3
	in := FinalizeInput{ScoreA: 73, ScoreB: 70, Spread: utils.Ptr(10.0)}
	d, err := Decide(m.game, m.teamA, m.teamB, in, PushUnderdog)
	require.NoError(t, err)

	assert.Equal(t, SlotA, d.TeamWinner)
	assert.Equal(t, m.teamA.ID, d.WinnerTeamID)
	assert.Equal(t, SlotB, d.Coverage.Slot)
	assert.Equal(t, m.ownerB, d.OwnerWinnerID)
	assert.Equal(t, m.ownerA, d.PreviousOwnerID)
	assert.True(t, d.OwnerChanged())
}

func TestDecide_Validation(t *testing.T) {
	testCases := []struct {
		name  string
		in    FinalizeInput
		field string
	}{
		{"tie", FinalizeInput{ScoreA: 70, ScoreB: 70}, "score_b"},
		{"tie with spread", FinalizeInput{ScoreA: 0, ScoreB: 0, Spread: utils.Ptr(3.5)}, "score_b"},
		{"negative a", FinalizeInput{ScoreA: -1, ScoreB: 60}, "score_a"},
		{"negative b", FinalizeInput{ScoreA: 60, ScoreB: -4}, "score_b"},
		{"nan spread", FinalizeInput{ScoreA: 60, ScoreB: 59, Spread: utils.Ptr(math.NaN())}, "spread"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			m := newMatchup(RoundOf64)
			_, err := Decide(m.game, m.teamA, m.teamB, tc.in, PushUnderdog)
			require.Error(t, err)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.field, verr.Field)
		})
	}
}

func TestDecide_RejectsTiesForAnyScore(t *testing.T) {
	for score := 0; score <= 120; score++ {
		m := newMatchup(RoundOf32)
		_, err := Decide(m.game, m.teamA, m.teamB, FinalizeInput{ScoreA: score, ScoreB: score}, PushFavorite)
		require.True(t, IsValidation(err), "score %d", score)
	}
}

func TestDecide_AwaitingFeeders(t *testing.T) {
	m := newMatchup(RoundOf32)
	m.game.Status = GameAwaiting
	m.game.SlotBTeamID = nil

	_, err := Decide(m.game, m.teamA, nil, FinalizeInput{ScoreA: 70, ScoreB: 60}, PushUnderdog)
	require.Error(t, err)
	assert.True(t, IsIntegrity(err))
	assert.ErrorIs(t, err, ErrOutOfOrder)
}

func TestDecide_SlotProblems(t *testing.T) {
	t.Run("empty slot on a scheduled game", func(t *testing.T) {
		m := newMatchup(RoundOf64)
		m.game.SlotATeamID = nil
		_, err := Decide(m.game, nil, m.teamB, FinalizeInput{ScoreA: 70, ScoreB: 60}, PushUnderdog)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "slot_a", verr.Field)
	})

	t.Run("team without owner", func(t *testing.T) {
		m := newMatchup(RoundOf64)
		m.teamB.CurrentOwnerID = nil
		_, err := Decide(m.game, m.teamA, m.teamB, FinalizeInput{ScoreA: 70, ScoreB: 60}, PushUnderdog)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "slot_b", verr.Field)
	})

	t.Run("team does not match slot", func(t *testing.T) {
		m := newMatchup(RoundOf64)
		_, err := Decide(m.game, m.teamB, m.teamA, FinalizeInput{ScoreA: 70, ScoreB: 60}, PushUnderdog)
		assert.True(t, IsValidation(err))
	})
}

func TestApplyAndResultOf(t *testing.T) {
	m := newMatchup(RoundOf64)
	in := FinalizeInput{ScoreA: 66, ScoreB: 72, Spread: utils.Ptr(-6.0)}

	d, err := Decide(m.game, m.teamA, m.teamB, in, PushUnderdog)
	require.NoError(t, err)
	d.Apply(m.game, in, time.Now())

	assert.Equal(t, GameFinal, m.game.Status)
	res, err := ResultOf(m.game)
	require.NoError(t, err)

	assert.Equal(t, m.teamB.ID, res.TeamWinnerID)
	assert.Equal(t, SlotB, res.TeamWinnerSlot)
	// push: slot b favored by 6 and won by 6
	assert.Equal(t, SlotA, res.CoveringSlot)
	assert.Equal(t, m.ownerA, res.OwnerWinnerID)
	assert.Equal(t, *m.game.NextGameID, *res.NextGameID)
	assert.False(t, res.Champion)
	assert.Len(t, res.Warnings, 1)

	again, err := ResultOf(m.game)
	require.NoError(t, err)
	assert.Equal(t, res, again)
}

func TestResultOf_Championship(t *testing.T) {
	m := newMatchup(Championship)
	m.game.NextGameID = nil
	m.game.NextSlot = nil
	in := FinalizeInput{ScoreA: 80, ScoreB: 71}

	d, err := Decide(m.game, m.teamA, m.teamB, in, PushUnderdog)
	require.NoError(t, err)
	d.Apply(m.game, in, time.Now())

	res, err := ResultOf(m.game)
	require.NoError(t, err)
	assert.True(t, res.Champion)
	assert.Nil(t, res.NextGameID)
	assert.Equal(t, m.ownerA, res.OwnerWinnerID)
	assert.Equal(t, []string{"no spread; ownership followed the game winner"}, res.Warnings)
}

func TestLiveLeader(t *testing.T) {
	m := newMatchup(RoundOf64)
	m.game.Status = GameInProgress
	m.game.ScoreA = utils.Ptr(40)
	m.game.ScoreB = utils.Ptr(35)
	m.game.Spread = utils.Ptr(8.5)

	slot, owner, ok := LiveLeader(m.game, PushUnderdog)
	require.True(t, ok)
	assert.Equal(t, SlotB, slot)
	assert.Equal(t, m.ownerB, *owner)

	m.game.Spread = nil
	_, _, ok = LiveLeader(m.game, PushUnderdog)
	assert.False(t, ok)
}
