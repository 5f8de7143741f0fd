package bracket

import (
	"math"
	"testing"

	"github.com/AdamBeresnev/spread-pool/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateSpread(t *testing.T) {
	testCases := []struct {
		name     string
		scoreA   int
		scoreB   int
		spread   *float64
		wantSlot Slot
		wantPush bool
	}{
		{"favorite covers", 80, 60, utils.Ptr(10.5), SlotA, false},
		{"favorite wins but does not cover", 73, 70, utils.Ptr(10.0), SlotB, false},
		{"underdog wins outright", 65, 70, utils.Ptr(4.5), SlotB, false},
		{"slot b favorite covers", 60, 75, utils.Ptr(-7.5), SlotB, false},
		{"slot b favorite falls short", 70, 72, utils.Ptr(-7.5), SlotA, false},
		{"slot a underdog wins", 70, 68, utils.Ptr(-3.0), SlotA, false},
		{"pick'em", 70, 68, utils.Ptr(0.0), SlotA, false},
		{"no spread follows winner", 60, 61, nil, SlotB, false},
		{"push goes to underdog", 77, 70, utils.Ptr(7.0), SlotB, true},
		{"push on slot b favorite goes to underdog", 70, 74, utils.Ptr(-4.0), SlotA, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cov, err := EvaluateSpread(tc.scoreA, tc.scoreB, tc.spread, PushUnderdog)
			require.NoError(t, err)
			assert.Equal(t, tc.wantSlot, cov.Slot)
			assert.Equal(t, tc.wantPush, cov.Push)
			assert.Equal(t, tc.spread == nil, cov.StraightUp)
		})
	}
}

func TestEvaluateSpread_PushPolicy(t *testing.T) {
	testCases := []struct {
		name   string
		policy PushPolicy
		scoreA int
		scoreB int
		spread float64
		want   Slot
	}{
		{"underdog policy, slot a favored", PushUnderdog, 80, 74, 6, SlotB},
		{"favorite policy, slot a favored", PushFavorite, 80, 74, 6, SlotA},
		{"underdog policy, slot b favored", PushUnderdog, 60, 63, -3, SlotA},
		{"favorite policy, slot b favored", PushFavorite, 60, 63, -3, SlotB},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			for i := 0; i < 5; i++ {
				cov, err := EvaluateSpread(tc.scoreA, tc.scoreB, &tc.spread, tc.policy)
				require.NoError(t, err)
				assert.True(t, cov.Push)
				assert.Zero(t, cov.AdjustedMargin)
				assert.Equal(t, tc.want, cov.Slot)
			}
		})
	}
}

func TestEvaluateSpread_Invalid(t *testing.T) {
	_, err := EvaluateSpread(70, 60, utils.Ptr(math.NaN()), PushUnderdog)
	assert.True(t, IsValidation(err))

	_, err = EvaluateSpread(70, 60, utils.Ptr(math.Inf(1)), PushUnderdog)
	assert.True(t, IsValidation(err))

	_, err = EvaluateSpread(70, 64, utils.Ptr(6.0), PushPolicy("coin-flip"))
	assert.True(t, IsValidation(err))
}

func TestParsePushPolicy(t *testing.T) {
	p, err := ParsePushPolicy(" Favorite ")
	require.NoError(t, err)
	assert.Equal(t, PushFavorite, p)

	_, err = ParsePushPolicy("home")
	assert.Error(t, err)
}

func TestFavorite(t *testing.T) {
	slot, ok := Favorite(3.5)
	assert.True(t, ok)
	assert.Equal(t, SlotA, slot)

	slot, ok = Favorite(-1)
	assert.True(t, ok)
	assert.Equal(t, SlotB, slot)

	_, ok = Favorite(0)
	assert.False(t, ok)
}
