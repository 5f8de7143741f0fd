package bracket

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayout(t *testing.T) {
	games := Layout(2024)
	require.Len(t, games, 63)

	perRound := make(map[Round]int)
	for _, g := range games {
		perRound[g.Round]++
		assert.Equal(t, 2024, g.Year)
		if g.Round == RoundOf64 {
			assert.Equal(t, GameScheduled, g.Status)
		} else {
			assert.Equal(t, GameAwaiting, g.Status)
		}
		if g.Round.Regional() {
			assert.NotEmpty(t, g.Region)
		} else {
			assert.Empty(t, g.Region)
		}
	}

	assert.Equal(t, map[Round]int{
		RoundOf64: 32, RoundOf32: 16, Sweet16: 8, Elite8: 4, FinalFour: 2, Championship: 1,
	}, perRound)

	graph, err := NewGraph(2024, games)
	require.NoError(t, err)
	assert.Nil(t, graph.Championship().NextGameID)
}

func TestDestination_FirstRoundToSecondRound(t *testing.T) {
	testCases := []struct {
		position     int
		wantPosition int
		wantSlot     Slot
	}{
		{0, 0, SlotA},
		{1, 0, SlotB},
		{2, 1, SlotA},
		{3, 1, SlotB},
		{4, 2, SlotA},
		{5, 2, SlotB},
		{6, 3, SlotA},
		{7, 3, SlotB},
	}

	for _, region := range Regions {
		for _, tc := range testCases {
			dest, slot, ok := Destination(GameKey{Round: RoundOf64, Region: region, Position: tc.position})
			require.True(t, ok)
			assert.Equal(t, GameKey{Round: RoundOf32, Region: region, Position: tc.wantPosition}, dest)
			assert.Equal(t, tc.wantSlot, slot)
		}
	}
}

func TestDestination_NationalRounds(t *testing.T) {
	testCases := []struct {
		name     string
		from     GameKey
		wantKey  GameKey
		wantSlot Slot
	}{
		{"East champion", GameKey{Elite8, East, 0}, GameKey{FinalFour, "", 0}, SlotA},
		{"West champion", GameKey{Elite8, West, 0}, GameKey{FinalFour, "", 0}, SlotB},
		{"South champion", GameKey{Elite8, South, 0}, GameKey{FinalFour, "", 1}, SlotA},
		{"Midwest champion", GameKey{Elite8, Midwest, 0}, GameKey{FinalFour, "", 1}, SlotB},
		{"First semifinal", GameKey{FinalFour, "", 0}, GameKey{Championship, "", 0}, SlotA},
		{"Second semifinal", GameKey{FinalFour, "", 1}, GameKey{Championship, "", 0}, SlotB},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			dest, slot, ok := Destination(tc.from)
			require.True(t, ok)
			assert.Equal(t, tc.wantKey, dest)
			assert.Equal(t, tc.wantSlot, slot)
		})
	}

	_, _, ok := Destination(GameKey{Round: Championship})
	assert.False(t, ok)
}

func TestGraph_NextSlotForEveryGame(t *testing.T) {
	games := Layout(2024)
	graph, err := NewGraph(2024, games)
	require.NoError(t, err)

	terminal := 0
	for _, g := range games {
		link, err := graph.NextSlotFor(g.ID)
		require.NoError(t, err)
		if link == nil {
			terminal++
			assert.Equal(t, Championship, g.Round)
			continue
		}

		dest, ok := graph.Game(link.NextGameID)
		require.True(t, ok)
		next, _ := g.Round.Next()
		assert.Equal(t, next, dest.Round)

		wantKey, wantSlot, _ := Destination(keyOf(&g))
		assert.Equal(t, wantKey, keyOf(dest))
		assert.Equal(t, wantSlot, link.Slot)

		feeders, err := graph.FeedersOf(dest.ID)
		require.NoError(t, err)
		assert.Equal(t, g.ID, feeders[link.Slot])
	}
	assert.Equal(t, 1, terminal)
}

func TestGraph_FeedersOf(t *testing.T) {
	games := Layout(2024)
	graph, err := NewGraph(2024, games)
	require.NoError(t, err)

	for _, g := range games {
		feeders, err := graph.FeedersOf(g.ID)
		require.NoError(t, err)
		if g.Round == RoundOf64 {
			assert.Empty(t, feeders)
		} else {
			assert.Len(t, feeders, 2, g.Label())
		}
	}

	_, err = graph.FeedersOf(uuid.New())
	assert.ErrorIs(t, err, ErrGameNotFound)
}

func TestGraph_UnknownGame(t *testing.T) {
	graph, err := NewGraph(2024, Layout(2024))
	require.NoError(t, err)

	_, err = graph.NextSlotFor(uuid.New())
	require.Error(t, err)
	assert.True(t, IsIntegrity(err))
	assert.ErrorIs(t, err, ErrGameNotFound)
}

func TestNewGraph_RejectsMalformedBrackets(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(games []Game) []Game
	}{
		{
			name:   "missing game",
			mutate: func(games []Game) []Game { return games[1:] },
		},
		{
			name: "swapped slot",
			mutate: func(games []Game) []Game {
				for i := range games {
					if games[i].Round == RoundOf64 {
						other := games[i].NextSlot.Other()
						games[i].NextSlot = &other
						break
					}
				}
				return games
			},
		},
		{
			name: "championship links onward",
			mutate: func(games []Game) []Game {
				for i := range games {
					if games[i].Round == Championship {
						id := games[len(games)-1].ID
						slot := SlotA
						games[i].NextGameID = &id
						games[i].NextSlot = &slot
					}
				}
				return games
			},
		},
		{
			name: "unlinked regional game",
			mutate: func(games []Game) []Game {
				for i := range games {
					if games[i].Round == Sweet16 {
						games[i].NextGameID = nil
						games[i].NextSlot = nil
						break
					}
				}
				return games
			},
		},
		{
			name: "wrong year",
			mutate: func(games []Game) []Game {
				games[0].Year = 2023
				return games
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			games := tc.mutate(Layout(2024))
			_, err := NewGraph(2024, games)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformedBracket)
		})
	}
}
