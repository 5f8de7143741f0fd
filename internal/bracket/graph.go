package bracket

import (
	"fmt"

	"github.com/google/uuid"
)

// FirstRoundSeeds lists the round-of-64 matchups of one region in position
// order. Adjacent pairs meet in the round of 32.
var FirstRoundSeeds = [8][2]int{
	{1, 16}, {8, 9}, {5, 12}, {4, 13},
	{6, 11}, {3, 14}, {7, 10}, {2, 15},
}

type finalFourSeat struct {
	position int
	slot     Slot
}

var finalFourSeats = map[Region]finalFourSeat{
	East:    {0, SlotA},
	West:    {0, SlotB},
	South:   {1, SlotA},
	Midwest: {1, SlotB},
}

// GameKey identifies a game by its place in the bracket.
type GameKey struct {
	Round    Round
	Region   Region
	Position int
}

func (k GameKey) String() string {
	if k.Region == "" {
		return fmt.Sprintf("R%d#%d", k.Round, k.Position)
	}
	return fmt.Sprintf("R%d/%s#%d", k.Round, k.Region, k.Position)
}

func keyOf(g *Game) GameKey {
	return GameKey{Round: g.Round, Region: g.Region, Position: g.Position}
}

// Destination derives where the winner of the game at k plays next. Inside a
// region position i feeds position i/2, slot a when i is even. Regional
// champions meet in the Final Four by fixed pairing.
func Destination(k GameKey) (GameKey, Slot, bool) {
	next, ok := k.Round.Next()
	if !ok {
		return GameKey{}, "", false
	}

	slot := SlotA
	if k.Position%2 == 1 {
		slot = SlotB
	}

	switch {
	case k.Round == Elite8:
		seat := finalFourSeats[k.Region]
		return GameKey{Round: FinalFour, Position: seat.position}, seat.slot, true
	case k.Round.Regional():
		return GameKey{Round: next, Region: k.Region, Position: k.Position / 2}, slot, true
	default:
		return GameKey{Round: next, Position: k.Position / 2}, slot, true
	}
}

// Layout builds the 63 linked games of a year. Links are derived once here and
// stored on each game; nothing recomputes them later.
func Layout(year int) []Game {
	var games []Game
	ids := make(map[GameKey]uuid.UUID)

	// Walk from the championship backwards so every destination already has an id
	for i := len(Rounds) - 1; i >= 0; i-- {
		r := Rounds[i]
		for _, k := range keysForRound(r) {
			g := Game{
				ID:       uuid.New(),
				Year:     year,
				Round:    k.Round,
				Region:   k.Region,
				Position: k.Position,
				Status:   GameAwaiting,
			}
			if r == RoundOf64 {
				g.Status = GameScheduled
			}

			if dest, slot, ok := Destination(k); ok {
				nextID := ids[dest]
				g.NextGameID = &nextID
				g.NextSlot = &slot
			}

			ids[k] = g.ID
			games = append(games, g)
		}
	}

	return games
}

func keysForRound(r Round) []GameKey {
	var keys []GameKey
	if r.Regional() {
		for _, region := range Regions {
			for p := 0; p < r.GamesPerRegion(); p++ {
				keys = append(keys, GameKey{Round: r, Region: region, Position: p})
			}
		}
		return keys
	}
	for p := 0; p < r.GameCount(); p++ {
		keys = append(keys, GameKey{Round: r, Position: p})
	}
	return keys
}

type Link struct {
	NextGameID uuid.UUID
	Slot       Slot
}

// Graph is the link table of one year's bracket, loaded from stored games.
type Graph struct {
	year    int
	games   map[uuid.UUID]*Game
	byKey   map[GameKey]*Game
	links   map[uuid.UUID]Link
	feeders map[uuid.UUID]map[Slot]uuid.UUID
}

// NewGraph indexes the games of a year and validates the link table.
func NewGraph(year int, games []Game) (*Graph, error) {
	g := &Graph{
		year:    year,
		games:   make(map[uuid.UUID]*Game, len(games)),
		byKey:   make(map[GameKey]*Game, len(games)),
		links:   make(map[uuid.UUID]Link, len(games)),
		feeders: make(map[uuid.UUID]map[Slot]uuid.UUID),
	}

	for i := range games {
		game := &games[i]
		if game.Year != year {
			return nil, Integrity(ErrMalformedBracket, "game %s belongs to %d, not %d", game.ID, game.Year, year)
		}
		if _, dup := g.byKey[keyOf(game)]; dup {
			return nil, Integrity(ErrMalformedBracket, "two games at %s", keyOf(game))
		}
		g.games[game.ID] = game
		g.byKey[keyOf(game)] = game
	}

	for id, game := range g.games {
		if game.NextGameID == nil {
			continue
		}
		if game.NextSlot == nil {
			return nil, Integrity(ErrMalformedBracket, "game %s links to %s without a slot", id, *game.NextGameID)
		}
		link := Link{NextGameID: *game.NextGameID, Slot: *game.NextSlot}
		if g.feeders[link.NextGameID] == nil {
			g.feeders[link.NextGameID] = make(map[Slot]uuid.UUID, 2)
		}
		if other, taken := g.feeders[link.NextGameID][link.Slot]; taken {
			return nil, Integrity(ErrMalformedBracket, "games %s and %s both feed slot %s of %s", other, id, link.Slot, link.NextGameID)
		}
		g.feeders[link.NextGameID][link.Slot] = id
		g.links[id] = link
	}

	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

// Validate checks the stored links against the bracket arithmetic.
func (g *Graph) Validate() error {
	want := 0
	for _, r := range Rounds {
		want += r.GameCount()
	}
	if len(g.games) != want {
		return Integrity(ErrMalformedBracket, "%d games for %d, want %d", len(g.games), g.year, want)
	}

	for id, game := range g.games {
		k := keyOf(game)
		if !k.Round.Valid() {
			return Integrity(ErrMalformedBracket, "game %s has round %d", id, k.Round)
		}

		dest, slot, ok := Destination(k)
		link, linked := g.links[id]
		if !ok {
			if linked {
				return Integrity(ErrMalformedBracket, "championship game %s links onward", id)
			}
			continue
		}
		if !linked {
			return Integrity(ErrMalformedBracket, "game %s at %s has no next game", id, k)
		}

		expected, exists := g.byKey[dest]
		if !exists {
			return Integrity(ErrMalformedBracket, "no game at %s", dest)
		}
		if link.NextGameID != expected.ID || link.Slot != slot {
			return Integrity(ErrMalformedBracket, "game %s at %s feeds %s/%s, want %s/%s", id, k, link.NextGameID, link.Slot, expected.ID, slot)
		}
	}

	return nil
}

// NextSlotFor returns the outgoing link of a game, or nil for the championship.
func (g *Graph) NextSlotFor(gameID uuid.UUID) (*Link, error) {
	if _, ok := g.games[gameID]; !ok {
		return nil, Integrity(ErrGameNotFound, "game %s is not in the %d bracket", gameID, g.year)
	}
	link, ok := g.links[gameID]
	if !ok {
		return nil, nil
	}
	return &link, nil
}

// FeedersOf returns the games whose winners land in each slot of gameID.
// Round-of-64 games have none.
func (g *Graph) FeedersOf(gameID uuid.UUID) (map[Slot]uuid.UUID, error) {
	if _, ok := g.games[gameID]; !ok {
		return nil, Integrity(ErrGameNotFound, "game %s is not in the %d bracket", gameID, g.year)
	}
	out := make(map[Slot]uuid.UUID, 2)
	for slot, id := range g.feeders[gameID] {
		out[slot] = id
	}
	return out, nil
}

func (g *Graph) Game(id uuid.UUID) (*Game, bool) {
	game, ok := g.games[id]
	return game, ok
}

func (g *Graph) At(k GameKey) (*Game, bool) {
	game, ok := g.byKey[k]
	return game, ok
}

func (g *Graph) Championship() *Game {
	game := g.byKey[GameKey{Round: Championship}]
	return game
}
