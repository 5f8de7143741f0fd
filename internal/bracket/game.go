package bracket

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Round is named after the field size: RoundOf64 is the round of 64 teams.
// The "round of 1" is the champion and has no game.
type Round int

const (
	RoundOf64    Round = 64
	RoundOf32    Round = 32
	Sweet16      Round = 16
	Elite8       Round = 8
	FinalFour    Round = 4
	Championship Round = 2
)

var Rounds = []Round{RoundOf64, RoundOf32, Sweet16, Elite8, FinalFour, Championship}

func ParseRound(s string) (Round, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, Invalid("round", fmt.Sprintf("%q is not a number", s))
	}
	r := Round(n)
	if !r.Valid() {
		return 0, Invalid("round", fmt.Sprintf("%d is not a tournament round", n))
	}
	return r, nil
}

func (r Round) Valid() bool {
	switch r {
	case RoundOf64, RoundOf32, Sweet16, Elite8, FinalFour, Championship:
		return true
	}
	return false
}

// Next returns the round this round's winners play in.
func (r Round) Next() (Round, bool) {
	if r == Championship || !r.Valid() {
		return 0, false
	}
	return r / 2, true
}

// Regional rounds are played inside one region.
func (r Round) Regional() bool {
	return r >= Elite8
}

// GameCount is the number of games in the round across the whole bracket.
func (r Round) GameCount() int {
	return int(r) / 2
}

// GamesPerRegion only makes sense for regional rounds.
func (r Round) GamesPerRegion() int {
	return int(r) / 8
}

func (r Round) String() string {
	switch r {
	case Sweet16:
		return "Sweet 16"
	case Elite8:
		return "Elite Eight"
	case FinalFour:
		return "Final Four"
	case Championship:
		return "Championship"
	}
	return fmt.Sprintf("Round of %d", int(r))
}

type Slot string

const (
	SlotA Slot = "a"
	SlotB Slot = "b"
)

func ParseSlot(s string) (Slot, error) {
	switch Slot(strings.ToLower(strings.TrimSpace(s))) {
	case SlotA:
		return SlotA, nil
	case SlotB:
		return SlotB, nil
	}
	return "", Invalid("slot", fmt.Sprintf("%q is not a or b", s))
}

func (s Slot) Other() Slot {
	if s == SlotA {
		return SlotB
	}
	return SlotA
}

type GameStatus string

const (
	// GameAwaiting games still wait on at least one feeder game.
	GameAwaiting   GameStatus = "awaiting"
	GameScheduled  GameStatus = "scheduled"
	GameInProgress GameStatus = "in_progress"
	GameFinal      GameStatus = "final"
)

func ParseGameStatus(s string) (GameStatus, error) {
	switch st := GameStatus(strings.ToLower(strings.TrimSpace(s))); st {
	case GameAwaiting, GameScheduled, GameInProgress, GameFinal:
		return st, nil
	}
	return "", Invalid("status", fmt.Sprintf("unknown status %q", s))
}

type Game struct {
	ID   uuid.UUID `db:"id" json:"id"`
	Year int       `db:"year" json:"year"`

	// Position in the bracket, used to derive links and render the view
	Round    Round  `db:"round" json:"round"`
	Region   Region `db:"region" json:"region,omitempty"`
	Position int    `db:"position" json:"position"`

	SlotATeamID  *uuid.UUID `db:"slot_a_team_id" json:"slot_a_team_id,omitempty"`
	SlotBTeamID  *uuid.UUID `db:"slot_b_team_id" json:"slot_b_team_id,omitempty"`
	SlotAOwnerID *uuid.UUID `db:"slot_a_owner_id" json:"slot_a_owner_id,omitempty"`
	SlotBOwnerID *uuid.UUID `db:"slot_b_owner_id" json:"slot_b_owner_id,omitempty"`

	ScoreA *int       `db:"score_a" json:"score_a,omitempty"`
	ScoreB *int       `db:"score_b" json:"score_b,omitempty"`
	Spread *float64   `db:"spread" json:"spread,omitempty"`
	Status GameStatus `db:"status" json:"status"`

	TeamWinner    *Slot      `db:"team_winner" json:"team_winner,omitempty"`
	OwnerWinner   *Slot      `db:"owner_winner" json:"owner_winner,omitempty"`
	OwnerWinnerID *uuid.UUID `db:"owner_winner_id" json:"owner_winner_id,omitempty"`
	FinalizedAt   *time.Time `db:"finalized_at" json:"finalized_at,omitempty"`
	NextGameID    *uuid.UUID `db:"next_game_id" json:"next_game_id,omitempty"`
	NextSlot      *Slot      `db:"next_slot" json:"next_slot,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
}

func (g *Game) IsFinal() bool {
	return g.Status == GameFinal
}

func (g *Game) TeamIn(slot Slot) *uuid.UUID {
	if slot == SlotA {
		return g.SlotATeamID
	}
	return g.SlotBTeamID
}

func (g *Game) OwnerIn(slot Slot) *uuid.UUID {
	if slot == SlotA {
		return g.SlotAOwnerID
	}
	return g.SlotBOwnerID
}

// Fill places a team and its owner snapshot into a slot. Once both slots are
// populated an awaiting game becomes scheduled.
func (g *Game) Fill(slot Slot, teamID uuid.UUID, ownerID *uuid.UUID) {
	if slot == SlotA {
		g.SlotATeamID = &teamID
		g.SlotAOwnerID = ownerID
	} else {
		g.SlotBTeamID = &teamID
		g.SlotBOwnerID = ownerID
	}
	if g.Status == GameAwaiting && g.SlotATeamID != nil && g.SlotBTeamID != nil {
		g.Status = GameScheduled
	}
}

// Label is a short human readable position, e.g. "East Round of 64 #3".
func (g *Game) Label() string {
	if g.Region == "" {
		return fmt.Sprintf("%s #%d", g.Round, g.Position+1)
	}
	return fmt.Sprintf("%s %s #%d", g.Region, g.Round, g.Position+1)
}
