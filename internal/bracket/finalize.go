package bracket

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// FinalizeInput is the finished-game trigger supplied by an admin, a score
// job, or the simulator.
type FinalizeInput struct {
	ScoreA int      `json:"score_a"`
	ScoreB int      `json:"score_b"`
	Spread *float64 `json:"spread,omitempty"`
}

func (in FinalizeInput) Validate() error {
	if in.ScoreA < 0 {
		return Invalid("score_a", "must not be negative")
	}
	if in.ScoreB < 0 {
		return Invalid("score_b", "must not be negative")
	}
	if in.ScoreA == in.ScoreB {
		return Invalid("score_b", fmt.Sprintf("tied at %d; single elimination games cannot end level", in.ScoreA))
	}
	return ValidateSpread(in.Spread)
}

// Decision is what a final score means for the two teams of a game.
type Decision struct {
	TeamWinner      Slot
	WinnerTeamID    uuid.UUID
	Coverage        Coverage
	OwnerWinnerID   uuid.UUID
	PreviousOwnerID uuid.UUID
}

// OwnerChanged reports whether the advancing team moves to a new owner.
func (d *Decision) OwnerChanged() bool {
	return d.OwnerWinnerID != d.PreviousOwnerID
}

// Decide computes the game winner and the spread-covering owner for a game
// that is ready to be finalized. teamA and teamB must be the teams in the
// game's slots with their current owners loaded.
func Decide(g *Game, teamA, teamB *Team, in FinalizeInput, policy PushPolicy) (*Decision, error) {
	switch g.Status {
	case GameFinal:
		return nil, Integrity(nil, "game %s is already final", g.ID)
	case GameAwaiting:
		return nil, Integrity(ErrOutOfOrder, "%s cannot be finalized before its feeder games", g.Label())
	}

	if err := checkSlot(g, SlotA, teamA); err != nil {
		return nil, err
	}
	if err := checkSlot(g, SlotB, teamB); err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	winner, winnerTeam := SlotA, teamA
	if in.ScoreB > in.ScoreA {
		winner, winnerTeam = SlotB, teamB
	}

	cov, err := EvaluateSpread(in.ScoreA, in.ScoreB, in.Spread, policy)
	if err != nil {
		return nil, err
	}

	coveringOwner := *teamA.CurrentOwnerID
	if cov.Slot == SlotB {
		coveringOwner = *teamB.CurrentOwnerID
	}

	return &Decision{
		TeamWinner:      winner,
		WinnerTeamID:    winnerTeam.ID,
		Coverage:        cov,
		OwnerWinnerID:   coveringOwner,
		PreviousOwnerID: *winnerTeam.CurrentOwnerID,
	}, nil
}

func checkSlot(g *Game, slot Slot, team *Team) error {
	field := "slot_" + string(slot)
	id := g.TeamIn(slot)
	if id == nil {
		return Invalid(field, "no team in slot")
	}
	if team == nil || team.ID != *id {
		return Invalid(field, fmt.Sprintf("team does not match game slot %s", *id))
	}
	if team.CurrentOwnerID == nil {
		return Invalid(field, fmt.Sprintf("team %s has no owner", team.Name))
	}
	return nil
}

// Apply writes the decision onto the game.
func (d *Decision) Apply(g *Game, in FinalizeInput, at time.Time) {
	scoreA, scoreB := in.ScoreA, in.ScoreB
	teamWinner, ownerWinner := d.TeamWinner, d.Coverage.Slot
	ownerID := d.OwnerWinnerID

	g.ScoreA = &scoreA
	g.ScoreB = &scoreB
	g.Spread = in.Spread
	g.Status = GameFinal
	g.TeamWinner = &teamWinner
	g.OwnerWinner = &ownerWinner
	g.OwnerWinnerID = &ownerID
	g.FinalizedAt = &at
}

// FinalizeResult is the outcome of a finalized game.
type FinalizeResult struct {
	GameID         uuid.UUID  `json:"game_id"`
	Year           int        `json:"year"`
	Round          Round      `json:"round"`
	ScoreA         int        `json:"score_a"`
	ScoreB         int        `json:"score_b"`
	Spread         *float64   `json:"spread,omitempty"`
	TeamWinnerSlot Slot       `json:"team_winner_slot"`
	TeamWinnerID   uuid.UUID  `json:"team_winner_id"`
	CoveringSlot   Slot       `json:"covering_slot"`
	OwnerWinnerID  uuid.UUID  `json:"owner_winner_id"`
	NextGameID     *uuid.UUID `json:"next_game_id"`
	NextSlot       *Slot      `json:"next_slot"`
	Champion       bool       `json:"champion"`
	Warnings       []string   `json:"warnings,omitempty"`
}

// ResultOf rebuilds the result from a final game row, so a replay returns
// exactly what the first finalize returned.
func ResultOf(g *Game) (*FinalizeResult, error) {
	if !g.IsFinal() {
		return nil, Integrity(nil, "game %s is not final", g.ID)
	}
	if g.ScoreA == nil || g.ScoreB == nil || g.TeamWinner == nil || g.OwnerWinner == nil || g.OwnerWinnerID == nil {
		return nil, Integrity(ErrMalformedBracket, "final game %s is missing its outcome", g.ID)
	}
	winnerID := g.TeamIn(*g.TeamWinner)
	if winnerID == nil {
		return nil, Integrity(ErrMalformedBracket, "final game %s has an empty winning slot", g.ID)
	}

	res := &FinalizeResult{
		GameID:         g.ID,
		Year:           g.Year,
		Round:          g.Round,
		ScoreA:         *g.ScoreA,
		ScoreB:         *g.ScoreB,
		Spread:         g.Spread,
		TeamWinnerSlot: *g.TeamWinner,
		TeamWinnerID:   *winnerID,
		CoveringSlot:   *g.OwnerWinner,
		OwnerWinnerID:  *g.OwnerWinnerID,
		NextGameID:     g.NextGameID,
		NextSlot:       g.NextSlot,
		Champion:       g.NextGameID == nil,
	}

	if g.Spread == nil {
		res.Warnings = append(res.Warnings, "no spread; ownership followed the game winner")
	} else if float64(*g.ScoreA-*g.ScoreB) == *g.Spread {
		res.Warnings = append(res.Warnings, fmt.Sprintf("push on %g; slot %s owner took it by policy", *g.Spread, *g.OwnerWinner))
	}
	return res, nil
}

// LiveLeader reports which slot's owner is covering an in-progress game right
// now. It returns false when there is no live score or no line yet.
func LiveLeader(g *Game, policy PushPolicy) (Slot, *uuid.UUID, bool) {
	if g.Status != GameInProgress || g.ScoreA == nil || g.ScoreB == nil || g.Spread == nil {
		return "", nil, false
	}
	cov, err := EvaluateSpread(*g.ScoreA, *g.ScoreB, g.Spread, policy)
	if err != nil || cov.Slot == "" {
		return "", nil, false
	}
	return cov.Slot, g.OwnerIn(cov.Slot), true
}
