package bracket

import (
	"fmt"
	"math"
	"strings"
)

// PushPolicy decides who covers when the final margin lands exactly on the line.
type PushPolicy string

const (
	// PushUnderdog gives a push to the underdog's owner: the favorite has to
	// win by more than the line to cover.
	PushUnderdog PushPolicy = "underdog"
	// PushFavorite gives a push to the favorite's owner. On a push the
	// favorite is always the team that won the game.
	PushFavorite PushPolicy = "favorite"
)

func ParsePushPolicy(s string) (PushPolicy, error) {
	switch p := PushPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case PushUnderdog, PushFavorite:
		return p, nil
	}
	return "", Invalid("push_policy", fmt.Sprintf("unknown policy %q", s))
}

// Coverage is the outcome of comparing a score against the spread.
type Coverage struct {
	// Slot whose owner covered. Empty only for a push on a pick'em line,
	// which needs tied scores and can't happen on a final game.
	Slot Slot
	// AdjustedMargin is (score_a - score_b) - spread.
	AdjustedMargin float64
	Push           bool
	// StraightUp is set when no spread was available and the game winner's
	// owner covers by default.
	StraightUp bool
}

// Favorite returns the slot favored by a spread, where a positive spread
// favors slot a.
func Favorite(spread float64) (Slot, bool) {
	switch {
	case spread > 0:
		return SlotA, true
	case spread < 0:
		return SlotB, true
	}
	return "", false
}

func ValidateSpread(spread *float64) error {
	if spread == nil {
		return nil
	}
	if math.IsNaN(*spread) || math.IsInf(*spread, 0) {
		return Invalid("spread", "must be a finite number")
	}
	return nil
}

// EvaluateSpread applies a spread to a score line. A positive spread is the
// number of points slot a is favored by, so slot a covers when it wins by
// more than the spread and slot b covers when slot a falls short.
func EvaluateSpread(scoreA, scoreB int, spread *float64, policy PushPolicy) (Coverage, error) {
	if err := ValidateSpread(spread); err != nil {
		return Coverage{}, err
	}

	margin := float64(scoreA - scoreB)
	if spread == nil {
		c := Coverage{AdjustedMargin: margin, StraightUp: true}
		switch {
		case scoreA > scoreB:
			c.Slot = SlotA
		case scoreB > scoreA:
			c.Slot = SlotB
		}
		return c, nil
	}

	adjusted := margin - *spread
	c := Coverage{AdjustedMargin: adjusted}
	switch {
	case adjusted > 0:
		c.Slot = SlotA
	case adjusted < 0:
		c.Slot = SlotB
	default:
		c.Push = true
		fav, ok := Favorite(*spread)
		if !ok {
			return c, nil
		}
		switch policy {
		case PushFavorite:
			c.Slot = fav
		case PushUnderdog:
			c.Slot = fav.Other()
		default:
			return Coverage{}, Invalid("push_policy", fmt.Sprintf("unknown policy %q", policy))
		}
	}
	return c, nil
}
