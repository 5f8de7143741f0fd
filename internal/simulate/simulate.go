// Package simulate plays out games with believable college basketball
// scores. It never touches the database; callers feed the scores to the
// progression engine like any other finished game.
package simulate

import (
	"math"

	"github.com/brianvoe/gofakeit/v7"
)

const (
	MinScore = 55
	MaxScore = 90

	// DefaultUpsetProbability is the chance the seeds are ignored and the
	// winner is a coin flip.
	DefaultUpsetProbability = 0.35

	spreadPerSeed = 1.5
	maxSpread     = 15.0
)

// Rand is the randomness a Simulator needs. *gofakeit.Faker satisfies it.
type Rand interface {
	Number(min, max int) int
	Float64() float64
}

type Simulator struct {
	rand  Rand
	upset float64
}

// New returns a Simulator drawing from r. An upset probability outside [0, 1]
// falls back to DefaultUpsetProbability.
func New(r Rand, upsetProbability float64) *Simulator {
	if upsetProbability < 0 || upsetProbability > 1 || math.IsNaN(upsetProbability) {
		upsetProbability = DefaultUpsetProbability
	}
	return &Simulator{rand: r, upset: upsetProbability}
}

// NewSeeded returns a Simulator whose output is fully determined by seed.
func NewSeeded(seed uint64, upsetProbability float64) *Simulator {
	return New(gofakeit.New(seed), upsetProbability)
}

// Spread is the line for a matchup by seed, positive when slot a is the
// better seed. Equal seeds are a pick'em.
func Spread(seedA, seedB int) float64 {
	diff := seedB - seedA
	line := math.Min(math.Abs(float64(diff))*spreadPerSeed, maxSpread)
	line = math.Round(line*10) / 10
	if diff < 0 {
		return -line
	}
	return line
}

// Scores plays one game between seeds and returns two different scores.
// Unless the draw comes up an upset, the better seed ends with the higher
// score.
func (s *Simulator) Scores(seedA, seedB int) (int, int) {
	a := s.rand.Number(MinScore, MaxScore)
	b := s.rand.Number(MinScore, MaxScore)
	for a == b {
		b = s.rand.Number(MinScore, MaxScore)
	}

	if seedA == seedB || s.rand.Float64() < s.upset {
		return a, b
	}

	hi, lo := max(a, b), min(a, b)
	if seedA < seedB {
		return hi, lo
	}
	return lo, hi
}
