package bracket

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func fullField() []TeamSeed {
	var seeds []TeamSeed
	for _, r := range Regions {
		for s := 1; s <= TeamsPerRegion; s++ {
			seeds = append(seeds, TeamSeed{Name: fmt.Sprintf("%s %d", r, s), Seed: s, Region: r})
		}
	}
	return seeds
}

func TestValidateSeeds(t *testing.T) {
	assert.NoError(t, ValidateSeeds(fullField()))

	tests := []struct {
		name      string
		mutate    func([]TeamSeed) []TeamSeed
		integrity bool
	}{
		{"short field", func(s []TeamSeed) []TeamSeed { return s[:63] }, true},
		{"blank name", func(s []TeamSeed) []TeamSeed { s[3].Name = " "; return s }, false},
		{"unknown region", func(s []TeamSeed) []TeamSeed { s[3].Region = "North"; return s }, false},
		{"seed out of range", func(s []TeamSeed) []TeamSeed { s[3].Seed = 17; return s }, false},
		{"duplicate seed", func(s []TeamSeed) []TeamSeed { s[3].Seed = 1; return s }, true},
		{"duplicate team", func(s []TeamSeed) []TeamSeed { s[20].Name = "east 1"; return s }, true},
		{"lopsided regions", func(s []TeamSeed) []TeamSeed { s[0].Region = West; return s }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSeeds(tt.mutate(fullField()))
			if tt.integrity {
				assert.True(t, IsIntegrity(err), "want IntegrityError, got %v", err)
			} else {
				assert.True(t, IsValidation(err), "want ValidationError, got %v", err)
			}
		})
	}
}
