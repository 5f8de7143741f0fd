package bracket

import (
	"fmt"
	"strings"
)

const TeamsPerRegion = 16

// TeamSeed is one line of a bracket seed file.
type TeamSeed struct {
	Name   string `json:"name"`
	Seed   int    `json:"seed"`
	Region Region `json:"region"`
}

// ValidateSeeds checks that seeds describe a full 64-team field: sixteen
// seeds per region, each seed once, no team listed twice.
func ValidateSeeds(seeds []TeamSeed) error {
	if len(seeds) != TeamsPerRegion*len(Regions) {
		return Integrity(ErrMalformedBracket, "%d teams, want %d", len(seeds), TeamsPerRegion*len(Regions))
	}

	type regionSeed struct {
		region Region
		seed   int
	}
	taken := make(map[regionSeed]string, len(seeds))
	names := make(map[string]bool, len(seeds))
	perRegion := make(map[Region]int, len(Regions))

	for i, s := range seeds {
		if strings.TrimSpace(s.Name) == "" {
			return Invalid("team_name", fmt.Sprintf("line %d has no team name", i+1))
		}
		region, err := ParseRegion(string(s.Region))
		if err != nil {
			return err
		}
		if s.Seed < 1 || s.Seed > TeamsPerRegion {
			return Invalid("seed", fmt.Sprintf("%s has seed %d, want 1-%d", s.Name, s.Seed, TeamsPerRegion))
		}

		key := regionSeed{region, s.Seed}
		if other, dup := taken[key]; dup {
			return Integrity(ErrMalformedBracket, "%s and %s are both the %s %d seed", other, s.Name, region, s.Seed)
		}
		taken[key] = s.Name

		lower := strings.ToLower(strings.TrimSpace(s.Name))
		if names[lower] {
			return Integrity(ErrMalformedBracket, "%s is listed twice", s.Name)
		}
		names[lower] = true
		perRegion[region]++
	}

	for _, r := range Regions {
		if perRegion[r] != TeamsPerRegion {
			return Integrity(ErrMalformedBracket, "%s has %d teams, want %d", r, perRegion[r], TeamsPerRegion)
		}
	}
	return nil
}
