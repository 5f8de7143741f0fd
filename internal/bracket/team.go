package bracket

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Region string

const (
	East    Region = "East"
	West    Region = "West"
	South   Region = "South"
	Midwest Region = "Midwest"
)

// Regions in bracket order. East/West and South/Midwest meet in the Final Four.
var Regions = []Region{East, West, South, Midwest}

func ParseRegion(s string) (Region, error) {
	for _, r := range Regions {
		if strings.EqualFold(strings.TrimSpace(s), string(r)) {
			return r, nil
		}
	}
	return "", Invalid("region", fmt.Sprintf("unknown region %q", s))
}

// Value stores national-round games (no region) as NULL.
func (r Region) Value() (driver.Value, error) {
	if r == "" {
		return nil, nil
	}
	return string(r), nil
}

func (r *Region) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*r = ""
	case string:
		*r = Region(v)
	case []byte:
		*r = Region(v)
	default:
		return fmt.Errorf("cannot scan %T into Region", src)
	}
	return nil
}

type Participant struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Email     *string   `db:"email" json:"email,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type Team struct {
	ID     uuid.UUID `db:"id" json:"id"`
	Year   int       `db:"year" json:"year"`
	Region Region    `db:"region" json:"region"`
	Seed   int       `db:"seed" json:"seed"`
	Name   string    `db:"name" json:"name"`
	Slug   string    `db:"slug" json:"slug"`

	// Set once by the draft.
	InitialOwnerID *uuid.UUID `db:"initial_owner_id" json:"initial_owner_id,omitempty"`
	// Not a column: the latest entry of the ownership log.
	CurrentOwnerID *uuid.UUID `db:"current_owner_id" json:"current_owner_id,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
