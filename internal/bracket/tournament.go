package bracket

import (
	"time"

	"github.com/google/uuid"
)

type TournamentStatus string

const (
	TournamentDraft     TournamentStatus = "draft"
	TournamentStarted   TournamentStatus = "started"
	TournamentCompleted TournamentStatus = "completed"
)

type Tournament struct {
	Year            int              `db:"year" json:"year"`
	Status          TournamentStatus `db:"status" json:"status"`
	ChampionTeamID  *uuid.UUID       `db:"champion_team_id" json:"champion_team_id,omitempty"`
	ChampionOwnerID *uuid.UUID       `db:"champion_owner_id" json:"champion_owner_id,omitempty"`
	CreatedAt       time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time        `db:"updated_at" json:"updated_at"`
}
