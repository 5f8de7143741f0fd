package bracket

import (
	"time"

	"github.com/google/uuid"
)

type TransferKind string

const (
	TransferDraft      TransferKind = "draft"
	TransferAdvance    TransferKind = "advance"
	TransferCorrection TransferKind = "correction"
)

// OwnershipTransfer is one append-only entry of a team's ownership log.
// Advance entries are unique per (team, round).
type OwnershipTransfer struct {
	Seq         int64        `db:"seq" json:"seq"`
	ID          uuid.UUID    `db:"id" json:"id"`
	Year        int          `db:"year" json:"year"`
	TeamID      uuid.UUID    `db:"team_id" json:"team_id"`
	GameID      *uuid.UUID   `db:"game_id" json:"game_id,omitempty"`
	Round       *Round       `db:"round" json:"round,omitempty"`
	Kind        TransferKind `db:"kind" json:"kind"`
	FromOwnerID *uuid.UUID   `db:"from_owner_id" json:"from_owner_id,omitempty"`
	ToOwnerID   uuid.UUID    `db:"to_owner_id" json:"to_owner_id"`
	Note        *string      `db:"note" json:"note,omitempty"`
	CreatedAt   time.Time    `db:"created_at" json:"created_at"`
}

// Changed reports whether the entry moved the team to a different participant.
func (t OwnershipTransfer) Changed() bool {
	return t.FromOwnerID == nil || *t.FromOwnerID != t.ToOwnerID
}

// CurrentOwner returns the owner named by the highest-sequence entry, or nil
// for a team that was never drafted.
func CurrentOwner(log []OwnershipTransfer) *uuid.UUID {
	var latest *OwnershipTransfer
	for i := range log {
		if latest == nil || log[i].Seq > latest.Seq {
			latest = &log[i]
		}
	}
	if latest == nil {
		return nil
	}
	owner := latest.ToOwnerID
	return &owner
}
