package store

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"
)

// Stores groups the table stores over one pool.
type Stores struct {
	Participants *ParticipantStore
	Teams        *TeamStore
	Games        *GameStore
	Transfers    *TransferStore
	Tournaments  *TournamentStore
}

func New(db *sqlx.DB) *Stores {
	return &Stores{
		Participants: NewParticipantStore(db),
		Teams:        NewTeamStore(db),
		Games:        NewGameStore(db),
		Transfers:    NewTransferStore(db),
		Tournaments:  NewTournamentStore(db),
	}
}

// Stores take an optional *sqlx.Tx on every call. With a nil tx they run
// against the pool directly.
func conn(db *sqlx.DB, tx *sqlx.Tx) sqlx.ExtContext {
	if tx != nil {
		return tx
	}
	return db
}

// IsUniqueViolation reports whether err came from a UNIQUE or PRIMARY KEY
// constraint.
func IsUniqueViolation(err error) bool {
	var se sqlite3.Error
	if !errors.As(err, &se) {
		return false
	}
	return se.ExtendedCode == sqlite3.ErrConstraintUnique || se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
}

func expectOne(res sql.Result, missing error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return missing
	}
	return nil
}
