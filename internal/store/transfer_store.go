package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/AdamBeresnev/spread-pool/internal/bracket"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// TransferStore owns the append-only ownership log. Entries are never updated
// or deleted; corrections are new entries.
type TransferStore struct {
	db *sqlx.DB
}

const (
	appendTransferQuery = `
		INSERT INTO ownership_transfers (id, year, team_id, game_id, round, kind, from_owner_id, to_owner_id, note)
		VALUES (:id, :year, :team_id, :game_id, :round, :kind, :from_owner_id, :to_owner_id, :note)
	`
	getTransferQuery      = "SELECT * FROM ownership_transfers WHERE seq = ?"
	transfersForTeamQuery = "SELECT * FROM ownership_transfers WHERE team_id = ? ORDER BY seq ASC"
	transfersForYearQuery = "SELECT * FROM ownership_transfers WHERE year = ? ORDER BY seq ASC"
	advanceForQuery       = "SELECT * FROM ownership_transfers WHERE team_id = ? AND round = ? AND kind = 'advance'"
)

func NewTransferStore(db *sqlx.DB) *TransferStore {
	return &TransferStore{db: db}
}

// Append writes t and fills in its sequence number and timestamp.
func (s *TransferStore) Append(ctx context.Context, tx *sqlx.Tx, t *bracket.OwnershipTransfer) error {
	c := conn(s.db, tx)
	res, err := sqlx.NamedExecContext(ctx, c, appendTransferQuery, t)
	if err != nil {
		return err
	}
	seq, err := res.LastInsertId()
	if err != nil {
		return err
	}
	return sqlx.GetContext(ctx, c, t, getTransferQuery, seq)
}

func (s *TransferStore) ListForTeam(ctx context.Context, tx *sqlx.Tx, teamID uuid.UUID) ([]bracket.OwnershipTransfer, error) {
	var log []bracket.OwnershipTransfer
	err := sqlx.SelectContext(ctx, conn(s.db, tx), &log, transfersForTeamQuery, teamID)
	return log, err
}

func (s *TransferStore) ListForYear(ctx context.Context, tx *sqlx.Tx, year int) ([]bracket.OwnershipTransfer, error) {
	var log []bracket.OwnershipTransfer
	err := sqlx.SelectContext(ctx, conn(s.db, tx), &log, transfersForYearQuery, year)
	return log, err
}

// AdvanceFor returns the advance entry written when the team won its game in
// round, or nil when there is none.
func (s *TransferStore) AdvanceFor(ctx context.Context, tx *sqlx.Tx, teamID uuid.UUID, round bracket.Round) (*bracket.OwnershipTransfer, error) {
	var t bracket.OwnershipTransfer
	err := sqlx.GetContext(ctx, conn(s.db, tx), &t, advanceForQuery, teamID, round)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}
