package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/AdamBeresnev/spread-pool/internal/bracket"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var ErrTournamentNotFound = errors.New("tournament not found")

type TournamentStore struct {
	db *sqlx.DB
}

const (
	createTournamentQuery = "INSERT INTO tournaments (year, status) VALUES (:year, :status)"
	getTournamentQuery    = "SELECT * FROM tournaments WHERE year = ?"
	listTournamentsQuery  = "SELECT * FROM tournaments ORDER BY year DESC"
	setStatusQuery        = "UPDATE tournaments SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE year = ?"
	setChampionQuery      = `
		UPDATE tournaments SET
			champion_team_id = ?,
			champion_owner_id = ?,
			status = 'completed',
			updated_at = CURRENT_TIMESTAMP
		WHERE year = ?
	`
)

// Tables in the order a year has to be cleared in.
var yearTables = []string{"ownership_transfers", "tournaments", "games", "teams"}

func NewTournamentStore(db *sqlx.DB) *TournamentStore {
	return &TournamentStore{db: db}
}

func (s *TournamentStore) CreateTournament(ctx context.Context, tx *sqlx.Tx, t *bracket.Tournament) error {
	_, err := sqlx.NamedExecContext(ctx, conn(s.db, tx), createTournamentQuery, t)
	return err
}

func (s *TournamentStore) GetTournament(ctx context.Context, tx *sqlx.Tx, year int) (*bracket.Tournament, error) {
	var t bracket.Tournament
	err := sqlx.GetContext(ctx, conn(s.db, tx), &t, getTournamentQuery, year)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%d: %w", year, ErrTournamentNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *TournamentStore) ListTournaments(ctx context.Context, tx *sqlx.Tx) ([]bracket.Tournament, error) {
	var ts []bracket.Tournament
	err := sqlx.SelectContext(ctx, conn(s.db, tx), &ts, listTournamentsQuery)
	return ts, err
}

func (s *TournamentStore) SetStatus(ctx context.Context, tx *sqlx.Tx, year int, status bracket.TournamentStatus) error {
	res, err := conn(s.db, tx).ExecContext(ctx, setStatusQuery, status, year)
	if err != nil {
		return err
	}
	return expectOne(res, fmt.Errorf("%d: %w", year, ErrTournamentNotFound))
}

func (s *TournamentStore) SetChampion(ctx context.Context, tx *sqlx.Tx, year int, teamID, ownerID uuid.UUID) error {
	res, err := conn(s.db, tx).ExecContext(ctx, setChampionQuery, teamID, ownerID, year)
	if err != nil {
		return err
	}
	return expectOne(res, fmt.Errorf("%d: %w", year, ErrTournamentNotFound))
}

// DeleteYear removes every row of a year. Participants are shared across
// years and stay.
func (s *TournamentStore) DeleteYear(ctx context.Context, tx *sqlx.Tx, year int) error {
	c := conn(s.db, tx)
	for _, table := range yearTables {
		if _, err := c.ExecContext(ctx, "DELETE FROM "+table+" WHERE year = ?", year); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return nil
}
