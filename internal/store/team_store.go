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

type TeamStore struct {
	db *sqlx.DB
}

// The current owner is never stored on the team. It is whatever the latest
// ownership_transfers entry says.
const teamSelect = `
	SELECT t.id, t.year, t.region, t.seed, t.name, t.slug, t.initial_owner_id, t.created_at,
		(SELECT o.to_owner_id FROM ownership_transfers o
			WHERE o.team_id = t.id ORDER BY o.seq DESC LIMIT 1) AS current_owner_id
	FROM teams t
`

const (
	createTeamQuery = `
		INSERT INTO teams (id, year, region, seed, name, slug, initial_owner_id)
		VALUES (:id, :year, :region, :seed, :name, :slug, :initial_owner_id)
	`
	getTeamQuery         = teamSelect + "WHERE t.id = ?"
	getTeamBySeedQuery   = teamSelect + "WHERE t.year = ? AND t.region = ? AND t.seed = ?"
	listTeamsQuery       = teamSelect + "WHERE t.year = ? ORDER BY t.region, t.seed"
	teamsOwnedByQuery    = "SELECT * FROM (" + teamSelect + "WHERE t.year = ?) WHERE current_owner_id = ? ORDER BY region, seed"
	setInitialOwnerQuery = "UPDATE teams SET initial_owner_id = ? WHERE id = ?"
	countTeamsQuery      = "SELECT COUNT(*) FROM teams WHERE year = ?"
)

func NewTeamStore(db *sqlx.DB) *TeamStore {
	return &TeamStore{db: db}
}

func (s *TeamStore) CreateTeams(ctx context.Context, tx *sqlx.Tx, teams []bracket.Team) error {
	if len(teams) == 0 {
		return nil
	}
	_, err := sqlx.NamedExecContext(ctx, conn(s.db, tx), createTeamQuery, teams)
	return err
}

func (s *TeamStore) GetTeam(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*bracket.Team, error) {
	var team bracket.Team
	err := sqlx.GetContext(ctx, conn(s.db, tx), &team, getTeamQuery, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("team %s: %w", id, bracket.ErrTeamNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &team, nil
}

func (s *TeamStore) GetTeamBySeed(ctx context.Context, tx *sqlx.Tx, year int, region bracket.Region, seed int) (*bracket.Team, error) {
	var team bracket.Team
	err := sqlx.GetContext(ctx, conn(s.db, tx), &team, getTeamBySeedQuery, year, region, seed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%d %s seed %d: %w", year, region, seed, bracket.ErrTeamNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &team, nil
}

func (s *TeamStore) ListTeams(ctx context.Context, tx *sqlx.Tx, year int) ([]bracket.Team, error) {
	var teams []bracket.Team
	err := sqlx.SelectContext(ctx, conn(s.db, tx), &teams, listTeamsQuery, year)
	return teams, err
}

func (s *TeamStore) TeamsOwnedBy(ctx context.Context, tx *sqlx.Tx, year int, ownerID uuid.UUID) ([]bracket.Team, error) {
	var teams []bracket.Team
	err := sqlx.SelectContext(ctx, conn(s.db, tx), &teams, teamsOwnedByQuery, year, ownerID)
	return teams, err
}

func (s *TeamStore) SetInitialOwner(ctx context.Context, tx *sqlx.Tx, teamID, ownerID uuid.UUID) error {
	res, err := conn(s.db, tx).ExecContext(ctx, setInitialOwnerQuery, ownerID, teamID)
	if err != nil {
		return err
	}
	return expectOne(res, fmt.Errorf("team %s: %w", teamID, bracket.ErrTeamNotFound))
}

func (s *TeamStore) CountTeams(ctx context.Context, tx *sqlx.Tx, year int) (int, error) {
	var n int
	err := sqlx.GetContext(ctx, conn(s.db, tx), &n, countTeamsQuery, year)
	return n, err
}
