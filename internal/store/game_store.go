package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/AdamBeresnev/spread-pool/internal/bracket"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type GameStore struct {
	db *sqlx.DB
}

const (
	createGameQuery = `
		INSERT INTO games (id, year, round, region, position, slot_a_team_id, slot_b_team_id,
			slot_a_owner_id, slot_b_owner_id, spread, status, next_game_id, next_slot)
		VALUES (:id, :year, :round, :region, :position, :slot_a_team_id, :slot_b_team_id,
			:slot_a_owner_id, :slot_b_owner_id, :spread, :status, :next_game_id, :next_slot)
	`
	getGameQuery = "SELECT * FROM games WHERE id = ?"

	// Only a non-final row can be finalized; a second writer matches nothing.
	finalizeGameQuery = `
		UPDATE games SET
			score_a = :score_a,
			score_b = :score_b,
			spread = :spread,
			status = :status,
			team_winner = :team_winner,
			owner_winner = :owner_winner,
			owner_winner_id = :owner_winner_id,
			finalized_at = :finalized_at
		WHERE id = :id AND status != 'final'
	`
	updateSlotsQuery = `
		UPDATE games SET
			slot_a_team_id = :slot_a_team_id,
			slot_b_team_id = :slot_b_team_id,
			slot_a_owner_id = :slot_a_owner_id,
			slot_b_owner_id = :slot_b_owner_id,
			status = :status
		WHERE id = :id AND status != 'final'
	`
	setSpreadQuery  = "UPDATE games SET spread = ? WHERE id = ? AND status != 'final'"
	setLiveQuery    = "UPDATE games SET score_a = ?, score_b = ?, status = ? WHERE id = ? AND status IN ('scheduled', 'in_progress')"
	ownerSnapshotAQ = "UPDATE games SET slot_a_owner_id = ? WHERE slot_a_team_id = ? AND status != 'final'"
	ownerSnapshotBQ = "UPDATE games SET slot_b_owner_id = ? WHERE slot_b_team_id = ? AND status != 'final'"
)

// GameFilter narrows ListGames. Zero fields match everything.
type GameFilter struct {
	Round  bracket.Round
	Region bracket.Region
	Status bracket.GameStatus
	TeamID *uuid.UUID
}

func NewGameStore(db *sqlx.DB) *GameStore {
	return &GameStore{db: db}
}

func (s *GameStore) CreateGames(ctx context.Context, tx *sqlx.Tx, games []bracket.Game) error {
	if len(games) == 0 {
		return nil
	}
	_, err := sqlx.NamedExecContext(ctx, conn(s.db, tx), createGameQuery, games)
	return err
}

func (s *GameStore) GetGame(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*bracket.Game, error) {
	var game bracket.Game
	err := sqlx.GetContext(ctx, conn(s.db, tx), &game, getGameQuery, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("game %s: %w", id, bracket.ErrGameNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &game, nil
}

func (s *GameStore) ListGames(ctx context.Context, tx *sqlx.Tx, year int, f GameFilter) ([]bracket.Game, error) {
	where := []string{"year = ?"}
	args := []any{year}
	if f.Round != 0 {
		where = append(where, "round = ?")
		args = append(args, f.Round)
	}
	if f.Region != "" {
		where = append(where, "region = ?")
		args = append(args, string(f.Region))
	}
	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, f.Status)
	}
	if f.TeamID != nil {
		where = append(where, "(slot_a_team_id = ? OR slot_b_team_id = ?)")
		args = append(args, *f.TeamID, *f.TeamID)
	}

	query := "SELECT * FROM games WHERE " + strings.Join(where, " AND ") +
		" ORDER BY round DESC, region IS NULL, region, position"

	var games []bracket.Game
	err := sqlx.SelectContext(ctx, conn(s.db, tx), &games, query, args...)
	return games, err
}

// SaveFinal writes the outcome of a finalized game. It reports false when the
// row was already final.
func (s *GameStore) SaveFinal(ctx context.Context, tx *sqlx.Tx, g *bracket.Game) (bool, error) {
	res, err := sqlx.NamedExecContext(ctx, conn(s.db, tx), finalizeGameQuery, g)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// UpdateSlots writes both slots and the status of a game that is not final.
func (s *GameStore) UpdateSlots(ctx context.Context, tx *sqlx.Tx, g *bracket.Game) error {
	res, err := sqlx.NamedExecContext(ctx, conn(s.db, tx), updateSlotsQuery, g)
	if err != nil {
		return err
	}
	return expectOne(res, bracket.Integrity(nil, "%s is already final", g.Label()))
}

func (s *GameStore) SetSpread(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, spread *float64) error {
	res, err := conn(s.db, tx).ExecContext(ctx, setSpreadQuery, spread, id)
	if err != nil {
		return err
	}
	return expectOne(res, bracket.Integrity(nil, "game %s is already final", id))
}

func (s *GameStore) SetLiveScore(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, scoreA, scoreB int) error {
	res, err := conn(s.db, tx).ExecContext(ctx, setLiveQuery, scoreA, scoreB, bracket.GameInProgress, id)
	if err != nil {
		return err
	}
	return expectOne(res, bracket.Integrity(nil, "game %s is not scheduled or in progress", id))
}

// RefreshOwnerSnapshot points the owner snapshot of every unfinished game the
// team sits in at ownerID.
func (s *GameStore) RefreshOwnerSnapshot(ctx context.Context, tx *sqlx.Tx, teamID, ownerID uuid.UUID) error {
	c := conn(s.db, tx)
	if _, err := c.ExecContext(ctx, ownerSnapshotAQ, ownerID, teamID); err != nil {
		return err
	}
	_, err := c.ExecContext(ctx, ownerSnapshotBQ, ownerID, teamID)
	return err
}
