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

type ParticipantStore struct {
	db *sqlx.DB
}

const (
	createParticipantQuery = `
		INSERT INTO participants (id, name, email) VALUES
		(:id, :name, :email)
	`
	getParticipantQuery       = "SELECT * FROM participants WHERE id = ?"
	getParticipantByNameQuery = "SELECT * FROM participants WHERE name = ? COLLATE NOCASE"
	listParticipantsQuery     = "SELECT * FROM participants ORDER BY name ASC"
)

func NewParticipantStore(db *sqlx.DB) *ParticipantStore {
	return &ParticipantStore{db: db}
}

func (s *ParticipantStore) CreateParticipant(ctx context.Context, tx *sqlx.Tx, p *bracket.Participant) error {
	_, err := sqlx.NamedExecContext(ctx, conn(s.db, tx), createParticipantQuery, p)
	return err
}

func (s *ParticipantStore) GetParticipant(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*bracket.Participant, error) {
	var p bracket.Participant
	err := sqlx.GetContext(ctx, conn(s.db, tx), &p, getParticipantQuery, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("participant %s: %w", id, bracket.ErrParticipantNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *ParticipantStore) GetParticipantByName(ctx context.Context, tx *sqlx.Tx, name string) (*bracket.Participant, error) {
	var p bracket.Participant
	err := sqlx.GetContext(ctx, conn(s.db, tx), &p, getParticipantByNameQuery, name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("participant %q: %w", name, bracket.ErrParticipantNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *ParticipantStore) ListParticipants(ctx context.Context, tx *sqlx.Tx) ([]bracket.Participant, error) {
	var participants []bracket.Participant
	err := sqlx.SelectContext(ctx, conn(s.db, tx), &participants, listParticipantsQuery)
	return participants, err
}
