package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/AdamBeresnev/spread-pool/internal/bracket"
	"github.com/AdamBeresnev/spread-pool/internal/store"
	"github.com/AdamBeresnev/spread-pool/internal/utils"
)

const maxNameLength = 50

type ParticipantService struct {
	db     *sqlx.DB
	stores *store.Stores
}

func NewParticipantService(db *sqlx.DB, stores *store.Stores) *ParticipantService {
	return &ParticipantService{db: db, stores: stores}
}

func (s *ParticipantService) Create(ctx context.Context, name, email string) (*bracket.Participant, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, bracket.Invalid("name", "is required")
	}
	if len(name) > maxNameLength {
		return nil, bracket.Invalid("name", fmt.Sprintf("%q exceeds %d characters", name, maxNameLength))
	}

	p := &bracket.Participant{ID: uuid.New(), Name: name, Email: utils.StringOrNil(email)}
	if err := s.stores.Participants.CreateParticipant(ctx, nil, p); err != nil {
		if store.IsUniqueViolation(err) {
			return nil, bracket.Invalid("name", fmt.Sprintf("%q is already taken", name))
		}
		return nil, err
	}
	return s.stores.Participants.GetParticipant(ctx, nil, p.ID)
}

func (s *ParticipantService) List(ctx context.Context) ([]bracket.Participant, error) {
	return s.stores.Participants.ListParticipants(ctx, nil)
}

func (s *ParticipantService) Get(ctx context.Context, id uuid.UUID) (*bracket.Participant, error) {
	return s.stores.Participants.GetParticipant(ctx, nil, id)
}

// CreateDemo fills the pool with n made-up participants.
func (s *ParticipantService) CreateDemo(ctx context.Context, n int, faker *gofakeit.Faker) ([]bracket.Participant, error) {
	var created []bracket.Participant
	for attempts := 0; len(created) < n; attempts++ {
		if attempts > n*10 {
			return created, fmt.Errorf("gave up after %d attempts at unique names", attempts)
		}
		p, err := s.Create(ctx, faker.Name(), faker.Email())
		if bracket.IsValidation(err) {
			continue
		}
		if err != nil {
			return created, err
		}
		created = append(created, *p)
	}
	return created, nil
}
