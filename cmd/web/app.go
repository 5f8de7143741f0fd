package main

import (
	"log/slog"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/jmoiron/sqlx"

	"github.com/AdamBeresnev/spread-pool/internal/config"
	"github.com/AdamBeresnev/spread-pool/internal/events"
	"github.com/AdamBeresnev/spread-pool/internal/metrics"
	"github.com/AdamBeresnev/spread-pool/internal/service"
	"github.com/AdamBeresnev/spread-pool/internal/simulate"
	"github.com/AdamBeresnev/spread-pool/internal/store"
)

type application struct {
	cfg         *config.Config
	db          *sqlx.DB
	sessions    *scs.SessionManager
	logger      *slog.Logger
	progression *service.ProgressionService
	ownership   *service.OwnershipService
	query       *service.QueryService
	simulation  *service.SimulationService
}

func newApplication(cfg *config.Config, database *sqlx.DB, sessions *scs.SessionManager, publisher events.Publisher, m *metrics.Metrics, logger *slog.Logger) *application {
	stores := store.New(database)

	progression := service.NewProgressionService(database, stores, cfg.Pool.PushPolicy).
		WithEvents(publisher).
		WithMetrics(m).
		WithLogger(logger)

	seed := cfg.Simulate.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	sim := simulate.NewSeeded(seed, cfg.Simulate.UpsetProbability)

	return &application{
		cfg:         cfg,
		db:          database,
		sessions:    sessions,
		logger:      logger,
		progression: progression,
		ownership:   service.NewOwnershipService(database, stores, publisher),
		query:       service.NewQueryService(database, stores),
		simulation:  service.NewSimulationService(progression, stores, sim),
	}
}
