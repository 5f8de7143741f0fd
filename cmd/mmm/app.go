package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v2"

	"github.com/AdamBeresnev/spread-pool/internal/config"
	"github.com/AdamBeresnev/spread-pool/internal/db"
	"github.com/AdamBeresnev/spread-pool/internal/events"
	"github.com/AdamBeresnev/spread-pool/internal/metrics"
	"github.com/AdamBeresnev/spread-pool/internal/service"
	"github.com/AdamBeresnev/spread-pool/internal/simulate"
	"github.com/AdamBeresnev/spread-pool/internal/store"
)

func newApp() *cli.App {
	return &cli.App{
		Name:  "mmm",
		Usage: "run a bracket pool where covering the spread steals the team",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Value: "config.yaml", EnvVars: []string{"MMM_CONFIG"}, Usage: "path to the YAML config"},
			&cli.StringFlag{Name: "db", Usage: "database path, overrides the config"},
			&cli.IntFlag{Name: "year", Usage: "tournament year, overrides the config"},
		},
		Commands: []*cli.Command{
			migrateCommand(),
			seedCommand(),
			participantsCommand(),
			draftCommand(),
			finalizeCommand(),
			spreadCommand(),
			correctCommand(),
			simulateCommand(),
			standingsCommand(),
			exportCommand(),
		},
	}
}

// env is what every command needs: config, an open migrated database and the
// services over it.
type env struct {
	cfg         *config.Config
	db          *sqlx.DB
	logger      *slog.Logger
	stores      *store.Stores
	progression *service.ProgressionService
	query       *service.QueryService
}

func openEnv(c *cli.Context) (*env, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if path := c.String("db"); path != "" {
		cfg.Database.Path = path
	}
	if year := c.Int("year"); year != 0 {
		cfg.Pool.Year = year
	}

	logger := cfg.Log.NewLogger()
	slog.SetDefault(logger)

	database, err := db.OpenMigrated(cfg.Database.Path)
	if err != nil {
		return nil, err
	}

	stores := store.New(database)
	progression := service.NewProgressionService(database, stores, cfg.Pool.PushPolicy).
		WithEvents(events.Discard{}).
		WithMetrics(metrics.New(prometheus.NewRegistry())).
		WithLogger(logger)

	return &env{
		cfg:         cfg,
		db:          database,
		logger:      logger,
		stores:      stores,
		progression: progression,
		query:       service.NewQueryService(database, stores),
	}, nil
}

func (e *env) Close() error {
	return e.db.Close()
}

// simulator uses the --seed flag when set, then the config, then the clock.
func (e *env) simulator(c *cli.Context) *simulate.Simulator {
	seed := e.cfg.Simulate.Seed
	if c.IsSet("seed") {
		seed = c.Uint64("seed")
	}
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return simulate.NewSeeded(seed, e.cfg.Simulate.UpsetProbability)
}

// withEnv wraps a command action with env setup and teardown.
func withEnv(action func(c *cli.Context, e *env) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		e, err := openEnv(c)
		if err != nil {
			return err
		}
		defer e.Close()
		return action(c, e)
	}
}
