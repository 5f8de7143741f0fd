package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// Autoplay simulates one game per tick, for demos without live scores.
type Autoplay struct {
	scheduler gocron.Scheduler
	sim       *SimulationService
	year      int
	timeout   time.Duration
	logger    *slog.Logger
}

func NewAutoplay(sim *SimulationService, year int, interval time.Duration, logger *slog.Logger) (*Autoplay, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}

	a := &Autoplay{scheduler: scheduler, sim: sim, year: year, timeout: interval, logger: logger}
	_, err = scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() { a.Tick() }),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return nil, fmt.Errorf("schedule autoplay: %w", err)
	}
	return a, nil
}

func (a *Autoplay) Start() {
	a.logger.Info("Autoplay started", slog.Int("year", a.year))
	a.scheduler.Start()
}

func (a *Autoplay) Shutdown() error {
	return a.scheduler.Shutdown()
}

// Tick plays the next game. It reports whether a game was played.
func (a *Autoplay) Tick() bool {
	ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
	defer cancel()

	res, err := a.sim.SimulateNext(ctx, a.year)
	switch {
	case errors.Is(err, ErrNothingToPlay):
		a.logger.Debug("Autoplay idle; tournament complete", slog.Int("year", a.year))
		return false
	case err != nil:
		a.logger.Error("Autoplay failed", slog.Any("error", err))
		return false
	}
	a.logger.Info("Autoplay finalized game", slog.String("game_id", res.GameID.String()), slog.Bool("champion", res.Champion))
	return true
}
