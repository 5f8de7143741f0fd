package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/AdamBeresnev/spread-pool/internal/config"
	"github.com/AdamBeresnev/spread-pool/internal/db"
	"github.com/AdamBeresnev/spread-pool/internal/events"
	"github.com/AdamBeresnev/spread-pool/internal/metrics"
	"github.com/AdamBeresnev/spread-pool/internal/service"
)

func main() {
	configPath := os.Getenv("MMM_CONFIG")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal("Failed to load config: ", err)
	}

	logger := cfg.Log.NewLogger()
	slog.SetDefault(logger)

	database, err := db.OpenMigrated(cfg.Database.Path)
	if err != nil {
		log.Fatal("Failed to open database: ", err)
	}
	defer database.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bus := events.NewBus(logger)
	defer bus.Close()
	if err := bus.LogFinalized(ctx); err != nil {
		log.Fatal("Failed to subscribe to events: ", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	sessionManager := scs.New()
	sessionManager.Lifetime = cfg.HTTP.SessionLifetime
	sessionManager.Store = sqlite3store.New(database.DB)

	app := newApplication(cfg, database, sessionManager, bus, metrics.New(reg), logger)

	if cfg.Simulate.AutoplayInterval > 0 {
		autoplay, err := service.NewAutoplay(app.simulation, cfg.Pool.Year, cfg.Simulate.AutoplayInterval, logger)
		if err != nil {
			log.Fatal("Failed to start autoplay: ", err)
		}
		autoplay.Start()
		defer autoplay.Shutdown()
	}

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           newRouter(app, reg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server starting", slog.String("addr", cfg.HTTP.Addr), slog.Int("year", cfg.Pool.Year))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", slog.Any("error", err))
	}
}
