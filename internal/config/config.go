package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/AdamBeresnev/spread-pool/internal/bracket"
	"github.com/AdamBeresnev/spread-pool/internal/simulate"
)

type Config struct {
	Database DatabaseConfig `yaml:"database"`
	HTTP     HTTPConfig     `yaml:"http"`
	Pool     PoolConfig     `yaml:"pool"`
	Simulate SimulateConfig `yaml:"simulate"`
	Log      LogConfig      `yaml:"log"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type HTTPConfig struct {
	Addr            string        `yaml:"addr"`
	AdminToken      string        `yaml:"admin_token"`
	SessionLifetime time.Duration `yaml:"session_lifetime"`
}

type PoolConfig struct {
	Year       int                `yaml:"year"`
	PushPolicy bracket.PushPolicy `yaml:"push_policy"`
}

type SimulateConfig struct {
	// AutoplayInterval of zero leaves autoplay off.
	AutoplayInterval time.Duration `yaml:"autoplay_interval"`
	UpsetProbability float64       `yaml:"upset_probability"`
	Seed             uint64        `yaml:"seed"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text|json
}

func Default() *Config {
	return &Config{
		Database: DatabaseConfig{Path: "mmm.db"},
		HTTP: HTTPConfig{
			Addr:            ":8080",
			SessionLifetime: 24 * time.Hour,
		},
		Pool: PoolConfig{
			Year:       time.Now().Year(),
			PushPolicy: bracket.PushUnderdog,
		},
		Simulate: SimulateConfig{UpsetProbability: simulate.DefaultUpsetProbability},
		Log:      LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads .env if present, then the YAML file at filename over the
// defaults, then MMM_* environment overrides. A missing file is not an error.
func Load(filename string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()
	if filename != "" {
		data, err := os.ReadFile(filename)
		switch {
		case errors.Is(err, os.ErrNotExist):
			slog.Debug("no config file, using defaults and environment", "file", filename)
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to unmarshal config: %w", err)
			}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("MMM_DB_PATH"); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv("MMM_HTTP_ADDR"); v != "" {
		c.HTTP.Addr = v
	}
	if v := os.Getenv("MMM_ADMIN_TOKEN"); v != "" {
		c.HTTP.AdminToken = v
	}
	if v := os.Getenv("MMM_SESSION_LIFETIME"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("MMM_SESSION_LIFETIME: %w", err)
		}
		c.HTTP.SessionLifetime = d
	}
	if v := os.Getenv("MMM_YEAR"); v != "" {
		year, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("MMM_YEAR: %w", err)
		}
		c.Pool.Year = year
	}
	if v := os.Getenv("MMM_PUSH_POLICY"); v != "" {
		c.Pool.PushPolicy = bracket.PushPolicy(v)
	}
	if v := os.Getenv("MMM_AUTOPLAY_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("MMM_AUTOPLAY_INTERVAL: %w", err)
		}
		c.Simulate.AutoplayInterval = d
	}
	if v := os.Getenv("MMM_UPSET_PROBABILITY"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("MMM_UPSET_PROBABILITY: %w", err)
		}
		c.Simulate.UpsetProbability = f
	}
	if v := os.Getenv("MMM_SIMULATE_SEED"); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("MMM_SIMULATE_SEED: %w", err)
		}
		c.Simulate.Seed = seed
	}
	if v := os.Getenv("MMM_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("MMM_LOG_FORMAT"); v != "" {
		c.Log.Format = v
	}
	return nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.Database.Path) == "" {
		return errors.New("database path is required")
	}
	policy, err := bracket.ParsePushPolicy(string(c.Pool.PushPolicy))
	if err != nil {
		return err
	}
	c.Pool.PushPolicy = policy
	if c.Pool.Year < 1939 {
		return fmt.Errorf("year %d predates the tournament", c.Pool.Year)
	}
	if c.Simulate.UpsetProbability < 0 || c.Simulate.UpsetProbability > 1 {
		return fmt.Errorf("upset probability %g is outside [0, 1]", c.Simulate.UpsetProbability)
	}
	if c.Simulate.AutoplayInterval < 0 {
		return errors.New("autoplay interval must not be negative")
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}
	return nil
}

func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("log level: %w", err)
	}
	return level, nil
}

// NewLogger builds the process logger described by the log section.
func (l LogConfig) NewLogger() *slog.Logger {
	level, err := l.SlogLevel()
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if l.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}
