package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the planner
type Config struct {
	Log     LogConfig
	Planner PlannerConfig
	Catalog CatalogConfig
	Metrics MetricsConfig
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, text
}

// PlannerConfig holds the routing model and search settings
type PlannerConfig struct {
	Days             int
	TimeBudget       time.Duration
	Seed             int64
	MaxIterations    int // 0 means bounded by TimeBudget only
	SpeedKmh         float64
	HopBufferMinutes int
	DayStartMinute   int
	DayEndMinute     int
	MaxWaitMinutes   int
	PrizeScale       float64
	StartWeekday     int // 0 = Sunday
}

// CatalogConfig points at an optional category table overlay
type CatalogConfig struct {
	Path string
}

// MetricsConfig controls the Prometheus textfile export
type MetricsConfig struct {
	Textfile string
}

// Load reads configuration from file and environment variables. An explicit
// path must exist; otherwise config.yaml is looked up in the usual places and
// its absence is fine.
func Load(path string) (*Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("$HOME/.gotravel")
	}

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("planner.days", 1)
	v.SetDefault("planner.timeBudget", "10s")
	v.SetDefault("planner.seed", 1)
	v.SetDefault("planner.maxIterations", 0)
	v.SetDefault("planner.speedKmh", 12.0)
	v.SetDefault("planner.hopBufferMinutes", 10)
	v.SetDefault("planner.dayStartMinute", 540)
	v.SetDefault("planner.dayEndMinute", 1320)
	v.SetDefault("planner.maxWaitMinutes", 120)
	v.SetDefault("planner.prizeScale", 10.0)
	v.SetDefault("planner.startWeekday", 1)
	v.SetDefault("catalog.path", "")
	v.SetDefault("metrics.textfile", "")

	// GOTRAVEL_PLANNER_DAYS overrides planner.days
	v.SetEnvPrefix("GOTRAVEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the router cannot work with.
func (c *Config) Validate() error {
	p := c.Planner
	switch {
	case p.Days < 1:
		return fmt.Errorf("config: planner.days must be >= 1, got %d", p.Days)
	case p.TimeBudget <= 0:
		return fmt.Errorf("config: planner.timeBudget must be positive, got %s", p.TimeBudget)
	case p.SpeedKmh <= 0:
		return fmt.Errorf("config: planner.speedKmh must be positive, got %g", p.SpeedKmh)
	case p.DayStartMinute < 0 || p.DayEndMinute > 24*60 || p.DayEndMinute <= p.DayStartMinute:
		return fmt.Errorf("config: bad day bounds %d..%d", p.DayStartMinute, p.DayEndMinute)
	case p.StartWeekday < 0 || p.StartWeekday > 6:
		return fmt.Errorf("config: planner.startWeekday must be 0..6, got %d", p.StartWeekday)
	case p.HopBufferMinutes < 0 || p.MaxWaitMinutes < 0 || p.MaxIterations < 0:
		return errors.New("config: planner minutes and iterations must not be negative")
	}
	return nil
}

// NewLogger creates a new slog.Logger based on the configuration
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(c.Log.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch strings.ToLower(c.Log.Format) {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	default: // "text" or anything else
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}
