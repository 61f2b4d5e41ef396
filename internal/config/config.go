// Package config defines the league's process configuration and how it is
// layered from defaults, an optional YAML file and RINK_ environment
// variables.
package config

import (
	"fmt"
	"time"
)

// Storage drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the slog handler: text or json.
	LogFormat string `koanf:"log_format"`

	// DBDriver selects the backend: sqlite or postgres.
	DBDriver string `koanf:"db_driver"`

	// DBPath is the SQLite database file.
	DBPath string `koanf:"db_path"`

	// DBDSN is the PostgreSQL connection string.
	DBDSN string `koanf:"db_dsn"`

	// SeasonID files new matches under a season.
	SeasonID int64 `koanf:"season_id"`

	// HumanWaitSeconds is how long a new match waits for a human opponent.
	HumanWaitSeconds int `koanf:"human_wait_seconds"`

	// SubmissionWindowMinutes is how long paired sides have to submit plans.
	SubmissionWindowMinutes int `koanf:"submission_window_minutes"`

	// PlayoffTeams is the default playoff field size.
	PlayoffTeams int `koanf:"playoff_teams"`

	// ByePolicy is the default playoff bye rule: reject or top-seeds.
	ByePolicy string `koanf:"bye_policy"`

	// LateGameAI toggles the bot late-game tactics adjustment.
	LateGameAI bool `koanf:"late_game_ai"`

	// MetricsAddr is where soak serves /metrics; empty disables it.
	MetricsAddr string `koanf:"metrics_addr"`
}

// New returns a Config holding the defaults.
func New() *Config {
	return &Config{
		LogLevel:                "info",
		LogFormat:               "text",
		DBDriver:                DriverSQLite,
		DBPath:                  "rinkleague.db",
		SeasonID:                1,
		HumanWaitSeconds:        30,
		SubmissionWindowMinutes: 10,
		PlayoffTeams:            8,
		ByePolicy:               "reject",
		LateGameAI:              true,
	}
}

// HumanWait returns HumanWaitSeconds as a duration.
func (c *Config) HumanWait() time.Duration {
	return time.Duration(c.HumanWaitSeconds) * time.Second
}

// SubmissionWindow returns SubmissionWindowMinutes as a duration.
func (c *Config) SubmissionWindow() time.Duration {
	return time.Duration(c.SubmissionWindowMinutes) * time.Minute
}

// Validate reports the first invalid field, wrapped in ErrInvalidConfig.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: log_level %q", ErrInvalidConfig, c.LogLevel)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log_format %q", ErrInvalidConfig, c.LogFormat)
	}
	switch c.DBDriver {
	case DriverSQLite:
		if c.DBPath == "" {
			return fmt.Errorf("%w: db_path must not be empty", ErrInvalidConfig)
		}
	case DriverPostgres:
		if c.DBDSN == "" {
			return fmt.Errorf("%w: db_dsn is required for postgres", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: db_driver %q", ErrInvalidConfig, c.DBDriver)
	}
	switch c.ByePolicy {
	case "", "reject", "top-seeds":
	default:
		return fmt.Errorf("%w: bye_policy %q", ErrInvalidConfig, c.ByePolicy)
	}
	if c.SeasonID <= 0 {
		return fmt.Errorf("%w: season_id must be positive", ErrInvalidConfig)
	}
	if c.HumanWaitSeconds <= 0 {
		return fmt.Errorf("%w: human_wait_seconds must be positive", ErrInvalidConfig)
	}
	if c.SubmissionWindowMinutes <= 0 {
		return fmt.Errorf("%w: submission_window_minutes must be positive", ErrInvalidConfig)
	}
	if c.PlayoffTeams <= 0 {
		return fmt.Errorf("%w: playoff_teams must be positive", ErrInvalidConfig)
	}
	return nil
}
