package cli

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	gormlogger "gorm.io/gorm/logger"

	"github.com/roach88/rinkleague/internal/config"
	"github.com/roach88/rinkleague/internal/lifecycle"
	"github.com/roach88/rinkleague/internal/metrics"
	"github.com/roach88/rinkleague/internal/sim"
	"github.com/roach88/rinkleague/internal/store"
	"github.com/roach88/rinkleague/internal/store/pgstore"
)

// app is everything a command needs to talk to the league.
type app struct {
	svc     *lifecycle.Service
	backend store.Backend
	metrics *metrics.Manager
	logger  *slog.Logger
	out     *OutputFormatter
}

// openApp opens the configured backend and builds the league service.
// extra is applied last. Callers must Close the app.
func openApp(opts *RootOptions, cmd *cobra.Command, extra ...lifecycle.Option) (*app, error) {
	cfg := opts.cfg()
	logger := newLogger(cfg, opts.Verbose, cmd.ErrOrStderr())

	backend, err := openBackend(cfg, opts.Verbose)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	logger.Debug("database ready", "driver", cfg.DBDriver)

	m := metrics.NewManager(metrics.WithMetricsEnabled(cfg.MetricsAddr != ""))
	svcOpts := []lifecycle.Option{
		lifecycle.WithLogger(logger),
		lifecycle.WithMetrics(m),
		lifecycle.WithEngine(sim.New(sim.WithLogger(logger), sim.WithLateGameAI(cfg.LateGameAI))),
		lifecycle.WithHumanWait(cfg.HumanWait()),
		lifecycle.WithSubmissionWindow(cfg.SubmissionWindow()),
		lifecycle.WithSeasonID(cfg.SeasonID),
	}
	if opts.Tokens != nil {
		svcOpts = append(svcOpts, lifecycle.WithTokens(opts.Tokens))
	}
	if opts.Now != nil {
		svcOpts = append(svcOpts, lifecycle.WithClock(opts.Now))
	}
	svcOpts = append(svcOpts, extra...)

	return &app{
		svc:     lifecycle.New(backend, svcOpts...),
		backend: backend,
		metrics: m,
		logger:  logger,
		out:     opts.formatter(cmd),
	}, nil
}

func (a *app) Close() {
	if err := a.backend.Close(); err != nil {
		a.logger.Error("error closing database", "error", err)
	}
}

func openBackend(cfg *config.Config, verbose bool) (store.Backend, error) {
	switch cfg.DBDriver {
	case config.DriverPostgres:
		level := gormlogger.Silent
		if verbose {
			level = gormlogger.Info
		}
		return pgstore.Open(cfg.DBDSN, pgstore.WithLogger(gormlogger.Default.LogMode(level)))
	case config.DriverSQLite, "":
		return store.Open(cfg.DBPath)
	default:
		return nil, fmt.Errorf("unknown db_driver %q", cfg.DBDriver)
	}
}

// parseLevel accepts debug, info, warn/warning and error in any case.
func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// newLogger builds the process logger. Verbose forces debug.
func newLogger(cfg *config.Config, verbose bool, w io.Writer) *slog.Logger {
	level, err := parseLevel(cfg.LogLevel)
	if verbose {
		level = slog.LevelDebug
	}
	hopts := &slog.HandlerOptions{Level: level}

	var h slog.Handler = slog.NewTextHandler(w, hopts)
	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(w, hopts)
	}
	logger := slog.New(h)
	if err != nil {
		logger.Warn("invalid log_level; falling back to info", "log_level", cfg.LogLevel, "error", err)
	}
	return logger
}
