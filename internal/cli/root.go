// Package cli implements the rinkleague command line.
package cli

import (
	"fmt"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/rinkleague/internal/config"
	"github.com/roach88/rinkleague/internal/lifecycle"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	Database   string // overrides db_path
	ConfigPath string // overrides RINK_CONFIG

	// Config is loaded before any subcommand runs.
	Config *config.Config

	// Tokens and Now override run tokens and the clock (for testing).
	Tokens lifecycle.RunTokenGenerator
	Now    func() time.Time
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the rinkleague CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rinkleague",
		Short: "Asynchronous hockey league",
		Long: `Run a hockey league: teams queue for matches, submit lineups and tactics,
and the engine plays each game tick by tick with reproducible play-by-play.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			cfg, err := config.Load(opts.ConfigPath)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to load config", err)
			}
			if opts.Database != "" {
				cfg.DBDriver = config.DriverSQLite
				cfg.DBPath = opts.Database
			}
			opts.Config = cfg
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "path to SQLite database (overrides config)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to YAML config file")

	cmd.AddCommand(NewTeamCommand(opts))
	cmd.AddCommand(NewMatchCommand(opts))
	cmd.AddCommand(NewSeasonCommand(opts))
	cmd.AddCommand(NewSoakCommand(opts))
	cmd.AddCommand(NewScenarioCommand(opts))

	return cmd
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

// cfg returns the loaded config, or the defaults when none was loaded.
func (o *RootOptions) cfg() *config.Config {
	if o.Config == nil {
		o.Config = config.New()
	}
	return o.Config
}
