package cli

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/roach88/transition/internal/config"
	"github.com/roach88/transition/internal/events"
)

// RootOptions holds global flags for all commands, and the configuration
// resolved from them before any subcommand runs.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigFile string
	Database   string

	// IDs overrides the dispatch id generator. Tests set a fixed one.
	IDs events.IDGenerator

	Config config.Config
	Logger *slog.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the transition CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "transition",
		Short: "Transition - app registry and configuration",
		Long: `Keep track of the automation apps installed on disk, the host programs
they work with, whether they are enabled for each host, and whether their
content still matches what was registered or signed.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			if cmd.Annotations[annotationNoConfig] == "true" {
				return nil
			}
			return loadConfig(v, opts, cmd)
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output (debug logging)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVarP(&opts.ConfigFile, "config", "c", "",
		"config file (default: .transition/config.yaml, then ~/.config/transition/config.yaml)")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "path to the registry database (overrides config)")

	_ = v.BindPFlag("database", cmd.PersistentFlags().Lookup("db"))

	// Add subcommands
	cmd.AddCommand(NewInitCommand(opts))
	cmd.AddCommand(NewInventoryCommand(opts))
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewAvailableCommand(opts))
	cmd.AddCommand(NewStatusCommand(opts))
	cmd.AddCommand(NewEnableCommand(opts))
	cmd.AddCommand(NewDisableCommand(opts))
	cmd.AddCommand(NewDescribeCommand(opts))
	cmd.AddCommand(NewStateCommand(opts))
	cmd.AddCommand(NewSignCommand(opts))
	cmd.AddCommand(NewHostsCommand(opts))
	cmd.AddCommand(NewTypesCommand(opts))
	cmd.AddCommand(NewResetCommand(opts))
	cmd.AddCommand(NewWatchCommand(opts))

	return cmd
}

// annotationNoConfig marks commands that run without loading configuration.
const annotationNoConfig = "transition/no-config"

func loadConfig(v *viper.Viper, opts *RootOptions, cmd *cobra.Command) error {
	cfg, err := config.Load(v, opts.ConfigFile)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load configuration", err)
	}
	opts.Config = cfg

	level := cfg.Level()
	if opts.Verbose {
		level = slog.LevelDebug
	}
	opts.Logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	opts.Logger.Debug("configuration loaded",
		"config_file", v.ConfigFileUsed(),
		"database", cfg.Database,
		"link_policy", cfg.Policy(),
	)
	return nil
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}

func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}
}
