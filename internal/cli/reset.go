package cli

import (
	"github.com/spf13/cobra"
)

// ResetOptions holds flags for the reset command.
type ResetOptions struct {
	*RootOptions
	Force bool
}

// NewResetCommand creates the reset command.
func NewResetCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ResetOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete the registry and recreate it empty",
		Long: `Delete the registry database and recreate it with the configured app
types and hosts. Every app registration and enablement is lost; run
inventory afterwards to register the apps on disk again.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReset(opts, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Force, "force", false, "confirm deletion of the registry")

	return cmd
}

func runReset(opts *ResetOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	if !opts.Force {
		return NewExitError(ExitCommandError, "reset deletes every registration; pass --force to confirm")
	}

	sess, err := openSession(opts.RootOptions)
	if err != nil {
		return formatter.Fail("failed to open registry", err)
	}
	defer sess.Close()

	if err := sess.registry.Reset(cmd.Context()); err != nil {
		return formatter.Fail("reset failed", err)
	}
	path := sess.store.Path()
	return formatter.Emit(map[string]string{"database": path}, textLine("registry reset: %s", path))
}
