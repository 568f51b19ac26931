package cli

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/transition/internal/config"
)

// NewInitCommand creates the init command.
func NewInitCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default configuration file",
		Long: `Write a commented default configuration file.

The file goes to the --config path when given, otherwise to
.transition/config.yaml in the current directory. An existing file is
never overwritten.`,
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationNoConfig: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(rootOpts, cmd)
		},
	}
	return cmd
}

func runInit(opts *RootOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	path := opts.ConfigFile
	if path == "" {
		path = filepath.Join(".transition", "config.yaml")
	}
	if err := config.WriteDefaultConfig(path); err != nil {
		return formatter.Fail("failed to write configuration", err)
	}
	return formatter.Emit(map[string]string{"config": path}, textLine("wrote %s", path))
}
