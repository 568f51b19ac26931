package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/transition/internal/registry"
)

// ToggleOptions holds flags for the enable and disable commands.
type ToggleOptions struct {
	*RootOptions
	Strict bool
}

// ToggleResult is the JSON payload of enable and disable.
type ToggleResult struct {
	AppType string `json:"app_type"`
	AppName string `json:"app_name"`
	Host    string `json:"host,omitempty"`
	Enabled bool   `json:"enabled"`
	Changed bool   `json:"changed"`
}

// NewEnableCommand creates the enable command.
func NewEnableCommand(rootOpts *RootOptions) *cobra.Command {
	return newToggleCommand(rootOpts, true)
}

// NewDisableCommand creates the disable command.
func NewDisableCommand(rootOpts *RootOptions) *cobra.Command {
	return newToggleCommand(rootOpts, false)
}

func newToggleCommand(rootOpts *RootOptions, enable bool) *cobra.Command {
	opts := &ToggleOptions{RootOptions: rootOpts}

	verb := verbOf(enable)
	title := strings.ToUpper(verb[:1]) + verb[1:]

	cmd := &cobra.Command{
		Use:   verb + " <app-type> <app-name> [host]",
		Short: title + " an app for one host or for every host it declares",
		Long: fmt.Sprintf(`%s an app for one host, or for every host it declares when no host
is given. Hosts already in the requested state are left alone; with
--strict a call that changes nothing fails.

Examples:
  transition %s addin dummy
  transition %s addin dummy excel --strict`, title, verb, verb),
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			host := ""
			if len(args) == 3 {
				host = args[2]
			}
			return runToggle(opts, enable, args[0], args[1], host, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "fail when nothing changes")

	return cmd
}

func runToggle(opts *ToggleOptions, enable bool, appType, appName, host string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	sess, err := openSession(opts.RootOptions)
	if err != nil {
		return formatter.Fail("failed to open registry", err)
	}
	defer sess.Close()

	var toggleOpts []registry.ToggleOption
	if opts.Strict {
		toggleOpts = append(toggleOpts, registry.RequireChange())
	}

	toggle := sess.registry.DisableApp
	if enable {
		toggle = sess.registry.EnableApp
	}
	changed, err := toggle(cmd.Context(), appType, appName, host, toggleOpts...)
	if err != nil {
		return formatter.Fail(fmt.Sprintf("cannot %s %s/%s", verbOf(enable), appType, appName), err)
	}

	result := ToggleResult{
		AppType: appType,
		AppName: appName,
		Host:    host,
		Enabled: enable,
		Changed: changed,
	}
	target := "every declared host"
	if host != "" {
		target = host
	}
	if changed {
		return formatter.Emit(result, textLine("%s %s/%s for %s", pastOf(enable), appType, appName, target))
	}
	return formatter.Emit(result, textLine("%s/%s already %s for %s", appType, appName, pastOf(enable), target))
}

func verbOf(enable bool) string {
	if enable {
		return "enable"
	}
	return "disable"
}

func pastOf(enable bool) string {
	return verbOf(enable) + "d"
}
