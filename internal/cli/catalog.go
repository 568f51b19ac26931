package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/transition/internal/model"
)

// NewHostsCommand creates the hosts command.
func NewHostsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "hosts",
		Short: "List the registered host programs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(rootOpts, cmd)
			sess, err := openSession(rootOpts)
			if err != nil {
				return formatter.Fail("failed to open registry", err)
			}
			defer sess.Close()

			hosts, err := sess.registry.HostApps(cmd.Context())
			if err != nil {
				return formatter.Fail("hosts failed", err)
			}
			return formatter.Emit(hosts, textLine("%s", strings.Join(hosts, "\n")))
		},
	}
}

// NewTypesCommand creates the types command.
func NewTypesCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List the registered app types and their directories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(rootOpts, cmd)
			sess, err := openSession(rootOpts)
			if err != nil {
				return formatter.Fail("failed to open registry", err)
			}
			defer sess.Close()

			types, err := sess.registry.AppTypes(cmd.Context())
			if err != nil {
				return formatter.Fail("types failed", err)
			}
			return formatter.Emit(types, func(w io.Writer) error {
				tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "TYPE\tPATH")
				for _, at := range types {
					fmt.Fprintf(tw, "%s\t%s\n", at.Name, at.Path)
				}
				return tw.Flush()
			})
		},
	}
}

// NewAvailableCommand creates the available command.
func NewAvailableCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "available <app-type> [host...]",
		Short: "List the apps of a type that load from disk",
		Long: `List the apps of a type whose directory holds a loadable descriptor,
registered or not. With hosts, keep only apps declaring at least one of them.

Examples:
  transition available addin
  transition available addin excel word`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(rootOpts, cmd)
			sess, err := openSession(rootOpts)
			if err != nil {
				return formatter.Fail("failed to open registry", err)
			}
			defer sess.Close()

			names, err := sess.registry.AvailableApps(cmd.Context(), args[0], args[1:]...)
			if err != nil {
				return formatter.Fail("available failed", err)
			}
			return formatter.Emit(names, func(w io.Writer) error {
				for _, n := range names {
					if _, err := fmt.Fprintln(w, n); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}

// StatusResult is the JSON payload of the status command.
type StatusResult struct {
	AppType  string   `json:"app_type"`
	Host     string   `json:"host"`
	Enabled  []string `json:"enabled"`
	Disabled []string `json:"disabled"`
}

// NewStatusCommand creates the status command.
func NewStatusCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status <app-type> <host>",
		Short: "Show which apps of a type are enabled and disabled for a host",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(rootOpts, cmd)
			sess, err := openSession(rootOpts)
			if err != nil {
				return formatter.Fail("failed to open registry", err)
			}
			defer sess.Close()

			appType, host := args[0], model.HostName(args[1])
			enabled, out, err := sess.registry.EnabledApps(cmd.Context(), appType, host)
			if err != nil {
				return formatter.Fail("status failed", err)
			}
			if out == model.OutcomeNotFound {
				return formatter.Fail("status failed", &model.ConfigError{
					Code:    model.ErrCodeUnknownAppType,
					Message: "app type is not registered",
					AppType: appType,
				})
			}
			disabled, _, err := sess.registry.DisabledApps(cmd.Context(), appType, host)
			if err != nil {
				return formatter.Fail("status failed", err)
			}

			result := StatusResult{AppType: appType, Host: host, Enabled: enabled, Disabled: disabled}
			return formatter.Emit(result, func(w io.Writer) error {
				fmt.Fprintf(w, "enabled:  %s\n", strings.Join(enabled, ", "))
				_, err := fmt.Fprintf(w, "disabled: %s\n", strings.Join(disabled, ", "))
				return err
			})
		},
	}
}
