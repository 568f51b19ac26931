package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/transition/internal/model"
)

// DescribeOptions holds flags for the describe command.
type DescribeOptions struct {
	*RootOptions
	Path string
}

// DescribeResult is the JSON payload of the describe command.
type DescribeResult struct {
	App   model.App            `json:"app"`
	Mode  model.Mode           `json:"mode"`
	State model.IntegrityState `json:"state"`
	Hosts []model.AppListItem  `json:"hosts"`
}

// NewDescribeCommand creates the describe command.
func NewDescribeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DescribeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "describe [<app-type> <app-name>]",
		Short: "Show everything known about a registered app",
		Long: `Show the stored record of a registered app together with its mode,
integrity state and host links. The description is read fresh from the
app's descriptor when it still loads.

Examples:
  transition describe addin dummy
  transition describe --path ~/.transition/addin/dummy`,
		Args: func(cmd *cobra.Command, args []string) error {
			if opts.Path != "" {
				return cobra.NoArgs(cmd, args)
			}
			return cobra.ExactArgs(2)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDescribe(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Path, "path", "", "look the app up by its directory instead of type and name")

	return cmd
}

func runDescribe(opts *DescribeOptions, args []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	ctx := cmd.Context()

	sess, err := openSession(opts.RootOptions)
	if err != nil {
		return formatter.Fail("failed to open registry", err)
	}
	defer sess.Close()
	reg := sess.registry

	var (
		app model.App
		out model.Outcome
	)
	if opts.Path != "" {
		app, out, err = reg.AppInfoByPath(ctx, opts.Path)
	} else {
		app, out, err = reg.AppInfo(ctx, args[0], args[1])
	}
	if err != nil {
		return formatter.Fail("describe failed", err)
	}
	if out == model.OutcomeNotFound {
		return formatter.Fail("describe failed", &model.ConfigError{
			Code:    model.ErrCodeAppNotAvailable,
			Message: "app is not registered",
			AppType: argOr(args, 0),
			AppName: argOr(args, 1),
		})
	}

	if desc := reg.AppDesc(ctx, app.Type, app.Name); desc != "" {
		app.Description = desc
	}

	result := DescribeResult{App: app}
	if result.Mode, err = reg.AppMode(ctx, app.Type, app.Name); err != nil {
		return formatter.Fail("describe failed", err)
	}
	if result.State, err = reg.AppState(ctx, app.Type, app.Name); err != nil {
		return formatter.Fail("describe failed", err)
	}
	hosts, _, err := reg.AppList(ctx, model.ListFilter{AppType: &app.Type, AppName: &app.Name})
	if err != nil {
		return formatter.Fail("describe failed", err)
	}
	result.Hosts = nonNil(hosts)

	return formatter.Emit(result, func(w io.Writer) error {
		return writeDescribeText(w, result)
	})
}

func writeDescribeText(w io.Writer, r DescribeResult) error {
	links := make([]string, 0, len(r.Hosts))
	for _, h := range r.Hosts {
		state := "disabled"
		if h.Enabled {
			state = "enabled"
		}
		links = append(links, fmt.Sprintf("%s (%s)", h.Host, state))
	}

	fmt.Fprintf(w, "%s/%s\n", r.App.Type, r.App.Name)
	fmt.Fprintf(w, "  path:     %s\n", r.App.Path)
	fmt.Fprintf(w, "  author:   %s\n", strings.ReplaceAll(r.App.Author, "\n", ", "))
	fmt.Fprintf(w, "  version:  %s\n", r.App.Version)
	fmt.Fprintf(w, "  mode:     %s\n", r.Mode)
	fmt.Fprintf(w, "  state:    %s\n", r.State)
	fmt.Fprintf(w, "  sha256:   %s\n", r.App.Digests.SHA256)
	fmt.Fprintf(w, "  hosts:    %s\n", strings.Join(links, ", "))
	if r.App.Description != "" {
		fmt.Fprintf(w, "\n%s\n", strings.TrimRight(r.App.Description, "\n"))
	}
	return nil
}

func argOr(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}
