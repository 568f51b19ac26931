package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/transition/internal/model"
)

// ListOptions holds flags for the list command.
type ListOptions struct {
	*RootOptions
	AppType string
	AppName string
	Host    string
	Enabled bool
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ListOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show which apps are enabled for which hosts",
		Long: `Show the app by host enablement matrix of registered apps.

Every flag narrows the listing; without flags every link is shown.

Examples:
  transition list
  transition list --type addin --host excel
  transition list --enabled=false`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.AppType, "type", "", "filter by app type")
	cmd.Flags().StringVar(&opts.AppName, "name", "", "filter by app name")
	cmd.Flags().StringVar(&opts.Host, "host", "", "filter by host")
	cmd.Flags().BoolVar(&opts.Enabled, "enabled", false, "filter by enabled flag (only when given)")

	return cmd
}

func runList(opts *ListOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	sess, err := openSession(opts.RootOptions)
	if err != nil {
		return formatter.Fail("failed to open registry", err)
	}
	defer sess.Close()

	filter := model.ListFilter{}
	if opts.AppType != "" {
		filter.AppType = &opts.AppType
	}
	if opts.AppName != "" {
		filter.AppName = &opts.AppName
	}
	if opts.Host != "" {
		filter.Host = &opts.Host
	}
	if cmd.Flags().Changed("enabled") {
		filter.Enabled = &opts.Enabled
	}

	items, out, err := sess.registry.AppList(cmd.Context(), filter)
	if err != nil {
		return formatter.Fail("list failed", err)
	}
	items = nonNil(items)

	return formatter.Emit(items, func(w io.Writer) error {
		if out == model.OutcomeNotFound {
			_, err := fmt.Fprintln(w, "No apps found")
			return err
		}
		return writeListText(w, items)
	})
}

func writeListText(w io.Writer, items []model.AppListItem) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TYPE\tNAME\tHOST\tENABLED")
	for _, it := range items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", it.AppType, it.AppName, it.Host, yesNo(it.Enabled))
	}
	return tw.Flush()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
