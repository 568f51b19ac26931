package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/transition/internal/events"
	"github.com/roach88/transition/internal/registry"
)

// InventoryOptions holds flags for the inventory command.
type InventoryOptions struct {
	*RootOptions
	Quiet bool
}

// InventoryResult is the JSON payload of the inventory command.
type InventoryResult struct {
	Added    []registry.AppRef  `json:"added"`
	Removed  []registry.AppRef  `json:"removed"`
	Updated  []registry.AppRef  `json:"updated"`
	Disabled []registry.AppRef  `json:"disabled"`
	Failed   []InventoryFailure `json:"failed"`
	Events   []events.Event     `json:"events"`
}

// InventoryFailure describes an app directory that could not be imported.
type InventoryFailure struct {
	AppType string `json:"app_type"`
	AppName string `json:"app_name"`
	Code    string `json:"code"`
	Error   string `json:"error"`
}

// NewInventoryCommand creates the inventory command.
func NewInventoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InventoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "inventory [app-type]",
		Short: "Reconcile the registry with the app directories on disk",
		Long: `Reconcile the registry with the app directories on disk.

New apps are registered with every host disabled. Apps whose directory
disappeared or no longer loads are removed. Apps whose content changed are
refreshed, and signed apps whose content no longer matches their Manifest
are disabled everywhere.

Examples:
  transition inventory
  transition inventory addin
  transition inventory --quiet --format json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			appType := ""
			if len(args) == 1 {
				appType = args[0]
			}
			return runInventory(opts, appType, cmd)
		},
	}

	cmd.Flags().BoolVarP(&opts.Quiet, "quiet", "q", false, "do not notify listeners")

	return cmd
}

func runInventory(opts *InventoryOptions, appType string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	sess, err := openSession(opts.RootOptions)
	if err != nil {
		return formatter.Fail("failed to open registry", err)
	}
	defer sess.Close()

	var invOpts []registry.InventoryOption
	if opts.Quiet {
		invOpts = append(invOpts, registry.WithoutEvents())
	}

	rep, err := sess.registry.UpdateInventory(cmd.Context(), appType, invOpts...)
	if err != nil {
		return formatter.Fail("inventory failed", err)
	}

	result := newInventoryResult(rep)
	return formatter.Emit(result, func(w io.Writer) error {
		return writeInventoryText(w, result)
	})
}

func newInventoryResult(rep registry.Report) InventoryResult {
	result := InventoryResult{
		Added:    nonNil(rep.Added),
		Removed:  nonNil(rep.Removed),
		Updated:  nonNil(rep.Updated),
		Disabled: nonNil(rep.Disabled),
		Failed:   []InventoryFailure{},
		Events:   nonNil(rep.Events),
	}
	for _, f := range rep.Failed {
		result.Failed = append(result.Failed, InventoryFailure{
			AppType: f.AppType,
			AppName: f.AppName,
			Code:    string(f.Code),
			Error:   f.Error(),
		})
	}
	return result
}

func writeInventoryText(w io.Writer, r InventoryResult) error {
	for _, group := range []struct {
		verb string
		refs []registry.AppRef
	}{
		{"added", r.Added},
		{"removed", r.Removed},
		{"updated", r.Updated},
		{"disabled", r.Disabled},
	} {
		for _, ref := range group.refs {
			fmt.Fprintf(w, "%-9s %s\n", group.verb, ref)
		}
	}
	for _, f := range r.Failed {
		fmt.Fprintf(w, "%-9s %s/%s [%s]\n", "failed", f.AppType, f.AppName, f.Code)
	}
	_, err := fmt.Fprintf(w, "%d added, %d removed, %d updated, %d disabled, %d failed\n",
		len(r.Added), len(r.Removed), len(r.Updated), len(r.Disabled), len(r.Failed))
	return err
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
