package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/transition/internal/model"
)

// StateResult is the JSON payload of the state command.
type StateResult struct {
	AppType string               `json:"app_type"`
	AppName string               `json:"app_name"`
	Mode    model.Mode           `json:"mode"`
	State   model.IntegrityState `json:"state"`
}

// NewStateCommand creates the state command.
func NewStateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "state <app-type> <app-name>",
		Short: "Classify a registered app as unchanged, updated or corrupted",
		Long: `Compare a registered app's current content with the digests stored at
registration and, for signed apps, with its Manifest.

  unchanged  content matches what was registered
  updated    content changed and (for signed apps) the Manifest agrees
  corrupted  a signed app whose content no longer matches its Manifest

Unregistered apps have no state.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runState(rootOpts, args[0], args[1], cmd)
		},
	}
	return cmd
}

func runState(opts *RootOptions, appType, appName string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	sess, err := openSession(opts)
	if err != nil {
		return formatter.Fail("failed to open registry", err)
	}
	defer sess.Close()

	result := StateResult{AppType: appType, AppName: appName}
	if result.State, err = sess.registry.AppState(cmd.Context(), appType, appName); err != nil {
		return formatter.Fail("state failed", err)
	}
	if result.Mode, err = sess.registry.AppMode(cmd.Context(), appType, appName); err != nil {
		return formatter.Fail("state failed", err)
	}

	return formatter.Emit(result, func(w io.Writer) error {
		if result.State == model.StateUnknown {
			_, err := fmt.Fprintf(w, "%s/%s is not registered\n", appType, appName)
			return err
		}
		_, err := fmt.Fprintf(w, "%s/%s %s (%s)\n", appType, appName, result.State, result.Mode)
		return err
	})
}

// NewSignCommand creates the sign command.
func NewSignCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sign <app-type> <app-name>",
		Short: "Write the Manifest of a registered app from its current content",
		Long: `Write the Manifest of a registered app from its current content,
moving it from devmode to usermode. From then on, content that no longer
matches the Manifest marks the app corrupted and keeps it disabled.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSign(rootOpts, args[0], args[1], cmd)
		},
	}
	return cmd
}

func runSign(opts *RootOptions, appType, appName string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	sess, err := openSession(opts)
	if err != nil {
		return formatter.Fail("failed to open registry", err)
	}
	defer sess.Close()

	d, err := sess.registry.SignApp(cmd.Context(), appType, appName)
	if err != nil {
		return formatter.Fail(fmt.Sprintf("cannot sign %s/%s", appType, appName), err)
	}

	return formatter.Emit(d, func(w io.Writer) error {
		fmt.Fprintf(w, "signed %s/%s\n", appType, appName)
		fmt.Fprintf(w, "  SHA256: %s\n", d.SHA256)
		fmt.Fprintf(w, "  SHA512: %s\n", d.SHA512)
		_, err := fmt.Fprintf(w, "  BLAKE3: %s\n", d.BLAKE3)
		return err
	})
}
