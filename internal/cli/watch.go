package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/transition/internal/events"
	"github.com/roach88/transition/internal/model"
	"github.com/roach88/transition/internal/registry"
	"github.com/roach88/transition/internal/watcher"
)

// NewWatchCommand creates the watch command.
func NewWatchCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [app-type]",
		Short: "Re-run inventory whenever app directories change",
		Long: `Run inventory, then watch every app type root (or just one) and run it
again after each burst of changes. Lifecycle events are printed as they
fire. Stops on interrupt.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			appType := ""
			if len(args) == 1 {
				appType = args[0]
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runWatch(ctx, rootOpts, appType, cmd)
		},
	}
	return cmd
}

func runWatch(ctx context.Context, opts *RootOptions, appType string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	sess, err := openSession(opts)
	if err != nil {
		return formatter.Fail("failed to open registry", err)
	}
	defer sess.Close()
	reg := sess.registry

	roots, err := watchRoots(ctx, reg, appType)
	if err != nil {
		return formatter.Fail("watch failed", err)
	}

	printer := &eventPrinter{w: cmd.OutOrStdout()}
	if err := reg.AddListener(printer); err != nil {
		return formatter.Fail("watch failed", err)
	}
	defer reg.RemoveListener(printer)

	w, err := watcher.New(watcher.Config{
		Roots:       roots,
		ExcludeDirs: opts.Config.ExcludeDirs,
		DebounceDur: opts.Config.Watch.Debounce,
		Logger:      sess.logger,
	})
	if err != nil {
		return formatter.Fail("watch failed", err)
	}
	changes, err := w.Start()
	if err != nil {
		return formatter.Fail("watch failed", err)
	}
	defer w.Stop()

	sess.logger.Info("watching", "roots", roots)
	sweep := func() {
		if _, err := reg.UpdateInventory(ctx, appType); err != nil {
			sess.logger.Error("inventory failed", "error", err)
		}
	}

	sweep()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-changes:
			sweep()
		}
	}
}

func watchRoots(ctx context.Context, reg *registry.Registry, appType string) ([]string, error) {
	if appType != "" {
		path, out, err := reg.AppTypePath(ctx, appType)
		if err != nil {
			return nil, err
		}
		if out == model.OutcomeNotFound {
			return nil, &model.ConfigError{
				Code:    model.ErrCodeUnknownAppType,
				Message: "app type is not registered",
				AppType: appType,
			}
		}
		return []string{path}, nil
	}

	types, err := reg.AppTypes(ctx)
	if err != nil {
		return nil, err
	}
	roots := make([]string, len(types))
	for i, at := range types {
		roots[i] = at.Path
	}
	return roots, nil
}

// eventPrinter writes one line per lifecycle event.
type eventPrinter struct {
	w io.Writer
}

var _ events.Listener = (*eventPrinter)(nil)

func (p *eventPrinter) print(kind events.Kind, appType, appName string, hosts []string) {
	line := fmt.Sprintf("%s %s/%s", kind, appType, appName)
	if len(hosts) > 0 {
		line += " [" + strings.Join(hosts, ", ") + "]"
	}
	fmt.Fprintln(p.w, line)
}

func (p *eventPrinter) OnAppAdd(appType, appName string) {
	p.print(events.KindAdd, appType, appName, nil)
}

func (p *eventPrinter) OnAppDel(appType, appName string) {
	p.print(events.KindDel, appType, appName, nil)
}

func (p *eventPrinter) OnAppEnable(appType, appName string, hosts []string) {
	p.print(events.KindEnable, appType, appName, hosts)
}

func (p *eventPrinter) OnAppDisable(appType, appName string, hosts []string) {
	p.print(events.KindDisable, appType, appName, hosts)
}

func (p *eventPrinter) OnAppUpdate(appType, appName string) {
	p.print(events.KindUpdate, appType, appName, nil)
}
