package registry

import (
	"context"
	"fmt"
	"slices"

	"github.com/roach88/transition/internal/events"
	"github.com/roach88/transition/internal/model"
)

// ToggleOption configures EnableApp and DisableApp.
type ToggleOption func(*toggleOptions)

type toggleOptions struct {
	requireChange bool
}

// RequireChange makes a call that flips nothing fail with a ConfigError
// (ErrCodeAlreadyInState) instead of returning false.
func RequireChange() ToggleOption {
	return func(o *toggleOptions) { o.requireChange = true }
}

// EnableApp enables an app for host, or for every declared host when host
// is empty.
//
// Returns true when at least one host flipped; the enable event then lists
// only those hosts. Returns false, firing nothing, when every targeted host
// was already enabled. A corrupted app cannot be enabled.
func (r *Registry) EnableApp(ctx context.Context, appType, appName, host string, opts ...ToggleOption) (bool, error) {
	return r.toggle(ctx, appType, appName, host, true, opts)
}

// DisableApp is the mirror of EnableApp.
func (r *Registry) DisableApp(ctx context.Context, appType, appName, host string, opts ...ToggleOption) (bool, error) {
	return r.toggle(ctx, appType, appName, host, false, opts)
}

func (r *Registry) toggle(ctx context.Context, appType, appName, host string, enable bool, opts []ToggleOption) (bool, error) {
	var o toggleOptions
	for _, opt := range opts {
		opt(&o)
	}

	targets, err := r.toggleTargets(ctx, appType, appName, host)
	if err != nil {
		return false, err
	}

	if enable {
		state, err := r.AppState(ctx, appType, appName)
		if err != nil {
			return false, err
		}
		if state == model.StateCorrupted {
			return false, &model.ConfigError{
				Code:    model.ErrCodeAppCorrupted,
				Message: "app content does not match its manifest",
				AppType: appType,
				AppName: appName,
			}
		}
	}

	flipped, err := r.store.SetEnabled(ctx, appType, appName, targets, enable)
	if err != nil {
		return false, fmt.Errorf("toggle %s/%s: %w", appType, appName, err)
	}

	for _, h := range targets {
		if !slices.Contains(flipped, h) {
			r.logger.Info("already in state", "app_type", appType, "app_name", appName, "host", h, "enabled", enable)
		}
	}

	if len(flipped) == 0 {
		if o.requireChange {
			return false, &model.ConfigError{
				Code:    model.ErrCodeAlreadyInState,
				Message: fmt.Sprintf("app already %s", stateWord(enable)),
				AppType: appType,
				AppName: appName,
				Host:    host,
			}
		}
		return false, nil
	}

	kind := events.KindDisable
	if enable {
		kind = events.KindEnable
	}
	r.fire(nil, false, events.Event{Kind: kind, AppType: appType, AppName: model.AppName(appName), Hosts: flipped})
	return true, nil
}

// toggleTargets validates the request and returns the canonical hosts to act on.
func (r *Registry) toggleTargets(ctx context.Context, appType, appName, host string) ([]string, error) {
	at, err := r.requireAppType(ctx, appType)
	if err != nil {
		return nil, err
	}

	entry, ok := r.catalog.Resolve(at, appName)
	if !ok || !entry.Available() {
		return nil, &model.ConfigError{
			Code:    model.ErrCodeAppNotAvailable,
			Message: "app is not available on disk",
			AppType: appType,
			AppName: appName,
		}
	}

	if _, out, err := r.store.App(ctx, appType, appName); err != nil {
		return nil, err
	} else if out != model.OutcomeFound {
		return nil, &model.ConfigError{
			Code:    model.ErrCodeAppNotAvailable,
			Message: "app is not registered (run inventory)",
			AppType: appType,
			AppName: appName,
		}
	}

	declared, err := r.store.AppHosts(ctx, appType, appName)
	if err != nil {
		return nil, err
	}

	if host == "" {
		return declared, nil
	}

	h := model.HostName(host)
	known, err := r.store.HasHostApp(ctx, h)
	if err != nil {
		return nil, err
	}
	if !known {
		return nil, &model.ConfigError{
			Code:    model.ErrCodeUnknownHost,
			Message: fmt.Sprintf("host %q is not registered", host),
			AppType: appType,
			AppName: appName,
			Host:    host,
		}
	}
	if !slices.Contains(declared, h) {
		return nil, &model.ConfigError{
			Code:    model.ErrCodeHostNotDeclared,
			Message: fmt.Sprintf("app does not declare host %q", host),
			AppType: appType,
			AppName: appName,
			Host:    host,
		}
	}
	return []string{h}, nil
}

func stateWord(enabled bool) string {
	if enabled {
		return "enabled"
	}
	return "disabled"
}
