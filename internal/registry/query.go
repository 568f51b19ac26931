package registry

import (
	"context"
	"fmt"
	"slices"

	"github.com/roach88/transition/internal/model"
)

// AppList returns the app × host enablement view narrowed by f.
// When nothing matches it returns model.OutcomeNotFound and a nil slice.
func (r *Registry) AppList(ctx context.Context, f model.ListFilter) ([]model.AppListItem, model.Outcome, error) {
	items, err := r.store.Links(ctx, f)
	if err != nil {
		return nil, model.OutcomeNotFound, fmt.Errorf("app list: %w", err)
	}
	if len(items) == 0 {
		return nil, model.OutcomeNotFound, nil
	}
	return items, model.OutcomeFound, nil
}

// AvailableApps returns the names of apps of appType that load from disk.
// When hosts are given, only apps declaring at least one of them are kept.
// Unregistered hosts never match.
func (r *Registry) AvailableApps(ctx context.Context, appType string, hosts ...string) ([]string, error) {
	at, err := r.requireAppType(ctx, appType)
	if err != nil {
		return nil, err
	}
	entries, err := r.catalog.Scan(at)
	if err != nil {
		return nil, fmt.Errorf("available apps: %w", err)
	}

	want := model.HostNames(hosts)
	names := []string{}
	for _, e := range entries {
		if !e.Available() {
			continue
		}
		if len(want) > 0 && !declaresAny(e.Descriptor.Hosts, want) {
			continue
		}
		names = append(names, e.Name)
	}
	return names, nil
}

func declaresAny(declared, want []string) bool {
	for _, h := range want {
		if slices.Contains(declared, h) {
			return true
		}
	}
	return false
}

// EnabledApps returns the names of apps of appType enabled for host.
// An unknown app type yields model.OutcomeNotFound.
func (r *Registry) EnabledApps(ctx context.Context, appType, host string) ([]string, model.Outcome, error) {
	return r.appsWithFlag(ctx, appType, host, true)
}

// DisabledApps returns the names of apps of appType disabled for host.
// An unknown app type yields model.OutcomeNotFound.
func (r *Registry) DisabledApps(ctx context.Context, appType, host string) ([]string, model.Outcome, error) {
	return r.appsWithFlag(ctx, appType, host, false)
}

func (r *Registry) appsWithFlag(ctx context.Context, appType, host string, enabled bool) ([]string, model.Outcome, error) {
	_, out, err := r.store.AppType(ctx, appType)
	if err != nil {
		return nil, model.OutcomeNotFound, err
	}
	if out != model.OutcomeFound {
		return nil, model.OutcomeNotFound, nil
	}

	items, err := r.store.Links(ctx, model.ListFilter{
		AppType: &appType,
		Host:    &host,
		Enabled: &enabled,
	})
	if err != nil {
		return nil, model.OutcomeNotFound, err
	}
	names := make([]string, 0, len(items))
	for _, it := range items {
		names = append(names, it.AppName)
	}
	return names, model.OutcomeFound, nil
}

// AppInfo returns the stored record of an app.
func (r *Registry) AppInfo(ctx context.Context, appType, appName string) (model.App, model.Outcome, error) {
	return r.store.App(ctx, appType, appName)
}

// AppInfoByPath returns the stored record of the app at path.
func (r *Registry) AppInfoByPath(ctx context.Context, path string) (model.App, model.Outcome, error) {
	return r.store.AppByPath(ctx, path)
}

// AppDesc loads an app's descriptor from disk and returns its description.
// Any failure, including an unknown type or an app that does not load,
// yields "" and is logged.
func (r *Registry) AppDesc(ctx context.Context, appType, appName string) string {
	at, out, err := r.store.AppType(ctx, appType)
	if err != nil || out != model.OutcomeFound {
		r.logger.Debug("no description: unknown app type", "app_type", appType, "error", err)
		return ""
	}
	e, ok := r.catalog.Resolve(at, appName)
	if !ok {
		r.logger.Debug("no description: app not found", "app_type", appType, "app_name", appName)
		return ""
	}
	if !e.Available() {
		r.logger.Warn("no description: app failed to load", "app_type", appType, "app_name", appName, "error", e.Err)
		return ""
	}
	return e.Descriptor.Description
}
