package registry

import (
	"context"
	"errors"
	"fmt"

	"github.com/roach88/transition/internal/discovery"
	"github.com/roach88/transition/internal/events"
	"github.com/roach88/transition/internal/model"
)

// AppRef names an app.
type AppRef struct {
	AppType string `json:"app_type"`
	AppName string `json:"app_name"`
}

func (a AppRef) String() string {
	return a.AppType + "/" + a.AppName
}

// Report summarises one reconciliation sweep.
type Report struct {
	Added    []AppRef             `json:"added"`
	Removed  []AppRef             `json:"removed"`
	Updated  []AppRef             `json:"updated"`
	Disabled []AppRef             `json:"disabled"`
	Failed   []*model.ImportError `json:"-"`
	Events   []events.Event       `json:"events"`
}

// Changed reports whether the sweep mutated the store.
func (r Report) Changed() bool {
	return len(r.Added)+len(r.Removed)+len(r.Updated)+len(r.Disabled) > 0
}

// InventoryOption configures UpdateInventory.
type InventoryOption func(*inventoryOptions)

type inventoryOptions struct {
	quiet bool
}

// WithoutEvents reconciles without notifying listeners.
func WithoutEvents() InventoryOption {
	return func(o *inventoryOptions) { o.quiet = true }
}

// UpdateInventory reconciles the store with the filesystem for one app type,
// or for every type when appType is empty.
//
// New importable directories are registered (add event). Registered apps
// that are no longer available are removed (del event). Corrupted apps are
// disabled for every host they declare (disable event, only when a flag
// actually changed). Updated apps get their digests refreshed (update event).
// Apps that fail to load are reported in Report.Failed and never registered.
func (r *Registry) UpdateInventory(ctx context.Context, appType string, opts ...InventoryOption) (Report, error) {
	var o inventoryOptions
	for _, opt := range opts {
		opt(&o)
	}

	var types []model.AppType
	if appType != "" {
		at, err := r.requireAppType(ctx, appType)
		if err != nil {
			return Report{}, err
		}
		types = []model.AppType{at}
	} else {
		all, err := r.store.AppTypes(ctx)
		if err != nil {
			return Report{}, fmt.Errorf("update inventory: %w", err)
		}
		types = all
	}

	rep := Report{}
	for _, at := range types {
		if err := r.reconcile(ctx, at, &rep, o.quiet); err != nil {
			return rep, fmt.Errorf("update inventory %s: %w", at.Name, err)
		}
	}

	r.logger.Info("inventory updated",
		"app_type", appType,
		"added", len(rep.Added),
		"removed", len(rep.Removed),
		"updated", len(rep.Updated),
		"disabled", len(rep.Disabled),
		"failed", len(rep.Failed),
	)
	return rep, nil
}

func (r *Registry) reconcile(ctx context.Context, at model.AppType, rep *Report, quiet bool) error {
	entries, err := r.catalog.Scan(at)
	if err != nil {
		return err
	}
	registered, err := r.store.Apps(ctx, at.Name)
	if err != nil {
		return err
	}

	available := make(map[string]discovery.Entry, len(entries))
	for _, e := range entries {
		if !e.Available() {
			rep.Failed = append(rep.Failed, e.Err)
			continue
		}
		available[e.Name] = e
	}

	known := make(map[string]bool, len(registered))
	for _, app := range registered {
		known[app.Name] = true

		e, ok := available[app.Name]
		if !ok {
			if _, err := r.delApp(ctx, at.Name, app.Name, rep, quiet); err != nil {
				return err
			}
			continue
		}

		state, generated, err := r.classify(app)
		if err != nil {
			return err
		}
		switch state {
		case model.StateCorrupted:
			if err := r.forceDisable(ctx, app, rep, quiet); err != nil {
				return err
			}
		case model.StateUpdated:
			if _, err := r.updateApp(ctx, e, generated, rep, quiet); err != nil {
				return err
			}
		}
	}

	for _, e := range entries {
		if !e.Available() || known[e.Name] {
			continue
		}
		if _, err := r.addApp(ctx, e, rep, quiet); err != nil {
			var ie *model.ImportError
			if errors.As(err, &ie) {
				rep.Failed = append(rep.Failed, ie)
				continue
			}
			return err
		}
	}
	return nil
}

// addApp registers an available app and links it, disabled, to its hosts.
// A second call for the same app yields model.OutcomeAlreadyExists and fires
// nothing.
func (r *Registry) addApp(ctx context.Context, e discovery.Entry, rep *Report, quiet bool) (model.Outcome, error) {
	digests, ok, err := r.digests.Generate(e.Path)
	if err != nil {
		return model.OutcomeNotFound, fmt.Errorf("add %s/%s: %w", e.AppType, e.Name, err)
	}
	if !ok {
		return model.OutcomeNotFound, &model.ImportError{
			Code:    model.ErrCodeNoContent,
			AppType: e.AppType,
			AppName: e.Name,
			Path:    e.Path,
		}
	}

	author, version := discovery.ParseInfo(e.Descriptor.Description)
	app := model.App{
		Type:        e.AppType,
		Name:        e.Name,
		Author:      author,
		Version:     version,
		Description: e.Descriptor.Description,
		Path:        e.Path,
		Digests:     digests,
	}

	out, err := r.store.InsertApp(ctx, app, e.Descriptor.Hosts)
	if err != nil {
		return out, err
	}
	if out == model.OutcomeCreated {
		r.logger.Debug("app added", "app_type", e.AppType, "app_name", e.Name)
		if rep != nil {
			rep.Added = append(rep.Added, AppRef{e.AppType, e.Name})
		}
		r.fire(rep, quiet, events.Event{Kind: events.KindAdd, AppType: e.AppType, AppName: e.Name})
	}
	return out, nil
}

// delApp deregisters an app. Unknown apps yield model.OutcomeNotFound.
func (r *Registry) delApp(ctx context.Context, appType, appName string, rep *Report, quiet bool) (model.Outcome, error) {
	out, err := r.store.DeleteApp(ctx, appType, appName)
	if err != nil {
		return out, err
	}
	if out == model.OutcomeDeleted {
		r.logger.Debug("app removed", "app_type", appType, "app_name", appName)
		if rep != nil {
			rep.Removed = append(rep.Removed, AppRef{appType, appName})
		}
		r.fire(rep, quiet, events.Event{Kind: events.KindDel, AppType: appType, AppName: appName})
	}
	return out, nil
}

// updateApp refreshes the stored metadata and digests of a registered app.
// Host links follow the registry's LinkPolicy.
func (r *Registry) updateApp(ctx context.Context, e discovery.Entry, digests model.Digests, rep *Report, quiet bool) (model.Outcome, error) {
	author, version := discovery.ParseInfo(e.Descriptor.Description)
	app := model.App{
		Type:        e.AppType,
		Name:        e.Name,
		Author:      author,
		Version:     version,
		Description: e.Descriptor.Description,
		Path:        e.Path,
		Digests:     digests,
	}

	out, err := r.store.UpdateApp(ctx, app, e.Descriptor.Hosts, r.policy)
	if err != nil {
		return out, err
	}
	if out == model.OutcomeUpdated {
		r.logger.Debug("app updated", "app_type", e.AppType, "app_name", e.Name, "link_policy", r.policy)
		if rep != nil {
			rep.Updated = append(rep.Updated, AppRef{e.AppType, e.Name})
		}
		r.fire(rep, quiet, events.Event{Kind: events.KindUpdate, AppType: e.AppType, AppName: e.Name})
	}
	return out, nil
}

// forceDisable turns a corrupted app off for every host it declares.
func (r *Registry) forceDisable(ctx context.Context, app model.App, rep *Report, quiet bool) error {
	hosts, err := r.store.AppHosts(ctx, app.Type, app.Name)
	if err != nil {
		return err
	}
	flipped, err := r.store.SetEnabled(ctx, app.Type, app.Name, hosts, false)
	if err != nil {
		return err
	}
	if len(flipped) == 0 {
		return nil
	}

	r.logger.Warn("corrupted app disabled", "app_type", app.Type, "app_name", app.Name, "hosts", flipped)
	rep.Disabled = append(rep.Disabled, AppRef{app.Type, app.Name})
	r.fire(rep, quiet, events.Event{Kind: events.KindDisable, AppType: app.Type, AppName: app.Name, Hosts: flipped})
	return nil
}
