package registry

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/transition/internal/digest"
	"github.com/roach88/transition/internal/discovery"
	"github.com/roach88/transition/internal/events"
	"github.com/roach88/transition/internal/model"
	"github.com/roach88/transition/internal/store"
)

// Registry is the app configuration engine.
type Registry struct {
	store      *store.Store
	dispatcher *events.Dispatcher
	catalog    *discovery.Catalog
	digests    *digest.Engine
	policy     model.LinkPolicy
	logger     *slog.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithDispatcher sets the event dispatcher. Default: a fresh one.
func WithDispatcher(d *events.Dispatcher) Option {
	return func(r *Registry) {
		if d != nil {
			r.dispatcher = d
		}
	}
}

// WithCatalog sets how apps are found and loaded. Default: app.cue descriptors.
func WithCatalog(c *discovery.Catalog) Option {
	return func(r *Registry) {
		if c != nil {
			r.catalog = c
		}
	}
}

// WithDigestEngine sets the digest engine. Default: digest.New().
func WithDigestEngine(e *digest.Engine) Option {
	return func(r *Registry) {
		if e != nil {
			r.digests = e
		}
	}
}

// WithLinkPolicy sets what an update does to host enablement.
// Default: model.LinkPolicyReset.
func WithLinkPolicy(p model.LinkPolicy) Option {
	return func(r *Registry) {
		if p != "" {
			r.policy = p
		}
	}
}

// WithLogger sets the logger. Nil discards.
func WithLogger(l *slog.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// New creates a Registry over an open store.
func New(st *store.Store, opts ...Option) *Registry {
	r := &Registry{
		store:  st,
		policy: model.LinkPolicyReset,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.dispatcher == nil {
		r.dispatcher = events.NewDispatcher(events.WithLogger(r.logger))
	}
	if r.catalog == nil {
		r.catalog = discovery.NewCatalog(nil,
			discovery.WithExcludedDirs(digest.DefaultExcludedDirs...),
			discovery.WithLogger(r.logger),
		)
	}
	if r.digests == nil {
		r.digests = digest.New(digest.WithLogger(r.logger))
	}
	return r
}

// LinkPolicy returns the policy applied on app updates.
func (r *Registry) LinkPolicy() model.LinkPolicy {
	return r.policy
}

// AddListener registers l for lifecycle events.
func (r *Registry) AddListener(l events.Listener) error {
	return r.dispatcher.Add(l)
}

// RemoveListener unregisters l. Unknown listeners are logged and yield false.
func (r *Registry) RemoveListener(l events.Listener) bool {
	return r.dispatcher.Remove(l)
}

// Reset deletes the backing store and recreates it from its seed.
func (r *Registry) Reset(ctx context.Context) error {
	return r.store.Reset(ctx)
}

// AppTypes returns the registered app types.
func (r *Registry) AppTypes(ctx context.Context) ([]model.AppType, error) {
	return r.store.AppTypes(ctx)
}

// HostApps returns the registered host short names.
func (r *Registry) HostApps(ctx context.Context) ([]string, error) {
	return r.store.HostApps(ctx)
}

// AppTypePath returns the filesystem root of an app type.
func (r *Registry) AppTypePath(ctx context.Context, appType string) (string, model.Outcome, error) {
	at, out, err := r.store.AppType(ctx, appType)
	if err != nil || out != model.OutcomeFound {
		return "", out, err
	}
	return at.Path, out, nil
}

// requireAppType looks up an app type, failing with a ConfigError if unknown.
func (r *Registry) requireAppType(ctx context.Context, appType string) (model.AppType, error) {
	at, out, err := r.store.AppType(ctx, appType)
	if err != nil {
		return model.AppType{}, fmt.Errorf("lookup app type: %w", err)
	}
	if out != model.OutcomeFound {
		return model.AppType{}, &model.ConfigError{
			Code:    model.ErrCodeUnknownAppType,
			Message: "app type is not registered",
			AppType: appType,
		}
	}
	return at, nil
}

// fire dispatches e unless quiet, recording it on rep.
func (r *Registry) fire(rep *Report, quiet bool, e events.Event) {
	if quiet {
		return
	}
	e = r.dispatcher.Fire(e)
	if rep != nil {
		rep.Events = append(rep.Events, e)
	}
}
