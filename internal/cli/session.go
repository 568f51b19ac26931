package cli

import (
	"log/slog"

	"github.com/roach88/transition/internal/digest"
	"github.com/roach88/transition/internal/discovery"
	"github.com/roach88/transition/internal/events"
	"github.com/roach88/transition/internal/registry"
	"github.com/roach88/transition/internal/store"
)

// session is an open registry built from the resolved configuration.
type session struct {
	store    *store.Store
	registry *registry.Registry
	logger   *slog.Logger
}

func openSession(opts *RootOptions) (*session, error) {
	cfg := opts.Config
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	st, err := store.Open(cfg.Database, store.Seed{
		AppTypes: cfg.ModelAppTypes(),
		Hosts:    cfg.Hosts,
	}, store.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	dispatcherOpts := []events.Option{events.WithLogger(logger)}
	if opts.IDs != nil {
		dispatcherOpts = append(dispatcherOpts, events.WithIDGenerator(opts.IDs))
	}

	engineOpts := []digest.Option{
		digest.WithExcludedDirs(cfg.ExcludeDirs...),
		digest.WithLogger(logger),
	}
	if cfg.TempDir != "" {
		engineOpts = append(engineOpts, digest.WithTempDir(cfg.TempDir))
	}

	reg := registry.New(st,
		registry.WithDispatcher(events.NewDispatcher(dispatcherOpts...)),
		registry.WithCatalog(discovery.NewCatalog(discovery.CUELoader{},
			discovery.WithExcludedDirs(cfg.ExcludeDirs...),
			discovery.WithLogger(logger),
		)),
		registry.WithDigestEngine(digest.New(engineOpts...)),
		registry.WithLinkPolicy(cfg.Policy()),
		registry.WithLogger(logger),
	)

	return &session{store: st, registry: reg, logger: logger}, nil
}

func (s *session) Close() error {
	return s.store.Close()
}
