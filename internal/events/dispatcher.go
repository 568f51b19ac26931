package events

import (
	"fmt"
	"log/slog"
	"reflect"
	"slices"

	"github.com/roach88/transition/internal/model"
)

// Dispatcher fans events out to its listeners on the caller's goroutine.
// It is owned by one registry and is not safe for concurrent use.
type Dispatcher struct {
	listeners []Listener
	ids       IDGenerator
	logger    *slog.Logger
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithIDGenerator overrides the UUIDv7 dispatch id generator.
func WithIDGenerator(g IDGenerator) Option {
	return func(d *Dispatcher) {
		if g != nil {
			d.ids = g
		}
	}
}

// WithLogger sets the logger. Nil discards.
func WithLogger(l *slog.Logger) Option {
	return func(d *Dispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}

// NewDispatcher creates a Dispatcher with no listeners.
func NewDispatcher(opts ...Option) *Dispatcher {
	d := &Dispatcher{
		ids:    UUIDv7Generator{},
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Add registers l. Registering the same listener twice is a no-op.
func (d *Dispatcher) Add(l Listener) error {
	if l == nil {
		return &model.ConfigError{Code: model.ErrCodeInvalidListener, Message: "listener is nil"}
	}
	if d.indexOf(l) >= 0 {
		d.logger.Debug("listener already registered", "listener", fmt.Sprintf("%T", l))
		return nil
	}
	d.listeners = append(d.listeners, l)
	d.logger.Debug("listener added", "listener", fmt.Sprintf("%T", l), "count", len(d.listeners))
	return nil
}

// Remove unregisters l. A listener that was never registered is logged and
// reported as false; it is not an error.
func (d *Dispatcher) Remove(l Listener) bool {
	i := d.indexOf(l)
	if i < 0 {
		d.logger.Warn("listener not registered", "listener", fmt.Sprintf("%T", l))
		return false
	}
	d.listeners = slices.Delete(d.listeners, i, i+1)
	d.logger.Debug("listener removed", "listener", fmt.Sprintf("%T", l), "count", len(d.listeners))
	return true
}

// Len returns the number of registered listeners.
func (d *Dispatcher) Len() int {
	return len(d.listeners)
}

// Fire delivers e to every listener and returns it with its dispatch id set.
func (d *Dispatcher) Fire(e Event) Event {
	if e.ID == "" {
		e.ID = d.ids.Generate()
	}
	d.logger.Info("event",
		"id", e.ID,
		"kind", e.Kind,
		"app_type", e.AppType,
		"app_name", e.AppName,
		"hosts", e.Hosts,
		"listeners", len(d.listeners),
	)

	// Snapshot: a listener may add or remove listeners while handling.
	for _, l := range slices.Clone(d.listeners) {
		d.deliver(l, e)
	}
	return e
}

func (d *Dispatcher) deliver(l Listener, e Event) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("listener failed",
				"id", e.ID,
				"kind", e.Kind,
				"listener", fmt.Sprintf("%T", l),
				"panic", r,
			)
		}
	}()
	e.deliver(l)
}

// indexOf finds l by identity. Listeners of non-comparable types never match.
func (d *Dispatcher) indexOf(l Listener) int {
	if l == nil || !reflect.TypeOf(l).Comparable() {
		return -1
	}
	for i, existing := range d.listeners {
		if reflect.TypeOf(existing) == reflect.TypeOf(l) && existing == l {
			return i
		}
	}
	return -1
}
