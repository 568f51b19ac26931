package testutil

import (
	"slices"
	"sync"

	"github.com/roach88/transition/internal/events"
)

// Recorder is a listener that records every event it receives.
type Recorder struct {
	mu     sync.Mutex
	events []events.Event
}

var _ events.Listener = (*Recorder)(nil)

func (r *Recorder) record(kind events.Kind, appType, appName string, hosts []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, events.Event{
		Kind:    kind,
		AppType: appType,
		AppName: appName,
		Hosts:   slices.Clone(hosts),
	})
}

func (r *Recorder) OnAppAdd(appType, appName string) {
	r.record(events.KindAdd, appType, appName, nil)
}

func (r *Recorder) OnAppDel(appType, appName string) {
	r.record(events.KindDel, appType, appName, nil)
}

func (r *Recorder) OnAppEnable(appType, appName string, hosts []string) {
	r.record(events.KindEnable, appType, appName, hosts)
}

func (r *Recorder) OnAppDisable(appType, appName string, hosts []string) {
	r.record(events.KindDisable, appType, appName, hosts)
}

func (r *Recorder) OnAppUpdate(appType, appName string) {
	r.record(events.KindUpdate, appType, appName, nil)
}

// Events returns a copy of everything recorded so far.
func (r *Recorder) Events() []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.events)
}

// Len returns the number of recorded events.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

// Last returns the most recent event. ok is false when nothing was recorded.
func (r *Recorder) Last() (events.Event, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.events) == 0 {
		return events.Event{}, false
	}
	return r.events[len(r.events)-1], true
}

// Count returns how many events of kind were recorded.
func (r *Recorder) Count(kind events.Kind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

// Reset forgets everything recorded.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}
