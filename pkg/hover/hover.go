// Package hover holds the UI-wide hover state shared by synchronized charts.
package hover

import (
	"sync"

	"github.com/google/uuid"
)

// NoIndex marks that no data point is hovered.
const NoIndex = -1

// Event reports which data point the cursor is on and where.
type Event struct {
	Chart   string  `json:"chart,omitempty"`
	Index   int     `json:"index"`
	OffsetX float64 `json:"offsetX"`
	OffsetY float64 `json:"offsetY"`
}

// Sink receives hover events as they happen.
type Sink interface {
	Dispatch(Event)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(Event)

func (f SinkFunc) Dispatch(e Event) { f(e) }

// Discard drops every event.
var Discard Sink = SinkFunc(func(Event) {})

// Store is the process-wide hover state. Subscribers are notified
// synchronously on the dispatching goroutine.
type Store struct {
	mu          sync.RWMutex
	current     Event
	subscribers map[string]func(Event)
	closed      bool
}

// NewStore creates a store with no hovered point.
func NewStore() *Store {
	return &Store{
		current:     Event{Index: NoIndex},
		subscribers: make(map[string]func(Event)),
	}
}

// Dispatch records e as the current hover state and notifies subscribers.
func (s *Store) Dispatch(e Event) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.current = e
	fns := make([]func(Event), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(e)
	}
}

// Current returns the last dispatched event.
func (s *Store) Current() Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Subscribe registers fn and returns its subscription id.
func (s *Store) Subscribe(fn func(Event)) string {
	id := uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.subscribers[id] = fn
	}
	return id
}

// Unsubscribe removes a subscription. Unknown ids are ignored.
func (s *Store) Unsubscribe(id string) {
	s.mu.Lock()
	delete(s.subscribers, id)
	s.mu.Unlock()
}

// Len returns the number of active subscriptions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subscribers)
}

// Close drops all subscriptions; later dispatches are ignored.
func (s *Store) Close() {
	s.mu.Lock()
	s.closed = true
	s.subscribers = make(map[string]func(Event))
	s.mu.Unlock()
}

// Recorder is a Sink that keeps every event it receives.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Dispatch(e Event) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}
