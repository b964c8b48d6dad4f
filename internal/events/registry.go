package events

import (
	"fmt"
	"strings"

	"github.com/ppiankov/concordia/internal/model"
)

// Registry is an immutable, ordered table of event definitions.
// It is built once at startup and passed to every stage explicitly.
type Registry struct {
	events []model.Event
	byID   map[string]int
}

// NewRegistry validates events and builds a registry preserving their order
func NewRegistry(evts []model.Event) (*Registry, error) {
	if len(evts) == 0 {
		return nil, fmt.Errorf("event registry is empty")
	}

	r := &Registry{
		events: make([]model.Event, 0, len(evts)),
		byID:   make(map[string]int, len(evts)),
	}

	for i, e := range evts {
		e.ID = strings.TrimSpace(e.ID)
		if e.ID == "" {
			return nil, fmt.Errorf("event %d: event_id is required", i)
		}
		if _, dup := r.byID[e.ID]; dup {
			return nil, fmt.Errorf("event %q: duplicate event_id", e.ID)
		}

		keywords := make([]string, 0, len(e.Keywords))
		for _, kw := range e.Keywords {
			if kw = strings.TrimSpace(kw); kw != "" {
				keywords = append(keywords, kw)
			}
		}
		if len(keywords) == 0 {
			return nil, fmt.Errorf("event %q: at least one keyword is required", e.ID)
		}
		e.Keywords = keywords
		if e.Name == "" {
			e.Name = e.ID
		}

		r.byID[e.ID] = len(r.events)
		r.events = append(r.events, e)
	}

	return r, nil
}

// All returns the events in registry order. The slice is a copy.
func (r *Registry) All() []model.Event {
	out := make([]model.Event, len(r.events))
	copy(out, r.events)
	return out
}

// Get looks up an event by id
func (r *Registry) Get(id string) (model.Event, bool) {
	i, ok := r.byID[id]
	if !ok {
		return model.Event{}, false
	}
	return r.events[i], true
}

// Name returns the display name for id, falling back to id itself
func (r *Registry) Name(id string) string {
	if r != nil {
		if e, ok := r.Get(id); ok {
			return e.Name
		}
	}
	return id
}

// Len returns the number of events
func (r *Registry) Len() int {
	return len(r.events)
}

// IDs returns event ids in registry order
func (r *Registry) IDs() []string {
	ids := make([]string, len(r.events))
	for i, e := range r.events {
		ids[i] = e.ID
	}
	return ids
}
