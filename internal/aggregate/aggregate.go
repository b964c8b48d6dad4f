// Package aggregate groups claim records by event and source category.
package aggregate

import (
	"strings"

	"github.com/ppiankov/concordia/internal/events"
	"github.com/ppiankov/concordia/internal/model"
)

// Bucket holds the documents and unique claims of one source category
type Bucket struct {
	DocIDs []string // Insertion order, unique
	Claims []string // Trimmed, non-empty, unique, first-seen order

	docSeen   map[string]bool
	claimSeen map[string]bool
}

func newBucket() *Bucket {
	return &Bucket{
		DocIDs:    []string{},
		Claims:    []string{},
		docSeen:   make(map[string]bool),
		claimSeen: make(map[string]bool),
	}
}

func (b *Bucket) add(rec model.ClaimRecord) {
	if !b.docSeen[rec.DocID] {
		b.docSeen[rec.DocID] = true
		b.DocIDs = append(b.DocIDs, rec.DocID)
	}
	for _, c := range rec.Claims {
		c = strings.TrimSpace(c)
		if c == "" || b.claimSeen[c] {
			continue
		}
		b.claimSeen[c] = true
		b.Claims = append(b.Claims, c)
	}
}

// Group is the per-event view of every extracted claim
type Group struct {
	Event     string
	EventName string
	Lincoln   *Bucket
	Other     *Bucket
	Unknown   *Bucket
}

// Bucket returns the bucket for a source category
func (g *Group) Bucket(source model.Source) *Bucket {
	switch source {
	case model.SourceLincoln:
		return g.Lincoln
	case model.SourceOther:
		return g.Other
	default:
		return g.Unknown
	}
}

// Evaluable reports whether the group has claims on either judged side.
// Unknown-source claims are never judged.
func (g *Group) Evaluable() bool {
	return len(g.Lincoln.Claims) > 0 || len(g.Other.Claims) > 0
}

// Grouped holds groups in first-seen event order
type Grouped struct {
	Groups []*Group
	byID   map[string]*Group
}

// Get returns the group for an event id
func (g *Grouped) Get(event string) (*Group, bool) {
	grp, ok := g.byID[event]
	return grp, ok
}

// Evaluable returns the groups with claims on either judged side
func (g *Grouped) Evaluable() []*Group {
	var out []*Group
	for _, grp := range g.Groups {
		if grp.Evaluable() {
			out = append(out, grp)
		}
	}
	return out
}

// GroupClaims builds the grouped view. The record's stored source wins;
// records without one are classified from the document id. Event names come
// from the registry, falling back to the record and then the id.
func GroupClaims(records []model.ClaimRecord, registry *events.Registry) *Grouped {
	out := &Grouped{byID: make(map[string]*Group)}

	for _, rec := range records {
		if rec.Event == "" {
			continue
		}
		grp, ok := out.byID[rec.Event]
		if !ok {
			grp = &Group{
				Event:     rec.Event,
				EventName: eventName(rec, registry),
				Lincoln:   newBucket(),
				Other:     newBucket(),
				Unknown:   newBucket(),
			}
			out.byID[rec.Event] = grp
			out.Groups = append(out.Groups, grp)
		}

		source := rec.Source
		if source == "" {
			source = model.ClassifySource(rec.DocID)
		}
		grp.Bucket(source).add(rec)
	}
	return out
}

func eventName(rec model.ClaimRecord, registry *events.Registry) string {
	if registry != nil {
		if _, ok := registry.Get(rec.Event); ok {
			return registry.Name(rec.Event)
		}
	}
	if rec.EventName != "" {
		return rec.EventName
	}
	return rec.Event
}
