// Package dictionary holds the surface-form to entity mapping a tagger matches
// against. A Dictionary is built once, by a loader or a Builder, and is
// read-only afterwards.
package dictionary

import (
	"fmt"
	"sort"

	"github.com/cognibio/biotag/pkg/biotag/internalerr"
	"github.com/cognibio/biotag/pkg/biotag/normalize"
)

// Entity is a biological concept recognized by the tagger.
type Entity struct {
	ID    string // canonical identifier, e.g. "EFO:0000270" or "uniprot:P01308"
	Label string // display label
	Type  string // entity type, e.g. "Disease", "Protein", "Chemical"
}

// Entry pairs a normalized surface form with its entity.
type Entry struct {
	Surface string
	Entity  Entity
}

// Dictionary maps normalized surface forms to entities. Duplicate surface
// forms resolve last-writer-wins at build time.
type Dictionary struct {
	entries map[string]Entity
}

// Get performs an exact, case-normalized lookup of a surface form.
// It returns internalerr.ErrEntityNotFound when the form is absent.
func (d *Dictionary) Get(name string) (Entity, error) {
	e, ok := d.entries[normalize.Key(name)]
	if !ok {
		return Entity{}, fmt.Errorf("%w: %q", internalerr.ErrEntityNotFound, name)
	}
	return e, nil
}

// Len returns the number of distinct surface forms.
func (d *Dictionary) Len() int {
	return len(d.entries)
}

// Entries returns all surface forms with their entities, sorted by surface
// form for deterministic iteration.
func (d *Dictionary) Entries() []Entry {
	out := make([]Entry, 0, len(d.entries))
	for s, e := range d.entries {
		out = append(out, Entry{Surface: s, Entity: e})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Surface < out[j].Surface })
	return out
}

// Builder accumulates entries for a Dictionary.
type Builder struct {
	entries map[string]Entity
}

// NewBuilder creates an empty dictionary builder.
func NewBuilder() *Builder {
	return &Builder{entries: make(map[string]Entity)}
}

// Add registers a surface form for an entity. The form is normalized before
// insertion; a later Add with the same normalized form overwrites the earlier
// one. An empty surface form or an entity without an ID is rejected.
func (b *Builder) Add(surface string, e Entity) error {
	key := normalize.Key(surface)
	if key == "" {
		return fmt.Errorf("%w: empty surface form", internalerr.ErrInvalidInput)
	}
	if e.ID == "" {
		return fmt.Errorf("%w: surface form %q has no entity id", internalerr.ErrInvalidInput, surface)
	}
	b.entries[key] = e
	return nil
}

// Build finalizes the dictionary. The builder must not be used afterwards.
func (b *Builder) Build() *Dictionary {
	d := &Dictionary{entries: b.entries}
	b.entries = nil
	return d
}
