// Package layered provides an insertion-ordered association between
// spans and values, where keys may overlap or repeat and lookup is
// resolved by containment: the most recently inserted entry whose key
// fully contains the query wins.
//
// Overlap, not equality, drives lookup, so the structure is an ordered
// association list rather than a hash map. Entries are never merged or
// compacted; the insertion order is the layer order.
package layered

import (
	"errors"
	"fmt"

	"github.com/dshills/linekit/interval"
)

// ErrNoLayer is returned by Lookup when no entry's key contains the
// query span.
var ErrNoLayer = errors.New("no covering layer")

// Entry is a single (key, value) pair in a Mapping.
type Entry[V any] struct {
	Key   interval.Span
	Value V
}

// Mapping associates span keys with values. Duplicate and overlapping
// keys are retained; later entries shadow earlier ones for queries
// they contain.
//
// Mapping is not safe for concurrent use; callers must serialize
// access.
type Mapping[V any] struct {
	entries []Entry[V]
}

// New creates an empty mapping.
func New[V any]() *Mapping[V] {
	return &Mapping[V]{}
}

// Set appends an entry for key. Existing entries are never overwritten
// or merged, even when the key is identical.
func (m *Mapping[V]) Set(key interval.Span, v V) {
	m.entries = append(m.entries, Entry[V]{Key: key, Value: v})
}

// Update appends every entry in order, equivalent to repeated Set.
func (m *Mapping[V]) Update(entries ...Entry[V]) {
	m.entries = append(m.entries, entries...)
}

// Get returns the value of the most recently inserted entry whose key
// fully contains the query span. The second return is false when no
// entry contains it.
func (m *Mapping[V]) Get(key interval.Span) (V, bool) {
	for i := len(m.entries) - 1; i >= 0; i-- {
		if m.entries[i].Key.Covers(key) {
			return m.entries[i].Value, true
		}
	}
	var zero V
	return zero, false
}

// Lookup is Get with a miss reported as an error wrapping ErrNoLayer.
func (m *Mapping[V]) Lookup(key interval.Span) (V, error) {
	v, ok := m.Get(key)
	if !ok {
		return v, fmt.Errorf("lookup %v: %w", key, ErrNoLayer)
	}
	return v, nil
}

// Path returns the values of every entry whose key fully contains the
// query span, in insertion order: the outermost layer first, the
// innermost (winning) layer last.
func (m *Mapping[V]) Path(key interval.Span) []V {
	var out []V
	for _, e := range m.entries {
		if e.Key.Covers(key) {
			out = append(out, e.Value)
		}
	}
	return out
}

// Keys returns every key in insertion order, unfiltered.
func (m *Mapping[V]) Keys() []interval.Span {
	out := make([]interval.Span, len(m.entries))
	for i, e := range m.entries {
		out[i] = e.Key
	}
	return out
}

// Values returns every value in insertion order, unfiltered.
func (m *Mapping[V]) Values() []V {
	out := make([]V, len(m.entries))
	for i, e := range m.entries {
		out[i] = e.Value
	}
	return out
}

// Entries returns a copy of all entries in insertion order.
func (m *Mapping[V]) Entries() []Entry[V] {
	out := make([]Entry[V], len(m.entries))
	copy(out, m.entries)
	return out
}

// Len returns the number of entries, including shadowed ones.
func (m *Mapping[V]) Len() int {
	return len(m.entries)
}
