package interval

import (
	"fmt"
	"sort"
	"strings"
)

// Set is a sparse membership set over int64, stored as a sorted
// sequence of disjoint, non-adjacent spans. Every mutation restores
// this minimal normal form, so equal sets are structurally equal.
//
// Set is not safe for concurrent use; callers must serialize access.
type Set struct {
	spans []Span
}

// NewSet creates an empty set.
func NewSet() *Set {
	return &Set{}
}

// SetOf creates a set holding the given spans, coalescing as needed.
func SetOf(spans ...Span) *Set {
	return &Set{spans: Coalesce(spans)}
}

// FromSorted creates a set from spans the caller asserts are already
// in normal form: strictly increasing, disjoint, non-adjacent. The
// slice is copied, not retained.
func FromSorted(spans []Span) *Set {
	s := &Set{spans: make([]Span, len(spans))}
	copy(s.spans, spans)
	return s
}

// ParseSet parses the whitespace-separated text form of a set. A bare
// integer token is a single point, "a-b" is an inclusive range. The
// set is not mutated on error.
func ParseSet(text string) (*Set, error) {
	var spans []Span
	for _, tok := range strings.Fields(text) {
		sp, err := ParseSpan(tok)
		if err != nil {
			return nil, fmt.Errorf("parse set: %w", err)
		}
		spans = append(spans, sp)
	}
	return SetOf(spans...), nil
}

// Add inserts a span into the set, merging with any contiguous
// neighbors to keep the set in normal form.
func (s *Set) Add(sp Span) {
	// First stored span starting after the new one.
	i := sort.Search(len(s.spans), func(i int) bool {
		return s.spans[i].Start > sp.Start
	})

	// At most one predecessor can be contiguous: earlier spans are
	// separated from it by a gap of at least two.
	if i > 0 {
		if merged, ok := s.spans[i-1].Merge(sp); ok {
			i--
			sp = merged
		}
	}
	j := i
	for j < len(s.spans) {
		merged, ok := sp.Merge(s.spans[j])
		if !ok {
			break
		}
		sp = merged
		j++
	}

	s.spans = append(s.spans[:i], append([]Span{sp}, s.spans[j:]...)...)
}

// Discard removes every point of sp from the set. Stored spans that
// intersect sp are replaced by their remaining fragments in order.
func (s *Set) Discard(sp Span) {
	out := make([]Span, 0, len(s.spans))
	for _, stored := range s.spans {
		if _, ok := stored.Intersect(sp); !ok {
			out = append(out, stored)
			continue
		}
		out = append(out, stored.Remove(sp)...)
	}
	s.spans = out
}

// Union returns a new set holding every member of s or o.
func (s *Set) Union(o *Set) *Set {
	all := make([]Span, 0, len(s.spans)+len(o.spans))
	all = append(all, s.spans...)
	all = append(all, o.spans...)
	return &Set{spans: Coalesce(all)}
}

// Intersect returns a new set holding every member of both s and o.
func (s *Set) Intersect(o *Set) *Set {
	var out []Span
	i, j := 0, 0
	for i < len(s.spans) && j < len(o.spans) {
		if overlap, ok := s.spans[i].Intersect(o.spans[j]); ok {
			out = append(out, overlap)
		}
		// Advance whichever span ends first.
		if s.spans[i].Stop < o.spans[j].Stop {
			i++
		} else {
			j++
		}
	}
	return &Set{spans: out}
}

// Difference returns a new set holding members of s not in o.
func (s *Set) Difference(o *Set) *Set {
	out := s.Clone()
	for _, sp := range o.spans {
		out.Discard(sp)
	}
	return out
}

// Contains returns true if x is a member of the set.
func (s *Set) Contains(x int64) bool {
	// First span ending at or after x.
	i := sort.Search(len(s.spans), func(i int) bool {
		return s.spans[i].Stop >= x
	})
	return i < len(s.spans) && s.spans[i].Contains(x)
}

// Count returns the number of individual members in the set, not the
// number of spans.
func (s *Set) Count() int64 {
	var n int64
	for _, sp := range s.spans {
		n += sp.Len()
	}
	return n
}

// Len returns the number of spans in the set.
func (s *Set) Len() int {
	return len(s.spans)
}

// Empty returns true if the set has no members.
func (s *Set) Empty() bool {
	return len(s.spans) == 0
}

// Spans returns a copy of the set's spans in ascending order.
func (s *Set) Spans() []Span {
	out := make([]Span, len(s.spans))
	copy(out, s.spans)
	return out
}

// Clone returns an independent copy of the set.
func (s *Set) Clone() *Set {
	return FromSorted(s.spans)
}

// Equal returns true if both sets have the same members. Normal form
// makes this a structural comparison.
func (s *Set) Equal(o *Set) bool {
	if len(s.spans) != len(o.spans) {
		return false
	}
	for i, sp := range s.spans {
		if sp != o.spans[i] {
			return false
		}
	}
	return true
}

// String returns the text form of the set: spans in ascending order,
// space-joined, single points as bare numbers. Round-trips through
// ParseSet.
func (s *Set) String() string {
	var b strings.Builder
	for i, sp := range s.spans {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(sp.String())
	}
	return b.String()
}
