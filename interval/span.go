package interval

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Span represents a closed, inclusive range [Start, Stop] over int64.
// Spans are immutable value types ordered by (Start, Stop).
type Span struct {
	Start int64 // Inclusive start of the range
	Stop  int64 // Inclusive stop of the range
}

// New creates a span from start to stop, both inclusive.
// Endpoints are swapped if given in descending order.
func New(start, stop int64) Span {
	if stop < start {
		start, stop = stop, start
	}
	return Span{Start: start, Stop: stop}
}

// Single creates a span covering exactly one point.
func Single(x int64) Span {
	return Span{Start: x, Stop: x}
}

// Len returns the number of points covered by the span.
func (s Span) Len() int64 {
	return s.Stop - s.Start + 1
}

// Contains returns true if x lies within the span.
func (s Span) Contains(x int64) bool {
	return x >= s.Start && x <= s.Stop
}

// Covers returns true if o lies entirely within the span.
func (s Span) Covers(o Span) bool {
	return o.Start >= s.Start && o.Stop <= s.Stop
}

// Compare returns -1 if s orders before o, 0 if equal, 1 if after.
// Spans are ordered by Start, then Stop.
func (s Span) Compare(o Span) int {
	if s.Start != o.Start {
		if s.Start < o.Start {
			return -1
		}
		return 1
	}
	if s.Stop != o.Stop {
		if s.Stop < o.Stop {
			return -1
		}
		return 1
	}
	return 0
}

// Contiguous returns true if the two spans touch or overlap, leaving
// no gap between them. Contiguous spans can be merged into one.
func (s Span) Contiguous(o Span) bool {
	return o.Start <= s.Stop+1 && s.Start <= o.Stop+1
}

// Intersect returns the overlap of two spans. The second return is
// false when the spans do not overlap.
func (s Span) Intersect(o Span) (Span, bool) {
	start := max(s.Start, o.Start)
	stop := min(s.Stop, o.Stop)
	if start > stop {
		return Span{}, false
	}
	return Span{Start: start, Stop: stop}, true
}

// Merge returns the single span covering both s and o. The second
// return is false when the spans are not contiguous.
func (s Span) Merge(o Span) (Span, bool) {
	if !s.Contiguous(o) {
		return Span{}, false
	}
	return Span{Start: min(s.Start, o.Start), Stop: max(s.Stop, o.Stop)}, true
}

// Remove returns the parts of s not covered by o. Because both spans
// are contiguous blocks the result has zero, one, or two fragments;
// empty fragments are omitted.
func (s Span) Remove(o Span) []Span {
	if _, ok := s.Intersect(o); !ok {
		return []Span{s}
	}
	var out []Span
	if s.Start < o.Start {
		out = append(out, Span{Start: s.Start, Stop: o.Start - 1})
	}
	if s.Stop > o.Stop {
		out = append(out, Span{Start: o.Stop + 1, Stop: s.Stop})
	}
	return out
}

// String returns the text form of the span: a bare number for a
// single point, "start-stop" otherwise.
func (s Span) String() string {
	if s.Start == s.Stop {
		return strconv.FormatInt(s.Start, 10)
	}
	return strconv.FormatInt(s.Start, 10) + "-" + strconv.FormatInt(s.Stop, 10)
}

// ParseSpan parses a single span token: a bare integer is a point,
// "a-b" is the inclusive range from a to b.
func ParseSpan(tok string) (Span, error) {
	if x, err := strconv.ParseInt(tok, 10, 64); err == nil {
		return Single(x), nil
	}
	lo, hi, found := strings.Cut(tok, "-")
	if !found {
		return Span{}, fmt.Errorf("parse span %q: not a number or range", tok)
	}
	start, err := strconv.ParseInt(lo, 10, 64)
	if err != nil {
		return Span{}, fmt.Errorf("parse span %q: bad start: %w", tok, err)
	}
	stop, err := strconv.ParseInt(hi, 10, 64)
	if err != nil {
		return Span{}, fmt.Errorf("parse span %q: bad stop: %w", tok, err)
	}
	if stop < start {
		return Span{}, fmt.Errorf("parse span %q: stop before start", tok)
	}
	return Span{Start: start, Stop: stop}, nil
}

// Coalesce merges all mutually contiguous or overlapping spans into a
// minimal sorted cover. The input is not modified.
func Coalesce(spans []Span) []Span {
	if len(spans) == 0 {
		return nil
	}
	sorted := make([]Span, len(spans))
	copy(sorted, spans)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Compare(sorted[j]) < 0
	})

	out := sorted[:1]
	for _, sp := range sorted[1:] {
		last := &out[len(out)-1]
		if merged, ok := last.Merge(sp); ok {
			*last = merged
			continue
		}
		out = append(out, sp)
	}
	return out
}
