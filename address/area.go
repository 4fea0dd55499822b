package address

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Area is a closed, inclusive interval of Positions addressing a span
// of text. Two sub-shapes have dedicated text forms: a vertical area
// spans whole lines and renders as "3-7", a horizontal area covers
// part of a single line and renders as "3.2-3.9". Mixed areas render
// endpoint by endpoint, e.g. "3.2-7".
type Area struct {
	Start Position
	Stop  Position
}

// Vertical creates an area spanning whole lines first through last,
// both inclusive, using the column sentinel on both endpoints.
func Vertical(first, last int) Area {
	if last < first {
		first, last = last, first
	}
	return Area{
		Start: Position{Line: first, Column: 0},
		Stop:  Position{Line: last + 1, Column: 0},
	}
}

// Horizontal creates an area covering columns from through to, both
// inclusive, on a single line.
func Horizontal(line, from, to int) Area {
	if to < from {
		from, to = to, from
	}
	return Area{
		Start: Position{Line: line, Column: from},
		Stop:  Position{Line: line, Column: to},
	}
}

// IsVertical returns true if the area spans whole lines: both
// endpoints carry the column sentinel.
func (a Area) IsVertical() bool {
	return a.Start.IsSentinel() && a.Stop.IsSentinel()
}

// IsHorizontal returns true if the area lies within a single line with
// real columns on both endpoints.
func (a Area) IsHorizontal() bool {
	return a.Start.Line == a.Stop.Line && !a.Start.IsSentinel() && !a.Stop.IsSentinel()
}

// Contains returns true if p lies within the area.
func (a Area) Contains(p Position) bool {
	return p.Compare(a.Start) >= 0 && p.Compare(a.Stop) <= 0
}

// Contiguous returns true if the two areas touch or overlap with no
// position between them. Stops should be normalized (NormalizeStop)
// for line-boundary continuity to register.
func (a Area) Contiguous(o Area) bool {
	return o.Start.Compare(a.Stop.Next()) <= 0 && a.Start.Compare(o.Stop.Next()) <= 0
}

// Merge returns the single area covering both a and o. The second
// return is false when the areas are not contiguous.
func (a Area) Merge(o Area) (Area, bool) {
	if !a.Contiguous(o) {
		return Area{}, false
	}
	merged := a
	if o.Start.Before(merged.Start) {
		merged.Start = o.Start
	}
	if o.Stop.After(merged.Stop) {
		merged.Stop = o.Stop
	}
	return merged, true
}

// Coalesce merges all mutually contiguous or overlapping areas into a
// minimal sorted cover. The input is not modified.
func Coalesce(areas []Area) []Area {
	if len(areas) == 0 {
		return nil
	}
	sorted := make([]Area, len(areas))
	copy(sorted, areas)
	sort.Slice(sorted, func(i, j int) bool {
		if c := sorted[i].Start.Compare(sorted[j].Start); c != 0 {
			return c < 0
		}
		return sorted[i].Stop.Compare(sorted[j].Stop) < 0
	})

	out := sorted[:1]
	for _, ar := range sorted[1:] {
		last := &out[len(out)-1]
		if merged, ok := last.Merge(ar); ok {
			*last = merged
			continue
		}
		out = append(out, ar)
	}
	return out
}

// Lines returns the inclusive range of lines the area covers. A stop
// sentinel (L, 0) covers through the end of line L-1.
func (a Area) Lines() (first, last int) {
	first = a.Start.Line
	last = a.Stop.Line
	if a.Stop.IsSentinel() {
		last--
	}
	return first, last
}

// Select splits the backing line sequence at the area's boundaries.
// It returns the text of the start line before the start column
// (prefix), the text of the stop line after the stop column (suffix,
// empty when the stop carries the sentinel), and the inclusive line
// slice with its first and last entries trimmed to those boundaries.
// Lines are addressed 1-based into the zero-based slice; out-of-range
// boundaries are clamped.
func (a Area) Select(lines []string) (prefix, suffix string, selected []string) {
	first, last := a.Lines()
	if first < 1 {
		first = 1
	}
	if last > len(lines) {
		last = len(lines)
	}
	if first > last {
		return "", "", nil
	}

	startCol := a.Start.Column
	if startCol < 1 {
		startCol = 1
	}
	firstLine := lines[first-1]
	cut := startCol - 1
	if cut > len(firstLine) {
		cut = len(firstLine)
	}
	prefix = firstLine[:cut]

	lastLine := lines[last-1]
	stopCol := len(lastLine)
	if !a.Stop.IsSentinel() {
		if a.Stop.Column < stopCol {
			stopCol = a.Stop.Column
		}
		suffix = lastLine[stopCol:]
	}

	selected = make([]string, last-first+1)
	copy(selected, lines[first-1:last])
	selected[len(selected)-1] = selected[len(selected)-1][:stopCol]
	if cut > len(selected[0]) {
		cut = len(selected[0])
	}
	selected[0] = selected[0][cut:]
	return prefix, suffix, selected
}

// String returns the text form of the area. A vertical area renders
// as "3-7" (or "3" for a single line), computing the inclusive end
// from the stop sentinel's implicit line increment. Other areas render
// each endpoint as "line.column", with a sentinel endpoint shortened
// to its bare line number.
func (a Area) String() string {
	if a.IsVertical() {
		first, last := a.Lines()
		if first == last {
			return strconv.Itoa(first)
		}
		return fmt.Sprintf("%d-%d", first, last)
	}
	return a.endpoint(a.Start, false) + "-" + a.endpoint(a.Stop, true)
}

func (a Area) endpoint(p Position, isStop bool) string {
	if p.IsSentinel() {
		if isStop {
			return strconv.Itoa(p.Line - 1)
		}
		return strconv.Itoa(p.Line)
	}
	return p.String()
}

// ParseArea parses the text form produced by String. A bare line
// number in an endpoint is whole-line: as a start it addresses the
// line's beginning, as a stop the line's end. Malformed input fails
// without producing a partial area.
func ParseArea(s string) (Area, error) {
	lo, hi, found := strings.Cut(s, "-")
	if !found {
		hi = lo
	}
	start, err := parseEndpoint(lo, false)
	if err != nil {
		return Area{}, fmt.Errorf("parse area %q: %w", s, err)
	}
	stop, err := parseEndpoint(hi, true)
	if err != nil {
		return Area{}, fmt.Errorf("parse area %q: %w", s, err)
	}
	if start.Compare(stop) > 0 {
		return Area{}, fmt.Errorf("parse area %q: stop before start", s)
	}
	return Area{Start: start, Stop: stop}, nil
}

func parseEndpoint(tok string, isStop bool) (Position, error) {
	lineTok, colTok, found := strings.Cut(tok, ".")
	line, err := strconv.Atoi(lineTok)
	if err != nil {
		return Position{}, fmt.Errorf("bad line in %q: %w", tok, err)
	}
	if line < 1 {
		return Position{}, fmt.Errorf("line %d out of range in %q", line, tok)
	}
	if !found {
		if isStop {
			return Position{Line: line + 1, Column: 0}, nil
		}
		return Position{Line: line, Column: 0}, nil
	}
	col, err := strconv.Atoi(colTok)
	if err != nil {
		return Position{}, fmt.Errorf("bad column in %q: %w", tok, err)
	}
	if col < 0 {
		return Position{}, fmt.Errorf("column %d out of range in %q", col, tok)
	}
	return Position{Line: line, Column: col}, nil
}
