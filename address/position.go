// Package address provides two-dimensional (line, column) positions
// and closed areas of them for addressing spans of text.
//
// Lines and columns are 1-based. Column 0 is a sentinel: as the stop
// of an area, position (L, 0) means "end of line L-1". Rolling a stop
// past the last character of a line onto the (L+1, 0) sentinel is what
// lets an area register as contiguous with the start of the next line.
package address

import "fmt"

// Position is a (line, column) pair, both 1-based. Column 0 is the
// end-of-previous-line sentinel used in stop positions.
type Position struct {
	Line   int
	Column int
}

// Compare returns -1 if p orders before o, 0 if equal, 1 if after.
// Positions are ordered by line, then column; the column-0 sentinel
// of a line orders before every real column on that line.
func (p Position) Compare(o Position) int {
	if p.Line != o.Line {
		if p.Line < o.Line {
			return -1
		}
		return 1
	}
	if p.Column != o.Column {
		if p.Column < o.Column {
			return -1
		}
		return 1
	}
	return 0
}

// Before returns true if p comes before o.
func (p Position) Before(o Position) bool {
	return p.Compare(o) < 0
}

// After returns true if p comes after o.
func (p Position) After(o Position) bool {
	return p.Compare(o) > 0
}

// Next returns the successor position. The successor of the (L, 0)
// sentinel is (L, 1), the first column of line L, so normalized stops
// chain naturally onto the next line's start.
func (p Position) Next() Position {
	return Position{Line: p.Line, Column: p.Column + 1}
}

// NormalizeStop rolls a stop position past the end of its line onto
// the next line's column-0 sentinel: if Column >= lineLen the result
// is (Line+1, 0), otherwise p is returned unchanged.
func (p Position) NormalizeStop(lineLen int) Position {
	if p.Column >= lineLen {
		return Position{Line: p.Line + 1, Column: 0}
	}
	return p
}

// IsSentinel returns true if p carries the column-0 sentinel.
func (p Position) IsSentinel() bool {
	return p.Column == 0
}

// String returns "line.column", e.g. "3.2". The sentinel renders with
// an explicit zero column; Area formatting gives it its short form.
func (p Position) String() string {
	return fmt.Sprintf("%d.%d", p.Line, p.Column)
}
