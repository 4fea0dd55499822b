package editlog

import (
	"errors"
	"fmt"
	"time"

	"github.com/dshills/linekit/interval"
)

// Common errors for record application.
var (
	ErrLineRange   = errors.New("line index out of range")
	ErrColumnRange = errors.New("column out of range")
)

// Buffer is the externally owned line store records mutate: a
// zero-based, in-place-mutable ordered sequence of text lines.
type Buffer interface {
	// Len returns the number of lines.
	Len() int

	// Line returns the text of line i.
	Line(i int) string

	// SetLine replaces the text of line i.
	SetLine(i int, text string)

	// InsertLines inserts lines before index i.
	InsertLines(i int, lines ...string)

	// RemoveLines removes n lines starting at index i.
	RemoveLines(i, n int)
}

// Record describes a single reversible mutation of a line buffer.
// The record set is closed: CharSplice, LineSplice, and Checkpoint.
type Record interface {
	// Apply performs the mutation on buf. Bounds violations are
	// reported before any mutation takes place.
	Apply(buf Buffer) error

	// Inverse returns the record that exactly reverses this one.
	Inverse() Record

	// Usage returns the set of buffer lines the record touches.
	Usage() *interval.Set

	isRecord()
}

// CharSplice replaces a run of characters inside one line: at byte
// position Col of line Line, the Delete run is removed and Insert is
// put in its place.
type CharSplice struct {
	Line   int    // Zero-based line index
	Col    int    // Zero-based byte position within the line
	Insert string // Text inserted at Col
	Delete string // Text previously at Col, removed by the splice
}

// InsertText creates a record inserting text at a position in a line.
func InsertText(line, col int, text string) CharSplice {
	return CharSplice{Line: line, Col: col, Insert: text}
}

// DeleteText creates a record removing deleted from a position in a
// line. The removed text must be supplied so the record is invertible.
func DeleteText(line, col int, deleted string) CharSplice {
	return CharSplice{Line: line, Col: col, Delete: deleted}
}

// ReplaceText creates a record replacing old with text at a position
// in a line.
func ReplaceText(line, col int, old, text string) CharSplice {
	return CharSplice{Line: line, Col: col, Insert: text, Delete: old}
}

// Apply splices the line in place. The buffer is not mutated on error.
func (c CharSplice) Apply(buf Buffer) error {
	if c.Line < 0 || c.Line >= buf.Len() {
		return fmt.Errorf("char splice at line %d of %d: %w", c.Line, buf.Len(), ErrLineRange)
	}
	text := buf.Line(c.Line)
	if c.Col < 0 || c.Col > len(text) {
		return fmt.Errorf("char splice at %d.%d (line length %d): %w", c.Line, c.Col, len(text), ErrColumnRange)
	}
	if c.Col+len(c.Delete) > len(text) {
		return fmt.Errorf("char splice deletes %d bytes at %d.%d past line length %d: %w",
			len(c.Delete), c.Line, c.Col, len(text), ErrColumnRange)
	}
	buf.SetLine(c.Line, text[:c.Col]+c.Insert+text[c.Col+len(c.Delete):])
	return nil
}

// Inverse returns the splice restoring the replaced run.
func (c CharSplice) Inverse() Record {
	return CharSplice{Line: c.Line, Col: c.Col, Insert: c.Delete, Delete: c.Insert}
}

// Usage returns the single touched line.
func (c CharSplice) Usage() *interval.Set {
	return interval.SetOf(interval.Single(int64(c.Line)))
}

// Combine merges a subsequent splice on the same line into one record
// reproducing both effects, with an inverse that still restores the
// state before the first splice. It is valid only when next's position
// falls within or immediately after the run this splice inserted; any
// other adjacency is reported as non-combinable.
func (c CharSplice) Combine(next CharSplice) (CharSplice, bool) {
	if next.Line != c.Line {
		return CharSplice{}, false
	}
	off := next.Col - c.Col
	if off < 0 || off > len(c.Insert) {
		return CharSplice{}, false
	}
	overhang := off + len(next.Delete) - len(c.Insert)
	if overhang <= 0 {
		// next's deletion stays inside this record's insertion.
		return CharSplice{
			Line:   c.Line,
			Col:    c.Col,
			Insert: c.Insert[:off] + next.Insert + c.Insert[off+len(next.Delete):],
			Delete: c.Delete,
		}, true
	}
	// next's deletion runs past the insertion into original text.
	return CharSplice{
		Line:   c.Line,
		Col:    c.Col,
		Insert: c.Insert[:off] + next.Insert,
		Delete: c.Delete + next.Delete[len(next.Delete)-overhang:],
	}, true
}

func (CharSplice) isRecord() {}

// String describes the splice for logs and transcripts.
func (c CharSplice) String() string {
	return fmt.Sprintf("char %d.%d -%q +%q", c.Line, c.Col, c.Delete, c.Insert)
}

// LineSplice replaces whole lines: the Delete lines starting at index
// Line are removed and the Insert lines are put in their place.
type LineSplice struct {
	Line   int      // Zero-based index of the first affected line
	Insert []string // Lines inserted at Line
	Delete []string // Lines previously at Line, removed by the splice
}

// InsertLines creates a record inserting lines before index line.
func InsertLines(line int, lines ...string) LineSplice {
	return LineSplice{Line: line, Insert: lines}
}

// DeleteLines creates a record removing the given lines at index
// line. The removed lines must be supplied so the record is
// invertible.
func DeleteLines(line int, deleted ...string) LineSplice {
	return LineSplice{Line: line, Delete: deleted}
}

// ReplaceLines creates a record replacing old with lines at index
// line.
func ReplaceLines(line int, old, lines []string) LineSplice {
	return LineSplice{Line: line, Insert: lines, Delete: old}
}

// Apply splices the lines in place. The buffer is not mutated on
// error.
func (l LineSplice) Apply(buf Buffer) error {
	if l.Line < 0 || l.Line > buf.Len() {
		return fmt.Errorf("line splice at line %d of %d: %w", l.Line, buf.Len(), ErrLineRange)
	}
	if l.Line+len(l.Delete) > buf.Len() {
		return fmt.Errorf("line splice deletes %d lines at %d past end %d: %w",
			len(l.Delete), l.Line, buf.Len(), ErrLineRange)
	}
	if len(l.Delete) > 0 {
		buf.RemoveLines(l.Line, len(l.Delete))
	}
	if len(l.Insert) > 0 {
		buf.InsertLines(l.Line, l.Insert...)
	}
	return nil
}

// Inverse returns the splice restoring the replaced lines.
func (l LineSplice) Inverse() Record {
	return LineSplice{Line: l.Line, Insert: l.Delete, Delete: l.Insert}
}

// Usage returns the affected line span.
func (l LineSplice) Usage() *interval.Set {
	n := len(l.Insert)
	if len(l.Delete) > n {
		n = len(l.Delete)
	}
	if n == 0 {
		return interval.NewSet()
	}
	return interval.SetOf(interval.New(int64(l.Line), int64(l.Line+n-1)))
}

func (LineSplice) isRecord() {}

// String describes the splice for logs and transcripts.
func (l LineSplice) String() string {
	return fmt.Sprintf("lines %d -%d +%d", l.Line, len(l.Delete), len(l.Insert))
}

// Checkpoint is a zero-effect marker delimiting an undo/redo grouping
// boundary. Undoing past a checkpoint consumes every record above it
// as a single unit.
type Checkpoint struct {
	When time.Time
}

// Apply does nothing.
func (Checkpoint) Apply(Buffer) error { return nil }

// Inverse returns the checkpoint itself.
func (c Checkpoint) Inverse() Record { return c }

// Usage returns the empty set.
func (Checkpoint) Usage() *interval.Set { return interval.NewSet() }

func (Checkpoint) isRecord() {}

// String describes the marker for logs and transcripts.
func (c Checkpoint) String() string {
	return "checkpoint " + c.When.Format(time.RFC3339)
}
