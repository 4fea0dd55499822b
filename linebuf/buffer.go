// Package linebuf provides a slice-backed line buffer implementing
// the editlog.Buffer contract: a zero-based, in-place-mutable ordered
// sequence of text lines.
package linebuf

import "strings"

// Buffer is an in-memory sequence of text lines. It is exclusively
// owned by one caller at a time and performs no locking.
type Buffer struct {
	lines []string
}

// New creates a buffer holding the given lines.
func New(lines ...string) *Buffer {
	b := &Buffer{lines: make([]string, len(lines))}
	copy(b.lines, lines)
	return b
}

// FromString creates a buffer by splitting text on newlines. A single
// trailing newline does not produce an empty final line.
func FromString(text string) *Buffer {
	if text == "" {
		return &Buffer{}
	}
	text = strings.TrimSuffix(text, "\n")
	return &Buffer{lines: strings.Split(text, "\n")}
}

// Len returns the number of lines.
func (b *Buffer) Len() int {
	return len(b.lines)
}

// Line returns the text of line i, or the empty string when i is out
// of range.
func (b *Buffer) Line(i int) string {
	if i < 0 || i >= len(b.lines) {
		return ""
	}
	return b.lines[i]
}

// SetLine replaces the text of line i. Out-of-range indices are
// ignored.
func (b *Buffer) SetLine(i int, text string) {
	if i < 0 || i >= len(b.lines) {
		return
	}
	b.lines[i] = text
}

// InsertLines inserts lines before index i. The index is clamped to
// the buffer bounds.
func (b *Buffer) InsertLines(i int, lines ...string) {
	if len(lines) == 0 {
		return
	}
	if i < 0 {
		i = 0
	}
	if i > len(b.lines) {
		i = len(b.lines)
	}
	b.lines = append(b.lines[:i], append(append([]string{}, lines...), b.lines[i:]...)...)
}

// RemoveLines removes n lines starting at index i. The range is
// clamped to the buffer bounds.
func (b *Buffer) RemoveLines(i, n int) {
	if i < 0 {
		n += i
		i = 0
	}
	if i >= len(b.lines) || n <= 0 {
		return
	}
	if i+n > len(b.lines) {
		n = len(b.lines) - i
	}
	b.lines = append(b.lines[:i], b.lines[i+n:]...)
}

// Lines returns a copy of the buffer's lines.
func (b *Buffer) Lines() []string {
	out := make([]string, len(b.lines))
	copy(out, b.lines)
	return out
}

// String joins the lines with newlines. Non-empty buffers end with a
// trailing newline, matching FromString.
func (b *Buffer) String() string {
	if len(b.lines) == 0 {
		return ""
	}
	return strings.Join(b.lines, "\n") + "\n"
}

// Equal returns true if both buffers hold the same lines.
func (b *Buffer) Equal(o *Buffer) bool {
	if len(b.lines) != len(o.lines) {
		return false
	}
	for i, line := range b.lines {
		if line != o.lines[i] {
			return false
		}
	}
	return true
}
