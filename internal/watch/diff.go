package watch

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/dshills/linekit/editlog"
)

// DiffLines computes the line splices that transform old into new.
// Applying the returned records in order to a buffer holding old
// yields new. Adjacent removals and insertions are fused into a
// single replace record.
func DiffLines(old, new []string) []editlog.LineSplice {
	dmp := diffmatchpatch.New()
	a, b, lineArray := dmp.DiffLinesToChars(joinLines(old), joinLines(new))
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lineArray)

	var out []editlog.LineSplice
	pos := 0
	for i := 0; i < len(diffs); i++ {
		d := diffs[i]
		lines := splitLines(d.Text)
		if len(lines) == 0 {
			continue
		}
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			pos += len(lines)
		case diffmatchpatch.DiffDelete:
			// A removal directly followed by an insertion is one
			// replacement.
			if i+1 < len(diffs) && diffs[i+1].Type == diffmatchpatch.DiffInsert {
				ins := splitLines(diffs[i+1].Text)
				out = append(out, editlog.ReplaceLines(pos, lines, ins))
				pos += len(ins)
				i++
				continue
			}
			out = append(out, editlog.DeleteLines(pos, lines...))
		case diffmatchpatch.DiffInsert:
			out = append(out, editlog.InsertLines(pos, lines...))
			pos += len(lines)
		}
	}
	return out
}

// joinLines renders lines in the newline-terminated form the diff
// engine segments on.
func joinLines(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}

// splitLines is the inverse of joinLines.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(text, "\n"), "\n")
}
