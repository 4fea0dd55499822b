package watch

import (
	"strings"
	"testing"

	"github.com/dshills/linekit/linebuf"
)

func TestDiffLines(t *testing.T) {
	tests := []struct {
		name string
		old  []string
		new  []string
	}{
		{"no change", []string{"a", "b"}, []string{"a", "b"}},
		{"append", []string{"a"}, []string{"a", "b"}},
		{"prepend", []string{"b"}, []string{"a", "b"}},
		{"delete middle", []string{"a", "b", "c"}, []string{"a", "c"}},
		{"replace line", []string{"a", "b", "c"}, []string{"a", "x", "c"}},
		{"replace uneven", []string{"a", "b", "c"}, []string{"a", "x", "y", "z", "c"}},
		{"rewrite all", []string{"a", "b"}, []string{"x", "y", "z"}},
		{"from empty", nil, []string{"a", "b"}},
		{"to empty", []string{"a", "b"}, nil},
		{"interleaved", []string{"a", "b", "c", "d", "e"}, []string{"a", "x", "c", "e", "f"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			splices := DiffLines(tt.old, tt.new)

			buf := linebuf.New(tt.old...)
			for _, sp := range splices {
				if err := sp.Apply(buf); err != nil {
					t.Fatalf("applying %v: %v", sp, err)
				}
			}
			if got := strings.Join(buf.Lines(), "|"); got != strings.Join(tt.new, "|") {
				t.Errorf("result = %q, want %q", got, strings.Join(tt.new, "|"))
			}

			if strings.Join(tt.old, "|") == strings.Join(tt.new, "|") && len(splices) != 0 {
				t.Errorf("identical inputs produced %d splices", len(splices))
			}
		})
	}
}

func TestDiffLinesInvertible(t *testing.T) {
	old := []string{"alpha", "beta", "gamma", "delta"}
	new := []string{"alpha", "BETA", "delta", "epsilon"}

	splices := DiffLines(old, new)
	buf := linebuf.New(old...)
	for _, sp := range splices {
		if err := sp.Apply(buf); err != nil {
			t.Fatal(err)
		}
	}
	// Undo in reverse order restores the original.
	for i := len(splices) - 1; i >= 0; i-- {
		if err := splices[i].Inverse().Apply(buf); err != nil {
			t.Fatal(err)
		}
	}
	if got := strings.Join(buf.Lines(), "|"); got != strings.Join(old, "|") {
		t.Errorf("inverse replay = %q, want %q", got, strings.Join(old, "|"))
	}
}

func TestDiffLinesFusesReplacements(t *testing.T) {
	splices := DiffLines([]string{"a", "b", "c"}, []string{"a", "x", "c"})
	if len(splices) != 1 {
		t.Fatalf("got %d splices, want 1 fused replacement", len(splices))
	}
	sp := splices[0]
	if len(sp.Delete) != 1 || len(sp.Insert) != 1 || sp.Line != 1 {
		t.Errorf("splice = %+v", sp)
	}
}
