package editlog

import (
	"errors"
	"strings"
	"testing"

	"github.com/dshills/linekit/linebuf"
)

func TestCharSpliceApply(t *testing.T) {
	tests := []struct {
		name string
		rec  CharSplice
		in   []string
		want []string
	}{
		{"insert", InsertText(0, 5, " cruel"), []string{"hello world"}, []string{"hello cruel world"}},
		{"delete", DeleteText(0, 5, " cruel"), []string{"hello cruel world"}, []string{"hello world"}},
		{"replace", ReplaceText(0, 6, "world", "there"), []string{"hello world"}, []string{"hello there"}},
		{"at line start", InsertText(1, 0, ">> "), []string{"a", "b"}, []string{"a", ">> b"}},
		{"at line end", InsertText(0, 3, "!"), []string{"abc"}, []string{"abc!"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := linebuf.New(tt.in...)
			if err := tt.rec.Apply(buf); err != nil {
				t.Fatalf("Apply: %v", err)
			}
			if got := strings.Join(buf.Lines(), ","); got != strings.Join(tt.want, ",") {
				t.Errorf("buffer = %q, want %q", got, strings.Join(tt.want, ","))
			}
		})
	}
}

func TestCharSpliceApplyBounds(t *testing.T) {
	buf := linebuf.New("short")

	if err := InsertText(5, 0, "x").Apply(buf); !errors.Is(err, ErrLineRange) {
		t.Errorf("line out of range error = %v, want ErrLineRange", err)
	}
	if err := InsertText(0, 99, "x").Apply(buf); !errors.Is(err, ErrColumnRange) {
		t.Errorf("column out of range error = %v, want ErrColumnRange", err)
	}
	if err := DeleteText(0, 3, "rtxxx").Apply(buf); !errors.Is(err, ErrColumnRange) {
		t.Errorf("deletion past end error = %v, want ErrColumnRange", err)
	}
	if buf.Line(0) != "short" {
		t.Error("failed apply mutated the buffer")
	}
}

func TestCharSpliceInverse(t *testing.T) {
	buf := linebuf.New("hello world")
	rec := ReplaceText(0, 6, "world", "there")

	if err := rec.Apply(buf); err != nil {
		t.Fatal(err)
	}
	if err := rec.Inverse().Apply(buf); err != nil {
		t.Fatal(err)
	}
	if buf.Line(0) != "hello world" {
		t.Errorf("inverse did not restore: %q", buf.Line(0))
	}
}

func TestCharSpliceCombine(t *testing.T) {
	tests := []struct {
		name  string
		first CharSplice
		next  CharSplice
		ok    bool
	}{
		{"append after insertion", InsertText(0, 2, "abc"), InsertText(0, 5, "def"), true},
		{"insert inside insertion", InsertText(0, 2, "abc"), InsertText(0, 3, "X"), true},
		{"delete inside insertion", InsertText(0, 2, "abcdef"), DeleteText(0, 4, "cd"), true},
		{"delete past insertion", ReplaceText(0, 2, "XY", "abc"), DeleteText(0, 4, "cZZ"), true},
		{"different line", InsertText(0, 2, "abc"), InsertText(1, 2, "x"), false},
		{"before insertion", InsertText(0, 5, "abc"), InsertText(0, 2, "x"), false},
		{"past insertion end", InsertText(0, 2, "abc"), InsertText(0, 9, "x"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := tt.first.Combine(tt.next); ok != tt.ok {
				t.Errorf("Combine ok = %v, want %v", ok, tt.ok)
			}
		})
	}
}

// The combined record must reproduce the effect of applying both in
// sequence, and its inverse must restore the original state.
func TestCharSpliceCombineEquivalence(t *testing.T) {
	cases := []struct {
		name  string
		orig  string
		first CharSplice
		next  CharSplice
	}{
		{"two inserts", "hello", InsertText(0, 2, "abc"), InsertText(0, 5, "def")},
		{"insert then delete inside", "hello", InsertText(0, 2, "abcdef"), DeleteText(0, 4, "cd")},
		{"replace then overhanging delete", "hello world", ReplaceText(0, 0, "hello", "goodbye"), DeleteText(0, 5, "ye wor")},
		{"typing run", "x", InsertText(0, 1, "a"), InsertText(0, 2, "b")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sequential := linebuf.New(tc.orig)
			if err := tc.first.Apply(sequential); err != nil {
				t.Fatal(err)
			}
			if err := tc.next.Apply(sequential); err != nil {
				t.Fatal(err)
			}

			combined, ok := tc.first.Combine(tc.next)
			if !ok {
				t.Fatal("records did not combine")
			}
			merged := linebuf.New(tc.orig)
			if err := combined.Apply(merged); err != nil {
				t.Fatal(err)
			}
			if !merged.Equal(sequential) {
				t.Errorf("combined result %q, sequential %q", merged.Line(0), sequential.Line(0))
			}

			if err := combined.Inverse().Apply(merged); err != nil {
				t.Fatal(err)
			}
			if merged.Line(0) != tc.orig {
				t.Errorf("inverse of combined gave %q, want %q", merged.Line(0), tc.orig)
			}
		})
	}
}

func TestLineSpliceApply(t *testing.T) {
	tests := []struct {
		name string
		rec  LineSplice
		in   []string
		want string
	}{
		{"insert at start", InsertLines(0, "x"), []string{"a", "b"}, "x,a,b"},
		{"insert in middle", InsertLines(1, "x", "y"), []string{"a", "b"}, "a,x,y,b"},
		{"append", InsertLines(2, "x"), []string{"a", "b"}, "a,b,x"},
		{"delete", DeleteLines(1, "b"), []string{"a", "b", "c"}, "a,c"},
		{"replace", ReplaceLines(0, []string{"a", "b"}, []string{"z"}), []string{"a", "b", "c"}, "z,c"},
		{"into empty buffer", InsertLines(0, "init"), nil, "init"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := linebuf.New(tt.in...)
			if err := tt.rec.Apply(buf); err != nil {
				t.Fatalf("Apply: %v", err)
			}
			if got := strings.Join(buf.Lines(), ","); got != tt.want {
				t.Errorf("buffer = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLineSpliceApplyBounds(t *testing.T) {
	buf := linebuf.New("a", "b")
	if err := InsertLines(5, "x").Apply(buf); !errors.Is(err, ErrLineRange) {
		t.Errorf("error = %v, want ErrLineRange", err)
	}
	if err := DeleteLines(1, "b", "c").Apply(buf); !errors.Is(err, ErrLineRange) {
		t.Errorf("error = %v, want ErrLineRange", err)
	}
	if buf.Len() != 2 {
		t.Error("failed apply mutated the buffer")
	}
}

func TestLineSpliceInverse(t *testing.T) {
	buf := linebuf.New("a", "b", "c")
	rec := ReplaceLines(1, []string{"b"}, []string{"x", "y"})

	if err := rec.Apply(buf); err != nil {
		t.Fatal(err)
	}
	if err := rec.Inverse().Apply(buf); err != nil {
		t.Fatal(err)
	}
	if got := strings.Join(buf.Lines(), ","); got != "a,b,c" {
		t.Errorf("inverse did not restore: %q", got)
	}
}

func TestCheckpointIsNoop(t *testing.T) {
	buf := linebuf.New("a")
	cp := Checkpoint{}
	if err := cp.Apply(buf); err != nil {
		t.Fatal(err)
	}
	if buf.Line(0) != "a" {
		t.Error("checkpoint mutated buffer")
	}
	if inv := cp.Inverse(); inv != Record(cp) {
		t.Error("checkpoint inverse should be itself")
	}
	if !cp.Usage().Empty() {
		t.Error("checkpoint usage should be empty")
	}
}

func TestRecordUsage(t *testing.T) {
	if got := InsertText(4, 0, "x").Usage().String(); got != "4" {
		t.Errorf("CharSplice usage = %q, want %q", got, "4")
	}
	if got := InsertLines(2, "a", "b", "c").Usage().String(); got != "2-4" {
		t.Errorf("LineSplice usage = %q, want %q", got, "2-4")
	}
	if got := DeleteLines(5, "x", "y").Usage().String(); got != "5-6" {
		t.Errorf("delete usage = %q, want %q", got, "5-6")
	}
}
