package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dshills/linekit/editlog"
	"github.com/dshills/linekit/linebuf"
)

func TestSyncRecordsFileChanges(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.txt")
	if err := os.WriteFile(path, []byte("one\ntwo\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	buf := linebuf.New()
	log := editlog.New()
	w := New(path, time.Millisecond, buf, log, nil)

	if err := w.Sync(); err != nil {
		t.Fatal(err)
	}
	if got := strings.Join(buf.Lines(), ","); got != "one,two" {
		t.Fatalf("buffer = %q", got)
	}
	if log.Pending() != 0 {
		t.Error("sync must commit its records")
	}

	// A second sync of an unchanged file records nothing.
	before := log.Count()
	if err := w.Sync(); err != nil {
		t.Fatal(err)
	}
	if log.Count() != before {
		t.Error("unchanged file produced records")
	}
}

func TestSyncBurstUndoesAtomically(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.txt")
	if err := os.WriteFile(path, []byte("a\nb\nc\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	buf := linebuf.New()
	log := editlog.New()
	w := New(path, time.Millisecond, buf, log, nil)
	if err := w.Sync(); err != nil {
		t.Fatal(err)
	}

	// Rewrite the file with several separated changes.
	if err := os.WriteFile(path, []byte("a\nB\nc\nd\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	var synced int
	w.OnSync = func(n int) { synced = n }
	if err := w.Sync(); err != nil {
		t.Fatal(err)
	}
	if synced == 0 {
		t.Fatal("OnSync not invoked")
	}
	if got := strings.Join(buf.Lines(), ","); got != "a,B,c,d" {
		t.Fatalf("buffer = %q", got)
	}

	// One undo reverses the entire second burst.
	for _, r := range log.Undo(1) {
		if err := r.Apply(buf); err != nil {
			t.Fatal(err)
		}
	}
	if got := strings.Join(buf.Lines(), ","); got != "a,b,c" {
		t.Errorf("after undo: %q", got)
	}
}

func TestSyncMissingFile(t *testing.T) {
	w := New(filepath.Join(t.TempDir(), "absent"), time.Millisecond, linebuf.New(), editlog.New(), nil)
	if err := w.Sync(); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.txt")
	if err := os.WriteFile(path, []byte("x\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	w := New(path, 10*time.Millisecond, linebuf.New(), editlog.New(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run returned %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}
