// Package watch mirrors an on-disk file into a line buffer by
// translating file writes into grouped edit records. Each burst of
// changes becomes one checkpointed unit in the log, so external edits
// undo atomically.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/errgroup"

	"github.com/dshills/linekit/editlog"
	"github.com/dshills/linekit/internal/logging"
	"github.com/dshills/linekit/linebuf"
)

// Watcher follows one file and feeds its changes into a log.
type Watcher struct {
	path     string
	debounce time.Duration
	buf      *linebuf.Buffer
	log      *editlog.Log
	logger   *logging.Logger

	// OnSync, when set, is called after each burst of changes is
	// recorded, with the number of records written.
	OnSync func(n int)
}

// New creates a watcher that records changes to path into log,
// keeping buf in step with the file contents.
func New(path string, debounce time.Duration, buf *linebuf.Buffer, log *editlog.Log, logger *logging.Logger) *Watcher {
	if logger == nil {
		logger = logging.Null
	}
	return &Watcher{
		path:     path,
		debounce: debounce,
		buf:      buf,
		log:      log,
		logger:   logger.WithComponent("watch"),
	}
}

// Run watches until ctx is canceled. The parent directory is watched
// rather than the file itself so editors that replace-on-save keep
// being followed.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fsw.Close()

	abs, err := filepath.Abs(w.path)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", w.path, err)
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(abs), err)
	}

	changed := make(chan struct{}, 1)
	g, ctx := errgroup.WithContext(ctx)

	// Event pump: collapse raw notifications for our file into a
	// single signal.
	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case ev, ok := <-fsw.Events:
				if !ok {
					return nil
				}
				if filepath.Clean(ev.Name) != abs {
					continue
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				w.logger.Debug("fs event: %s", ev)
				select {
				case changed <- struct{}{}:
				default:
				}
			case werr, ok := <-fsw.Errors:
				if !ok {
					return nil
				}
				return fmt.Errorf("watch error: %w", werr)
			}
		}
	})

	// Debouncer: wait for the file to stay quiet, then diff.
	g.Go(func() error {
		timer := time.NewTimer(w.debounce)
		if !timer.Stop() {
			<-timer.C
		}
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-changed:
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			case <-timer.C:
				if err := w.sync(); err != nil {
					w.logger.Warn("sync failed: %v", err)
				}
			}
		}
	})

	return g.Wait()
}

// Sync diffs the file against the buffer immediately, outside the
// debounce cycle. Useful for an initial load.
func (w *Watcher) Sync() error {
	return w.sync()
}

// sync reads the file, diffs it against the buffer, and records the
// changes as one checkpointed unit.
func (w *Watcher) sync() error {
	data, err := os.ReadFile(w.path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", w.path, err)
	}

	newLines := linebuf.FromString(string(data)).Lines()
	splices := DiffLines(w.buf.Lines(), newLines)
	if len(splices) == 0 {
		return nil
	}

	// The checkpoint precedes the burst so an undo consumes the whole
	// group.
	w.log.Checkpoint()
	for _, sp := range splices {
		if err := sp.Apply(w.buf); err != nil {
			return fmt.Errorf("applying diff: %w", err)
		}
		w.log.Write(sp)
	}
	w.log.Commit()

	w.logger.Info("recorded %d change(s) from %s", len(splices), w.path)
	if w.OnSync != nil {
		w.OnSync(len(splices))
	}
	return nil
}
