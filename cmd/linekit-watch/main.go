// linekit-watch follows a file on disk and records its changes as
// checkpointed units in an edit log. On shutdown it can export the
// accumulated history as a transcript.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/dshills/linekit/editlog"
	"github.com/dshills/linekit/internal/config"
	"github.com/dshills/linekit/internal/logging"
	"github.com/dshills/linekit/internal/session"
	"github.com/dshills/linekit/internal/watch"
	"github.com/dshills/linekit/linebuf"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "path to configuration file")
	out := flag.String("out", "", "transcript written on exit (.json or binary)")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: linekit-watch [flags] <file>")
		return 2
	}
	path := flag.Arg(0)

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	logger := logging.New(logging.Config{Level: logging.ParseLevel(cfg.LogLevel)})

	buf := linebuf.New()
	log := editlog.New()
	w := watch.New(path, cfg.Watch.Debounce, buf, log, logger)
	w.OnSync = func(n int) {
		if cfg.History.MaxRecords > 0 && log.Committed() > cfg.History.MaxRecords {
			dropped := log.Truncate(-cfg.History.MaxRecords)
			logger.Debug("truncated %d old record(s)", dropped)
		}
	}

	// Initial load so the first burst diffs against real content.
	if err := w.Sync(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	logger.Info("watching %s (%d lines)", path, buf.Len())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	logger.Info("stopped; %d record(s) collected", log.Count())
	if *out != "" {
		if err := exportTranscript(log, buf, *out); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		logger.Info("transcript written to %s", *out)
	}
	return 0
}

func exportTranscript(log *editlog.Log, buf *linebuf.Buffer, path string) error {
	tr := session.FromLog(log)
	tr.Digest = session.Digest(buf.String())
	var (
		data []byte
		err  error
	)
	if filepath.Ext(path) == ".json" {
		data, err = tr.EncodeJSON()
	} else {
		data, err = tr.EncodeBinary()
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
