// linekit-repl is an interactive driver for a line buffer and its
// edit log. Type 'help' for the command list.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"golang.org/x/text/unicode/norm"

	"github.com/dshills/linekit/address"
	"github.com/dshills/linekit/editlog"
	"github.com/dshills/linekit/internal/config"
	"github.com/dshills/linekit/internal/logging"
	"github.com/dshills/linekit/internal/script"
	"github.com/dshills/linekit/interval"
	"github.com/dshills/linekit/internal/session"
	"github.com/dshills/linekit/linebuf"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	color.NoColor = !cfg.REPL.Color

	logger := logging.New(logging.Config{Level: logging.ParseLevel(cfg.LogLevel)})

	repl := &REPL{
		buf:    linebuf.New(),
		log:    editlog.New(),
		reader: bufio.NewReader(os.Stdin),
		prompt: cfg.REPL.Prompt,
		logger: logger.WithComponent("repl"),
	}
	repl.host = script.NewHost(repl.buf, repl.log)
	defer repl.host.Close()

	if path := flag.Arg(0); path != "" {
		if err := repl.loadFile(path); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
	}

	fmt.Println("linekit REPL - type 'help' for commands, 'quit' to exit")
	for {
		fmt.Print(repl.prompt)
		input, err := repl.reader.ReadString('\n')
		if err != nil {
			fmt.Println()
			return 0
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		if !repl.handleCommand(input) {
			return 0
		}
	}
}

// REPL holds the state of the interactive session.
type REPL struct {
	buf    *linebuf.Buffer
	log    *editlog.Log
	host   *script.Host
	reader *bufio.Reader
	prompt string
	logger *logging.Logger

	mark    editlog.Mark
	hasMark bool
}

var (
	errColor  = color.New(color.FgRed)
	infoColor = color.New(color.FgCyan)
	lineColor = color.New(color.FgGreen)
)

func (r *REPL) handleCommand(input string) bool {
	parts := strings.Fields(input)
	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "help":
		r.printHelp()
	case "quit", "exit":
		return false
	case "show":
		r.cmdShow()
	case "insert":
		r.cmdInsert(args)
	case "delete":
		r.cmdDelete(args)
	case "replace":
		r.cmdReplace(args)
	case "lines":
		r.cmdLines(args)
	case "dellines":
		r.cmdDelLines(args)
	case "undo":
		r.cmdUndo(args)
	case "redo":
		r.cmdRedo(args)
	case "commit":
		infoColor.Printf("committed %d record(s)\n", r.log.Commit())
	case "checkpoint":
		r.log.Checkpoint()
		infoColor.Println("checkpoint")
	case "collapse":
		before := r.log.Count()
		r.log.Collapse()
		infoColor.Printf("collapsed %d record(s)\n", before-r.log.Count())
	case "truncate":
		r.cmdTruncate(args)
	case "snapshot":
		r.mark = r.log.Snapshot()
		r.hasMark = true
		infoColor.Println("snapshot taken")
	case "since":
		r.cmdSince()
	case "save":
		r.cmdSave(args)
	case "set":
		r.cmdSet(args)
	case "area":
		r.cmdArea(args)
	case "status":
		r.cmdStatus()
	case "lua":
		r.cmdLua(input)
	case "export":
		r.cmdExport(args)
	case "import":
		r.cmdImport(args)
	default:
		errColor.Printf("unknown command %q; try 'help'\n", cmd)
	}
	return true
}

// write records rec against the buffer, printing any bounds error.
func (r *REPL) write(rec editlog.Record) bool {
	if err := rec.Apply(r.buf); err != nil {
		errColor.Printf("%v\n", err)
		return false
	}
	r.log.Write(rec)
	return true
}

// showCaret prints the affected line with a caret under the column.
func (r *REPL) showCaret(line, col int) {
	text := r.buf.Line(line)
	if col > len(text) {
		col = len(text)
	}
	lineColor.Printf("%4d  %s\n", line, text)
	fmt.Printf("      %s^\n", strings.Repeat(" ", runewidth.StringWidth(text[:col])))
}

func (r *REPL) cmdShow() {
	if r.buf.Len() == 0 {
		infoColor.Println("(empty buffer)")
		return
	}
	for i, line := range r.buf.Lines() {
		lineColor.Printf("%4d  %s\n", i, line)
	}
}

func (r *REPL) cmdInsert(args []string) {
	line, col, rest, ok := parsePos(args)
	if !ok {
		errColor.Println("usage: insert <line> <col> <text>")
		return
	}
	if r.write(editlog.InsertText(line, col, norm.NFC.String(rest))) {
		r.showCaret(line, col)
	}
}

func (r *REPL) cmdDelete(args []string) {
	line, col, rest, ok := parsePos(args)
	if !ok {
		errColor.Println("usage: delete <line> <col> <text>")
		return
	}
	if r.write(editlog.DeleteText(line, col, rest)) {
		r.showCaret(line, col)
	}
}

func (r *REPL) cmdReplace(args []string) {
	if len(args) < 4 {
		errColor.Println("usage: replace <line> <col> <old> <new>")
		return
	}
	line, err1 := strconv.Atoi(args[0])
	col, err2 := strconv.Atoi(args[1])
	if err1 != nil || err2 != nil {
		errColor.Println("usage: replace <line> <col> <old> <new>")
		return
	}
	if r.write(editlog.ReplaceText(line, col, args[2], norm.NFC.String(args[3]))) {
		r.showCaret(line, col)
	}
}

func (r *REPL) cmdLines(args []string) {
	if len(args) < 2 {
		errColor.Println("usage: lines <at> <text>")
		return
	}
	at, err := strconv.Atoi(args[0])
	if err != nil {
		errColor.Println("usage: lines <at> <text>")
		return
	}
	r.write(editlog.InsertLines(at, norm.NFC.String(strings.Join(args[1:], " "))))
}

func (r *REPL) cmdDelLines(args []string) {
	if len(args) != 2 {
		errColor.Println("usage: dellines <at> <n>")
		return
	}
	at, err1 := strconv.Atoi(args[0])
	n, err2 := strconv.Atoi(args[1])
	if err1 != nil || err2 != nil || n <= 0 {
		errColor.Println("usage: dellines <at> <n>")
		return
	}
	if at < 0 || at+n > r.buf.Len() {
		errColor.Printf("lines %d..%d out of range\n", at, at+n-1)
		return
	}
	deleted := make([]string, 0, n)
	for i := at; i < at+n; i++ {
		deleted = append(deleted, r.buf.Line(i))
	}
	r.write(editlog.DeleteLines(at, deleted...))
}

func (r *REPL) cmdUndo(args []string) {
	recs := r.log.Undo(parseCount(args))
	for _, rec := range recs {
		if err := rec.Apply(r.buf); err != nil {
			errColor.Printf("undo: %v\n", err)
			return
		}
	}
	infoColor.Printf("undid %d record(s)\n", len(recs))
}

func (r *REPL) cmdRedo(args []string) {
	recs := r.log.Redo(parseCount(args))
	for _, rec := range recs {
		if err := rec.Apply(r.buf); err != nil {
			errColor.Printf("redo: %v\n", err)
			return
		}
	}
	infoColor.Printf("redid %d record(s)\n", len(recs))
}

func (r *REPL) cmdTruncate(args []string) {
	if len(args) != 1 {
		errColor.Println("usage: truncate <n>  (0 drops all, -n keeps newest n)")
		return
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		errColor.Println("usage: truncate <n>")
		return
	}
	infoColor.Printf("dropped %d record(s)\n", r.log.Truncate(n))
}

func (r *REPL) cmdSince() {
	if !r.hasMark {
		errColor.Println("no snapshot; run 'snapshot' first")
		return
	}
	recs := r.log.Since(r.mark)
	if len(recs) == 0 {
		infoColor.Println("no records since snapshot")
		return
	}
	for _, rec := range recs {
		fmt.Printf("  %v\n", rec)
	}
}

func (r *REPL) cmdSave(args []string) {
	if len(args) != 1 {
		errColor.Println("usage: save <path>")
		return
	}
	if err := os.WriteFile(args[0], []byte(r.buf.String()), 0o644); err != nil {
		errColor.Printf("save: %v\n", err)
		return
	}
	infoColor.Printf("wrote %d line(s) to %s\n", r.buf.Len(), args[0])
}

// cmdSet evaluates range-set algebra. Multi-span sets are written
// with commas, e.g. "set union 1-5,9 4-7".
func (r *REPL) cmdSet(args []string) {
	usage := func() { errColor.Println("usage: set union|intersect|diff <a> <b> | set contains <a> <x>") }
	if len(args) != 3 {
		usage()
		return
	}
	a, err := interval.ParseSet(strings.ReplaceAll(args[1], ",", " "))
	if err != nil {
		errColor.Printf("%v\n", err)
		return
	}
	switch args[0] {
	case "union", "intersect", "diff":
		b, err := interval.ParseSet(strings.ReplaceAll(args[2], ",", " "))
		if err != nil {
			errColor.Printf("%v\n", err)
			return
		}
		var out *interval.Set
		switch args[0] {
		case "union":
			out = a.Union(b)
		case "intersect":
			out = a.Intersect(b)
		default:
			out = a.Difference(b)
		}
		fmt.Printf("  %s  (%d member(s))\n", out, out.Count())
	case "contains":
		x, err := strconv.ParseInt(args[2], 10, 64)
		if err != nil {
			usage()
			return
		}
		fmt.Printf("  %v\n", a.Contains(x))
	default:
		usage()
	}
}

// cmdArea parses and manipulates buffer areas (1-based addresses).
func (r *REPL) cmdArea(args []string) {
	usage := func() { errColor.Println("usage: area parse <a> | area merge <a> <b> | area select <a>") }
	if len(args) < 2 {
		usage()
		return
	}
	a, err := address.ParseArea(args[1])
	if err != nil {
		errColor.Printf("%v\n", err)
		return
	}
	switch args[0] {
	case "parse":
		first, last := a.Lines()
		fmt.Printf("  %s  (lines %d-%d)\n", a, first, last)
	case "merge":
		if len(args) != 3 {
			usage()
			return
		}
		b, err := address.ParseArea(args[2])
		if err != nil {
			errColor.Printf("%v\n", err)
			return
		}
		if merged, ok := a.Merge(b); ok {
			fmt.Printf("  %s\n", merged)
		} else {
			infoColor.Println("not contiguous")
		}
	case "select":
		prefix, suffix, selected := a.Select(r.buf.Lines())
		fmt.Printf("  prefix:   %q\n", prefix)
		for _, line := range selected {
			lineColor.Printf("  selected: %q\n", line)
		}
		fmt.Printf("  suffix:   %q\n", suffix)
	default:
		usage()
	}
}

func (r *REPL) cmdStatus() {
	infoColor.Printf("lines: %d  committed: %d  pending: %d  redo: %d\n",
		r.buf.Len(), r.log.Committed(), r.log.Pending(), r.log.RedoCount())
}

func (r *REPL) cmdLua(input string) {
	src := strings.TrimSpace(strings.TrimPrefix(input, "lua"))
	if src == "" {
		errColor.Println("usage: lua <code>")
		return
	}
	if err := r.host.Do(src); err != nil {
		errColor.Printf("%v\n", err)
	}
}

func (r *REPL) cmdExport(args []string) {
	if len(args) != 1 {
		errColor.Println("usage: export <path.json|path.bin>")
		return
	}
	tr := session.FromLog(r.log)
	tr.Digest = session.Digest(r.buf.String())
	var (
		data []byte
		err  error
	)
	if filepath.Ext(args[0]) == ".json" {
		data, err = tr.EncodeJSON()
	} else {
		data, err = tr.EncodeBinary()
	}
	if err == nil {
		err = os.WriteFile(args[0], data, 0o644)
	}
	if err != nil {
		errColor.Printf("export: %v\n", err)
		return
	}
	infoColor.Printf("exported %d record(s) as %s\n", len(tr.Records), tr.ID)
}

func (r *REPL) cmdImport(args []string) {
	if len(args) != 1 {
		errColor.Println("usage: import <path>")
		return
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		errColor.Printf("import: %v\n", err)
		return
	}
	var tr *session.Transcript
	if filepath.Ext(args[0]) == ".json" {
		tr, err = session.DecodeJSON(data)
	} else {
		tr, err = session.DecodeBinary(data)
	}
	if err != nil {
		errColor.Printf("import: %v\n", err)
		return
	}
	for _, rec := range tr.Records {
		if err := rec.Apply(r.buf); err != nil {
			errColor.Printf("import: replay: %v\n", err)
			return
		}
		r.log.Write(rec)
	}
	r.log.Commit()
	infoColor.Printf("imported %d record(s) from %s\n", len(tr.Records), tr.ID)
}

func (r *REPL) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	rec := editlog.InsertLines(0, linebuf.FromString(string(data)).Lines()...)
	if err := rec.Apply(r.buf); err != nil {
		return err
	}
	r.log.Write(rec)
	r.log.Commit()
	r.logger.Info("loaded %d lines from %s", r.buf.Len(), path)
	return nil
}

func (r *REPL) printHelp() {
	fmt.Println(`Commands:
  show                          print the buffer
  insert <line> <col> <text>    insert text within a line
  delete <line> <col> <text>    delete text within a line
  replace <line> <col> <o> <n>  replace text within a line
  lines <at> <text>             insert a line
  dellines <at> <n>             delete n lines
  undo [n] / redo [n]           move through history
  commit / checkpoint           freeze pending records / group boundary
  collapse                      merge adjacent compatible records
  truncate <n>                  drop committed history
  snapshot / since              mark history / records since the mark
  set <op> <a> <b>              range-set algebra (union/intersect/diff/contains)
  area <op> <a> [b]             area algebra (parse/merge/select)
  save <path>                   write the buffer to a file
  status                        buffer and log counters
  lua <code>                    run a Lua snippet against the buffer
  export <path> / import <path> transcript I/O (.json or binary)
  quit`)
}

// parsePos parses "<line> <col> <text...>" arguments.
func parsePos(args []string) (line, col int, rest string, ok bool) {
	if len(args) < 3 {
		return 0, 0, "", false
	}
	line, err1 := strconv.Atoi(args[0])
	col, err2 := strconv.Atoi(args[1])
	if err1 != nil || err2 != nil {
		return 0, 0, "", false
	}
	return line, col, strings.Join(args[2:], " "), true
}

// parseCount parses an optional count argument defaulting to 1.
func parseCount(args []string) int {
	if len(args) == 0 {
		return 1
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 {
		return 1
	}
	return n
}
