// Package script embeds a sandboxed Lua runtime that drives a line
// buffer through its edit log. Scripts see a global `linekit` table
// whose functions write records, move through history, and read the
// buffer.
package script

import (
	"errors"
	"fmt"
	"sync"

	"fortio.org/safecast"
	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/linekit/editlog"
	"github.com/dshills/linekit/interval"
	"github.com/dshills/linekit/linebuf"
)

// ErrHostClosed is returned when a script runs against a closed host.
var ErrHostClosed = errors.New("script host is closed")

// Host binds a Lua state to a buffer and its edit log.
//
// gopher-lua's LState is not goroutine-safe; the mutex serializes
// access from Go, but each script still runs single-threaded.
type Host struct {
	L   *lua.LState
	buf *linebuf.Buffer
	log *editlog.Log

	mu     sync.Mutex
	closed bool
}

// NewHost creates a sandboxed host operating on buf and log.
func NewHost(buf *linebuf.Buffer, log *editlog.Log) *Host {
	L := lua.NewState(lua.Options{
		SkipOpenLibs: true,
	})
	openSafeLibraries(L)

	h := &Host{L: L, buf: buf, log: log}
	h.register()
	return h
}

// openSafeLibraries opens only the side-effect-free standard
// libraries. io, os, debug, and package stay closed.
func openSafeLibraries(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
}

// register installs the global linekit table.
func (h *Host) register() {
	mod := h.L.NewTable()
	funcs := map[string]lua.LGFunction{
		"insert":        h.luaInsert,
		"delete":        h.luaDelete,
		"replace":       h.luaReplace,
		"insert_lines":  h.luaInsertLines,
		"delete_lines":  h.luaDeleteLines,
		"undo":          h.luaUndo,
		"redo":          h.luaRedo,
		"commit":        h.luaCommit,
		"checkpoint":    h.luaCheckpoint,
		"collapse":      h.luaCollapse,
		"truncate":      h.luaTruncate,
		"line":          h.luaLine,
		"lines":         h.luaLines,
		"text":          h.luaText,
		"count":         h.luaCount,
		"usage":         h.luaUsage,
		"set_union":     luaSetBinary((*interval.Set).Union),
		"set_intersect": luaSetBinary((*interval.Set).Intersect),
		"set_diff":      luaSetBinary((*interval.Set).Difference),
		"set_contains":  luaSetContains,
	}
	h.L.SetFuncs(mod, funcs)
	h.L.SetGlobal("linekit", mod)
}

// Do executes a chunk of Lua source. A Lua runtime panic is recovered
// and reported as an error.
func (h *Host) Do(src string) (err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrHostClosed
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()

	if err := h.L.DoString(src); err != nil {
		return fmt.Errorf("lua: %w", err)
	}
	return nil
}

// DoFile executes a Lua source file.
func (h *Host) DoFile(path string) (err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrHostClosed
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()

	if err := h.L.DoFile(path); err != nil {
		return fmt.Errorf("lua: %w", err)
	}
	return nil
}

// Close releases the Lua state. Further script calls fail with
// ErrHostClosed.
func (h *Host) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	h.L.Close()
}

// checkInt converts a Lua number argument to int, raising an argument
// error on fractional values or overflow.
func (h *Host) checkInt(L *lua.LState, pos int) int {
	n, err := safecast.Convert[int](float64(L.CheckNumber(pos)))
	if err != nil {
		L.ArgError(pos, err.Error())
	}
	return n
}

// write appends rec to the log and applies it to the buffer, raising
// a Lua error on bounds violations.
func (h *Host) write(L *lua.LState, rec editlog.Record) {
	if err := rec.Apply(h.buf); err != nil {
		L.RaiseError("%v", err)
		return
	}
	h.log.Write(rec)
}

// linekit.insert(line, col, text)
func (h *Host) luaInsert(L *lua.LState) int {
	line := h.checkInt(L, 1)
	col := h.checkInt(L, 2)
	text := L.CheckString(3)
	h.write(L, editlog.InsertText(line, col, text))
	return 0
}

// linekit.delete(line, col, text)
func (h *Host) luaDelete(L *lua.LState) int {
	line := h.checkInt(L, 1)
	col := h.checkInt(L, 2)
	text := L.CheckString(3)
	h.write(L, editlog.DeleteText(line, col, text))
	return 0
}

// linekit.replace(line, col, old, new)
func (h *Host) luaReplace(L *lua.LState) int {
	line := h.checkInt(L, 1)
	col := h.checkInt(L, 2)
	old := L.CheckString(3)
	text := L.CheckString(4)
	h.write(L, editlog.ReplaceText(line, col, old, text))
	return 0
}

// linekit.insert_lines(line, ...)
func (h *Host) luaInsertLines(L *lua.LState) int {
	line := h.checkInt(L, 1)
	var lines []string
	for i := 2; i <= L.GetTop(); i++ {
		lines = append(lines, L.CheckString(i))
	}
	h.write(L, editlog.InsertLines(line, lines...))
	return 0
}

// linekit.delete_lines(line, n) removes n lines starting at line.
func (h *Host) luaDeleteLines(L *lua.LState) int {
	line := h.checkInt(L, 1)
	n := h.checkInt(L, 2)
	if line < 0 || n <= 0 || line+n > h.buf.Len() {
		L.RaiseError("delete_lines %d..%d out of range (buffer has %d lines)", line, line+n-1, h.buf.Len())
		return 0
	}
	deleted := make([]string, 0, n)
	for i := line; i < line+n; i++ {
		deleted = append(deleted, h.buf.Line(i))
	}
	h.write(L, editlog.DeleteLines(line, deleted...))
	return 0
}

// linekit.undo(n) returns how many records were reversed.
func (h *Host) luaUndo(L *lua.LState) int {
	n := h.checkInt(L, 1)
	recs := h.log.Undo(n)
	for _, r := range recs {
		if err := r.Apply(h.buf); err != nil {
			L.RaiseError("undo: %v", err)
			return 0
		}
	}
	L.Push(lua.LNumber(len(recs)))
	return 1
}

// linekit.redo(n) returns how many records were reapplied.
func (h *Host) luaRedo(L *lua.LState) int {
	n := h.checkInt(L, 1)
	recs := h.log.Redo(n)
	for _, r := range recs {
		if err := r.Apply(h.buf); err != nil {
			L.RaiseError("redo: %v", err)
			return 0
		}
	}
	L.Push(lua.LNumber(len(recs)))
	return 1
}

// linekit.commit() returns how many records were committed.
func (h *Host) luaCommit(L *lua.LState) int {
	L.Push(lua.LNumber(h.log.Commit()))
	return 1
}

// linekit.checkpoint()
func (h *Host) luaCheckpoint(L *lua.LState) int {
	h.log.Checkpoint()
	return 0
}

// linekit.collapse()
func (h *Host) luaCollapse(L *lua.LState) int {
	h.log.Collapse()
	return 0
}

// linekit.truncate(n) returns how many records were dropped.
func (h *Host) luaTruncate(L *lua.LState) int {
	n := h.checkInt(L, 1)
	L.Push(lua.LNumber(h.log.Truncate(n)))
	return 1
}

// linekit.line(i) returns the text of line i.
func (h *Host) luaLine(L *lua.LState) int {
	i := h.checkInt(L, 1)
	L.Push(lua.LString(h.buf.Line(i)))
	return 1
}

// linekit.lines() returns the buffer as a table of lines.
func (h *Host) luaLines(L *lua.LState) int {
	tbl := L.NewTable()
	for _, line := range h.buf.Lines() {
		tbl.Append(lua.LString(line))
	}
	L.Push(tbl)
	return 1
}

// linekit.text() returns the buffer joined into one string.
func (h *Host) luaText(L *lua.LState) int {
	L.Push(lua.LString(h.buf.String()))
	return 1
}

// linekit.count() returns the number of stored records.
func (h *Host) luaCount(L *lua.LState) int {
	L.Push(lua.LNumber(h.log.Count()))
	return 1
}

// linekit.usage() returns the set of buffer lines touched by the
// stored records, in range-set text form.
func (h *Host) luaUsage(L *lua.LState) int {
	set := interval.NewSet()
	for _, r := range h.log.Records() {
		set = set.Union(r.Usage())
	}
	L.Push(lua.LString(set.String()))
	return 1
}

// checkSet parses a range-set text argument like "1-5 9".
func checkSet(L *lua.LState, pos int) *interval.Set {
	set, err := interval.ParseSet(L.CheckString(pos))
	if err != nil {
		L.ArgError(pos, err.Error())
	}
	return set
}

// luaSetBinary adapts a binary set operation to a Lua function taking
// and returning the range-set text form.
func luaSetBinary(op func(*interval.Set, *interval.Set) *interval.Set) lua.LGFunction {
	return func(L *lua.LState) int {
		a := checkSet(L, 1)
		b := checkSet(L, 2)
		L.Push(lua.LString(op(a, b).String()))
		return 1
	}
}

// linekit.set_contains(set, x)
func luaSetContains(L *lua.LState) int {
	set := checkSet(L, 1)
	x := int64(L.CheckNumber(2))
	L.Push(lua.LBool(set.Contains(x)))
	return 1
}
