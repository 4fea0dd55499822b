package editlog

import "time"

// entry wraps a record with the range of write-sequence numbers it
// covers. Collapsed records span the ranges of both originals, which
// is what lets Since report net change across a collapse.
type entry struct {
	rec Record
	lo  uint64
	hi  uint64
}

// undone pairs a consumed entry with its computed inverse on the
// future stack.
type undone struct {
	entry
	inverse Record
}

// Mark is an opaque position in a log's history, captured by Snapshot
// and consumed by Since.
type Mark struct {
	seq uint64
}

// Log is an append-only history of edit records with commit
// boundaries, checkpoint grouping, truncation, collapsing, and
// snapshot-based incremental diffing.
//
// Records live in three ordered sequences: the committed prefix, the
// pending (uncommitted) suffix, and the future stack holding undone
// records for redo. A Log is exclusively owned by one caller at a
// time; it provides no internal locking.
type Log struct {
	committed []entry
	pending   []entry
	future    []undone
	seq       uint64
}

// New creates an empty log.
func New() *Log {
	return &Log{}
}

// Write appends a record to the pending suffix. Writing new history
// invalidates the future stack, as in any editor redo model.
func (l *Log) Write(r Record) {
	l.seq++
	l.pending = append(l.pending, entry{rec: r, lo: l.seq, hi: l.seq})
	l.future = nil
}

// Apply invokes every pending record against buf in order. Commit
// state is unchanged; the first record error stops application.
func (l *Log) Apply(buf Buffer) error {
	for _, e := range l.pending {
		if err := e.rec.Apply(buf); err != nil {
			return err
		}
	}
	return nil
}

// Commit freezes all pending records into the committed prefix and
// returns how many were committed.
func (l *Log) Commit() int {
	n := len(l.pending)
	l.committed = append(l.committed, l.pending...)
	l.pending = l.pending[:0]
	return n
}

// Checkpoint writes a Checkpoint record and commits immediately;
// checkpoints are never left pending.
func (l *Log) Checkpoint() {
	l.Write(Checkpoint{When: time.Now()})
	l.Commit()
}

// Undo walks backward from the tail of the committed prefix, consuming
// up to n units onto the future stack, and returns the inverse records
// in the order the caller should apply them.
//
// A unit is the span of records above (and including) the nearest
// Checkpoint below the tail; with no checkpoint below, a unit is a
// single record. Undoing past available history simply yields fewer
// units.
func (l *Log) Undo(n int) []Record {
	var out []Record
	for ; n > 0 && len(l.committed) > 0; n-- {
		top := len(l.committed)
		lo := top - 1
		for i := top - 1; i >= 0; i-- {
			if _, ok := l.committed[i].rec.(Checkpoint); ok {
				lo = i
				break
			}
		}
		// Reverse order: the tail's inverse applies first, and the
		// crossed checkpoint ends up on top of the future stack.
		for i := top - 1; i >= lo; i-- {
			e := l.committed[i]
			inv := e.rec.Inverse()
			l.future = append(l.future, undone{entry: e, inverse: inv})
			out = append(out, inv)
		}
		l.committed = l.committed[:lo]
	}
	return out
}

// Redo pops up to n units off the future stack, re-appends them to the
// committed prefix in their original order, and returns the forward
// records in the order the caller should apply them. A Checkpoint on
// top of the stack opens a group that closes at the next checkpoint
// below; bare records are single units.
func (l *Log) Redo(n int) []Record {
	var out []Record
	for ; n > 0 && len(l.future) > 0; n-- {
		_, group := l.future[len(l.future)-1].rec.(Checkpoint)
		for {
			u := l.future[len(l.future)-1]
			l.future = l.future[:len(l.future)-1]
			l.committed = append(l.committed, u.entry)
			out = append(out, u.rec)
			if !group || len(l.future) == 0 {
				break
			}
			if _, ok := l.future[len(l.future)-1].rec.(Checkpoint); ok {
				break
			}
		}
	}
	return out
}

// Truncate drops records from the committed prefix and returns how
// many were dropped. n == 0 drops the entire prefix; n > 0 drops the
// oldest min(n, committed) records; n < 0 retains only the newest
// min(-n, committed) records. Pending records are never touched.
func (l *Log) Truncate(n int) int {
	c := len(l.committed)
	var drop int
	switch {
	case n == 0:
		drop = c
	case n > 0:
		drop = n
		if drop > c {
			drop = c
		}
	default:
		keep := -n
		if keep > c {
			keep = c
		}
		drop = c - keep
	}
	l.committed = l.committed[drop:]
	return drop
}

// Collapse merges the most recent committed record and the oldest
// pending record into one equivalent record when both are CharSplices
// on the same line and combine-eligible, shrinking the stored history
// by one. Otherwise it is a declared no-op. Collapse returns the log
// for chaining.
func (l *Log) Collapse() *Log {
	if len(l.committed) == 0 || len(l.pending) == 0 {
		return l
	}
	prev, ok := l.committed[len(l.committed)-1].rec.(CharSplice)
	if !ok {
		return l
	}
	next, ok := l.pending[0].rec.(CharSplice)
	if !ok {
		return l
	}
	combined, ok := prev.Combine(next)
	if !ok {
		return l
	}
	tail := &l.committed[len(l.committed)-1]
	tail.rec = combined
	tail.hi = l.pending[0].hi
	l.pending = l.pending[1:]
	return l
}

// Snapshot returns an opaque marker for the current position in
// history.
func (l *Log) Snapshot() Mark {
	return Mark{seq: l.seq}
}

// Since returns the records appended after the mark, committed then
// pending, in order. A record produced by a collapse that merged a
// pre-mark record is included: the result reports net content change
// since the mark, not raw record identity.
func (l *Log) Since(m Mark) []Record {
	var out []Record
	for _, e := range l.committed {
		if e.hi > m.seq {
			out = append(out, e.rec)
		}
	}
	for _, e := range l.pending {
		if e.hi > m.seq {
			out = append(out, e.rec)
		}
	}
	return out
}

// Count returns the total number of stored records.
func (l *Log) Count() int {
	return len(l.committed) + len(l.pending)
}

// Committed returns the number of committed records.
func (l *Log) Committed() int {
	return len(l.committed)
}

// Pending returns the number of uncommitted records.
func (l *Log) Pending() int {
	return len(l.pending)
}

// CanUndo returns true if committed history is available.
func (l *Log) CanUndo() bool {
	return len(l.committed) > 0
}

// CanRedo returns true if undone history is available.
func (l *Log) CanRedo() bool {
	return len(l.future) > 0
}

// RedoCount returns the number of records on the future stack.
func (l *Log) RedoCount() int {
	return len(l.future)
}

// Records returns the stored records, committed then pending, in
// order.
func (l *Log) Records() []Record {
	out := make([]Record, 0, l.Count())
	for _, e := range l.committed {
		out = append(out, e.rec)
	}
	for _, e := range l.pending {
		out = append(out, e.rec)
	}
	return out
}
