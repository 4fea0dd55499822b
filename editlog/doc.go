// Package editlog provides reversible edit records for line-oriented
// text and an append-only, undo/redo-capable history of them.
//
// A Record describes one mutation of an externally owned line buffer:
// a character splice inside a line (CharSplice), a line-granularity
// splice (LineSplice), or a zero-effect boundary marker (Checkpoint).
// Every record knows its inverse, so any applied history can be walked
// backward exactly.
//
// A Log holds records in three ordered sequences: a committed prefix,
// a pending suffix, and a future (redo) stack. Records move pending ->
// committed on Commit, committed -> future on Undo, and back on Redo.
// Truncation drops only committed records; pending records are never
// discarded. Checkpoints group the records above them into a single
// undo unit.
//
// The log never owns or synchronizes with the buffer it describes;
// Apply mutates the caller's buffer in place and callers serialize all
// access themselves.
package editlog
