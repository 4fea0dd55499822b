package session

import (
	"errors"
	"testing"
	"time"

	"github.com/tidwall/gjson"

	"github.com/dshills/linekit/editlog"
	"github.com/dshills/linekit/linebuf"
)

func sampleRecords() []editlog.Record {
	return []editlog.Record{
		editlog.Checkpoint{When: time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)},
		editlog.InsertLines(0, "hello", "world"),
		editlog.ReplaceText(1, 0, "world", "there"),
		editlog.DeleteLines(0, "hello"),
	}
}

func recordsEqual(t *testing.T, got, want []editlog.Record) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("record count = %d, want %d", len(got), len(want))
	}
	// Compare by effect: replay both onto matching buffers.
	a, b := linebuf.New("seed"), linebuf.New("seed")
	for i := range want {
		errA := got[i].Apply(a)
		errB := want[i].Apply(b)
		if (errA == nil) != (errB == nil) {
			t.Fatalf("record %d: apply errors diverge: %v vs %v", i, errA, errB)
		}
	}
	if !a.Equal(b) {
		t.Errorf("replayed buffers diverge: %v vs %v", a.Lines(), b.Lines())
	}
}

func TestDigest(t *testing.T) {
	if Digest("a\n") == Digest("b\n") {
		t.Error("distinct content produced equal digests")
	}
	if len(Digest("")) != 64 {
		t.Errorf("digest length = %d, want 64 hex chars", len(Digest("")))
	}
}

func TestJSONRoundTrip(t *testing.T) {
	tr := New()
	tr.Digest = Digest("hello\n")
	tr.Append(sampleRecords()...)

	data, err := tr.EncodeJSON()
	if err != nil {
		t.Fatal(err)
	}

	got, err := DecodeJSON(data)
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != tr.ID {
		t.Errorf("ID = %v, want %v", got.ID, tr.ID)
	}
	if !got.CreatedAt.Equal(tr.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, tr.CreatedAt)
	}
	if got.Digest != tr.Digest {
		t.Errorf("Digest = %q, want %q", got.Digest, tr.Digest)
	}
	recordsEqual(t, got.Records, tr.Records)
}

func TestJSONShape(t *testing.T) {
	tr := New()
	tr.Append(editlog.InsertText(3, 1, "x"))

	data, err := tr.EncodeJSON()
	if err != nil {
		t.Fatal(err)
	}
	doc := gjson.ParseBytes(data)
	if kind := doc.Get("records.0.kind").String(); kind != "char" {
		t.Errorf("kind = %q, want char", kind)
	}
	if line := doc.Get("records.0.line").Int(); line != 3 {
		t.Errorf("line = %d, want 3", line)
	}
	if ins := doc.Get("records.0.insert").String(); ins != "x" {
		t.Errorf("insert = %q, want x", ins)
	}
}

func TestBinaryRoundTrip(t *testing.T) {
	tr := New()
	tr.Digest = Digest("hello\n")
	tr.Append(sampleRecords()...)

	data, err := tr.EncodeBinary()
	if err != nil {
		t.Fatal(err)
	}

	got, err := DecodeBinary(data)
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != tr.ID {
		t.Errorf("ID = %v, want %v", got.ID, tr.ID)
	}
	if got.Digest != tr.Digest {
		t.Errorf("Digest = %q, want %q", got.Digest, tr.Digest)
	}
	recordsEqual(t, got.Records, tr.Records)
}

func TestDecodeJSONErrors(t *testing.T) {
	if _, err := DecodeJSON([]byte("{not json")); !errors.Is(err, ErrBadPayload) {
		t.Errorf("invalid JSON error = %v, want ErrBadPayload", err)
	}

	bad := `{"id":"6ba7b810-9dad-11d1-80b4-00c04fd430c8","created_at":"2026-08-25T00:00:00Z","records":[{"kind":"bogus"}]}`
	if _, err := DecodeJSON([]byte(bad)); !errors.Is(err, ErrUnknownKind) {
		t.Errorf("unknown kind error = %v, want ErrUnknownKind", err)
	}

	noID := `{"id":"nope","created_at":"2026-08-25T00:00:00Z","records":[]}`
	if _, err := DecodeJSON([]byte(noID)); err == nil {
		t.Error("expected error for malformed id")
	}
}

func TestDecodeBinaryErrors(t *testing.T) {
	if _, err := DecodeBinary([]byte{0xc1, 0x00}); !errors.Is(err, ErrBadPayload) {
		t.Errorf("garbage payload error = %v, want ErrBadPayload", err)
	}
}

func TestFromLogReplay(t *testing.T) {
	src := editlog.New()
	src.Write(editlog.InsertLines(0, "a", "b"))
	src.Commit()
	src.Write(editlog.InsertText(1, 1, "!"))
	src.Commit()

	tr := FromLog(src)
	if len(tr.Records) != 2 {
		t.Fatalf("captured %d records, want 2", len(tr.Records))
	}

	dst := editlog.New()
	tr.Replay(dst)
	buf := linebuf.New()
	if err := dst.Apply(buf); err != nil {
		t.Fatal(err)
	}
	if buf.Line(0) != "a" || buf.Line(1) != "b!" {
		t.Errorf("replayed buffer = %v", buf.Lines())
	}
}
