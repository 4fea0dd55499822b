// Package session persists edit histories as transcripts. A
// transcript carries a stable identity plus the ordered records of a
// log, and round-trips through a JSON form for inspection and a
// compact binary form for storage.
package session

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/dshills/linekit/editlog"
)

// Errors reported while decoding transcripts.
var (
	ErrUnknownKind = errors.New("unknown record kind")
	ErrBadPayload  = errors.New("malformed transcript payload")
)

// Record kind tags used on the wire.
const (
	kindChar       = "char"
	kindLine       = "line"
	kindCheckpoint = "checkpoint"
)

// Transcript is a persistable snapshot of an edit history.
type Transcript struct {
	ID        uuid.UUID
	CreatedAt time.Time
	// Digest, when set, is the hex SHA-256 of the buffer text the
	// records produce, stamped by the caller for integrity checks.
	Digest  string
	Records []editlog.Record
}

// Digest returns the hex SHA-256 of a buffer's textual content.
func Digest(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// New creates an empty transcript with a fresh identity.
func New() *Transcript {
	return &Transcript{
		ID:        uuid.New(),
		CreatedAt: time.Now().UTC(),
	}
}

// FromLog captures the stored records of log into a new transcript.
func FromLog(log *editlog.Log) *Transcript {
	t := New()
	t.Records = log.Records()
	return t
}

// Append adds records to the transcript.
func (t *Transcript) Append(recs ...editlog.Record) {
	t.Records = append(t.Records, recs...)
}

// Replay writes every record of the transcript into log in order.
func (t *Transcript) Replay(log *editlog.Log) {
	for _, r := range t.Records {
		log.Write(r)
	}
}

// wireRecord is the kind-tagged envelope both encodings share.
type wireRecord struct {
	Kind    string    `msgpack:"kind"`
	Line    int       `msgpack:"line,omitempty"`
	Col     int       `msgpack:"col,omitempty"`
	Insert  string    `msgpack:"insert,omitempty"`
	Delete  string    `msgpack:"delete,omitempty"`
	InsertL []string  `msgpack:"insert_lines,omitempty"`
	DeleteL []string  `msgpack:"delete_lines,omitempty"`
	When    time.Time `msgpack:"when,omitempty"`
}

// wireTranscript is the binary envelope.
type wireTranscript struct {
	ID        string       `msgpack:"id"`
	CreatedAt time.Time    `msgpack:"created_at"`
	Digest    string       `msgpack:"digest,omitempty"`
	Records   []wireRecord `msgpack:"records"`
}

func toWire(r editlog.Record) (wireRecord, error) {
	switch rec := r.(type) {
	case editlog.CharSplice:
		return wireRecord{Kind: kindChar, Line: rec.Line, Col: rec.Col, Insert: rec.Insert, Delete: rec.Delete}, nil
	case editlog.LineSplice:
		return wireRecord{Kind: kindLine, Line: rec.Line, InsertL: rec.Insert, DeleteL: rec.Delete}, nil
	case editlog.Checkpoint:
		return wireRecord{Kind: kindCheckpoint, When: rec.When}, nil
	default:
		return wireRecord{}, fmt.Errorf("encoding %T: %w", r, ErrUnknownKind)
	}
}

func fromWire(w wireRecord) (editlog.Record, error) {
	switch w.Kind {
	case kindChar:
		return editlog.CharSplice{Line: w.Line, Col: w.Col, Insert: w.Insert, Delete: w.Delete}, nil
	case kindLine:
		return editlog.LineSplice{Line: w.Line, Insert: w.InsertL, Delete: w.DeleteL}, nil
	case kindCheckpoint:
		return editlog.Checkpoint{When: w.When}, nil
	default:
		return nil, fmt.Errorf("decoding kind %q: %w", w.Kind, ErrUnknownKind)
	}
}

// EncodeJSON renders the transcript as a JSON document.
func (t *Transcript) EncodeJSON() ([]byte, error) {
	out := []byte(`{}`)
	var err error
	if out, err = sjson.SetBytes(out, "id", t.ID.String()); err != nil {
		return nil, err
	}
	if out, err = sjson.SetBytes(out, "created_at", t.CreatedAt.Format(time.RFC3339Nano)); err != nil {
		return nil, err
	}
	if t.Digest != "" {
		if out, err = sjson.SetBytes(out, "digest", t.Digest); err != nil {
			return nil, err
		}
	}
	if out, err = sjson.SetRawBytes(out, "records", []byte(`[]`)); err != nil {
		return nil, err
	}
	for i, r := range t.Records {
		w, werr := toWire(r)
		if werr != nil {
			return nil, werr
		}
		base := fmt.Sprintf("records.%d", i)
		if out, err = sjson.SetBytes(out, base+".kind", w.Kind); err != nil {
			return nil, err
		}
		switch w.Kind {
		case kindChar:
			if out, err = sjson.SetBytes(out, base+".line", w.Line); err != nil {
				return nil, err
			}
			if out, err = sjson.SetBytes(out, base+".col", w.Col); err != nil {
				return nil, err
			}
			if out, err = sjson.SetBytes(out, base+".insert", w.Insert); err != nil {
				return nil, err
			}
			if out, err = sjson.SetBytes(out, base+".delete", w.Delete); err != nil {
				return nil, err
			}
		case kindLine:
			if out, err = sjson.SetBytes(out, base+".line", w.Line); err != nil {
				return nil, err
			}
			if out, err = sjson.SetBytes(out, base+".insert", strSlice(w.InsertL)); err != nil {
				return nil, err
			}
			if out, err = sjson.SetBytes(out, base+".delete", strSlice(w.DeleteL)); err != nil {
				return nil, err
			}
		case kindCheckpoint:
			if out, err = sjson.SetBytes(out, base+".when", w.When.Format(time.RFC3339Nano)); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

// strSlice never passes a nil slice to the encoder, so empty line
// lists render as [] rather than null.
func strSlice(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// DecodeJSON parses a JSON document produced by EncodeJSON.
func DecodeJSON(data []byte) (*Transcript, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("invalid JSON: %w", ErrBadPayload)
	}
	doc := gjson.ParseBytes(data)

	id, err := uuid.Parse(doc.Get("id").String())
	if err != nil {
		return nil, fmt.Errorf("transcript id: %w", err)
	}
	created, err := time.Parse(time.RFC3339Nano, doc.Get("created_at").String())
	if err != nil {
		return nil, fmt.Errorf("transcript created_at: %w", err)
	}

	t := &Transcript{ID: id, CreatedAt: created, Digest: doc.Get("digest").String()}
	for _, item := range doc.Get("records").Array() {
		w := wireRecord{
			Kind:   item.Get("kind").String(),
			Line:   int(item.Get("line").Int()),
			Col:    int(item.Get("col").Int()),
			Insert: item.Get("insert").String(),
			Delete: item.Get("delete").String(),
		}
		if w.Kind == kindLine {
			w.Insert, w.Delete = "", ""
			for _, s := range item.Get("insert").Array() {
				w.InsertL = append(w.InsertL, s.String())
			}
			for _, s := range item.Get("delete").Array() {
				w.DeleteL = append(w.DeleteL, s.String())
			}
		}
		if w.Kind == kindCheckpoint {
			when, werr := time.Parse(time.RFC3339Nano, item.Get("when").String())
			if werr != nil {
				return nil, fmt.Errorf("checkpoint timestamp: %w", werr)
			}
			w.When = when
		}
		rec, rerr := fromWire(w)
		if rerr != nil {
			return nil, rerr
		}
		t.Records = append(t.Records, rec)
	}
	return t, nil
}

// EncodeBinary renders the transcript in its compact binary form.
func (t *Transcript) EncodeBinary() ([]byte, error) {
	wt := wireTranscript{
		ID:        t.ID.String(),
		CreatedAt: t.CreatedAt,
		Digest:    t.Digest,
		Records:   make([]wireRecord, 0, len(t.Records)),
	}
	for _, r := range t.Records {
		w, err := toWire(r)
		if err != nil {
			return nil, err
		}
		wt.Records = append(wt.Records, w)
	}
	return msgpack.Marshal(wt)
}

// DecodeBinary parses a payload produced by EncodeBinary.
func DecodeBinary(data []byte) (*Transcript, error) {
	var wt wireTranscript
	if err := msgpack.Unmarshal(data, &wt); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	id, err := uuid.Parse(wt.ID)
	if err != nil {
		return nil, fmt.Errorf("transcript id: %w", err)
	}
	t := &Transcript{ID: id, CreatedAt: wt.CreatedAt, Digest: wt.Digest}
	for _, w := range wt.Records {
		rec, rerr := fromWire(w)
		if rerr != nil {
			return nil, rerr
		}
		t.Records = append(t.Records, rec)
	}
	return t, nil
}
