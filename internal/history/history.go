// Package history records one entry per conversion request so operators can
// see what was converted, how large it was and which error code it failed
// with. Entries never contain the converted data itself.
//
// Two stores are provided: MemoryStore, a fixed-size ring buffer used when no
// database is configured, and PostgresStore backed by a pgx pool.
package history

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Entry describes a single conversion attempt.
type Entry struct {
	ID         uuid.UUID `json:"id"`
	Operation  string    `json:"operation"`
	Source     string    `json:"source,omitempty"`
	Target     string    `json:"target,omitempty"`
	BytesIn    int       `json:"bytesIn"`
	BytesOut   int       `json:"bytesOut"`
	Rows       int       `json:"rows"`
	DurationMs int64     `json:"durationMs"`
	ErrorCode  string    `json:"errorCode,omitempty"`
	ClientIP   string    `json:"clientIp,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Operation names stored in Entry.Operation.
const (
	OpConvert = "convert"
	OpExtract = "extract"
)

// NewEntry returns an entry with a fresh ID and the current time.
func NewEntry(op, source, target string) Entry {
	return Entry{
		ID:        uuid.New(),
		Operation: op,
		Source:    source,
		Target:    target,
		CreatedAt: time.Now().UTC(),
	}
}

// Failed reports whether the conversion ended with an error code.
func (e Entry) Failed() bool {
	return e.ErrorCode != ""
}

// Store persists history entries.
type Store interface {
	Record(ctx context.Context, e Entry) error
	// Recent returns at most limit entries, newest first.
	Recent(ctx context.Context, limit int) ([]Entry, error)
}

// NopStore discards everything. Used when history is disabled.
type NopStore struct{}

func (NopStore) Record(context.Context, Entry) error { return nil }

func (NopStore) Recent(context.Context, int) ([]Entry, error) { return []Entry{}, nil }
