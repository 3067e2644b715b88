// Package txlog maintains the hub's append-only ingestion log: one
// JSON line per ingest call. The log is advisory, for audit and debugging;
// a write failure must never fail an ingest.
package txlog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Entry is one ingest call as recorded in the log.
type Entry struct {
	ID         string    `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	Domain     string    `json:"domain"`
	SourceTier string    `json:"source_tier"`
	Rows       int       `json:"rows"`
	NewColumns []string  `json:"new_columns,omitempty"`
}

// Writer appends entries to a single log file. Safe for use from one hub;
// the hub serializes ingest calls, the mutex only guards incidental reuse.
type Writer struct {
	mu   sync.Mutex
	path string
}

// NewWriter returns a writer appending to the given path. The file is
// created lazily on first append.
func NewWriter(path string) *Writer {
	return &Writer{path: path}
}

// Append writes one entry. The entry ID is assigned here.
func (w *Writer) Append(e Entry) error {
	e.ID = uuid.NewString()
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}

	line, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal txlog entry: %w", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open txlog: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("append txlog entry: %w", err)
	}
	return nil
}

// Read returns all entries in the log, oldest first. Used by tests and
// operator tooling, never by the pipeline itself.
func (w *Writer) Read() ([]Entry, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	data, err := os.ReadFile(w.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read txlog: %w", err)
	}

	var entries []Entry
	dec := json.NewDecoder(bytes.NewReader(data))
	for dec.More() {
		var e Entry
		if err := dec.Decode(&e); err != nil {
			return nil, fmt.Errorf("decode txlog entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
