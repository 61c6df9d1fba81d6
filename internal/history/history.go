// Package history records finished runs for signed-in users.
package history

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Record is one logged run. Output and Error are mutually exclusive in
// practice; whichever is empty is omitted.
type Record struct {
	UserID    string    `json:"userId"`
	Language  string    `json:"language"`
	Code      string    `json:"code"`
	Output    string    `json:"output,omitempty"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Sink persists run records. The editor calls Save from a goroutine and
// ignores failures beyond logging them.
type Sink interface {
	Save(ctx context.Context, rec Record) error
	Close() error
}

// Nop discards records.
type Nop struct{}

func (Nop) Save(context.Context, Record) error { return nil }
func (Nop) Close() error                       { return nil }

// JSONL appends one JSON document per line to a file.
type JSONL struct {
	mu   sync.Mutex
	path string
}

// OpenJSONL prepares the log file at path.
func OpenJSONL(path string) (*JSONL, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}
	return &JSONL{path: path}, nil
}

func (j *JSONL) Save(_ context.Context, rec Record) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	f, err := os.OpenFile(j.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	defer f.Close()
	if _, err := f.Write(append(b, '\n')); err != nil {
		return fmt.Errorf("append history: %w", err)
	}
	return nil
}

func (j *JSONL) Close() error { return nil }

// ReadJSONL loads every record of a JSONL history file for userID ("" for
// all users), newest last.
func ReadJSONL(path, userID string) ([]Record, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read history: %w", err)
	}
	var out []Record
	dec := json.NewDecoder(bytes.NewReader(b))
	for dec.More() {
		var rec Record
		if err := dec.Decode(&rec); err != nil {
			return out, fmt.Errorf("decode history: %w", err)
		}
		if userID == "" || rec.UserID == userID {
			out = append(out, rec)
		}
	}
	return out, nil
}
