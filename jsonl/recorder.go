// Package jsonl provides JSONL file handling for pipeline attempt records.
package jsonl

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fwojciec/llmpatch"
)

// Compile-time interface verification.
var _ llmpatch.Recorder = (*Recorder)(nil)

// Recorder appends one JSON line per pipeline attempt to a log file. The
// file is opened per record so a crash mid-run loses at most one line.
type Recorder struct {
	path string
}

// NewRecorder creates a recorder writing to the file at path.
func NewRecorder(path string) *Recorder {
	return &Recorder{path: path}
}

// Record appends the attempt record as a single JSON line.
func (r *Recorder) Record(rec llmpatch.AttemptRecord) error {
	f, err := os.OpenFile(r.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open attempt log: %w", err)
	}
	defer f.Close()

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal attempt record: %w", err)
	}
	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write attempt record: %w", err)
	}
	return nil
}
