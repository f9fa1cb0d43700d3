// Package sink provides the file-backed append-only audit log.
package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/gitYourbits/sse-insta-audit-platform/internal/domain"
)

// auditRecord is the on-disk line format.
type auditRecord struct {
	Timestamp time.Time           `json:"timestamp"`
	BatchID   uuid.UUID           `json:"batch_id"`
	Result    *domain.AuditResult `json:"result,omitempty"`
	Failure   *domain.ItemFailure `json:"failure,omitempty"`
}

// JSONLWriter appends audit outcomes as JSON lines to one file per day
// (audit_YYYYMMDD.log under the configured directory).
type JSONLWriter struct {
	dir   string
	clock clockwork.Clock

	mu       sync.Mutex
	file     *os.File
	fileDate string
}

// NewJSONLWriter creates the log directory if needed. Files are opened
// lazily on first write.
func NewJSONLWriter(dir string, clock clockwork.Clock) (*JSONLWriter, error) {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create audit log directory: %w", err)
	}
	return &JSONLWriter{dir: dir, clock: clock}, nil
}

// Name identifies the sink in logs and metrics.
func (w *JSONLWriter) Name() string { return "jsonl" }

// Write appends one outcome line. Safe for concurrent use.
func (w *JSONLWriter) Write(_ context.Context, batchID uuid.UUID, outcome domain.ItemOutcome) error {
	rec := auditRecord{
		Timestamp: w.clock.Now(),
		BatchID:   batchID,
		Result:    outcome.Result,
		Failure:   outcome.Failure,
	}
	line, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal audit record: %w", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	f, err := w.currentFile()
	if err != nil {
		return err
	}
	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("failed to append audit record: %w", err)
	}
	return nil
}

// currentFile returns the handle for today's log, rolling over at midnight.
// Must be called with mu held.
func (w *JSONLWriter) currentFile() (*os.File, error) {
	date := w.clock.Now().Format("20060102")
	if w.file != nil && w.fileDate == date {
		return w.file, nil
	}

	if w.file != nil {
		_ = w.file.Close()
	}

	path := filepath.Join(w.dir, fmt.Sprintf("audit_%s.log", date))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit log %s: %w", path, err)
	}
	w.file = f
	w.fileDate = date
	return f, nil
}

// Close flushes and closes the current log file.
func (w *JSONLWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file == nil {
		return nil
	}
	err := w.file.Close()
	w.file = nil
	return err
}
