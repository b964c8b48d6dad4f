package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// ErrLogLocked is returned when another process holds the output log
var ErrLogLocked = errors.New("output log is locked by another process")

// Appender receives output records one at a time
type Appender interface {
	Append(v any) error
}

// LogWriter appends one JSON record per line to an output log.
// The log is guarded by an exclusive lock on "<path>.lock" for its lifetime.
type LogWriter struct {
	path  string
	file  *os.File
	lock  *flock.Flock
	count int
}

// OpenLog opens path for appending, creating parent directories.
// fresh truncates existing content first.
func OpenLog(path string, fresh bool) (*LogWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	lock := flock.New(path + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock %s: %w", path, err)
	}
	if !locked {
		return nil, fmt.Errorf("%w: %s", ErrLogLocked, path)
	}

	flags := os.O_CREATE | os.O_WRONLY | os.O_APPEND
	if fresh {
		flags |= os.O_TRUNC
	}
	file, err := os.OpenFile(path, flags, 0644)
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	return &LogWriter{path: path, file: file, lock: lock}, nil
}

// Append writes v as one JSON line. Non-ASCII text is written verbatim.
func (w *LogWriter) Append(v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	if _, err := w.file.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("write %s: %w", w.path, err)
	}
	w.count++
	return nil
}

// Count returns the number of records appended through this writer
func (w *LogWriter) Count() int {
	return w.count
}

// Path returns the log path
func (w *LogWriter) Path() string {
	return w.path
}

// Close flushes the file and releases the lock
func (w *LogWriter) Close() error {
	syncErr := w.file.Sync()
	closeErr := w.file.Close()
	unlockErr := w.lock.Unlock()
	return errors.Join(syncErr, closeErr, unlockErr)
}

// WriteAll replaces path with records, one JSON line each, under the same lock discipline
func WriteAll[T any](path string, records []T) error {
	w, err := OpenLog(path, true)
	if err != nil {
		return err
	}
	for _, r := range records {
		if err := w.Append(r); err != nil {
			_ = w.Close()
			return err
		}
	}
	return w.Close()
}

// Remove deletes the log at path under its lock. A missing log is not an error.
func Remove(path string) error {
	lock := flock.New(path + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("lock %s: %w", path, err)
	}
	if !locked {
		return fmt.Errorf("%w: %s", ErrLogLocked, path)
	}
	defer func() { _ = lock.Unlock() }()

	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", path, err)
	}
	return nil
}
