// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package ingestlog appends one record per ingestion attempt to
// metadata/ingest_log.csv, using the standard library's encoding/csv
// directly.
package ingestlog

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"
)

// Header is the fixed, ordered column set.
var Header = []string{"filename", "rows", "status", "error", "duration_sec", "timestamp"}

// Entry is one append-only ingestion attempt record.
type Entry struct {
	Filename    string
	Rows        int
	Status      string
	Error       string
	DurationSec float64
	Timestamp   time.Time
}

// Logger appends Entries to a CSV file, serializing writers and fsyncing
// after each record: open, append, fsync, close.
type Logger struct {
	path string
	mu   sync.Mutex
}

// New returns a Logger writing to path, creating the file with a header row
// if it doesn't already exist.
func New(path string) (*Logger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("ingestlog: create dir: %w", err)
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o640)
		if err != nil {
			return nil, fmt.Errorf("ingestlog: create %q: %w", path, err)
		}
		w := csv.NewWriter(f)
		if err := w.Write(Header); err != nil {
			f.Close()
			return nil, fmt.Errorf("ingestlog: write header: %w", err)
		}
		w.Flush()
		if err := f.Sync(); err != nil {
			f.Close()
			return nil, fmt.Errorf("ingestlog: sync header: %w", err)
		}
		if err := f.Close(); err != nil {
			return nil, fmt.Errorf("ingestlog: close after header: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("ingestlog: stat %q: %w", path, err)
	}

	return &Logger{path: path}, nil
}

// Append writes one record to the log, fsyncing before closing.
func (l *Logger) Append(e Entry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_WRONLY, 0o640)
	if err != nil {
		return fmt.Errorf("ingestlog: open %q: %w", l.path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	record := []string{
		e.Filename,
		strconv.Itoa(e.Rows),
		e.Status,
		e.Error,
		strconv.FormatFloat(e.DurationSec, 'f', 3, 64),
		e.Timestamp.UTC().Format(time.RFC3339),
	}
	if err := w.Write(record); err != nil {
		return fmt.Errorf("ingestlog: write record: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("ingestlog: flush: %w", err)
	}
	return f.Sync()
}
