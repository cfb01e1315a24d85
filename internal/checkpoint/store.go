// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package checkpoint implements the persisted record of which input files
// have reached a terminal processing outcome. It is one of the pipeline's two
// pieces of shared mutable state (with the ingest log), so every write is
// mutex-protected and goes
// through atomic temp-file-then-rename (pkg/batch.WriteFileAtomic).
package checkpoint

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/theexplorist/agri-pipeline/pkg/batch"
	"github.com/theexplorist/agri-pipeline/pkg/log"
)

// Status is a checkpoint record's terminal outcome.
type Status string

const (
	StatusSuccess     Status = "success"
	StatusQuarantined Status = "quarantined"
	StatusFailed      Status = "failed"
)

// Record is the per-file checkpoint entry.
type Record struct {
	Checksum    string    `json:"checksum"`
	Rows        int       `json:"rows"`
	Status      Status    `json:"status"`
	ProcessedAt time.Time `json:"processed_at"`
}

type document struct {
	ProcessedFiles map[string]Record `json:"processed_files"`
}

// Store is the in-memory, disk-backed checkpoint store.
type Store struct {
	path string
	mu   sync.Mutex
	docs map[string]Record
}

// Open loads the checkpoint store from path. A missing file is treated as
// empty state; a file that fails to parse is also treated as empty state,
// with a warning logged.
func Open(path string) *Store {
	s := &Store{path: path, docs: map[string]Record{}}

	raw, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warnf("checkpoint: read %q: %v (treating as empty)", path, err)
		}
		return s
	}

	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		log.Warnf("checkpoint: parse %q: %v (treating as empty)", path, err)
		return s
	}

	if doc.ProcessedFiles != nil {
		s.docs = doc.ProcessedFiles
	}
	return s
}

// Get returns the record for basename and whether it exists.
func (s *Store) Get(basename string) (Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.docs[basename]
	return rec, ok
}

// IsSuccess reports whether basename has a recorded status of "success".
func (s *Store) IsSuccess(basename string) bool {
	rec, ok := s.Get(basename)
	return ok && rec.Status == StatusSuccess
}

// Set records basename's outcome and atomically persists the whole store.
func (s *Store) Set(basename string, rec Record) error {
	s.mu.Lock()
	s.docs[basename] = rec
	snapshot := make(map[string]Record, len(s.docs))
	for k, v := range s.docs {
		snapshot[k] = v
	}
	s.mu.Unlock()

	return s.persist(snapshot)
}

func (s *Store) persist(docs map[string]Record) error {
	data, err := json.MarshalIndent(document{ProcessedFiles: docs}, "", "  ")
	if err != nil {
		return fmt.Errorf("checkpoint: marshal: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o750); err != nil {
		return fmt.Errorf("checkpoint: create dir: %w", err)
	}
	if err := batch.WriteFileAtomic(s.path, data); err != nil {
		return fmt.Errorf("checkpoint: write %q: %w", s.path, err)
	}
	return nil
}
