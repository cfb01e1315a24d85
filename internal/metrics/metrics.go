// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package metrics records a plain per-run JSON summary of each stage's
// outcome counts (see DESIGN.md for why this is not prometheus/client_golang
// in a network-free batch pipeline with no server to query against).
package metrics

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/theexplorist/agri-pipeline/pkg/batch"
)

// StageSummary is one stage's run-level counters.
type StageSummary struct {
	Stage       string    `json:"stage"`
	StartedAt   time.Time `json:"started_at"`
	EndedAt     time.Time `json:"ended_at"`
	Total       int       `json:"total"`
	Succeeded   int       `json:"succeeded"`
	Quarantined int       `json:"quarantined"`
	Failed      int       `json:"failed"`
}

// Recorder accumulates StageSummary entries across one run and writes each
// stage's summary to its own metadata/<stage>_metrics.json at the end.
type Recorder struct {
	metadataDir string
	summaries   []StageSummary
}

// NewRecorder returns a Recorder writing under metadataDir.
func NewRecorder(metadataDir string) *Recorder {
	return &Recorder{metadataDir: metadataDir}
}

// Record appends one stage's summary.
func (r *Recorder) Record(s StageSummary) {
	r.summaries = append(r.summaries, s)
}

// Flush writes every recorded summary to its own
// metadata/<stage>_metrics.json, each atomically.
func (r *Recorder) Flush() error {
	if err := os.MkdirAll(r.metadataDir, 0o750); err != nil {
		return fmt.Errorf("metrics: create dir: %w", err)
	}
	for _, s := range r.summaries {
		data, err := json.MarshalIndent(s, "", "  ")
		if err != nil {
			return fmt.Errorf("metrics: marshal %s: %w", s.Stage, err)
		}
		path := filepath.Join(r.metadataDir, s.Stage+"_metrics.json")
		if err := batch.WriteFileAtomic(path, data); err != nil {
			return fmt.Errorf("metrics: write %s: %w", s.Stage, err)
		}
	}
	return nil
}
