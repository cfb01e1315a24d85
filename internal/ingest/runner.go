// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package ingest validates, reads, profiles and checkpoints each new raw
// file, quarantining anything that fails along the way, in a
// validate-read-persist-log sequence.
package ingest

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/theexplorist/agri-pipeline/internal/checkpoint"
	"github.com/theexplorist/agri-pipeline/internal/ingestlog"
	"github.com/theexplorist/agri-pipeline/internal/pipelinectx"
	"github.com/theexplorist/agri-pipeline/internal/profiler"
	"github.com/theexplorist/agri-pipeline/internal/scanner"
	"github.com/theexplorist/agri-pipeline/internal/validator"
	"github.com/theexplorist/agri-pipeline/pkg/batch"
	"github.com/theexplorist/agri-pipeline/pkg/log"
)

// FileOutcome is one file's terminal ingestion result.
type FileOutcome struct {
	Path   string
	Status checkpoint.Status
	Err    error
}

// Run discovers new raw files via scanner.ListNewFiles and ingests each one
// in lexicographic order. Files already carrying a non-success checkpoint
// record (quarantined or failed on a prior run) are skipped rather than
// retried.
func Run(ctx *pipelinectx.Context) ([]FileOutcome, error) {
	paths, err := scanner.ListNewFiles(ctx.Paths.RawDir, ctx.Checkpoint)
	if err != nil {
		return nil, fmt.Errorf("ingest: list new files: %w", err)
	}

	ingestLog, err := ingestlog.New(filepath.Join(ctx.Paths.MetadataDir, "ingest_log.csv"))
	if err != nil {
		return nil, fmt.Errorf("ingest: open ingest log: %w", err)
	}

	outcomes := make([]FileOutcome, 0, len(paths))
	for _, path := range paths {
		basename := filepath.Base(path)
		if rec, ok := ctx.Checkpoint.Get(basename); ok && rec.Status != checkpoint.StatusSuccess {
			continue
		}
		outcome := ingestOne(ctx, ingestLog, path, basename)
		outcomes = append(outcomes, outcome)
	}
	return outcomes, nil
}

func ingestOne(ctx *pipelinectx.Context, ingestLog *ingestlog.Logger, path, basename string) FileOutcome {
	start := time.Now()

	res, err := validator.Validate(path)
	if err != nil || !res.OK {
		cause := err
		if cause == nil {
			cause = fmt.Errorf("missing required columns: %v", res.Missing)
		}
		return finish(ctx, ingestLog, path, basename, checkpoint.StatusQuarantined, 0, cause, start)
	}

	b, err := batch.ReadFile(path)
	if err != nil {
		return finish(ctx, ingestLog, path, basename, checkpoint.StatusFailed, 0, err, start)
	}

	if requiredColumnEntirelyNull(b) {
		return finish(ctx, ingestLog, path, basename, checkpoint.StatusQuarantined, 0, errors.New("required column entirely null"), start)
	}

	for _, s := range profiler.Profile(b) {
		log.Infof("ingest: %s: %s avg=%.2f min=%.2f max=%.2f n=%d", basename, s.ReadingType, s.AvgValue, s.MinValue, s.MaxValue, s.RecordCount)
	}

	base := strings.TrimSuffix(basename, filepath.Ext(basename))
	outPath := filepath.Join(ctx.Paths.ProcessedDir, base+"_processed.parquet")
	if err := os.MkdirAll(ctx.Paths.ProcessedDir, 0o750); err != nil {
		return finish(ctx, ingestLog, path, basename, checkpoint.StatusFailed, 0, err, start)
	}
	if err := batch.WriteFile(outPath, b); err != nil {
		return finish(ctx, ingestLog, path, basename, checkpoint.StatusFailed, 0, err, start)
	}

	return finish(ctx, ingestLog, path, basename, checkpoint.StatusSuccess, b.Len(), nil, start)
}

// requiredColumnEntirelyNull reports whether value or battery_level is nil
// on every row: the column's mean is undefined, so the file is quarantined
// instead of imputed.
func requiredColumnEntirelyNull(b *batch.ReadingBatch) bool {
	if b.Len() == 0 {
		return false
	}
	return allNil(b.Value) || allNil(b.Battery)
}

func allNil(col []*float64) bool {
	for _, v := range col {
		if v != nil {
			return false
		}
	}
	return true
}

func finish(ctx *pipelinectx.Context, ingestLog *ingestlog.Logger, path, basename string, status checkpoint.Status, rows int, cause error, start time.Time) FileOutcome {
	duration := time.Since(start).Seconds()

	if status != checkpoint.StatusSuccess {
		if err := quarantine(path, ctx.Paths.QuarantineDir); err != nil {
			log.Errorf("ingest: %s: quarantine move failed: %v", basename, err)
		}
	}

	checksum := ""
	if status == checkpoint.StatusSuccess {
		sum, err := checksumFile(path)
		if err != nil {
			log.Errorf("ingest: %s: checksum: %v", basename, err)
		} else {
			checksum = sum
		}
	}

	if err := ctx.Checkpoint.Set(basename, checkpoint.Record{
		Checksum:    checksum,
		Rows:        rows,
		Status:      status,
		ProcessedAt: time.Now().UTC(),
	}); err != nil {
		log.Errorf("ingest: %s: checkpoint write failed: %v", basename, err)
	}

	errMsg := ""
	if cause != nil {
		errMsg = cause.Error()
		log.Errorf("ingest: %s: %v", basename, cause)
	}

	if err := ingestLog.Append(ingestlog.Entry{
		Filename:    basename,
		Rows:        rows,
		Status:      string(status),
		Error:       errMsg,
		DurationSec: duration,
		Timestamp:   time.Now().UTC(),
	}); err != nil {
		log.Errorf("ingest: %s: ingest log append failed: %v", basename, err)
	}

	return FileOutcome{Path: path, Status: status, Err: cause}
}

// quarantine moves path into quarantineDir, preserving its original bytes
// for post-mortem inspection. os.Rename is tried first; a cross-device
// link error falls back to a copy-then-remove.
func quarantine(path, quarantineDir string) error {
	if err := os.MkdirAll(quarantineDir, 0o750); err != nil {
		return fmt.Errorf("create quarantine dir: %w", err)
	}
	dest := filepath.Join(quarantineDir, filepath.Base(path))

	if err := os.Rename(path, dest); err == nil {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read for quarantine copy: %w", err)
	}
	if err := batch.WriteFileAtomic(dest, data); err != nil {
		return fmt.Errorf("write quarantine copy: %w", err)
	}
	return os.Remove(path)
}

func checksumFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
