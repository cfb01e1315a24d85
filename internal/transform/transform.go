// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package transform sequences Cleaner -> Calibration -> TimestampProcessor
// -> FeatureEngineer over every "*_processed" file and writes the
// "*_transformed" sibling, isolating per-file failures so one bad file
// doesn't abort the whole run.
package transform

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/theexplorist/agri-pipeline/internal/calibrate"
	"github.com/theexplorist/agri-pipeline/internal/clean"
	"github.com/theexplorist/agri-pipeline/internal/feature"
	"github.com/theexplorist/agri-pipeline/internal/pipelinectx"
	"github.com/theexplorist/agri-pipeline/internal/tsproc"
	"github.com/theexplorist/agri-pipeline/pkg/batch"
	"github.com/theexplorist/agri-pipeline/pkg/log"
)

const processedSuffix = "_processed.parquet"

// FileResult is the outcome of transforming one processed file.
type FileResult struct {
	Path string
	Err  error
}

// Run discovers every "*_processed.parquet" file under ctx.Paths.ProcessedDir,
// transforms it and writes "<basename>_transformed.parquet" under
// ctx.Paths.TransformedDir (by default the same directory). A
// failure in any substep aborts only that file; processing continues with
// the rest, in lexicographic order.
func Run(ctx *pipelinectx.Context) ([]FileResult, error) {
	entries, err := os.ReadDir(ctx.Paths.ProcessedDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("transform: read %q: %w", ctx.Paths.ProcessedDir, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), processedSuffix) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	results := make([]FileResult, 0, len(names))
	for _, name := range names {
		path := filepath.Join(ctx.Paths.ProcessedDir, name)
		err := transformOne(ctx, path, name)
		if err != nil {
			log.Errorf("transform: %s: %v", name, err)
		}
		results = append(results, FileResult{Path: path, Err: err})
	}
	return results, nil
}

func transformOne(ctx *pipelinectx.Context, path, name string) error {
	b, err := batch.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read: %w", err)
	}

	b = clean.Clean(b, ctx.Config)
	b = calibrate.Calibrate(b, ctx.Config)
	b = tsproc.Process(b)
	b = feature.Engineer(b, ctx.Config)

	base := strings.TrimSuffix(name, processedSuffix)
	outPath := filepath.Join(ctx.Paths.TransformedDir, base+"_transformed.parquet")

	if err := os.MkdirAll(ctx.Paths.TransformedDir, 0o750); err != nil {
		return fmt.Errorf("create transformed dir: %w", err)
	}
	if err := batch.WriteFile(outPath, b); err != nil {
		return fmt.Errorf("write %q: %w", outPath, err)
	}
	return nil
}
