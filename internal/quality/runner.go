// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package quality

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/theexplorist/agri-pipeline/internal/pipelinectx"
	"github.com/theexplorist/agri-pipeline/pkg/batch"
	"github.com/theexplorist/agri-pipeline/pkg/log"
)

const transformedSuffix = "_transformed.parquet"

// Run validates every "*_transformed.parquet" file under
// ctx.Paths.TransformedDir and writes metadata/data_quality_report.csv
// atomically, once, at the end of the stage. A file that
// cannot be read at all still contributes a sentinel-filled row rather
// than aborting the stage.
func Run(ctx *pipelinectx.Context) ([]Report, error) {
	entries, err := os.ReadDir(ctx.Paths.TransformedDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("quality: read %q: %w", ctx.Paths.TransformedDir, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), transformedSuffix) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	reports := make([]Report, 0, len(names))
	for _, name := range names {
		path := filepath.Join(ctx.Paths.TransformedDir, name)
		b, err := batch.ReadFile(path)
		if err != nil {
			log.Errorf("quality: %s: %v", name, err)
			reports = append(reports, FailedReport(name, err))
			continue
		}
		reports = append(reports, Validate(name, b, ctx.Config))
	}

	reportPath := filepath.Join(ctx.Paths.MetadataDir, "data_quality_report.csv")
	if err := writeReportFile(reportPath, reports); err != nil {
		return reports, err
	}
	return reports, nil
}

func writeReportFile(path string, reports []Report) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(Header); err != nil {
		return fmt.Errorf("quality: write header: %w", err)
	}
	for _, r := range reports {
		if err := w.Write(Row(r)); err != nil {
			return fmt.Errorf("quality: write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("quality: flush: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("quality: create dir: %w", err)
	}
	return batch.WriteFileAtomic(path, buf.Bytes())
}
