// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package load partitions every "*_transformed" batch by (date, sensor_id)
// and appends one new Snappy-compressed row group per partition.
package load

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/theexplorist/agri-pipeline/internal/pipelinectx"
	"github.com/theexplorist/agri-pipeline/pkg/batch"
	"github.com/theexplorist/agri-pipeline/pkg/log"
)

const transformedSuffix = "_transformed.parquet"

var partFilePattern = regexp.MustCompile(`^part-(\d+)\.parquet$`)

// Run reads every "*_transformed.parquet" file under ctx.Paths.TransformedDir
// and appends its rows to the partitioned dataset rooted at
// ctx.Paths.AnalyticsDir, one new part file per (date, sensor_id) partition
// touched by that input file.
func Run(ctx *pipelinectx.Context) (int, error) {
	entries, err := os.ReadDir(ctx.Paths.TransformedDir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("load: read %q: %w", ctx.Paths.TransformedDir, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), transformedSuffix) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	written := 0
	for _, name := range names {
		path := filepath.Join(ctx.Paths.TransformedDir, name)
		b, err := batch.ReadFile(path)
		if err != nil {
			log.Errorf("load: %s: %v", name, err)
			continue
		}
		n, err := loadOne(ctx, b)
		if err != nil {
			log.Errorf("load: %s: %v", name, err)
			continue
		}
		written += n
	}
	return written, nil
}

// loadOne partitions b by (date, sensor_id) and writes one new part file per
// partition, returning the number of part files written.
func loadOne(ctx *pipelinectx.Context, b *batch.ReadingBatch) (int, error) {
	ensureDateColumn(b)

	type key struct{ date, sensorID string }
	groups := map[key][]int{}
	var order []key
	for i := range b.SensorID {
		k := key{b.Date[i], b.SensorID[i]}
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], i)
	}

	for _, k := range order {
		partition := b.Select(groups[k])
		dir := filepath.Join(ctx.Paths.AnalyticsDir, "date="+k.date, "sensor_id="+k.sensorID)
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return 0, fmt.Errorf("create partition dir %q: %w", dir, err)
		}
		name, err := nextPartName(dir)
		if err != nil {
			return 0, err
		}
		if err := batch.WriteFile(filepath.Join(dir, name), partition); err != nil {
			return 0, fmt.Errorf("write partition file %q: %w", name, err)
		}
	}
	return len(order), nil
}

// ensureDateColumn assigns the literal "unknown" to any row whose date
// column is empty, e.g. when the timestamp column was absent entirely.
func ensureDateColumn(b *batch.ReadingBatch) {
	b.EnsureDerivedColumns()
	warned := false
	for i := range b.Date {
		if b.Date[i] == "" {
			b.Date[i] = "unknown"
			if !warned {
				log.Warnf("load: row missing date, assigning partition date=unknown")
				warned = true
			}
		}
	}
}

// nextPartName scans dir for existing "part-<n>.parquet" files and returns
// the next non-colliding name.
func nextPartName(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("list partition dir %q: %w", dir, err)
	}

	next := 0
	for _, e := range entries {
		m := partFilePattern.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if n >= next {
			next = n + 1
		}
	}
	return fmt.Sprintf("part-%d.parquet", next), nil
}
