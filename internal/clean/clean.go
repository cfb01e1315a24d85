// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package clean implements dedup, null-drop, mean imputation and
// per-reading_type outlier correction over an in-memory batch. Each step
// operates column-wise over batch.ReadingBatch to keep the work vectorized.
package clean

import (
	"fmt"
	"math"
	"sort"

	"github.com/theexplorist/agri-pipeline/internal/sensorconfig"
	"github.com/theexplorist/agri-pipeline/pkg/batch"
	"github.com/theexplorist/agri-pipeline/pkg/log"
)

// ImputationInfeasible reports a column with no non-null values to compute a
// mean from. The column is left null rather than failing the stage.
type ImputationInfeasible struct {
	Column string
}

func (e *ImputationInfeasible) Error() string {
	return fmt.Sprintf("column %q is entirely null, no mean to impute", e.Column)
}

// Clean runs the four DataCleaner steps, in order, and returns the cleaned
// batch. cfg supplies the [min,max] clip range for small outlier groups.
func Clean(b *batch.ReadingBatch, cfg sensorconfig.SensorConfig) *batch.ReadingBatch {
	b = dropDuplicates(b)
	b = dropNullKeys(b)
	imputeMeans(b)
	correctOutliers(b, cfg)
	return b
}

// dropDuplicates keeps the first occurrence of each (sensor_id, timestamp,
// reading_type) key, preserving row order.
func dropDuplicates(b *batch.ReadingBatch) *batch.ReadingBatch {
	seen := make(map[[3]string]bool, b.Len())
	var keep []int
	for i := 0; i < b.Len(); i++ {
		key := [3]string{b.SensorID[i], b.Timestamp[i], b.ReadingType[i]}
		if seen[key] {
			continue
		}
		seen[key] = true
		keep = append(keep, i)
	}
	return b.Select(keep)
}

// dropNullKeys removes rows where any key column is empty.
func dropNullKeys(b *batch.ReadingBatch) *batch.ReadingBatch {
	var keep []int
	for i := 0; i < b.Len(); i++ {
		if b.SensorID[i] == "" || b.Timestamp[i] == "" || b.ReadingType[i] == "" {
			continue
		}
		keep = append(keep, i)
	}
	return b.Select(keep)
}

// imputeMeans replaces null value/battery_level entries in place with the
// column's arithmetic mean over the non-null remaining rows. A column that
// is entirely null is left untouched: the mean is undefined, so nothing is
// imputed and the nulls remain (ingest has already quarantined files whose
// value or battery_level column was entirely null when read).
func imputeMeans(b *batch.ReadingBatch) {
	imputeColumn("value", b.Value)
	imputeColumn("battery_level", b.Battery)
}

func imputeColumn(name string, col []*float64) {
	var sum float64
	var n int
	for _, v := range col {
		if v != nil {
			sum += *v
			n++
		}
	}
	if n == 0 {
		if len(col) > 0 {
			log.Debugf("clean: %v", &ImputationInfeasible{Column: name})
		}
		return
	}
	if n == len(col) {
		return
	}
	mean := sum / float64(n)
	for i, v := range col {
		if v == nil {
			col[i] = batch.Float(mean)
		}
	}
}

// correctOutliers groups rows by reading_type and applies the z-score or
// clip correction.
func correctOutliers(b *batch.ReadingBatch, cfg sensorconfig.SensorConfig) {
	groups := map[string][]int{}
	for i, rt := range b.ReadingType {
		groups[rt] = append(groups[rt], i)
	}

	for rt, idx := range groups {
		if len(idx) >= 5 {
			correctByZScore(b, idx)
		} else {
			clipToRange(b, idx, cfg.Lookup(rt))
		}
	}
}

func correctByZScore(b *batch.ReadingBatch, idx []int) {
	values := make([]float64, 0, len(idx))
	for _, i := range idx {
		if v := b.Value[i]; v != nil {
			values = append(values, *v)
		}
	}
	if len(values) == 0 {
		return
	}

	mean := meanOf(values)
	sigma := stddevOf(values, mean)
	if sigma == 0 {
		return
	}
	median := medianOf(values)

	for _, i := range idx {
		v := b.Value[i]
		if v == nil {
			continue
		}
		if math.Abs(*v-mean)/sigma > 3 {
			b.Value[i] = batch.Float(median)
		}
	}
}

func clipToRange(b *batch.ReadingBatch, idx []int, t sensorconfig.Threshold) {
	for _, i := range idx {
		v := b.Value[i]
		if v == nil {
			continue
		}
		clamped := *v
		if clamped < t.Min {
			clamped = t.Min
		}
		if clamped > t.Max {
			clamped = t.Max
		}
		b.Value[i] = batch.Float(clamped)
	}
}

func meanOf(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func stddevOf(values []float64, mean float64) float64 {
	var sumSq float64
	for _, v := range values {
		d := v - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(values)))
}

func medianOf(values []float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
