// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package feature derives date, daily mean, a 7-row trailing rolling mean,
// and the anomaly flag, all computed over a single in-memory batch with no
// cross-file state.
package feature

import (
	"sort"
	"time"

	"github.com/theexplorist/agri-pipeline/internal/sensorconfig"
	"github.com/theexplorist/agri-pipeline/internal/tsproc"
	"github.com/theexplorist/agri-pipeline/pkg/batch"
)

// Engineer derives date, daily_avg, rolling_7d_avg and anomalous_reading in
// place and returns b. It assumes timestamp has already been canonicalized
// by tsproc.Process.
func Engineer(b *batch.ReadingBatch, cfg sensorconfig.SensorConfig) *batch.ReadingBatch {
	b.EnsureDerivedColumns()

	deriveDate(b)
	deriveDailyAvg(b)
	deriveRolling7dAvg(b)
	deriveAnomalousReading(b, cfg)

	return b
}

func deriveDate(b *batch.ReadingBatch) {
	for i, ts := range b.Timestamp {
		t, err := time.Parse(tsproc.CanonicalLayout, ts)
		if err != nil {
			continue
		}
		b.Date[i] = t.Format("2006-01-02")
	}
}

// deriveDailyAvg computes the mean of value within each (sensor_id,
// reading_type, date) group and broadcasts it back to every member row.
func deriveDailyAvg(b *batch.ReadingBatch) {
	type key struct{ sensorID, readingType, date string }
	sums := map[key]float64{}
	counts := map[key]int{}

	for i := range b.SensorID {
		v := b.Value[i]
		if v == nil {
			continue
		}
		k := key{b.SensorID[i], b.ReadingType[i], b.Date[i]}
		sums[k] += *v
		counts[k]++
	}

	for i := range b.SensorID {
		k := key{b.SensorID[i], b.ReadingType[i], b.Date[i]}
		if n := counts[k]; n > 0 {
			b.DailyAvg[i] = batch.Float(sums[k] / float64(n))
		}
	}
}

// deriveRolling7dAvg orders rows by (sensor_id, reading_type, timestamp,
// ingestion order) and computes, per (sensor_id, reading_type) group, the
// mean of value over a trailing window of up to 7 rows, broadcasting the
// result back into the row's original position.
func deriveRolling7dAvg(b *batch.ReadingBatch) {
	type key struct{ sensorID, readingType string }
	groups := map[key][]int{}

	for i := range b.SensorID {
		k := key{b.SensorID[i], b.ReadingType[i]}
		groups[k] = append(groups[k], i)
	}

	for _, idx := range groups {
		ordered := append([]int(nil), idx...)
		sort.SliceStable(ordered, func(a, c int) bool {
			return b.Timestamp[ordered[a]] < b.Timestamp[ordered[c]]
		})

		window := make([]float64, 0, 7)
		for _, i := range ordered {
			v := b.Value[i]
			if v == nil {
				if len(window) > 0 {
					b.Rolling7dAvg[i] = batch.Float(meanOf(window))
				}
				continue
			}
			window = append(window, *v)
			if len(window) > 7 {
				window = window[1:]
			}
			b.Rolling7dAvg[i] = batch.Float(meanOf(window))
		}
	}
}

func meanOf(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func deriveAnomalousReading(b *batch.ReadingBatch, cfg sensorconfig.SensorConfig) {
	for i, rt := range b.ReadingType {
		v := b.Value[i]
		if v == nil {
			continue
		}
		t := cfg.Lookup(rt)
		anomalous := *v < t.Min || *v > t.Max
		b.AnomalousReading[i] = batch.Bool(anomalous)
	}
}
