// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package profiler computes per-reading-type summary statistics, used
// only for logging.
package profiler

import (
	"math"
	"sort"

	"github.com/theexplorist/agri-pipeline/pkg/batch"
)

// Summary is one reading_type's aggregate statistics.
type Summary struct {
	ReadingType string
	RecordCount int
	AvgValue    float64
	MinValue    float64
	MaxValue    float64
	AvgBattery  float64
}

// Profile groups b by reading_type and computes Summary for each group,
// sorted by reading_type for deterministic output.
func Profile(b *batch.ReadingBatch) []Summary {
	type accum struct {
		count                        int
		sumValue, minValue, maxValue float64
		sumBattery                   float64
		countValue, countBattery     int
	}
	groups := map[string]*accum{}
	var order []string

	for i := 0; i < b.Len(); i++ {
		rt := b.ReadingType[i]
		a, ok := groups[rt]
		if !ok {
			a = &accum{minValue: math.Inf(1), maxValue: math.Inf(-1)}
			groups[rt] = a
			order = append(order, rt)
		}
		a.count++
		if v := b.Value[i]; v != nil {
			a.sumValue += *v
			a.countValue++
			if *v < a.minValue {
				a.minValue = *v
			}
			if *v > a.maxValue {
				a.maxValue = *v
			}
		}
		if bat := b.Battery[i]; bat != nil {
			a.sumBattery += *bat
			a.countBattery++
		}
	}

	sort.Strings(order)

	summaries := make([]Summary, 0, len(order))
	for _, rt := range order {
		a := groups[rt]
		s := Summary{ReadingType: rt, RecordCount: a.count}
		if a.countValue > 0 {
			s.AvgValue = round2(a.sumValue / float64(a.countValue))
			s.MinValue = round2(a.minValue)
			s.MaxValue = round2(a.maxValue)
		}
		if a.countBattery > 0 {
			s.AvgBattery = round2(a.sumBattery / float64(a.countBattery))
		}
		summaries = append(summaries, s)
	}
	return summaries
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
