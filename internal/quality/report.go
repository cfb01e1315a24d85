// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package quality computes per-type range/missing checks and an hourly-gap
// count, emitted as one CSV row per transformed file.
package quality

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/theexplorist/agri-pipeline/internal/sensorconfig"
	"github.com/theexplorist/agri-pipeline/internal/tsproc"
	"github.com/theexplorist/agri-pipeline/pkg/batch"
	"github.com/theexplorist/agri-pipeline/pkg/log"
)

// ValidationAnomaly reports a reading_type whose out-of-range rate is
// non-zero. It is non-fatal: the rate is recorded in Report and the run
// continues.
type ValidationAnomaly struct {
	FileName    string
	ReadingType string
	OutlierPct  float64
}

func (e *ValidationAnomaly) Error() string {
	return fmt.Sprintf("%s: reading_type %q outlier rate %.2f%%", e.FileName, e.ReadingType, e.OutlierPct)
}

// sentinel is written to numeric fields when a file could not be validated
// at all.
const sentinel = -1

// Report is one row of metadata/data_quality_report.csv.
type Report struct {
	FileName          string
	TotalRecords      int
	InvalidValueType  int
	InvalidTimestamp  int
	OutlierPct        string // JSON-encoded map[reading_type]float64
	MissingPct        string // JSON-encoded map[reading_type]float64
	SensorsWithGaps   int
	TotalMissingHours int
}

// Header is the fixed, ordered column set.
var Header = []string{
	"file_name", "total_records", "invalid_value_type", "invalid_timestamp",
	"outlier_%", "missing_%", "sensors_with_gaps", "total_missing_hours",
}

// FailedReport builds the sentinel-filled row emitted when fileName could
// not be validated at all: a partial row with error columns populated and
// numeric fields set to sentinel -1.
func FailedReport(fileName string, cause error) Report {
	errJSON, _ := json.Marshal(map[string]string{"error": cause.Error()})
	return Report{
		FileName:          fileName,
		TotalRecords:      sentinel,
		InvalidValueType:  sentinel,
		InvalidTimestamp:  sentinel,
		OutlierPct:        string(errJSON),
		MissingPct:        string(errJSON),
		SensorsWithGaps:   sentinel,
		TotalMissingHours: sentinel,
	}
}

// Validate computes a Report for one transformed batch.
func Validate(fileName string, b *batch.ReadingBatch, cfg sensorconfig.SensorConfig) Report {
	r := Report{FileName: fileName, TotalRecords: b.Len()}

	for i := range b.SensorID {
		if b.Value[i] == nil {
			r.InvalidValueType++
		}
		if _, ok := tsproc.Parse(b.Timestamp[i]); !ok {
			r.InvalidTimestamp++
		}
	}

	outlierPct, missingPct := perTypeRates(b, cfg)
	for rt, pct := range outlierPct {
		if pct > 0 {
			log.Notef("quality: %v", &ValidationAnomaly{FileName: fileName, ReadingType: rt, OutlierPct: pct})
		}
	}
	outlierJSON, _ := json.Marshal(outlierPct)
	missingJSON, _ := json.Marshal(missingPct)
	r.OutlierPct = string(outlierJSON)
	r.MissingPct = string(missingJSON)

	r.SensorsWithGaps, r.TotalMissingHours = scanHourlyGaps(b)

	return r
}

func perTypeRates(b *batch.ReadingBatch, cfg sensorconfig.SensorConfig) (outlier, missing map[string]float64) {
	type counts struct{ total, outOfRange, null int }
	byType := map[string]*counts{}

	for i, rt := range b.ReadingType {
		c, ok := byType[rt]
		if !ok {
			c = &counts{}
			byType[rt] = c
		}
		c.total++
		v := b.Value[i]
		if v == nil {
			c.null++
			continue
		}
		t := cfg.Lookup(rt)
		if *v < t.Min || *v > t.Max {
			c.outOfRange++
		}
	}

	outlier = map[string]float64{}
	missing = map[string]float64{}
	for rt, c := range byType {
		if c.total == 0 {
			continue
		}
		outlier[rt] = round2(100 * float64(c.outOfRange) / float64(c.total))
		missing[rt] = round2(100 * float64(c.null) / float64(c.total))
	}
	return outlier, missing
}

// scanHourlyGaps counts, for each sensor, the hourly buckets in its
// [minHour, maxHour] span that hold no reading: the span length minus the
// number of distinct hour-truncated timestamps, without materializing the
// expected hour sequence.
func scanHourlyGaps(b *batch.ReadingBatch) (sensorsWithGaps, totalMissingHours int) {
	bySensor := map[string][]time.Time{}
	for i, sensorID := range b.SensorID {
		t, ok := tsproc.Parse(b.Timestamp[i])
		if !ok {
			continue
		}
		bySensor[sensorID] = append(bySensor[sensorID], t.Truncate(time.Hour))
	}

	for _, hours := range bySensor {
		missing := missingHoursFor(hours)
		if missing > 0 {
			sensorsWithGaps++
			totalMissingHours += missing
		}
	}
	return sensorsWithGaps, totalMissingHours
}

// missingHoursFor returns how many hourly buckets between hours' min and
// max (inclusive) have no matching actual reading.
func missingHoursFor(hours []time.Time) int {
	if len(hours) == 0 {
		return 0
	}
	sort.Slice(hours, func(i, j int) bool { return hours[i].Before(hours[j]) })

	distinct := map[time.Time]bool{}
	for _, h := range hours {
		distinct[h] = true
	}

	min, max := hours[0], hours[len(hours)-1]
	expected := int(max.Sub(min)/time.Hour) + 1
	return expected - len(distinct)
}

func round2(v float64) float64 {
	return float64(int(v*100+0.5)) / 100
}

// Row renders r as a CSV record in Header's column order.
func Row(r Report) []string {
	return []string{
		r.FileName,
		fmt.Sprintf("%d", r.TotalRecords),
		fmt.Sprintf("%d", r.InvalidValueType),
		fmt.Sprintf("%d", r.InvalidTimestamp),
		r.OutlierPct,
		r.MissingPct,
		fmt.Sprintf("%d", r.SensorsWithGaps),
		fmt.Sprintf("%d", r.TotalMissingHours),
	}
}
