// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package batch provides the columnar on-disk representation shared by every
// pipeline stage: a struct-of-slices ReadingBatch in memory, and a flat Row
// struct used only at the Parquet encoding boundary, following the same
// NewGenericWriter[T]/NewGenericReader[T] pattern used elsewhere for
// Parquet-tagged structs.
package batch

// Row is the flat, Parquet-tagged shape of a single reading. Raw and
// "processed" files only populate the first five fields; "transformed" files
// populate all of them. Nullable columns use pointer types so a missing
// value round-trips through Parquet as a true null rather than a zero value.
type Row struct {
	SensorID    string   `parquet:"sensor_id,optional"`
	Timestamp   string   `parquet:"timestamp,optional"`
	ReadingType string   `parquet:"reading_type,optional"`
	Value       *float64 `parquet:"value,optional"`
	Battery     *float64 `parquet:"battery_level,optional"`

	TimestampIST     string   `parquet:"timestamp_ist,optional"`
	Date             string   `parquet:"date,optional"`
	DailyAvg         *float64 `parquet:"daily_avg,optional"`
	Rolling7dAvg     *float64 `parquet:"rolling_7d_avg,optional"`
	AnomalousReading *bool    `parquet:"anomalous_reading,optional"`
}

// RequiredColumns is the set of columns every reading must carry before it
// can leave ingestion. Order doesn't matter; it's a set.
var RequiredColumns = []string{
	"sensor_id", "timestamp", "reading_type", "value", "battery_level",
}
