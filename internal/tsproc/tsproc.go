// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package tsproc performs permissive timestamp parsing, canonicalization
// and derives the IST column.
package tsproc

import (
	"fmt"
	"time"

	"github.com/theexplorist/agri-pipeline/pkg/batch"
	"github.com/theexplorist/agri-pipeline/pkg/log"
)

const (
	// CanonicalLayout is the output format for timestamp and timestamp_ist.
	CanonicalLayout = "2006-01-02T15:04:05"

	istOffset = 5*time.Hour + 30*time.Minute
)

// layouts are tried in order; the first that parses wins.
var layouts = []string{
	time.RFC3339,
	CanonicalLayout,
	"2006-01-02 15:04:05",
	"01/02/2006 03:04 PM",
	"2006-01-02",
}

// ParseError reports a timestamp value that matched none of layouts. It is
// row-level: the row carrying it is dropped rather than failing the file.
type ParseError struct {
	Value string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("timestamp %q matches no known layout", e.Value)
}

// Parse attempts to parse s against every known layout, treating the
// result as UTC when the layout carries no zone offset. It reports false
// when no layout matches; the caller drops the row.
func Parse(s string) (time.Time, bool) {
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// Process drops rows whose timestamp cannot be parsed, then overwrites
// timestamp with its canonical string form and fills timestamp_ist
// (timestamp + 5h30m, same format). Returns a (possibly shorter) batch.
func Process(b *batch.ReadingBatch) *batch.ReadingBatch {
	var keep []int
	parsed := make([]time.Time, 0, b.Len())
	for i, raw := range b.Timestamp {
		t, ok := Parse(raw)
		if !ok {
			log.Debugf("tsproc: dropping row: %v", &ParseError{Value: raw})
			continue
		}
		keep = append(keep, i)
		parsed = append(parsed, t)
	}

	out := b.Select(keep)
	out.EnsureDerivedColumns()
	for i, t := range parsed {
		out.Timestamp[i] = t.Format(CanonicalLayout)
		out.TimestampIST[i] = t.Add(istOffset).Format(CanonicalLayout)
	}
	return out
}
