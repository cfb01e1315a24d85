// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package validator performs a cheap, metadata-only check of an input
// file's columns.
package validator

import (
	"fmt"

	"github.com/theexplorist/agri-pipeline/pkg/batch"
)

// Result is the outcome of validating a file's schema.
type Result struct {
	OK      bool
	Missing []string
	Extra   []string
}

// SchemaMismatch is returned by Validate's caller-visible error path when a
// file cannot even be opened as Parquet; it is file-level and triggers
// quarantine.
type SchemaMismatch struct {
	Path string
	Err  error
}

func (e *SchemaMismatch) Error() string {
	return fmt.Sprintf("schema mismatch in %q: %v", e.Path, e.Err)
}

func (e *SchemaMismatch) Unwrap() error { return e.Err }

var required = batch.RequiredColumns

// Validate inspects filePath's Parquet schema/metadata only (no row group is
// decoded) and reports which required columns are missing and which present
// columns are unrecognized extras. Missing columns fail validation; extra
// columns are informational only.
func Validate(filePath string) (Result, error) {
	cols, err := batch.PeekColumns(filePath)
	if err != nil {
		return Result{}, &SchemaMismatch{Path: filePath, Err: err}
	}

	present := make(map[string]bool, len(cols))
	for _, c := range cols {
		present[c] = true
	}

	requiredSet := make(map[string]bool, len(required))
	for _, c := range required {
		requiredSet[c] = true
	}

	var missing, extra []string
	for _, c := range required {
		if !present[c] {
			missing = append(missing, c)
		}
	}
	for _, c := range cols {
		if !requiredSet[c] {
			extra = append(extra, c)
		}
	}

	return Result{OK: len(missing) == 0, Missing: missing, Extra: extra}, nil
}
