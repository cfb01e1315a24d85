// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package scanner discovers new input files that have not yet reached a
// "success" checkpoint outcome.
package scanner

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/theexplorist/agri-pipeline/internal/checkpoint"
)

// ListNewFiles returns all ".parquet" files directly under rawDir whose
// basenames are not recorded with status "success" in store, sorted
// lexicographically by basename. A missing rawDir yields an empty result,
// not an error.
func ListNewFiles(rawDir string, store *checkpoint.Store) ([]string, error) {
	entries, err := os.ReadDir(rawDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var basenames []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if filepath.Ext(e.Name()) != ".parquet" {
			continue
		}
		if store.IsSuccess(e.Name()) {
			continue
		}
		basenames = append(basenames, e.Name())
	}
	sort.Strings(basenames)

	paths := make([]string, len(basenames))
	for i, name := range basenames {
		paths[i] = filepath.Join(rawDir, name)
	}
	return paths, nil
}
