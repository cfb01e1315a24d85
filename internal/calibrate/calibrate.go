// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package calibrate applies a per-row affine correction keyed by
// reading_type, looked up from SensorConfig.
package calibrate

import (
	"github.com/theexplorist/agri-pipeline/internal/sensorconfig"
	"github.com/theexplorist/agri-pipeline/pkg/batch"
)

// Calibrate applies value <- value*m + b to every row, using the
// multiplier/offset for its reading_type (identity if the type is unknown
// to cfg). Mutates b in place and returns it.
func Calibrate(b *batch.ReadingBatch, cfg sensorconfig.SensorConfig) *batch.ReadingBatch {
	for i, rt := range b.ReadingType {
		v := b.Value[i]
		if v == nil {
			continue
		}
		c := cfg.Lookup(rt).Calibration
		b.Value[i] = batch.Float(*v*c.Multiplier + c.Offset)
	}
	return b
}
