// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package sensorconfig loads and validates SensorConfig, the process-wide,
// read-only mapping from reading_type to its calibration and valid-range
// thresholds. Validation follows an embed-a-schema-and-compile pattern
// rather than hand-rolled field checks.
package sensorconfig

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/url"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*
var schemaFiles embed.FS

func loadSchemaFile(s string) (io.ReadCloser, error) {
	u, err := url.Parse(s)
	if err != nil {
		return nil, err
	}
	return schemaFiles.Open(u.Path)
}

func init() {
	jsonschema.Loaders["embedFS"] = loadSchemaFile
}

// ConfigError wraps a fatal error in loading or validating sensor_config.json
// and aborts the run.
type ConfigError struct {
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("sensor config %q: %v", e.Path, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// Calibration is the affine correction applied to a reading_type's value:
// value' = value*Multiplier + Offset.
type Calibration struct {
	Multiplier float64 `json:"multiplier"`
	Offset     float64 `json:"offset"`
}

// Threshold is one reading_type's entry in SensorConfig: its valid range and
// calibration constants. Calibration is a pointer because the schema only
// requires min/max: an entry that omits calibration decodes with a nil
// pointer, which Load then fills with the identity correction {1,0} rather
// than leaving it as JSON's zero value {0,0} (which would zero every
// reading of that type).
type Threshold struct {
	Min         float64      `json:"min"`
	Max         float64      `json:"max"`
	Calibration *Calibration `json:"calibration,omitempty"`
}

// identityCalibration is the default applied when a reading_type's entry
// omits calibration, or when the reading_type itself is absent from the
// config.
var identityCalibration = &Calibration{Multiplier: 1, Offset: 0}

// defaultThreshold is returned by Lookup for a reading_type absent from the
// config: identity calibration, unbounded range.
var defaultThreshold = Threshold{
	Min:         math.Inf(-1),
	Max:         math.Inf(1),
	Calibration: identityCalibration,
}

// SensorConfig is the process-wide, read-only mapping from reading_type to
// its Threshold, loaded once per run.
type SensorConfig map[string]Threshold

// Lookup returns the Threshold for readingType, or defaultThreshold if the
// type is unknown to the config.
func (c SensorConfig) Lookup(readingType string) Threshold {
	if t, ok := c[readingType]; ok {
		return t
	}
	return defaultThreshold
}

// Load reads, schema-validates and decodes sensor_config.json from path.
func Load(path string) (SensorConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigError{Path: path, Err: err}
	}

	schema, err := jsonschema.Compile("embedFS://schemas/sensor-config.schema.json")
	if err != nil {
		return nil, &ConfigError{Path: path, Err: fmt.Errorf("compile schema: %w", err)}
	}

	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, &ConfigError{Path: path, Err: fmt.Errorf("parse json: %w", err)}
	}
	if err := schema.Validate(generic); err != nil {
		return nil, &ConfigError{Path: path, Err: fmt.Errorf("validate: %w", err)}
	}

	var cfg SensorConfig
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return nil, &ConfigError{Path: path, Err: fmt.Errorf("decode: %w", err)}
	}

	for rt, t := range cfg {
		if t.Calibration == nil {
			t.Calibration = identityCalibration
			cfg[rt] = t
		}
	}

	return cfg, nil
}
