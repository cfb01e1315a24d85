// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package pipelinectx defines Context, the explicit bundle of paths and
// loaded configuration threaded through every stage, instead of
// module-level singletons.
package pipelinectx

import (
	"os"
	"path/filepath"

	"github.com/theexplorist/agri-pipeline/internal/checkpoint"
	"github.com/theexplorist/agri-pipeline/internal/sensorconfig"
)

// Paths holds every filesystem location the pipeline reads from or writes
// to.
type Paths struct {
	RawDir           string
	ProcessedDir     string
	TransformedDir   string
	QuarantineDir    string
	AnalyticsDir     string
	MetadataDir      string
	SensorConfigPath string
	CheckpointPath   string
}

// DefaultPaths returns the filesystem layout's defaults, each overridable
// by the matching environment variable.
func DefaultPaths() Paths {
	return Paths{
		RawDir:           envOr("RAW_DATA_PATH", filepath.Join("data", "raw")),
		ProcessedDir:     envOr("PROCESSED_DATA_PATH", filepath.Join("data", "processed")),
		TransformedDir:   envOr("TRANSFORMED_DATA_PATH", filepath.Join("data", "processed")),
		QuarantineDir:    envOr("QUARANTINE_DATA_PATH", filepath.Join("data", "quarantine")),
		AnalyticsDir:     envOr("ANALYTICS_DATA_PATH", filepath.Join("data", "analytics")),
		MetadataDir:      envOr("METADATA_PATH", "metadata"),
		SensorConfigPath: envOr("SENSOR_CONFIG_PATH", filepath.Join("config", "sensor_config.json")),
		CheckpointPath:   envOr("CHECKPOINT_PATH", filepath.Join("state", "checkpoints.json")),
	}
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

// Context bundles the paths, loaded SensorConfig, and the checkpoint store
// for a single pipeline run. Every stage's Run function takes one of these
// instead of reaching for package-level state.
type Context struct {
	Paths      Paths
	Config     sensorconfig.SensorConfig
	Checkpoint *checkpoint.Store
}

// New loads SensorConfig and opens the checkpoint store for paths, returning
// a ready-to-use Context. A SensorConfig load failure is fatal (ConfigError).
func New(paths Paths) (*Context, error) {
	cfg, err := sensorconfig.Load(paths.SensorConfigPath)
	if err != nil {
		return nil, err
	}
	return &Context{
		Paths:      paths,
		Config:     cfg,
		Checkpoint: checkpoint.Open(paths.CheckpointPath),
	}, nil
}
