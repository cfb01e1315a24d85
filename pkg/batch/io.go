// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package batch

import (
	"bytes"
	"fmt"
	"io"
	"os"

	pq "github.com/parquet-go/parquet-go"
)

// PeekColumns opens a Parquet file and returns its column names without
// decoding any row group — OpenFile + Schema() reads only the file's
// footer/metadata, which is what makes a schema check cheap even on a large
// file.
func PeekColumns(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %q: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat %q: %w", path, err)
	}

	pf, err := pq.OpenFile(f, info.Size())
	if err != nil {
		return nil, fmt.Errorf("open parquet %q: %w", path, err)
	}

	fields := pf.Schema().Fields()
	names := make([]string, len(fields))
	for i, field := range fields {
		names[i] = field.Name()
	}
	return names, nil
}

// FileReadError wraps a failure to open, decode or schema-match a Parquet
// file. Callers treat it as file-level: the file is quarantined rather than
// aborting the whole stage.
type FileReadError struct {
	Path string
	Err  error
}

func (e *FileReadError) Error() string {
	return fmt.Sprintf("read %q: %v", e.Path, e.Err)
}

func (e *FileReadError) Unwrap() error { return e.Err }

// ReadFile reads every row of a Parquet file into a ReadingBatch.
func ReadFile(path string) (*ReadingBatch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &FileReadError{Path: path, Err: err}
	}
	b, err := ReadBytes(data)
	if err != nil {
		return nil, &FileReadError{Path: path, Err: err}
	}
	return b, nil
}

// ReadBytes reads every row of Parquet-encoded bytes into a ReadingBatch.
func ReadBytes(data []byte) (*ReadingBatch, error) {
	pf, err := pq.OpenFile(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open parquet: %w", err)
	}

	reader := pq.NewGenericReader[Row](pf)
	defer reader.Close()

	rows := make([]Row, pf.NumRows())
	n, err := reader.Read(rows)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("read parquet rows: %w", err)
	}

	return FromRows(rows[:n]), nil
}

// WriteFile writes a ReadingBatch to path as a single Snappy-compressed
// Parquet row group, atomically (temp file + rename).
func WriteFile(path string, b *ReadingBatch) error {
	data, err := WriteBytes(b)
	if err != nil {
		return err
	}
	return WriteFileAtomic(path, data)
}

// WriteBytes encodes a ReadingBatch as Snappy-compressed Parquet bytes.
func WriteBytes(b *ReadingBatch) ([]byte, error) {
	var buf bytes.Buffer

	writer := pq.NewGenericWriter[Row](&buf, pq.Compression(&pq.Snappy))

	if _, err := writer.Write(b.Rows()); err != nil {
		return nil, fmt.Errorf("write parquet rows: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close parquet writer: %w", err)
	}

	return buf.Bytes(), nil
}
