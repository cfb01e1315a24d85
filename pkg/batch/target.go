// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package batch

import (
	"fmt"
	"os"
	"path/filepath"
)

// FileTarget writes columnar files to a local filesystem directory, one
// temp-file-then-rename per write so a reader never observes a partial file.
type FileTarget struct {
	path string
}

// NewFileTarget creates (if needed) the target directory and returns a
// FileTarget rooted at it.
func NewFileTarget(path string) (*FileTarget, error) {
	if err := os.MkdirAll(path, 0o750); err != nil {
		return nil, fmt.Errorf("create target directory: %w", err)
	}
	return &FileTarget{path: path}, nil
}

// Path returns the target's root directory.
func (ft *FileTarget) Path() string {
	return ft.path
}

// WriteFile atomically writes data under name within the target directory.
func (ft *FileTarget) WriteFile(name string, data []byte) error {
	return WriteFileAtomic(filepath.Join(ft.path, name), data)
}

// WriteFileAtomic writes data to a temp file beside path and renames it into
// place, so a crash between the two steps leaves either the old file or
// nothing, never a truncated one.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file in %q: %w", dir, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp file %q: %w", tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("sync temp file %q: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file %q: %w", tmpName, err)
	}
	if err := os.Chmod(tmpName, 0o640); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("chmod temp file %q: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename %q to %q: %w", tmpName, path, err)
	}
	return nil
}
