package scanner

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/theexplorist/agri-pipeline/internal/checkpoint"
)

func TestListNewFilesMissingDirIsEmpty(t *testing.T) {
	store := checkpoint.Open(filepath.Join(t.TempDir(), "checkpoints.json"))
	files, err := ListNewFiles(filepath.Join(t.TempDir(), "does-not-exist"), store)
	require.NoError(t, err)
	require.Empty(t, files)
}

func TestListNewFilesSortedAndFiltered(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.parquet", "a.parquet", "c.parquet", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o640))
	}

	store := checkpoint.Open(filepath.Join(t.TempDir(), "checkpoints.json"))
	require.NoError(t, store.Set("b.parquet", checkpoint.Record{
		Status: checkpoint.StatusSuccess, ProcessedAt: time.Now().UTC(),
	}))

	files, err := ListNewFiles(dir, store)
	require.NoError(t, err)
	require.Equal(t, []string{
		filepath.Join(dir, "a.parquet"),
		filepath.Join(dir, "c.parquet"),
	}, files)
}

func TestListNewFilesQuarantinedStillListed(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.parquet"), []byte("x"), 0o640))

	store := checkpoint.Open(filepath.Join(t.TempDir(), "checkpoints.json"))
	require.NoError(t, store.Set("bad.parquet", checkpoint.Record{Status: checkpoint.StatusQuarantined}))

	files, err := ListNewFiles(dir, store)
	require.NoError(t, err)
	require.Len(t, files, 1)
}
