package ingestlog

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewWritesHeaderOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metadata", "ingest_log.csv")
	_, err := New(path)
	require.NoError(t, err)

	_, err = New(path)
	require.NoError(t, err)

	rows := readAll(t, path)
	require.Len(t, rows, 1)
	require.Equal(t, Header, rows[0])
}

func TestAppendAddsRow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ingest_log.csv")
	l, err := New(path)
	require.NoError(t, err)

	require.NoError(t, l.Append(Entry{
		Filename: "day1.parquet", Rows: 10, Status: "success",
		DurationSec: 0.125, Timestamp: time.Date(2025, 6, 5, 10, 0, 0, 0, time.UTC),
	}))
	require.NoError(t, l.Append(Entry{
		Filename: "day2.parquet", Status: "quarantined", Error: "missing column",
		Timestamp: time.Date(2025, 6, 6, 10, 0, 0, 0, time.UTC),
	}))

	rows := readAll(t, path)
	require.Len(t, rows, 3)
	require.Equal(t, "day1.parquet", rows[1][0])
	require.Equal(t, "quarantined", rows[2][2])
	require.Equal(t, "missing column", rows[2][3])
}

func readAll(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}
