package validator

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	pq "github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/require"
	"github.com/theexplorist/agri-pipeline/pkg/batch"
)

// reducedRow simulates an externally produced raw file missing a required
// column, exercising the quarantine path.
type reducedRow struct {
	SensorID    string  `parquet:"sensor_id"`
	Timestamp   string  `parquet:"timestamp"`
	ReadingType string  `parquet:"reading_type"`
	Value       float64 `parquet:"value"`
}

func writeReducedFile(t *testing.T, rows []reducedRow) string {
	t.Helper()
	var buf bytes.Buffer
	w := pq.NewGenericWriter[reducedRow](&buf)
	_, err := w.Write(rows)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	path := filepath.Join(t.TempDir(), "raw.parquet")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o640))
	return path
}

func TestValidateFailsOnMissingColumn(t *testing.T) {
	path := writeReducedFile(t, []reducedRow{{SensorID: "s1", Timestamp: "2025-06-05T10:00:00", ReadingType: "temperature", Value: 25.0}})

	res, err := Validate(path)
	require.NoError(t, err)
	require.False(t, res.OK)
	require.Contains(t, res.Missing, "battery_level")
}

func TestValidatePassesFullSchema(t *testing.T) {
	b := batch.NewReadingBatch(1)
	b.AppendRow(batch.Row{SensorID: "s1", Timestamp: "2025-06-05T10:00:00", ReadingType: "temperature", Value: batch.Float(25.0), Battery: batch.Float(90.0)})

	path := filepath.Join(t.TempDir(), "raw.parquet")
	require.NoError(t, batch.WriteFile(path, b))

	res, err := Validate(path)
	require.NoError(t, err)
	require.True(t, res.OK)
	require.Empty(t, res.Missing)
}

func TestValidateReportsExtraColumns(t *testing.T) {
	type withExtra struct {
		SensorID     string  `parquet:"sensor_id"`
		Timestamp    string  `parquet:"timestamp"`
		ReadingType  string  `parquet:"reading_type"`
		Value        float64 `parquet:"value"`
		BatteryLevel float64 `parquet:"battery_level"`
		FirmwareRev  string  `parquet:"firmware_rev"`
	}
	var buf bytes.Buffer
	w := pq.NewGenericWriter[withExtra](&buf)
	_, err := w.Write([]withExtra{{SensorID: "s1", Timestamp: "t", ReadingType: "temperature", Value: 1, BatteryLevel: 2, FirmwareRev: "1.0"}})
	require.NoError(t, err)
	require.NoError(t, w.Close())

	path := filepath.Join(t.TempDir(), "raw.parquet")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o640))

	res, err := Validate(path)
	require.NoError(t, err)
	require.True(t, res.OK)
	require.Contains(t, res.Extra, "firmware_rev")
}
