package batch

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func sampleBatch() *ReadingBatch {
	b := NewReadingBatch(2)
	b.AppendRow(Row{
		SensorID: "s1", Timestamp: "2025-06-05T10:00:00", ReadingType: "temperature",
		Value: Float(25.0), Battery: Float(90.0),
	})
	b.AppendRow(Row{
		SensorID: "s2", Timestamp: "2025-06-05T11:00:00", ReadingType: "humidity",
		Value: Float(999.0), Battery: Float(85.0),
	})
	return b
}

func TestWriteReadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "readings.parquet")

	in := sampleBatch()
	require.NoError(t, WriteFile(path, in))

	out, err := ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, in.Len(), out.Len())
	require.Equal(t, in.SensorID, out.SensorID)
	require.Equal(t, in.ReadingType, out.ReadingType)
	require.Equal(t, *in.Value[0], *out.Value[0])
	require.Equal(t, *in.Battery[1], *out.Battery[1])
}

func TestPeekColumnsDoesNotNeedRowGroupDecode(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "readings.parquet")
	require.NoError(t, WriteFile(path, sampleBatch()))

	cols, err := PeekColumns(path)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{
		"sensor_id", "timestamp", "reading_type", "value", "battery_level",
		"timestamp_ist", "date", "daily_avg", "rolling_7d_avg", "anomalous_reading",
	}, cols)
}

func TestSelectPreservesOrder(t *testing.T) {
	b := sampleBatch()
	out := b.Select([]int{1, 0})
	require.Equal(t, []string{"s2", "s1"}, out.SensorID)
}
