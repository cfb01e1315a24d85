package tsproc

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/theexplorist/agri-pipeline/pkg/batch"
)

func TestProcessCanonicalizesAndDerivesIST(t *testing.T) {
	b := batch.NewReadingBatch(1)
	b.AppendRow(batch.Row{SensorID: "s1", Timestamp: "2025-06-05T10:00:00", ReadingType: "temperature", Value: batch.Float(1), Battery: batch.Float(1)})

	out := Process(b)
	require.Equal(t, 1, out.Len())
	require.Equal(t, "2025-06-05T10:00:00", out.Timestamp[0])
	require.Equal(t, "2025-06-05T15:30:00", out.TimestampIST[0])
}

func TestProcessDropsUnparseableRows(t *testing.T) {
	b := batch.NewReadingBatch(2)
	b.AppendRow(batch.Row{SensorID: "s1", Timestamp: "not-a-timestamp", ReadingType: "temperature", Value: batch.Float(1), Battery: batch.Float(1)})
	b.AppendRow(batch.Row{SensorID: "s1", Timestamp: "2025-06-05T10:00:00", ReadingType: "temperature", Value: batch.Float(1), Battery: batch.Float(1)})

	out := Process(b)
	require.Equal(t, 1, out.Len())
	require.Equal(t, "2025-06-05T10:00:00", out.Timestamp[0])
}

func TestProcessAcceptsAlternateLayouts(t *testing.T) {
	b := batch.NewReadingBatch(2)
	b.AppendRow(batch.Row{SensorID: "s1", Timestamp: "2025-06-05 10:00:00", ReadingType: "temperature", Value: batch.Float(1), Battery: batch.Float(1)})
	b.AppendRow(batch.Row{SensorID: "s1", Timestamp: "06/05/2025 10:00 AM", ReadingType: "temperature", Value: batch.Float(1), Battery: batch.Float(1)})

	out := Process(b)
	require.Equal(t, 2, out.Len())
	require.Equal(t, "2025-06-05T10:00:00", out.Timestamp[0])
	require.Equal(t, "2025-06-05T10:00:00", out.Timestamp[1])
}
