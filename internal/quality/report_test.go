package quality

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/theexplorist/agri-pipeline/internal/sensorconfig"
	"github.com/theexplorist/agri-pipeline/pkg/batch"
)

func TestValidateCountsInvalidValueAndTimestamp(t *testing.T) {
	b := batch.NewReadingBatch(2)
	b.AppendRow(batch.Row{SensorID: "s1", Timestamp: "2025-06-05T10:00:00", ReadingType: "temperature", Value: nil, Battery: batch.Float(1)})
	b.AppendRow(batch.Row{SensorID: "s1", Timestamp: "not-a-date", ReadingType: "temperature", Value: batch.Float(1), Battery: batch.Float(1)})

	r := Validate("f.parquet", b, sensorconfig.SensorConfig{})
	require.Equal(t, 1, r.InvalidValueType)
	require.Equal(t, 1, r.InvalidTimestamp)
}

func TestValidateOutlierAndMissingPct(t *testing.T) {
	b := batch.NewReadingBatch(2)
	b.AppendRow(batch.Row{SensorID: "s1", Timestamp: "2025-06-05T10:00:00", ReadingType: "temperature", Value: batch.Float(999), Battery: batch.Float(1)})
	b.AppendRow(batch.Row{SensorID: "s1", Timestamp: "2025-06-05T11:00:00", ReadingType: "temperature", Value: batch.Float(25), Battery: batch.Float(1)})

	cfg := sensorconfig.SensorConfig{"temperature": {Min: 0, Max: 50}}
	r := Validate("f.parquet", b, cfg)
	require.Contains(t, r.OutlierPct, `"temperature":50`)
}

func TestScanHourlyGapsDetectsMissingHour(t *testing.T) {
	b := batch.NewReadingBatch(3)
	b.AppendRow(batch.Row{SensorID: "s1", Timestamp: "2025-06-05T10:00:00", ReadingType: "temperature", Value: batch.Float(1), Battery: batch.Float(1)})
	b.AppendRow(batch.Row{SensorID: "s1", Timestamp: "2025-06-05T11:00:00", ReadingType: "temperature", Value: batch.Float(1), Battery: batch.Float(1)})
	b.AppendRow(batch.Row{SensorID: "s1", Timestamp: "2025-06-05T13:00:00", ReadingType: "temperature", Value: batch.Float(1), Battery: batch.Float(1)})

	gaps, missingHours := scanHourlyGaps(b)
	require.Equal(t, 1, gaps)
	require.Equal(t, 1, missingHours)
}

func TestFailedReportUsesSentinel(t *testing.T) {
	r := FailedReport("broken.parquet", errors.New("corrupt file"))
	require.Equal(t, -1, r.TotalRecords)
	require.Contains(t, r.OutlierPct, "corrupt file")
}
