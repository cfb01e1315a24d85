package clean

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/theexplorist/agri-pipeline/internal/sensorconfig"
	"github.com/theexplorist/agri-pipeline/pkg/batch"
)

func TestDropDuplicatesKeepsFirst(t *testing.T) {
	b := batch.NewReadingBatch(2)
	b.AppendRow(batch.Row{SensorID: "s1", Timestamp: "t1", ReadingType: "temperature", Value: batch.Float(10), Battery: batch.Float(90)})
	b.AppendRow(batch.Row{SensorID: "s1", Timestamp: "t1", ReadingType: "temperature", Value: batch.Float(99), Battery: batch.Float(10)})

	out := dropDuplicates(b)
	require.Equal(t, 1, out.Len())
	require.Equal(t, 10.0, *out.Value[0])
}

func TestDropNullKeys(t *testing.T) {
	b := batch.NewReadingBatch(2)
	b.AppendRow(batch.Row{SensorID: "s1", Timestamp: "t1", ReadingType: "temperature", Value: batch.Float(1), Battery: batch.Float(1)})
	b.AppendRow(batch.Row{SensorID: "", Timestamp: "t1", ReadingType: "temperature", Value: batch.Float(1), Battery: batch.Float(1)})

	out := dropNullKeys(b)
	require.Equal(t, 1, out.Len())
}

func TestImputeMeansFillsNulls(t *testing.T) {
	b := batch.NewReadingBatch(3)
	b.AppendRow(batch.Row{SensorID: "s1", Timestamp: "t1", ReadingType: "temperature", Value: batch.Float(10), Battery: batch.Float(80)})
	b.AppendRow(batch.Row{SensorID: "s1", Timestamp: "t2", ReadingType: "temperature", Value: batch.Float(20), Battery: nil})
	b.AppendRow(batch.Row{SensorID: "s1", Timestamp: "t3", ReadingType: "temperature", Value: nil, Battery: batch.Float(90)})

	imputeMeans(b)
	require.Equal(t, 15.0, *b.Value[2])
	require.Equal(t, 85.0, *b.Battery[1])
}

func TestImputeMeansLeavesAllNullColumnUntouched(t *testing.T) {
	b := batch.NewReadingBatch(2)
	b.AppendRow(batch.Row{SensorID: "s1", Timestamp: "t1", ReadingType: "temperature", Value: nil, Battery: batch.Float(1)})
	b.AppendRow(batch.Row{SensorID: "s1", Timestamp: "t2", ReadingType: "temperature", Value: nil, Battery: batch.Float(1)})

	imputeMeans(b)
	require.Nil(t, b.Value[0])
	require.Nil(t, b.Value[1])
}

func TestCorrectOutliersZScoreReplacesWithMedian(t *testing.T) {
	b := batch.NewReadingBatch(5)
	vals := []float64{10, 11, 9, 10, 100}
	for i, v := range vals {
		b.AppendRow(batch.Row{SensorID: "s1", Timestamp: "t", ReadingType: "temperature", Value: batch.Float(v), Battery: batch.Float(90)})
		_ = i
	}
	correctOutliers(b, sensorconfig.SensorConfig{})
	require.Equal(t, 10.0, *b.Value[4])
	require.Equal(t, 10.0, *b.Value[0])
}

func TestCorrectOutliersSmallGroupClips(t *testing.T) {
	b := batch.NewReadingBatch(2)
	b.AppendRow(batch.Row{SensorID: "s1", Timestamp: "t1", ReadingType: "humidity", Value: batch.Float(999), Battery: batch.Float(1)})
	b.AppendRow(batch.Row{SensorID: "s2", Timestamp: "t2", ReadingType: "humidity", Value: batch.Float(50), Battery: batch.Float(1)})

	cfg := sensorconfig.SensorConfig{"humidity": {Min: 0, Max: 100}}
	correctOutliers(b, cfg)
	require.Equal(t, 100.0, *b.Value[0])
	require.Equal(t, 50.0, *b.Value[1])
}

func TestCorrectOutliersZeroSigmaIsNoOp(t *testing.T) {
	b := batch.NewReadingBatch(5)
	for i := 0; i < 5; i++ {
		b.AppendRow(batch.Row{SensorID: "s1", Timestamp: "t", ReadingType: "temperature", Value: batch.Float(10), Battery: batch.Float(90)})
	}
	correctOutliers(b, sensorconfig.SensorConfig{})
	for _, v := range b.Value {
		require.Equal(t, 10.0, *v)
	}
}

func TestCleanFullPipeline(t *testing.T) {
	b := batch.NewReadingBatch(2)
	b.AppendRow(batch.Row{SensorID: "s1", Timestamp: "t1", ReadingType: "temperature", Value: batch.Float(25), Battery: batch.Float(90)})
	b.AppendRow(batch.Row{SensorID: "s1", Timestamp: "t1", ReadingType: "temperature", Value: batch.Float(25), Battery: batch.Float(90)})

	out := Clean(b, sensorconfig.SensorConfig{})
	require.Equal(t, 1, out.Len())
}
