package metrics

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFlushWritesOneFilePerStage(t *testing.T) {
	dir := t.TempDir()
	r := NewRecorder(dir)
	r.Record(StageSummary{Stage: "ingest", Total: 3, Succeeded: 2, Quarantined: 1})
	r.Record(StageSummary{Stage: "transform", Total: 2, Succeeded: 2})

	require.NoError(t, r.Flush())

	ingestData, err := os.ReadFile(filepath.Join(dir, "ingest_metrics.json"))
	require.NoError(t, err)
	require.Contains(t, string(ingestData), `"stage": "ingest"`)
	require.NotContains(t, string(ingestData), `"stage": "transform"`)

	transformData, err := os.ReadFile(filepath.Join(dir, "transform_metrics.json"))
	require.NoError(t, err)
	require.Contains(t, string(transformData), `"stage": "transform"`)
}
