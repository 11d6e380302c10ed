package history

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deadsnakes/internal/relics"
	"deadsnakes/internal/slogutil"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := OpenStore(t.TempDir(), slogutil.NewDiscardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func sampleResult(runID string, at time.Time) *relics.ScanResult {
	findings := []relics.Finding{
		{File: "a.py", Line: 1, Column: 0, Kind: relics.KindPrintStatement, Snippet: `print "x"`},
		{File: "b.py", Line: 2, Column: 4, Kind: relics.KindXrange, Snippet: "xrange"},
	}
	return &relics.ScanResult{
		RunID:     runID,
		Root:      "/src/app",
		ScannedAt: at,
		Duration:  "12ms",
		Findings:  findings,
		Summary: relics.ScanSummary{
			TotalFindings:   2,
			ByKind:          map[relics.Kind]int{relics.KindPrintStatement: 1, relics.KindXrange: 1},
			FilesScanned:    3,
			FilesWithRelics: 2,
		},
	}
}

func TestRecordAndListRuns(t *testing.T) {
	store := openTestStore(t)

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store.RecordRun(sampleResult("run-1", base)))
	require.NoError(t, store.RecordRun(sampleResult("run-2", base.Add(time.Hour))))

	runs, err := store.ListRuns(10)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	// Newest first.
	assert.Equal(t, "run-2", runs[0].ID)
	assert.Equal(t, "run-1", runs[1].ID)
	assert.Equal(t, 2, runs[0].TotalFindings)
	assert.Equal(t, 3, runs[0].FilesScanned)
	assert.Equal(t, base.Add(time.Hour), runs[0].ScannedAt)
}

func TestListRunsLimit(t *testing.T) {
	store := openTestStore(t)

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"run-1", "run-2", "run-3"} {
		require.NoError(t, store.RecordRun(sampleResult(id, base.Add(time.Duration(i)*time.Minute))))
	}

	runs, err := store.ListRuns(2)
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func TestRunFindingsRoundTrip(t *testing.T) {
	store := openTestStore(t)

	result := sampleResult("run-1", time.Now().UTC())
	require.NoError(t, store.RecordRun(result))

	findings, err := store.RunFindings("run-1")
	require.NoError(t, err)
	assert.Equal(t, result.Findings, findings)
}

func TestDuplicateRunIDRejected(t *testing.T) {
	store := openTestStore(t)

	result := sampleResult("run-1", time.Now().UTC())
	require.NoError(t, store.RecordRun(result))
	assert.Error(t, store.RecordRun(result))
}

func TestEmptyStore(t *testing.T) {
	store := openTestStore(t)

	runs, err := store.ListRuns(5)
	require.NoError(t, err)
	assert.Empty(t, runs)
}
