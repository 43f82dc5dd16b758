package experiment

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"equity-intraday-lab/internal/domain"
)

func record(id, symbol string, rmse float64, createdAt time.Time) domain.ExperimentRecord {
	return domain.ExperimentRecord{
		ExperimentID: id,
		Symbol:       symbol,
		Timeframe:    "5m",
		Families:     []string{"baseline"},
		Metrics:      map[string]domain.EvalMetrics{"baseline": {RMSE: rmse, MAE: rmse / 2}},
		Artifacts:    map[string]any{"rows": 400},
		CreatedAt:    createdAt,
	}
}

func TestLog_WritesOneFilePerExperiment(t *testing.T) {
	r := New(t.TempDir(), zerolog.Nop())

	path, err := r.Log(record("exp-a", "TCS.NS", 2.5, time.Now().UTC()))
	require.NoError(t, err)
	assert.Contains(t, path, "exp-a.json")

	records, err := r.List()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "exp-a", records[0].ExperimentID)
	assert.Equal(t, 2.5, records[0].Metrics["baseline"].RMSE)
}

func TestLog_MissingIDRejected(t *testing.T) {
	r := New(t.TempDir(), zerolog.Nop())
	_, err := r.Log(domain.ExperimentRecord{})
	assert.Error(t, err)
}

func TestList_LexicalOrder(t *testing.T) {
	r := New(t.TempDir(), zerolog.Nop())
	now := time.Now().UTC()

	for _, id := range []string{"exp-c", "exp-a", "exp-b"} {
		_, err := r.Log(record(id, "TCS.NS", 1, now))
		require.NoError(t, err)
	}

	records, err := r.List()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "exp-a", records[0].ExperimentID)
	assert.Equal(t, "exp-b", records[1].ExperimentID)
	assert.Equal(t, "exp-c", records[2].ExperimentID)
}

func TestList_EmptyDirectory(t *testing.T) {
	r := New(t.TempDir(), zerolog.Nop())
	records, err := r.List()
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestFindBest_MinimumRMSEWins(t *testing.T) {
	r := New(t.TempDir(), zerolog.Nop())
	now := time.Now().UTC()

	_, err := r.Log(record("exp-a", "TCS.NS", 3.0, now))
	require.NoError(t, err)
	_, err = r.Log(record("exp-b", "TCS.NS", 1.5, now))
	require.NoError(t, err)
	_, err = r.Log(record("exp-c", "TCS.NS", 2.0, now))
	require.NoError(t, err)

	best, err := r.FindBest("TCS.NS", "5m")
	require.NoError(t, err)
	require.NotNil(t, best)
	assert.Equal(t, "exp-b", best.ExperimentID)
}

func TestFindBest_TieBrokenByRecency(t *testing.T) {
	r := New(t.TempDir(), zerolog.Nop())
	earlier := time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC)
	later := time.Date(2025, 11, 2, 0, 0, 0, 0, time.UTC)

	_, err := r.Log(record("exp-old", "TCS.NS", 2.0, earlier))
	require.NoError(t, err)
	_, err = r.Log(record("exp-new", "TCS.NS", 2.0, later))
	require.NoError(t, err)

	best, err := r.FindBest("TCS.NS", "5m")
	require.NoError(t, err)
	require.NotNil(t, best)
	assert.Equal(t, "exp-new", best.ExperimentID)
}

func TestFindBest_FiltersSymbolAndTimeframe(t *testing.T) {
	r := New(t.TempDir(), zerolog.Nop())
	now := time.Now().UTC()

	_, err := r.Log(record("exp-tcs", "TCS.NS", 0.5, now))
	require.NoError(t, err)
	_, err = r.Log(record("exp-rel", "RELIANCE.NS", 0.1, now))
	require.NoError(t, err)

	best, err := r.FindBest("TCS.NS", "5m")
	require.NoError(t, err)
	require.NotNil(t, best)
	assert.Equal(t, "exp-tcs", best.ExperimentID)

	none, err := r.FindBest("INFY.NS", "5m")
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestFindBest_UsesBestFamilyWithinRecord(t *testing.T) {
	r := New(t.TempDir(), zerolog.Nop())
	now := time.Now().UTC()

	multi := domain.ExperimentRecord{
		ExperimentID: "exp-multi",
		Symbol:       "TCS.NS",
		Timeframe:    "5m",
		Metrics: map[string]domain.EvalMetrics{
			"baseline":      {RMSE: 9.0},
			"random_forest": {RMSE: 0.8},
		},
		CreatedAt: now,
	}
	_, err := r.Log(multi)
	require.NoError(t, err)
	_, err = r.Log(record("exp-single", "TCS.NS", 1.0, now))
	require.NoError(t, err)

	best, err := r.FindBest("TCS.NS", "5m")
	require.NoError(t, err)
	require.NotNil(t, best)
	assert.Equal(t, "exp-multi", best.ExperimentID)
}
