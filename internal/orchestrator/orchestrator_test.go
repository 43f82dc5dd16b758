package orchestrator

import (
	"context"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"equity-intraday-lab/internal/domain"
	"equity-intraday-lab/internal/experiment"
	"equity-intraday-lab/internal/features"
	"equity-intraday-lab/internal/store"
	"equity-intraday-lab/internal/train"
)

func oscillatingRows(n int) []domain.SilverRow {
	rows := make([]domain.SilverRow, n)
	for i := 0; i < n; i++ {
		base := 3252 + 40*math.Sin(float64(i)/15)
		close := base + 2*math.Sin(float64(i)/7)
		rows[i] = domain.SilverRow{
			StartTS:       int64(i) * 300_000,
			Open:          close - 0.2,
			High:          close + 0.5,
			Low:           close - 0.5,
			Close:         close,
			Volume:        100000,
			Return1:       0.0002,
			RollingMean10: base - 2,
			RollingStd10:  1.2,
			VolumeMA10:    100000,
			Momentum10:    5,
			EMA20:         base - 1,
		}
	}
	return rows
}

func testOrchestrator(t *testing.T, rows int) (*Orchestrator, *experiment.Registry) {
	t.Helper()
	st := store.New(t.TempDir(), zerolog.Nop())
	if rows > 0 {
		_, err := store.Write(st, oscillatingRows(rows), store.LayerSilver, "v1", "RELIANCE.NS", "5m", "20251105T091500")
		require.NoError(t, err)
	}

	fs := features.New(st, nil, "v1")
	registry := experiment.New(t.TempDir(), zerolog.Nop())

	o := New(DefaultConfig(), train.DefaultConfig(), fs, registry, nil, zerolog.Nop()).
		WithClock(func() time.Time { return time.Date(2025, 11, 5, 10, 0, 0, 0, time.UTC) })
	return o, registry
}

func TestTrain_WalkForwardExperiment(t *testing.T) {
	o, registry := testOrchestrator(t, 400)

	res, err := o.Train(context.Background(), TrainRequest{
		Symbol:    "RELIANCE.NS",
		Timeframe: "5m",
		Families:  []string{"baseline", "random_forest"},
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(res.ExperimentID, "exp-RELIANCE_NS-5m-"), "experiment id %q", res.ExperimentID)

	baseline, ok := res.Metrics["baseline"]
	require.True(t, ok)
	assert.Greater(t, baseline.MAE, 0.0)

	forest, ok := res.Metrics["random_forest"]
	require.True(t, ok)
	assert.LessOrEqual(t, forest.RMSE, baseline.RMSE, "forest should not lose to the constant baseline")

	// First row dropped for the undefined lag.
	assert.Equal(t, 399, res.Artifacts["rows"])
	assert.Equal(t, 5, res.Artifacts["splits"])
	assert.NotEmpty(t, res.Artifacts["registry_path"])

	records, err := registry.List()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, res.ExperimentID, records[0].ExperimentID)
	assert.Equal(t, []string{"baseline", "random_forest"}, records[0].Families)
}

func TestTrain_InsufficientData(t *testing.T) {
	o, _ := testOrchestrator(t, 50)
	_, err := o.Train(context.Background(), TrainRequest{Symbol: "RELIANCE.NS", Timeframe: "5m"})
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestTrain_MissingDataset(t *testing.T) {
	o, _ := testOrchestrator(t, 0)
	_, err := o.Train(context.Background(), TrainRequest{Symbol: "RELIANCE.NS", Timeframe: "5m"})
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestTrain_UnknownFamilySkipped(t *testing.T) {
	o, registry := testOrchestrator(t, 400)

	res, err := o.Train(context.Background(), TrainRequest{
		Symbol:    "RELIANCE.NS",
		Timeframe: "5m",
		Families:  []string{"baseline", "nonexistent"},
	})
	require.NoError(t, err)

	assert.Len(t, res.Metrics, 1)
	assert.Contains(t, res.Metrics, "baseline")

	records, err := registry.List()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, []string{"baseline"}, records[0].Families)
}

func TestTrain_DefaultsToAllFamilies(t *testing.T) {
	o, _ := testOrchestrator(t, 400)

	res, err := o.Train(context.Background(), TrainRequest{Symbol: "RELIANCE.NS", Timeframe: "5m"})
	require.NoError(t, err)
	assert.Len(t, res.Metrics, len(train.FamilyNames()))
}

func TestWalkForwardValidate_AlertsWithoutRegistryWrites(t *testing.T) {
	o, registry := testOrchestrator(t, 400)

	res, err := o.WalkForwardValidate(context.Background(), TrainRequest{
		Symbol:    "RELIANCE.NS",
		Timeframe: "5m",
		Families:  []string{"baseline"},
	}, 0)
	require.NoError(t, err)

	// One row per split, and a zero threshold flags every one of them.
	require.Len(t, res.Rows, 5)
	assert.Len(t, res.Alerts, 5)
	for i, row := range res.Rows {
		assert.Equal(t, "baseline", row.Family)
		assert.Equal(t, i, row.Split)
		assert.Greater(t, row.RMSEPct, 0.0)
	}

	records, err := registry.List()
	require.NoError(t, err)
	assert.Empty(t, records, "validation must not log experiments")
}

func TestWalkForwardValidate_QuietUnderLooseThreshold(t *testing.T) {
	o, _ := testOrchestrator(t, 400)

	res, err := o.WalkForwardValidate(context.Background(), TrainRequest{
		Symbol:    "RELIANCE.NS",
		Timeframe: "5m",
		Families:  []string{"baseline"},
	}, 10)
	require.NoError(t, err)
	assert.Empty(t, res.Alerts)
}

func TestAggregate_ArithmeticMean(t *testing.T) {
	out := aggregate([]domain.EvalMetrics{
		{MAE: 1, RMSE: 2, MAPE: 3, DirectionalAccuracy: 40},
		{MAE: 3, RMSE: 4, MAPE: 5, DirectionalAccuracy: 60},
	})
	assert.Equal(t, domain.EvalMetrics{MAE: 2, RMSE: 3, MAPE: 4, DirectionalAccuracy: 50}, out)
}
