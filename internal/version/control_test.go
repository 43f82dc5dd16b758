package version

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"equity-intraday-lab/internal/domain"
	"equity-intraday-lab/internal/store"
)

func fixedClock() time.Time {
	return time.Date(2025, 11, 5, 9, 15, 0, 0, time.UTC)
}

func seedSilverRun(t *testing.T, st *store.Store, symbol, timeframe, runID string) {
	t.Helper()
	rows := []domain.SilverRow{{StartTS: 1, Close: 100}}
	_, err := store.Write(st, rows, store.LayerSilver, "v1", symbol, timeframe, runID)
	require.NoError(t, err)
}

func TestControl_ActivateExistingRun(t *testing.T) {
	st := store.New(t.TempDir(), zerolog.Nop())
	registry := NewRegistry(filepath.Join(st.Root(), "registry.json"), zerolog.Nop())
	control := NewControl(registry, st)

	seedSilverRun(t, st, "RELIANCE.NS", "5m", "20251105T091500")

	o, err := control.Activate("RELIANCE.NS", "5m", "v1", "20251105T091500")
	require.NoError(t, err)
	assert.Equal(t, "20251105T091500", o.RunID)
	assert.Equal(t, "v1-RELIANCE_NS-5m-20251105T091500", o.DatasetVersion)

	got, ok := registry.GetDatasetOverride("RELIANCE.NS", "5m")
	require.True(t, ok)
	assert.Equal(t, o, got)
}

func TestControl_ActivateUnknownRun(t *testing.T) {
	st := store.New(t.TempDir(), zerolog.Nop())
	registry := NewRegistry(filepath.Join(st.Root(), "registry.json"), zerolog.Nop())
	control := NewControl(registry, st)

	seedSilverRun(t, st, "RELIANCE.NS", "5m", "20251105T091500")

	_, err := control.Activate("RELIANCE.NS", "5m", "v1", "20990101T000000")
	assert.ErrorIs(t, err, ErrRunNotFound)

	_, ok := registry.GetDatasetOverride("RELIANCE.NS", "5m")
	assert.False(t, ok)
}

func TestControl_ClearAndList(t *testing.T) {
	st := store.New(t.TempDir(), zerolog.Nop())
	registry := NewRegistry(filepath.Join(st.Root(), "registry.json"), zerolog.Nop())
	control := NewControl(registry, st)

	seedSilverRun(t, st, "TCS.NS", "5m", "20251105T091500")
	_, err := control.Activate("TCS.NS", "5m", "v1", "20251105T091500")
	require.NoError(t, err)
	assert.Len(t, control.List(), 1)

	require.NoError(t, control.Clear("TCS.NS", "5m"))
	assert.Empty(t, control.List())
}

func TestControl_ListRuns(t *testing.T) {
	st := store.New(t.TempDir(), zerolog.Nop())
	registry := NewRegistry(filepath.Join(st.Root(), "registry.json"), zerolog.Nop())
	control := NewControl(registry, st)

	seedSilverRun(t, st, "TCS.NS", "5m", "20251105T091500")
	seedSilverRun(t, st, "TCS.NS", "5m", "20251106T091500")

	runs, err := control.ListRuns(store.LayerSilver, "v1", "TCS.NS", "5m")
	require.NoError(t, err)
	assert.Equal(t, []string{"20251105T091500", "20251106T091500"}, runs)
}
