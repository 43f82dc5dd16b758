// Package features is the read-only façade over silver datasets.
package features

import (
	"sort"
	"time"

	"equity-intraday-lab/internal/domain"
	"equity-intraday-lab/internal/store"
	"equity-intraday-lab/internal/version"
)

// FeatureStore reads silver frames with lookback and time-window slicing.
// It consults the version registry first: an active override replaces the
// "read latest" step with a specific-run read. The feature store never
// writes; the pipeline exclusively owns the layer directories.
type FeatureStore struct {
	store            *store.Store
	registry         *version.Registry
	defaultNamespace string
}

// New creates a feature store. registry may be nil when overrides are not in
// play (tests).
func New(st *store.Store, registry *version.Registry, defaultNamespace string) *FeatureStore {
	return &FeatureStore{store: st, registry: registry, defaultNamespace: defaultNamespace}
}

// resolve applies the registry override unless the caller pinned an explicit
// namespace or run.
func (f *FeatureStore) resolve(symbol, timeframe, namespace, runID string) (string, string) {
	if namespace == "" {
		namespace = f.defaultNamespace
	}
	if runID != "" {
		return namespace, runID
	}
	if f.registry != nil {
		if o, ok := f.registry.GetDatasetOverride(symbol, timeframe); ok {
			return o.Namespace, o.RunID
		}
	}
	return namespace, ""
}

// LoadFeatures reads the latest (or overridden, or pinned) silver frame
// sorted by start_ts, truncated to the last lookback rows when lookback > 0.
// Returns nil when no silver file exists.
func (f *FeatureStore) LoadFeatures(symbol, timeframe string, lookback int, namespace, runID string) ([]domain.SilverRow, error) {
	ns, run := f.resolve(symbol, timeframe, namespace, runID)

	rows, _, err := store.ReadLatest[domain.SilverRow](f.store, store.LayerSilver, ns, symbol, timeframe, run)
	if err != nil || rows == nil {
		return nil, err
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].StartTS < rows[j].StartTS })

	if lookback > 0 && len(rows) > lookback {
		rows = rows[len(rows)-lookback:]
	}
	return rows, nil
}

// LoadTimeWindow loads features and filters them to
// asOf - windowMinutes <= start_ts <= asOf. Returns nil when the slice is
// empty.
func (f *FeatureStore) LoadTimeWindow(symbol, timeframe string, windowMinutes int, asOf time.Time, namespace, runID string) ([]domain.SilverRow, error) {
	rows, err := f.LoadFeatures(symbol, timeframe, 0, namespace, runID)
	if err != nil || rows == nil {
		return nil, err
	}

	from := asOf.Add(-time.Duration(windowMinutes) * time.Minute).UnixMilli()
	to := asOf.UnixMilli()

	var out []domain.SilverRow
	for _, r := range rows {
		if r.StartTS >= from && r.StartTS <= to {
			out = append(out, r)
		}
	}
	return out, nil
}
