// Package version mints dataset versions and manages active dataset overrides.
package version

import (
	"time"

	"equity-intraday-lab/internal/domain"
)

// Manager mints DatasetVersion identifiers. Two invocations in the same
// second for the same symbol/timeframe are allowed to collide at the second
// granularity; callers needing finer resolution pass an explicit run ID.
// There is no global lock.
type Manager struct {
	defaultNamespace string
	now              func() time.Time
}

// NewManager creates a manager with the given default namespace.
func NewManager(defaultNamespace string) *Manager {
	return &Manager{
		defaultNamespace: defaultNamespace,
		now:              func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets an injectable clock for deterministic tests.
func (m *Manager) WithClock(now func() time.Time) *Manager {
	m.now = now
	return m
}

// BuildVersion mints a DatasetVersion. Empty namespace falls back to the
// default; empty runID mints a UTC second-resolution timestamp token.
func (m *Manager) BuildVersion(symbol, timeframe, namespace, runID string) domain.DatasetVersion {
	if namespace == "" {
		namespace = m.defaultNamespace
	}
	if runID == "" {
		runID = domain.MintRunID(m.now())
	}
	return domain.DatasetVersion{
		Namespace: namespace,
		Symbol:    symbol,
		Timeframe: timeframe,
		RunID:     runID,
	}
}
