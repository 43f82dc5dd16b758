package version

import (
	"fmt"

	"equity-intraday-lab/internal/domain"
	"equity-intraday-lab/internal/store"
)

// RunLister lists dataset runs in a layer partition. Implemented by the
// parquet store.
type RunLister interface {
	ListRuns(layer store.Layer, namespace, symbol, timeframe string) ([]string, error)
}

// Control is the dataset control surface consumed by outer layers: list
// runs, activate an override, clear and enumerate overrides.
type Control struct {
	registry *Registry
	runs     RunLister
}

// NewControl wires the registry to a run lister.
func NewControl(registry *Registry, runs RunLister) *Control {
	return &Control{registry: registry, runs: runs}
}

// ListRuns lists run IDs for (symbol, timeframe) in the given layer.
func (c *Control) ListRuns(layer store.Layer, namespace, symbol, timeframe string) ([]string, error) {
	return c.runs.ListRuns(layer, namespace, symbol, timeframe)
}

// Activate pins (namespace, runID) as the canonical dataset version for
// (symbol, timeframe). Fails with ErrRunNotFound when the silver layer has
// no such run.
func (c *Control) Activate(symbol, timeframe, namespace, runID string) (Override, error) {
	runs, err := c.runs.ListRuns(store.LayerSilver, namespace, symbol, timeframe)
	if err != nil {
		return Override{}, err
	}

	found := false
	for _, r := range runs {
		if r == runID {
			found = true
			break
		}
	}
	if !found {
		return Override{}, fmt.Errorf("%w: %s/%s %s run %s", ErrRunNotFound, symbol, timeframe, namespace, runID)
	}

	v := domain.DatasetVersion{Namespace: namespace, Symbol: symbol, Timeframe: timeframe, RunID: runID}
	o := Override{DatasetVersion: v.String(), Namespace: namespace, RunID: runID}
	if err := c.registry.SetDatasetOverride(symbol, timeframe, o); err != nil {
		return Override{}, err
	}
	return o, nil
}

// Clear removes the override for (symbol, timeframe).
func (c *Control) Clear(symbol, timeframe string) error {
	return c.registry.ClearDatasetOverride(symbol, timeframe)
}

// List returns all active overrides.
func (c *Control) List() map[string]Override {
	return c.registry.ListDatasetOverrides()
}
