package version

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"equity-intraday-lab/internal/observability"
)

// ErrRunNotFound is returned when activating a (namespace, run_id) that does
// not exist in the layer store.
var ErrRunNotFound = errors.New("dataset run not found")

// Override pins a specific dataset run as the canonical version for reads.
type Override struct {
	DatasetVersion string `json:"dataset_version"`
	Namespace      string `json:"namespace"`
	RunID          string `json:"run_id"`
}

// registryFile is the on-disk shape of registry.json.
type registryFile struct {
	Datasets map[string]Override `json:"datasets"` // "SYMBOL:timeframe" keys
}

// Registry persists active dataset overrides in a single JSON file.
// The on-disk file is the shared state; construct one Registry per path and
// pass it explicitly; there is no process-wide singleton. Writers hold an
// exclusive file lock over the (load, modify, persist) sequence; readers
// load lock-free. The whole file is rewritten atomically on each mutation.
type Registry struct {
	path string
	lock *flock.Flock
	obs  *observability.Metrics
	log  zerolog.Logger
}

// NewRegistry creates a registry backed by the JSON file at path.
func NewRegistry(path string, log zerolog.Logger) *Registry {
	return &Registry{
		path: path,
		lock: flock.New(path + ".lock"),
		log:  log.With().Str("component", "version-registry").Logger(),
	}
}

// WithMetrics attaches the metrics bundle. obs may be nil.
func (r *Registry) WithMetrics(obs *observability.Metrics) *Registry {
	r.obs = obs
	return r
}

// Path returns the registry file location.
func (r *Registry) Path() string {
	return r.path
}

func overrideKey(symbol, timeframe string) string {
	return symbol + ":" + timeframe
}

// load reads the registry file. A missing file yields an empty registry; a
// corrupt file is rebuilt as empty with a single warning.
func (r *Registry) load() registryFile {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if !os.IsNotExist(err) {
			r.log.Warn().Err(err).Str("path", r.path).Msg("registry unreadable, starting empty")
		}
		return registryFile{Datasets: map[string]Override{}}
	}

	var f registryFile
	if err := json.Unmarshal(data, &f); err != nil {
		r.log.Warn().Err(err).Str("path", r.path).Msg("corrupt registry, rebuilding empty")
		if r.obs != nil {
			r.obs.RegistryRebuilds.Inc()
		}
		return registryFile{Datasets: map[string]Override{}}
	}
	if f.Datasets == nil {
		f.Datasets = map[string]Override{}
	}
	return f
}

// persist atomically rewrites the registry file (write-temp + rename).
func (r *Registry) persist(f registryFile) error {
	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return fmt.Errorf("creating registry dir: %w", err)
	}

	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding registry: %w", err)
	}

	tmp := r.path + ".tmp-" + uuid.NewString()
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing registry temp: %w", err)
	}
	if err := os.Rename(tmp, r.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("publishing registry: %w", err)
	}
	return nil
}

// mutate runs fn under the exclusive file lock and persists the result.
func (r *Registry) mutate(fn func(f *registryFile)) error {
	if err := r.lock.Lock(); err != nil {
		return fmt.Errorf("locking registry: %w", err)
	}
	defer r.lock.Unlock()

	f := r.load()
	fn(&f)
	if err := r.persist(f); err != nil {
		return err
	}
	if r.obs != nil {
		r.obs.OverridesActive.Set(float64(len(f.Datasets)))
	}
	return nil
}

// GetDatasetOverride returns the override for (symbol, timeframe) if set.
func (r *Registry) GetDatasetOverride(symbol, timeframe string) (Override, bool) {
	f := r.load()
	o, ok := f.Datasets[overrideKey(symbol, timeframe)]
	return o, ok
}

// SetDatasetOverride activates a dataset run for (symbol, timeframe).
func (r *Registry) SetDatasetOverride(symbol, timeframe string, o Override) error {
	return r.mutate(func(f *registryFile) {
		f.Datasets[overrideKey(symbol, timeframe)] = o
	})
}

// ClearDatasetOverride removes the override for (symbol, timeframe).
func (r *Registry) ClearDatasetOverride(symbol, timeframe string) error {
	return r.mutate(func(f *registryFile) {
		delete(f.Datasets, overrideKey(symbol, timeframe))
	})
}

// ListDatasetOverrides returns all overrides keyed "SYMBOL:timeframe",
// in sorted key order.
func (r *Registry) ListDatasetOverrides() map[string]Override {
	f := r.load()
	out := make(map[string]Override, len(f.Datasets))
	keys := make([]string, 0, len(f.Datasets))
	for k := range f.Datasets {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		out[k] = f.Datasets[k]
	}
	return out
}
