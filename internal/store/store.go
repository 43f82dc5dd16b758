// Package store persists layered, versioned columnar frames as parquet files.
//
// Layout:
//
//	<root>/<layer>/<namespace>/<symbol_safe>/<timeframe>/<symbol_safe>_<tf>_<run_id>_<layer>.parquet
//
// Files are published atomically (write-temp + rename) so readers never
// observe a partial file. Two writers with distinct run IDs never contend.
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/parquet-go/parquet-go"
	"github.com/rs/zerolog"

	"equity-intraday-lab/internal/domain"
)

// Layer identifies a medallion tier.
type Layer string

// Supported layers.
const (
	LayerRaw    Layer = "raw"
	LayerBronze Layer = "bronze"
	LayerSilver Layer = "silver"
)

// ErrUnsupportedLayer is returned for layers outside {raw, bronze, silver}.
var ErrUnsupportedLayer = errors.New("unsupported layer")

func validLayer(l Layer) bool {
	return l == LayerRaw || l == LayerBronze || l == LayerSilver
}

// Store reads and writes layer files under a data root.
type Store struct {
	root string
	log  zerolog.Logger
}

// New creates a store rooted at dataRoot.
func New(dataRoot string, log zerolog.Logger) *Store {
	return &Store{root: dataRoot, log: log.With().Str("component", "store").Logger()}
}

// Root returns the configured data root.
func (s *Store) Root() string {
	return s.root
}

// Dir returns the partition directory for (layer, namespace, symbol, timeframe).
func (s *Store) Dir(layer Layer, namespace, symbol, timeframe string) string {
	return filepath.Join(s.root, string(layer), namespace, domain.SymbolSafe(symbol), timeframe)
}

// FilePath returns the full path of one run file.
func (s *Store) FilePath(layer Layer, namespace, symbol, timeframe, runID string) string {
	name := fmt.Sprintf("%s_%s_%s_%s.parquet", domain.SymbolSafe(symbol), timeframe, runID, layer)
	return filepath.Join(s.Dir(layer, namespace, symbol, timeframe), name)
}

// Write persists rows to the layer partition, creating intermediate
// directories. The file is written to a temp name and renamed into place.
// Returns the final path.
func Write[T any](s *Store, rows []T, layer Layer, namespace, symbol, timeframe, runID string) (string, error) {
	if !validLayer(layer) {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedLayer, layer)
	}

	path := s.FilePath(layer, namespace, symbol, timeframe, runID)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("creating %s partition: %w", layer, err)
	}

	tmp := path + ".tmp-" + uuid.NewString()
	if err := parquet.WriteFile(tmp, rows); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("writing %s file: %w", layer, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("publishing %s file: %w", layer, err)
	}

	s.log.Debug().
		Str("layer", string(layer)).
		Str("symbol", symbol).
		Str("timeframe", timeframe).
		Str("run_id", runID).
		Int("rows", len(rows)).
		Msg("layer file written")

	return path, nil
}

// ReadLatest returns the rows of the newest run file by run ID order, or
// of the run whose filename contains runID when runID is non-empty. A missing
// partition yields (nil, "", nil); absence is a data miss, not an error.
// Read failures on an existing file propagate.
func ReadLatest[T any](s *Store, layer Layer, namespace, symbol, timeframe, runID string) ([]T, string, error) {
	path, err := s.latestFile(layer, namespace, symbol, timeframe, runID)
	if err != nil || path == "" {
		return nil, "", err
	}

	rows, err := parquet.ReadFile[T](path)
	if err != nil {
		return nil, "", fmt.Errorf("reading %s: %w", path, err)
	}
	return rows, path, nil
}

// latestFile resolves the newest (or matching) run file path, or "" when the
// partition has no files.
func (s *Store) latestFile(layer Layer, namespace, symbol, timeframe, runID string) (string, error) {
	files, err := s.listFiles(layer, namespace, symbol, timeframe)
	if err != nil || len(files) == 0 {
		return "", err
	}

	if runID != "" {
		for _, f := range files {
			if strings.Contains(filepath.Base(f), runID) {
				return f, nil
			}
		}
		return "", nil
	}
	return files[len(files)-1], nil
}

// ListRuns returns the run_id component of every file in the partition,
// sorted ascending. A missing partition returns nil.
func (s *Store) ListRuns(layer Layer, namespace, symbol, timeframe string) ([]string, error) {
	files, err := s.listFiles(layer, namespace, symbol, timeframe)
	if err != nil {
		return nil, err
	}

	runs := make([]string, 0, len(files))
	for _, f := range files {
		if run := runIDFromName(filepath.Base(f), layer); run != "" {
			runs = append(runs, run)
		}
	}
	return runs, nil
}

// listFiles returns the partition's parquet files sorted by run ID. Sorting
// the extracted run IDs rather than the filenames matters for collision
// suffixes: `r-01` is a newer run than `r`, but the filename `..._r-01_silver`
// sorts before `..._r_silver` because `-` precedes the `_` separator.
func (s *Store) listFiles(layer Layer, namespace, symbol, timeframe string) ([]string, error) {
	if !validLayer(layer) {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedLayer, layer)
	}

	dir := s.Dir(layer, namespace, symbol, timeframe)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("listing %s: %w", dir, err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".parquet") {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Slice(files, func(i, j int) bool {
		return runIDFromName(filepath.Base(files[i]), layer) < runIDFromName(filepath.Base(files[j]), layer)
	})
	return files, nil
}

// runIDFromName extracts the run_id from
// <symbol_safe>_<tf>_<run_id>_<layer>.parquet. symbol_safe may itself
// contain underscores, so the run_id is the last token before the layer
// suffix.
func runIDFromName(name string, layer Layer) string {
	suffix := fmt.Sprintf("_%s.parquet", layer)
	if !strings.HasSuffix(name, suffix) {
		return ""
	}
	stem := strings.TrimSuffix(name, suffix)
	i := strings.LastIndex(stem, "_")
	if i < 0 {
		return ""
	}
	return stem[i+1:]
}
