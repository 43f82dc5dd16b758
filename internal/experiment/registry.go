// Package experiment persists training outcomes as an append-only registry
// of JSON records, one file per experiment, with a best-by-RMSE lookup.
package experiment

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"equity-intraday-lab/internal/domain"
)

// Registry owns the experiments directory. Records are immutable once
// written; there is no update or delete path.
type Registry struct {
	dir string
	log zerolog.Logger
}

// New creates a registry rooted at dir.
func New(dir string, log zerolog.Logger) *Registry {
	return &Registry{dir: dir, log: log.With().Str("component", "experiment_registry").Logger()}
}

// Log writes the record to <dir>/<experiment_id>.json atomically and returns
// the path.
func (r *Registry) Log(rec domain.ExperimentRecord) (string, error) {
	if rec.ExperimentID == "" {
		return "", fmt.Errorf("experiment record missing id")
	}
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return "", fmt.Errorf("create experiments dir: %w", err)
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal experiment %s: %w", rec.ExperimentID, err)
	}

	path := filepath.Join(r.dir, rec.ExperimentID+".json")
	tmp := path + ".tmp." + uuid.NewString()
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", fmt.Errorf("write experiment %s: %w", rec.ExperimentID, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("publish experiment %s: %w", rec.ExperimentID, err)
	}

	r.log.Info().Str("experiment_id", rec.ExperimentID).Str("path", path).Msg("experiment logged")
	return path, nil
}

// List reads every record in lexical filename order. Unreadable files
// propagate as errors; the registry never silently skips a record.
func (r *Registry) List() ([]domain.ExperimentRecord, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read experiments dir: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	records := make([]domain.ExperimentRecord, 0, len(names))
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(r.dir, name))
		if err != nil {
			return nil, fmt.Errorf("read experiment %s: %w", name, err)
		}
		var rec domain.ExperimentRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			return nil, fmt.Errorf("decode experiment %s: %w", name, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// FindBest returns the record for symbol/timeframe whose best family RMSE is
// lowest; ties go to the most recent created_at. Returns nil when no record
// matches.
func (r *Registry) FindBest(symbol, timeframe string) (*domain.ExperimentRecord, error) {
	records, err := r.List()
	if err != nil {
		return nil, err
	}

	var best *domain.ExperimentRecord
	bestRMSE := 0.0
	for i := range records {
		rec := &records[i]
		if rec.Symbol != symbol || rec.Timeframe != timeframe {
			continue
		}
		rmse, ok := rec.BestRMSE()
		if !ok {
			continue
		}
		switch {
		case best == nil,
			rmse < bestRMSE,
			rmse == bestRMSE && rec.CreatedAt.After(best.CreatedAt):
			best = rec
			bestRMSE = rmse
		}
	}
	return best, nil
}
