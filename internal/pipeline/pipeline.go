// Package pipeline promotes candle batches through the raw, bronze and
// silver layers: validation, calendar-aware cleaning, deterministic feature
// derivation and content-addressed versioning.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"equity-intraday-lab/internal/calendar"
	"equity-intraday-lab/internal/domain"
	"equity-intraday-lab/internal/observability"
	"equity-intraday-lab/internal/schema"
	"equity-intraday-lab/internal/store"
	"equity-intraday-lab/internal/version"
)

// DefaultProvider labels candles whose source was not identified.
const DefaultProvider = "unknown"

// IngestRequest is the input of one pipeline invocation.
type IngestRequest struct {
	Symbol    string
	Timeframe string
	Candles   []schema.CandleInput
	Provider  string // defaults to "unknown"
	Namespace string // defaults to the manager's namespace
	RunID     string // minted when empty
}

// Pipeline orchestrates raw -> bronze -> silver promotion for one batch.
// Ingest is a transaction boundary: either all three layer files are
// published or nothing is.
type Pipeline struct {
	validator *schema.Validator
	store     *store.Store
	cal       *calendar.Calendar
	versions  *version.Manager
	obs       *observability.Metrics
	log       zerolog.Logger
	now       func() time.Time
}

// New creates a pipeline. obs may be nil.
func New(st *store.Store, cal *calendar.Calendar, versions *version.Manager, obs *observability.Metrics, log zerolog.Logger) *Pipeline {
	return &Pipeline{
		validator: schema.NewValidator(cal.Location()),
		store:     st,
		cal:       cal,
		versions:  versions,
		obs:       obs,
		log:       log.With().Str("component", "pipeline").Logger(),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets an injectable clock for deterministic tests.
func (p *Pipeline) WithClock(now func() time.Time) *Pipeline {
	p.now = now
	return p
}

// Ingest validates, versions and persists one candle batch through all three
// layers. Fails with schema.ErrEmptyBatch when the batch is empty and with
// schema.ErrInvalidCandle on the first invariant violation.
func (p *Pipeline) Ingest(ctx context.Context, req IngestRequest) (*domain.DataArtifacts, error) {
	started := p.now()

	if _, err := domain.TimeframeMinutes(req.Timeframe); err != nil {
		return nil, err
	}

	validated, err := p.validator.ValidateBatch(req.Candles)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	provider := req.Provider
	if provider == "" {
		provider = DefaultProvider
	}

	raw := buildRawFrame(validated, provider, p.now())
	v := p.mintVersion(req)

	rawPath, err := store.Write(p.store, raw, store.LayerRaw, v.Namespace, v.Symbol, v.Timeframe, v.RunID)
	if err != nil {
		return nil, fmt.Errorf("persisting raw: %w", err)
	}

	bronze := p.toBronze(raw, req.Timeframe)
	bronzePath, err := store.Write(p.store, bronze, store.LayerBronze, v.Namespace, v.Symbol, v.Timeframe, v.RunID)
	if err != nil {
		return nil, fmt.Errorf("persisting bronze: %w", err)
	}

	silver := toSilver(bronze)
	silverPath, err := store.Write(p.store, silver, store.LayerSilver, v.Namespace, v.Symbol, v.Timeframe, v.RunID)
	if err != nil {
		return nil, fmt.Errorf("persisting silver: %w", err)
	}

	meta := domain.ArtifactsMetadata{
		Symbol:    req.Symbol,
		Timeframe: req.Timeframe,
		Provider:  provider,
	}
	if len(silver) > 0 {
		meta.StartTS = silver[0].StartTS
		meta.EndTS = silver[len(silver)-1].EndTS
	}

	if p.obs != nil {
		p.obs.ObserveIngest(v.Namespace, len(silver), p.now().Sub(started))
	}
	p.log.Info().
		Str("symbol", req.Symbol).
		Str("timeframe", req.Timeframe).
		Str("run_id", v.RunID).
		Int("raw_rows", len(raw)).
		Int("silver_rows", len(silver)).
		Msg("batch ingested")

	return &domain.DataArtifacts{
		RawPath:     rawPath,
		BronzePath:  bronzePath,
		SilverPath:  silverPath,
		Namespace:   v.Namespace,
		RunID:       v.RunID,
		RecordCount: len(silver),
		Metadata:    meta,
	}, nil
}

// mintVersion builds the dataset version, appending a monotonic two-digit
// suffix when a machine-driven ingest collides at second resolution.
func (p *Pipeline) mintVersion(req IngestRequest) domain.DatasetVersion {
	v := p.versions.BuildVersion(req.Symbol, req.Timeframe, req.Namespace, req.RunID)
	if req.RunID != "" {
		return v
	}

	base := v.RunID
	for i := 1; i <= 99; i++ {
		path := p.store.FilePath(store.LayerRaw, v.Namespace, v.Symbol, v.Timeframe, v.RunID)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return v
		}
		v.RunID = fmt.Sprintf("%s-%02d", base, i)
	}
	return v
}

// buildRawFrame sorts validated candles ascending by start time and stamps
// provenance. Timestamps are stored as UTC epoch milliseconds.
func buildRawFrame(candles []schema.ValidatedCandle, provider string, ingestedAt time.Time) []domain.RawRow {
	sorted := make([]schema.ValidatedCandle, len(candles))
	copy(sorted, candles)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start.Before(sorted[j].Start)
	})

	rows := make([]domain.RawRow, len(sorted))
	ingestedMs := ingestedAt.UTC().UnixMilli()
	for i, c := range sorted {
		rows[i] = domain.RawRow{
			StartTS:    c.Start.UnixMilli(),
			Open:       c.Open,
			High:       c.High,
			Low:        c.Low,
			Close:      c.Close,
			Volume:     c.Volume,
			Provider:   provider,
			IngestedAt: ingestedMs,
		}
	}
	return rows
}

// toBronze deduplicates on start_ts keeping the later-arriving candle,
// computes end_ts from the timeframe interval, classifies the session and
// drops rows outside trading days.
func (p *Pipeline) toBronze(raw []domain.RawRow, timeframe string) []domain.BronzeRow {
	minutes, _ := domain.TimeframeMinutes(timeframe)
	interval := time.Duration(minutes) * time.Minute

	// Last writer wins on duplicate start_ts; buildRawFrame sorts stably so
	// input order is preserved within a timestamp.
	dedup := make(map[int64]domain.RawRow, len(raw))
	order := make([]int64, 0, len(raw))
	for _, r := range raw {
		if _, seen := dedup[r.StartTS]; !seen {
			order = append(order, r.StartTS)
		}
		dedup[r.StartTS] = r
	}

	rows := make([]domain.BronzeRow, 0, len(order))
	for _, ts := range order {
		r := dedup[ts]
		start := time.UnixMilli(r.StartTS).UTC()
		if !p.cal.IsTradingDay(start) {
			continue
		}
		rows = append(rows, domain.BronzeRow{
			StartTS:      r.StartTS,
			Open:         r.Open,
			High:         r.High,
			Low:          r.Low,
			Close:        r.Close,
			Volume:       r.Volume,
			EndTS:        start.Add(interval).UnixMilli(),
			Session:      p.cal.Session(start),
			IsTradingDay: true,
		})
	}
	return rows
}
