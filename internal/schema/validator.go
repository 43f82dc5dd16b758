// Package schema parses and validates raw candle records at the API boundary.
package schema

import (
	"errors"
	"fmt"
	"time"
)

// Validation errors.
var (
	// ErrInvalidCandle is returned on the first candle that violates the
	// OHLCV invariants or carries an unparseable timestamp.
	ErrInvalidCandle = errors.New("invalid candle")

	// ErrEmptyBatch is returned when an ingest receives no candles.
	ErrEmptyBatch = errors.New("empty candle batch")
)

// CandleInput is one raw ingestion record. StartTS is ISO 8601; naive
// timestamps are interpreted in the configured exchange timezone.
// Volume is optional and defaults to 0.
type CandleInput struct {
	StartTS string   `json:"start_ts"`
	Open    float64  `json:"open"`
	High    float64  `json:"high"`
	Low     float64  `json:"low"`
	Close   float64  `json:"close"`
	Volume  *float64 `json:"volume,omitempty"`
}

// naiveLayouts are accepted for timestamps without a zone offset.
var naiveLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Validator validates candle batches against the data-model invariants.
type Validator struct {
	loc *time.Location // exchange timezone for naive timestamps
}

// NewValidator creates a validator that interprets naive timestamps in loc.
func NewValidator(loc *time.Location) *Validator {
	return &Validator{loc: loc}
}

// ValidatedCandle is a parsed candle with a timezone-aware start instant.
type ValidatedCandle struct {
	Start  time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// ValidateBatch parses and validates all records, failing on the first
// violation. Returns ErrEmptyBatch for an empty input.
func (v *Validator) ValidateBatch(candles []CandleInput) ([]ValidatedCandle, error) {
	if len(candles) == 0 {
		return nil, ErrEmptyBatch
	}

	out := make([]ValidatedCandle, 0, len(candles))
	for i, c := range candles {
		vc, err := v.validate(c)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		out = append(out, vc)
	}
	return out, nil
}

func (v *Validator) validate(c CandleInput) (ValidatedCandle, error) {
	start, err := v.ParseTimestamp(c.StartTS)
	if err != nil {
		return ValidatedCandle{}, fmt.Errorf("%w: start_ts %q: %v", ErrInvalidCandle, c.StartTS, err)
	}

	if c.Low > c.High {
		return ValidatedCandle{}, fmt.Errorf("%w: low %v > high %v", ErrInvalidCandle, c.Low, c.High)
	}
	if c.Open < c.Low || c.Open > c.High {
		return ValidatedCandle{}, fmt.Errorf("%w: open %v outside [low, high]", ErrInvalidCandle, c.Open)
	}
	if c.Close < c.Low || c.Close > c.High {
		return ValidatedCandle{}, fmt.Errorf("%w: close %v outside [low, high]", ErrInvalidCandle, c.Close)
	}

	volume := 0.0
	if c.Volume != nil {
		volume = *c.Volume
	}
	if volume < 0 {
		return ValidatedCandle{}, fmt.Errorf("%w: negative volume %v", ErrInvalidCandle, volume)
	}

	return ValidatedCandle{
		Start:  start,
		Open:   c.Open,
		High:   c.High,
		Low:    c.Low,
		Close:  c.Close,
		Volume: volume,
	}, nil
}

// ParseTimestamp parses an ISO 8601 timestamp. Offsets are honoured; naive
// timestamps are pinned to the exchange timezone.
func (v *Validator) ParseTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, s, v.loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp format")
}
