package domain

import "time"

// Candle represents a single OHLCV bar.
// Uniqueness key is (symbol, timeframe, start_ts); candles are created on
// ingest and never mutated.
type Candle struct {
	StartTS int64   // bar open time, Unix milliseconds UTC
	Open    float64 // first traded price in the bar
	High    float64 // highest traded price
	Low     float64 // lowest traded price
	Close   float64 // last traded price
	Volume  float64 // traded volume, >= 0
}

// Start returns the bar open time as a time.Time in UTC.
func (c Candle) Start() time.Time {
	return time.UnixMilli(c.StartTS).UTC()
}

// Valid reports whether the candle satisfies the OHLCV invariants:
// low <= open,close <= high and volume >= 0.
func (c Candle) Valid() bool {
	if c.Low > c.High {
		return false
	}
	if c.Open < c.Low || c.Open > c.High {
		return false
	}
	if c.Close < c.Low || c.Close > c.High {
		return false
	}
	return c.Volume >= 0
}
