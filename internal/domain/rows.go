package domain

import "time"

// RawRow is the raw-layer record: the validated candle plus provenance.
// Field order matches the persisted column order.
type RawRow struct {
	StartTS    int64   `parquet:"start_ts,timestamp(millisecond)"`
	Open       float64 `parquet:"open"`
	High       float64 `parquet:"high"`
	Low        float64 `parquet:"low"`
	Close      float64 `parquet:"close"`
	Volume     float64 `parquet:"volume"`
	Provider   string  `parquet:"provider"`
	IngestedAt int64   `parquet:"ingested_at,timestamp(millisecond)"`
}

// BronzeRow is the bronze-layer record: deduplicated, calendar-cleaned bars.
// IsTradingDay is filtered to true before persistence.
type BronzeRow struct {
	StartTS      int64   `parquet:"start_ts,timestamp(millisecond)"`
	Open         float64 `parquet:"open"`
	High         float64 `parquet:"high"`
	Low          float64 `parquet:"low"`
	Close        float64 `parquet:"close"`
	Volume       float64 `parquet:"volume"`
	EndTS        int64   `parquet:"end_ts,timestamp(millisecond)"`
	Session      string  `parquet:"session"`
	IsTradingDay bool    `parquet:"is_trading_day"`
}

// SilverRow is the silver-layer record: a bronze bar plus derived features.
// All feature values are finite; NaN/Inf are replaced with 0 on derivation.
// Rows within a silver file are strictly increasing in StartTS.
type SilverRow struct {
	StartTS       int64   `parquet:"start_ts,timestamp(millisecond)"`
	Open          float64 `parquet:"open"`
	High          float64 `parquet:"high"`
	Low           float64 `parquet:"low"`
	Close         float64 `parquet:"close"`
	Volume        float64 `parquet:"volume"`
	EndTS         int64   `parquet:"end_ts,timestamp(millisecond)"`
	Session       string  `parquet:"session"`
	Return1       float64 `parquet:"return_1"`
	Return5       float64 `parquet:"return_5"`
	RollingMean10 float64 `parquet:"rolling_mean_10"`
	RollingStd10  float64 `parquet:"rolling_std_10"`
	VolumeMA10    float64 `parquet:"volume_ma_10"`
	HighLowSpread float64 `parquet:"high_low_spread"`
	Momentum10    float64 `parquet:"momentum_10"`
	EMA20         float64 `parquet:"ema_20"`
	IsGapUp       float64 `parquet:"is_gap_up"`
	IsGapDown     float64 `parquet:"is_gap_down"`
}

// Start returns the bar open time as a time.Time in UTC.
func (r SilverRow) Start() time.Time {
	return time.UnixMilli(r.StartTS).UTC()
}

// FeatureColumns is the frozen model feature-vector ordering. Trainers depend
// on this exact order; the fixed SilverRow struct makes unknown columns
// unrepresentable.
var FeatureColumns = []string{
	"open", "high", "low", "close", "volume",
	"return_1", "return_5", "rolling_mean_10", "rolling_std_10",
	"volume_ma_10", "high_low_spread", "momentum_10", "ema_20",
	"is_gap_up", "is_gap_down",
}

// FeatureColumnIndex maps each feature column to its position in the vector.
var FeatureColumnIndex = func() map[string]int {
	idx := make(map[string]int, len(FeatureColumns))
	for i, c := range FeatureColumns {
		idx[c] = i
	}
	return idx
}()

// FeatureVector extracts the frozen 15-element feature vector from the row.
func (r SilverRow) FeatureVector() []float64 {
	return []float64{
		r.Open, r.High, r.Low, r.Close, r.Volume,
		r.Return1, r.Return5, r.RollingMean10, r.RollingStd10,
		r.VolumeMA10, r.HighLowSpread, r.Momentum10, r.EMA20,
		r.IsGapUp, r.IsGapDown,
	}
}
