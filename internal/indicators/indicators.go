// Package indicators computes the technical indicators consumed by signal
// strategies: RSI, MACD, Bollinger bands, MFI and moving averages.
package indicators

import (
	"math"

	"equity-intraday-lab/internal/domain"
)

// Default indicator periods.
const (
	RSIPeriod       = 14
	MFIPeriod       = 14
	MACDFast        = 12
	MACDSlow        = 26
	MACDSignal      = 9
	BollingerPeriod = 20
	BollingerWidth  = 2.0
	SMAShort        = 20
	SMALong         = 50
)

// Snapshot is the indicator state at the most recent candle. Fields are NaN
// when the history is too short for the corresponding period.
type Snapshot struct {
	RSI            float64
	MACD           float64
	MACDSignal     float64
	MACDHistogram  float64
	BollingerUpper float64
	BollingerMid   float64
	BollingerLower float64
	MFI            float64
	SMAShort       float64
	SMALong        float64
	Close          float64
}

// Compute evaluates all indicators over candles in chronological order.
func Compute(candles []domain.Candle) Snapshot {
	closes := make([]float64, len(candles))
	for i, c := range candles {
		closes[i] = c.Close
	}

	snap := Snapshot{
		RSI:      RSI(closes, RSIPeriod),
		MFI:      MFI(candles, MFIPeriod),
		SMAShort: SMA(closes, SMAShort),
		SMALong:  SMA(closes, SMALong),
	}
	if len(closes) > 0 {
		snap.Close = closes[len(closes)-1]
	}
	snap.MACD, snap.MACDSignal, snap.MACDHistogram = MACD(closes, MACDFast, MACDSlow, MACDSignal)
	snap.BollingerUpper, snap.BollingerMid, snap.BollingerLower = Bollinger(closes, BollingerPeriod, BollingerWidth)
	return snap
}

// SMA is the simple moving average of the last period values. NaN when the
// history is shorter than period.
func SMA(values []float64, period int) float64 {
	if len(values) < period || period < 1 {
		return math.NaN()
	}
	sum := 0.0
	for _, v := range values[len(values)-period:] {
		sum += v
	}
	return sum / float64(period)
}

// EMA is the exponential moving average with alpha 2/(period+1), seeded with
// the first value. NaN when the history is shorter than period.
func EMA(values []float64, period int) float64 {
	series := emaSeries(values, period)
	if series == nil {
		return math.NaN()
	}
	return series[len(series)-1]
}

// emaSeries returns the full EMA series, nil when too short.
func emaSeries(values []float64, period int) []float64 {
	if len(values) < period || period < 1 {
		return nil
	}
	alpha := 2.0 / float64(period+1)
	out := make([]float64, len(values))
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = alpha*values[i] + (1-alpha)*out[i-1]
	}
	return out
}

// RSI is Wilder's relative strength index over closes. 50 when price never
// moved, NaN when the history is shorter than period+1.
func RSI(closes []float64, period int) float64 {
	if len(closes) < period+1 {
		return math.NaN()
	}

	var gain, loss float64
	for i := 1; i <= period; i++ {
		d := closes[i] - closes[i-1]
		if d > 0 {
			gain += d
		} else {
			loss += -d
		}
	}
	avgGain := gain / float64(period)
	avgLoss := loss / float64(period)

	// Wilder smoothing over the remaining deltas.
	for i := period + 1; i < len(closes); i++ {
		d := closes[i] - closes[i-1]
		g, l := 0.0, 0.0
		if d > 0 {
			g = d
		} else {
			l = -d
		}
		avgGain = (avgGain*float64(period-1) + g) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + l) / float64(period)
	}

	if avgLoss == 0 {
		if avgGain == 0 {
			return 50
		}
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

// MACD returns the MACD line, its signal line, and the histogram.
// All NaN when the history is shorter than slow+signal.
func MACD(closes []float64, fast, slow, signal int) (float64, float64, float64) {
	if len(closes) < slow+signal {
		return math.NaN(), math.NaN(), math.NaN()
	}

	fastSeries := emaSeries(closes, fast)
	slowSeries := emaSeries(closes, slow)

	macdLine := make([]float64, len(closes))
	for i := range closes {
		macdLine[i] = fastSeries[i] - slowSeries[i]
	}
	// The MACD line is meaningless before the slow EMA warms up.
	signalSeries := emaSeries(macdLine[slow-1:], signal)

	macd := macdLine[len(macdLine)-1]
	sig := signalSeries[len(signalSeries)-1]
	return macd, sig, macd - sig
}

// Bollinger returns the upper, middle and lower bands: SMA(period) +- width
// sample standard deviations. All NaN when the history is too short.
func Bollinger(closes []float64, period int, width float64) (float64, float64, float64) {
	if len(closes) < period {
		return math.NaN(), math.NaN(), math.NaN()
	}

	window := closes[len(closes)-period:]
	mid := 0.0
	for _, v := range window {
		mid += v
	}
	mid /= float64(period)

	var sq float64
	for _, v := range window {
		d := v - mid
		sq += d * d
	}
	std := math.Sqrt(sq / float64(period-1))
	return mid + width*std, mid, mid - width*std
}

// MFI is the money flow index over typical prices weighted by volume.
// 50 when there was no flow either way, NaN when too short.
func MFI(candles []domain.Candle, period int) float64 {
	if len(candles) < period+1 {
		return math.NaN()
	}

	window := candles[len(candles)-period-1:]
	var positive, negative float64
	prevTypical := (window[0].High + window[0].Low + window[0].Close) / 3
	for _, c := range window[1:] {
		typical := (c.High + c.Low + c.Close) / 3
		flow := typical * c.Volume
		if typical > prevTypical {
			positive += flow
		} else if typical < prevTypical {
			negative += flow
		}
		prevTypical = typical
	}

	if negative == 0 {
		if positive == 0 {
			return 50
		}
		return 100
	}
	ratio := positive / negative
	return 100 - 100/(1+ratio)
}
