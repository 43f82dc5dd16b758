package pipeline

import (
	"math"

	"equity-intraday-lab/internal/domain"
)

// Feature derivation windows.
const (
	rollingWindow = 10
	emaSpan       = 20
)

// toSilver derives the feature columns over the bronze frame. Windows of 10
// bars and an EMA span of 20 (adjust=false seeding from the first close).
// Non-finite values are replaced with 0; rows with a non-finite close are
// dropped.
func toSilver(bronze []domain.BronzeRow) []domain.SilverRow {
	rows := make([]domain.SilverRow, 0, len(bronze))

	var ema float64
	emaAlpha := 2.0 / float64(emaSpan+1)

	for i, b := range bronze {
		if !isFinite(b.Close) {
			continue
		}

		if i == 0 {
			ema = b.Close
		} else {
			ema = emaAlpha*b.Close + (1-emaAlpha)*ema
		}

		row := domain.SilverRow{
			StartTS: b.StartTS,
			Open:    b.Open,
			High:    b.High,
			Low:     b.Low,
			Close:   b.Close,
			Volume:  b.Volume,
			EndTS:   b.EndTS,
			Session: b.Session,
			EMA20:   ema,
		}

		row.Return1 = finiteOrZero(pctChange(bronze, i, 1))
		row.Return5 = finiteOrZero(pctChange(bronze, i, 5))
		row.HighLowSpread = finiteOrZero((b.High - b.Low) / b.Close)

		if i >= rollingWindow-1 {
			mean, std := rollingStats(bronze, i, rollingWindow, func(r domain.BronzeRow) float64 { return r.Close })
			row.RollingMean10 = finiteOrZero(mean)
			row.RollingStd10 = finiteOrZero(std)
			volMean, _ := rollingStats(bronze, i, rollingWindow, func(r domain.BronzeRow) float64 { return r.Volume })
			row.VolumeMA10 = finiteOrZero(volMean)
		}
		if i >= rollingWindow {
			row.Momentum10 = finiteOrZero(b.Close - bronze[i-rollingWindow].Close)
		}

		if i > 0 {
			prev := bronze[i-1]
			if b.Open > prev.High {
				row.IsGapUp = 1
			}
			if b.Open < prev.Low {
				row.IsGapDown = 1
			}
		}

		rows = append(rows, row)
	}
	return rows
}

// pctChange returns (close[i] - close[i-lag]) / close[i-lag], NaN when the
// window is incomplete.
func pctChange(rows []domain.BronzeRow, i, lag int) float64 {
	if i < lag {
		return math.NaN()
	}
	prev := rows[i-lag].Close
	return (rows[i].Close - prev) / prev
}

// rollingStats computes mean and sample standard deviation over the window
// ending at index i inclusive.
func rollingStats(rows []domain.BronzeRow, i, window int, value func(domain.BronzeRow) float64) (float64, float64) {
	sum := 0.0
	for j := i - window + 1; j <= i; j++ {
		sum += value(rows[j])
	}
	mean := sum / float64(window)

	sumSq := 0.0
	for j := i - window + 1; j <= i; j++ {
		d := value(rows[j]) - mean
		sumSq += d * d
	}
	std := math.Sqrt(sumSq / float64(window-1))
	return mean, std
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func finiteOrZero(v float64) float64 {
	if isFinite(v) {
		return v
	}
	return 0
}
