// Package perf computes risk-adjusted performance metrics over an equity
// curve and its periodic returns.
package perf

import (
	"math"

	"equity-intraday-lab/internal/domain"
)

// tradingDaysPerYear annualises daily statistics.
const tradingDaysPerYear = 252

// Sharpe is the annualised excess-return ratio: mean(excess)/std(excess)
// scaled by sqrt(252), with the daily risk-free rate rf/252. Returns 0 for
// fewer than 2 observations or zero dispersion. Rounded to 4 decimals.
func Sharpe(returns []float64, riskFreeRate float64) float64 {
	if len(returns) < 2 {
		return 0
	}
	daily := riskFreeRate / tradingDaysPerYear

	excess := make([]float64, len(returns))
	for i, r := range returns {
		excess[i] = r - daily
	}
	mean, std := meanStd(excess)
	if std == 0 {
		return 0
	}
	return round4(mean / std * math.Sqrt(tradingDaysPerYear))
}

// Sortino penalises only downside deviation. Returns +Inf when there is no
// downside but positive excess return, 0 when there is neither. Rounded to
// 4 decimals.
func Sortino(returns []float64, riskFreeRate float64) float64 {
	if len(returns) < 2 {
		return 0
	}
	daily := riskFreeRate / tradingDaysPerYear

	var sum, downSq float64
	for _, r := range returns {
		e := r - daily
		sum += e
		if e < 0 {
			downSq += e * e
		}
	}
	downside := math.Sqrt(downSq / float64(len(returns)))
	if downside == 0 {
		if sum > 0 {
			return math.Inf(1)
		}
		return 0
	}
	mean := sum / float64(len(returns))
	return round4(mean / downside * math.Sqrt(tradingDaysPerYear))
}

// Drawdown is the deepest peak-to-trough decline of an equity curve.
type Drawdown struct {
	MaxDrawdown    float64 `json:"max_drawdown"`
	MaxDrawdownPct float64 `json:"max_drawdown_pct"`
	Peak           float64 `json:"peak"`
	Trough         float64 `json:"trough"`
}

// MaxDrawdown walks the curve tracking the running peak. Money values are
// rounded to 2 decimals, the percentage to 2.
func MaxDrawdown(curve []float64) Drawdown {
	if len(curve) == 0 {
		return Drawdown{}
	}

	peak := curve[0]
	best := Drawdown{Peak: curve[0], Trough: curve[0]}
	for _, v := range curve {
		if v > peak {
			peak = v
		}
		dd := peak - v
		if dd > best.MaxDrawdown {
			best.MaxDrawdown = dd
			best.Peak = peak
			best.Trough = v
		}
	}
	if best.Peak > 0 {
		best.MaxDrawdownPct = best.MaxDrawdown / best.Peak * 100
	}
	best.MaxDrawdown = round2(best.MaxDrawdown)
	best.MaxDrawdownPct = round2(best.MaxDrawdownPct)
	best.Peak = round2(best.Peak)
	best.Trough = round2(best.Trough)
	return best
}

// CAGR is the compound annual growth rate over the run, using
// years = days/365.25. Returns 0 for non-positive inputs or zero duration.
// Rounded to 4 decimals.
func CAGR(initial, final float64, days int) float64 {
	if initial <= 0 || final <= 0 || days <= 0 {
		return 0
	}
	years := float64(days) / 365.25
	return round4(math.Pow(final/initial, 1/years) - 1)
}

// Volatility is the annualised sample standard deviation of returns in
// percent. Rounded to 2 decimals.
func Volatility(returns []float64) float64 {
	if len(returns) < 2 {
		return 0
	}
	_, std := meanStd(returns)
	return round2(std * math.Sqrt(tradingDaysPerYear) * 100)
}

// Compute bundles all metrics over one equity curve.
func Compute(curve, returns []float64, riskFreeRate float64, days int) domain.PerformanceMetrics {
	dd := MaxDrawdown(curve)
	initial, final := 0.0, 0.0
	if len(curve) > 0 {
		initial, final = curve[0], curve[len(curve)-1]
	}
	return domain.PerformanceMetrics{
		SharpeRatio:    Sharpe(returns, riskFreeRate),
		SortinoRatio:   Sortino(returns, riskFreeRate),
		CAGR:           CAGR(initial, final, days),
		MaxDrawdown:    dd.MaxDrawdown,
		MaxDrawdownPct: dd.MaxDrawdownPct,
		DrawdownPeak:   dd.Peak,
		DrawdownTrough: dd.Trough,
		Volatility:     Volatility(returns),
	}
}

// meanStd returns the mean and sample standard deviation.
func meanStd(v []float64) (float64, float64) {
	mean := 0.0
	for _, x := range v {
		mean += x
	}
	mean /= float64(len(v))

	var sq float64
	for _, x := range v {
		d := x - mean
		sq += d * d
	}
	return mean, math.Sqrt(sq / float64(len(v)-1))
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }

func round4(v float64) float64 { return math.Round(v*10000) / 10000 }
