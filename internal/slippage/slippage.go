// Package slippage models fill-price drift from order size, available
// liquidity, and recent volatility.
package slippage

import (
	"math"

	"equity-intraday-lab/internal/domain"
)

// Params holds the slippage model constants.
type Params struct {
	BaseBps          float64 `yaml:"base_bps"`           // fixed spread cost
	MaxImpactBps     float64 `yaml:"max_impact_bps"`     // market impact cap
	UnknownVolumeBps float64 `yaml:"unknown_volume_bps"` // impact when no volume data
	LimitDiscount    float64 `yaml:"limit_discount"`     // limit order multiplier
	WrongSideFactor  float64 `yaml:"wrong_side_factor"`  // extra limit discount
	SellFactor       float64 `yaml:"sell_factor"`        // sell side multiplier
	VolatilityScale  float64 `yaml:"volatility_scale"`   // recent vol weight
	VolatilityWindow int     `yaml:"volatility_window"`  // returns lookback
}

// DefaultParams returns the standard model constants.
func DefaultParams() Params {
	return Params{
		BaseBps:          5,
		MaxImpactBps:     200,
		UnknownVolumeBps: 50,
		LimitDiscount:    0.3,
		WrongSideFactor:  0.5,
		SellFactor:       1.1,
		VolatilityScale:  0.5,
		VolatilityWindow: 20,
	}
}

// Input describes one order for slippage estimation. DailyVolume <= 0 means
// liquidity is unknown. Prices is the recent price history used for the
// volatility component; LimitPrice applies to limit orders only.
type Input struct {
	OrderType   domain.OrderType
	OrderSize   float64
	Price       float64
	DailyVolume float64
	Prices      []float64
	IsSell      bool
	LimitPrice  float64
}

// Calculator derives slippage from order size relative to liquidity plus a
// volatility premium.
type Calculator struct {
	params Params
}

// New creates a calculator with the given constants.
func New(params Params) *Calculator {
	return &Calculator{params: params}
}

// Calculate returns the slippage breakdown for one order.
func (c *Calculator) Calculate(in Input) domain.SlippageBreakdown {
	base := c.params.BaseBps
	impact := c.marketImpact(in.OrderSize, in.DailyVolume)
	vol := c.volatilityBps(in.Prices)

	total := base + impact + vol

	if in.OrderType == domain.OrderTypeLimit {
		total *= c.params.LimitDiscount
		if wrongSide(in.IsSell, in.LimitPrice, in.Price) {
			total *= c.params.WrongSideFactor
		}
	}
	if in.IsSell {
		total *= c.params.SellFactor
	}

	return domain.SlippageBreakdown{
		TotalBps:      total,
		BaseBps:       base,
		ImpactBps:     impact,
		VolatilityBps: vol,
		TotalPct:      total / 100,
	}
}

// FillPrice applies a slippage estimate to the expected price: buys fill
// above it, sells below.
func FillPrice(price float64, slip domain.SlippageBreakdown, isSell bool) float64 {
	frac := slip.TotalBps / 10000
	if isSell {
		return price * (1 - frac)
	}
	return price * (1 + frac)
}

// marketImpact is a piecewise function of the order's share of daily volume.
func (c *Calculator) marketImpact(orderSize, dailyVolume float64) float64 {
	if dailyVolume <= 0 {
		return c.params.UnknownVolumeBps
	}

	vp := orderSize / dailyVolume * 100
	var impact float64
	switch {
	case vp < 0.1:
		impact = 0
	case vp < 1:
		impact = 2 * vp
	case vp < 5:
		impact = 2 + 5*(vp-1)
	case vp < 10:
		impact = 22 + 10*(vp-5)
	default:
		impact = 72 + 20*(vp-10)
	}
	if impact > c.params.MaxImpactBps {
		impact = c.params.MaxImpactBps
	}
	return impact
}

// volatilityBps is the sample std-dev of the last window returns in percent,
// scaled by the configured weight.
func (c *Calculator) volatilityBps(prices []float64) float64 {
	if len(prices) < 2 {
		return 0
	}
	if n := c.params.VolatilityWindow + 1; len(prices) > n {
		prices = prices[len(prices)-n:]
	}

	returns := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		if prices[i-1] == 0 {
			continue
		}
		returns = append(returns, (prices[i]-prices[i-1])/prices[i-1]*100)
	}
	if len(returns) < 2 {
		return 0
	}

	mean := 0.0
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	var sq float64
	for _, r := range returns {
		d := r - mean
		sq += d * d
	}
	std := math.Sqrt(sq / float64(len(returns)-1))
	return std * c.params.VolatilityScale
}

// wrongSide reports a limit priced on the passive side of the market: a sell
// above the current price or a buy below it.
func wrongSide(isSell bool, limit, current float64) bool {
	if limit <= 0 {
		return false
	}
	if isSell {
		return limit > current
	}
	return limit < current
}
