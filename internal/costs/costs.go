// Package costs computes per-trade Indian equity transaction charges.
package costs

import (
	"math"

	"equity-intraday-lab/internal/domain"
)

// Rates holds the statutory and brokerage rate schedule. All percentage
// fields are fractions of trade value, not percent.
type Rates struct {
	BrokeragePct float64 `yaml:"brokerage_pct"` // 0.0003 = 0.03%
	BrokerageCap float64 `yaml:"brokerage_cap"` // flat cap in rupees
	STTPct       float64 `yaml:"stt_pct"`       // sells only
	GSTPct       float64 `yaml:"gst_pct"`       // applied to brokerage
	ExchangePct  float64 `yaml:"exchange_pct"`
	SEBIPct      float64 `yaml:"sebi_pct"`
	StampDutyPct float64 `yaml:"stamp_duty_pct"` // buys only
}

// DefaultRates returns the standard NSE discount-broker schedule: brokerage
// 0.03% capped at Rs 20, STT 0.0125% on sells, GST 18% of brokerage,
// exchange 0.0003%, SEBI 0.0001%, stamp duty 0.003% on buys.
func DefaultRates() Rates {
	return Rates{
		BrokeragePct: 0.0003,
		BrokerageCap: 20.0,
		STTPct:       0.000125,
		GSTPct:       0.18,
		ExchangePct:  0.000003,
		SEBIPct:      0.000001,
		StampDutyPct: 0.00003,
	}
}

// Calculator is a pure per-trade fee calculator.
type Calculator struct {
	rates Rates
}

// New creates a calculator with the given rate schedule.
func New(rates Rates) *Calculator {
	return &Calculator{rates: rates}
}

// Calculate returns the full fee breakdown for one trade. Monetary outputs
// are rounded to 2 decimals; cost_percentage to 4.
func (c *Calculator) Calculate(tradeValue float64, isSell bool) domain.CostBreakdown {
	brokerage := tradeValue * c.rates.BrokeragePct
	if brokerage > c.rates.BrokerageCap {
		brokerage = c.rates.BrokerageCap
	}

	stt := 0.0
	if isSell {
		stt = tradeValue * c.rates.STTPct
	}
	gst := brokerage * c.rates.GSTPct
	exchange := tradeValue * c.rates.ExchangePct
	sebi := tradeValue * c.rates.SEBIPct
	stamp := 0.0
	if !isSell {
		stamp = tradeValue * c.rates.StampDutyPct
	}

	total := brokerage + stt + gst + exchange + sebi + stamp
	pct := 0.0
	if tradeValue > 0 {
		pct = total / tradeValue * 100
	}

	return domain.CostBreakdown{
		Brokerage:       round2(brokerage),
		STT:             round2(stt),
		GST:             round2(gst),
		ExchangeCharges: round2(exchange),
		SEBICharges:     round2(sebi),
		StampDuty:       round2(stamp),
		TotalCost:       round2(total),
		TradeValue:      round2(tradeValue),
		IsSell:          isSell,
		CostPercentage:  round4(pct),
	}
}

// RoundTripCost sums the buy-side and sell-side fees for a quantity traded
// at the given entry and exit prices.
func (c *Calculator) RoundTripCost(quantity int, entryPrice, exitPrice float64) float64 {
	buy := c.Calculate(float64(quantity)*entryPrice, false)
	sell := c.Calculate(float64(quantity)*exitPrice, true)
	return round2(buy.TotalCost + sell.TotalCost)
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }

func round4(v float64) float64 { return math.Round(v*10000) / 10000 }
