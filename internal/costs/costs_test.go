package costs

import (
	"math"
	"testing"
)

func TestCalculate_BuySide(t *testing.T) {
	c := New(DefaultRates())
	// 100 shares at 3250 = 325000
	b := c.Calculate(325000, false)

	// 0.03% of 325000 = 97.5, capped at the flat 20
	if b.Brokerage != 20 {
		t.Errorf("expected brokerage 20.00, got %.2f", b.Brokerage)
	}
	if b.STT != 0 {
		t.Errorf("expected no STT on buys, got %.2f", b.STT)
	}
	if b.GST != 3.6 {
		t.Errorf("expected GST 3.60, got %.2f", b.GST)
	}
	if b.StampDuty != 9.75 {
		t.Errorf("expected stamp duty 9.75, got %.2f", b.StampDuty)
	}
	if b.IsSell {
		t.Errorf("expected is_sell false")
	}
}

func TestCalculate_SellSide(t *testing.T) {
	c := New(DefaultRates())
	b := c.Calculate(326000, true)

	if b.STT != 40.75 {
		t.Errorf("expected STT 40.75, got %.2f", b.STT)
	}
	if b.StampDuty != 0 {
		t.Errorf("expected no stamp duty on sells, got %.2f", b.StampDuty)
	}
	if !b.IsSell {
		t.Errorf("expected is_sell true")
	}
}

func TestCalculate_BrokerageBelowCap(t *testing.T) {
	c := New(DefaultRates())
	// 0.03% of 10000 = 3, under the 20 rupee cap
	b := c.Calculate(10000, false)
	if b.Brokerage != 3 {
		t.Errorf("expected percentage brokerage 3, got %.2f", b.Brokerage)
	}
}

func TestCalculate_TotalsAndPercentage(t *testing.T) {
	c := New(DefaultRates())
	b := c.Calculate(325000, false)

	sum := b.Brokerage + b.STT + b.GST + b.ExchangeCharges + b.SEBICharges + b.StampDuty
	if math.Abs(b.TotalCost-sum) > 0.02 {
		t.Errorf("total %.2f does not match component sum %.2f", b.TotalCost, sum)
	}
	want := b.TotalCost / b.TradeValue * 100
	if math.Abs(b.CostPercentage-want) > 0.001 {
		t.Errorf("cost percentage %.4f does not match %.4f", b.CostPercentage, want)
	}
}

func TestRoundTripCost_HundredShares(t *testing.T) {
	// Buy 100 shares at 3250, sell at 3260. Each leg's cost sits in [30, 80];
	// net profit equals the 1000 gross minus the round-trip total.
	c := New(DefaultRates())
	buy := c.Calculate(325000, false)
	sell := c.Calculate(326000, true)

	if buy.TotalCost < 30 || buy.TotalCost > 80 {
		t.Errorf("expected buy-leg cost in [30, 80], got %.2f", buy.TotalCost)
	}
	if sell.TotalCost < 30 || sell.TotalCost > 80 {
		t.Errorf("expected sell-leg cost in [30, 80], got %.2f", sell.TotalCost)
	}

	total := c.RoundTripCost(100, 3250, 3260)
	if math.Abs(total-(buy.TotalCost+sell.TotalCost)) > 0.01 {
		t.Errorf("round trip %.2f does not match leg sum %.2f", total, buy.TotalCost+sell.TotalCost)
	}

	gross := float64(100) * (3260 - 3250)
	net := gross - total
	if net >= gross || net <= 0 {
		t.Errorf("expected positive net profit below gross, got %.2f", net)
	}
}

func TestRoundTripCost_AlwaysPositive(t *testing.T) {
	c := New(DefaultRates())
	for _, qty := range []int{1, 10, 1000} {
		for _, px := range []float64{5, 100, 5000} {
			if total := c.RoundTripCost(qty, px, px); total <= 0 {
				t.Errorf("qty=%d px=%.0f: expected positive round-trip cost, got %.2f", qty, px, total)
			}
		}
	}
}
