package slippage

import (
	"math"
	"testing"

	"equity-intraday-lab/internal/domain"
)

func TestCalculate_TinyOrderOnlyBase(t *testing.T) {
	c := New(DefaultParams())
	// 0.05% of daily volume is below the impact threshold.
	out := c.Calculate(Input{
		OrderType:   domain.OrderTypeMarket,
		OrderSize:   50,
		Price:       100,
		DailyVolume: 100000,
	})
	if out.ImpactBps != 0 {
		t.Errorf("expected zero impact, got %.2f", out.ImpactBps)
	}
	if out.TotalBps != 5 {
		t.Errorf("expected 5 bps base only, got %.2f", out.TotalBps)
	}
}

func TestCalculate_PiecewiseImpactBands(t *testing.T) {
	c := New(DefaultParams())
	cases := []struct {
		size, volume float64
		wantImpact   float64
	}{
		{500, 100000, 1.0},   // 0.5% -> 2*0.5
		{3000, 100000, 12.0}, // 3% -> 2 + 5*2
		{7000, 100000, 42.0}, // 7% -> 22 + 10*2
		{15000, 100000, 172}, // 15% -> 72 + 20*5
		{50000, 100000, 200}, // 50% -> capped
	}
	for _, tc := range cases {
		out := c.Calculate(Input{OrderType: domain.OrderTypeMarket, OrderSize: tc.size, Price: 100, DailyVolume: tc.volume})
		if math.Abs(out.ImpactBps-tc.wantImpact) > 1e-9 {
			t.Errorf("size %.0f / volume %.0f: expected impact %.1f, got %.2f", tc.size, tc.volume, tc.wantImpact, out.ImpactBps)
		}
	}
}

func TestCalculate_UnknownVolumeDefaultsImpact(t *testing.T) {
	c := New(DefaultParams())
	out := c.Calculate(Input{OrderType: domain.OrderTypeMarket, OrderSize: 1000, Price: 100})
	if out.ImpactBps != 50 {
		t.Errorf("expected 50 bps default impact, got %.2f", out.ImpactBps)
	}
}

func TestCalculate_ThinVolumeSell(t *testing.T) {
	// 10k into 50k daily volume is 20% participation: impact caps at 200 bps
	// and the sell factor lifts the total to 225.5.
	c := New(DefaultParams())
	out := c.Calculate(Input{
		OrderType:   domain.OrderTypeMarket,
		OrderSize:   10000,
		Price:       100,
		DailyVolume: 50000,
		IsSell:      true,
	})
	if out.ImpactBps != 200 {
		t.Errorf("expected impact capped at 200 bps, got %.2f", out.ImpactBps)
	}
	if math.Abs(out.TotalBps-225.5) > 1e-9 {
		t.Errorf("expected 225.5 bps total, got %.4f", out.TotalBps)
	}

	fill := FillPrice(100, out, true)
	if fill >= 100 {
		t.Errorf("expected sell fill below 100, got %.4f", fill)
	}
}

func TestCalculate_VolatilityComponent(t *testing.T) {
	c := New(DefaultParams())
	// Alternating +/-1% moves: returns have a nonzero sample std-dev.
	prices := []float64{100, 101, 99.99, 100.99, 99.98, 100.98}
	out := c.Calculate(Input{OrderType: domain.OrderTypeMarket, OrderSize: 10, Price: 100, DailyVolume: 1e9, Prices: prices})
	if out.VolatilityBps <= 0 {
		t.Errorf("expected positive volatility component, got %.4f", out.VolatilityBps)
	}
}

func TestCalculate_FlatPricesNoVolatility(t *testing.T) {
	c := New(DefaultParams())
	prices := []float64{100, 100, 100, 100}
	out := c.Calculate(Input{OrderType: domain.OrderTypeMarket, OrderSize: 10, Price: 100, DailyVolume: 1e9, Prices: prices})
	if out.VolatilityBps != 0 {
		t.Errorf("expected zero volatility component, got %.4f", out.VolatilityBps)
	}
}

func TestCalculate_LimitDiscount(t *testing.T) {
	c := New(DefaultParams())
	market := c.Calculate(Input{OrderType: domain.OrderTypeMarket, OrderSize: 1000, Price: 100})
	// Aggressive buy limit above the market gets the plain limit discount.
	limit := c.Calculate(Input{OrderType: domain.OrderTypeLimit, OrderSize: 1000, Price: 100, LimitPrice: 101})
	if math.Abs(limit.TotalBps-market.TotalBps*0.3) > 1e-9 {
		t.Errorf("expected limit total %.4f, got %.4f", market.TotalBps*0.3, limit.TotalBps)
	}
}

func TestCalculate_WrongSideLimitDiscountedFurther(t *testing.T) {
	c := New(DefaultParams())
	// Buy limit below the market is passive: extra 0.5 factor.
	passive := c.Calculate(Input{OrderType: domain.OrderTypeLimit, OrderSize: 1000, Price: 100, LimitPrice: 99})
	aggressive := c.Calculate(Input{OrderType: domain.OrderTypeLimit, OrderSize: 1000, Price: 100, LimitPrice: 101})
	if math.Abs(passive.TotalBps-aggressive.TotalBps*0.5) > 1e-9 {
		t.Errorf("expected passive total %.4f, got %.4f", aggressive.TotalBps*0.5, passive.TotalBps)
	}
}

func TestFillPrice_BuysUpSellsDown(t *testing.T) {
	slip := domain.SlippageBreakdown{TotalBps: 10}
	if got := FillPrice(100, slip, false); got <= 100 {
		t.Errorf("expected buy fill above 100, got %.4f", got)
	}
	if got := FillPrice(100, slip, true); got >= 100 {
		t.Errorf("expected sell fill below 100, got %.4f", got)
	}
}
