// Package order simulates fills for market and limit orders, composing the
// slippage and cost models.
package order

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"equity-intraday-lab/internal/costs"
	"equity-intraday-lab/internal/domain"
	"equity-intraday-lab/internal/slippage"
)

// defaultExpiryMinutes is how long a resting limit order stays live.
const defaultExpiryMinutes = 60

// Request describes one order to simulate. DailyVolume and Prices feed the
// slippage model; LimitPrice applies to limit orders only.
type Request struct {
	Side        domain.OrderSide
	Quantity    int64
	Price       float64 // current market price
	LimitPrice  float64
	DailyVolume float64
	Prices      []float64
	ExpiryMins  int // 0 means the default
}

// Simulator produces order fills. It holds no per-order state; pending
// orders live in the returned OrderResult.
type Simulator struct {
	costs    *costs.Calculator
	slippage *slippage.Calculator
	log      zerolog.Logger
	now      func() time.Time
}

// New creates a simulator.
func New(costCalc *costs.Calculator, slipCalc *slippage.Calculator, log zerolog.Logger) *Simulator {
	return &Simulator{
		costs:    costCalc,
		slippage: slipCalc,
		log:      log.With().Str("component", "order_simulator").Logger(),
		now:      time.Now,
	}
}

// WithClock replaces the wall clock, for tests.
func (s *Simulator) WithClock(now func() time.Time) *Simulator {
	s.now = now
	return s
}

// SimulateMarketOrder always fills at the slippage-adjusted price.
func (s *Simulator) SimulateMarketOrder(req Request) domain.OrderResult {
	now := s.now()
	slip := s.slippage.Calculate(slippage.Input{
		OrderType:   domain.OrderTypeMarket,
		OrderSize:   float64(req.Quantity),
		Price:       req.Price,
		DailyVolume: req.DailyVolume,
		Prices:      req.Prices,
		IsSell:      req.Side == domain.SideSell,
	})
	res := s.fill(req, domain.OrderTypeMarket, fmt.Sprintf("MO_%d", now.Unix()), slip, now)

	s.log.Debug().Str("order_id", res.OrderID).Str("side", string(req.Side)).
		Int64("quantity", req.Quantity).Float64("fill_price", res.FillPrice).Msg("market order filled")
	return res
}

// SimulateLimitOrder fills immediately when the limit is at or through the
// market (sell at or below, buy at or above); otherwise it returns a pending
// order with an expiry time.
func (s *Simulator) SimulateLimitOrder(req Request) domain.OrderResult {
	now := s.now()
	isSell := req.Side == domain.SideSell

	fillable := (isSell && req.LimitPrice <= req.Price) || (!isSell && req.LimitPrice >= req.Price)
	if !fillable {
		expiryMins := req.ExpiryMins
		if expiryMins <= 0 {
			expiryMins = defaultExpiryMinutes
		}
		expiry := now.Add(time.Duration(expiryMins) * time.Minute)
		return domain.OrderResult{
			OrderID:       fmt.Sprintf("LO_%d", now.Unix()),
			Type:          domain.OrderTypeLimit,
			Side:          req.Side,
			Quantity:      req.Quantity,
			ExpectedPrice: req.Price,
			LimitPrice:    req.LimitPrice,
			Status:        domain.OrderStatusPending,
			ExpiryTime:    &expiry,
		}
	}

	slip := s.slippage.Calculate(slippage.Input{
		OrderType:   domain.OrderTypeLimit,
		OrderSize:   float64(req.Quantity),
		Price:       req.Price,
		DailyVolume: req.DailyVolume,
		Prices:      req.Prices,
		IsSell:      isSell,
		LimitPrice:  req.LimitPrice,
	})
	res := s.fill(req, domain.OrderTypeLimit, fmt.Sprintf("LO_%d", now.Unix()), slip, now)
	res.LimitPrice = req.LimitPrice
	return res
}

// CheckLimitOrderFill re-evaluates a pending limit order against the current
// price: expire it past its expiry time, fill it when the market trades
// through the limit, otherwise leave it pending. The order keeps its ID.
func (s *Simulator) CheckLimitOrderFill(pending domain.OrderResult, currentPrice float64, now time.Time) domain.OrderResult {
	if pending.Status != domain.OrderStatusPending {
		return pending
	}
	if pending.ExpiryTime != nil && now.After(*pending.ExpiryTime) {
		pending.Status = domain.OrderStatusExpired
		s.log.Debug().Str("order_id", pending.OrderID).Msg("limit order expired")
		return pending
	}

	isSell := pending.Side == domain.SideSell
	fillable := (isSell && currentPrice >= pending.LimitPrice) || (!isSell && currentPrice <= pending.LimitPrice)
	if !fillable {
		return pending
	}

	slip := s.slippage.Calculate(slippage.Input{
		OrderType:  domain.OrderTypeLimit,
		OrderSize:  float64(pending.Quantity),
		Price:      currentPrice,
		IsSell:     isSell,
		LimitPrice: pending.LimitPrice,
	})
	filled := s.fill(Request{
		Side:     pending.Side,
		Quantity: pending.Quantity,
		Price:    currentPrice,
	}, domain.OrderTypeLimit, pending.OrderID, slip, now)
	filled.LimitPrice = pending.LimitPrice
	filled.ExpiryTime = pending.ExpiryTime
	return filled
}

// fill builds a filled OrderResult from a slippage estimate. Net value is
// what the cash balance moves by: cost-inclusive outflow on buys, fee-net
// inflow on sells.
func (s *Simulator) fill(req Request, typ domain.OrderType, orderID string, slip domain.SlippageBreakdown, now time.Time) domain.OrderResult {
	isSell := req.Side == domain.SideSell
	fillPrice := slippage.FillPrice(req.Price, slip, isSell)
	tradeValue := float64(req.Quantity) * fillPrice
	breakdown := s.costs.Calculate(tradeValue, isSell)

	netValue := tradeValue + breakdown.TotalCost
	if isSell {
		netValue = tradeValue - breakdown.TotalCost
	}

	fillTime := now
	return domain.OrderResult{
		OrderID:       orderID,
		Type:          typ,
		Side:          req.Side,
		Quantity:      req.Quantity,
		ExpectedPrice: req.Price,
		FillPrice:     fillPrice,
		Slippage:      slip,
		TradeValue:    tradeValue,
		Costs:         breakdown,
		NetValue:      netValue,
		Status:        domain.OrderStatusFilled,
		FillTime:      &fillTime,
	}
}
