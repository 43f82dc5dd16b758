// Package backtest steps candles through an indicator strategy and the
// order, position and cost stack, producing risk-adjusted results.
package backtest

import (
	"errors"
	"math"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"equity-intraday-lab/internal/calendar"
	"equity-intraday-lab/internal/domain"
	"equity-intraday-lab/internal/indicators"
	"equity-intraday-lab/internal/observability"
	"equity-intraday-lab/internal/order"
	"equity-intraday-lab/internal/perf"
	"equity-intraday-lab/internal/position"
	"equity-intraday-lab/internal/strategy"
)

// ErrEmptyWindow is returned when the date filter removes every candle.
var ErrEmptyWindow = errors.New("no candles in backtest window")

// Options configures one backtest run.
type Options struct {
	InitialCapital  float64
	OrderType       domain.OrderType
	PositionSizePct float64 // fraction of portfolio value per entry
	MaxPositions    int
	StopLossPct     float64 // 0 disables
	TakeProfitPct   float64 // 0 disables
	RiskFreeRate    float64 // annualised, for Sharpe/Sortino
	StartDate       *time.Time
	EndDate         *time.Time
}

// DefaultOptions returns the standard run parameters.
func DefaultOptions() Options {
	return Options{
		InitialCapital:  1_000_000,
		OrderType:       domain.OrderTypeMarket,
		PositionSizePct: 0.2,
		MaxPositions:    5,
		StopLossPct:     0.02,
		TakeProfitPct:   0.05,
		RiskFreeRate:    0.065,
	}
}

// Engine owns one live position manager per run; there is no cross-run
// state.
type Engine struct {
	cal    *calendar.Calendar
	orders *order.Simulator
	obs    *observability.Metrics
	log    zerolog.Logger
}

// New creates an engine. obs may be nil.
func New(cal *calendar.Calendar, orders *order.Simulator, obs *observability.Metrics, log zerolog.Logger) *Engine {
	return &Engine{
		cal:    cal,
		orders: orders,
		obs:    obs,
		log:    log.With().Str("component", "backtest").Logger(),
	}
}

// Run executes the strategy over candles in chronological order. strat may
// be nil, in which case the default multi-indicator strategy is used.
func (e *Engine) Run(symbol string, candles []domain.Candle, strat strategy.Strategy, opts Options) (*domain.BacktestResult, error) {
	started := time.Now()
	if strat == nil {
		strat = strategy.NewMultiIndicator()
	}

	sort.Slice(candles, func(i, j int) bool { return candles[i].StartTS < candles[j].StartTS })
	candles = filterWindow(candles, opts.StartDate, opts.EndDate)
	if len(candles) == 0 {
		return nil, ErrEmptyWindow
	}

	run := &runState{
		symbol:    symbol,
		opts:      opts,
		positions: position.New(opts.InitialCapital),
		equity:    []float64{opts.InitialCapital},
	}

	for i := range candles {
		candle := candles[i]
		ts := candle.Start()
		if !e.cal.ValidateTradingSession(ts).IsMarketOpen {
			continue
		}

		if run.positions.HasOpen(symbol) {
			if e.checkExitTriggers(run, candle, ts) {
				run.step(candle.Close)
				continue
			}
		}

		snap := indicators.Compute(candles[:i+1])
		sig := strat.GenerateSignal(snap, candle)
		switch sig.Action {
		case strategy.ActionBuy:
			e.tryEnter(run, candle, ts, sig, candles[:i+1])
		case strategy.ActionSell:
			if run.positions.HasOpen(symbol) {
				e.exit(run, candle.Close, ts, domain.ExitReasonSignal)
			}
		}

		run.step(candle.Close)
	}

	result := e.finalize(run, candles)
	if e.obs != nil {
		e.obs.ObserveBacktest(len(run.trades), time.Since(started))
	}
	return result, nil
}

// runState is the per-run mutable state.
type runState struct {
	symbol    string
	opts      Options
	positions *position.Manager
	trades    []domain.Trade
	equity    []float64
	returns   []float64
	lastClose float64
}

// step appends the post-candle portfolio value and the periodic return.
func (r *runState) step(close float64) {
	r.lastClose = close
	value := r.positions.GetPortfolioValue(map[string]float64{r.symbol: close})
	r.equity = append(r.equity, value)
	if n := len(r.equity); n >= 2 && r.equity[n-2] != 0 {
		r.returns = append(r.returns, (r.equity[n-1]-r.equity[n-2])/r.equity[n-2])
	}
}

// checkExitTriggers evaluates stop-loss then take-profit against the candle
// range. Triggered exits fill at the stop or target price, not the close,
// and suppress signal evaluation for the candle.
func (e *Engine) checkExitTriggers(run *runState, candle domain.Candle, ts time.Time) bool {
	pos := run.positions.OpenPositions()[0]

	if run.opts.StopLossPct > 0 {
		stopPrice := pos.EntryPrice * (1 - run.opts.StopLossPct)
		if candle.Low <= stopPrice {
			e.exit(run, stopPrice, ts, domain.ExitReasonStopLoss)
			return true
		}
	}
	if run.opts.TakeProfitPct > 0 {
		targetPrice := pos.EntryPrice * (1 + run.opts.TakeProfitPct)
		if candle.High >= targetPrice {
			e.exit(run, targetPrice, ts, domain.ExitReasonTakeProfit)
			return true
		}
	}
	return false
}

// tryEnter sizes and executes an entry. Rejections and insufficient cash are
// logged, never fatal.
func (e *Engine) tryEnter(run *runState, candle domain.Candle, ts time.Time, sig strategy.Signal, history []domain.Candle) {
	if run.positions.HasOpen(run.symbol) {
		return
	}
	if run.positions.OpenCount() >= run.opts.MaxPositions {
		e.log.Debug().Str("symbol", run.symbol).Msg("entry rejected, max positions reached")
		return
	}

	value := run.positions.GetPortfolioValue(map[string]float64{run.symbol: candle.Close})
	quantity := int64(math.Floor(value * run.opts.PositionSizePct / candle.Close))
	if quantity < 1 {
		return
	}

	res := e.orders.SimulateMarketOrder(order.Request{
		Side:        domain.SideBuy,
		Quantity:    quantity,
		Price:       candle.Close,
		DailyVolume: candle.Volume,
		Prices:      closes(history),
	})

	_, err := run.positions.OpenPosition(run.symbol, quantity, res.FillPrice, ts, res.Costs.TotalCost)
	if err != nil {
		e.log.Warn().Err(err).Str("symbol", run.symbol).Int64("quantity", quantity).Msg("entry skipped")
		return
	}

	run.trades = append(run.trades, domain.Trade{
		Type:       domain.TradeEntry,
		Symbol:     run.symbol,
		Time:       ts,
		Quantity:   quantity,
		Price:      res.FillPrice,
		Costs:      res.Costs.TotalCost,
		Confidence: sig.Confidence,
		OrderID:    res.OrderID,
	})
}

// exit closes the open position with a market sell at price.
func (e *Engine) exit(run *runState, price float64, ts time.Time, reason string) {
	pos := run.positions.OpenPositions()[0]

	res := e.orders.SimulateMarketOrder(order.Request{
		Side:     domain.SideSell,
		Quantity: pos.Quantity,
		Price:    price,
	})

	closed, err := run.positions.ClosePosition(run.symbol, res.FillPrice, ts, res.Costs.TotalCost)
	if err != nil {
		e.log.Error().Err(err).Str("symbol", run.symbol).Msg("close failed")
		return
	}

	run.trades = append(run.trades, domain.Trade{
		Type:     domain.TradeExit,
		Symbol:   run.symbol,
		Time:     ts,
		Quantity: closed.Quantity,
		Price:    res.FillPrice,
		Costs:    res.Costs.TotalCost,
		Reason:   reason,
		OrderID:  res.OrderID,
	})
}

// finalize computes metrics over the finished run.
func (e *Engine) finalize(run *runState, candles []domain.Candle) *domain.BacktestResult {
	first := candles[0].Start()
	last := candles[len(candles)-1].Start()
	days := int(last.Sub(first).Hours() / 24)

	prices := map[string]float64{run.symbol: run.lastClose}
	pnl := run.positions.GetTotalPnL(prices)

	e.log.Info().Str("symbol", run.symbol).Int("trades", len(run.trades)).
		Float64("final_value", pnl.PortfolioValue).Msg("backtest complete")

	return &domain.BacktestResult{
		Symbol:          run.symbol,
		StartDate:       first,
		EndDate:         last,
		InitialCapital:  run.opts.InitialCapital,
		FinalValue:      pnl.PortfolioValue,
		Metrics:         perf.Compute(run.equity, run.returns, run.opts.RiskFreeRate, days),
		Statistics:      run.positions.GetStatistics(),
		PnL:             pnl,
		Trades:          run.trades,
		EquityCurve:     run.equity,
		Returns:         run.returns,
		TotalTrades:     len(run.trades),
		ClosedPositions: run.positions.ClosedPositions(),
		OpenPositions:   run.positions.OpenPositions(),
	}
}

func filterWindow(candles []domain.Candle, start, end *time.Time) []domain.Candle {
	if start == nil && end == nil {
		return candles
	}
	out := make([]domain.Candle, 0, len(candles))
	for _, c := range candles {
		ts := c.Start()
		if start != nil && ts.Before(*start) {
			continue
		}
		if end != nil && ts.After(*end) {
			continue
		}
		out = append(out, c)
	}
	return out
}

func closes(candles []domain.Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.Close
	}
	return out
}

// HistoryFromSilver converts silver feature rows back into candles for
// backtesting over a stored dataset.
func HistoryFromSilver(rows []domain.SilverRow) []domain.Candle {
	out := make([]domain.Candle, len(rows))
	for i, r := range rows {
		out[i] = domain.Candle{
			StartTS: r.StartTS,
			Open:    r.Open,
			High:    r.High,
			Low:     r.Low,
			Close:   r.Close,
			Volume:  r.Volume,
		}
	}
	return out
}
