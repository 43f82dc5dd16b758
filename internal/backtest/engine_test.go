package backtest

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"equity-intraday-lab/internal/calendar"
	"equity-intraday-lab/internal/costs"
	"equity-intraday-lab/internal/domain"
	"equity-intraday-lab/internal/indicators"
	"equity-intraday-lab/internal/order"
	"equity-intraday-lab/internal/slippage"
	"equity-intraday-lab/internal/strategy"
)

// scripted fires fixed actions keyed by candle start, holding otherwise.
type scripted struct {
	buys  map[int64]bool
	sells map[int64]bool
}

func (s *scripted) Name() string { return "scripted" }

func (s *scripted) GenerateSignal(_ indicators.Snapshot, c domain.Candle) strategy.Signal {
	switch {
	case s.buys[c.StartTS]:
		return strategy.Signal{Action: strategy.ActionBuy, Confidence: 1}
	case s.sells[c.StartTS]:
		return strategy.Signal{Action: strategy.ActionSell, Confidence: 1}
	default:
		return strategy.Signal{Action: strategy.ActionHold}
	}
}

func testEngine(t *testing.T) *Engine {
	t.Helper()
	orders := order.New(costs.New(costs.DefaultRates()), slippage.New(slippage.DefaultParams()), zerolog.Nop())
	return New(calendar.NewNSE(), orders, nil, zerolog.Nop())
}

// sessionStart is 2025-11-05 09:15 IST, a regular trading Wednesday.
var sessionStart = time.Date(2025, 11, 5, 3, 45, 0, 0, time.UTC)

func sessionCandles(closes []float64) []domain.Candle {
	out := make([]domain.Candle, len(closes))
	for i, c := range closes {
		out[i] = domain.Candle{
			StartTS: sessionStart.Add(time.Duration(i) * 5 * time.Minute).UnixMilli(),
			Open:    c,
			High:    c + 0.5,
			Low:     c - 0.5,
			Close:   c,
			Volume:  10_000_000,
		}
	}
	return out
}

func TestRun_StopLossFillsAtStopPrice(t *testing.T) {
	e := testEngine(t)

	candles := sessionCandles([]float64{100, 100, 100, 100})
	// The stop sits at 98 after a 100 entry; the third candle trades down
	// through it.
	candles[2].Low = 97
	candles[2].Close = 97.5
	candles[2].Open = 98.5
	candles[3].Close = 97.5
	candles[3].Open = 97.5
	candles[3].High = 98
	candles[3].Low = 97

	strat := &scripted{buys: map[int64]bool{candles[1].StartTS: true}}
	opts := DefaultOptions()
	opts.StopLossPct = 0.02
	opts.TakeProfitPct = 0

	res, err := e.Run("RELIANCE.NS", candles, strat, opts)
	require.NoError(t, err)

	require.Len(t, res.Trades, 2)
	entry, exit := res.Trades[0], res.Trades[1]
	assert.Equal(t, domain.TradeEntry, entry.Type)
	assert.Equal(t, domain.TradeExit, exit.Type)
	assert.Equal(t, domain.ExitReasonStopLoss, exit.Reason)

	// The exit anchors on the stop price 98, not the candle close, with sell
	// slippage shading the fill below it.
	assert.Less(t, exit.Price, 98.0)
	assert.Greater(t, exit.Price, 96.0)
	assert.Equal(t, entry.Quantity, exit.Quantity)

	require.Len(t, res.ClosedPositions, 1)
	assert.Negative(t, res.ClosedPositions[0].RealizedPnL())
	assert.Equal(t, 1, res.Statistics.TotalTrades)
	assert.Equal(t, 1, res.Statistics.LosingTrades)
}

func TestRun_TakeProfitFillsAtTarget(t *testing.T) {
	e := testEngine(t)

	candles := sessionCandles([]float64{100, 100, 104, 104})
	// Target is 105 after a 100 entry; the last candle tags it.
	candles[3].High = 106

	strat := &scripted{buys: map[int64]bool{candles[1].StartTS: true}}
	opts := DefaultOptions()
	opts.StopLossPct = 0
	opts.TakeProfitPct = 0.05

	res, err := e.Run("RELIANCE.NS", candles, strat, opts)
	require.NoError(t, err)

	require.Len(t, res.Trades, 2)
	exit := res.Trades[1]
	assert.Equal(t, domain.ExitReasonTakeProfit, exit.Reason)
	assert.Greater(t, exit.Price, 103.0)

	require.Len(t, res.ClosedPositions, 1)
	assert.Positive(t, res.ClosedPositions[0].RealizedPnL())
	assert.Equal(t, 1, res.Statistics.WinningTrades)
}

func TestRun_SignalExit(t *testing.T) {
	e := testEngine(t)

	candles := sessionCandles([]float64{100, 100, 101, 101})
	strat := &scripted{
		buys:  map[int64]bool{candles[1].StartTS: true},
		sells: map[int64]bool{candles[3].StartTS: true},
	}
	opts := DefaultOptions()
	opts.StopLossPct = 0
	opts.TakeProfitPct = 0

	res, err := e.Run("RELIANCE.NS", candles, strat, opts)
	require.NoError(t, err)

	require.Len(t, res.Trades, 2)
	assert.Equal(t, domain.ExitReasonSignal, res.Trades[1].Reason)
	assert.Empty(t, res.OpenPositions)
}

func TestRun_AccountingIdentity(t *testing.T) {
	e := testEngine(t)

	candles := sessionCandles([]float64{100, 100, 102, 103, 101, 102})
	strat := &scripted{buys: map[int64]bool{candles[1].StartTS: true}}
	opts := DefaultOptions()
	opts.StopLossPct = 0
	opts.TakeProfitPct = 0

	res, err := e.Run("RELIANCE.NS", candles, strat, opts)
	require.NoError(t, err)

	// The position stays open, so the run ends with unrealised P&L marked at
	// the last close.
	require.Len(t, res.OpenPositions, 1)
	assert.Equal(t, res.PnL.PortfolioValue, res.FinalValue)
	assert.InDelta(t,
		res.InitialCapital+res.PnL.RealizedPnL+res.PnL.UnrealizedPnL,
		res.FinalValue, 1e-6)

	// Equity curve: the seed point plus one point per session candle.
	assert.Len(t, res.EquityCurve, len(candles)+1)
	assert.Equal(t, opts.InitialCapital, res.EquityCurve[0])
	assert.Len(t, res.Returns, len(candles))
}

func TestRun_SkipsClosedSessions(t *testing.T) {
	e := testEngine(t)

	// 2025-11-09 is a Sunday; every bar lands outside a trading session.
	sunday := time.Date(2025, 11, 9, 3, 45, 0, 0, time.UTC)
	candles := make([]domain.Candle, 5)
	for i := range candles {
		candles[i] = domain.Candle{
			StartTS: sunday.Add(time.Duration(i) * 5 * time.Minute).UnixMilli(),
			Open:    100, High: 100.5, Low: 99.5, Close: 100, Volume: 1000,
		}
	}

	strat := &scripted{buys: map[int64]bool{candles[1].StartTS: true}}
	res, err := e.Run("RELIANCE.NS", candles, strat, DefaultOptions())
	require.NoError(t, err)

	assert.Empty(t, res.Trades)
	assert.Equal(t, []float64{DefaultOptions().InitialCapital}, res.EquityCurve)
}

func TestRun_EmptyWindow(t *testing.T) {
	e := testEngine(t)

	candles := sessionCandles([]float64{100, 101})
	after := sessionStart.Add(24 * time.Hour)
	opts := DefaultOptions()
	opts.StartDate = &after

	_, err := e.Run("RELIANCE.NS", candles, &scripted{}, opts)
	assert.ErrorIs(t, err, ErrEmptyWindow)
}

func TestRun_PositionSizing(t *testing.T) {
	e := testEngine(t)

	candles := sessionCandles([]float64{100, 100, 100})
	strat := &scripted{buys: map[int64]bool{candles[1].StartTS: true}}
	opts := DefaultOptions()
	opts.InitialCapital = 100_000
	opts.PositionSizePct = 0.2
	opts.StopLossPct = 0
	opts.TakeProfitPct = 0

	res, err := e.Run("RELIANCE.NS", candles, strat, opts)
	require.NoError(t, err)

	require.Len(t, res.Trades, 1)
	// floor(100000 * 0.2 / 100) shares.
	assert.Equal(t, int64(200), res.Trades[0].Quantity)
}

func TestHistoryFromSilver_PreservesOHLCV(t *testing.T) {
	rows := []domain.SilverRow{
		{StartTS: 1000, Open: 1, High: 2, Low: 0.5, Close: 1.5, Volume: 42},
		{StartTS: 2000, Open: 1.5, High: 3, Low: 1, Close: 2.5, Volume: 43},
	}
	candles := HistoryFromSilver(rows)
	require.Len(t, candles, 2)
	assert.Equal(t, domain.Candle{StartTS: 1000, Open: 1, High: 2, Low: 0.5, Close: 1.5, Volume: 42}, candles[0])
	assert.Equal(t, int64(2000), candles[1].StartTS)
}
