// Package position tracks cash, open positions and realised P&L for one
// backtest run.
package position

import (
	"errors"
	"fmt"
	"math"
	"time"

	"equity-intraday-lab/internal/domain"
)

// ErrInsufficientCash is returned when an open would drive cash negative.
var ErrInsufficientCash = errors.New("insufficient cash")

// ErrNoOpenPosition is returned when closing a symbol with nothing open.
var ErrNoOpenPosition = errors.New("no open position")

// Manager holds per-run portfolio state. Opens are keyed by symbol so the
// one-open-per-symbol invariant is structural; closed positions keep their
// close order. Not safe for concurrent use; each backtest run owns one
// manager.
type Manager struct {
	cash           float64
	initialCapital float64
	open           map[string]*domain.Position
	closed         []*domain.Position
}

// New creates a manager with the given starting capital.
func New(initialCapital float64) *Manager {
	m := &Manager{}
	m.Initialize(initialCapital)
	return m
}

// Initialize resets all state to a fresh run.
func (m *Manager) Initialize(initialCapital float64) {
	m.cash = initialCapital
	m.initialCapital = initialCapital
	m.open = make(map[string]*domain.Position)
	m.closed = nil
}

// Cash returns the current cash balance.
func (m *Manager) Cash() float64 { return m.cash }

// OpenPosition deducts quantity*price + entryCosts from cash and records the
// position. Fails when cash would go negative or a position is already open
// on the symbol.
func (m *Manager) OpenPosition(symbol string, quantity int64, entryPrice float64, entryTime time.Time, entryCosts float64) (*domain.Position, error) {
	if _, ok := m.open[symbol]; ok {
		return nil, fmt.Errorf("position already open on %s", symbol)
	}

	required := float64(quantity)*entryPrice + entryCosts
	if required > m.cash {
		return nil, fmt.Errorf("%w: need %.2f, have %.2f", ErrInsufficientCash, required, m.cash)
	}

	m.cash -= required
	pos := &domain.Position{
		Symbol:     symbol,
		Quantity:   quantity,
		EntryPrice: entryPrice,
		EntryTime:  entryTime,
		EntryCosts: entryCosts,
	}
	m.open[symbol] = pos
	return pos, nil
}

// ClosePosition marks the open position on symbol closed, credits the exit
// proceeds net of costs, and moves it to the closed list. Positions always
// close in full.
func (m *Manager) ClosePosition(symbol string, exitPrice float64, exitTime time.Time, exitCosts float64) (*domain.Position, error) {
	pos, ok := m.open[symbol]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoOpenPosition, symbol)
	}

	m.cash += float64(pos.Quantity)*exitPrice - exitCosts

	pos.ExitPrice = exitPrice
	pos.ExitTime = &exitTime
	pos.ExitCosts = exitCosts
	pos.IsClosed = true

	delete(m.open, symbol)
	m.closed = append(m.closed, pos)
	return pos, nil
}

// HasOpen reports whether a position is open on symbol.
func (m *Manager) HasOpen(symbol string) bool {
	_, ok := m.open[symbol]
	return ok
}

// OpenCount returns the number of open positions.
func (m *Manager) OpenCount() int { return len(m.open) }

// OpenPositions returns the open positions.
func (m *Manager) OpenPositions() []*domain.Position {
	out := make([]*domain.Position, 0, len(m.open))
	for _, p := range m.open {
		out = append(out, p)
	}
	return out
}

// ClosedPositions returns closed positions in close order.
func (m *Manager) ClosedPositions() []*domain.Position { return m.closed }

// GetPortfolioValue returns cash plus open positions marked at prices.
// Symbols missing from prices are marked at their entry price.
func (m *Manager) GetPortfolioValue(prices map[string]float64) float64 {
	value := m.cash
	for sym, pos := range m.open {
		px, ok := prices[sym]
		if !ok {
			px = pos.EntryPrice
		}
		value += float64(pos.Quantity) * px
	}
	return value
}

// GetTotalPnL snapshots realised and unrealised P&L at the given prices.
func (m *Manager) GetTotalPnL(prices map[string]float64) domain.PnLSnapshot {
	realized := 0.0
	for _, p := range m.closed {
		realized += p.RealizedPnL()
	}

	positionsValue := 0.0
	unrealized := 0.0
	for sym, pos := range m.open {
		px, ok := prices[sym]
		if !ok {
			px = pos.EntryPrice
		}
		positionsValue += float64(pos.Quantity) * px
		unrealized += (px-pos.EntryPrice)*float64(pos.Quantity) - pos.EntryCosts
	}

	portfolio := m.cash + positionsValue
	returnPct := 0.0
	if m.initialCapital > 0 {
		returnPct = (portfolio - m.initialCapital) / m.initialCapital * 100
	}

	return domain.PnLSnapshot{
		RealizedPnL:    realized,
		UnrealizedPnL:  unrealized,
		Cash:           m.cash,
		PositionsValue: positionsValue,
		PortfolioValue: portfolio,
		TotalReturnPct: returnPct,
	}
}

// GetStatistics summarises the closed positions: win rate, average win and
// loss, profit factor (+Inf when the loss side is zero), and the mean
// holding period in days.
func (m *Manager) GetStatistics() domain.TradeStatistics {
	stats := domain.TradeStatistics{TotalTrades: len(m.closed)}
	if len(m.closed) == 0 {
		return stats
	}

	var winSum, lossSum, holdingDays float64
	for _, p := range m.closed {
		pnl := p.RealizedPnL()
		stats.TotalRealizedPnL += pnl
		if pnl > 0 {
			stats.WinningTrades++
			winSum += pnl
		} else {
			stats.LosingTrades++
			lossSum += -pnl
		}
		holdingDays += p.HoldingPeriod().Hours() / 24
	}

	stats.WinRate = float64(stats.WinningTrades) / float64(stats.TotalTrades) * 100
	if stats.WinningTrades > 0 {
		stats.AverageWin = winSum / float64(stats.WinningTrades)
	}
	if stats.LosingTrades > 0 {
		stats.AverageLoss = lossSum / float64(stats.LosingTrades)
	}
	if lossSum > 0 {
		stats.ProfitFactor = winSum / lossSum
	} else if winSum > 0 {
		stats.ProfitFactor = math.Inf(1)
	}
	stats.AvgHoldingDays = holdingDays / float64(stats.TotalTrades)
	return stats
}
