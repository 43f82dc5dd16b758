package domain

import "time"

// Position tracks one holding from entry to exit.
// Transitions open -> closed exactly once; a closed position is never reopened.
type Position struct {
	Symbol     string     `json:"symbol"`
	Quantity   int64      `json:"quantity"`
	EntryPrice float64    `json:"entry_price"`
	EntryTime  time.Time  `json:"entry_time"`
	EntryCosts float64    `json:"entry_costs"`
	ExitPrice  float64    `json:"exit_price,omitempty"`
	ExitTime   *time.Time `json:"exit_time,omitempty"`
	ExitCosts  float64    `json:"exit_costs"`
	IsClosed   bool       `json:"is_closed"`
}

// RealizedPnL returns the net profit of a closed position after costs.
func (p *Position) RealizedPnL() float64 {
	if !p.IsClosed {
		return 0
	}
	gross := (p.ExitPrice - p.EntryPrice) * float64(p.Quantity)
	return gross - p.EntryCosts - p.ExitCosts
}

// HoldingPeriod returns the time between entry and exit for a closed position.
func (p *Position) HoldingPeriod() time.Duration {
	if !p.IsClosed || p.ExitTime == nil {
		return 0
	}
	return p.ExitTime.Sub(p.EntryTime)
}
