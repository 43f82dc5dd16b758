// Package strategy defines pluggable signal strategies over indicator
// snapshots. Strategies are pure: they never observe portfolio state.
package strategy

import (
	"math"

	"equity-intraday-lab/internal/domain"
	"equity-intraday-lab/internal/indicators"
)

// Action is the decision emitted for one candle.
type Action string

// Signal actions.
const (
	ActionBuy  Action = "buy"
	ActionSell Action = "sell"
	ActionHold Action = "hold"
)

// Signal is one strategy decision with a confidence in [0, 1].
type Signal struct {
	Action     Action
	Confidence float64
	Reasons    []string
}

// Strategy turns an indicator snapshot and the current candle into a signal.
type Strategy interface {
	Name() string
	GenerateSignal(snap indicators.Snapshot, candle domain.Candle) Signal
}

// Indicator vote weights for the multi-indicator strategy.
var voteWeights = map[string]float64{
	"rsi":       1.0,
	"macd":      1.2,
	"bollinger": 1.0,
	"mfi":       0.8,
	"sma_cross": 1.0,
}

// minConfirmations is the vote count required before acting.
const minConfirmations = 3

// MultiIndicator requires at least three weighted confirmations among RSI,
// MACD, Bollinger, MFI and the SMA cross before emitting a buy or sell.
type MultiIndicator struct{}

// NewMultiIndicator creates the default strategy.
func NewMultiIndicator() *MultiIndicator {
	return &MultiIndicator{}
}

// Name implements Strategy.
func (s *MultiIndicator) Name() string { return "multi_indicator" }

// GenerateSignal implements Strategy.
func (s *MultiIndicator) GenerateSignal(snap indicators.Snapshot, candle domain.Candle) Signal {
	var buyVotes, sellVotes int
	var buyWeight, sellWeight, totalWeight float64
	var buyReasons, sellReasons []string

	vote := func(name string, buy, sell bool, buyReason, sellReason string) {
		w := voteWeights[name]
		totalWeight += w
		switch {
		case buy:
			buyVotes++
			buyWeight += w
			buyReasons = append(buyReasons, buyReason)
		case sell:
			sellVotes++
			sellWeight += w
			sellReasons = append(sellReasons, sellReason)
		}
	}

	if !math.IsNaN(snap.RSI) {
		vote("rsi", snap.RSI < 30, snap.RSI > 70, "rsi_oversold", "rsi_overbought")
	}
	if !math.IsNaN(snap.MACDHistogram) {
		vote("macd", snap.MACD > snap.MACDSignal && snap.MACDHistogram > 0,
			snap.MACD < snap.MACDSignal && snap.MACDHistogram < 0,
			"macd_bullish", "macd_bearish")
	}
	if !math.IsNaN(snap.BollingerLower) {
		vote("bollinger", candle.Close <= snap.BollingerLower, candle.Close >= snap.BollingerUpper,
			"bollinger_lower_touch", "bollinger_upper_touch")
	}
	if !math.IsNaN(snap.MFI) {
		vote("mfi", snap.MFI < 20, snap.MFI > 80, "mfi_oversold", "mfi_overbought")
	}
	if !math.IsNaN(snap.SMAShort) && !math.IsNaN(snap.SMALong) {
		vote("sma_cross", snap.SMAShort > snap.SMALong && candle.Close > snap.SMAShort,
			snap.SMAShort < snap.SMALong && candle.Close < snap.SMAShort,
			"uptrend", "downtrend")
	}

	if totalWeight == 0 {
		return Signal{Action: ActionHold}
	}

	switch {
	case buyVotes >= minConfirmations && buyVotes > sellVotes:
		return Signal{Action: ActionBuy, Confidence: clamp01(buyWeight / totalWeight), Reasons: buyReasons}
	case sellVotes >= minConfirmations && sellVotes > buyVotes:
		return Signal{Action: ActionSell, Confidence: clamp01(sellWeight / totalWeight), Reasons: sellReasons}
	default:
		return Signal{Action: ActionHold}
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
