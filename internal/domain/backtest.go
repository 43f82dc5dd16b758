package domain

import "time"

// TradeType tags entries in a backtest trade log.
type TradeType string

// Trade type constants.
const (
	TradeEntry TradeType = "entry"
	TradeExit  TradeType = "exit"
)

// Exit reason codes recorded on backtest exit trades.
const (
	ExitReasonSignal     = "signal"
	ExitReasonStopLoss   = "stop_loss"
	ExitReasonTakeProfit = "take_profit"
)

// Trade is one entry or exit executed during a backtest run.
type Trade struct {
	Type       TradeType `json:"type"`
	Symbol     string    `json:"symbol"`
	Time       time.Time `json:"time"`
	Quantity   int64     `json:"quantity"`
	Price      float64   `json:"price"` // fill price after slippage
	Costs      float64   `json:"costs"`
	Reason     string    `json:"reason,omitempty"` // exit trades: signal | stop_loss | take_profit
	Confidence float64   `json:"confidence,omitempty"`
	OrderID    string    `json:"order_id"`
}

// PerformanceMetrics is the risk-adjusted summary of a backtest equity curve.
type PerformanceMetrics struct {
	SharpeRatio    float64 `json:"sharpe_ratio"`
	SortinoRatio   float64 `json:"sortino_ratio"`
	CAGR           float64 `json:"cagr"`
	MaxDrawdown    float64 `json:"max_drawdown"`
	MaxDrawdownPct float64 `json:"max_drawdown_pct"`
	DrawdownPeak   float64 `json:"drawdown_peak"`
	DrawdownTrough float64 `json:"drawdown_trough"`
	Volatility     float64 `json:"volatility"`
}

// TradeStatistics summarises closed positions of one run.
type TradeStatistics struct {
	TotalTrades      int     `json:"total_trades"`
	WinningTrades    int     `json:"winning_trades"`
	LosingTrades     int     `json:"losing_trades"`
	WinRate          float64 `json:"win_rate"`
	AverageWin       float64 `json:"average_win"`
	AverageLoss      float64 `json:"average_loss"`
	ProfitFactor     float64 `json:"profit_factor"` // +Inf when the loss side is 0
	AvgHoldingDays   float64 `json:"avg_holding_days"`
	TotalRealizedPnL float64 `json:"total_realized_pnl"`
}

// PnLSnapshot exposes realised and unrealised P&L at a price point.
type PnLSnapshot struct {
	RealizedPnL    float64 `json:"realized_pnl"`
	UnrealizedPnL  float64 `json:"unrealized_pnl"`
	Cash           float64 `json:"cash"`
	PositionsValue float64 `json:"positions_value"`
	PortfolioValue float64 `json:"portfolio_value"`
	TotalReturnPct float64 `json:"total_return_pct"`
}

// BacktestResult is the full JSON-serialisable bundle of one backtest run.
type BacktestResult struct {
	Symbol          string             `json:"symbol"`
	StartDate       time.Time          `json:"start_date"`
	EndDate         time.Time          `json:"end_date"`
	InitialCapital  float64            `json:"initial_capital"`
	FinalValue      float64            `json:"final_value"`
	Metrics         PerformanceMetrics `json:"metrics"`
	Statistics      TradeStatistics    `json:"statistics"`
	PnL             PnLSnapshot        `json:"pnl"`
	Trades          []Trade            `json:"trades"`
	EquityCurve     []float64          `json:"equity_curve"`
	Returns         []float64          `json:"returns"`
	TotalTrades     int                `json:"total_trades"`
	ClosedPositions []*Position        `json:"closed_positions"`
	OpenPositions   []*Position        `json:"open_positions"`
}
