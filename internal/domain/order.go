package domain

import "time"

// OrderType distinguishes market and limit orders.
type OrderType string

// Order type constants.
const (
	OrderTypeMarket OrderType = "market"
	OrderTypeLimit  OrderType = "limit"
)

// OrderSide distinguishes buys and sells.
type OrderSide string

// Order side constants.
const (
	SideBuy  OrderSide = "buy"
	SideSell OrderSide = "sell"
)

// OrderStatus is the lifecycle state of a simulated order.
type OrderStatus string

// Order status constants.
const (
	OrderStatusFilled  OrderStatus = "filled"
	OrderStatusPending OrderStatus = "pending"
	OrderStatusExpired OrderStatus = "expired"
)

// SlippageBreakdown decomposes a fill-price drift into its components.
// All values are basis points unless stated otherwise.
type SlippageBreakdown struct {
	TotalBps      float64 `json:"total_bps"`
	BaseBps       float64 `json:"base_bps"`
	ImpactBps     float64 `json:"impact_bps"`
	VolatilityBps float64 `json:"volatility_bps"`
	TotalPct      float64 `json:"total_pct"` // TotalBps / 100
}

// CostBreakdown itemises Indian equity transaction charges for one trade.
// All money values are rounded to 2 decimals, CostPercentage to 4.
type CostBreakdown struct {
	Brokerage       float64 `json:"brokerage"`
	STT             float64 `json:"stt"`
	GST             float64 `json:"gst"`
	ExchangeCharges float64 `json:"exchange_charges"`
	SEBICharges     float64 `json:"sebi_charges"`
	StampDuty       float64 `json:"stamp_duty"`
	TotalCost       float64 `json:"total_cost"`
	TradeValue      float64 `json:"trade_value"`
	IsSell          bool    `json:"is_sell"`
	CostPercentage  float64 `json:"cost_percentage"`
}

// OrderResult is the outcome of simulating a market or limit order.
// A pending limit order keeps its OrderID across fill checks.
type OrderResult struct {
	OrderID       string            `json:"order_id"`
	Type          OrderType         `json:"type"`
	Side          OrderSide         `json:"side"`
	Quantity      int64             `json:"quantity"`
	ExpectedPrice float64           `json:"expected_price"`
	FillPrice     float64           `json:"fill_price"`
	LimitPrice    float64           `json:"limit_price,omitempty"`
	Slippage      SlippageBreakdown `json:"slippage"`
	TradeValue    float64           `json:"trade_value"`
	Costs         CostBreakdown     `json:"costs"`
	NetValue      float64           `json:"net_value"`
	Status        OrderStatus       `json:"status"`
	FillTime      *time.Time        `json:"fill_time,omitempty"`
	ExpiryTime    *time.Time        `json:"expiry_time,omitempty"`
}
