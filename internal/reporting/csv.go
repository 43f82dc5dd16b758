package reporting

import (
	"fmt"
	"strings"
	"time"

	"equity-intraday-lab/internal/domain"
)

// RenderTradesCSV renders the trade log as a CSV string.
func RenderTradesCSV(trades []domain.Trade) string {
	var sb strings.Builder

	// Header
	sb.WriteString("time,type,symbol,quantity,price,costs,reason,confidence,order_id\n")

	// Rows
	for _, t := range trades {
		sb.WriteString(fmt.Sprintf("%s,%s,%s,%d,%.4f,%.2f,%s,%.4f,%s\n",
			t.Time.Format(time.RFC3339),
			t.Type,
			t.Symbol,
			t.Quantity,
			t.Price,
			t.Costs,
			t.Reason,
			t.Confidence,
			t.OrderID,
		))
	}

	return sb.String()
}

// RenderEquityCSV renders the equity curve as a CSV string, one value per
// step.
func RenderEquityCSV(curve []float64) string {
	var sb strings.Builder
	sb.WriteString("step,portfolio_value\n")
	for i, v := range curve {
		sb.WriteString(fmt.Sprintf("%d,%.2f\n", i, v))
	}
	return sb.String()
}
