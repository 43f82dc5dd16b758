// Package reporting renders backtest results as Markdown and CSV.
package reporting

import (
	"fmt"
	"strings"
	"time"

	"equity-intraday-lab/internal/domain"
)

// RenderMarkdown renders a backtest result as a Markdown string.
func RenderMarkdown(r *domain.BacktestResult) string {
	var sb strings.Builder

	// Header
	sb.WriteString(fmt.Sprintf("# Backtest Report: %s\n\n", r.Symbol))
	sb.WriteString(fmt.Sprintf("Window: %s to %s\n\n",
		r.StartDate.Format(time.RFC3339), r.EndDate.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("Initial capital: %.2f | Final value: %.2f | Return: %.2f%%\n\n",
		r.InitialCapital, r.FinalValue, r.PnL.TotalReturnPct))

	// Performance
	sb.WriteString("## Performance\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Sharpe Ratio | %.4f |\n", r.Metrics.SharpeRatio))
	sb.WriteString(fmt.Sprintf("| Sortino Ratio | %.4f |\n", r.Metrics.SortinoRatio))
	sb.WriteString(fmt.Sprintf("| CAGR | %.4f |\n", r.Metrics.CAGR))
	sb.WriteString(fmt.Sprintf("| Max Drawdown | %.2f (%.2f%%) |\n", r.Metrics.MaxDrawdown, r.Metrics.MaxDrawdownPct))
	sb.WriteString(fmt.Sprintf("| Volatility | %.2f%% |\n", r.Metrics.Volatility))
	sb.WriteString("\n")

	// Trade statistics
	sb.WriteString("## Trade Statistics\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Closed Trades | %d |\n", r.Statistics.TotalTrades))
	sb.WriteString(fmt.Sprintf("| Win Rate | %.2f%% |\n", r.Statistics.WinRate))
	sb.WriteString(fmt.Sprintf("| Average Win | %.2f |\n", r.Statistics.AverageWin))
	sb.WriteString(fmt.Sprintf("| Average Loss | %.2f |\n", r.Statistics.AverageLoss))
	sb.WriteString(fmt.Sprintf("| Profit Factor | %.2f |\n", r.Statistics.ProfitFactor))
	sb.WriteString(fmt.Sprintf("| Avg Holding (days) | %.2f |\n", r.Statistics.AvgHoldingDays))
	sb.WriteString(fmt.Sprintf("| Realized P&L | %.2f |\n", r.Statistics.TotalRealizedPnL))
	sb.WriteString("\n")

	// P&L snapshot at the last close
	sb.WriteString("## P&L\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Realized | %.2f |\n", r.PnL.RealizedPnL))
	sb.WriteString(fmt.Sprintf("| Unrealized | %.2f |\n", r.PnL.UnrealizedPnL))
	sb.WriteString(fmt.Sprintf("| Cash | %.2f |\n", r.PnL.Cash))
	sb.WriteString(fmt.Sprintf("| Positions Value | %.2f |\n", r.PnL.PositionsValue))
	sb.WriteString("\n")

	// Trade log
	sb.WriteString("## Trades\n\n")
	if len(r.Trades) > 0 {
		sb.WriteString("| Time | Type | Qty | Price | Costs | Reason | Order |\n")
		sb.WriteString("|------|------|-----|-------|-------|--------|-------|\n")
		for _, t := range r.Trades {
			sb.WriteString(fmt.Sprintf("| %s | %s | %d | %.2f | %.2f | %s | %s |\n",
				t.Time.Format(time.RFC3339), t.Type, t.Quantity, t.Price, t.Costs, t.Reason, t.OrderID))
		}
	} else {
		sb.WriteString("No trades executed.\n")
	}
	sb.WriteString("\n")

	return sb.String()
}
