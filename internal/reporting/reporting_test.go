package reporting

import (
	"strings"
	"testing"
	"time"

	"equity-intraday-lab/internal/domain"
)

func sampleResult() *domain.BacktestResult {
	ts := time.Date(2025, 11, 5, 3, 50, 0, 0, time.UTC)
	return &domain.BacktestResult{
		Symbol:         "RELIANCE.NS",
		StartDate:      ts,
		EndDate:        ts.Add(3 * time.Hour),
		InitialCapital: 1_000_000,
		FinalValue:     1_010_000,
		Metrics:        domain.PerformanceMetrics{SharpeRatio: 1.2345},
		Statistics:     domain.TradeStatistics{TotalTrades: 1, WinningTrades: 1, WinRate: 100},
		PnL:            domain.PnLSnapshot{RealizedPnL: 10_000, Cash: 1_010_000, TotalReturnPct: 1},
		Trades: []domain.Trade{
			{Type: domain.TradeEntry, Symbol: "RELIANCE.NS", Time: ts, Quantity: 100, Price: 2500.5, Costs: 20, OrderID: "MO_1"},
			{Type: domain.TradeExit, Symbol: "RELIANCE.NS", Time: ts.Add(time.Hour), Quantity: 100, Price: 2601, Costs: 55, Reason: domain.ExitReasonSignal, OrderID: "MO_2"},
		},
		EquityCurve: []float64{1_000_000, 1_002_000, 1_010_000},
	}
}

func TestRenderMarkdown_Sections(t *testing.T) {
	out := RenderMarkdown(sampleResult())

	for _, want := range []string{
		"# Backtest Report: RELIANCE.NS",
		"## Performance",
		"## Trade Statistics",
		"## P&L",
		"## Trades",
		"| Sharpe Ratio | 1.2345 |",
		"| Win Rate | 100.00% |",
		"MO_2",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected rendered report to contain %q", want)
		}
	}
}

func TestRenderMarkdown_NoTrades(t *testing.T) {
	r := sampleResult()
	r.Trades = nil
	out := RenderMarkdown(r)
	if !strings.Contains(out, "No trades executed.") {
		t.Errorf("expected empty trade log note")
	}
}

func TestRenderTradesCSV_HeaderAndRows(t *testing.T) {
	out := RenderTradesCSV(sampleResult().Trades)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d lines", len(lines))
	}
	if lines[0] != "time,type,symbol,quantity,price,costs,reason,confidence,order_id" {
		t.Errorf("unexpected header %q", lines[0])
	}
	if !strings.Contains(lines[2], "exit") || !strings.Contains(lines[2], "signal") {
		t.Errorf("expected exit row with reason, got %q", lines[2])
	}
}

func TestRenderEquityCSV_OneRowPerStep(t *testing.T) {
	out := RenderEquityCSV([]float64{100, 110})
	expected := "step,portfolio_value\n0,100.00\n1,110.00\n"
	if out != expected {
		t.Errorf("expected %q, got %q", expected, out)
	}
}
