package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"equity-intraday-lab/internal/backtest"
	"equity-intraday-lab/internal/orchestrator"
	"equity-intraday-lab/internal/pipeline"
	"equity-intraday-lab/internal/reporting"
	"equity-intraday-lab/internal/schema"
	"equity-intraday-lab/internal/store"
)

func newIngestCmd() *cobra.Command {
	var (
		symbol    string
		timeframe string
		input     string
		provider  string
		namespace string
		runID     string
	)
	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Promote a candle batch through raw, bronze and silver",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			data, err := os.ReadFile(input)
			if err != nil {
				return fmt.Errorf("read candles %s: %w", input, err)
			}
			var candles []schema.CandleInput
			if err := json.Unmarshal(data, &candles); err != nil {
				return fmt.Errorf("parse candles %s: %w", input, err)
			}

			artifacts, err := a.pipeline.Ingest(cmd.Context(), pipeline.IngestRequest{
				Symbol:    symbol,
				Timeframe: timeframe,
				Candles:   candles,
				Provider:  provider,
				Namespace: namespace,
				RunID:     runID,
			})
			if err != nil {
				return err
			}
			return printJSON(artifacts)
		},
	}
	cmd.Flags().StringVar(&symbol, "symbol", "", "instrument symbol, e.g. RELIANCE.NS")
	cmd.Flags().StringVar(&timeframe, "timeframe", "5m", "candle timeframe")
	cmd.Flags().StringVar(&input, "input", "", "JSON file of candles")
	cmd.Flags().StringVar(&provider, "provider", "", "candle provider label")
	cmd.Flags().StringVar(&namespace, "namespace", "", "dataset namespace override")
	cmd.Flags().StringVar(&runID, "run-id", "", "explicit run id")
	cmd.MarkFlagRequired("symbol")
	cmd.MarkFlagRequired("input")
	return cmd
}

func newTrainCmd() *cobra.Command {
	var (
		symbol    string
		timeframe string
		families  []string
		namespace string
	)
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Run a walk-forward experiment and log it to the registry",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			res, err := a.orch.Train(cmd.Context(), orchestrator.TrainRequest{
				Symbol:    symbol,
				Timeframe: timeframe,
				Families:  families,
				Namespace: namespace,
			})
			if err != nil {
				return err
			}
			return printJSON(res)
		},
	}
	cmd.Flags().StringVar(&symbol, "symbol", "", "instrument symbol")
	cmd.Flags().StringVar(&timeframe, "timeframe", "5m", "candle timeframe")
	cmd.Flags().StringSliceVar(&families, "families", nil, "model families (default all)")
	cmd.Flags().StringVar(&namespace, "namespace", "", "dataset namespace override")
	cmd.MarkFlagRequired("symbol")
	return cmd
}

func newValidateCmd() *cobra.Command {
	var (
		symbol    string
		timeframe string
		families  []string
		threshold float64
	)
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Walk-forward validation with per-split alerting",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			res, err := a.orch.WalkForwardValidate(cmd.Context(), orchestrator.TrainRequest{
				Symbol:    symbol,
				Timeframe: timeframe,
				Families:  families,
			}, threshold)
			if err != nil {
				return err
			}
			return printJSON(res)
		},
	}
	cmd.Flags().StringVar(&symbol, "symbol", "", "instrument symbol")
	cmd.Flags().StringVar(&timeframe, "timeframe", "5m", "candle timeframe")
	cmd.Flags().StringSliceVar(&families, "families", nil, "model families (default all)")
	cmd.Flags().Float64Var(&threshold, "alert-threshold", 0.05, "alert when rmse/last close exceeds this")
	cmd.MarkFlagRequired("symbol")
	return cmd
}

func newBacktestCmd() *cobra.Command {
	var (
		symbol     string
		timeframe  string
		capital    float64
		sizePct    float64
		maxPos     int
		stopLoss   float64
		takeProfit float64
		startDate  string
		endDate    string
		markdown   string
		tradesCSV  string
	)
	cmd := &cobra.Command{
		Use:   "backtest",
		Short: "Run the indicator strategy over a stored silver dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			rows, err := a.features.LoadFeatures(symbol, timeframe, 0, "", "")
			if err != nil {
				return err
			}
			if rows == nil {
				return fmt.Errorf("no silver dataset for %s %s", symbol, timeframe)
			}

			opts := backtest.DefaultOptions()
			opts.InitialCapital = capital
			opts.PositionSizePct = sizePct
			opts.MaxPositions = maxPos
			opts.StopLossPct = stopLoss
			opts.TakeProfitPct = takeProfit
			if opts.StartDate, err = parseDate(startDate); err != nil {
				return err
			}
			if opts.EndDate, err = parseDate(endDate); err != nil {
				return err
			}

			res, err := a.engine.Run(symbol, backtest.HistoryFromSilver(rows), nil, opts)
			if err != nil {
				return err
			}

			if markdown != "" {
				if err := os.WriteFile(markdown, []byte(reporting.RenderMarkdown(res)), 0o644); err != nil {
					return fmt.Errorf("write report: %w", err)
				}
			}
			if tradesCSV != "" {
				if err := os.WriteFile(tradesCSV, []byte(reporting.RenderTradesCSV(res.Trades)), 0o644); err != nil {
					return fmt.Errorf("write trades csv: %w", err)
				}
			}
			return printJSON(res)
		},
	}
	cmd.Flags().StringVar(&symbol, "symbol", "", "instrument symbol")
	cmd.Flags().StringVar(&timeframe, "timeframe", "5m", "candle timeframe")
	cmd.Flags().Float64Var(&capital, "capital", 1_000_000, "initial capital")
	cmd.Flags().Float64Var(&sizePct, "size-pct", 0.2, "position size as a fraction of portfolio value")
	cmd.Flags().IntVar(&maxPos, "max-positions", 5, "maximum simultaneous positions")
	cmd.Flags().Float64Var(&stopLoss, "stop-loss", 0.02, "stop-loss fraction, 0 disables")
	cmd.Flags().Float64Var(&takeProfit, "take-profit", 0.05, "take-profit fraction, 0 disables")
	cmd.Flags().StringVar(&startDate, "start", "", "window start (YYYY-MM-DD)")
	cmd.Flags().StringVar(&endDate, "end", "", "window end (YYYY-MM-DD)")
	cmd.Flags().StringVar(&markdown, "report", "", "write a Markdown report to this path")
	cmd.Flags().StringVar(&tradesCSV, "trades-csv", "", "write the trade log CSV to this path")
	cmd.MarkFlagRequired("symbol")
	return cmd
}

func newDatasetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "datasets",
		Short: "List runs and manage active dataset overrides",
	}

	var (
		symbol    string
		timeframe string
		layer     string
		namespace string
		runID     string
	)

	list := &cobra.Command{
		Use:   "list",
		Short: "List dataset runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			ns := namespace
			if ns == "" {
				ns = a.cfg.DatasetNamespace
			}
			runs, err := a.control.ListRuns(store.Layer(layer), ns, symbol, timeframe)
			if err != nil {
				return err
			}
			return printJSON(map[string]any{"symbol": symbol, "timeframe": timeframe, "layer": layer, "runs": runs})
		},
	}
	list.Flags().StringVar(&symbol, "symbol", "", "instrument symbol")
	list.Flags().StringVar(&timeframe, "timeframe", "5m", "candle timeframe")
	list.Flags().StringVar(&layer, "layer", "silver", "layer: raw, bronze or silver")
	list.Flags().StringVar(&namespace, "namespace", "", "dataset namespace")
	list.MarkFlagRequired("symbol")

	activate := &cobra.Command{
		Use:   "activate",
		Short: "Pin a dataset run as the canonical version",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			ns := namespace
			if ns == "" {
				ns = a.cfg.DatasetNamespace
			}
			o, err := a.control.Activate(symbol, timeframe, ns, runID)
			if err != nil {
				return err
			}
			return printJSON(o)
		},
	}
	activate.Flags().StringVar(&symbol, "symbol", "", "instrument symbol")
	activate.Flags().StringVar(&timeframe, "timeframe", "5m", "candle timeframe")
	activate.Flags().StringVar(&namespace, "namespace", "", "dataset namespace")
	activate.Flags().StringVar(&runID, "run-id", "", "run id to activate")
	activate.MarkFlagRequired("symbol")
	activate.MarkFlagRequired("run-id")

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Clear the dataset override",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			return a.control.Clear(symbol, timeframe)
		},
	}
	clearCmd.Flags().StringVar(&symbol, "symbol", "", "instrument symbol")
	clearCmd.Flags().StringVar(&timeframe, "timeframe", "5m", "candle timeframe")
	clearCmd.MarkFlagRequired("symbol")

	overrides := &cobra.Command{
		Use:   "overrides",
		Short: "List active dataset overrides",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			return printJSON(a.control.List())
		},
	}

	cmd.AddCommand(list, activate, clearCmd, overrides)
	return cmd
}

func newExperimentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "experiments",
		Short: "Inspect the experiment registry",
	}

	var (
		symbol    string
		timeframe string
	)

	list := &cobra.Command{
		Use:   "list",
		Short: "List all experiment records",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			records, err := a.expts.List()
			if err != nil {
				return err
			}
			return printJSON(records)
		},
	}

	best := &cobra.Command{
		Use:   "best",
		Short: "Show the best experiment by RMSE for a symbol/timeframe",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			rec, err := a.expts.FindBest(symbol, timeframe)
			if err != nil {
				return err
			}
			if rec == nil {
				return fmt.Errorf("no experiments for %s %s", symbol, timeframe)
			}
			return printJSON(rec)
		},
	}
	best.Flags().StringVar(&symbol, "symbol", "", "instrument symbol")
	best.Flags().StringVar(&timeframe, "timeframe", "5m", "candle timeframe")
	best.MarkFlagRequired("symbol")

	cmd.AddCommand(list, best)
	return cmd
}

func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, fmt.Errorf("date %q: %w", s, err)
	}
	return &t, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
