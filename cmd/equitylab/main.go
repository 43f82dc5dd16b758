// Command equitylab is the control surface over the data pipeline, training
// orchestrator and backtest engine.
package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"equity-intraday-lab/internal/backtest"
	"equity-intraday-lab/internal/calendar"
	"equity-intraday-lab/internal/config"
	"equity-intraday-lab/internal/costs"
	"equity-intraday-lab/internal/experiment"
	"equity-intraday-lab/internal/features"
	"equity-intraday-lab/internal/observability"
	"equity-intraday-lab/internal/orchestrator"
	"equity-intraday-lab/internal/order"
	"equity-intraday-lab/internal/pipeline"
	"equity-intraday-lab/internal/slippage"
	"equity-intraday-lab/internal/store"
	"equity-intraday-lab/internal/version"
)

var (
	configPath string
	verbose    bool
)

func main() {
	root := &cobra.Command{
		Use:           "equitylab",
		Short:         "Intraday equities data pipeline, training and backtesting",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to YAML config")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		newIngestCmd(),
		newTrainCmd(),
		newValidateCmd(),
		newBacktestCmd(),
		newDatasetsCmd(),
		newExperimentsCmd(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		log := newLogger()
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

func newLogger() zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(level).
		With().Timestamp().Logger()
}

// app bundles the wired components shared across commands.
type app struct {
	cfg      config.Config
	log      zerolog.Logger
	store    *store.Store
	cal      *calendar.Calendar
	registry *version.Registry
	control  *version.Control
	features *features.FeatureStore
	pipeline *pipeline.Pipeline
	orch     *orchestrator.Orchestrator
	expts    *experiment.Registry
	engine   *backtest.Engine
}

func newApp() (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	log := newLogger()
	obs := observability.NewMetrics("")

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	st := store.New(cfg.DataRoot, log)
	cal := calendar.NewNSEIn(loc)
	registry := version.NewRegistry(filepath.Join(cfg.DataRoot, "registry.json"), log).WithMetrics(obs)
	versions := version.NewManager(cfg.DatasetNamespace)
	feats := features.New(st, registry, cfg.DatasetNamespace)
	expts := experiment.New(filepath.Join(cfg.DataRoot, "experiments"), log)

	costCalc := costs.New(cfg.Costs)
	slipCalc := slippage.New(cfg.Slippage)
	orders := order.New(costCalc, slipCalc, log)

	return &app{
		cfg:      cfg,
		log:      log,
		store:    st,
		cal:      cal,
		registry: registry,
		control:  version.NewControl(registry, st),
		features: feats,
		pipeline: pipeline.New(st, cal, versions, obs, log),
		orch:     orchestrator.New(cfg.Training, cfg.Model, feats, expts, obs, log),
		expts:    expts,
		engine:   backtest.New(cal, orders, obs, log),
	}, nil
}
