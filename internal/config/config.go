// Package config loads the application configuration from YAML over a set
// of built-in defaults.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"equity-intraday-lab/internal/costs"
	"equity-intraday-lab/internal/orchestrator"
	"equity-intraday-lab/internal/slippage"
	"equity-intraday-lab/internal/train"
)

// Config is the root application configuration.
type Config struct {
	DataRoot                string              `yaml:"data_root"`
	DatasetNamespace        string              `yaml:"dataset_namespace"`
	ExchangeTimezone        string              `yaml:"exchange_timezone"`
	MinCandlesForPrediction int                 `yaml:"min_candles_for_prediction"`
	Training                orchestrator.Config `yaml:"training"`
	Model                   train.Config        `yaml:"model"`
	Costs                   costs.Rates         `yaml:"costs"`
	Slippage                slippage.Params     `yaml:"slippage"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		DataRoot:                "./data",
		DatasetNamespace:        "v1",
		ExchangeTimezone:        "Asia/Kolkata",
		MinCandlesForPrediction: 50,
		Training:                orchestrator.DefaultConfig(),
		Model:                   train.DefaultConfig(),
		Costs:                   costs.DefaultRates(),
		Slippage:                slippage.DefaultParams(),
	}
}

// Load reads path and overlays it on the defaults. An empty path returns the
// defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Location resolves the configured exchange timezone.
func (c Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.ExchangeTimezone)
	if err != nil {
		return nil, fmt.Errorf("exchange timezone %q: %w", c.ExchangeTimezone, err)
	}
	return loc, nil
}
