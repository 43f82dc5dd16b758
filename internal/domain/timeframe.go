package domain

import (
	"errors"
	"fmt"
)

// ErrUnsupportedTimeframe is returned for timeframes outside the supported set.
var ErrUnsupportedTimeframe = errors.New("unsupported timeframe")

// timeframeMinutes maps every supported timeframe to its bar length in minutes.
var timeframeMinutes = map[string]int{
	"1m":  1,
	"5m":  5,
	"15m": 15,
	"30m": 30,
	"1h":  60,
	"4h":  240,
	"1d":  1440,
	"5d":  7200,
	"1wk": 10080,
	"1mo": 43200,
	"3mo": 129600,
}

// TimeframeMinutes returns the bar length in minutes for a supported timeframe.
func TimeframeMinutes(timeframe string) (int, error) {
	m, ok := timeframeMinutes[timeframe]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedTimeframe, timeframe)
	}
	return m, nil
}

// SupportedTimeframes returns the supported timeframe identifiers.
func SupportedTimeframes() []string {
	out := make([]string, 0, len(timeframeMinutes))
	for tf := range timeframeMinutes {
		out = append(out, tf)
	}
	return out
}
