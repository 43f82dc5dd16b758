package domain

import (
	"fmt"
	"strings"
	"time"
)

// RunIDLayout is the timestamp layout used for minted run identifiers.
// Run IDs sort chronologically by construction.
const RunIDLayout = "20060102T150405"

// DatasetVersion identifies one ingestion run of a dataset within a namespace.
type DatasetVersion struct {
	Namespace string // dataset namespace, e.g. "v1"
	Symbol    string // original symbol, e.g. "RELIANCE.NS"
	Timeframe string // bar timeframe, e.g. "5m"
	RunID     string // ISO-like timestamp token, unique within (namespace, symbol, timeframe)
}

// SymbolSafe returns the symbol with "." replaced by "_" for use in paths.
func (v DatasetVersion) SymbolSafe() string {
	return SymbolSafe(v.Symbol)
}

// String renders the full version string namespace-symbol-timeframe-run_id.
func (v DatasetVersion) String() string {
	return fmt.Sprintf("%s-%s-%s-%s", v.Namespace, v.SymbolSafe(), v.Timeframe, v.RunID)
}

// SymbolSafe converts a symbol to its filesystem-safe form.
func SymbolSafe(symbol string) string {
	return strings.ReplaceAll(symbol, ".", "_")
}

// MintRunID formats a run identifier from a wall-clock instant in UTC.
func MintRunID(now time.Time) string {
	return now.UTC().Format(RunIDLayout)
}

// DataArtifacts is the happens-after witness returned by a pipeline ingest:
// when it exists, raw, bronze and silver files all exist on disk.
type DataArtifacts struct {
	RawPath     string            `json:"raw_path"`
	BronzePath  string            `json:"bronze_path"`
	SilverPath  string            `json:"silver_path"`
	Namespace   string            `json:"namespace"`
	RunID       string            `json:"run_id"`
	RecordCount int               `json:"record_count"`
	Metadata    ArtifactsMetadata `json:"metadata"`
}

// ArtifactsMetadata carries provenance for a single ingest.
type ArtifactsMetadata struct {
	Symbol    string `json:"symbol"`
	Timeframe string `json:"timeframe"`
	Provider  string `json:"provider"`
	StartTS   int64  `json:"start_ts"` // first silver bar, Unix ms
	EndTS     int64  `json:"end_ts"`   // last silver bar, Unix ms
}
