// Package config defines pipeline configuration structures and loading hooks.
//
// Conventions:
// - Keep fields unexported where possible and use functional options.
// - Provide New(...Option) initializer to build a Config with defaults.
// - All future functions must accept context.Context as the first parameter.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"context"
	"runtime"
)

// Default sizing constants. Chunks shrink in TMR mode because RNA-seq
// evidence lookups slow each transcript down.
const (
	defaultChunkSize    = 100
	defaultChunkSizeTMR = 50
	defaultPadding      = 20000
	defaultWiggle       = 5
	defaultMaxTxLength  = 3000000
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Genome names the target genome this run annotates.
	Genome string `koanf:"genome"`

	// Species is the predictor's trained species parameter.
	Species string `koanf:"species"`

	// GenomeFasta is the target genome FASTA path.
	GenomeFasta string `koanf:"genome_fasta"`

	// CodingGenePred is the transMap coding transcript genePred path.
	CodingGenePred string `koanf:"coding_gp"`

	// AnnotationGenePred is the reference annotation genePred path.
	AnnotationGenePred string `koanf:"annotation_gp"`

	// TMPsl is the transMap (target-space) PSL path.
	TMPsl string `koanf:"tm_psl"`

	// RefPsl is the reference self-alignment PSL path.
	RefPsl string `koanf:"ref_psl"`

	// PredictorBin is the predictor executable; resolved via PATH when bare.
	PredictorBin string `koanf:"predictor_bin"`

	// TMCfg and TMRCfg are the extrinsic-evidence configuration files for the
	// base and evidence-augmented passes.
	TMCfg  string `koanf:"tm_cfg"`
	TMRCfg string `koanf:"tmr_cfg"`

	// HintsDB optionally points at an RNA-seq hints database. When set the
	// run operates in TMR mode.
	HintsDB string `koanf:"hints_db"`

	// OutputGTF is the merged annotation output path. Empty writes to stdout.
	OutputGTF string `koanf:"output_gtf"`

	// ChunkSize and ChunkSizeTMR bound transcripts per work unit.
	ChunkSize    int `koanf:"chunk_size"`
	ChunkSizeTMR int `koanf:"chunk_size_tmr"`

	// Padding is the genomic context added around each transcript.
	Padding int `koanf:"padding"`

	// Wiggle is the coordinate tolerance for corroborating mapped features.
	Wiggle int `koanf:"wiggle"`

	// MaxTranscriptLength excludes pathological transcripts from prediction.
	MaxTranscriptLength int `koanf:"max_transcript_length"`

	// WorkerCount sets the number of concurrent chunk workers.
	WorkerCount int `koanf:"worker_count"`

	// MetricsAddr optionally exposes /metrics and /healthz, e.g. ":9090".
	// Empty disables the listener.
	MetricsAddr string `koanf:"metrics_addr"`
}

// New creates a Config using provided defaults. Context is accepted first to
// satisfy the project-wide convention; it is reserved for future use.
func New(_ context.Context) *Config {
	c := &Config{
		LogLevel:            "info",
		Species:             "human",
		PredictorBin:        "augustus",
		ChunkSize:           defaultChunkSize,
		ChunkSizeTMR:        defaultChunkSizeTMR,
		Padding:             defaultPadding,
		Wiggle:              defaultWiggle,
		MaxTranscriptLength: defaultMaxTxLength,
		WorkerCount:         runtime.NumCPU(),
	}
	return c
}

// TMRMode reports whether an RNA-seq hints database was configured.
func (c *Config) TMRMode() bool {
	return c.HintsDB != ""
}

// EffectiveChunkSize returns the chunk size for the configured mode.
func (c *Config) EffectiveChunkSize() int {
	if c.TMRMode() {
		return c.ChunkSizeTMR
	}
	return c.ChunkSize
}
