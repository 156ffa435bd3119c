package worker

import (
	"github.com/seqpond/augpipe/internal/adapters/predictor"
	"github.com/seqpond/augpipe/pkg/logger"
)

// Option applies a configuration option to the ChunkWorker.
type Option func(*ChunkWorker)

// WithName sets the worker name for identification and logging.
func WithName(name string) Option {
	return func(w *ChunkWorker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(logger logger.Logger) Option {
	return func(w *ChunkWorker) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithGenome names the target genome, used for evidence lookups and logs.
func WithGenome(genome string) Option {
	return func(w *ChunkWorker) {
		w.genome = genome
	}
}

// WithPasses sets the configuration passes run per transcript, in order.
// Workers default to a single base pass.
func WithPasses(passes []predictor.Pass) Option {
	return func(w *ChunkWorker) {
		if len(passes) > 0 {
			w.passes = passes
		}
	}
}

// WithPadding sets the genomic context added around each transcript.
func WithPadding(padding int) Option {
	return func(w *ChunkWorker) {
		if padding >= 0 {
			w.padding = padding
		}
	}
}

// WithMaxTranscriptLength sets the length bound above which transcripts
// are skipped.
func WithMaxTranscriptLength(maxLen int) Option {
	return func(w *ChunkWorker) {
		if maxLen > 0 {
			w.maxTxLength = maxLen
		}
	}
}
