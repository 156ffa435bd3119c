// Package service wires the annotation pipeline together: evidence
// bundles are partitioned into chunks, dispatched to the worker pool,
// and the reconciled predictions are merged and written once.
package service

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"time"

	"github.com/google/uuid"
	chunkqueue "github.com/seqpond/augpipe/internal/adapters/mq/queue"
	workerpool "github.com/seqpond/augpipe/internal/adapters/mq/worker"
	"github.com/seqpond/augpipe/internal/adapters/predictor"
	"github.com/seqpond/augpipe/internal/domain/join"
	"github.com/seqpond/augpipe/internal/domain/model"
	"github.com/seqpond/augpipe/pkg/logger"
)

// Default pipeline configuration constants.
const (
	defaultChunkSize = 100
	defaultPadding   = 20000
)

// Pipeline runs one prediction stage end to end. It is single-shot: build
// it, call Run once, inspect the error.
type Pipeline struct {
	// Core collaborators
	synth    workerpool.Synthesizer
	runner   predictor.Runner
	seqs     workerpool.SequenceSource
	evidence workerpool.EvidenceOpener

	// Configuration
	genome      string
	passes      []predictor.Pass
	chunkSize   int
	workerCount int
	padding     int
	maxTxLength int

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Pipeline.
type Option func(*Pipeline)

// WithGenome names the target genome for evidence lookups and logs.
func WithGenome(genome string) Option {
	return func(p *Pipeline) {
		p.genome = genome
	}
}

// WithPasses sets the predictor configuration passes run per transcript,
// in order. Unset, the pipeline runs the single base pass.
func WithPasses(passes []predictor.Pass) Option {
	return func(p *Pipeline) {
		if len(passes) > 0 {
			p.passes = passes
		}
	}
}

// WithChunkSize sets the number of transcripts per work unit.
func WithChunkSize(size int) Option {
	return func(p *Pipeline) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithWorkerCount sets the number of worker goroutines.
func WithWorkerCount(count int) Option {
	return func(p *Pipeline) {
		if count > 0 {
			p.workerCount = count
		}
	}
}

// WithPadding sets the genomic context added around each transcript.
func WithPadding(padding int) Option {
	return func(p *Pipeline) {
		if padding >= 0 {
			p.padding = padding
		}
	}
}

// WithMaxTranscriptLength sets the length bound above which transcripts
// are skipped.
func WithMaxTranscriptLength(maxLen int) Option {
	return func(p *Pipeline) {
		if maxLen > 0 {
			p.maxTxLength = maxLen
		}
	}
}

// WithEvidence sets the opener for per-worker RNA-seq evidence sessions.
// Leaving it unset runs the pipeline in base (TM) mode.
func WithEvidence(opener workerpool.EvidenceOpener) Option {
	return func(p *Pipeline) {
		p.evidence = opener
	}
}

// WithLogger sets a custom logger for the pipeline.
func WithLogger(logger logger.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// New constructs a Pipeline over the given collaborators.
func New(synth workerpool.Synthesizer, runner predictor.Runner, seqs workerpool.SequenceSource, opts ...Option) *Pipeline {
	p := &Pipeline{
		synth:       synth,
		runner:      runner,
		seqs:        seqs,
		passes:      []predictor.Pass{{Version: 1}},
		chunkSize:   defaultChunkSize,
		workerCount: runtime.NumCPU(),
		padding:     defaultPadding,
	}

	// Apply all options
	for _, opt := range opts {
		opt(p)
	}

	if p.logger == nil {
		p.logger = logger.Get().Named("pipeline")
	}

	return p
}

// Inputs holds the four upstream record collections keyed the way the
// joiner expects them.
type Inputs struct {
	Transcripts    []*model.Transcript
	RefTranscripts map[string]*model.Transcript
	TMAlignments   map[string]*model.Alignment
	RefAlignments  map[string]*model.Alignment
}

// Run joins the inputs, predicts across all chunks, and writes the merged
// annotation to out. The output is written exactly once, after every
// worker has finished.
func (p *Pipeline) Run(ctx context.Context, in Inputs, out io.Writer) error {
	bundles, err := join.Bundles(ctx, in.Transcripts, in.RefTranscripts, in.TMAlignments, in.RefAlignments)
	if err != nil {
		return fmt.Errorf("join records: %w", err)
	}
	return p.RunBundles(ctx, bundles, out)
}

// RunBundles is Run minus the joining step, for callers that already hold
// assembled evidence bundles.
func (p *Pipeline) RunBundles(ctx context.Context, bundles []model.EvidenceBundle, out io.Writer) error {
	runID := uuid.NewString()
	log := p.logger.Named(runID[:8])
	start := time.Now()

	mode := "TM"
	if p.evidence != nil {
		mode = "TMR"
	}
	log.Info(ctx, "starting prediction run",
		logger.String("run", runID),
		logger.String("genome", p.genome),
		logger.String("mode", mode),
		logger.Int("transcripts", len(bundles)),
		logger.Int("chunk_size", p.chunkSize),
		logger.Int("workers", p.workerCount),
	)

	chunks := chunkqueue.Partition(bundles, p.chunkSize)
	q := chunkqueue.NewInMemoryQueue(chunkqueue.WithCapacity(len(chunks) + 1))
	for _, c := range chunks {
		if !q.Enqueue(ctx, c) {
			return fmt.Errorf("enqueue chunk %d: queue rejected it", c.Index)
		}
	}
	if err := q.Close(); err != nil {
		return err
	}

	collector := newChunkCollector()
	deps := workerpool.Deps{
		Synth:     p.synth,
		Runner:    p.runner,
		Seqs:      p.seqs,
		Evidence:  p.evidence,
		Collector: collector,
	}
	pool := workerpool.NewPool(p.workerCount, q, deps,
		workerpool.WithGenome(p.genome),
		workerpool.WithPasses(p.passes),
		workerpool.WithPadding(p.padding),
		workerpool.WithMaxTranscriptLength(p.maxTxLength),
	)

	pool.Start(ctx)
	if err := pool.Wait(); err != nil {
		return fmt.Errorf("prediction run %s: %w", runID, err)
	}

	records := collector.Merged()
	if err := WriteGTF(out, records); err != nil {
		return fmt.Errorf("write annotation: %w", err)
	}

	log.Info(ctx, "prediction run complete",
		logger.Int("chunks", len(chunks)),
		logger.Int("records", len(records)),
		logger.String("elapsed", time.Since(start).String()),
	)
	return nil
}
