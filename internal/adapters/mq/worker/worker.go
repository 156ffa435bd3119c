// Package worker runs transcript chunks through hint synthesis, predictor
// invocation, and output reconciliation.
package worker

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/seqpond/augpipe/internal/adapters/mq/queue"
	"github.com/seqpond/augpipe/internal/adapters/predictor"
	"github.com/seqpond/augpipe/internal/domain/hints"
	"github.com/seqpond/augpipe/internal/domain/model"
	"github.com/seqpond/augpipe/internal/domain/reconcile"
	"github.com/seqpond/augpipe/pkg/logger"
	"github.com/seqpond/augpipe/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultPadding     = 20000
	defaultMaxTxLength = 3000000

	discardReasonOversize  = "oversize"
	discardReasonAmbiguous = "no_single_candidate"
)

// Synthesizer builds the structural hint stream for one bundle.
type Synthesizer interface {
	Synthesize(ctx context.Context, b model.EvidenceBundle) []model.Hint
}

// SequenceSource provides random-access genome substrings.
type SequenceSource interface {
	Fetch(ctx context.Context, chrom string, start, stop int) (string, error)
	Length(ctx context.Context, chrom string) (int, error)
}

// EvidenceSession is a per-worker session against the RNA-seq hints store.
type EvidenceSession interface {
	Query(ctx context.Context, genome, chrom string, start, stop int) (string, error)
	Close() error
}

// EvidenceOpener acquires an EvidenceSession for one worker's lifetime.
// Nil opener means base (TM) mode: no external evidence is aggregated.
type EvidenceOpener func(ctx context.Context) (EvidenceSession, error)

// Collector receives the reconciled records of one completed chunk.
type Collector interface {
	Collect(ctx context.Context, chunkIndex int, records []model.GTFRecord)
}

// Deps bundles the shared read-only collaborators every worker uses.
type Deps struct {
	Synth     Synthesizer
	Runner    predictor.Runner
	Seqs      SequenceSource
	Evidence  EvidenceOpener
	Collector Collector
}

// ChunkWorker processes chunks sequentially; chunk-internal transcript
// order is preserved and invocation cost dominates, so no concurrency
// below the chunk level.
type ChunkWorker struct {
	queue queue.Queue
	deps  Deps
	name  string

	genome      string
	passes      []predictor.Pass
	padding     int
	maxTxLength int

	done chan struct{}

	// Logging
	logger logger.Logger
}

// NewChunkWorker creates a new worker with configuration options.
func NewChunkWorker(q queue.Queue, deps Deps, opts ...Option) *ChunkWorker {
	w := &ChunkWorker{
		queue:       q,
		deps:        deps,
		name:        "worker",
		passes:      []predictor.Pass{{Version: 1}},
		padding:     defaultPadding,
		maxTxLength: defaultMaxTxLength,
		done:        make(chan struct{}),
		logger:      logger.Get().Named("worker"),
	}

	// Apply all options
	for _, opt := range opts {
		opt(w)
	}

	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}

	return w
}

// Run drains the queue until it closes or the context is canceled. The
// first processing error stops this worker and is returned; retry policy
// belongs to whatever runs the pipeline.
func (w *ChunkWorker) Run(ctx context.Context) error {
	defer close(w.done)

	var session EvidenceSession
	if w.deps.Evidence != nil {
		var err error
		session, err = w.deps.Evidence(ctx)
		if err != nil {
			return fmt.Errorf("open evidence session: %w", err)
		}
		defer session.Close()
	}

	chunkChan := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case c, ok := <-chunkChan:
			if !ok {
				return nil
			}
			if err := w.processChunk(ctx, c, session); err != nil {
				w.logger.Error(ctx, "chunk failed",
					logger.Int("chunk", c.Index),
					logger.Error(err),
				)
				return fmt.Errorf("chunk %d: %w", c.Index, err)
			}
		}
	}
}

// processChunk handles a single chunk, transcript by transcript.
func (w *ChunkWorker) processChunk(ctx context.Context, c queue.Chunk, session EvidenceSession) error {
	start := time.Now()
	defer func() {
		metrics.RecordWorkerChunkLatency(float64(time.Since(start).Milliseconds()))
	}()

	mode := "TM"
	if session != nil {
		mode = "TMR"
	}
	w.logger.Info(ctx, "beginning chunk",
		logger.Int("chunk", c.Index),
		logger.String("genome", w.genome),
		logger.String("mode", mode),
	)

	var records []model.GTFRecord
	for _, b := range c.Bundles {
		recs, err := w.processTranscript(ctx, b, session)
		if err != nil {
			return fmt.Errorf("transcript %s: %w", b.TM.Name, err)
		}
		records = append(records, recs...)
	}

	w.deps.Collector.Collect(ctx, c.Index, records)
	metrics.RecordChunkCompleted()
	return nil
}

// processTranscript runs every configured pass for one evidence bundle.
func (w *ChunkWorker) processTranscript(ctx context.Context, b model.EvidenceBundle, session EvidenceSession) ([]model.GTFRecord, error) {
	tx := b.TM
	if tx.Len() > w.maxTxLength {
		// Pathological input, not an error.
		w.logger.Info(ctx, "skipping oversize transcript",
			logger.String("transcript", tx.Name),
			logger.Int("length", tx.Len()),
		)
		metrics.RecordTranscriptSkipped()
		metrics.RecordPredictionDiscarded(discardReasonOversize)
		return nil, nil
	}

	chromLen, err := w.deps.Seqs.Length(ctx, tx.Chrom)
	if err != nil {
		return nil, err
	}
	win := tx.Window(w.padding, chromLen)

	structural := w.deps.Synth.Synthesize(ctx, b)
	for _, h := range structural {
		metrics.RecordHintEmitted(h.Feature)
	}
	hintText := hints.Render(structural)

	if session != nil {
		evidence, err := session.Query(ctx, w.genome, win.Chrom, win.Start, win.Stop)
		if err != nil {
			return nil, err
		}
		hintText = hints.Aggregate(hintText, evidence)
	}

	sequence, err := w.deps.Seqs.Fetch(ctx, win.Chrom, win.Start, win.Stop)
	if err != nil {
		return nil, err
	}

	var out []model.GTFRecord
	for _, pass := range w.passes {
		raw, err := w.deps.Runner.Predict(ctx, win, sequence, hintText, pass)
		if err != nil {
			return nil, err
		}
		recs, err := reconcile.Reconcile(ctx, raw, tx, pass.Version)
		if err != nil {
			return nil, err
		}
		if recs == nil {
			metrics.RecordPredictionDiscarded(discardReasonAmbiguous)
			w.logger.Debug(ctx, "no usable prediction",
				logger.String("transcript", tx.Name),
				logger.Int("cfg_version", pass.Version),
			)
			continue
		}
		metrics.RecordPredictionKept()
		out = append(out, recs...)
	}
	metrics.RecordTranscriptProcessed()
	return out, nil
}

// Pool manages multiple workers over one queue and joins on all of them.
// The first worker error cancels the remaining workers.
type Pool struct {
	workers []*ChunkWorker

	wg      sync.WaitGroup
	cancel  context.CancelFunc
	errOnce sync.Once
	err     error
}

// NewPool creates a pool of workerCount chunk workers.
func NewPool(workerCount int, q queue.Queue, deps Deps, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = 1
	}

	pool := &Pool{
		workers: make([]*ChunkWorker, workerCount),
	}
	for i := 0; i < workerCount; i++ {
		named := append([]Option{WithName("worker-" + strconv.Itoa(i))}, opts...)
		pool.workers[i] = NewChunkWorker(q, deps, named...)
	}

	metrics.UpdateWorkerCount(workerCount)

	return pool
}

// Start launches all workers.
func (p *Pool) Start(ctx context.Context) {
	ctx, p.cancel = context.WithCancel(ctx)
	for _, w := range p.workers {
		p.wg.Add(1)
		go func(w *ChunkWorker) {
			defer p.wg.Done()
			if err := w.Run(ctx); err != nil {
				p.errOnce.Do(func() {
					p.err = err
					p.cancel()
				})
			}
		}(w)
	}
}

// Wait blocks until every worker finishes and returns the first error, if
// any. This is the barrier before result merging.
func (p *Pool) Wait() error {
	p.wg.Wait()
	p.cancel()
	metrics.UpdateWorkerCount(0)
	return p.err
}
