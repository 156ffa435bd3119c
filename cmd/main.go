package main

import (
	"context"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/seqpond/augpipe/internal/adapters/evidence"
	"github.com/seqpond/augpipe/internal/adapters/genepred"
	workerpool "github.com/seqpond/augpipe/internal/adapters/mq/worker"
	"github.com/seqpond/augpipe/internal/adapters/predictor"
	"github.com/seqpond/augpipe/internal/adapters/psl"
	"github.com/seqpond/augpipe/internal/adapters/seq"
	app "github.com/seqpond/augpipe/internal/app"
	"github.com/seqpond/augpipe/internal/config"
	"github.com/seqpond/augpipe/internal/domain/hints"
	"github.com/seqpond/augpipe/pkg/logger"
	"github.com/seqpond/augpipe/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
)

func main() {
	// Initialize logging
	if err := logger.Init(); err != nil {
		// Use stderr directly since the logger isn't available yet
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		log.Fatal(ctx, "failed to load config", logger.Error(err))
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	// Optional metrics listener; the pipeline itself never serves HTTP.
	if cfg.MetricsAddr != "" {
		go serveMetrics(ctx, log, cfg.MetricsAddr)
	}

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal(ctx, "prediction stage failed", logger.Error(err))
	}
}

// run loads the inputs, assembles the pipeline, and executes it.
func run(ctx context.Context, cfg *config.Config, log logger.Logger) error {
	genome, err := seq.Open(ctx, cfg.GenomeFasta)
	if err != nil {
		return err
	}

	transcripts, err := genepred.ReadFile(ctx, cfg.CodingGenePred)
	if err != nil {
		return err
	}
	refTranscripts, err := genepred.ReadMap(ctx, cfg.AnnotationGenePred)
	if err != nil {
		return err
	}
	tmAlignments, err := psl.ReadMap(ctx, cfg.TMPsl, false)
	if err != nil {
		return err
	}
	refAlignments, err := psl.ReadMap(ctx, cfg.RefPsl, false)
	if err != nil {
		return err
	}
	log.Info(ctx, "inputs loaded",
		logger.String("genome", cfg.Genome),
		logger.Int("transcripts", len(transcripts)),
		logger.Int("reference_transcripts", len(refTranscripts)),
		logger.Int("chromosomes", len(genome.Names())),
	)

	passes := []predictor.Pass{{CfgPath: cfg.TMCfg, Version: 1}}
	var opener workerpool.EvidenceOpener
	if cfg.TMRMode() {
		// Evidence-augmented pass first, base pass second. Each worker
		// holds its own database session for its whole lifetime.
		passes = []predictor.Pass{
			{CfgPath: cfg.TMRCfg, Version: 2},
			{CfgPath: cfg.TMCfg, Version: 1},
		}
		opener = func(ctx context.Context) (workerpool.EvidenceSession, error) {
			return evidence.Open(ctx, cfg.HintsDB)
		}
	}

	out, closeOut, err := openOutput(cfg.OutputGTF)
	if err != nil {
		return err
	}
	defer closeOut()

	pipeline := app.New(
		hints.NewSynthesizer(hints.WithWiggle(cfg.Wiggle)),
		predictor.New(cfg.Species, predictor.WithBin(cfg.PredictorBin)),
		genome,
		app.WithLogger(log),
		app.WithGenome(cfg.Genome),
		app.WithPasses(passes),
		app.WithChunkSize(cfg.EffectiveChunkSize()),
		app.WithWorkerCount(cfg.WorkerCount),
		app.WithPadding(cfg.Padding),
		app.WithMaxTranscriptLength(cfg.MaxTranscriptLength),
		app.WithEvidence(opener),
	)

	in := app.Inputs{
		Transcripts:    transcripts,
		RefTranscripts: refTranscripts,
		TMAlignments:   tmAlignments,
		RefAlignments:  refAlignments,
	}
	return pipeline.Run(ctx, in, out)
}

// openOutput returns the annotation sink: the named file, or stdout when
// no path is configured.
func openOutput(path string) (io.Writer, func(), error) {
	if path == "" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { _ = f.Close() }, nil
}

// serveMetrics exposes /metrics and /healthz until the context ends.
func serveMetrics(ctx context.Context, log logger.Logger, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info(ctx, "serving metrics", logger.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error(ctx, "metrics server failed", logger.Error(err))
	}
}
