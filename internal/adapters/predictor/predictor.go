// Package predictor invokes the external gene-prediction executable over
// one sequence window plus hint file and captures its output lines.
package predictor

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/seqpond/augpipe/internal/adapters/seq"
	"github.com/seqpond/augpipe/internal/domain/model"
	"github.com/seqpond/augpipe/pkg/metrics"
)

// Default invocation constants.
const (
	defaultBin        = "augustus"
	defaultFastaWidth = 80
)

// Pass is one configuration pass: the extrinsic config file to hand the
// predictor and the version tag distinguishing its output downstream.
type Pass struct {
	CfgPath string
	Version int
}

// Runner abstracts the predictor invocation for the chunk workers.
type Runner interface {
	Predict(ctx context.Context, win model.Window, sequence, hints string, pass Pass) ([]string, error)
}

// Augustus runs the predictor as a blocking subprocess. No internal
// timeout; a hung invocation blocks its chunk, and retry policy belongs to
// whatever runs the pipeline.
type Augustus struct {
	bin        string
	species    string
	scratchDir string
	fastaWidth int
}

// New creates an Augustus runner with configuration options.
func New(species string, opts ...Option) *Augustus {
	a := &Augustus{
		bin:        defaultBin,
		species:    species,
		scratchDir: os.TempDir(),
		fastaWidth: defaultFastaWidth,
	}

	// Apply all options
	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Predict writes the window sequence and hint stream to scratch files,
// invokes the predictor, and returns its stdout as lines.
func (a *Augustus) Predict(ctx context.Context, win model.Window, sequence, hints string, pass Pass) ([]string, error) {
	dir, err := os.MkdirTemp(a.scratchDir, "augpipe-")
	if err != nil {
		return nil, fmt.Errorf("scratch dir: %w", err)
	}
	defer os.RemoveAll(dir)

	fastaPath := filepath.Join(dir, "window.fa")
	f, err := os.Create(fastaPath)
	if err != nil {
		return nil, fmt.Errorf("write window fasta: %w", err)
	}
	if err := seq.WriteFasta(f, win.Chrom, sequence, a.fastaWidth); err != nil {
		f.Close()
		return nil, fmt.Errorf("write window fasta: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("write window fasta: %w", err)
	}

	hintsPath := filepath.Join(dir, "hints.gff")
	if err := os.WriteFile(hintsPath, []byte(hints), 0o644); err != nil {
		return nil, fmt.Errorf("write hints file: %w", err)
	}

	args := []string{
		fastaPath,
		fmt.Sprintf("--predictionStart=-%d", win.Start),
		fmt.Sprintf("--predictionEnd=-%d", win.Start),
		"--extrinsicCfgFile=" + pass.CfgPath,
		"--hintsfile=" + hintsPath,
		"--UTR=on",
		"--alternatives-from-evidence=0",
		"--species=" + a.species,
		"--allow_hinted_splicesites=atac",
		"--protein=0",
		"--softmasking=1",
	}

	metrics.RecordPredictorInvocation(strconv.Itoa(pass.Version))
	began := time.Now()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, a.bin, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	runErr := cmd.Run()
	metrics.RecordPredictorLatency(float64(time.Since(began).Milliseconds()))
	if runErr != nil {
		metrics.RecordPredictorFailure()
		return nil, fmt.Errorf("%w: %v: %s", ErrPredictorFailed, runErr, firstLine(stderr.String()))
	}

	out := strings.Split(stdout.String(), "\n")
	// Drop the trailing empty element from the final newline.
	if len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return out, nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
