// Package testdata builds synthetic genomes, transcripts, and alignments
// for exercising the pipeline without real annotation inputs.
package testdata

import (
	"context"
	"math/rand"
	"strings"

	"github.com/google/uuid"
	"github.com/seqpond/augpipe/internal/adapters/seq"
	"github.com/seqpond/augpipe/internal/domain/model"
)

// Generation layout constants.
const (
	defaultTranscriptCount = 50
	defaultExonCount       = 3
	defaultSeed            = 1

	exonLength        = 400
	intronLength      = 300
	transcriptSpacing = 20000
	leadingMargin     = 50000

	// junctionShift knocks uncorroborated reference junctions out of any
	// reasonable wiggle tolerance.
	junctionShift = 50

	bases      = "ACGT"
	fastaWidth = 80
)

// Generator produces a self-consistent Fixture: every transcript has a
// reference counterpart and identity alignments in both spaces. Odd-indexed
// transcripts get their reference junctions shifted so their introns fail
// corroboration; even-indexed ones corroborate cleanly.
type Generator struct {
	transcripts int
	exons       int
	seed        int64
}

// Option applies a configuration option to the Generator.
type Option func(*Generator)

// WithTranscriptCount sets how many transcripts to generate.
func WithTranscriptCount(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.transcripts = n
		}
	}
}

// WithExonCount sets the exons per transcript.
func WithExonCount(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.exons = n
		}
	}
}

// WithSeed fixes the sequence generator seed.
func WithSeed(seed int64) Option {
	return func(g *Generator) {
		g.seed = seed
	}
}

// NewGenerator creates a Generator with configuration options.
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{
		transcripts: defaultTranscriptCount,
		exons:       defaultExonCount,
		seed:        defaultSeed,
	}

	// Apply all options
	for _, opt := range opts {
		opt(g)
	}

	return g
}

// Fixture holds one generated input set, keyed the way the joiner expects.
type Fixture struct {
	Chrom    string
	RefChrom string
	Sequence string

	Transcripts    []*model.Transcript
	RefTranscripts map[string]*model.Transcript
	TMAlignments   map[string]*model.Alignment
	RefAlignments  map[string]*model.Alignment
}

// Fasta renders the genome as FASTA text.
func (f *Fixture) Fasta() string {
	var sb strings.Builder
	_ = seq.WriteFasta(&sb, f.Chrom, f.Sequence, fastaWidth)
	return sb.String()
}

// Generate builds the fixture. Sequences are deterministic for a given
// seed; transcript names are uuid-tagged and unique per call.
func (g *Generator) Generate(_ context.Context) *Fixture {
	f := &Fixture{
		Chrom:          "chr_synth",
		RefChrom:       "ref_chr_synth",
		RefTranscripts: make(map[string]*model.Transcript),
		TMAlignments:   make(map[string]*model.Alignment),
		RefAlignments:  make(map[string]*model.Alignment),
	}

	chromLen := 2*leadingMargin + g.transcripts*transcriptSpacing
	f.Sequence = randomSequence(g.seed, chromLen)

	for i := 0; i < g.transcripts; i++ {
		base := "tx-" + uuid.NewString()[:8]
		name := base + "-1"
		start := leadingMargin + i*transcriptSpacing

		tx := g.buildTranscript(name, "gene-"+base, f.Chrom, start, 0)
		shift := 0
		if i%2 == 1 {
			shift = junctionShift
		}
		ref := g.buildTranscript(base, "gene-"+base, f.RefChrom, 1000, shift)

		f.Transcripts = append(f.Transcripts, tx)
		f.RefTranscripts[base] = ref
		f.TMAlignments[name] = identityAlignment(name, tx)
		f.RefAlignments[base] = identityAlignment(base, ref)
	}
	return f
}

// buildTranscript lays out exon blocks from start. A non-zero shift
// lengthens every exon, which moves each spliced junction offset away
// from the unshifted layout's and defeats corroboration.
func (g *Generator) buildTranscript(name, gene, chrom string, start, shift int) *model.Transcript {
	tx := &model.Transcript{
		Name:             name,
		Name2:            gene,
		Chrom:            chrom,
		Start:            start,
		Strand:           "+",
		CDSStartComplete: true,
		CDSStopComplete:  true,
	}
	pos := start
	for e := 0; e < g.exons; e++ {
		tx.ExonStarts = append(tx.ExonStarts, pos)
		tx.ExonEnds = append(tx.ExonEnds, pos+exonLength+shift)
		pos += exonLength + shift + intronLength
	}
	tx.Stop = tx.ExonEnds[len(tx.ExonEnds)-1]
	tx.ThickStart = tx.Start + 20
	tx.ThickStop = tx.Stop - 20
	return tx
}

// identityAlignment aligns the transcript's spliced bases onto its own
// genome blocks, one block per exon.
func identityAlignment(name string, tx *model.Transcript) *model.Alignment {
	a := &model.Alignment{
		QName:  name,
		TName:  tx.Chrom,
		Strand: "+",
		TStart: tx.Start,
		TEnd:   tx.Stop,
	}
	offset := 0
	for i := range tx.ExonStarts {
		size := tx.ExonEnds[i] - tx.ExonStarts[i]
		a.BlockSizes = append(a.BlockSizes, size)
		a.QStarts = append(a.QStarts, offset)
		a.TStarts = append(a.TStarts, tx.ExonStarts[i])
		offset += size
	}
	a.QSize = offset
	a.QEnd = offset
	a.TSize = tx.Stop + leadingMargin
	return a
}

func randomSequence(seed int64, length int) string {
	rng := rand.New(rand.NewSource(seed))
	var sb strings.Builder
	sb.Grow(length)
	for i := 0; i < length; i++ {
		sb.WriteByte(bases[rng.Intn(len(bases))])
	}
	return sb.String()
}
