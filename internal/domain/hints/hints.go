// Package hints converts an evidence bundle into the predictor's
// extrinsic-evidence hint stream.
//
// A feature only becomes a hint when the transMap transcript agrees, within
// a wiggle tolerance, with the reference transcript once both are mapped
// into shared transcript space. Anything uncorroborated is withheld so the
// predictor is not misled by noisy transfer.
package hints

import (
	"context"
	"fmt"
	"strings"

	"github.com/seqpond/augpipe/internal/domain/model"
)

// Default synthesis constants.
const (
	defaultWiggle   = 5
	defaultSource   = "T"
	defaultPriority = 2

	codonLen = 3
)

// Synthesizer builds hint streams from evidence bundles.
type Synthesizer struct {
	wiggle   int
	source   string
	priority int
}

// NewSynthesizer creates a Synthesizer with configuration options.
func NewSynthesizer(opts ...Option) *Synthesizer {
	s := &Synthesizer{
		wiggle:   defaultWiggle,
		source:   defaultSource,
		priority: defaultPriority,
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Synthesize produces the ordered hint stream for one bundle: corroborated
// introns first, then coding boundaries, then transcription boundaries.
func (s *Synthesizer) Synthesize(_ context.Context, b model.EvidenceBundle) []model.Hint {
	var out []model.Hint
	out = append(out, s.intronHints(b)...)
	out = append(out, s.codingHints(b)...)
	out = append(out, s.transcriptionHints(b)...)
	return out
}

// intronHints keeps a transMap intron only when its splice junction, in
// transcript space, lies within wiggle of a reference junction.
func (s *Synthesizer) intronHints(b model.EvidenceBundle) []model.Hint {
	refJunctions := make([]int, 0, len(b.Ref.ExonStarts))
	for _, intron := range b.Ref.Introns() {
		// The junction sits after the last aligned exon base.
		if q := b.RefAln.TargetToQuery(intron.Start - 1); q >= 0 {
			refJunctions = append(refJunctions, q)
		}
	}

	var out []model.Hint
	for _, intron := range b.TM.Introns() {
		q := b.TMAln.TargetToQuery(intron.Start - 1)
		if q < 0 || !s.near(q, refJunctions) {
			continue
		}
		out = append(out, model.Hint{
			Chrom:      b.TM.Chrom,
			Source:     "t2h",
			Feature:    "intron",
			Start:      intron.Start,
			Stop:       intron.Stop,
			Strand:     b.TM.Strand,
			Attributes: s.attributes(b.TM.Name),
		})
	}
	return out
}

// codingHints emits start/stop codon hints only when the thick bounds were
// mapped over from the reference rather than synthesized.
func (s *Synthesizer) codingHints(b model.EvidenceBundle) []model.Hint {
	tx := b.TM
	if tx.ThickStart >= tx.ThickStop {
		return nil
	}
	left := model.Hint{
		Chrom:      tx.Chrom,
		Source:     "t2h",
		Start:      tx.ThickStart,
		Stop:       tx.ThickStart + codonLen,
		Strand:     tx.Strand,
		Attributes: s.attributes(tx.Name),
	}
	right := model.Hint{
		Chrom:      tx.Chrom,
		Source:     "t2h",
		Start:      tx.ThickStop - codonLen,
		Stop:       tx.ThickStop,
		Strand:     tx.Strand,
		Attributes: s.attributes(tx.Name),
	}

	var out []model.Hint
	if tx.Strand == "-" {
		left.Feature, right.Feature = "stop", "start"
	} else {
		left.Feature, right.Feature = "start", "stop"
	}
	if tx.CDSStartComplete {
		if tx.Strand == "-" {
			out = append(out, right)
		} else {
			out = append(out, left)
		}
	}
	if tx.CDSStopComplete {
		if tx.Strand == "-" {
			out = append(out, left)
		} else {
			out = append(out, right)
		}
	}
	return out
}

// transcriptionHints emits tss/tts hints when a transcript end, mapped
// through both alignments into transcript space, corroborates the
// reference end within wiggle.
func (s *Synthesizer) transcriptionHints(b model.EvidenceBundle) []model.Hint {
	var out []model.Hint

	emit := func(genomicPos int, refPos int, leftEnd bool) {
		q := b.TMAln.TargetToQuery(genomicPos)
		rq := b.RefAln.TargetToQuery(refPos)
		if q < 0 || rq < 0 || abs(q-rq) > s.wiggle {
			return
		}
		feature := "tss"
		if (b.TM.Strand == "-") == leftEnd {
			feature = "tts"
		}
		out = append(out, model.Hint{
			Chrom:      b.TM.Chrom,
			Source:     "t2h",
			Feature:    feature,
			Start:      genomicPos,
			Stop:       genomicPos + 1,
			Strand:     b.TM.Strand,
			Attributes: s.attributes(b.TM.Name),
		})
	}

	emit(b.TM.Start, b.Ref.Start, true)
	emit(b.TM.Stop-1, b.Ref.Stop-1, false)
	return out
}

func (s *Synthesizer) attributes(name string) string {
	return fmt.Sprintf("grp=%s;src=%s;pri=%d", name, s.source, s.priority)
}

// near reports whether pos is within wiggle of any candidate.
func (s *Synthesizer) near(pos int, candidates []int) bool {
	for _, c := range candidates {
		if abs(pos-c) <= s.wiggle {
			return true
		}
	}
	return false
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Render serializes a hint stream into the predictor's hint-file text.
func Render(hs []model.Hint) string {
	if len(hs) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, h := range hs {
		sb.WriteString(h.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Aggregate concatenates structural hints with externally-sourced
// evidence: structural first, then the evidence stream.
func Aggregate(structural, evidence string) string {
	return structural + evidence
}
