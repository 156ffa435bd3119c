// Package join assembles per-transcript evidence bundles from the four
// upstream record collections.
//
// A missing key in any lookup signals an upstream data-consistency
// violation; the whole run aborts rather than silently skipping.
package join

import (
	"context"
	"fmt"

	"github.com/seqpond/augpipe/internal/domain/model"
)

// Bundles joins each transMap transcript with its reference transcript,
// target-space alignment, and reference-space alignment. The result
// preserves the input transcript order. Pure transform, no side effects.
func Bundles(
	_ context.Context,
	transcripts []*model.Transcript,
	refTranscripts map[string]*model.Transcript,
	tmAlignments map[string]*model.Alignment,
	refAlignments map[string]*model.Alignment,
) ([]model.EvidenceBundle, error) {
	bundles := make([]model.EvidenceBundle, 0, len(transcripts))
	for _, tx := range transcripts {
		base := model.StripAlignmentNumber(tx.Name)
		ref, ok := refTranscripts[base]
		if !ok {
			return nil, fmt.Errorf("%w: reference transcript %q (for %q)", ErrMissingKey, base, tx.Name)
		}
		tmAln, ok := tmAlignments[tx.Name]
		if !ok {
			return nil, fmt.Errorf("%w: transMap alignment %q", ErrMissingKey, tx.Name)
		}
		refAln, ok := refAlignments[base]
		if !ok {
			return nil, fmt.Errorf("%w: reference alignment %q (for %q)", ErrMissingKey, base, tx.Name)
		}
		bundles = append(bundles, model.EvidenceBundle{
			TM:     tx,
			Ref:    ref,
			TMAln:  tmAln,
			RefAln: refAln,
		})
	}
	return bundles, nil
}
