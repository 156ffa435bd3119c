// Package reconcile filters raw predictor output down to at most one clean
// transcript per invocation.
//
// Policy: if the predictor reports anything other than exactly one
// transcript overlapping the originating interval, the whole unit is
// discarded. Precision over recall; ambiguous predictions are not
// salvageable.
package reconcile

import (
	"context"
	"fmt"
	"strings"

	"github.com/seqpond/augpipe/internal/domain/model"
)

// retainedFeatures are the only feature tags kept downstream.
var retainedFeatures = map[string]struct{}{
	"exon":        {},
	"CDS":         {},
	"start_codon": {},
	"stop_codon":  {},
	"tss":         {},
	"tts":         {},
}

// Reconcile scans raw predictor output lines for the one transcript
// overlapping tx's interval, renames it aug-I{cfgVersion}-{name}, and
// returns its retained records. A nil slice means no usable prediction.
// Discarding is silent: the caller counts it, nothing downstream sees it.
func Reconcile(_ context.Context, rawLines []string, tx *model.Transcript, cfgVersion int) ([]model.GTFRecord, error) {
	candidates := transcriptLines(rawLines)

	// Keep only candidates overlapping the originating transcript.
	var valid []string
	txInterval := tx.Interval()
	for _, c := range candidates {
		if txInterval.Overlap(c.rec.Interval()) {
			valid = append(valid, c.id)
		}
	}
	if len(valid) != 1 {
		return nil, nil
	}
	selected := valid[0]

	txID := fmt.Sprintf("aug-I%d-%s", cfgVersion, tx.Name)
	newAttributes := fmt.Sprintf("transcript_id %q; gene_id %q;", txID, tx.Name2)

	var out []model.GTFRecord
	for _, line := range rawLines {
		if !strings.Contains(line, selected) {
			continue
		}
		rec, err := model.ParseGTFLine(line)
		if err != nil {
			continue // non-record chatter mentioning the id
		}
		if _, ok := retainedFeatures[rec.Feature]; !ok {
			continue
		}
		rec.Attributes = newAttributes
		out = append(out, rec)
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}

type candidate struct {
	id  string
	rec model.GTFRecord
}

// transcriptLines extracts the transcript-tagged records along with the
// predictor's internal transcript identifier (the last whitespace field).
func transcriptLines(rawLines []string) []candidate {
	var out []candidate
	for _, line := range rawLines {
		if !strings.Contains(line, "\ttranscript\t") {
			continue
		}
		rec, err := model.ParseGTFLine(line)
		if err != nil {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		out = append(out, candidate{id: fields[len(fields)-1], rec: rec})
	}
	return out
}
