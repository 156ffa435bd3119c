// Package genepred reads gene-model tables in the extended genePred
// format into domain transcripts.
package genepred

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/seqpond/augpipe/internal/domain/model"
)

// Extended genePred column layout.
const (
	colName = iota
	colChrom
	colStrand
	colTxStart
	colTxEnd
	colCdsStart
	colCdsEnd
	colExonCount
	colExonStarts
	colExonEnds
	colScore
	colName2
	colCdsStartStat
	colCdsEndStat

	minColumns = colExonEnds + 1
)

// Read parses transcripts from r, preserving input order. Lines starting
// with '#' are skipped. The extended columns (name2, cdsStartStat,
// cdsEndStat) are optional; without them the gene id falls back to the
// transcript name and the completeness flags stay unset.
func Read(ctx context.Context, r io.Reader) ([]*model.Transcript, error) {
	var out []*model.Transcript
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		line := strings.TrimRight(scanner.Text(), "\r\n")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		tx, err := parseLine(line)
		if err != nil {
			return nil, fmt.Errorf("genePred line %d: %w", lineNo, err)
		}
		out = append(out, tx)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("genePred scan: %w", err)
	}
	return out, nil
}

// ReadFile parses transcripts from path.
func ReadFile(ctx context.Context, path string) ([]*model.Transcript, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open genePred: %w", err)
	}
	defer f.Close()
	return Read(ctx, f)
}

// ReadMap parses transcripts from path keyed by their raw name. Stripping
// the alignment-number suffix happens at lookup time, never here: a
// reference transcript may legitimately end in -<digits>.
func ReadMap(ctx context.Context, path string) (map[string]*model.Transcript, error) {
	txs, err := ReadFile(ctx, path)
	if err != nil {
		return nil, err
	}
	out := make(map[string]*model.Transcript, len(txs))
	for _, tx := range txs {
		out[tx.Name] = tx
	}
	return out, nil
}

func parseLine(line string) (*model.Transcript, error) {
	fields := strings.Split(line, "\t")
	if len(fields) < minColumns {
		return nil, fmt.Errorf("expected at least %d columns, got %d", minColumns, len(fields))
	}
	txStart, err := strconv.Atoi(fields[colTxStart])
	if err != nil {
		return nil, fmt.Errorf("bad txStart %q: %w", fields[colTxStart], err)
	}
	txEnd, err := strconv.Atoi(fields[colTxEnd])
	if err != nil {
		return nil, fmt.Errorf("bad txEnd %q: %w", fields[colTxEnd], err)
	}
	cdsStart, err := strconv.Atoi(fields[colCdsStart])
	if err != nil {
		return nil, fmt.Errorf("bad cdsStart %q: %w", fields[colCdsStart], err)
	}
	cdsEnd, err := strconv.Atoi(fields[colCdsEnd])
	if err != nil {
		return nil, fmt.Errorf("bad cdsEnd %q: %w", fields[colCdsEnd], err)
	}
	exonCount, err := strconv.Atoi(fields[colExonCount])
	if err != nil {
		return nil, fmt.Errorf("bad exonCount %q: %w", fields[colExonCount], err)
	}
	exonStarts, err := parseIntList(fields[colExonStarts])
	if err != nil {
		return nil, fmt.Errorf("bad exonStarts: %w", err)
	}
	exonEnds, err := parseIntList(fields[colExonEnds])
	if err != nil {
		return nil, fmt.Errorf("bad exonEnds: %w", err)
	}
	if len(exonStarts) != exonCount || len(exonEnds) != exonCount {
		return nil, fmt.Errorf("exon list length mismatch: count=%d starts=%d ends=%d",
			exonCount, len(exonStarts), len(exonEnds))
	}

	tx := &model.Transcript{
		Name:       fields[colName],
		Name2:      fields[colName],
		Chrom:      fields[colChrom],
		Strand:     fields[colStrand],
		Start:      txStart,
		Stop:       txEnd,
		ExonStarts: exonStarts,
		ExonEnds:   exonEnds,
		ThickStart: cdsStart,
		ThickStop:  cdsEnd,
	}
	if len(fields) > colName2 && fields[colName2] != "" {
		tx.Name2 = fields[colName2]
	}
	if len(fields) > colCdsStartStat {
		tx.CDSStartComplete = fields[colCdsStartStat] == "cmpl"
	}
	if len(fields) > colCdsEndStat {
		tx.CDSStopComplete = fields[colCdsEndStat] == "cmpl"
	}
	return tx, nil
}

// parseIntList parses a comma-separated integer list with an optional
// trailing comma, as genePred writes exon boundary lists.
func parseIntList(s string) ([]int, error) {
	s = strings.TrimSuffix(s, ",")
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]int, len(parts))
	for i, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("bad value %q: %w", p, err)
		}
		out[i] = v
	}
	return out, nil
}
