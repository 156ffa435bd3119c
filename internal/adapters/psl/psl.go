// Package psl reads PSL alignment tables into domain alignment records.
package psl

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

// PSL column layout (21 columns).
const (
	colMatches = iota
	colMisMatches
	colRepMatches
	colNCount
	colQNumInsert
	colQBaseInsert
	colTNumInsert
	colTBaseInsert
	colStrand
	colQName
	colQSize
	colQStart
	colQEnd
	colTName
	colTSize
	colTStart
	colTEnd
	colBlockCount
	colBlockSizes
	colQStarts
	colTStarts

	numColumns = colTStarts + 1
)

// Read parses alignment records from r, preserving input order. psLayout
// headers and blank lines are skipped.
func Read(ctx context.Context, r io.Reader) ([]*model.Alignment, error) {
	var out []*model.Alignment
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		line := strings.TrimRight(scanner.Text(), "\r\n")
		if line == "" || !startsNumeric(line) {
			continue // psLayout header block
		}
		aln, err := parseLine(line)
		if err != nil {
			return nil, fmt.Errorf("psl line %d: %w", lineNo, err)
		}
		out = append(out, aln)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("psl scan: %w", err)
	}
	return out, nil
}

// ReadFile parses alignment records from path.
func ReadFile(ctx context.Context, path string) ([]*model.Alignment, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open psl: %w", err)
	}
	defer f.Close()
	return Read(ctx, f)
}

// ReadMap parses alignments from path keyed by query name. With stripSuffix
// the alignment-number suffix is removed first, matching the base-id keyed
// reference population.
func ReadMap(ctx context.Context, path string, stripSuffix bool) (map[string]*model.Alignment, error) {
	alns, err := ReadFile(ctx, path)
	if err != nil {
		return nil, err
	}
	out := make(map[string]*model.Alignment, len(alns))
	for _, aln := range alns {
		key := aln.QName
		if stripSuffix {
			key = model.StripAlignmentNumber(key)
		}
		out[key] = aln
	}
	return out, nil
}

func parseLine(line string) (*model.Alignment, error) {
	fields := strings.Split(line, "\t")
	if len(fields) != numColumns {
		return nil, fmt.Errorf("expected %d columns, got %d", numColumns, len(fields))
	}

	ints := make(map[int]int, 8)
	for _, col := range []int{colQSize, colQStart, colQEnd, colTSize, colTStart, colTEnd, colBlockCount} {
		v, err := strconv.Atoi(fields[col])
		if err != nil {
			return nil, fmt.Errorf("bad integer column %d %q: %w", col, fields[col], err)
		}
		ints[col] = v
	}
	blockSizes, err := parseIntList(fields[colBlockSizes])
	if err != nil {
		return nil, fmt.Errorf("bad blockSizes: %w", err)
	}
	qStarts, err := parseIntList(fields[colQStarts])
	if err != nil {
		return nil, fmt.Errorf("bad qStarts: %w", err)
	}
	tStarts, err := parseIntList(fields[colTStarts])
	if err != nil {
		return nil, fmt.Errorf("bad tStarts: %w", err)
	}
	count := ints[colBlockCount]
	if len(blockSizes) != count || len(qStarts) != count || len(tStarts) != count {
		return nil, fmt.Errorf("block list length mismatch: count=%d sizes=%d qStarts=%d tStarts=%d",
			count, len(blockSizes), len(qStarts), len(tStarts))
	}

	return &model.Alignment{
		Strand:     fields[colStrand],
		QName:      fields[colQName],
		TName:      fields[colTName],
		QSize:      ints[colQSize],
		QStart:     ints[colQStart],
		QEnd:       ints[colQEnd],
		TSize:      ints[colTSize],
		TStart:     ints[colTStart],
		TEnd:       ints[colTEnd],
		BlockSizes: blockSizes,
		QStarts:    qStarts,
		TStarts:    tStarts,
	}, nil
}

func startsNumeric(line string) bool {
	return line[0] >= '0' && line[0] <= '9'
}

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
