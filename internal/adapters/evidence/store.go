// Package evidence queries an RNA-seq hints database for
// externally-sourced evidence over a genomic window.
//
// The database layout follows the predictor's hint loader: speciesnames,
// seqnames, featuretypes, and hints tables keyed by species and sequence.
// Type, strand and score columns pass through into rendered hint lines.
package evidence

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // database driver

	"github.com/seqpond/augpipe/pkg/metrics"
)

// Store is a read-only session against a hints database. Concurrent
// readers need no coordination.
type Store struct {
	db     *sqlx.DB
	driver string
	source string
}

// Open opens the hints database at path.
func Open(ctx context.Context, path string, opts ...Option) (*Store, error) {
	s := &Store{
		driver: "sqlite",
		source: "b2h",
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	db, err := sqlx.ConnectContext(ctx, s.driver, path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOpenDatabase, err)
	}
	s.db = db
	return s, nil
}

// Close releases the session.
func (s *Store) Close() error {
	return s.db.Close()
}

const hintQuery = `
SELECT h.start, h.end, f.typename, h.score, h.strand, h.mult, h.priority, h.esource
FROM hints h
JOIN featuretypes f ON f.typeid = h.type
JOIN seqnames s ON s.seqnr = h.seqnr AND s.speciesid = h.speciesid
JOIN speciesnames sp ON sp.speciesid = h.speciesid
WHERE sp.speciesname = ? AND s.seqname = ? AND h.start >= ? AND h.end <= ?
ORDER BY h.start`

type hintRow struct {
	Start    int     `db:"start"`
	End      int     `db:"end"`
	Typename string  `db:"typename"`
	Score    float64 `db:"score"`
	Strand   string  `db:"strand"`
	Mult     int     `db:"mult"`
	Priority int     `db:"priority"`
	Esource  string  `db:"esource"`
}

// Query returns the evidence hint lines for one genomic window, rendered
// in the predictor's hint-file format. An empty string means no evidence.
func (s *Store) Query(ctx context.Context, genome, chrom string, start, stop int) (string, error) {
	began := time.Now()
	defer func() {
		metrics.RecordEvidenceQueryLatency(float64(time.Since(began).Milliseconds()))
	}()
	metrics.RecordEvidenceQuery()

	var rows []hintRow
	if err := s.db.SelectContext(ctx, &rows, hintQuery, genome, chrom, start, stop); err != nil {
		return "", fmt.Errorf("%w: %v", ErrQuery, err)
	}

	var sb strings.Builder
	for _, r := range rows {
		fmt.Fprintf(&sb, "%s\t%s\t%s\t%d\t%d\t%g\t%s\t.\tpri=%d;src=%s;mult=%d;\n",
			chrom, s.source, r.Typename, r.Start+1, r.End+1, r.Score, r.Strand, r.Priority, r.Esource, r.Mult)
	}
	return sb.String(), nil
}
