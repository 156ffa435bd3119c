// Package model contains domain models passed between pipeline stages.
//
// Coordinates are 0-based half-open throughout, matching genePred and PSL
// conventions; GTF lines are converted at the reconciliation boundary.
package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Interval is a stranded genomic interval.
type Interval struct {
	Chrom  string
	Start  int
	Stop   int
	Strand string
}

// Overlap reports whether two intervals share at least one base on the
// same chromosome and strand.
func (i Interval) Overlap(o Interval) bool {
	if i.Chrom != o.Chrom || i.Strand != o.Strand {
		return false
	}
	return i.Start < o.Stop && o.Start < i.Stop
}

// Transcript is one gene-model record in a genome's coordinate space.
type Transcript struct {
	Name   string // per-alignment transcript identifier
	Name2  string // gene-level identifier
	Chrom  string
	Start  int
	Stop   int
	Strand string

	// Exon block boundaries, parallel slices.
	ExonStarts []int
	ExonEnds   []int

	// Coding region bounds and their mapping status. The completeness
	// flags come from the genePred cdsStartStat/cdsEndStat columns; an
	// incomplete flag means the boundary was synthesized rather than
	// mapped over from the reference.
	ThickStart       int
	ThickStop        int
	CDSStartComplete bool
	CDSStopComplete  bool
}

// Len returns the genomic extent of the transcript.
func (t *Transcript) Len() int {
	return t.Stop - t.Start
}

// Interval returns the transcript's stranded genomic interval.
func (t *Transcript) Interval() Interval {
	return Interval{Chrom: t.Chrom, Start: t.Start, Stop: t.Stop, Strand: t.Strand}
}

// Introns returns the gaps between consecutive exon blocks.
func (t *Transcript) Introns() []Interval {
	var introns []Interval
	for i := 0; i+1 < len(t.ExonStarts); i++ {
		start := t.ExonEnds[i]
		stop := t.ExonStarts[i+1]
		if start >= stop {
			continue
		}
		introns = append(introns, Interval{Chrom: t.Chrom, Start: start, Stop: stop, Strand: t.Strand})
	}
	return introns
}

// Window returns the transcript extent expanded by padding on both sides,
// clamped to [0, chromLen].
func (t *Transcript) Window(padding, chromLen int) Window {
	start := t.Start - padding
	if start < 0 {
		start = 0
	}
	stop := t.Stop + padding
	if stop > chromLen {
		stop = chromLen
	}
	return Window{Chrom: t.Chrom, Start: start, Stop: stop}
}

// Window is the genomic interval submitted to the predictor for one transcript.
type Window struct {
	Chrom string
	Start int
	Stop  int
}

// Alignment describes how a transcript aligns between two coordinate
// spaces, as a PSL block alignment. Query is transcript space, target is
// genome space.
type Alignment struct {
	QName  string
	TName  string
	Strand string
	QSize  int
	TSize  int
	QStart int
	QEnd   int
	TStart int
	TEnd   int

	// Parallel per-block slices.
	BlockSizes []int
	QStarts    []int
	TStarts    []int
}

// TargetToQuery maps a target (genomic) position into query (transcript)
// space. Returns -1 when the position falls outside every aligned block.
// Negative-strand alignments store query block starts in flipped
// coordinates; the result is normalized back to plus-strand query space.
func (a *Alignment) TargetToQuery(pos int) int {
	for i, ts := range a.TStarts {
		size := a.BlockSizes[i]
		if pos < ts || pos >= ts+size {
			continue
		}
		q := a.QStarts[i] + (pos - ts)
		if strings.HasPrefix(a.Strand, "-") {
			return a.QSize - 1 - q
		}
		return q
	}
	return -1
}

// QueryToTarget maps a query (transcript) position into target (genomic)
// space. Returns -1 when the position is unaligned.
func (a *Alignment) QueryToTarget(pos int) int {
	q := pos
	if strings.HasPrefix(a.Strand, "-") {
		q = a.QSize - 1 - pos
	}
	for i, qs := range a.QStarts {
		size := a.BlockSizes[i]
		if q < qs || q >= qs+size {
			continue
		}
		return a.TStarts[i] + (q - qs)
	}
	return -1
}

// EvidenceBundle joins the four upstream records describing one logical
// transcript: the transMap model in target space, its reference
// counterpart, and the two alignments linking them.
type EvidenceBundle struct {
	TM     *Transcript
	Ref    *Transcript
	TMAln  *Alignment
	RefAln *Alignment
}

// Hint is one extrinsic-evidence line in the predictor's hint format.
type Hint struct {
	Chrom      string
	Source     string
	Feature    string
	Start      int // 0-based half-open; rendered 1-based inclusive
	Stop       int
	Strand     string
	Attributes string
}

// String renders the hint as a tab-separated GFF line.
func (h Hint) String() string {
	return strings.Join([]string{
		h.Chrom, h.Source, h.Feature,
		strconv.Itoa(h.Start + 1), strconv.Itoa(h.Stop),
		"0", h.Strand, ".", h.Attributes,
	}, "\t")
}

// GTFRecord is one 9-field annotation line. Score and Frame pass through
// as text from the predictor; Start/Stop are parsed for interval tests and
// rendered back 1-based inclusive.
type GTFRecord struct {
	Chrom      string
	Source     string
	Feature    string
	Start      int // 0-based half-open
	Stop       int
	Score      string
	Strand     string
	Frame      string
	Attributes string
}

// String renders the record as a tab-separated GTF line.
func (r GTFRecord) String() string {
	return strings.Join([]string{
		r.Chrom, r.Source, r.Feature,
		strconv.Itoa(r.Start + 1), strconv.Itoa(r.Stop),
		r.Score, r.Strand, r.Frame, r.Attributes,
	}, "\t")
}

// Interval returns the record's stranded genomic interval.
func (r GTFRecord) Interval() Interval {
	return Interval{Chrom: r.Chrom, Start: r.Start, Stop: r.Stop, Strand: r.Strand}
}

// ParseGTFLine parses one tab-separated 9-field GTF line, converting the
// 1-based inclusive coordinates to 0-based half-open.
func ParseGTFLine(line string) (GTFRecord, error) {
	fields := strings.Split(line, "\t")
	if len(fields) != 9 {
		return GTFRecord{}, fmt.Errorf("expected 9 GTF fields, got %d", len(fields))
	}
	start, err := strconv.Atoi(fields[3])
	if err != nil {
		return GTFRecord{}, fmt.Errorf("bad GTF start %q: %w", fields[3], err)
	}
	stop, err := strconv.Atoi(fields[4])
	if err != nil {
		return GTFRecord{}, fmt.Errorf("bad GTF stop %q: %w", fields[4], err)
	}
	return GTFRecord{
		Chrom:      fields[0],
		Source:     fields[1],
		Feature:    fields[2],
		Start:      start - 1,
		Stop:       stop,
		Score:      fields[5],
		Strand:     fields[6],
		Frame:      fields[7],
		Attributes: fields[8],
	}, nil
}

// StripAlignmentNumber removes the trailing "-N" alignment suffix from a
// transMap identifier, yielding the base transcript identifier.
func StripAlignmentNumber(id string) string {
	i := strings.LastIndex(id, "-")
	if i < 0 || i == len(id)-1 {
		return id
	}
	for _, r := range id[i+1:] {
		if r < '0' || r > '9' {
			return id
		}
	}
	return id[:i]
}
