// Package seq provides random-access retrieval over a genome FASTA.
//
// The whole genome is held in memory; annotation runs touch most
// chromosomes anyway and the predictor dominates the footprint.
package seq

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
)

// Genome is a random-access view of a FASTA file, keyed by chromosome.
type Genome struct {
	order []string
	seqs  map[string][]byte
}

// Open reads the FASTA at path into memory.
func Open(_ context.Context, path string) (*Genome, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open fasta: %w", err)
	}
	defer f.Close()
	return Read(f)
}

// Read parses FASTA records from r. Soft-masked (lowercase) bases are
// preserved; the predictor honors them.
func Read(r io.Reader) (*Genome, error) {
	g := &Genome{seqs: make(map[string][]byte)}
	var name string
	var sb []byte
	flush := func() {
		if name != "" {
			g.order = append(g.order, name)
			g.seqs[name] = sb
		}
	}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, ">") {
			flush()
			// Header up to the first whitespace names the sequence.
			fields := strings.Fields(line[1:])
			if len(fields) == 0 {
				return nil, fmt.Errorf("fasta: empty header")
			}
			name = fields[0]
			sb = nil
			continue
		}
		if name == "" {
			return nil, fmt.Errorf("fasta: sequence data before first header")
		}
		sb = append(sb, []byte(strings.TrimSpace(line))...)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("fasta scan: %w", err)
	}
	flush()
	if len(g.order) == 0 {
		return nil, fmt.Errorf("fasta: no records")
	}
	return g, nil
}

// Fetch returns the [start, stop) substring of a chromosome.
func (g *Genome) Fetch(_ context.Context, chrom string, start, stop int) (string, error) {
	s, ok := g.seqs[chrom]
	if !ok {
		return "", fmt.Errorf("fasta: unknown sequence %q", chrom)
	}
	if start < 0 || stop > len(s) || start > stop {
		return "", fmt.Errorf("fasta: range [%d,%d) out of bounds for %q (len %d)", start, stop, chrom, len(s))
	}
	return string(s[start:stop]), nil
}

// Length returns the length of a chromosome.
func (g *Genome) Length(_ context.Context, chrom string) (int, error) {
	s, ok := g.seqs[chrom]
	if !ok {
		return 0, fmt.Errorf("fasta: unknown sequence %q", chrom)
	}
	return len(s), nil
}

// Names returns the sequence names in file order.
func (g *Genome) Names() []string {
	return append([]string(nil), g.order...)
}

// WriteFasta writes one sequence as a FASTA record to w, wrapped at width.
func WriteFasta(w io.Writer, name, sequence string, width int) error {
	if width < 1 {
		width = 80
	}
	if _, err := fmt.Fprintf(w, ">%s\n", name); err != nil {
		return err
	}
	for start := 0; start < len(sequence); start += width {
		end := start + width
		if end > len(sequence) {
			end = len(sequence)
		}
		if _, err := fmt.Fprintln(w, sequence[start:end]); err != nil {
			return err
		}
	}
	return nil
}
