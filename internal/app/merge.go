package service

import (
	"bufio"
	"context"
	"io"
	"sort"
	"sync"

	"github.com/seqpond/augpipe/internal/domain/model"
)

// chunkCollector gathers each chunk's reconciled records as workers
// finish, out of order. Merged flattens them back into chunk order, so
// the final annotation is deterministic regardless of scheduling.
type chunkCollector struct {
	mu      sync.Mutex
	byChunk map[int][]model.GTFRecord
}

func newChunkCollector() *chunkCollector {
	return &chunkCollector{byChunk: make(map[int][]model.GTFRecord)}
}

// Collect stores one chunk's records. Each chunk index arrives at most
// once; a repeat delivery overwrites rather than duplicates, so a merge
// after a retried chunk stays correct.
func (c *chunkCollector) Collect(_ context.Context, chunkIndex int, records []model.GTFRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.byChunk[chunkIndex] = records
}

// Merged returns all collected records in ascending chunk order. It does
// not mutate the collector; merging twice yields the same result.
func (c *chunkCollector) Merged() []model.GTFRecord {
	c.mu.Lock()
	defer c.mu.Unlock()

	indexes := make([]int, 0, len(c.byChunk))
	for idx := range c.byChunk {
		indexes = append(indexes, idx)
	}
	sort.Ints(indexes)

	var out []model.GTFRecord
	for _, idx := range indexes {
		out = append(out, c.byChunk[idx]...)
	}
	return out
}

// WriteGTF renders records as tab-separated annotation lines.
func WriteGTF(w io.Writer, records []model.GTFRecord) error {
	bw := bufio.NewWriter(w)
	for _, r := range records {
		if _, err := bw.WriteString(r.String()); err != nil {
			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}
