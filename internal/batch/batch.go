package batch

import "github.com/devguard-io/devguard/internal/chunker"

// DefaultSize is the number of chunks per batch when no override is configured.
const DefaultSize = 10

// Batch is an ordered group of chunks pooled across files, sent to the
// model in a single call. Index is 1-based among all batches of a run.
type Batch struct {
	Index  int
	Chunks []chunker.Chunk
}

// Make slices the pooled chunk sequence into consecutive groups of at most
// size chunks; only the final batch may be smaller. Batch membership is
// exhaustive and disjoint and preserves pool order. An empty pool yields no
// batches.
func Make(pooled []chunker.Chunk, size int) []Batch {
	if size <= 0 {
		size = DefaultSize
	}
	if len(pooled) == 0 {
		return nil
	}

	batches := make([]Batch, 0, (len(pooled)+size-1)/size)
	for start := 0; start < len(pooled); start += size {
		end := start + size
		if end > len(pooled) {
			end = len(pooled)
		}
		batches = append(batches, Batch{
			Index:  len(batches) + 1,
			Chunks: pooled[start:end],
		})
	}
	return batches
}
