package postgres

// maxBatchMutations is the conservative per-batch mutation ceiling; a
// sweep touching more rows flushes and starts a new batch.
const maxBatchMutations = 499

// chunk partitions items into consecutive slices of at most size
// elements. The returned slices alias the input. A nil or empty input
// yields no chunks.
func chunk[T any](items []T, size int) [][]T {
	if size <= 0 || len(items) == 0 {
		return nil
	}
	out := make([][]T, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		out = append(out, items[start:end])
	}
	return out
}
