package table

// ChunkIndex is an ordered, read-only set of row positions identifying which
// rows of a column belong to one group. Indices are 0-based and must be valid
// positions in the bound columns; callers guarantee validity, so there are no
// error paths here. An empty chunk (empty group) is legal.
type ChunkIndex []int

// Len returns the number of rows in the chunk.
func (ix ChunkIndex) Len() int { return len(ix) }

// At returns the row position at chunk offset i.
func (ix ChunkIndex) At(i int) int { return ix[i] }

// Span builds a ChunkIndex covering rows 0..n-1, used for whole-table
// evaluation.
func Span(n int) ChunkIndex {
	ix := make(ChunkIndex, n)
	for i := range ix {
		ix[i] = i
	}
	return ix
}
