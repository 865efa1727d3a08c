package accel

import "github.com/leengari/hybrideval/internal/table"

// Result is an accelerated computation unit produced by a handler at match
// time, bound to specific columns and parameters extracted from the call
// expression. A Result holds no mutable state across calls: each Process
// invocation is independent and side-effect-free, so independent chunks may
// safely be computed in parallel by a caller.
type Result interface {
	// ProcessChunk computes the value for one chunk. The scalar is boxed,
	// nil meaning null. ok=false signals that this result has no
	// chunk-level path and the caller must use the grouped or full-table
	// paths instead.
	ProcessChunk(ix table.ChunkIndex) (value interface{}, ok bool)

	// ProcessGrouped computes one value per group, in group order, and
	// assembles them into an output column. This is the canonical
	// aggregate-per-group path.
	ProcessGrouped(g *table.Grouping) (*table.Column, error)

	// ProcessTable computes a single value over the entire ungrouped table.
	ProcessTable(t *table.Table) (interface{}, error)
}

// ParallelResult is implemented by results whose grouped path can compute
// chunks concurrently. Output order is unaffected: values land in pre-sized,
// order-indexed slots.
type ParallelResult interface {
	Result
	SetMaxParallel(n int)
}

// Unchunked is an embeddable base for handler authors whose results have no
// per-chunk optimization. Its ProcessChunk reports ok=false, directing
// callers to the grouped or full-table paths.
type Unchunked struct{}

func (Unchunked) ProcessChunk(table.ChunkIndex) (interface{}, bool) {
	return nil, false
}
