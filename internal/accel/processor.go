package accel

import (
	"golang.org/x/sync/errgroup"

	"github.com/leengari/hybrideval/internal/table"
)

// ChunkFunc computes one scalar for one chunk. null=true marks a missing
// result (e.g. mean of an empty group). Compute functions must be pure:
// they read bound column data and nothing else.
type ChunkFunc[T any] func(ix table.ChunkIndex) (value T, null bool)

// BuildFunc assembles computed per-group values into an output column of the
// matching kind (table.FromInts, table.FromFloats, ...).
type BuildFunc[T any] func(name string, values []T, nulls []bool) *table.Column

// ChunkProcessor turns a single-chunk compute function into a full Result.
// Concrete handlers (sum, mean, n, ...) implement only ChunkFunc; the
// iteration over groups, the pre-sized output assembly and the full-table
// span are shared here. This is the extension point for new accelerated
// functions.
type ChunkProcessor[T any] struct {
	name        string
	compute     ChunkFunc[T]
	build       BuildFunc[T]
	check       func(t *table.Table) error // full-table precondition, may be nil
	maxParallel int
}

// NewChunkProcessor creates a processor producing a column named name.
func NewChunkProcessor[T any](name string, build BuildFunc[T], compute ChunkFunc[T]) *ChunkProcessor[T] {
	return &ChunkProcessor[T]{name: name, build: build, compute: compute}
}

// WithTableCheck installs a precondition verified before full-table
// processing. A failed check is a fatal MismatchError, not a NoMatch.
func (p *ChunkProcessor[T]) WithTableCheck(check func(t *table.Table) error) *ChunkProcessor[T] {
	p.check = check
	return p
}

// SetMaxParallel allows up to n chunks of a grouped pass to be computed
// concurrently. n <= 1 keeps the sequential path.
func (p *ChunkProcessor[T]) SetMaxParallel(n int) { p.maxParallel = n }

// ProcessChunk computes the value for one chunk.
func (p *ChunkProcessor[T]) ProcessChunk(ix table.ChunkIndex) (interface{}, bool) {
	v, null := p.compute(ix)
	if null {
		return nil, true
	}
	return v, true
}

// ProcessGrouped iterates every group's chunk in group order and assembles
// one value per group. Results are written to order-indexed slots, so the
// output order is the group order regardless of completion order on the
// parallel path.
func (p *ChunkProcessor[T]) ProcessGrouped(g *table.Grouping) (*table.Column, error) {
	n := g.NumGroups()
	values := make([]T, n)
	nulls := make([]bool, n)

	if p.maxParallel > 1 && n > 1 {
		var eg errgroup.Group
		eg.SetLimit(p.maxParallel)
		for i := 0; i < n; i++ {
			eg.Go(func() error {
				values[i], nulls[i] = p.compute(g.Chunk(i))
				return nil
			})
		}
		// Compute functions are error-free; Wait only synchronizes.
		_ = eg.Wait()
	} else {
		for i := 0; i < n; i++ {
			values[i], nulls[i] = p.compute(g.Chunk(i))
		}
	}

	return p.build(p.name, values, nulls), nil
}

// ProcessTable computes over the whole table via a spanning chunk.
func (p *ChunkProcessor[T]) ProcessTable(t *table.Table) (interface{}, error) {
	if p.check != nil {
		if err := p.check(t); err != nil {
			return nil, err
		}
	}
	v, null := p.compute(table.Span(t.NumRows()))
	if null {
		return nil, nil
	}
	return v, nil
}
