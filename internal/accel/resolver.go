package accel

import "github.com/leengari/hybrideval/internal/table"

// Resolver maps a symbol appearing in an expression to the backing column of
// the table currently being evaluated, without evaluating any expression
// tree. A failed resolve is not an error: the caller treats the argument as
// opaque and declines to accelerate.
type Resolver interface {
	Resolve(name string) (*table.Column, bool)
}

// TableResolver resolves symbols against one table's columns.
type TableResolver struct {
	tbl *table.Table
}

// NewTableResolver creates a resolver backed by t.
func NewTableResolver(t *table.Table) *TableResolver {
	return &TableResolver{tbl: t}
}

// Resolve implements the Resolver interface.
func (r *TableResolver) Resolve(name string) (*table.Column, bool) {
	return r.tbl.Column(name)
}
