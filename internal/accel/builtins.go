package accel

import (
	"math"

	"github.com/leengari/hybrideval/internal/expr"
	"github.com/leengari/hybrideval/internal/table"
)

// Built-in handlers. One handler per function name; type dispatch (INT vs
// FLOAT, and so on) happens inside the handler, not via multiple registry
// entries. Missing-value policy is stated per handler.

func init() {
	Register("sum", sumHandler)
	Register("mean", meanHandler)
	Register("n", countHandler)
	Register("min", minHandler)
	Register("max", maxHandler)
	Register("first", firstHandler)
	Register("last", lastHandler)
	Register("var", varianceHandler)
	Register("sd", stddevHandler)
	Register("n_distinct", distinctHandler)
}

// columnArg resolves a call argument to a column. Only plain symbols that
// the resolver knows can be accelerated; anything else is opaque.
func columnArg(arg expr.Node, resolver Resolver) (*table.Column, bool) {
	sym, ok := arg.(*expr.Symbol)
	if !ok {
		return nil, false
	}
	return resolver.Resolve(sym.Name)
}

// sameLength verifies that a full table matches the column the handler bound
// at match time. A mismatch means the dispatch validated against a different
// table, which is fatal.
func sameLength(op string, col *table.Column) func(t *table.Table) error {
	return func(t *table.Table) error {
		if t.NumRows() != col.Len() {
			return NewLengthMismatch(op, col.Name(), col.Len(), t.NumRows())
		}
		return nil
	}
}

// sumHandler accelerates sum over one numeric column. Nulls are skipped; an
// empty or all-null chunk sums to 0 (integer sums stay integer).
func sumHandler(call *expr.Call, resolver Resolver, argCount int) (Result, bool) {
	if argCount != 1 {
		return nil, false
	}
	col, ok := columnArg(call.Args[0], resolver)
	if !ok {
		return nil, false
	}

	switch col.Kind() {
	case table.KindInt:
		p := NewChunkProcessor("sum", table.FromInts, func(ix table.ChunkIndex) (int64, bool) {
			var total int64
			for i := 0; i < ix.Len(); i++ {
				row := ix.At(i)
				if col.IsNull(row) {
					continue
				}
				total += col.Int(row)
			}
			return total, false
		})
		return p.WithTableCheck(sameLength("sum", col)), true

	case table.KindFloat:
		p := NewChunkProcessor("sum", table.FromFloats, func(ix table.ChunkIndex) (float64, bool) {
			var total float64
			for i := 0; i < ix.Len(); i++ {
				row := ix.At(i)
				if col.IsNull(row) {
					continue
				}
				total += col.Float(row)
			}
			return total, false
		})
		return p.WithTableCheck(sameLength("sum", col)), true

	default:
		return nil, false
	}
}

// meanHandler accelerates mean over one numeric column. Output is always
// FLOAT. Nulls are skipped; a chunk with no observations yields null.
func meanHandler(call *expr.Call, resolver Resolver, argCount int) (Result, bool) {
	if argCount != 1 {
		return nil, false
	}
	col, ok := columnArg(call.Args[0], resolver)
	if !ok || !col.IsNumeric() {
		return nil, false
	}

	p := NewChunkProcessor("mean", table.FromFloats, func(ix table.ChunkIndex) (float64, bool) {
		var total float64
		count := 0
		for i := 0; i < ix.Len(); i++ {
			row := ix.At(i)
			if col.IsNull(row) {
				continue
			}
			total += col.Number(row)
			count++
		}
		if count == 0 {
			return 0, true
		}
		return total / float64(count), false
	})
	return p.WithTableCheck(sameLength("mean", col)), true
}

// countHandler accelerates n(), the group size. Takes no arguments and
// counts every row, nulls included.
func countHandler(call *expr.Call, resolver Resolver, argCount int) (Result, bool) {
	if argCount != 0 {
		return nil, false
	}
	p := NewChunkProcessor("n", table.FromInts, func(ix table.ChunkIndex) (int64, bool) {
		return int64(ix.Len()), false
	})
	return p, true
}

// minHandler accelerates min over one numeric column. Nulls are skipped; a
// chunk with no observations yields null. Output kind matches the input.
func minHandler(call *expr.Call, resolver Resolver, argCount int) (Result, bool) {
	return extremumHandler("min", call, resolver, argCount,
		func(a, b int64) bool { return a < b },
		func(a, b float64) bool { return a < b })
}

// maxHandler accelerates max over one numeric column, with the same
// missing-value policy as min.
func maxHandler(call *expr.Call, resolver Resolver, argCount int) (Result, bool) {
	return extremumHandler("max", call, resolver, argCount,
		func(a, b int64) bool { return a > b },
		func(a, b float64) bool { return a > b })
}

func extremumHandler(op string, call *expr.Call, resolver Resolver, argCount int,
	betterInt func(a, b int64) bool, betterFloat func(a, b float64) bool) (Result, bool) {
	if argCount != 1 {
		return nil, false
	}
	col, ok := columnArg(call.Args[0], resolver)
	if !ok {
		return nil, false
	}

	switch col.Kind() {
	case table.KindInt:
		p := NewChunkProcessor(op, table.FromInts, func(ix table.ChunkIndex) (int64, bool) {
			var best int64
			found := false
			for i := 0; i < ix.Len(); i++ {
				row := ix.At(i)
				if col.IsNull(row) {
					continue
				}
				v := col.Int(row)
				if !found || betterInt(v, best) {
					best = v
					found = true
				}
			}
			return best, !found
		})
		return p.WithTableCheck(sameLength(op, col)), true

	case table.KindFloat:
		p := NewChunkProcessor(op, table.FromFloats, func(ix table.ChunkIndex) (float64, bool) {
			var best float64
			found := false
			for i := 0; i < ix.Len(); i++ {
				row := ix.At(i)
				if col.IsNull(row) {
					continue
				}
				v := col.Float(row)
				if !found || betterFloat(v, best) {
					best = v
					found = true
				}
			}
			return best, !found
		})
		return p.WithTableCheck(sameLength(op, col)), true

	default:
		return nil, false
	}
}

// firstHandler accelerates first(x): the value at the chunk's first row,
// null included. An empty chunk yields null. Works for every column kind.
func firstHandler(call *expr.Call, resolver Resolver, argCount int) (Result, bool) {
	return positionalHandler("first", call, resolver, argCount, func(ix table.ChunkIndex) (int, bool) {
		if ix.Len() == 0 {
			return 0, false
		}
		return ix.At(0), true
	})
}

// lastHandler accelerates last(x): the value at the chunk's last row, null
// included. An empty chunk yields null.
func lastHandler(call *expr.Call, resolver Resolver, argCount int) (Result, bool) {
	return positionalHandler("last", call, resolver, argCount, func(ix table.ChunkIndex) (int, bool) {
		if ix.Len() == 0 {
			return 0, false
		}
		return ix.At(ix.Len() - 1), true
	})
}

func positionalHandler(op string, call *expr.Call, resolver Resolver, argCount int,
	pick func(ix table.ChunkIndex) (int, bool)) (Result, bool) {
	if argCount != 1 {
		return nil, false
	}
	col, ok := columnArg(call.Args[0], resolver)
	if !ok {
		return nil, false
	}

	switch col.Kind() {
	case table.KindInt:
		p := NewChunkProcessor(op, table.FromInts, func(ix table.ChunkIndex) (int64, bool) {
			row, ok := pick(ix)
			if !ok || col.IsNull(row) {
				return 0, true
			}
			return col.Int(row), false
		})
		return p.WithTableCheck(sameLength(op, col)), true

	case table.KindFloat:
		p := NewChunkProcessor(op, table.FromFloats, func(ix table.ChunkIndex) (float64, bool) {
			row, ok := pick(ix)
			if !ok || col.IsNull(row) {
				return 0, true
			}
			return col.Float(row), false
		})
		return p.WithTableCheck(sameLength(op, col)), true

	case table.KindString:
		p := NewChunkProcessor(op, table.FromStrings, func(ix table.ChunkIndex) (string, bool) {
			row, ok := pick(ix)
			if !ok || col.IsNull(row) {
				return "", true
			}
			return col.String(row), false
		})
		return p.WithTableCheck(sameLength(op, col)), true

	default:
		p := NewChunkProcessor(op, table.FromBools, func(ix table.ChunkIndex) (bool, bool) {
			row, ok := pick(ix)
			if !ok || col.IsNull(row) {
				return false, true
			}
			return col.Bool(row), false
		})
		return p.WithTableCheck(sameLength(op, col)), true
	}
}

// varianceHandler accelerates var(x), the sample variance (n-1 denominator)
// of one numeric column. Nulls are skipped; fewer than two observations
// yield null.
func varianceHandler(call *expr.Call, resolver Resolver, argCount int) (Result, bool) {
	return momentHandler("var", call, resolver, argCount, func(v float64) float64 { return v })
}

// stddevHandler accelerates sd(x), the sample standard deviation, with the
// same missing-value policy as var.
func stddevHandler(call *expr.Call, resolver Resolver, argCount int) (Result, bool) {
	return momentHandler("sd", call, resolver, argCount, math.Sqrt)
}

func momentHandler(op string, call *expr.Call, resolver Resolver, argCount int,
	finish func(variance float64) float64) (Result, bool) {
	if argCount != 1 {
		return nil, false
	}
	col, ok := columnArg(call.Args[0], resolver)
	if !ok || !col.IsNumeric() {
		return nil, false
	}

	p := NewChunkProcessor(op, table.FromFloats, func(ix table.ChunkIndex) (float64, bool) {
		// Welford's online algorithm
		var mean, m2 float64
		count := 0
		for i := 0; i < ix.Len(); i++ {
			row := ix.At(i)
			if col.IsNull(row) {
				continue
			}
			v := col.Number(row)
			count++
			delta := v - mean
			mean += delta / float64(count)
			m2 += delta * (v - mean)
		}
		if count < 2 {
			return 0, true
		}
		return finish(m2 / float64(count-1)), false
	})
	return p.WithTableCheck(sameLength(op, col)), true
}

// distinctHandler accelerates n_distinct(x): the number of distinct
// non-null values in the chunk. Works for every column kind.
func distinctHandler(call *expr.Call, resolver Resolver, argCount int) (Result, bool) {
	if argCount != 1 {
		return nil, false
	}
	col, ok := columnArg(call.Args[0], resolver)
	if !ok {
		return nil, false
	}

	p := NewChunkProcessor("n_distinct", table.FromInts, func(ix table.ChunkIndex) (int64, bool) {
		seen := make(map[interface{}]struct{})
		for i := 0; i < ix.Len(); i++ {
			row := ix.At(i)
			if col.IsNull(row) {
				continue
			}
			seen[col.Value(row)] = struct{}{}
		}
		return int64(len(seen)), false
	})
	return p.WithTableCheck(sameLength("n_distinct", col)), true
}
