package accel_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leengari/hybrideval/internal/accel"
	"github.com/leengari/hybrideval/internal/expr"
	"github.com/leengari/hybrideval/internal/table"
)

func sym(name string) *expr.Symbol { return &expr.Symbol{Name: name} }

func callOf(name string, args ...expr.Node) *expr.Call {
	return &expr.Call{Func: sym(name), Args: args}
}

// flightsTable is the table from the grouped-sum scenario: flights [10,20,30].
func flightsTable(t *testing.T) (*table.Table, accel.Resolver) {
	t.Helper()
	tbl, err := table.New("flights",
		table.FromInts("flights", []int64{10, 20, 30}, nil),
	)
	require.NoError(t, err)
	return tbl, accel.NewTableResolver(tbl)
}

func TestSum_GroupedScenario(t *testing.T) {
	_, resolver := flightsTable(t)

	result, ok := accel.GetHandler(callOf("sum", sym("flights")), resolver)
	require.True(t, ok, "sum over an int column must match")

	tests := []struct {
		name     string
		chunks   []table.ChunkIndex
		expected []int64
	}{
		{"groups {0,1} {2}", []table.ChunkIndex{{0, 1}, {2}}, []int64{30, 30}},
		{"groups {0} {1,2}", []table.ChunkIndex{{0}, {1, 2}}, []int64{10, 50}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := table.NewGrouping(nil, nil, tt.chunks)
			col, err := result.ProcessGrouped(g)
			require.NoError(t, err)
			require.Equal(t, len(tt.expected), col.Len())
			for i, want := range tt.expected {
				assert.Equal(t, want, col.Int(i), "group %d", i)
			}
		})
	}
}

func TestSum_EmptyChunkYieldsZero(t *testing.T) {
	_, resolver := flightsTable(t)

	result, ok := accel.GetHandler(callOf("sum", sym("flights")), resolver)
	require.True(t, ok)

	v, ok := result.ProcessChunk(table.ChunkIndex{})
	require.True(t, ok)
	assert.Equal(t, int64(0), v)
}

func TestSum_NoMatch(t *testing.T) {
	tbl, err := table.New("t",
		table.FromInts("flights", []int64{1}, nil),
		table.FromStrings("carrier", []string{"AA"}, nil),
	)
	require.NoError(t, err)
	resolver := accel.NewTableResolver(tbl)

	tests := []struct {
		name string
		call *expr.Call
	}{
		{"zero args", callOf("sum")},
		{"two args", callOf("sum", sym("flights"), sym("flights"))},
		{"unresolvable symbol", callOf("sum", sym("nonexistent"))},
		{"literal arg", callOf("sum", &expr.Literal{Value: int64(3)})},
		{"nested call arg", callOf("sum", callOf("sum", sym("flights")))},
		{"non-numeric column", callOf("sum", sym("carrier"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := accel.GetHandler(tt.call, resolver)
			assert.False(t, ok, "expected NoMatch")
		})
	}
}

func TestGetHandler_NonSymbolHead(t *testing.T) {
	_, resolver := flightsTable(t)

	call := &expr.Call{
		Func: callOf("make_fn", sym("flights")),
		Args: []expr.Node{sym("flights")},
	}
	_, ok := accel.GetHandler(call, resolver)
	assert.False(t, ok, "computed function position must not dispatch")
}

func TestGetHandler_UnregisteredName(t *testing.T) {
	_, resolver := flightsTable(t)

	_, ok := accel.GetHandler(callOf("no_such_fn", sym("flights")), resolver)
	assert.False(t, ok)
}

func TestGetHandler_Idempotent(t *testing.T) {
	_, resolver := flightsTable(t)
	g := table.NewGrouping(nil, nil, []table.ChunkIndex{{0, 1}, {2}})
	call := callOf("sum", sym("flights"))

	first, ok := accel.GetHandler(call, resolver)
	require.True(t, ok)
	second, ok := accel.GetHandler(call, resolver)
	require.True(t, ok)

	colA, err := first.ProcessGrouped(g)
	require.NoError(t, err)
	colB, err := second.ProcessGrouped(g)
	require.NoError(t, err)

	// Re-running either result must not change anything: no hidden state.
	colA2, err := first.ProcessGrouped(g)
	require.NoError(t, err)

	for i := 0; i < colA.Len(); i++ {
		assert.Equal(t, colA.Value(i), colB.Value(i))
		assert.Equal(t, colA.Value(i), colA2.Value(i))
	}
}

func TestRegistry_OverwriteLastWins(t *testing.T) {
	reg := accel.NewRegistry()

	marker := 0
	reg.Register("custom", func(call *expr.Call, resolver accel.Resolver, argCount int) (accel.Result, bool) {
		marker = 1
		return nil, false
	})
	reg.Register("custom", func(call *expr.Call, resolver accel.Resolver, argCount int) (accel.Result, bool) {
		marker = 2
		return nil, false
	})

	fn, ok := reg.Lookup("custom")
	require.True(t, ok)
	fn(nil, nil, 0)
	assert.Equal(t, 2, marker, "only the second registration must be reachable")
}

func TestRegistry_Names(t *testing.T) {
	reg := accel.NewRegistry()
	reg.Register("b", func(*expr.Call, accel.Resolver, int) (accel.Result, bool) { return nil, false })
	reg.Register("a", func(*expr.Call, accel.Resolver, int) (accel.Result, bool) { return nil, false })

	assert.Equal(t, []string{"a", "b"}, reg.Names())
}

// aggregateTable exercises every built-in over ints, floats, strings and
// nulls.
func aggregateTable(t *testing.T) (*table.Table, *table.Grouping, accel.Resolver) {
	t.Helper()
	tbl, err := table.New("sample",
		table.FromStrings("carrier", []string{"AA", "AA", "UA", "UA", "UA", "DL"}, nil),
		table.FromInts("flights", []int64{10, 20, 30, 5, 12, 8}, nil),
		table.FromFloats("delay", []float64{4.5, 0, 31.5, 2.25, 9.75, 6.5},
			[]bool{false, true, false, false, false, false}),
	)
	require.NoError(t, err)
	g, err := table.GroupTable(tbl, "carrier")
	require.NoError(t, err)
	return tbl, g, accel.NewTableResolver(tbl)
}

func TestBuiltins_GroupedMatchesPerChunk(t *testing.T) {
	_, g, resolver := aggregateTable(t)

	calls := []*expr.Call{
		callOf("sum", sym("flights")),
		callOf("sum", sym("delay")),
		callOf("mean", sym("delay")),
		callOf("n"),
		callOf("min", sym("flights")),
		callOf("max", sym("delay")),
		callOf("first", sym("carrier")),
		callOf("last", sym("flights")),
		callOf("var", sym("delay")),
		callOf("sd", sym("delay")),
		callOf("n_distinct", sym("carrier")),
	}

	for _, call := range calls {
		t.Run(call.String(), func(t *testing.T) {
			result, ok := accel.GetHandler(call, resolver)
			require.True(t, ok, "handler must match %s", call)

			col, err := result.ProcessGrouped(g)
			require.NoError(t, err)
			require.Equal(t, g.NumGroups(), col.Len())

			// The grouped path and the per-chunk path are observationally
			// equivalent.
			for i := 0; i < g.NumGroups(); i++ {
				v, ok := result.ProcessChunk(g.Chunk(i))
				require.True(t, ok, "builtins provide a chunk path")
				assert.Equal(t, v, col.Value(i), "group %d of %s", i, call)
			}
		})
	}
}

func TestBuiltins_FullTableMatchesGenericSemantics(t *testing.T) {
	tbl, _, resolver := aggregateTable(t)

	// Hand-computed over all rows, nulls skipped.
	sumResult, ok := accel.GetHandler(callOf("sum", sym("flights")), resolver)
	require.True(t, ok)
	v, err := sumResult.ProcessTable(tbl)
	require.NoError(t, err)
	assert.Equal(t, int64(85), v)

	meanResult, ok := accel.GetHandler(callOf("mean", sym("delay")), resolver)
	require.True(t, ok)
	v, err = meanResult.ProcessTable(tbl)
	require.NoError(t, err)
	assert.InDelta(t, (4.5+31.5+2.25+9.75+6.5)/5, v.(float64), 1e-9)

	countResult, ok := accel.GetHandler(callOf("n"), resolver)
	require.True(t, ok)
	v, err = countResult.ProcessTable(tbl)
	require.NoError(t, err)
	assert.Equal(t, int64(6), v)
}

func TestBuiltins_MissingValuePolicies(t *testing.T) {
	tbl, err := table.New("t",
		table.FromFloats("x", []float64{0, 0}, []bool{true, true}),
		table.FromInts("y", []int64{7, 0}, []bool{false, true}),
	)
	require.NoError(t, err)
	resolver := accel.NewTableResolver(tbl)
	all := table.Span(tbl.NumRows())
	empty := table.ChunkIndex{}

	run := func(name, col string, ix table.ChunkIndex) interface{} {
		result, ok := accel.GetHandler(callOf(name, sym(col)), resolver)
		require.True(t, ok, "%s(%s) must match", name, col)
		v, ok := result.ProcessChunk(ix)
		require.True(t, ok)
		return v
	}

	// sum: all-null and empty chunks yield 0, not null
	assert.Equal(t, 0.0, run("sum", "x", all))
	assert.Equal(t, int64(0), run("sum", "y", empty))
	// mean/min/max: no observations yield null
	assert.Nil(t, run("mean", "x", all))
	assert.Nil(t, run("min", "x", all))
	assert.Nil(t, run("max", "y", empty))
	// var/sd: fewer than two observations yield null
	assert.Nil(t, run("var", "y", all))
	assert.Nil(t, run("sd", "x", all))
	// first/last: empty chunk yields null, null row stays null
	assert.Nil(t, run("first", "y", empty))
	assert.Equal(t, int64(7), run("first", "y", all))
	assert.Nil(t, run("last", "y", all))
	// n_distinct ignores nulls and duplicates
	assert.Equal(t, int64(1), run("n_distinct", "y", table.ChunkIndex{0, 0, 1}))
}

func TestChunkProcessor_ParallelPreservesGroupOrder(t *testing.T) {
	// Many uneven groups so concurrent completion order differs from group
	// order.
	const rows = 1000
	values := make([]int64, rows)
	for i := range values {
		values[i] = int64(i)
	}
	tbl, err := table.New("big", table.FromInts("v", values, nil))
	require.NoError(t, err)
	resolver := accel.NewTableResolver(tbl)

	var chunks []table.ChunkIndex
	for start := 0; start < rows; {
		size := 1 + (start*7)%23
		end := start + size
		if end > rows {
			end = rows
		}
		chunk := make(table.ChunkIndex, 0, end-start)
		for i := start; i < end; i++ {
			chunk = append(chunk, i)
		}
		chunks = append(chunks, chunk)
		start = end
	}
	g := table.NewGrouping(nil, nil, chunks)

	sequential, ok := accel.GetHandler(callOf("sum", sym("v")), resolver)
	require.True(t, ok)
	parallel, ok := accel.GetHandler(callOf("sum", sym("v")), resolver)
	require.True(t, ok)

	pr, isParallel := parallel.(accel.ParallelResult)
	require.True(t, isParallel)
	pr.SetMaxParallel(8)

	seqCol, err := sequential.ProcessGrouped(g)
	require.NoError(t, err)
	parCol, err := parallel.ProcessGrouped(g)
	require.NoError(t, err)

	extract := func(col *table.Column) []int64 {
		out := make([]int64, col.Len())
		for i := range out {
			out[i] = col.Int(i)
		}
		return out
	}
	if diff := cmp.Diff(extract(seqCol), extract(parCol)); diff != "" {
		t.Errorf("parallel grouped output diverged from sequential (-want +got):\n%s", diff)
	}
}

func TestProcessTable_LengthMismatchIsFatal(t *testing.T) {
	_, resolver := flightsTable(t)

	result, ok := accel.GetHandler(callOf("sum", sym("flights")), resolver)
	require.True(t, ok)

	other, err := table.New("other", table.FromInts("flights", []int64{1, 2}, nil))
	require.NoError(t, err)

	_, err = result.ProcessTable(other)
	require.Error(t, err)

	var mismatch *accel.MismatchError
	require.True(t, errors.As(err, &mismatch), "expected *MismatchError, got %v", err)
	assert.Equal(t, "sum", mismatch.Op)
}

// gapResult has no chunk-level path.
type gapResult struct {
	accel.Unchunked
}

func (gapResult) ProcessGrouped(*table.Grouping) (*table.Column, error) {
	return table.FromInts("gap", nil, nil), nil
}

func (gapResult) ProcessTable(*table.Table) (interface{}, error) { return nil, nil }

func TestUnchunked_DeclinesChunkPath(t *testing.T) {
	var r accel.Result = gapResult{}
	_, ok := r.ProcessChunk(table.ChunkIndex{0})
	assert.False(t, ok, "Unchunked results must report no chunk path")
}

func TestCustomHandlerRegistration(t *testing.T) {
	tbl, _, resolver := aggregateTable(t)
	g, err := table.GroupTable(tbl, "carrier")
	require.NoError(t, err)

	reg := accel.NewRegistry()
	// range(x) = max - min over a float column
	reg.Register("range", func(call *expr.Call, res accel.Resolver, argCount int) (accel.Result, bool) {
		if argCount != 1 {
			return nil, false
		}
		sym, ok := call.Args[0].(*expr.Symbol)
		if !ok {
			return nil, false
		}
		col, ok := res.Resolve(sym.Name)
		if !ok || col.Kind() != table.KindFloat {
			return nil, false
		}
		p := accel.NewChunkProcessor("range", table.FromFloats, func(ix table.ChunkIndex) (float64, bool) {
			var lo, hi float64
			found := false
			for i := 0; i < ix.Len(); i++ {
				row := ix.At(i)
				if col.IsNull(row) {
					continue
				}
				v := col.Float(row)
				if !found {
					lo, hi = v, v
					found = true
					continue
				}
				if v < lo {
					lo = v
				}
				if v > hi {
					hi = v
				}
			}
			return hi - lo, !found
		})
		return p, true
	})

	result, ok := reg.GetHandler(callOf("range", sym("delay")), resolver)
	require.True(t, ok)

	col, err := result.ProcessGrouped(g)
	require.NoError(t, err)
	require.Equal(t, 3, col.Len())
	assert.InDelta(t, 0.0, col.Float(0), 1e-9)       // AA: only 4.5 observed
	assert.InDelta(t, 31.5-2.25, col.Float(1), 1e-9) // UA
	assert.InDelta(t, 0.0, col.Float(2), 1e-9)       // DL: single value
}

func TestProcessChunk_WrapsScalar(t *testing.T) {
	_, g, resolver := aggregateTable(t)

	result, ok := accel.GetHandler(callOf("mean", sym("delay")), resolver)
	require.True(t, ok)

	v, ok := result.ProcessChunk(g.Chunk(1))
	require.True(t, ok)
	assert.InDelta(t, (31.5+2.25+9.75)/3, v.(float64), 1e-9)
}

func ExampleGetHandler() {
	tbl, _ := table.New("flights", table.FromInts("flights", []int64{10, 20, 30}, nil))
	resolver := accel.NewTableResolver(tbl)
	g := table.NewGrouping(nil, nil, []table.ChunkIndex{{0, 1}, {2}})

	call := &expr.Call{Func: &expr.Symbol{Name: "sum"}, Args: []expr.Node{&expr.Symbol{Name: "flights"}}}
	result, _ := accel.GetHandler(call, resolver)
	col, _ := result.ProcessGrouped(g)

	fmt.Println(col.Int(0), col.Int(1))
	// Output: 30 30
}
