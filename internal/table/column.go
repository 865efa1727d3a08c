package table

import "fmt"

// Kind identifies the element type of a column
type Kind string

const (
	KindInt    Kind = "INT"
	KindFloat  Kind = "FLOAT"
	KindString Kind = "STRING"
	KindBool   Kind = "BOOL"
)

// Column is an immutable, type-tagged homogeneous sequence of values with a
// null mask. Exactly one of the value slices is populated, chosen by Kind.
// Columns are never mutated after construction; evaluation code holds
// non-owning references for the duration of one pass.
type Column struct {
	name   string
	kind   Kind
	ints   []int64
	floats []float64
	strs   []string
	bools  []bool
	nulls  []bool // nil when the column has no nulls
}

// FromInts builds an integer column. nulls may be nil.
func FromInts(name string, values []int64, nulls []bool) *Column {
	return &Column{name: name, kind: KindInt, ints: values, nulls: nulls}
}

// FromFloats builds a float column. nulls may be nil.
func FromFloats(name string, values []float64, nulls []bool) *Column {
	return &Column{name: name, kind: KindFloat, floats: values, nulls: nulls}
}

// FromStrings builds a string column. nulls may be nil.
func FromStrings(name string, values []string, nulls []bool) *Column {
	return &Column{name: name, kind: KindString, strs: values, nulls: nulls}
}

// FromBools builds a boolean column. nulls may be nil.
func FromBools(name string, values []bool, nulls []bool) *Column {
	return &Column{name: name, kind: KindBool, bools: values, nulls: nulls}
}

// FromValues builds a column from boxed scalars, inferring the kind from the
// non-null values. All numeric values are accepted together: if any value is
// a float the column is FLOAT, otherwise INT. A nil scalar marks a null.
// An all-null sequence becomes a FLOAT column of nulls.
func FromValues(name string, values []interface{}) (*Column, error) {
	kind := Kind("")
	for _, v := range values {
		switch v.(type) {
		case nil:
			continue
		case int64:
			if kind == "" {
				kind = KindInt
			} else if kind != KindInt && kind != KindFloat {
				return nil, fmt.Errorf("column %s: mixed value types", name)
			}
		case float64:
			if kind == "" || kind == KindInt {
				kind = KindFloat
			} else if kind != KindFloat {
				return nil, fmt.Errorf("column %s: mixed value types", name)
			}
		case string:
			if kind == "" {
				kind = KindString
			} else if kind != KindString {
				return nil, fmt.Errorf("column %s: mixed value types", name)
			}
		case bool:
			if kind == "" {
				kind = KindBool
			} else if kind != KindBool {
				return nil, fmt.Errorf("column %s: mixed value types", name)
			}
		default:
			return nil, fmt.Errorf("column %s: unsupported value type %T", name, v)
		}
	}
	if kind == "" {
		kind = KindFloat
	}

	nulls := make([]bool, len(values))
	switch kind {
	case KindInt:
		out := make([]int64, len(values))
		for i, v := range values {
			if v == nil {
				nulls[i] = true
				continue
			}
			out[i] = v.(int64)
		}
		return FromInts(name, out, nulls), nil
	case KindFloat:
		out := make([]float64, len(values))
		for i, v := range values {
			switch x := v.(type) {
			case nil:
				nulls[i] = true
			case int64:
				out[i] = float64(x)
			case float64:
				out[i] = x
			}
		}
		return FromFloats(name, out, nulls), nil
	case KindString:
		out := make([]string, len(values))
		for i, v := range values {
			if v == nil {
				nulls[i] = true
				continue
			}
			out[i] = v.(string)
		}
		return FromStrings(name, out, nulls), nil
	default:
		out := make([]bool, len(values))
		for i, v := range values {
			if v == nil {
				nulls[i] = true
				continue
			}
			out[i] = v.(bool)
		}
		return FromBools(name, out, nulls), nil
	}
}

// Name returns the column name.
func (c *Column) Name() string { return c.name }

// Kind returns the element type tag.
func (c *Column) Kind() Kind { return c.kind }

// Len returns the number of rows.
func (c *Column) Len() int {
	switch c.kind {
	case KindInt:
		return len(c.ints)
	case KindFloat:
		return len(c.floats)
	case KindString:
		return len(c.strs)
	default:
		return len(c.bools)
	}
}

// IsNull reports whether row i holds a null.
func (c *Column) IsNull(i int) bool {
	return c.nulls != nil && c.nulls[i]
}

// Int returns the integer value at row i. The column must be KindInt.
func (c *Column) Int(i int) int64 { return c.ints[i] }

// Float returns the float value at row i. The column must be KindFloat.
func (c *Column) Float(i int) float64 { return c.floats[i] }

// String returns the string value at row i. The column must be KindString.
func (c *Column) String(i int) string { return c.strs[i] }

// Bool returns the boolean value at row i. The column must be KindBool.
func (c *Column) Bool(i int) bool { return c.bools[i] }

// Number returns row i widened to float64, for KindInt and KindFloat columns.
func (c *Column) Number(i int) float64 {
	if c.kind == KindInt {
		return float64(c.ints[i])
	}
	return c.floats[i]
}

// Value returns row i as a boxed scalar, nil for null.
func (c *Column) Value(i int) interface{} {
	if c.IsNull(i) {
		return nil
	}
	switch c.kind {
	case KindInt:
		return c.ints[i]
	case KindFloat:
		return c.floats[i]
	case KindString:
		return c.strs[i]
	default:
		return c.bools[i]
	}
}

// IsNumeric reports whether the column holds INT or FLOAT values.
func (c *Column) IsNumeric() bool {
	return c.kind == KindInt || c.kind == KindFloat
}
