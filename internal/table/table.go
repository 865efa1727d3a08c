package table

import "fmt"

// Table is a named collection of equal-length columns. Tables are built once
// and treated as read-only during evaluation.
type Table struct {
	name    string
	columns []*Column
	byName  map[string]*Column
	numRows int
}

// New builds a table from columns, which must all have the same length.
// Duplicate column names are rejected.
func New(name string, columns ...*Column) (*Table, error) {
	t := &Table{
		name:    name,
		columns: columns,
		byName:  make(map[string]*Column, len(columns)),
	}
	for i, col := range columns {
		if _, exists := t.byName[col.Name()]; exists {
			return nil, fmt.Errorf("table %s: duplicate column %q", name, col.Name())
		}
		if i == 0 {
			t.numRows = col.Len()
		} else if col.Len() != t.numRows {
			return nil, fmt.Errorf("table %s: column %q has %d rows, expected %d",
				name, col.Name(), col.Len(), t.numRows)
		}
		t.byName[col.Name()] = col
	}
	return t, nil
}

// Name returns the table name.
func (t *Table) Name() string { return t.name }

// NumRows returns the row count.
func (t *Table) NumRows() int { return t.numRows }

// Column looks up a column by name.
func (t *Table) Column(name string) (*Column, bool) {
	col, ok := t.byName[name]
	return col, ok
}

// ColumnNames returns the column names in declaration order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.columns))
	for i, col := range t.columns {
		names[i] = col.Name()
	}
	return names
}

// Columns returns the columns in declaration order.
func (t *Table) Columns() []*Column { return t.columns }
