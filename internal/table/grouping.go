package table

import "fmt"

// GroupKey holds the key-column values identifying one group.
type GroupKey map[string]interface{}

// Grouping is an ordered partition of a table's rows: one ChunkIndex per
// group, in group order, plus the key values each group was formed on.
// Constructed before evaluation and read-only afterwards.
type Grouping struct {
	keys   []string
	labels []GroupKey
	chunks []ChunkIndex
}

// NewGrouping builds a grouping directly from chunks, one label per chunk.
// labels may be nil when group identities are not needed (tests, synthetic
// partitions).
func NewGrouping(keys []string, labels []GroupKey, chunks []ChunkIndex) *Grouping {
	return &Grouping{keys: keys, labels: labels, chunks: chunks}
}

// NumGroups returns the number of groups.
func (g *Grouping) NumGroups() int { return len(g.chunks) }

// Chunk returns the ChunkIndex for group i.
func (g *Grouping) Chunk(i int) ChunkIndex { return g.chunks[i] }

// Chunks returns all chunks in group order.
func (g *Grouping) Chunks() []ChunkIndex { return g.chunks }

// Keys returns the names of the grouping columns.
func (g *Grouping) Keys() []string { return g.keys }

// Label returns the key values for group i, or nil when the grouping carries
// no labels.
func (g *Grouping) Label(i int) GroupKey {
	if g.labels == nil {
		return nil
	}
	return g.labels[i]
}

// GroupTable partitions a table by the given key columns. Groups appear in
// order of first appearance of each distinct key combination, matching the
// row order of the table. Null key values group together under nil.
func GroupTable(t *Table, by ...string) (*Grouping, error) {
	if len(by) == 0 {
		return nil, fmt.Errorf("grouping requires at least one key column")
	}

	keyCols := make([]*Column, len(by))
	for i, name := range by {
		col, ok := t.Column(name)
		if !ok {
			return nil, fmt.Errorf("grouping column %q not found in table %s", name, t.Name())
		}
		keyCols[i] = col
	}

	g := &Grouping{keys: by}
	seen := make(map[string]int) // composite key -> group position

	for row := 0; row < t.NumRows(); row++ {
		composite := ""
		for _, col := range keyCols {
			if col.IsNull(row) {
				composite += "\x00~null~"
			} else {
				composite += fmt.Sprintf("\x00%v", col.Value(row))
			}
		}

		pos, ok := seen[composite]
		if !ok {
			pos = len(g.chunks)
			seen[composite] = pos
			label := make(GroupKey, len(by))
			for i, col := range keyCols {
				label[by[i]] = col.Value(row)
			}
			g.labels = append(g.labels, label)
			g.chunks = append(g.chunks, ChunkIndex{})
		}
		g.chunks[pos] = append(g.chunks[pos], row)
	}

	return g, nil
}
