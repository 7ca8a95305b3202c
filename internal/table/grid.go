// Package table decodes heterogeneous table encodings (HTML with
// colspan/rowspan, markdown pipe tables) into rectangular grids, scores a
// grid's likelihood of being an invoice line-item table, and converts a grid
// plus a header map into line items.
package table

// Grid is a rectangular cell matrix. After normalization every row holds
// exactly MaxColumns cells, padded with empty strings.
type Grid struct {
	Rows       [][]string
	MaxColumns int
}

// Header returns the first row, or nil for an empty grid.
func (g *Grid) Header() []string {
	if g == nil || len(g.Rows) == 0 {
		return nil
	}
	return g.Rows[0]
}

// DataRows returns everything after the header row.
func (g *Grid) DataRows() [][]string {
	if g == nil || len(g.Rows) < 2 {
		return nil
	}
	return g.Rows[1:]
}

// normalize pads every row out to the widest row.
func (g *Grid) normalize() {
	for _, r := range g.Rows {
		if len(r) > g.MaxColumns {
			g.MaxColumns = len(r)
		}
	}
	for i, r := range g.Rows {
		for len(r) < g.MaxColumns {
			r = append(r, "")
		}
		g.Rows[i] = r
	}
}
