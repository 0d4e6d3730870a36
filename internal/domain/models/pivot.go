package models

// Pivot is the moon phase × sun sign cross-tabulation of summed P&L.
// Cells[i][j] is the sum for (Rows[i], Cols[j]); absent pairs are 0.
type Pivot struct {
	Rows      []string    `json:"rows"`
	Cols      []string    `json:"cols"`
	Cells     [][]float64 `json:"cells"`
	RowTotals []float64   `json:"row_totals"`
	ColTotals []float64   `json:"col_totals"`
	Total     float64     `json:"total"`
	Fills     int         `json:"fills"`
	Undated   int         `json:"undated"`
}

// Empty reports whether the pivot has no cells.
func (p *Pivot) Empty() bool { return p == nil || len(p.Rows) == 0 || len(p.Cols) == 0 }

// Cell returns the value for (moon, sun), 0 when either label is absent.
func (p *Pivot) Cell(moon, sun string) float64 {
	if p == nil {
		return 0
	}
	for i, r := range p.Rows {
		if r != moon {
			continue
		}
		for j, c := range p.Cols {
			if c == sun {
				return p.Cells[i][j]
			}
		}
	}
	return 0
}
