package pivot

import (
	"math"
	"math/big"
	"strings"

	"AstroPull/internal/domain/models"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// FormatCell renders a value with two decimals and thousands separators.
// Non-finite values render as 0.
func FormatCell(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		v = 0
	}
	d := decimal.NewFromFloat(v).Round(2)
	whole, frac, _ := strings.Cut(d.Abs().StringFixed(2), ".")
	n, _ := new(big.Int).SetString(whole, 10)
	out := humanize.BigComma(n) + "." + frac
	if d.IsNegative() {
		out = "-" + out
	}
	return out
}

// Formatted is the display form of a pivot.
type Formatted struct {
	Rows      []string   `json:"rows"`
	Cols      []string   `json:"cols"`
	Cells     [][]string `json:"cells"`
	RowTotals []string   `json:"row_totals"`
	ColTotals []string   `json:"col_totals"`
	Total     string     `json:"total"`
}

// Format converts every number of p with FormatCell.
func Format(p *models.Pivot) Formatted {
	if p == nil {
		return Formatted{Rows: []string{}, Cols: []string{}, Cells: [][]string{}, Total: FormatCell(0)}
	}
	f := Formatted{
		Rows:      p.Rows,
		Cols:      p.Cols,
		Cells:     make([][]string, len(p.Cells)),
		RowTotals: formatAll(p.RowTotals),
		ColTotals: formatAll(p.ColTotals),
		Total:     FormatCell(p.Total),
	}
	for i, row := range p.Cells {
		f.Cells[i] = formatAll(row)
	}
	return f
}

func formatAll(vs []float64) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = FormatCell(v)
	}
	return out
}
