// Package pivot cross-tabulates enriched fills by moon phase and sun sign.
package pivot

import (
	"math"

	"AstroPull/internal/domain/models"
	"AstroPull/internal/services/astro"

	"github.com/shopspring/decimal"
)

// Options controls which labels appear in the table.
type Options struct {
	// AllLabels materializes the full 8x12 grid instead of only the labels
	// that occur in the fills.
	AllLabels bool
}

type key struct{ moon, sun string }

// Build sums P&L per (moon, sun) pair. Rows follow moon cycle order and
// columns follow sign order; absent pairs are 0. Fills without a date are
// counted in Undated and left out of the cells.
func Build(fills []models.EnrichedFill, opts Options) *models.Pivot {
	sums := make(map[key]decimal.Decimal)
	moons := make(map[string]bool)
	suns := make(map[string]bool)
	p := &models.Pivot{Fills: len(fills)}

	for _, f := range fills {
		if !f.HasDate() || f.Moon == "" || f.Sun == "" {
			p.Undated++
			continue
		}
		k := key{f.Moon, f.Sun}
		// non-finite P&L counts as 0
		if !math.IsNaN(f.PnLValue) && !math.IsInf(f.PnLValue, 0) {
			sums[k] = sums[k].Add(decimal.NewFromFloat(f.PnLValue))
		}
		moons[f.Moon] = true
		suns[f.Sun] = true
	}

	p.Rows = ordered(astro.MoonPhases(), moons, opts.AllLabels)
	p.Cols = ordered(astro.SunSigns(), suns, opts.AllLabels)
	p.Cells = make([][]float64, len(p.Rows))
	p.RowTotals = make([]float64, len(p.Rows))
	p.ColTotals = make([]float64, len(p.Cols))

	colSums := make([]decimal.Decimal, len(p.Cols))
	total := decimal.Zero
	for i, moon := range p.Rows {
		p.Cells[i] = make([]float64, len(p.Cols))
		rowSum := decimal.Zero
		for j, sun := range p.Cols {
			v := sums[key{moon, sun}]
			p.Cells[i][j] = toFloat(v)
			rowSum = rowSum.Add(v)
			colSums[j] = colSums[j].Add(v)
		}
		p.RowTotals[i] = toFloat(rowSum)
		total = total.Add(rowSum)
	}
	for j, v := range colSums {
		p.ColTotals[j] = toFloat(v)
	}
	p.Total = toFloat(total)
	return p
}

// toFloat saturates sums beyond float64 range at the largest finite value.
func toFloat(d decimal.Decimal) float64 {
	f := d.InexactFloat64()
	if math.IsInf(f, 1) {
		return math.MaxFloat64
	}
	if math.IsInf(f, -1) {
		return -math.MaxFloat64
	}
	return f
}

func ordered(all []string, present map[string]bool, includeAll bool) []string {
	out := make([]string, 0, len(all))
	for _, l := range all {
		if includeAll || present[l] {
			out = append(out, l)
		}
	}
	return out
}
