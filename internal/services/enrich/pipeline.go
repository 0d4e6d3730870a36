// Package enrich turns raw venue fills into astro-tagged fills.
package enrich

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"AstroPull/internal/domain/models"
	"AstroPull/internal/services/astro"
	"AstroPull/internal/services/epoch"

	"github.com/shopspring/decimal"
)

// Pipeline maps field names, normalizes timestamps, classifies dates and
// coerces P&L. It is stateless and safe for concurrent use.
type Pipeline struct {
	aliases Aliases
	venue   string
}

// Option configures Pipeline.
type Option func(*Pipeline)

// WithAliases replaces the accepted field names.
func WithAliases(a Aliases) Option {
	return func(p *Pipeline) {
		if len(a) > 0 {
			p.aliases = a
		}
	}
}

// WithVenue sets the venue label stamped on rows that carry none.
func WithVenue(v string) Option {
	return func(p *Pipeline) {
		if v != "" {
			p.venue = v
		}
	}
}

// New creates a Pipeline with the default aliases.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{aliases: DefaultAliases(), venue: models.VenueHyperliquid}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Result is the enriched sequence plus what the normalizer decided.
type Result struct {
	Fills []models.EnrichedFill
	Unit  epoch.Unit
	// Mapping is canonical name -> venue field name actually used.
	Mapping map[string]string
}

// Enrich processes every row; no row is skipped. Empty input is not an error.
// It fails with models.ErrSchema when no row has a timestamp field.
func (p *Pipeline) Enrich(rows []models.RawFill) (*Result, error) {
	if len(rows) == 0 {
		return &Result{Fills: []models.EnrichedFill{}, Unit: epoch.Seconds, Mapping: map[string]string{}}, nil
	}

	columns := make(map[string]struct{})
	for _, r := range rows {
		for k := range r {
			columns[k] = struct{}{}
		}
	}
	mapping := p.aliases.resolve(columns)
	tsField, ok := mapping[FieldTimestamp]
	if !ok {
		return nil, fmt.Errorf("%w: accepted %s, got [%s]", models.ErrSchema,
			strings.Join(p.aliases[FieldTimestamp], "|"), strings.Join(columnNames(columns), ", "))
	}

	fills := make([]models.Fill, len(rows))
	raw := make([]any, len(rows))
	for i, r := range rows {
		fills[i] = p.mapRow(r, mapping)
		raw[i] = r[tsField]
	}

	col := epoch.Normalize(raw)
	out := make([]models.EnrichedFill, len(rows))
	for i, f := range fills {
		e := models.EnrichedFill{Fill: f, PnLValue: CoercePnL(f.PnL)}
		if t := col.Times[i]; t != nil {
			d := truncateDay(*t)
			e.Date = &d
			e.Sun = astro.SunSign(d)
			e.Moon = astro.MoonPhase(d)
		}
		out[i] = e
	}
	return &Result{Fills: out, Unit: col.Unit, Mapping: mapping}, nil
}

func (p *Pipeline) mapRow(r models.RawFill, mapping map[string]string) models.Fill {
	f := models.Fill{Venue: p.venue}
	if k, ok := mapping[FieldAsset]; ok {
		if s, ok := r[k].(string); ok {
			f.Asset = s
		} else if r[k] != nil {
			f.Asset = fmt.Sprint(r[k])
		}
	}
	if k, ok := mapping[FieldPnL]; ok {
		f.PnL = r[k]
	}
	if k, ok := mapping[FieldTimestamp]; ok {
		f.Timestamp = r[k]
	}
	if v, ok := r[FieldVenue].(string); ok && v != "" {
		f.Venue = v
	}
	return f
}

// CoercePnL converts a raw P&L value to a float. Missing, empty,
// unparseable or out of float64 range values become 0.
func CoercePnL(v any) float64 {
	d, ok := ParseDecimal(v)
	if !ok {
		return 0
	}
	f := d.InexactFloat64()
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// ParseDecimal reads a raw numeric value exactly where possible.
func ParseDecimal(v any) (decimal.Decimal, bool) {
	switch n := v.(type) {
	case nil:
		return decimal.Zero, false
	case decimal.Decimal:
		return n, true
	case json.Number:
		return parseDecimalString(n.String())
	case string:
		return parseDecimalString(n)
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return decimal.Zero, false
		}
		return decimal.NewFromFloat(n), true
	case float32:
		return ParseDecimal(float64(n))
	case int:
		return decimal.NewFromInt(int64(n)), true
	case int64:
		return decimal.NewFromInt(n), true
	case int32:
		return decimal.NewFromInt32(n), true
	default:
		return decimal.Zero, false
	}
}

func parseDecimalString(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
