package enrich

import "sort"

// Canonical field names.
const (
	FieldAsset     = "asset"
	FieldPnL       = "pnl"
	FieldTimestamp = "timestamp"
	FieldVenue     = "venue"
)

// Aliases lists, per canonical field, the venue field names accepted for it in
// priority order. The canonical name itself should come first.
type Aliases map[string][]string

// DefaultAliases covers the field names venues are known to use.
func DefaultAliases() Aliases {
	return Aliases{
		FieldAsset:     {"asset", "coin", "symbol"},
		FieldPnL:       {"pnl", "closedPnl", "realizedPnl", "closed_pnl"},
		FieldTimestamp: {"timestamp", "time", "ts", "t"},
	}
}

// resolve picks, for each canonical field, the first alias present among the
// columns. Fields with no alias present are absent from the result.
func (a Aliases) resolve(columns map[string]struct{}) map[string]string {
	out := make(map[string]string, len(a))
	for canon, names := range a {
		for _, n := range names {
			if _, ok := columns[n]; ok {
				out[canon] = n
				break
			}
		}
	}
	return out
}

func columnNames(columns map[string]struct{}) []string {
	names := make([]string, 0, len(columns))
	for n := range columns {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
