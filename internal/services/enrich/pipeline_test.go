package enrich

import (
	"encoding/json"
	"errors"
	"testing"

	"AstroPull/internal/domain/models"
	"AstroPull/internal/services/astro"
	"AstroPull/internal/services/epoch"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnrichExample(t *testing.T) {
	rows := []models.RawFill{
		{"coin": "BTC", "timestamp": json.Number("1634040000"), "closedPnl": "120.5"},
		{"coin": "ETH", "timestamp": json.Number("1634040000"), "closedPnl": nil},
	}

	res, err := New().Enrich(rows)
	require.NoError(t, err)
	require.Len(t, res.Fills, 2)
	assert.Equal(t, epoch.Seconds, res.Unit)
	assert.Equal(t, "closedPnl", res.Mapping[FieldPnL])
	assert.Equal(t, "coin", res.Mapping[FieldAsset])

	for _, f := range res.Fills {
		require.True(t, f.HasDate())
		assert.Equal(t, "2021-10-12", f.Date.Format("2006-01-02"))
		assert.Equal(t, astro.Libra, f.Sun)
		assert.Equal(t, astro.FirstQuarter, f.Moon)
		assert.Equal(t, models.VenueHyperliquid, f.Venue)
	}
	assert.Equal(t, "BTC", res.Fills[0].Asset)
	assert.Equal(t, 120.5, res.Fills[0].PnLValue)
	assert.Equal(t, 0.0, res.Fills[1].PnLValue)
}

func TestEnrichEmpty(t *testing.T) {
	res, err := New().Enrich(nil)
	require.NoError(t, err)
	assert.Empty(t, res.Fills)
}

func TestEnrichSchemaFailure(t *testing.T) {
	rows := []models.RawFill{{"coin": "BTC", "closedPnl": "1"}}
	res, err := New().Enrich(rows)
	assert.Nil(t, res)
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrSchema))
	assert.Contains(t, err.Error(), "closedPnl")
}

func TestEnrichVenueTimeField(t *testing.T) {
	// Hyperliquid reports "time" in milliseconds.
	rows := []models.RawFill{
		{"coin": "SOL", "time": json.Number("1634040000000"), "closedPnl": json.Number("-3.25")},
		{"coin": "SOL", "time": "not a time", "closedPnl": "abc"},
	}
	res, err := New().Enrich(rows)
	require.NoError(t, err)
	assert.Equal(t, epoch.Milliseconds, res.Unit)
	assert.Equal(t, "time", res.Mapping[FieldTimestamp])

	require.Len(t, res.Fills, 2)
	assert.Equal(t, -3.25, res.Fills[0].PnLValue)
	assert.Equal(t, astro.Libra, res.Fills[0].Sun)

	// the bad row stays, without a date or labels, with zero P&L
	assert.False(t, res.Fills[1].HasDate())
	assert.Empty(t, res.Fills[1].Sun)
	assert.Empty(t, res.Fills[1].Moon)
	assert.Equal(t, 0.0, res.Fills[1].PnLValue)
}

func TestEnrichPrefersCanonicalName(t *testing.T) {
	rows := []models.RawFill{
		{"asset": "BTC", "coin": "XBT", "timestamp": 1634040000, "pnl": 2.0, "closedPnl": "5"},
	}
	res, err := New().Enrich(rows)
	require.NoError(t, err)
	assert.Equal(t, "BTC", res.Fills[0].Asset)
	assert.Equal(t, 2.0, res.Fills[0].PnLValue)
}

func TestEnrichDoesNotMutateInput(t *testing.T) {
	rows := []models.RawFill{{"coin": "BTC", "time": json.Number("1634040000"), "closedPnl": "1"}}
	_, err := New().Enrich(rows)
	require.NoError(t, err)
	assert.Equal(t, models.RawFill{"coin": "BTC", "time": json.Number("1634040000"), "closedPnl": "1"}, rows[0])
}

func TestWithAliases(t *testing.T) {
	p := New(WithAliases(Aliases{FieldTimestamp: {"when"}, FieldPnL: {"profit"}}), WithVenue("Test"))
	res, err := p.Enrich([]models.RawFill{{"when": "1634040000", "profit": "7"}})
	require.NoError(t, err)
	assert.Equal(t, 7.0, res.Fills[0].PnLValue)
	assert.Equal(t, "Test", res.Fills[0].Venue)
}

func TestCoercePnL(t *testing.T) {
	cases := []struct {
		in   any
		want float64
	}{
		{"120.5", 120.5},
		{json.Number("-0.01"), -0.01},
		{nil, 0},
		{"", 0},
		{"n/a", 0},
		{true, 0},
		{int64(3), 3},
		{1.25, 1.25},
		{"1e400", 0},
		{json.Number("-1e400"), 0},
	}
	for _, tc := range cases {
		assert.Equalf(t, tc.want, CoercePnL(tc.in), "%#v", tc.in)
	}
}

func TestEnrichOutOfRangePnLIsZero(t *testing.T) {
	res, err := New().Enrich([]models.RawFill{
		{"coin": "BTC", "time": json.Number("1634040000"), "closedPnl": "1e400"},
	})
	require.NoError(t, err)
	require.Len(t, res.Fills, 1)
	assert.Zero(t, res.Fills[0].PnLValue)
	assert.True(t, res.Fills[0].HasDate())
}
