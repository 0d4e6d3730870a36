package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"AstroPull/internal/domain/models"
	"AstroPull/internal/services/enrich"
	"AstroPull/internal/services/pivot"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const account = "0x2cf4F9f08AD241B42426107D21Bbf9CBB9E8De90"

func exampleRows() []models.RawFill {
	return []models.RawFill{{
		"coin":      "BTC",
		"closedPnl": "120.5",
		"time":      json.Number("1634040000000"),
		"venue":     models.VenueHyperliquid,
	}}
}

func newDashboard(src *fakeSource, pub *fakePublisher, m *fakeMetrics, cfg DashboardConfig) *Dashboard {
	if cfg.Address == "" {
		cfg.Address = account
	}
	return NewDashboard(src, enrich.New(), pub, m, nil, cfg)
}

func TestFetchThenEnrichExample(t *testing.T) {
	src := &fakeSource{rows: exampleRows()}
	pub := &fakePublisher{}
	m := newFakeMetrics()
	d := newDashboard(src, pub, m, DashboardConfig{})
	s := models.NewSession("s1")
	ctx := context.Background()

	fr, err := d.Fetch(ctx, s, "")
	require.NoError(t, err)
	assert.Equal(t, 1, fr.Fills)
	assert.Equal(t, account, src.lastArg)
	assert.Equal(t, models.StateFetched, s.State())

	er, err := d.Enrich(ctx, s, pivot.Options{})
	require.NoError(t, err)
	assert.Equal(t, models.StateEnriched, s.State())
	assert.Equal(t, []string{"First Quarter"}, er.Pivot.Rows)
	assert.Equal(t, []string{"Libra"}, er.Pivot.Cols)
	assert.Equal(t, 120.5, er.Pivot.Cell("First Quarter", "Libra"))
	assert.Equal(t, "time", er.Mapping["timestamp"])

	require.Len(t, pub.events, 2)
	assert.Equal(t, models.EventFetched, pub.events[0].Type)
	assert.Equal(t, models.EventEnriched, pub.events[1].Type)
	assert.Equal(t, 120.5, pub.events[1].Total)
	assert.Equal(t, 1, m.fetches)
	assert.Equal(t, 1, m.enrichs)
}

func TestEnrichBeforeFetchPrompts(t *testing.T) {
	d := newDashboard(&fakeSource{}, &fakePublisher{}, newFakeMetrics(), DashboardConfig{})
	s := models.NewSession("s1")

	_, err := d.Enrich(context.Background(), s, pivot.Options{})
	assert.ErrorIs(t, err, models.ErrNotFetched)
	assert.Equal(t, models.StateIdle, s.State())
	assert.NoError(t, s.LastError())
}

func TestFetchFailureKeepsState(t *testing.T) {
	src := &fakeSource{rows: exampleRows()}
	m := newFakeMetrics()
	d := newDashboard(src, &fakePublisher{}, m, DashboardConfig{})
	s := models.NewSession("s1")
	ctx := context.Background()

	_, err := d.Fetch(ctx, s, "")
	require.NoError(t, err)

	src.err = errors.New("connection refused")
	_, err = d.Fetch(ctx, s, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrFetch)
	assert.Contains(t, err.Error(), "connection refused")

	assert.Equal(t, models.StateFetched, s.State())
	assert.Equal(t, 1, s.Snapshot().Fills)
	assert.Error(t, s.LastError())
	assert.Equal(t, 1, m.errors["fetch"])
}

func TestFetchTimeout(t *testing.T) {
	src := &fakeSource{block: true}
	d := newDashboard(src, &fakePublisher{}, newFakeMetrics(), DashboardConfig{FetchTimeout: 20 * time.Millisecond})
	s := models.NewSession("s1")

	_, err := d.Fetch(context.Background(), s, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrFetch)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, models.StateIdle, s.State())
}

func TestSchemaFailureLeavesSessionUntouched(t *testing.T) {
	src := &fakeSource{rows: []models.RawFill{{"coin": "BTC", "closedPnl": "1"}}}
	m := newFakeMetrics()
	d := newDashboard(src, &fakePublisher{}, m, DashboardConfig{})
	s := models.NewSession("s1")
	ctx := context.Background()

	_, err := d.Fetch(ctx, s, "")
	require.NoError(t, err)

	_, err = d.Enrich(ctx, s, pivot.Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrSchema)
	assert.Equal(t, models.StateFetched, s.State())
	assert.Nil(t, s.Pivot())
	assert.Equal(t, 1, m.errors["schema"])
}

func TestEnrichEmptyFills(t *testing.T) {
	d := newDashboard(&fakeSource{rows: []models.RawFill{}}, &fakePublisher{}, newFakeMetrics(), DashboardConfig{})
	s := models.NewSession("s1")
	ctx := context.Background()

	_, err := d.Fetch(ctx, s, "")
	require.NoError(t, err)
	er, err := d.Enrich(ctx, s, pivot.Options{})
	require.NoError(t, err)
	assert.True(t, er.Pivot.Empty())
	assert.Equal(t, models.StateEnriched, s.State())
}

func TestEnrichAllLabelsFromConfig(t *testing.T) {
	d := newDashboard(&fakeSource{rows: exampleRows()}, &fakePublisher{}, newFakeMetrics(), DashboardConfig{AllLabels: true})
	s := models.NewSession("s1")
	ctx := context.Background()

	_, err := d.Fetch(ctx, s, "")
	require.NoError(t, err)
	er, err := d.Enrich(ctx, s, pivot.Options{})
	require.NoError(t, err)
	assert.Len(t, er.Pivot.Rows, 8)
	assert.Len(t, er.Pivot.Cols, 12)
	assert.Equal(t, 120.5, er.Pivot.Total)
}

func TestPublishFailureDoesNotFailAction(t *testing.T) {
	m := newFakeMetrics()
	d := newDashboard(&fakeSource{rows: exampleRows()}, &fakePublisher{err: errors.New("broker down")}, m, DashboardConfig{})
	s := models.NewSession("s1")

	_, err := d.Fetch(context.Background(), s, "")
	require.NoError(t, err)
	assert.Equal(t, models.StateFetched, s.State())
	assert.Equal(t, 1, m.errors["publish"])
}

func TestStaleEnrichmentIsNotRecorded(t *testing.T) {
	pub := &fakePublisher{}
	m := newFakeMetrics()
	d := newDashboard(&fakeSource{rows: exampleRows()}, pub, m, DashboardConfig{})
	s := models.NewSession("s1")
	ctx := context.Background()

	_, err := d.Fetch(ctx, s, "")
	require.NoError(t, err)

	// a second fetch lands between the pipeline run and the store
	calls := 0
	d.now = func() time.Time {
		calls++
		if calls == 2 {
			s.Fetched(account, exampleRows(), time.Now())
		}
		return time.Now()
	}

	er, err := d.Enrich(ctx, s, pivot.Options{})
	require.NoError(t, err)
	require.NotNil(t, er.Pivot)
	assert.Equal(t, models.StateFetched, s.State())
	assert.Nil(t, s.Pivot())
	assert.Equal(t, 0, m.enrichs)
	require.Len(t, pub.events, 1)
	assert.Equal(t, models.EventFetched, pub.events[0].Type)
}
