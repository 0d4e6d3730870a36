package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"AstroPull/internal/domain/models"
)

type fakeSource struct {
	mu      sync.Mutex
	rows    []models.RawFill
	err     error
	block   bool
	calls   int
	lastArg string
}

func (f *fakeSource) Venue() string { return models.VenueHyperliquid }

func (f *fakeSource) UserFills(ctx context.Context, address string) ([]models.RawFill, error) {
	f.mu.Lock()
	f.calls++
	f.lastArg = address
	rows, err, block := f.rows, f.err, f.block
	f.mu.Unlock()
	if block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return rows, err
}

func (f *fakeSource) Close() error { return nil }

type fakeMetrics struct {
	mu      sync.Mutex
	errors  map[string]int
	fetches int
	enrichs int
	lookups map[string]int
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{errors: map[string]int{}, lookups: map[string]int{}}
}

func (m *fakeMetrics) RecordFetch(string, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetches++
}

func (m *fakeMetrics) RecordEnrich(int, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enrichs++
}

func (m *fakeMetrics) RecordError(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[kind]++
}

func (m *fakeMetrics) RecordLatency(string, float64) {}

func (m *fakeMetrics) RecordPriceLookup(result string) {
	m.mu.Lock()
	m.lookups[result]++
	m.mu.Unlock()
}

func (m *fakeMetrics) lookup(result string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lookups[result]
}

type fakePublisher struct {
	mu     sync.Mutex
	events []models.SessionEvent
	err    error
}

func (p *fakePublisher) Publish(_ context.Context, e *models.SessionEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, *e)
	return nil
}

func (p *fakePublisher) Close() error { return nil }

type fakePrices struct {
	mu    sync.Mutex
	calls int
	usd   float64
	err   error
	gate  chan struct{}
}

func (f *fakePrices) HistoricalUSD(ctx context.Context, coinID string, day time.Time) (float64, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.gate != nil {
		<-f.gate
	}
	if f.err != nil {
		return 0, f.err
	}
	if coinID == "" || day.IsZero() {
		return 0, errors.New("bad args")
	}
	return f.usd, nil
}

func (f *fakePrices) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}
