package repository

import (
	"context"
	"time"

	"AstroPull/internal/domain/models"
)

// FillSource pulls a trader's fill history from a venue.
type FillSource interface {
	Venue() string
	UserFills(ctx context.Context, address string) ([]models.RawFill, error)
	Close() error
}

// PriceSource returns a historical USD price for a coin on a calendar day.
type PriceSource interface {
	HistoricalUSD(ctx context.Context, coinID string, day time.Time) (float64, error)
}

// EventPublisher emits session lifecycle events.
type EventPublisher interface {
	Publish(ctx context.Context, e *models.SessionEvent) error
	Close() error
}

type Metrics interface {
	RecordFetch(venue string, fills int)
	RecordEnrich(fills, undated int)
	RecordError(kind string)
	RecordPriceLookup(result string)
	RecordLatency(op string, seconds float64)
}
