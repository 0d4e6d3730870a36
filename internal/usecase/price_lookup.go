package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"AstroPull/internal/domain/models"
	drepo "AstroPull/internal/domain/repository"
	"AstroPull/pkg/cache"
	applogger "AstroPull/pkg/logger"
	"AstroPull/pkg/util"

	"golang.org/x/sync/singleflight"
)

// PriceLookup memoizes historical prices per (coin, UTC day) and collapses
// concurrent identical lookups into one upstream call.
type PriceLookup struct {
	source  drepo.PriceSource
	cache   cache.Service
	ttl     time.Duration
	metrics drepo.Metrics
	log     *applogger.Logger
	group   singleflight.Group
}

// NewPriceLookup creates a price lookup backed by c.
func NewPriceLookup(source drepo.PriceSource, c cache.Service, ttl time.Duration, metrics drepo.Metrics, log *applogger.Logger) *PriceLookup {
	if log == nil {
		log = applogger.NewNop()
	}
	return &PriceLookup{source: source, cache: c, ttl: ttl, metrics: metrics, log: log}
}

// USD returns the price of coinID on the UTC day containing unix second ts.
func (p *PriceLookup) USD(ctx context.Context, coinID string, ts int64) (*models.PriceQuote, error) {
	coinID = strings.ToLower(strings.TrimSpace(coinID))
	if coinID == "" || ts <= 0 {
		return nil, fmt.Errorf("price lookup: coin id and a positive timestamp are required")
	}
	day := util.StartOfDay(time.Unix(ts, 0))
	date := day.Format(time.DateOnly)
	key := cache.GenerateKey("price", coinID, date)
	quote := &models.PriceQuote{ID: coinID, TS: ts, Date: date}

	var usd float64
	err := p.cache.Get(ctx, key, &usd)
	if err == nil {
		p.metrics.RecordPriceLookup("hit")
		quote.USD, quote.Cached = usd, true
		return quote, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		p.log.Warn("price cache read failed", applogger.String("key", key), applogger.Error(err))
	}

	v, err, shared := p.group.Do(key, func() (interface{}, error) {
		// detached so one caller giving up does not fail the others
		detached := context.WithoutCancel(ctx)
		usd, err := p.source.HistoricalUSD(detached, coinID, day)
		if err != nil {
			return 0.0, err
		}
		if err := p.cache.Set(detached, key, usd, p.ttl); err != nil {
			p.log.Warn("price cache write failed", applogger.String("key", key), applogger.Error(err))
		}
		return usd, nil
	})
	if err != nil {
		p.metrics.RecordPriceLookup("error")
		return nil, err
	}
	if shared {
		p.metrics.RecordPriceLookup("shared")
	} else {
		p.metrics.RecordPriceLookup("miss")
	}
	quote.USD = v.(float64)
	return quote, nil
}
