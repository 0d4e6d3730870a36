package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"AstroPull/internal/domain/models"
	drepo "AstroPull/internal/domain/repository"
	"AstroPull/internal/services/enrich"
	"AstroPull/internal/services/epoch"
	"AstroPull/internal/services/pivot"
	applogger "AstroPull/pkg/logger"
)

// PromptNotFetched is shown instead of a table until fills have been fetched.
const PromptNotFetched = "First fetch, then enrich."

const publishTimeout = 5 * time.Second

// DashboardConfig holds the tunables of the dashboard actions.
type DashboardConfig struct {
	Address      string        // account used when a fetch names none
	FetchTimeout time.Duration // whole-fetch bound; 0 disables
	AllLabels    bool          // default pivot layout
}

// Dashboard runs the fetch and enrich actions against a session.
type Dashboard struct {
	source    drepo.FillSource
	pipeline  *enrich.Pipeline
	publisher drepo.EventPublisher
	metrics   drepo.Metrics
	log       *applogger.Logger
	cfg       DashboardConfig
	now       func() time.Time
}

// NewDashboard creates the dashboard use case.
func NewDashboard(
	source drepo.FillSource,
	pipeline *enrich.Pipeline,
	publisher drepo.EventPublisher,
	metrics drepo.Metrics,
	log *applogger.Logger,
	cfg DashboardConfig,
) *Dashboard {
	if log == nil {
		log = applogger.NewNop()
	}
	return &Dashboard{
		source:    source,
		pipeline:  pipeline,
		publisher: publisher,
		metrics:   metrics,
		log:       log,
		cfg:       cfg,
		now:       time.Now,
	}
}

// FetchResult summarizes a successful fetch.
type FetchResult struct {
	State   models.SessionState `json:"state"`
	Venue   string              `json:"venue"`
	Address string              `json:"address"`
	Fills   int                 `json:"fills"`
}

// EnrichResult is the outcome of a successful enrich.
type EnrichResult struct {
	Pivot   *models.Pivot     `json:"pivot"`
	Unit    epoch.Unit        `json:"unit"`
	Mapping map[string]string `json:"mapping"`
}

// Venue returns the label of the configured fill source.
func (d *Dashboard) Venue() string { return d.source.Venue() }

// Fetch pulls the account's fills into s. On failure s keeps its state and data
// and the error, wrapping models.ErrFetch, is recorded on s.
func (d *Dashboard) Fetch(ctx context.Context, s *models.Session, address string) (*FetchResult, error) {
	start := d.now()
	if address == "" {
		address = d.cfg.Address
	}
	if d.cfg.FetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.cfg.FetchTimeout)
		defer cancel()
	}

	rows, err := d.source.UserFills(ctx, address)
	if err != nil {
		if !errors.Is(err, models.ErrFetch) {
			err = fmt.Errorf("%w: %w", models.ErrFetch, err)
		}
		d.metrics.RecordError("fetch")
		s.Failed(err)
		d.log.Warn("fetch failed",
			applogger.String("session", s.ID),
			applogger.String("venue", d.source.Venue()),
			applogger.Error(err),
		)
		return nil, err
	}

	s.Fetched(address, rows, d.now())
	d.metrics.RecordFetch(d.source.Venue(), len(rows))
	d.metrics.RecordLatency("fetch", d.now().Sub(start).Seconds())
	d.log.Info("fills fetched",
		applogger.String("session", s.ID),
		applogger.String("venue", d.source.Venue()),
		applogger.Int("fills", len(rows)),
	)
	d.publish(ctx, &models.SessionEvent{
		Type:      models.EventFetched,
		SessionID: s.ID,
		State:     models.StateFetched,
		Venue:     d.source.Venue(),
		Fills:     len(rows),
	})

	return &FetchResult{State: models.StateFetched, Venue: d.source.Venue(), Address: address, Fills: len(rows)}, nil
}

// Enrich tags the session's fills and builds the pivot. It returns
// models.ErrNotFetched while s is Idle and wraps models.ErrSchema when the
// fills carry no timestamp field. Neither changes s.
func (d *Dashboard) Enrich(ctx context.Context, s *models.Session, opts pivot.Options) (*EnrichResult, error) {
	start := d.now()
	rows, gen, ok := s.Loaded()
	if !ok {
		return nil, models.ErrNotFetched
	}

	res, err := d.pipeline.Enrich(rows)
	if err != nil {
		d.metrics.RecordError("schema")
		s.Failed(err)
		d.log.Warn("enrich failed", applogger.String("session", s.ID), applogger.Error(err))
		return nil, err
	}

	opts.AllLabels = opts.AllLabels || d.cfg.AllLabels
	p := pivot.Build(res.Fills, opts)
	result := &EnrichResult{Pivot: p, Unit: res.Unit, Mapping: res.Mapping}
	if !s.Enriched(gen, res.Fills, p, d.now()) {
		// refetched meanwhile; nothing was stored, so nothing is recorded or published
		d.log.Debug("stale enrichment dropped", applogger.String("session", s.ID))
		return result, nil
	}

	d.metrics.RecordEnrich(p.Fills, p.Undated)
	d.metrics.RecordLatency("enrich", d.now().Sub(start).Seconds())
	d.log.Info("fills enriched",
		applogger.String("session", s.ID),
		applogger.String("unit", string(res.Unit)),
		applogger.Int("fills", p.Fills),
		applogger.Int("undated", p.Undated),
		applogger.Float64("total", p.Total),
	)
	d.publish(ctx, &models.SessionEvent{
		Type:      models.EventEnriched,
		SessionID: s.ID,
		State:     models.StateEnriched,
		Venue:     d.source.Venue(),
		Fills:     p.Fills,
		Total:     p.Total,
	})

	return result, nil
}

// publish never fails the action; delivery problems are only logged.
func (d *Dashboard) publish(ctx context.Context, e *models.SessionEvent) {
	if d.publisher == nil {
		return
	}
	e.At = d.now().UTC()
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := d.publisher.Publish(ctx, e); err != nil {
		d.metrics.RecordError("publish")
		d.log.Warn("session event dropped",
			applogger.String("type", e.Type),
			applogger.String("session", e.SessionID),
			applogger.Error(err),
		)
	}
}
