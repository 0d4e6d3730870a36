package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"AstroPull/internal/domain/models"
	"AstroPull/internal/repository"
	"AstroPull/internal/service/ratelimit"
	"AstroPull/internal/services/enrich"
	"AstroPull/internal/usecase"
	"AstroPull/pkg/cache"
	xhttp "AstroPull/pkg/http"
	applogger "AstroPull/pkg/logger"
	"AstroPull/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const account = "0x2cf4F9f08AD241B42426107D21Bbf9CBB9E8De90"

type stubSource struct {
	mu   sync.Mutex
	rows []models.RawFill
	err  error
}

func (s *stubSource) Venue() string { return models.VenueHyperliquid }

func (s *stubSource) UserFills(context.Context, string) ([]models.RawFill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rows, s.err
}

func (s *stubSource) Close() error { return nil }

type stubPrices struct {
	usd float64
	err error
}

func (p stubPrices) HistoricalUSD(context.Context, string, time.Time) (float64, error) {
	return p.usd, p.err
}

type harness struct {
	src    *stubSource
	server *xhttp.Server
	cookie *http.Cookie
}

func newHarness(t *testing.T, limiter *ratelimit.Limiter, prices stubPrices) *harness {
	t.Helper()
	log := applogger.NewNop()
	rec := metrics.New(prometheus.NewRegistry())
	src := &stubSource{rows: []models.RawFill{{
		"coin":      "BTC",
		"closedPnl": "120.5",
		"time":      json.Number("1634040000000"),
	}}}

	dash := usecase.NewDashboard(src, enrich.New(), repository.NewNoopEventPublisher(), rec, log,
		usecase.DashboardConfig{Address: account})
	sessions := usecase.NewSessionStore(16, time.Hour)

	mem := cache.NewMemoryCache()
	t.Cleanup(func() { _ = mem.Close() })
	lookup := usecase.NewPriceLookup(prices, mem, time.Hour, rec, log)

	handlers := []xhttp.Handler{
		NewDashboardHandler(log, dash, sessions, limiter, "sid", false),
		NewPriceHandler(log, lookup),
	}
	return &harness{src: src, server: xhttp.NewServer(log, handlers)}
}

func (h *harness) do(method, target, contentType, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if h.cookie != nil {
		req.AddCookie(h.cookie)
	}
	rec := httptest.NewRecorder()
	h.server.Echo().ServeHTTP(rec, req)
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == "sid" {
			h.cookie = ck
		}
	}
	return rec
}

func (h *harness) postJSON(target, body string) *httptest.ResponseRecorder {
	return h.do(http.MethodPost, target, "application/json", body)
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, dest interface{}) {
	t.Helper()
	var env struct {
		Status int             `json:"status"`
		Data   json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.NoError(t, json.Unmarshal(env.Data, dest))
}

func TestPageIssuesSessionAndPrompts(t *testing.T) {
	h := newHarness(t, nil, stubPrices{})

	rec := h.do(http.MethodGet, "/", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, h.cookie)
	assert.True(t, h.cookie.HttpOnly)
	assert.Contains(t, rec.Body.String(), usecase.PromptNotFetched)
	assert.NotContains(t, rec.Body.String(), "<table>")
}

func TestEnrichBeforeFetchIsConflict(t *testing.T) {
	h := newHarness(t, nil, stubPrices{})

	rec := h.postJSON("/api/enrich", `{}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"ERR_NOT_FETCHED"`)
	assert.Contains(t, rec.Body.String(), usecase.PromptNotFetched)
}

func TestFetchThenEnrichJSON(t *testing.T) {
	h := newHarness(t, nil, stubPrices{})

	rec := h.postJSON("/api/fetch", `{}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var fr usecase.FetchResult
	decodeData(t, rec, &fr)
	assert.Equal(t, 1, fr.Fills)
	assert.Equal(t, account, fr.Address)
	assert.Equal(t, models.StateFetched, fr.State)

	rec = h.postJSON("/api/enrich", `{}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var er struct {
		Pivot     models.Pivot `json:"pivot"`
		Formatted struct {
			Cells [][]string `json:"cells"`
			Total string     `json:"total"`
		} `json:"formatted"`
	}
	decodeData(t, rec, &er)
	assert.Equal(t, []string{"First Quarter"}, er.Pivot.Rows)
	assert.Equal(t, []string{"Libra"}, er.Pivot.Cols)
	assert.Equal(t, 120.5, er.Pivot.Total)
	assert.Equal(t, [][]string{{"120.50"}}, er.Formatted.Cells)
	assert.Equal(t, "120.50", er.Formatted.Total)

	rec = h.do(http.MethodGet, "/api/session", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var snap models.SessionSnapshot
	decodeData(t, rec, &snap)
	assert.Equal(t, models.StateEnriched, snap.State)
	assert.Equal(t, 1, snap.Enriched)
}

func TestFetchRejectsBadAddress(t *testing.T) {
	h := newHarness(t, nil, stubPrices{})

	rec := h.postJSON("/api/fetch", `{"address":"0x123"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"field":"address"`)
}

func TestFetchFailureIsBadGatewayWithDetail(t *testing.T) {
	h := newHarness(t, nil, stubPrices{})
	h.src.err = fmt.Errorf("%w: status 500: upstream down", models.ErrFetch)

	rec := h.postJSON("/api/fetch", `{}`)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"ERR_FETCH"`)
	assert.Contains(t, rec.Body.String(), "upstream down")

	// the page shows the failure and keeps the idle prompt
	page := h.do(http.MethodGet, "/", "", "")
	assert.Contains(t, page.Body.String(), "upstream down")
	assert.Contains(t, page.Body.String(), usecase.PromptNotFetched)
}

func TestEnrichWithoutTimestampIsUnprocessable(t *testing.T) {
	h := newHarness(t, nil, stubPrices{})
	h.src.rows = []models.RawFill{{"coin": "BTC", "closedPnl": "1"}}

	require.Equal(t, http.StatusOK, h.postJSON("/api/fetch", `{}`).Code)
	rec := h.postJSON("/api/enrich", `{}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"ERR_SCHEMA"`)
}

func TestFormFlowRendersPivot(t *testing.T) {
	h := newHarness(t, nil, stubPrices{})
	form := "application/x-www-form-urlencoded"

	rec := h.do(http.MethodPost, "/fetch", form, "")
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	page := h.do(http.MethodGet, "/", "", "")
	assert.Contains(t, page.Body.String(), "Pulled 1 Hyperliquid fills")

	rec = h.do(http.MethodPost, "/enrich", form, url.Values{"all_labels": {"true"}}.Encode())
	require.Equal(t, http.StatusSeeOther, rec.Code)

	body := h.do(http.MethodGet, "/", "", "").Body.String()
	assert.Contains(t, body, "<table>")
	assert.Contains(t, body, "First Quarter")
	assert.Contains(t, body, "Libra")
	assert.Contains(t, body, "Aries")
	assert.Contains(t, body, "120.50")
	assert.NotContains(t, body, usecase.PromptNotFetched)
}

func TestFetchIsRateLimited(t *testing.T) {
	h := newHarness(t, ratelimit.New(0.001, 1), stubPrices{})

	assert.Equal(t, http.StatusOK, h.postJSON("/api/fetch", `{}`).Code)
	rec := h.postJSON("/api/fetch", `{}`)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	// enrich is not limited
	assert.Equal(t, http.StatusOK, h.postJSON("/api/enrich", `{}`).Code)
}

func TestPriceEndpoint(t *testing.T) {
	h := newHarness(t, nil, stubPrices{usd: 57321.12})

	rec := h.do(http.MethodGet, "/api/price?id=Bitcoin&ts=1634040000", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var q models.PriceQuote
	decodeData(t, rec, &q)
	assert.Equal(t, "bitcoin", q.ID)
	assert.Equal(t, "2021-10-12", q.Date)
	assert.Equal(t, 57321.12, q.USD)
	assert.False(t, q.Cached)

	rec = h.do(http.MethodGet, "/api/price?id=bitcoin&ts=1634040000", "", "")
	decodeData(t, rec, &q)
	assert.True(t, q.Cached)

	rec = h.do(http.MethodGet, "/api/price?id=bitcoin", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPriceUnavailableIsNotFound(t *testing.T) {
	h := newHarness(t, nil, stubPrices{err: fmt.Errorf("%w: no market data", models.ErrPriceUnavailable)})

	rec := h.do(http.MethodGet, "/api/price?id=nocoin&ts=1634040000", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"ERR_PRICE_UNAVAILABLE"`)
}

func TestToAppErrorFallsBackToInternal(t *testing.T) {
	appErr := toAppError(errors.New("boom"))
	assert.Equal(t, http.StatusInternalServerError, appErr.Status)
}
