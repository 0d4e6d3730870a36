package api

import (
	"net/http"
	"time"

	"AstroPull/internal/domain/models"
	svcmetrics "AstroPull/internal/service/metrics"
	"AstroPull/internal/service/ratelimit"
	"AstroPull/internal/services/pivot"
	"AstroPull/internal/usecase"
	xhttp "AstroPull/pkg/http"
	applogger "AstroPull/pkg/logger"

	"github.com/labstack/echo/v4"
)

// DashboardHandler serves the HTML dashboard and its JSON twin.
type DashboardHandler struct {
	log        *applogger.Logger
	dash       *usecase.Dashboard
	sessions   *usecase.SessionStore
	limiter    *ratelimit.Limiter
	cookieName string
	allLabels  bool
}

func NewDashboardHandler(
	log *applogger.Logger,
	dash *usecase.Dashboard,
	sessions *usecase.SessionStore,
	limiter *ratelimit.Limiter,
	cookieName string,
	allLabels bool,
) *DashboardHandler {
	svcmetrics.Register()
	if cookieName == "" {
		cookieName = "astropull_session"
	}
	return &DashboardHandler{
		log:        log,
		dash:       dash,
		sessions:   sessions,
		limiter:    limiter,
		cookieName: cookieName,
		allLabels:  allLabels,
	}
}

func (h *DashboardHandler) RegisterRoutes(e *echo.Echo) {
	limited := limitByClient(h.limiter, h.log)

	e.GET("/", h.Page)
	e.POST("/fetch", h.FetchForm, limited)
	e.POST("/enrich", h.EnrichForm)

	g := e.Group("/api")
	g.POST("/fetch", h.Fetch, limited)
	g.POST("/enrich", h.Enrich)
	g.GET("/session", h.Session)
}

// session resolves the caller's session from its cookie, issuing a new one when needed.
func (h *DashboardHandler) session(c echo.Context) *models.Session {
	var id string
	if ck, err := c.Cookie(h.cookieName); err == nil {
		id = ck.Value
	}
	s, created := h.sessions.GetOrCreate(id)
	if created {
		c.SetCookie(&http.Cookie{
			Name:     h.cookieName,
			Value:    s.ID,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return s
}

// Page renders the dashboard for the caller's session.
func (h *DashboardHandler) Page(c echo.Context) error {
	s := h.session(c)
	snap := s.Snapshot()
	data := pageData{Session: snap, Venue: h.dash.Venue(), AllLabels: h.allLabels}
	switch snap.State {
	case models.StateIdle:
		data.Prompt = usecase.PromptNotFetched
	case models.StateEnriched:
		f := pivot.Format(snap.Pivot)
		data.Table = &f
	}

	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().Header().Set(echo.HeaderCacheControl, "no-store")
	c.Response().WriteHeader(http.StatusOK)
	return pageTmpl.Execute(c.Response(), data)
}

// FetchForm runs a fetch for the configured account and redirects to the page.
// Failures are shown on the page from the session's last error.
func (h *DashboardHandler) FetchForm(c echo.Context) error {
	start := time.Now()
	s := h.session(c)
	_, err := h.dash.Fetch(c.Request().Context(), s, "")
	h.observe("fetch", start, err)
	return c.Redirect(http.StatusSeeOther, "/")
}

// EnrichForm runs an enrich and redirects to the page.
func (h *DashboardHandler) EnrichForm(c echo.Context) error {
	start := time.Now()
	s := h.session(c)
	req := &models.EnrichRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	_, err := h.dash.Enrich(c.Request().Context(), s, pivot.Options{AllLabels: req.AllLabels})
	h.observe("enrich", start, err)
	return c.Redirect(http.StatusSeeOther, "/")
}

// Fetch is the JSON fetch action.
func (h *DashboardHandler) Fetch(c echo.Context) error {
	start := time.Now()
	s := h.session(c)
	req := &models.FetchRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		h.observe("fetch", start, xhttp.BadRequestError("invalid request"))
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.dash.Fetch(c.Request().Context(), s, req.Address)
	h.observe("fetch", start, err)
	if err != nil {
		return toAppError(err)
	}
	return xhttp.SuccessResponse(c, res)
}

type enrichResponse struct {
	*usecase.EnrichResult
	Formatted pivot.Formatted `json:"formatted"`
}

// Enrich is the JSON enrich action.
func (h *DashboardHandler) Enrich(c echo.Context) error {
	start := time.Now()
	s := h.session(c)
	req := &models.EnrichRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.dash.Enrich(c.Request().Context(), s, pivot.Options{AllLabels: req.AllLabels})
	h.observe("enrich", start, err)
	if err != nil {
		return toAppError(err)
	}
	return xhttp.SuccessResponse(c, enrichResponse{EnrichResult: res, Formatted: pivot.Format(res.Pivot)})
}

// Session returns the caller's session summary.
func (h *DashboardHandler) Session(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.session(c).Snapshot())
}

func (h *DashboardHandler) observe(action string, start time.Time, err error) {
	code := ""
	if err != nil {
		code = toAppError(err).Code
	}
	svcmetrics.Observe(action, start, code)
}
