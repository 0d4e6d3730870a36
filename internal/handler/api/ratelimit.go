package api

import (
	"time"

	"AstroPull/internal/service/ratelimit"
	xhttp "AstroPull/pkg/http"
	applogger "AstroPull/pkg/logger"

	"github.com/labstack/echo/v4"
)

const (
	maxTrackedClients = 4096
	pruneIdle         = 10 * time.Minute
)

// limitByClient rejects requests once the caller's bucket is empty. A nil limiter lets everything through.
func limitByClient(rl *ratelimit.Limiter, l *applogger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		if rl == nil {
			return next
		}
		return func(c echo.Context) error {
			if rl.Len() > maxTrackedClients {
				rl.Prune(pruneIdle)
			}
			key := c.RealIP() + " " + c.Path()
			if !rl.Allow(key) {
				l.Warn("rate limited", applogger.String("remote", c.RealIP()), applogger.String("route", c.Path()))
				return xhttp.TooManyRequestsError("too many requests, slow down")
			}
			return next(c)
		}
	}
}
