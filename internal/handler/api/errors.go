package api

import (
	"errors"
	"net/http"

	"AstroPull/internal/domain/models"
	"AstroPull/internal/usecase"
	xhttp "AstroPull/pkg/http"
)

// toAppError maps domain failures to transport errors carrying the full chain as detail.
func toAppError(err error) *xhttp.AppError {
	var appErr *xhttp.AppError
	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.Is(err, models.ErrNotFetched):
		return xhttp.ConflictError("ERR_NOT_FETCHED", usecase.PromptNotFetched)
	case errors.Is(err, models.ErrSchema):
		return xhttp.UnprocessableError("ERR_SCHEMA", "fills carry no timestamp field").WithDetail(err)
	case errors.Is(err, models.ErrPriceUnavailable):
		return xhttp.NewAppError("ERR_PRICE_UNAVAILABLE", "", "no USD price for that coin and day", http.StatusNotFound).WithDetail(err)
	case errors.Is(err, models.ErrFetch):
		return xhttp.BadGatewayError("ERR_FETCH", "could not fetch from upstream").WithDetail(err)
	default:
		return xhttp.InternalError("unexpected failure").WithDetail(err)
	}
}
