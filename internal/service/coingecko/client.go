package coingecko

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"AstroPull/internal/domain/models"
	drepo "AstroPull/internal/domain/repository"
	xhttp "AstroPull/pkg/http"
)

const DefaultBaseURL = "https://api.coingecko.com/api/v3"

// dateLayout is the DD-MM-YYYY form the history endpoint expects.
const dateLayout = "02-01-2006"

type historyResponse struct {
	ID         string `json:"id"`
	MarketData *struct {
		CurrentPrice map[string]float64 `json:"current_price"`
	} `json:"market_data"`
}

// Client reads historical coin prices from CoinGecko.
type Client struct {
	baseURL string
	http    *xhttp.Client
}

// New creates a PriceSource. Requests fail after timeout.
func New(baseURL string, timeout time.Duration) drepo.PriceSource {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    xhttp.NewClient(xhttp.WithTimeout(timeout)),
	}
}

// HistoricalUSD returns the USD price of coinID on the UTC calendar day of day.
func (c *Client) HistoricalUSD(ctx context.Context, coinID string, day time.Time) (float64, error) {
	date := day.UTC().Format(dateLayout)
	var out historyResponse
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		URL:         c.baseURL + "/coins/" + url.PathEscape(coinID) + "/history",
		QueryParams: map[string][]string{"date": {date}, "localization": {"false"}},
	}, &out)
	if err != nil {
		var se *xhttp.StatusError
		if errors.As(err, &se) && se.Code == http.StatusNotFound {
			return 0, fmt.Errorf("%w: %s on %s: %w", models.ErrPriceUnavailable, coinID, date, err)
		}
		return 0, fmt.Errorf("%w: coingecko history %s: %w", models.ErrFetch, coinID, err)
	}

	if out.MarketData == nil {
		return 0, fmt.Errorf("%w: %s on %s: no market data", models.ErrPriceUnavailable, coinID, date)
	}
	usd, ok := out.MarketData.CurrentPrice["usd"]
	if !ok {
		return 0, fmt.Errorf("%w: %s on %s: no usd quote", models.ErrPriceUnavailable, coinID, date)
	}
	return usd, nil
}
