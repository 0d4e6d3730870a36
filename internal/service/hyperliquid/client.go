package hyperliquid

import (
	"context"
	"fmt"
	"time"

	"AstroPull/internal/domain/models"
	drepo "AstroPull/internal/domain/repository"
	xhttp "AstroPull/pkg/http"
)

const (
	DefaultInfoURL = "https://api.hyperliquid.xyz/info"
	DefaultWSURL   = "wss://api.hyperliquid.xyz/ws"
)

type infoRequest struct {
	Type string `json:"type"`
	User string `json:"user"`
}

// Client pulls fills from the Hyperliquid info endpoint.
type Client struct {
	infoURL string
	http    *xhttp.Client
}

// New creates a REST FillSource. Requests fail after timeout.
func New(infoURL string, timeout time.Duration) drepo.FillSource {
	if infoURL == "" {
		infoURL = DefaultInfoURL
	}
	return &Client{
		infoURL: infoURL,
		http:    xhttp.NewClient(xhttp.WithTimeout(timeout)),
	}
}

func (c *Client) Venue() string { return models.VenueHyperliquid }

// UserFills returns the account's fills as the venue reports them.
func (c *Client) UserFills(ctx context.Context, address string) ([]models.RawFill, error) {
	var rows []models.RawFill
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodPost,
		URL:    c.infoURL,
		Body:   infoRequest{Type: "userFills", User: address},
	}, &rows)
	if err != nil {
		return nil, fmt.Errorf("%w: hyperliquid userFills: %w", models.ErrFetch, err)
	}
	return stampVenue(rows), nil
}

func (c *Client) Close() error { return nil }

func stampVenue(rows []models.RawFill) []models.RawFill {
	if rows == nil {
		return []models.RawFill{}
	}
	for _, r := range rows {
		if r != nil {
			r["venue"] = models.VenueHyperliquid
		}
	}
	return rows
}
