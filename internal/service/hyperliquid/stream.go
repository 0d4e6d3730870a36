package hyperliquid

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"AstroPull/internal/domain/models"
	drepo "AstroPull/internal/domain/repository"

	"github.com/gorilla/websocket"
)

type subscription struct {
	Type string `json:"type"`
	User string `json:"user"`
}

type wsRequest struct {
	Method       string       `json:"method"`
	Subscription subscription `json:"subscription"`
}

type wsMessage struct {
	Channel string          `json:"channel"`
	Data    json.RawMessage `json:"data"`
}

type userFillsData struct {
	IsSnapshot bool             `json:"isSnapshot"`
	User       string           `json:"user"`
	Fills      []models.RawFill `json:"fills"`
}

// StreamClient pulls fills over the WebSocket API: it subscribes to the
// account's fills, takes the initial snapshot and disconnects.
type StreamClient struct {
	wsURL   string
	timeout time.Duration
	dialer  *websocket.Dialer
}

// NewStream creates a WebSocket FillSource.
func NewStream(wsURL string, timeout time.Duration) drepo.FillSource {
	if wsURL == "" {
		wsURL = DefaultWSURL
	}
	return &StreamClient{
		wsURL:   wsURL,
		timeout: timeout,
		dialer:  &websocket.Dialer{HandshakeTimeout: timeout},
	}
}

func (c *StreamClient) Venue() string { return models.VenueHyperliquid }

// UserFills connects, subscribes and returns the snapshot fills.
func (c *StreamClient) UserFills(ctx context.Context, address string) ([]models.RawFill, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	conn, _, err := c.dialer.DialContext(ctx, c.wsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: hyperliquid ws connect: %w", models.ErrFetch, err)
	}
	defer conn.Close()

	// unblock ReadMessage on cancellation
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()
	if dl, ok := ctx.Deadline(); ok {
		_ = conn.SetReadDeadline(dl)
		_ = conn.SetWriteDeadline(dl)
	}

	req := wsRequest{Method: "subscribe", Subscription: subscription{Type: "userFills", User: address}}
	if err := conn.WriteJSON(req); err != nil {
		return nil, fmt.Errorf("%w: hyperliquid ws subscribe: %w", models.ErrFetch, err)
	}

	for {
		_, b, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				err = ctx.Err()
			}
			return nil, fmt.Errorf("%w: hyperliquid ws read: %w", models.ErrFetch, err)
		}
		var m wsMessage
		if err := json.Unmarshal(b, &m); err != nil {
			// ignore non-json frames
			continue
		}
		if m.Channel != "userFills" {
			continue
		}
		var data userFillsData
		dec := json.NewDecoder(bytes.NewReader(m.Data))
		dec.UseNumber()
		if err := dec.Decode(&data); err != nil {
			return nil, fmt.Errorf("%w: hyperliquid ws decode: %w", models.ErrFetch, err)
		}
		if !data.IsSnapshot {
			continue
		}
		return stampVenue(data.Fills), nil
	}
}

func (c *StreamClient) Close() error { return nil }
