package hyperliquid

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"AstroPull/internal/domain/models"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const addr = "0x2cf4F9f08AD241B42426107D21Bbf9CBB9E8De90"

const fillsJSON = `[{"coin":"BTC","px":"57000.0","sz":"0.01","side":"B","time":1634040000000,"closedPnl":"120.5","tid":1234567890123456789}]`

func TestClientUserFills(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		var req infoRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "userFills", req.Type)
		assert.Equal(t, addr, req.User)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(fillsJSON))
	}))
	defer srv.Close()

	c := New(srv.URL, 5*time.Second)
	rows, err := c.UserFills(context.Background(), addr)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "BTC", rows[0]["coin"])
	assert.Equal(t, json.Number("1634040000000"), rows[0]["time"])
	// large ids keep their precision
	assert.Equal(t, json.Number("1234567890123456789"), rows[0]["tid"])
	assert.Equal(t, models.VenueHyperliquid, rows[0]["venue"])
}

func TestClientRemoteError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := New(srv.URL, time.Second).UserFills(context.Background(), addr)
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrFetch))
	assert.Contains(t, err.Error(), "500")
}

func TestClientTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()

	_, err := New(srv.URL, 50*time.Millisecond).UserFills(context.Background(), addr)
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrFetch))
}

func wsServer(t *testing.T, frames ...string) *httptest.Server {
	t.Helper()
	up := websocket.Upgrader{}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := up.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		var req wsRequest
		if err := conn.ReadJSON(&req); err != nil {
			return
		}
		assert.Equal(t, "subscribe", req.Method)
		assert.Equal(t, "userFills", req.Subscription.Type)
		for _, f := range frames {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(f)); err != nil {
				return
			}
		}
		// hold the connection until the client leaves
		_, _, _ = conn.ReadMessage()
	}))
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestStreamSnapshot(t *testing.T) {
	srv := wsServer(t,
		`{"channel":"subscriptionResponse","data":{"method":"subscribe"}}`,
		`{"channel":"userFills","data":{"isSnapshot":true,"user":"`+addr+`","fills":`+fillsJSON+`}}`,
	)
	defer srv.Close()

	rows, err := NewStream(wsURL(srv), 2*time.Second).UserFills(context.Background(), addr)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, json.Number("1634040000000"), rows[0]["time"])
	assert.Equal(t, models.VenueHyperliquid, rows[0]["venue"])
}

func TestStreamNoSnapshotTimesOut(t *testing.T) {
	srv := wsServer(t, `{"channel":"userFills","data":{"isSnapshot":false,"fills":[]}}`)
	defer srv.Close()

	_, err := NewStream(wsURL(srv), 200*time.Millisecond).UserFills(context.Background(), addr)
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrFetch))
}

func TestStreamConnectError(t *testing.T) {
	_, err := NewStream("ws://127.0.0.1:1", 200*time.Millisecond).UserFills(context.Background(), addr)
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrFetch))
}
