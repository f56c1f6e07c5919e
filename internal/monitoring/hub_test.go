package monitoring

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"cambistas-backend/internal/models"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestHubDeliversEvents(t *testing.T) {
	hub := NewHub(zaptest.NewLogger(t))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	srv := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	hub.Publish(models.LedgerEvent{Type: models.LedgerEventWeekConfirmed, AgentID: "a1", Week: 2})

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var got models.LedgerEvent
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, models.LedgerEventWeekConfirmed, got.Type)
	assert.Equal(t, "a1", got.AgentID)
	assert.Equal(t, models.Week(2), got.Week)
}

func TestHubForgetsClosedClients(t *testing.T) {
	hub := NewHub(zaptest.NewLogger(t))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	srv := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	conn.Close()
	assert.Eventually(t, func() bool { return hub.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestPublishNeverBlocks(t *testing.T) {
	hub := NewHub(zaptest.NewLogger(t))
	done := make(chan struct{})
	go func() {
		for i := 0; i < 200; i++ {
			hub.Publish(models.LedgerEvent{Type: models.LedgerEventAgentAdded})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked without a running hub")
	}
}
