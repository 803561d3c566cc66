package ws

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kcpatrick93/earning-scalp-bot/internal/contracts"
	"github.com/kcpatrick93/earning-scalp-bot/pkg/logger"
)

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestHub_BroadcastsToAllClients(t *testing.T) {
	hub := NewHub(logger.Nop())
	srv := httptest.NewServer(hub)
	defer srv.Close()

	a, b := dial(t, srv), dial(t, srv)
	require.Eventually(t, func() bool { return hub.Clients() == 2 }, time.Second, 5*time.Millisecond)

	report := &contracts.RunReport{Considered: 3, Normalized: 2}
	require.NoError(t, hub.Publish(context.Background(), report))

	for _, conn := range []*websocket.Conn{a, b} {
		msg := readMessage(t, conn)
		assert.Equal(t, "report", msg.Type)
		require.NotNil(t, msg.Payload)
		assert.Equal(t, 3, msg.Payload.Considered)
	}
	assert.Equal(t, "websocket", hub.Name())
}

func TestHub_SendsLastReportOnConnect(t *testing.T) {
	hub := NewHub(logger.Nop())
	srv := httptest.NewServer(hub)
	defer srv.Close()

	require.NoError(t, hub.Publish(context.Background(), &contracts.RunReport{Considered: 7}))

	msg := readMessage(t, dial(t, srv))
	assert.Equal(t, 7, msg.Payload.Considered)
}

func TestHub_ClientDisconnect(t *testing.T) {
	hub := NewHub(logger.Nop())
	srv := httptest.NewServer(hub)
	defer srv.Close()

	conn := dial(t, srv)
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 5*time.Millisecond)

	conn.Close()
	require.Eventually(t, func() bool { return hub.Clients() == 0 }, time.Second, 5*time.Millisecond)

	// publishing with nobody connected is fine
	assert.NoError(t, hub.Publish(context.Background(), &contracts.RunReport{}))
}

func TestHub_Close(t *testing.T) {
	hub := NewHub(logger.Nop())
	srv := httptest.NewServer(hub)
	defer srv.Close()

	conn := dial(t, srv)
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 5*time.Millisecond)

	hub.Close()
	assert.Zero(t, hub.Clients())

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
}
