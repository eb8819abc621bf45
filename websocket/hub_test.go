package websocket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T, origins []string) (*Hub, *httptest.Server, context.CancelFunc) {
	t.Helper()
	hub := NewHub(zerolog.Nop(), origins)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = hub.Serve(w, r, r.URL.Query().Get("clinic"), "user-1")
	}))
	t.Cleanup(func() {
		cancel()
		srv.Close()
	})
	return hub, srv, cancel
}

func dial(t *testing.T, srv *httptest.Server, clinic string, header http.Header) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?clinic=" + clinic
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) Event {
	t.Helper()
	var ev Event
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, conn.ReadJSON(&ev))
	return ev
}

func TestHubDeliversToClinicOnly(t *testing.T) {
	hub, srv, _ := startHub(t, []string{"*"})

	a := dial(t, srv, "clinic-a", nil)
	b := dial(t, srv, "clinic-b", nil)
	assert.Equal(t, EventWelcome, readEvent(t, a).Type)
	assert.Equal(t, EventWelcome, readEvent(t, b).Type)
	require.Eventually(t, func() bool {
		return hub.ConnectionCount("clinic-a") == 1 && hub.ConnectionCount("clinic-b") == 1
	}, 2*time.Second, 10*time.Millisecond)

	hub.Publish(Event{Type: EventDocumentCreated, ClinicID: "clinic-a", DocumentID: "doc-1"})

	ev := readEvent(t, a)
	assert.Equal(t, EventDocumentCreated, ev.Type)
	assert.Equal(t, "doc-1", ev.DocumentID)
	assert.False(t, ev.Timestamp.IsZero())

	require.NoError(t, b.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	_, _, err := b.ReadMessage()
	assert.Error(t, err, "clinic-b must not see clinic-a events")
}

func TestHubDropsClosedClients(t *testing.T) {
	hub, srv, _ := startHub(t, nil)

	conn := dial(t, srv, "clinic-a", nil)
	readEvent(t, conn)
	require.Eventually(t, func() bool { return hub.ConnectionCount("clinic-a") == 1 }, 2*time.Second, 10*time.Millisecond)

	conn.Close()
	assert.Eventually(t, func() bool { return hub.ConnectionCount("clinic-a") == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHubShutdownClosesConnections(t *testing.T) {
	hub, srv, cancel := startHub(t, nil)

	conn := dial(t, srv, "clinic-a", nil)
	readEvent(t, conn)
	require.Eventually(t, func() bool { return hub.ConnectionCount("clinic-a") == 1 }, 2*time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)
}

func TestOriginChecker(t *testing.T) {
	check := originChecker([]string{"https://app.example"})

	r := httptest.NewRequest(http.MethodGet, "/ws", nil)
	assert.True(t, check(r), "non-browser clients send no Origin")

	r.Header.Set("Origin", "https://app.example")
	assert.True(t, check(r))

	r.Header.Set("Origin", "https://evil.example")
	assert.False(t, check(r))
}
