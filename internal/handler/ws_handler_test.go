package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatter/internal/pkg/errs"
)

func dialRoom(t *testing.T, srv *httptest.Server, slug string) *websocket.Conn {
	t.Helper()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/" + slug
	conn, res, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	if res != nil {
		res.Body.Close()
	}

	t.Cleanup(func() { conn.Close() })
	return conn
}

func sendFrame(t *testing.T, conn *websocket.Conn, frame map[string]any) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(frame))
}

func readEvent(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

	var ev map[string]any
	require.NoError(t, conn.ReadJSON(&ev))
	return ev
}

func TestWebSocketRejectsInvalidSlug(t *testing.T) {
	deps, _, _ := newTestDeps()
	srv := httptest.NewServer(Router(deps))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/Bad%20Slug"
	_, res, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.Error(t, err)
	require.NotNil(t, res)
	defer res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestWebSocketChatFlow(t *testing.T) {
	deps, _, service := newTestDeps()
	srv := httptest.NewServer(Router(deps))
	defer srv.Close()

	alice := dialRoom(t, srv, "lobby")
	sendFrame(t, alice, map[string]any{"event": "user-join", "username": "alice"})

	ev := readEvent(t, alice)
	assert.Equal(t, "user-join", ev["event"])
	assert.Equal(t, "alice", ev["username"])

	bob := dialRoom(t, srv, "lobby")
	sendFrame(t, bob, map[string]any{"event": "user-join", "username": "bob"})

	ev = readEvent(t, bob)
	assert.Equal(t, "user-join", ev["event"])
	assert.Equal(t, "bob", ev["username"])

	members := ev["members"].([]any)
	require.Len(t, members, 2)

	ev = readEvent(t, alice)
	assert.Equal(t, "user-join", ev["event"])
	assert.Equal(t, "bob", ev["username"])

	sendFrame(t, alice, map[string]any{"event": "message-send", "username": "alice", "msg": "hi"})

	for _, conn := range []*websocket.Conn{alice, bob} {
		ev = readEvent(t, conn)
		assert.Equal(t, "message-new", ev["event"])
		assert.Equal(t, "hi", ev["msg"])
		assert.Equal(t, "alice", ev["username"])
		assert.NotEmpty(t, ev["time"])
	}

	// Closing bob's socket must surface exactly one user-leave to alice.
	bob.Close()

	ev = readEvent(t, alice)
	assert.Equal(t, "user-leave", ev["event"])
	assert.Equal(t, "bob", ev["username"])

	require.Eventually(t, func() bool {
		return service.Members().Count("lobby") == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestWebSocketDirectedErrorFrames(t *testing.T) {
	deps, _, _ := newTestDeps()
	srv := httptest.NewServer(Router(deps))
	defer srv.Close()

	alice := dialRoom(t, srv, "lobby")
	sendFrame(t, alice, map[string]any{"event": "user-join", "username": "alice"})
	ev := readEvent(t, alice)
	require.Equal(t, "user-join", ev["event"])

	bob := dialRoom(t, srv, "lobby")

	// A second "alice" is rejected with a directed error; no broadcast happens.
	sendFrame(t, bob, map[string]any{"event": "user-join", "username": "alice"})
	ev = readEvent(t, bob)
	assert.Equal(t, "error", ev["event"])
	assert.EqualValues(t, errs.ErrDuplicateUsername, ev["code"])

	// Unknown event kinds are dropped with a directed error, connection stays up.
	sendFrame(t, bob, map[string]any{"event": "room-nuke"})
	ev = readEvent(t, bob)
	assert.Equal(t, "error", ev["event"])
	assert.EqualValues(t, errs.ErrUnrecognizedEvent, ev["code"])

	// The connection is still usable for a proper join afterwards.
	sendFrame(t, bob, map[string]any{"event": "user-join", "username": "bob"})
	ev = readEvent(t, bob)
	assert.Equal(t, "user-join", ev["event"])
	assert.Equal(t, "bob", ev["username"])
}
