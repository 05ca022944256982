package bridge

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foxmcp/foxmcp/pkg/errors"
	"github.com/foxmcp/foxmcp/pkg/protocol"
)

// fakeExtension is the test peer on the WebSocket: it reads request frames
// and replies however the test dictates.
type fakeExtension struct {
	t    *testing.T
	conn *websocket.Conn
}

func startBridge(t *testing.T, b *Bridge) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", b.ServeWS)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func dialExtension(t *testing.T, srv *httptest.Server) *fakeExtension {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	f := &fakeExtension{t: t, conn: conn}
	t.Cleanup(func() { f.conn.Close() })
	return f
}

func (f *fakeExtension) readRequest() *protocol.Envelope {
	f.t.Helper()
	f.conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, raw, err := f.conn.ReadMessage()
	require.NoError(f.t, err)
	env, err := protocol.ParseEnvelope(raw)
	require.NoError(f.t, err)
	return env
}

func (f *fakeExtension) send(env *protocol.Envelope) {
	f.t.Helper()
	raw, err := json.Marshal(env)
	require.NoError(f.t, err)
	f.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	require.NoError(f.t, f.conn.WriteMessage(websocket.TextMessage, raw))
}

func (f *fakeExtension) respond(id, action string, data map[string]any) {
	f.send(&protocol.Envelope{
		ID: id, Type: protocol.TypeResponse, Action: action, Data: data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func (f *fakeExtension) respondError(id, code, message string) {
	f.send(&protocol.Envelope{
		ID: id, Type: protocol.TypeError, Action: "",
		Data:      map[string]any{"code": code, "message": message},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func waitConnected(t *testing.T, b *Bridge) {
	t.Helper()
	require.Eventually(t, b.Connected, 2*time.Second, 10*time.Millisecond,
		"bridge never adopted the connection")
}

func waitIdle(t *testing.T, b *Bridge) {
	t.Helper()
	require.Eventually(t, func() bool { return !b.Connected() }, 2*time.Second, 10*time.Millisecond,
		"bridge never released the connection")
}

func TestCallRoundTrip(t *testing.T) {
	t.Parallel()

	b := New(0)
	srv := startBridge(t, b)
	ext := dialExtension(t, srv)
	waitConnected(t, b)

	go func() {
		req := ext.readRequest()
		assert.Equal(t, protocol.TypeRequest, req.Type)
		assert.Equal(t, protocol.ActionTabsList, req.Action)
		ext.respond(req.ID, req.Action, map[string]any{
			"tabs": []any{map[string]any{"id": float64(7), "title": "Home"}},
		})
	}()

	data, err := b.Call(context.Background(), protocol.ActionTabsList, nil, 0)
	require.NoError(t, err)
	tabs, ok := data["tabs"].([]any)
	require.True(t, ok)
	assert.Len(t, tabs, 1)
}

func TestCallWithNoConnectionFailsFast(t *testing.T) {
	t.Parallel()

	b := New(0)
	start := time.Now()
	_, err := b.Call(context.Background(), protocol.ActionHistoryRecent, map[string]any{"count": 5}, 0)
	require.Error(t, err)
	assert.True(t, errors.IsDisconnected(err))
	assert.Less(t, time.Since(start), time.Second, "disconnected must not wait for a timeout")
	assert.Equal(t, 0, b.Status().PendingCalls)
}

func TestCallTimeoutAndLateReplyDiscarded(t *testing.T) {
	t.Parallel()

	b := New(0)
	srv := startBridge(t, b)
	ext := dialExtension(t, srv)
	waitConnected(t, b)

	idCh := make(chan string, 1)
	go func() {
		req := ext.readRequest()
		idCh <- req.ID
		// Deliberately no reply before the deadline.
	}()

	_, err := b.Call(context.Background(), protocol.ActionContentGetText,
		map[string]any{"tabId": 1}, 200*time.Millisecond)
	require.Error(t, err)
	assert.True(t, errors.IsTimeout(err))
	assert.Equal(t, 0, b.Status().PendingCalls, "timed-out waiter must be removed")

	// A reply arriving after the deadline is discarded without disturbing
	// later calls.
	ext.respond(<-idCh, protocol.ActionContentGetText, map[string]any{"text": "late"})

	go func() {
		req := ext.readRequest()
		ext.respond(req.ID, req.Action, map[string]any{})
	}()
	_, err = b.Call(context.Background(), protocol.ActionPing, nil, 0)
	require.NoError(t, err)
}

func TestCallExtensionError(t *testing.T) {
	t.Parallel()

	b := New(0)
	srv := startBridge(t, b)
	ext := dialExtension(t, srv)
	waitConnected(t, b)

	go func() {
		req := ext.readRequest()
		ext.respondError(req.ID, "TAB_NOT_FOUND", "no tab with id 99")
	}()

	_, err := b.Call(context.Background(), protocol.ActionTabsClose, map[string]any{"tabId": 99}, 0)
	require.Error(t, err)
	assert.True(t, errors.IsExtension(err))
	assert.Contains(t, err.Error(), "TAB_NOT_FOUND")
	assert.Contains(t, err.Error(), "no tab with id 99")
}

func TestDisconnectFailsAllWaiters(t *testing.T) {
	t.Parallel()

	b := New(0)
	srv := startBridge(t, b)
	ext := dialExtension(t, srv)
	waitConnected(t, b)

	// Two calls in flight, neither answered.
	var wg sync.WaitGroup
	results := make(chan error, 2)
	for range 2 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := b.Call(context.Background(), protocol.ActionTabsList, nil, 10*time.Second)
			results <- err
		}()
	}
	ext.readRequest()
	ext.readRequest()

	ext.conn.Close()
	wg.Wait()
	close(results)

	for err := range results {
		require.Error(t, err)
		assert.True(t, errors.IsDisconnected(err))
	}
	waitIdle(t, b)
}

func TestConnectionReplacement(t *testing.T) {
	t.Parallel()

	b := New(0)
	srv := startBridge(t, b)
	extA := dialExtension(t, srv)
	waitConnected(t, b)

	var wg sync.WaitGroup
	results := make(chan error, 2)
	for range 2 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := b.Call(context.Background(), protocol.ActionWindowsList, nil, 10*time.Second)
			results <- err
		}()
	}
	extA.readRequest()
	extA.readRequest()

	// Extension B completes its handshake while A still holds two waiters.
	extB := dialExtension(t, srv)
	wg.Wait()
	close(results)

	for err := range results {
		require.Error(t, err)
		assert.True(t, errors.IsDisconnected(err))
	}

	// The replacement connection serves traffic.
	go func() {
		req := extB.readRequest()
		extB.respond(req.ID, req.Action, map[string]any{"ok": true})
	}()
	data, err := b.Call(context.Background(), protocol.ActionPing, nil, 0)
	require.NoError(t, err)
	assert.Equal(t, true, data["ok"])
}

func TestConcurrentCallsDoNotAlias(t *testing.T) {
	t.Parallel()

	b := New(0)
	srv := startBridge(t, b)
	ext := dialExtension(t, srv)
	waitConnected(t, b)

	// Same action, distinct ids, replies delivered in reverse order.
	go func() {
		first := ext.readRequest()
		second := ext.readRequest()
		ext.respond(second.ID, second.Action, map[string]any{"marker": second.Data["marker"]})
		ext.respond(first.ID, first.Action, map[string]any{"marker": first.Data["marker"]})
	}()

	var wg sync.WaitGroup
	for _, marker := range []string{"alpha", "beta"} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			data, err := b.Call(context.Background(), protocol.ActionContentGetHTML,
				map[string]any{"tabId": 1, "marker": marker}, 5*time.Second)
			if assert.NoError(t, err) {
				assert.Equal(t, marker, data["marker"], "reply crossed between callers")
			}
		}()
		// Keep request order deterministic for the fake extension.
		time.Sleep(50 * time.Millisecond)
	}
	wg.Wait()
}

func TestActionMismatchStillCompletesByID(t *testing.T) {
	t.Parallel()

	b := New(0)
	srv := startBridge(t, b)
	ext := dialExtension(t, srv)
	waitConnected(t, b)

	go func() {
		req := ext.readRequest()
		ext.respond(req.ID, protocol.ActionTabsActive, map[string]any{"ok": true})
	}()

	data, err := b.Call(context.Background(), protocol.ActionTabsList, nil, 0)
	require.NoError(t, err, "the id is the sole correlation key")
	assert.Equal(t, true, data["ok"])
}

func TestMonitorNotificationRouting(t *testing.T) {
	t.Parallel()

	b := New(0)
	captured := make(chan map[string]any, 1)
	b.OnNotification(func(action string, data map[string]any) {
		assert.Equal(t, protocol.ActionRequestsCaptured, action)
		captured <- data
	})

	srv := startBridge(t, b)
	ext := dialExtension(t, srv)
	waitConnected(t, b)

	ext.send(&protocol.Envelope{
		ID:     "notif-1",
		Type:   protocol.TypeRequest,
		Action: protocol.ActionRequestsCaptured,
		Data: map[string]any{
			"monitor_id": "mon-1",
			"request":    map[string]any{"url": "https://api.example.com/a"},
		},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})

	select {
	case data := <-captured:
		assert.Equal(t, "mon-1", data["monitor_id"])
	case <-time.After(2 * time.Second):
		t.Fatal("notification never reached the handler")
	}
}

func TestMalformedAndOrphanFramesAreDropped(t *testing.T) {
	t.Parallel()

	b := New(0)
	srv := startBridge(t, b)
	ext := dialExtension(t, srv)
	waitConnected(t, b)

	// None of these can correlate; the connection must survive them all.
	ext.conn.WriteMessage(websocket.TextMessage, []byte(`not json`))
	ext.conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"response","action":"ping","data":{}}`))
	ext.conn.WriteMessage(websocket.TextMessage, []byte(`{"id":"ghost","type":"response","action":"ping","data":{}}`))
	ext.conn.WriteMessage(websocket.TextMessage, []byte(`{"id":"x","type":"mystery","action":"ping","data":{}}`))

	go func() {
		req := ext.readRequest()
		ext.respond(req.ID, req.Action, map[string]any{"alive": true})
	}()
	data, err := b.Call(context.Background(), protocol.ActionPing, nil, 0)
	require.NoError(t, err)
	assert.Equal(t, true, data["alive"])
}

func TestDuplicateResponseDiscarded(t *testing.T) {
	t.Parallel()

	b := New(0)
	srv := startBridge(t, b)
	ext := dialExtension(t, srv)
	waitConnected(t, b)

	go func() {
		req := ext.readRequest()
		ext.respond(req.ID, req.Action, map[string]any{"n": float64(1)})
		ext.respond(req.ID, req.Action, map[string]any{"n": float64(2)})
	}()

	data, err := b.Call(context.Background(), protocol.ActionTabsActive, nil, 0)
	require.NoError(t, err)
	assert.Equal(t, float64(1), data["n"])
	assert.Equal(t, 0, b.Status().PendingCalls)
}

func TestOnDisconnectHook(t *testing.T) {
	t.Parallel()

	b := New(0)
	invalidated := make(chan struct{}, 1)
	b.OnDisconnect(func() { invalidated <- struct{}{} })

	srv := startBridge(t, b)
	ext := dialExtension(t, srv)
	waitConnected(t, b)

	ext.conn.Close()
	select {
	case <-invalidated:
	case <-time.After(2 * time.Second):
		t.Fatal("disconnect hook never fired")
	}
}

func TestStatus(t *testing.T) {
	t.Parallel()

	b := New(0)
	s := b.Status()
	assert.False(t, s.Connected)
	assert.Zero(t, s.TotalCalls)

	srv := startBridge(t, b)
	ext := dialExtension(t, srv)
	waitConnected(t, b)

	s = b.Status()
	assert.True(t, s.Connected)
	assert.NotEmpty(t, s.RemoteAddr)
	assert.False(t, s.ConnectedAt.IsZero())

	go func() {
		req := ext.readRequest()
		ext.respond(req.ID, req.Action, nil)
	}()
	_, err := b.Call(context.Background(), protocol.ActionPing, nil, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), b.Status().TotalCalls)
}

func TestCallRejectsUnknownAction(t *testing.T) {
	t.Parallel()

	b := New(0)
	_, err := b.Call(context.Background(), "tabs.made_up", nil, 0)
	require.Error(t, err)
	assert.True(t, errors.IsProtocol(err))
}

func TestPingLoopKeepsConnectionServiced(t *testing.T) {
	t.Parallel()

	b := New(100 * time.Millisecond)
	srv := startBridge(t, b)
	ext := dialExtension(t, srv)
	waitConnected(t, b)

	// Answer the first liveness probe.
	req := ext.readRequest()
	require.Equal(t, protocol.ActionPing, req.Action)
	ext.respond(req.ID, req.Action, nil)

	require.Eventually(t, func() bool { return b.Status().TotalCalls >= 1 },
		2*time.Second, 20*time.Millisecond)
}
