// Package bridge implements the extension side of the foxmcp server: a
// WebSocket endpoint holding at most one live extension connection, and a
// dispatcher that multiplexes concurrent tool calls onto it with correlation
// by request id.
package bridge

import (
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/foxmcp/foxmcp/pkg/errors"
	"github.com/foxmcp/foxmcp/pkg/logger"
	"github.com/foxmcp/foxmcp/pkg/protocol"
)

const (
	// writeTimeout bounds a single frame write. A write blocked longer than
	// this means the peer stopped reading; the connection is treated as broken.
	writeTimeout = 5 * time.Second

	// enqueueTimeout bounds how long a caller may wait for space in the
	// outbound queue before the connection is treated as broken.
	enqueueTimeout = 5 * time.Second

	// sendQueueSize is the outbound frame queue capacity per connection.
	sendQueueSize = 64
)

// NotificationHandler receives unsolicited frames from the extension
// (monitor capture events). It must not block.
type NotificationHandler func(action string, data map[string]any)

// Bridge owns the single extension connection slot and the pending-call
// table. It is safe for concurrent use by any number of tool handlers.
type Bridge struct {
	mu      sync.Mutex
	conn    *wsConn
	pending map[string]*waiter

	notify       NotificationHandler
	onDisconnect func()

	upgrader     websocket.Upgrader
	pingInterval time.Duration

	totalCalls  atomic.Int64
	connectedAt time.Time
	remoteAddr  string
}

// wsConn bundles one accepted WebSocket with its outbound queue. The done
// channel closes exactly once when the connection is torn down.
type wsConn struct {
	ws        *websocket.Conn
	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func (c *wsConn) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.ws.Close()
	})
}

type callResult struct {
	data map[string]any
	err  error
}

// waiter is a one-shot completion handle parked on a request id.
type waiter struct {
	action string
	ch     chan callResult
}

// New creates a Bridge. A pingInterval of zero disables liveness pings.
func New(pingInterval time.Duration) *Bridge {
	return &Bridge{
		pending:      make(map[string]*waiter),
		pingInterval: pingInterval,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  64 * 1024,
			WriteBufferSize: 64 * 1024,
		},
	}
}

// OnNotification registers the handler for unsolicited extension frames.
func (b *Bridge) OnNotification(fn NotificationHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.notify = fn
}

// OnDisconnect registers a hook invoked after the connection slot transitions
// to idle and all waiters have been failed.
func (b *Bridge) OnDisconnect(fn func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onDisconnect = fn
}

// ServeWS is the HTTP handler for the extension endpoint. A successful
// handshake replaces any incumbent connection.
func (b *Bridge) ServeWS(w http.ResponseWriter, r *http.Request) {
	ws, err := b.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warnf("WebSocket upgrade failed from %s: %v", r.RemoteAddr, err)
		return
	}
	b.adopt(ws, r.RemoteAddr)
}

// adopt promotes a freshly accepted connection to the active slot. The
// incumbent, if any, is closed gracefully and all of its outstanding waiters
// fail with disconnected before the new connection serves traffic.
func (b *Bridge) adopt(ws *websocket.Conn, remoteAddr string) {
	c := &wsConn{
		ws:   ws,
		send: make(chan []byte, sendQueueSize),
		done: make(chan struct{}),
	}

	b.mu.Lock()
	old := b.conn
	if old != nil {
		b.failAllLocked(errors.NewDisconnectedError("extension connection replaced"))
	}
	b.conn = c
	b.connectedAt = time.Now()
	b.remoteAddr = remoteAddr
	b.mu.Unlock()

	if old != nil {
		logger.Infof("Replacing extension connection: closing incumbent, adopting %s", remoteAddr)
		old.ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "replaced by new connection"),
			time.Now().Add(time.Second))
		old.close()
	} else {
		logger.Infof("Extension connected from %s", remoteAddr)
	}

	go b.writeLoop(c)
	go b.readLoop(c)
	if b.pingInterval > 0 {
		go b.pingLoop(c)
	}
}

// teardown releases the slot if c is still the active connection and fails
// all waiters. Safe to call multiple times and from any goroutine.
func (b *Bridge) teardown(c *wsConn) {
	b.mu.Lock()
	wasActive := b.conn == c
	var hook func()
	if wasActive {
		b.conn = nil
		b.remoteAddr = ""
		b.failAllLocked(errors.NewDisconnectedError("extension connection lost"))
		hook = b.onDisconnect
	}
	b.mu.Unlock()

	c.close()

	if wasActive {
		logger.Info("Extension disconnected; waiting for a new connection")
		if hook != nil {
			hook()
		}
	}
}

// failAllLocked completes every pending waiter with err. Callers hold b.mu.
func (b *Bridge) failAllLocked(err *errors.Error) {
	for id, w := range b.pending {
		delete(b.pending, id)
		w.ch <- callResult{err: err}
	}
}

func (b *Bridge) readLoop(c *wsConn) {
	defer b.teardown(c)
	for {
		_, raw, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Warnf("Extension read error: %v", err)
			}
			return
		}
		env, err := protocol.ParseEnvelope(raw)
		if err != nil {
			logger.Warnf("Dropping inbound frame: %v", err)
			continue
		}
		b.route(env)
	}
}

func (b *Bridge) writeLoop(c *wsConn) {
	for {
		select {
		case msg := <-c.send:
			c.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.ws.WriteMessage(websocket.TextMessage, msg); err != nil {
				logger.Warnf("Extension write failed, closing connection: %v", err)
				b.teardown(c)
				return
			}
		case <-c.done:
			return
		}
	}
}

// pingLoop sends catalog ping requests at the configured interval. A failed
// ping is informational only; transport errors already tear the connection
// down through the read and write loops.
func (b *Bridge) pingLoop(c *wsConn) {
	ticker := time.NewTicker(b.pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if _, err := b.call(protocol.ActionPing, nil, b.pingInterval, nil); err != nil {
				logger.Debugf("Ping failed: %v", err)
			}
		case <-c.done:
			return
		}
	}
}

// route delivers one inbound frame: responses and errors complete waiters,
// monitor notifications go to the registered handler, everything else is
// logged and dropped.
func (b *Bridge) route(env *protocol.Envelope) {
	switch env.Type {
	case protocol.TypeResponse, protocol.TypeError:
		b.complete(env)
	case protocol.TypeRequest:
		if protocol.IsMonitorNotification(env.Action) {
			b.mu.Lock()
			notify := b.notify
			b.mu.Unlock()
			if notify != nil {
				notify(env.Action, env.Data)
				return
			}
		}
		logger.Warnf("Dropping unexpected request frame from extension: action=%q id=%s", env.Action, env.ID)
	}
}

// complete resolves the waiter registered for env.ID. The id is the sole
// correlation key; an action mismatch completes the call anyway but is
// recorded as a warning. Late or duplicate replies are discarded.
func (b *Bridge) complete(env *protocol.Envelope) {
	b.mu.Lock()
	w := b.pending[env.ID]
	delete(b.pending, env.ID)
	b.mu.Unlock()

	if w == nil {
		logger.Debugf("Discarding reply with no waiter: id=%s action=%q", env.ID, env.Action)
		return
	}

	if env.Type == protocol.TypeError {
		ed := env.ErrorData()
		w.ch <- callResult{err: errors.NewExtensionError(ed.Code, ed.Message)}
		return
	}

	if env.Action != w.action {
		logger.Warnf("Response action %q does not match expected %q for id %s", env.Action, w.action, env.ID)
	}
	w.ch <- callResult{data: env.Data}
}

// Connected reports whether an extension connection is active.
func (b *Bridge) Connected() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.conn != nil
}
