package bridge

import (
	"context"
	"fmt"
	"time"

	"github.com/foxmcp/foxmcp/pkg/errors"
	"github.com/foxmcp/foxmcp/pkg/logger"
	"github.com/foxmcp/foxmcp/pkg/protocol"
)

// Call timeouts. Handlers pass zero to get the default; long-running actions
// (screenshot capture, script execution) use the larger bounds.
const (
	DefaultCallTimeout = 15 * time.Second
	ScreenshotTimeout  = 60 * time.Second
	ScriptCallTimeout  = 45 * time.Second
)

// Call sends one request frame to the extension and awaits the matching
// reply. Exactly one of the following is returned for every dispatched call:
// the response data, an extension error, a timeout, or disconnected. In all
// exit paths the waiter is removed, so a late reply is discarded silently.
func (b *Bridge) Call(ctx context.Context, action string, data map[string]any, timeout time.Duration) (map[string]any, error) {
	return b.call(action, data, timeout, ctx.Done())
}

func (b *Bridge) call(action string, data map[string]any, timeout time.Duration, cancel <-chan struct{}) (map[string]any, error) {
	if timeout <= 0 {
		timeout = DefaultCallTimeout
	}

	env, err := protocol.NewRequest(action, data)
	if err != nil {
		return nil, err
	}
	raw, err := env.Marshal()
	if err != nil {
		return nil, errors.NewProtocolError(fmt.Sprintf("encoding %s request", action), err)
	}

	w := &waiter{action: action, ch: make(chan callResult, 1)}

	b.mu.Lock()
	c := b.conn
	if c == nil {
		b.mu.Unlock()
		return nil, errors.NewDisconnectedError("no extension connected")
	}
	b.pending[env.ID] = w
	b.mu.Unlock()

	b.totalCalls.Add(1)

	// Enqueue for the single writer goroutine. A queue that stays full past
	// the enqueue timeout means the extension stopped draining; the
	// connection is broken, not slow.
	enqueue := time.NewTimer(enqueueTimeout)
	defer enqueue.Stop()
	select {
	case c.send <- raw:
	case <-c.done:
		b.remove(env.ID)
		return nil, errors.NewDisconnectedError("extension connection lost")
	case <-enqueue.C:
		b.remove(env.ID)
		logger.Warnf("Outbound queue stalled for %s; treating connection as broken", action)
		b.teardown(c)
		return nil, errors.NewDisconnectedError("extension stopped reading")
	}

	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	select {
	case res := <-w.ch:
		return res.data, res.err
	case <-deadline.C:
		b.remove(env.ID)
		return nil, errors.NewTimeoutError(fmt.Sprintf("%s: no response within %s", action, timeout))
	case <-cancel:
		b.remove(env.ID)
		return nil, errors.NewTimeoutError(fmt.Sprintf("%s: call canceled by client", action))
	}
}

// remove drops the waiter for id if it is still registered. Used by exit
// paths that resolve without a reply; a concurrent complete() may have won
// the race, in which case there is nothing to do.
func (b *Bridge) remove(id string) {
	b.mu.Lock()
	delete(b.pending, id)
	b.mu.Unlock()
}
