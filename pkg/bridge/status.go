package bridge

import "time"

// Status is a point-in-time snapshot of the extension connection, surfaced
// by the debug_websocket_status tool.
type Status struct {
	Connected    bool      `json:"connected"`
	RemoteAddr   string    `json:"remote_addr,omitempty"`
	ConnectedAt  time.Time `json:"connected_at,omitempty"`
	PendingCalls int       `json:"pending_calls"`
	TotalCalls   int64     `json:"total_calls"`
}

// Status returns connection diagnostics.
func (b *Bridge) Status() Status {
	b.mu.Lock()
	defer b.mu.Unlock()

	s := Status{
		Connected:    b.conn != nil,
		PendingCalls: len(b.pending),
		TotalCalls:   b.totalCalls.Load(),
	}
	if b.conn != nil {
		s.RemoteAddr = b.remoteAddr
		s.ConnectedAt = b.connectedAt
	}
	return s
}
