// Package monitor tracks live web-request monitoring sessions. The extension
// observes browser network activity and streams capture events to the bridge;
// this registry holds the per-session state between the start and stop calls.
//
// Everything here is in-memory on purpose: callers that need durable capture
// data save bodies to disk through the requests_get_content tool.
package monitor

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/foxmcp/foxmcp/pkg/errors"
	"github.com/foxmcp/foxmcp/pkg/logger"
)

// DefaultCaptureCap bounds the per-session capture buffer. Oldest summaries
// are evicted when the cap is reached.
const DefaultCaptureCap = 1000

// Capture is one captured request summary as reported by the extension.
type Capture struct {
	RequestID   string  `json:"request_id"`
	Timestamp   string  `json:"timestamp"`
	URL         string  `json:"url"`
	Method      string  `json:"method"`
	StatusCode  int     `json:"status_code"`
	DurationMS  float64 `json:"duration_ms"`
	RequestSize int64   `json:"request_size"`
	RespSize    int64   `json:"response_size"`
	ContentType string  `json:"content_type"`
	TabID       int     `json:"tab_id"`
}

// Content is the full request/response content for one captured request,
// cached when a capture notification inlines bodies.
type Content struct {
	RequestHeaders  map[string]any `json:"request_headers,omitempty"`
	ResponseHeaders map[string]any `json:"response_headers,omitempty"`
	RequestBody     string         `json:"request_body,omitempty"`
	ResponseBody    string         `json:"response_body,omitempty"`
	BodiesBinary    bool           `json:"bodies_binary,omitempty"`
}

// Session is one active monitoring session.
type Session struct {
	ID          string
	URLPatterns []string
	Options     map[string]any
	TabID       *int
	StartedAt   time.Time

	captures   []Capture
	content    map[string]Content
	total      int64
	totalBytes int64
}

// Stats summarizes a session at stop time.
type Stats struct {
	MonitorID             string  `json:"monitor_id"`
	DurationSeconds       float64 `json:"duration_seconds"`
	TotalRequestsCaptured int64   `json:"total_requests_captured"`
	TotalDataSize         int64   `json:"total_data_size"`
}

// Registry holds all live sessions. Safe for concurrent use.
type Registry struct {
	mu         sync.Mutex
	sessions   map[string]*Session
	captureCap int
}

// NewRegistry creates a registry with the given per-session capture cap;
// zero means DefaultCaptureCap.
func NewRegistry(captureCap int) *Registry {
	if captureCap <= 0 {
		captureCap = DefaultCaptureCap
	}
	return &Registry{
		sessions:   make(map[string]*Session),
		captureCap: captureCap,
	}
}

// Start validates the configuration and records a new session. The WebSocket
// exchange with the extension belongs to the caller; a session only becomes
// visible here once the extension has acknowledged it.
func (r *Registry) Start(urlPatterns []string, options map[string]any, tabID *int) (*Session, error) {
	if len(urlPatterns) == 0 {
		return nil, errors.NewInvalidArgumentError("url_patterns must be a non-empty array", nil)
	}
	for i, p := range urlPatterns {
		if p == "" {
			return nil, errors.NewInvalidArgumentError(fmt.Sprintf("url_patterns[%d] is empty", i), nil)
		}
	}

	s := &Session{
		ID:          "mon_" + uuid.NewString(),
		URLPatterns: urlPatterns,
		Options:     options,
		TabID:       tabID,
		StartedAt:   time.Now(),
		content:     make(map[string]Content),
	}

	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()

	logger.Infow("Monitor session started", "monitor_id", s.ID, "patterns", urlPatterns)
	return s, nil
}

// HandleNotification ingests one requests.request_captured frame. Summaries
// are appended in arrival order; the oldest entries are evicted once the
// session buffer is full. Unknown monitor ids are logged and dropped (the
// session may have just been stopped).
func (r *Registry) HandleNotification(_ string, data map[string]any) {
	monitorID, _ := data["monitor_id"].(string)
	reqData, _ := data["request"].(map[string]any)
	if monitorID == "" || reqData == nil {
		logger.Warn("Dropping capture notification without monitor_id or request")
		return
	}

	summary := captureFrom(reqData)

	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.sessions[monitorID]
	if s == nil {
		logger.Debugf("Dropping capture for unknown monitor %s", monitorID)
		return
	}

	s.captures = append(s.captures, summary)
	if len(s.captures) > r.captureCap {
		evict := len(s.captures) - r.captureCap
		s.captures = append([]Capture(nil), s.captures[evict:]...)
	}
	s.total++
	s.totalBytes += summary.RequestSize + summary.RespSize

	if content, ok := contentFrom(reqData); ok {
		s.content[summary.RequestID] = content
	}
}

// List returns the summaries currently held for the session, in arrival
// order.
func (r *Registry) List(monitorID string) ([]Capture, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.sessions[monitorID]
	if s == nil {
		return nil, errors.NewNotFoundError(fmt.Sprintf("no monitor session %s", monitorID), nil)
	}
	out := make([]Capture, len(s.captures))
	copy(out, s.captures)
	return out, nil
}

// CaptureCount returns the number of summaries ingested so far, including
// evicted ones. Used by the stop-monitoring drain loop.
func (r *Registry) CaptureCount(monitorID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.sessions[monitorID]
	if s == nil {
		return 0, errors.NewNotFoundError(fmt.Sprintf("no monitor session %s", monitorID), nil)
	}
	return s.total, nil
}

// Content returns the cached content for a captured request, if a capture
// notification inlined it.
func (r *Registry) Content(monitorID, requestID string) (Content, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.sessions[monitorID]
	if s == nil {
		return Content{}, false, errors.NewNotFoundError(fmt.Sprintf("no monitor session %s", monitorID), nil)
	}
	c, ok := s.content[requestID]
	return c, ok, nil
}

// Get returns the session record.
func (r *Registry) Get(monitorID string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.sessions[monitorID]
	if s == nil {
		return nil, errors.NewNotFoundError(fmt.Sprintf("no monitor session %s", monitorID), nil)
	}
	return s, nil
}

// Stop removes the session and returns its final statistics. Subsequent
// lookups of the same id fail not_found.
func (r *Registry) Stop(monitorID string) (Stats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.sessions[monitorID]
	if s == nil {
		return Stats{}, errors.NewNotFoundError(fmt.Sprintf("no monitor session %s", monitorID), nil)
	}
	delete(r.sessions, monitorID)

	stats := Stats{
		MonitorID:             monitorID,
		DurationSeconds:       time.Since(s.StartedAt).Seconds(),
		TotalRequestsCaptured: s.total,
		TotalDataSize:         s.totalBytes,
	}
	logger.Infow("Monitor session stopped", "monitor_id", monitorID,
		"total_requests", stats.TotalRequestsCaptured, "total_bytes", stats.TotalDataSize)
	return stats, nil
}

// InvalidateAll drops every session. Called when the extension disconnects:
// the peer that was producing captures is gone, so the sessions are dead.
func (r *Registry) InvalidateAll() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.sessions) > 0 {
		logger.Warnf("Invalidating %d monitor session(s) after extension disconnect", len(r.sessions))
	}
	r.sessions = make(map[string]*Session)
}

func captureFrom(data map[string]any) Capture {
	c := Capture{}
	if v, ok := data["request_id"].(string); ok {
		c.RequestID = v
	}
	if v, ok := data["timestamp"].(string); ok {
		c.Timestamp = v
	}
	if v, ok := data["url"].(string); ok {
		c.URL = v
	}
	if v, ok := data["method"].(string); ok {
		c.Method = v
	}
	if v, ok := data["status_code"].(float64); ok {
		c.StatusCode = int(v)
	}
	if v, ok := data["duration_ms"].(float64); ok {
		c.DurationMS = v
	}
	if v, ok := data["request_size"].(float64); ok {
		c.RequestSize = int64(v)
	}
	if v, ok := data["response_size"].(float64); ok {
		c.RespSize = int64(v)
	}
	if v, ok := data["content_type"].(string); ok {
		c.ContentType = v
	}
	if v, ok := data["tab_id"].(float64); ok {
		c.TabID = int(v)
	}
	return c
}

func contentFrom(data map[string]any) (Content, bool) {
	var c Content
	found := false
	if v, ok := data["request_headers"].(map[string]any); ok {
		c.RequestHeaders = v
		found = true
	}
	if v, ok := data["response_headers"].(map[string]any); ok {
		c.ResponseHeaders = v
		found = true
	}
	if v, ok := data["request_body"].(string); ok {
		c.RequestBody = v
		found = true
	}
	if v, ok := data["response_body"].(string); ok {
		c.ResponseBody = v
		found = true
	}
	if v, ok := data["bodies_binary"].(bool); ok {
		c.BodiesBinary = v
	}
	return c, found
}
