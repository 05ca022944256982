package mcptools

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/foxmcp/foxmcp/pkg/errors"
	"github.com/foxmcp/foxmcp/pkg/monitor"
	"github.com/foxmcp/foxmcp/pkg/protocol"
)

const drainPollInterval = 250 * time.Millisecond

func (h *Handler) requestsStartMonitoring(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := struct {
		URLPatterns []string       `json:"url_patterns"`
		Options     map[string]any `json:"options,omitempty"`
		TabID       *int           `json:"tab_id,omitempty"`
	}{}
	if err := request.BindArguments(&args); err != nil {
		return bindError(err), nil
	}

	session, err := h.monitors.Start(args.URLPatterns, args.Options, args.TabID)
	if err != nil {
		return errResult(err), nil
	}

	payload := map[string]any{
		"monitor_id":   session.ID,
		"url_patterns": session.URLPatterns,
	}
	if session.Options != nil {
		payload["options"] = session.Options
	}
	if session.TabID != nil {
		payload["tab_id"] = *session.TabID
	}

	if _, err := h.dispatcher.Call(ctx, protocol.ActionRequestsStartMonitoring, payload, 0); err != nil {
		// The extension never acknowledged; the session must not linger.
		h.monitors.Stop(session.ID)
		return errResult(err), nil
	}

	return mcp.NewToolResultStructuredOnly(map[string]any{
		"monitor_id": session.ID,
		"status":     "active",
		"started_at": session.StartedAt.UTC().Format(time.RFC3339),
	}), nil
}

func (h *Handler) requestsStopMonitoring(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := struct {
		MonitorID    string   `json:"monitor_id"`
		DrainTimeout *float64 `json:"drain_timeout,omitempty"`
	}{}
	if err := request.BindArguments(&args); err != nil {
		return bindError(err), nil
	}
	if args.MonitorID == "" {
		return invalidArgs("monitor_id is required"), nil
	}
	drainTimeout := 5 * time.Second
	if args.DrainTimeout != nil {
		if *args.DrainTimeout < 0 {
			return invalidArgs("drain_timeout must not be negative"), nil
		}
		drainTimeout = time.Duration(*args.DrainTimeout * float64(time.Second))
	}

	if _, err := h.monitors.Get(args.MonitorID); err != nil {
		return errResult(err), nil
	}

	if _, err := h.dispatcher.Call(ctx, protocol.ActionRequestsStopMonitoring,
		map[string]any{"monitor_id": args.MonitorID}, 0); err != nil {
		return errResult(err), nil
	}

	h.drainCaptures(ctx, args.MonitorID, drainTimeout)

	stats, err := h.monitors.Stop(args.MonitorID)
	if err != nil {
		return errResult(err), nil
	}
	return mcp.NewToolResultStructuredOnly(stats), nil
}

// drainCaptures waits for trailing capture frames after the extension was
// told to stop: poll until the count is stable for two consecutive polls or
// the timeout elapses.
func (h *Handler) drainCaptures(ctx context.Context, monitorID string, drainTimeout time.Duration) {
	deadline := time.Now().Add(drainTimeout)
	last := int64(-1)
	stable := 0
	for time.Now().Before(deadline) {
		count, err := h.monitors.CaptureCount(monitorID)
		if err != nil {
			return
		}
		if count == last {
			stable++
			if stable >= 2 {
				return
			}
		} else {
			stable = 0
			last = count
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(drainPollInterval):
		}
	}
}

func (h *Handler) requestsListCaptured(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := struct {
		MonitorID string `json:"monitor_id"`
	}{}
	if err := request.BindArguments(&args); err != nil {
		return bindError(err), nil
	}
	if args.MonitorID == "" {
		return invalidArgs("monitor_id is required"), nil
	}

	captures, err := h.monitors.List(args.MonitorID)
	if err != nil {
		return errResult(err), nil
	}
	return mcp.NewToolResultStructuredOnly(map[string]any{
		"monitor_id": args.MonitorID,
		"count":      len(captures),
		"requests":   captures,
	}), nil
}

func (h *Handler) requestsGetContent(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := struct {
		MonitorID          string `json:"monitor_id"`
		RequestID          string `json:"request_id"`
		IncludeBinary      bool   `json:"include_binary,omitempty"`
		SaveRequestBodyTo  string `json:"save_request_body_to,omitempty"`
		SaveResponseBodyTo string `json:"save_response_body_to,omitempty"`
	}{}
	if err := request.BindArguments(&args); err != nil {
		return bindError(err), nil
	}
	if args.MonitorID == "" {
		return invalidArgs("monitor_id is required"), nil
	}
	if args.RequestID == "" {
		return invalidArgs("request_id is required"), nil
	}

	content, cached, err := h.monitors.Content(args.MonitorID, args.RequestID)
	if err != nil {
		return errResult(err), nil
	}
	if !cached {
		data, err := h.dispatcher.Call(ctx, protocol.ActionRequestsGetContent, map[string]any{
			"monitor_id":     args.MonitorID,
			"request_id":     args.RequestID,
			"include_binary": args.IncludeBinary,
		}, 0)
		if err != nil {
			return errResult(err), nil
		}
		content = contentFromPayload(data)
	}

	result := map[string]any{
		"monitor_id": args.MonitorID,
		"request_id": args.RequestID,
	}
	if content.RequestHeaders != nil {
		result["request_headers"] = content.RequestHeaders
	}
	if content.ResponseHeaders != nil {
		result["response_headers"] = content.ResponseHeaders
	}

	var ioErrs []string
	reqBody, saved := h.placeBody(content.RequestBody, content.BodiesBinary, args.SaveRequestBodyTo, args.IncludeBinary, &ioErrs)
	if saved != "" {
		result["request_body_saved_to"] = saved
	} else if reqBody != nil {
		result["request_body"] = *reqBody
	}
	respBody, saved := h.placeBody(content.ResponseBody, content.BodiesBinary, args.SaveResponseBodyTo, args.IncludeBinary, &ioErrs)
	if saved != "" {
		result["response_body_saved_to"] = saved
	} else if respBody != nil {
		result["response_body"] = *respBody
	}
	if content.BodiesBinary {
		result["bodies_binary"] = true
	}
	if len(ioErrs) > 0 {
		// Structured tools report partial failure alongside whatever data
		// could be assembled.
		result["error"] = ioErrs
	}

	return mcp.NewToolResultStructuredOnly(result), nil
}

// placeBody decides where one body goes: written to disk when a save path is
// given, inlined when textual or include_binary is set, omitted otherwise.
// Returns the inline value (nil to omit) and the saved-to path.
func (h *Handler) placeBody(body string, binary bool, savePath string, includeBinary bool, ioErrs *[]string) (*string, string) {
	if body == "" {
		return nil, ""
	}
	if savePath != "" {
		raw := []byte(body)
		if binary {
			decoded, err := base64.StdEncoding.DecodeString(body)
			if err != nil {
				*ioErrs = append(*ioErrs, errors.NewIOError("body is not valid base64", err).Error())
				return nil, ""
			}
			raw = decoded
		}
		if err := os.WriteFile(savePath, raw, 0o644); err != nil {
			*ioErrs = append(*ioErrs, errors.NewIOError(fmt.Sprintf("saving body to %s", savePath), err).Error())
			return nil, ""
		}
		return nil, savePath
	}
	if binary && !includeBinary {
		return nil, ""
	}
	return &body, ""
}

// contentFromPayload maps a requests.get_content response onto the cached
// content shape.
func contentFromPayload(data map[string]any) monitor.Content {
	var c monitor.Content
	if v, ok := data["request_headers"].(map[string]any); ok {
		c.RequestHeaders = v
	}
	if v, ok := data["response_headers"].(map[string]any); ok {
		c.ResponseHeaders = v
	}
	c.RequestBody = getString(data, "request_body")
	c.ResponseBody = getString(data, "response_body")
	c.BodiesBinary = getBool(data, "bodies_binary")
	return c
}
