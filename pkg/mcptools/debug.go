package mcptools

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
)

func (h *Handler) debugWebSocketStatus(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	status := h.dispatcher.Status()

	result := map[string]any{
		"connected":     status.Connected,
		"pending_calls": status.PendingCalls,
		"total_calls":   status.TotalCalls,
	}
	if status.Connected {
		result["remote_addr"] = status.RemoteAddr
		result["connected_at"] = status.ConnectedAt.UTC().Format(time.RFC3339)
		result["uptime_seconds"] = int64(time.Since(status.ConnectedAt).Seconds())
	}
	return mcp.NewToolResultStructuredOnly(result), nil
}
