package mcptools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/foxmcp/foxmcp/pkg/protocol"
)

func formatHistoryItems(header string, items []map[string]any) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%d found):", header, len(items))
	for _, item := range items {
		b.WriteString("\n- ")
		b.WriteString(formatHistoryItem(item))
	}
	return b.String()
}

func (h *Handler) historyQuery(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := struct {
		Query      string `json:"query"`
		MaxResults *int   `json:"max_results,omitempty"`
	}{}
	if err := request.BindArguments(&args); err != nil {
		return bindError(err), nil
	}
	if args.Query == "" {
		return invalidArgs("query is required and must be non-empty"), nil
	}
	maxResults := 50
	if args.MaxResults != nil {
		maxResults = *args.MaxResults
	}
	if maxResults < 1 {
		return invalidArgs("max_results must be positive, got %d", maxResults), nil
	}

	// The extension reads the key "query"; "text" would be silently ignored.
	data, err := h.dispatcher.Call(ctx, protocol.ActionHistoryQuery, map[string]any{
		"query":      args.Query,
		"maxResults": maxResults,
	}, 0)
	if err != nil {
		return errResult(err), nil
	}
	return mcp.NewToolResultText(formatHistoryItems("History results", getList(data, "items"))), nil
}

func (h *Handler) historyGetRecent(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := struct {
		Count *int `json:"count,omitempty"`
	}{}
	if err := request.BindArguments(&args); err != nil {
		return bindError(err), nil
	}
	count := 10
	if args.Count != nil {
		count = *args.Count
	}
	if count < 1 {
		return invalidArgs("count must be positive, got %d", count), nil
	}

	data, err := h.dispatcher.Call(ctx, protocol.ActionHistoryRecent, map[string]any{"count": count}, 0)
	if err != nil {
		return errResult(err), nil
	}
	return mcp.NewToolResultText(formatHistoryItems("Recent history", getList(data, "items"))), nil
}

func (h *Handler) historyDeleteItem(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := struct {
		URL string `json:"url"`
	}{}
	if err := request.BindArguments(&args); err != nil {
		return bindError(err), nil
	}
	if args.URL == "" {
		return invalidArgs("url is required"), nil
	}

	if _, err := h.dispatcher.Call(ctx, protocol.ActionHistoryDeleteItem, map[string]any{"url": args.URL}, 0); err != nil {
		return errResult(err), nil
	}
	return mcp.NewToolResultText("Deleted history item: " + args.URL), nil
}
