package mcptools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/foxmcp/foxmcp/pkg/protocol"
)

func (h *Handler) navigationGoToURL(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := struct {
		TabID *int   `json:"tab_id"`
		URL   string `json:"url"`
	}{}
	if err := request.BindArguments(&args); err != nil {
		return bindError(err), nil
	}
	if args.TabID == nil {
		return invalidArgs("tab_id is required"), nil
	}
	if args.URL == "" {
		return invalidArgs("url is required"), nil
	}

	payload := map[string]any{"tabId": *args.TabID, "url": args.URL}
	if _, err := h.dispatcher.Call(ctx, protocol.ActionNavigationGoToURL, payload, 0); err != nil {
		return errResult(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Tab %d navigated to %s", *args.TabID, args.URL)), nil
}

func (h *Handler) navigationBack(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return h.simpleNavigation(ctx, request, protocol.ActionNavigationBack, "went back")
}

func (h *Handler) navigationForward(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return h.simpleNavigation(ctx, request, protocol.ActionNavigationForward, "went forward")
}

func (h *Handler) simpleNavigation(ctx context.Context, request mcp.CallToolRequest, action, verb string) (*mcp.CallToolResult, error) {
	args := struct {
		TabID *int `json:"tab_id"`
	}{}
	if err := request.BindArguments(&args); err != nil {
		return bindError(err), nil
	}
	if args.TabID == nil {
		return invalidArgs("tab_id is required"), nil
	}

	if _, err := h.dispatcher.Call(ctx, action, map[string]any{"tabId": *args.TabID}, 0); err != nil {
		return errResult(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Tab %d %s", *args.TabID, verb)), nil
}

func (h *Handler) navigationReload(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := struct {
		TabID       *int `json:"tab_id"`
		BypassCache bool `json:"bypass_cache,omitempty"`
	}{}
	if err := request.BindArguments(&args); err != nil {
		return bindError(err), nil
	}
	if args.TabID == nil {
		return invalidArgs("tab_id is required"), nil
	}

	payload := map[string]any{"tabId": *args.TabID, "bypassCache": args.BypassCache}
	if _, err := h.dispatcher.Call(ctx, protocol.ActionNavigationReload, payload, 0); err != nil {
		return errResult(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Tab %d reloaded", *args.TabID)), nil
}
