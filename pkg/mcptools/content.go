package mcptools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/foxmcp/foxmcp/pkg/bridge"
	"github.com/foxmcp/foxmcp/pkg/errors"
	"github.com/foxmcp/foxmcp/pkg/protocol"
)

func (h *Handler) contentGetText(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := struct {
		TabID     *int `json:"tab_id"`
		MaxLength *int `json:"max_length,omitempty"`
	}{}
	if err := request.BindArguments(&args); err != nil {
		return bindError(err), nil
	}
	if args.TabID == nil {
		return invalidArgs("tab_id is required"), nil
	}
	if args.MaxLength != nil && *args.MaxLength < 0 {
		return invalidArgs("max_length must not be negative, got %d", *args.MaxLength), nil
	}

	data, err := h.dispatcher.Call(ctx, protocol.ActionContentGetText, map[string]any{"tabId": *args.TabID}, 0)
	if err != nil {
		return errResult(err), nil
	}

	text := getString(data, "text")
	if args.MaxLength != nil {
		text = truncateRunes(text, *args.MaxLength)
	}
	return mcp.NewToolResultText(text), nil
}

func (h *Handler) contentGetHTML(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := struct {
		TabID *int `json:"tab_id"`
	}{}
	if err := request.BindArguments(&args); err != nil {
		return bindError(err), nil
	}
	if args.TabID == nil {
		return invalidArgs("tab_id is required"), nil
	}

	data, err := h.dispatcher.Call(ctx, protocol.ActionContentGetHTML, map[string]any{"tabId": *args.TabID}, 0)
	if err != nil {
		return errResult(err), nil
	}
	return mcp.NewToolResultText(getString(data, "html")), nil
}

// executeScript sends script verbatim and returns whatever the extension
// reports, JSON-encoded. The bridge never rewrites user code.
func (h *Handler) executeScript(ctx context.Context, tabID int, script string) (*mcp.CallToolResult, error) {
	data, err := h.dispatcher.Call(ctx, protocol.ActionContentExecuteScript, map[string]any{
		"tabId":  tabID,
		"script": script,
	}, bridge.ScriptCallTimeout)
	if err != nil {
		return errResult(err), nil
	}

	encoded, err := json.Marshal(data["result"])
	if err != nil {
		return errResult(errors.NewProtocolError("script result is not JSON-encodable", err)), nil
	}
	return mcp.NewToolResultText(string(encoded)), nil
}

func (h *Handler) contentExecuteScript(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := struct {
		TabID  *int   `json:"tab_id"`
		Script string `json:"script"`
	}{}
	if err := request.BindArguments(&args); err != nil {
		return bindError(err), nil
	}
	if args.TabID == nil {
		return invalidArgs("tab_id is required"), nil
	}
	if args.Script == "" {
		return invalidArgs("script is required"), nil
	}

	return h.executeScript(ctx, *args.TabID, args.Script)
}

// contentExecutePredefined is a two-stage composition: the local executor
// produces the JavaScript, then the extension runs it. Failures identify the
// failing stage.
func (h *Handler) contentExecutePredefined(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := struct {
		TabID      *int   `json:"tab_id"`
		ScriptName string `json:"script_name"`
		ScriptArgs string `json:"script_args,omitempty"`
	}{}
	if err := request.BindArguments(&args); err != nil {
		return bindError(err), nil
	}
	if args.TabID == nil {
		return invalidArgs("tab_id is required"), nil
	}
	if args.ScriptName == "" {
		return invalidArgs("script_name is required"), nil
	}

	code, err := h.scripts.Run(ctx, args.ScriptName, args.ScriptArgs)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("predefined script stage failed: %v", err)), nil
	}

	result, _ := h.executeScript(ctx, *args.TabID, code)
	if result.IsError {
		return mcp.NewToolResultError(fmt.Sprintf("extension execution stage failed after script %s produced code: %s",
			args.ScriptName, firstText(result))), nil
	}
	return result, nil
}

// firstText extracts the first text content of a tool result, for error
// rewrapping.
func firstText(result *mcp.CallToolResult) string {
	for _, content := range result.Content {
		if tc, ok := content.(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}
