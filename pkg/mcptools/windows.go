package mcptools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/foxmcp/foxmcp/pkg/protocol"
)

var windowTypes = map[string]bool{"normal": true, "popup": true, "panel": true}

var windowStates = map[string]bool{
	"normal": true, "minimized": true, "maximized": true, "fullscreen": true,
}

func (h *Handler) windowsList(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := struct {
		Populate *bool `json:"populate,omitempty"`
	}{}
	if err := request.BindArguments(&args); err != nil {
		return bindError(err), nil
	}
	populate := true
	if args.Populate != nil {
		populate = *args.Populate
	}

	data, err := h.dispatcher.Call(ctx, protocol.ActionWindowsList, map[string]any{"populate": populate}, 0)
	if err != nil {
		return errResult(err), nil
	}

	wins := getList(data, "windows")
	var b strings.Builder
	fmt.Fprintf(&b, "Open windows (%d found):", len(wins))
	for _, win := range wins {
		b.WriteString("\n- ")
		b.WriteString(formatWindow(win))
	}
	return mcp.NewToolResultText(b.String()), nil
}

// singleWindow handles the three get-one-window variants that differ only in
// action and whether a window_id is required.
func (h *Handler) singleWindow(ctx context.Context, action string, windowID *int, populate bool) (*mcp.CallToolResult, error) {
	payload := map[string]any{"populate": populate}
	if windowID != nil {
		payload["windowId"] = *windowID
	}

	data, err := h.dispatcher.Call(ctx, action, payload, 0)
	if err != nil {
		return errResult(err), nil
	}
	win, _ := data["window"].(map[string]any)
	if win == nil {
		win = data
	}
	return mcp.NewToolResultText(formatWindow(win)), nil
}

func (h *Handler) getWindow(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := struct {
		WindowID *int  `json:"window_id"`
		Populate *bool `json:"populate,omitempty"`
	}{}
	if err := request.BindArguments(&args); err != nil {
		return bindError(err), nil
	}
	if args.WindowID == nil {
		return invalidArgs("window_id is required"), nil
	}
	populate := true
	if args.Populate != nil {
		populate = *args.Populate
	}
	return h.singleWindow(ctx, protocol.ActionWindowsGet, args.WindowID, populate)
}

func (h *Handler) getCurrentWindow(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := struct {
		Populate *bool `json:"populate,omitempty"`
	}{}
	if err := request.BindArguments(&args); err != nil {
		return bindError(err), nil
	}
	populate := true
	if args.Populate != nil {
		populate = *args.Populate
	}
	return h.singleWindow(ctx, protocol.ActionWindowsGetCurrent, nil, populate)
}

func (h *Handler) getLastFocusedWindow(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := struct {
		Populate *bool `json:"populate,omitempty"`
	}{}
	if err := request.BindArguments(&args); err != nil {
		return bindError(err), nil
	}
	populate := true
	if args.Populate != nil {
		populate = *args.Populate
	}
	return h.singleWindow(ctx, protocol.ActionWindowsGetLastFocused, nil, populate)
}

func (h *Handler) createWindow(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := struct {
		URL        string `json:"url,omitempty"`
		WindowType string `json:"window_type,omitempty"`
		State      string `json:"state,omitempty"`
		Focused    *bool  `json:"focused,omitempty"`
		Width      *int   `json:"width,omitempty"`
		Height     *int   `json:"height,omitempty"`
		Top        *int   `json:"top,omitempty"`
		Left       *int   `json:"left,omitempty"`
		Incognito  bool   `json:"incognito,omitempty"`
	}{}
	if err := request.BindArguments(&args); err != nil {
		return bindError(err), nil
	}

	windowType := args.WindowType
	if windowType == "" {
		windowType = "normal"
	}
	if !windowTypes[windowType] {
		return invalidArgs("window_type must be one of normal, popup, panel; got %q", windowType), nil
	}
	state := args.State
	if state == "" {
		state = "normal"
	}
	if !windowStates[state] {
		return invalidArgs("state must be one of normal, minimized, maximized, fullscreen; got %q", state), nil
	}
	focused := true
	if args.Focused != nil {
		focused = *args.Focused
	}

	payload := map[string]any{
		"type":      windowType,
		"state":     state,
		"focused":   focused,
		"incognito": args.Incognito,
	}
	if args.URL != "" {
		payload["url"] = args.URL
	}
	for key, v := range map[string]*int{
		"width": args.Width, "height": args.Height, "top": args.Top, "left": args.Left,
	} {
		if v != nil {
			payload[key] = *v
		}
	}

	data, err := h.dispatcher.Call(ctx, protocol.ActionWindowsCreate, payload, 0)
	if err != nil {
		return errResult(err), nil
	}
	win, _ := data["window"].(map[string]any)
	if win == nil {
		win = data
	}
	return mcp.NewToolResultText("Created window: " + formatWindow(win)), nil
}

func (h *Handler) closeWindow(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return h.windowByID(ctx, request, protocol.ActionWindowsClose, "Closed")
}

func (h *Handler) focusWindow(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return h.windowByID(ctx, request, protocol.ActionWindowsFocus, "Focused")
}

func (h *Handler) windowByID(ctx context.Context, request mcp.CallToolRequest, action, verb string) (*mcp.CallToolResult, error) {
	args := struct {
		WindowID *int `json:"window_id"`
	}{}
	if err := request.BindArguments(&args); err != nil {
		return bindError(err), nil
	}
	if args.WindowID == nil {
		return invalidArgs("window_id is required"), nil
	}

	if _, err := h.dispatcher.Call(ctx, action, map[string]any{"windowId": *args.WindowID}, 0); err != nil {
		return errResult(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("%s window %d", verb, *args.WindowID)), nil
}

func (h *Handler) updateWindow(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := struct {
		WindowID *int   `json:"window_id"`
		State    string `json:"state,omitempty"`
		Focused  *bool  `json:"focused,omitempty"`
		Width    *int   `json:"width,omitempty"`
		Height   *int   `json:"height,omitempty"`
		Top      *int   `json:"top,omitempty"`
		Left     *int   `json:"left,omitempty"`
	}{}
	if err := request.BindArguments(&args); err != nil {
		return bindError(err), nil
	}
	if args.WindowID == nil {
		return invalidArgs("window_id is required"), nil
	}
	if args.State != "" && !windowStates[args.State] {
		return invalidArgs("state must be one of normal, minimized, maximized, fullscreen; got %q", args.State), nil
	}

	payload := map[string]any{"windowId": *args.WindowID}
	if args.State != "" {
		payload["state"] = args.State
	}
	if args.Focused != nil {
		payload["focused"] = *args.Focused
	}
	for key, v := range map[string]*int{
		"width": args.Width, "height": args.Height, "top": args.Top, "left": args.Left,
	} {
		if v != nil {
			payload[key] = *v
		}
	}
	if len(payload) == 1 {
		return invalidArgs("no update fields provided"), nil
	}

	if _, err := h.dispatcher.Call(ctx, protocol.ActionWindowsUpdate, payload, 0); err != nil {
		return errResult(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Updated window %d", *args.WindowID)), nil
}
