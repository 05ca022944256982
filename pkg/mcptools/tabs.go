package mcptools

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/foxmcp/foxmcp/pkg/bridge"
	"github.com/foxmcp/foxmcp/pkg/errors"
	"github.com/foxmcp/foxmcp/pkg/protocol"
)

func (h *Handler) tabsList(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	data, err := h.dispatcher.Call(ctx, protocol.ActionTabsList, map[string]any{}, 0)
	if err != nil {
		return errResult(err), nil
	}

	tabs := getList(data, "tabs")
	var b strings.Builder
	fmt.Fprintf(&b, "Open tabs (%d found):", len(tabs))
	for _, tab := range tabs {
		b.WriteString("\n- ")
		b.WriteString(formatTab(tab))
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (h *Handler) tabsCreate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := struct {
		URL      string `json:"url"`
		Active   *bool  `json:"active,omitempty"`
		Pinned   bool   `json:"pinned,omitempty"`
		WindowID *int   `json:"window_id,omitempty"`
	}{}
	if err := request.BindArguments(&args); err != nil {
		return bindError(err), nil
	}
	if args.URL == "" {
		return invalidArgs("url is required"), nil
	}

	active := true
	if args.Active != nil {
		active = *args.Active
	}
	payload := map[string]any{
		"url":    args.URL,
		"active": active,
		"pinned": args.Pinned,
	}
	if args.WindowID != nil {
		payload["windowId"] = *args.WindowID
	}

	data, err := h.dispatcher.Call(ctx, protocol.ActionTabsCreate, payload, 0)
	if err != nil {
		return errResult(err), nil
	}
	tab, _ := data["tab"].(map[string]any)
	if tab == nil {
		tab = data
	}
	return mcp.NewToolResultText("Created tab: " + formatTab(tab)), nil
}

func (h *Handler) tabsClose(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := struct {
		TabID *int `json:"tab_id"`
	}{}
	if err := request.BindArguments(&args); err != nil {
		return bindError(err), nil
	}
	if args.TabID == nil {
		return invalidArgs("tab_id is required"), nil
	}

	if _, err := h.dispatcher.Call(ctx, protocol.ActionTabsClose, map[string]any{"tabId": *args.TabID}, 0); err != nil {
		return errResult(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Closed tab %d", *args.TabID)), nil
}

func (h *Handler) tabsSwitch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := struct {
		TabID *int `json:"tab_id"`
	}{}
	if err := request.BindArguments(&args); err != nil {
		return bindError(err), nil
	}
	if args.TabID == nil {
		return invalidArgs("tab_id is required"), nil
	}

	if _, err := h.dispatcher.Call(ctx, protocol.ActionTabsSwitch, map[string]any{"tabId": *args.TabID}, 0); err != nil {
		return errResult(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Switched to tab %d", *args.TabID)), nil
}

// screenshotSuffix maps an image format to the filename suffixes that count
// as already having the right extension.
func screenshotSuffix(format string) (suffix string, accepted []string) {
	if format == "jpeg" {
		return ".jpeg", []string{".jpeg", ".jpg"}
	}
	return ".png", []string{".png"}
}

func (h *Handler) tabsCaptureScreenshot(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := struct {
		Filename string `json:"filename,omitempty"`
		WindowID *int   `json:"window_id,omitempty"`
		Format   string `json:"format,omitempty"`
		Quality  *int   `json:"quality,omitempty"`
	}{}
	if err := request.BindArguments(&args); err != nil {
		return bindError(err), nil
	}

	format := args.Format
	if format == "" {
		format = "png"
	}
	if format != "png" && format != "jpeg" {
		return invalidArgs("format must be png or jpeg, got %q", format), nil
	}
	quality := 90
	if args.Quality != nil {
		quality = *args.Quality
	}
	if quality < 1 || quality > 100 {
		return invalidArgs("quality must be between 1 and 100, got %d", quality), nil
	}

	payload := map[string]any{"format": format, "quality": quality}
	if args.WindowID != nil {
		payload["windowId"] = *args.WindowID
	}

	data, err := h.dispatcher.Call(ctx, protocol.ActionTabsCaptureScreenshot, payload, bridge.ScreenshotTimeout)
	if err != nil {
		return errResult(err), nil
	}
	dataURL := getString(data, "dataUrl")
	if dataURL == "" {
		return errResult(errors.NewProtocolError("extension returned no screenshot data", nil)), nil
	}

	if args.Filename == "" {
		return mcp.NewToolResultText(dataURL), nil
	}

	path, err := saveDataURL(dataURL, args.Filename, format)
	if err != nil {
		return errResult(err), nil
	}
	return mcp.NewToolResultText("Screenshot saved to " + path), nil
}

// saveDataURL decodes a base64 data URL and writes it to filename, appending
// the format-appropriate suffix when the name lacks one.
func saveDataURL(dataURL, filename, format string) (string, error) {
	payload := dataURL
	if idx := strings.Index(dataURL, ","); idx >= 0 {
		payload = dataURL[idx+1:]
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", errors.NewProtocolError("screenshot data is not valid base64", err)
	}

	suffix, accepted := screenshotSuffix(format)
	hasSuffix := false
	lower := strings.ToLower(filename)
	for _, ext := range accepted {
		if strings.HasSuffix(lower, ext) {
			hasSuffix = true
			break
		}
	}
	path := filename
	if !hasSuffix {
		path += suffix
	}

	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return "", errors.NewIOError(fmt.Sprintf("writing screenshot to %s", path), err)
	}
	return path, nil
}
