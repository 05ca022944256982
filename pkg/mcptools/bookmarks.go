package mcptools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/foxmcp/foxmcp/pkg/protocol"
)

func (h *Handler) bookmarksList(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := struct {
		FolderID string `json:"folder_id,omitempty"`
	}{}
	if err := request.BindArguments(&args); err != nil {
		return bindError(err), nil
	}

	payload := map[string]any{}
	if args.FolderID != "" {
		payload["folderId"] = args.FolderID
	}

	data, err := h.dispatcher.Call(ctx, protocol.ActionBookmarksList, payload, 0)
	if err != nil {
		return errResult(err), nil
	}

	nodes := getList(data, "bookmarks")
	if len(nodes) == 0 {
		return mcp.NewToolResultText("No bookmarks found."), nil
	}
	var b strings.Builder
	b.WriteString("Bookmarks:\n")
	formatBookmarkTree(&b, nodes, 0)
	return mcp.NewToolResultText(strings.TrimRight(b.String(), "\n")), nil
}

func (h *Handler) bookmarksSearch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := struct {
		Query string `json:"query"`
	}{}
	if err := request.BindArguments(&args); err != nil {
		return bindError(err), nil
	}
	if args.Query == "" {
		return invalidArgs("query is required and must be non-empty"), nil
	}

	data, err := h.dispatcher.Call(ctx, protocol.ActionBookmarksSearch, map[string]any{"query": args.Query}, 0)
	if err != nil {
		return errResult(err), nil
	}

	nodes := getList(data, "bookmarks")
	var b strings.Builder
	fmt.Fprintf(&b, "Bookmark matches for %q (%d found):", args.Query, len(nodes))
	for _, node := range nodes {
		fmt.Fprintf(&b, "\n- 🔖 %s - %s (id: %s, parent: %s)",
			getString(node, "title"), getString(node, "url"),
			getString(node, "id"), getString(node, "parentId"))
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (h *Handler) bookmarksCreate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := struct {
		Title    string `json:"title"`
		URL      string `json:"url"`
		ParentID string `json:"parent_id,omitempty"`
	}{}
	if err := request.BindArguments(&args); err != nil {
		return bindError(err), nil
	}
	if args.Title == "" {
		return invalidArgs("title is required"), nil
	}
	if args.URL == "" {
		return invalidArgs("url is required"), nil
	}

	payload := map[string]any{"title": args.Title, "url": args.URL}
	if args.ParentID != "" {
		payload["parentId"] = args.ParentID
	}

	data, err := h.dispatcher.Call(ctx, protocol.ActionBookmarksCreate, payload, 0)
	if err != nil {
		return errResult(err), nil
	}
	node, _ := data["bookmark"].(map[string]any)
	if node == nil {
		node = data
	}
	return mcp.NewToolResultText(fmt.Sprintf("Created bookmark 🔖 %s - %s (id: %s)",
		getString(node, "title"), getString(node, "url"), getString(node, "id"))), nil
}

func (h *Handler) bookmarksCreateFolder(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := struct {
		Title    string `json:"title"`
		ParentID string `json:"parent_id,omitempty"`
	}{}
	if err := request.BindArguments(&args); err != nil {
		return bindError(err), nil
	}
	if args.Title == "" {
		return invalidArgs("title is required"), nil
	}

	payload := map[string]any{"title": args.Title}
	if args.ParentID != "" {
		payload["parentId"] = args.ParentID
	}

	data, err := h.dispatcher.Call(ctx, protocol.ActionBookmarksCreateFolder, payload, 0)
	if err != nil {
		return errResult(err), nil
	}
	node, _ := data["bookmark"].(map[string]any)
	if node == nil {
		node = data
	}
	return mcp.NewToolResultText(fmt.Sprintf("Created folder 📁 %s (id: %s)",
		getString(node, "title"), getString(node, "id"))), nil
}

func (h *Handler) bookmarksUpdate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := struct {
		BookmarkID string  `json:"bookmark_id"`
		Title      *string `json:"title,omitempty"`
		URL        *string `json:"url,omitempty"`
	}{}
	if err := request.BindArguments(&args); err != nil {
		return bindError(err), nil
	}
	if args.BookmarkID == "" {
		return invalidArgs("bookmark_id is required"), nil
	}
	if args.Title == nil && args.URL == nil {
		return invalidArgs("at least one of title or url must be provided"), nil
	}

	payload := map[string]any{"id": args.BookmarkID}
	if args.Title != nil {
		payload["title"] = *args.Title
	}
	if args.URL != nil {
		payload["url"] = *args.URL
	}

	data, err := h.dispatcher.Call(ctx, protocol.ActionBookmarksUpdate, payload, 0)
	if err != nil {
		return errResult(err), nil
	}
	node, _ := data["bookmark"].(map[string]any)
	if node == nil {
		node = data
	}
	return mcp.NewToolResultText(fmt.Sprintf("Updated bookmark %s: %s - %s",
		args.BookmarkID, getString(node, "title"), getString(node, "url"))), nil
}

func (h *Handler) bookmarksDelete(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := struct {
		BookmarkID string `json:"bookmark_id"`
	}{}
	if err := request.BindArguments(&args); err != nil {
		return bindError(err), nil
	}
	if args.BookmarkID == "" {
		return invalidArgs("bookmark_id is required"), nil
	}

	if _, err := h.dispatcher.Call(ctx, protocol.ActionBookmarksDelete, map[string]any{"id": args.BookmarkID}, 0); err != nil {
		return errResult(err), nil
	}
	return mcp.NewToolResultText("Deleted bookmark " + args.BookmarkID), nil
}
