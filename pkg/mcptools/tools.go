package mcptools

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// schema builds an object input schema from its properties and required
// field names.
func schema(props map[string]any, required ...string) mcp.ToolInputSchema {
	return mcp.ToolInputSchema{
		Type:       "object",
		Properties: props,
		Required:   required,
	}
}

func prop(typ, desc string) map[string]any {
	return map[string]any{"type": typ, "description": desc}
}

// Register adds every browser-automation tool to the MCP server. Tool names
// and parameter shapes are the public contract; handlers validate everything
// again at call time.
func (h *Handler) Register(s *server.MCPServer) {
	h.registerTabs(s)
	h.registerHistory(s)
	h.registerBookmarks(s)
	h.registerNavigation(s)
	h.registerContent(s)
	h.registerWindows(s)
	h.registerRequests(s)

	s.AddTool(mcp.Tool{
		Name:        "debug_websocket_status",
		Description: "Report the state of the browser extension connection: whether it is connected, since when, and call counters.",
		InputSchema: schema(map[string]any{}),
	}, h.debugWebSocketStatus)
}

func (h *Handler) registerTabs(s *server.MCPServer) {
	s.AddTool(mcp.Tool{
		Name:        "tabs_list",
		Description: "List all open browser tabs with their ids, titles and URLs.",
		InputSchema: schema(map[string]any{}),
	}, h.tabsList)

	s.AddTool(mcp.Tool{
		Name:        "tabs_create",
		Description: "Open a new browser tab.",
		InputSchema: schema(map[string]any{
			"url":       prop("string", "URL to open in the new tab"),
			"active":    prop("boolean", "Focus the new tab (default true)"),
			"pinned":    prop("boolean", "Pin the new tab (default false)"),
			"window_id": prop("integer", "Window to open the tab in (default: current window)"),
		}, "url"),
	}, h.tabsCreate)

	s.AddTool(mcp.Tool{
		Name:        "tabs_close",
		Description: "Close a browser tab by id.",
		InputSchema: schema(map[string]any{
			"tab_id": prop("integer", "Id of the tab to close"),
		}, "tab_id"),
	}, h.tabsClose)

	s.AddTool(mcp.Tool{
		Name:        "tabs_switch",
		Description: "Switch focus to a browser tab by id.",
		InputSchema: schema(map[string]any{
			"tab_id": prop("integer", "Id of the tab to focus"),
		}, "tab_id"),
	}, h.tabsSwitch)

	s.AddTool(mcp.Tool{
		Name:        "tabs_capture_screenshot",
		Description: "Capture a screenshot of the visible tab. Returns a base64 data URL, or writes the decoded image to a file when a filename is given.",
		InputSchema: schema(map[string]any{
			"filename":  prop("string", "File to save the screenshot to; the format suffix is appended when missing"),
			"window_id": prop("integer", "Window whose active tab is captured (default: current window)"),
			"format":    prop("string", "Image format, png or jpeg (default png)"),
			"quality":   prop("integer", "JPEG quality 1-100 (default 90)"),
		}),
	}, h.tabsCaptureScreenshot)
}

func (h *Handler) registerHistory(s *server.MCPServer) {
	s.AddTool(mcp.Tool{
		Name:        "history_query",
		Description: "Search browser history for items matching a text query.",
		InputSchema: schema(map[string]any{
			"query":       prop("string", "Text to search for; must be non-empty"),
			"max_results": prop("integer", "Maximum number of items to return (default 50)"),
		}, "query"),
	}, h.historyQuery)

	s.AddTool(mcp.Tool{
		Name:        "history_get_recent",
		Description: "Return the most recently visited history items.",
		InputSchema: schema(map[string]any{
			"count": prop("integer", "Number of items to return (default 10)"),
		}),
	}, h.historyGetRecent)

	s.AddTool(mcp.Tool{
		Name:        "history_delete_item",
		Description: "Delete all history entries for a URL.",
		InputSchema: schema(map[string]any{
			"url": prop("string", "Exact URL whose history entries are removed"),
		}, "url"),
	}, h.historyDeleteItem)
}

func (h *Handler) registerBookmarks(s *server.MCPServer) {
	s.AddTool(mcp.Tool{
		Name:        "bookmarks_list",
		Description: "List bookmarks as a tree, optionally rooted at a folder.",
		InputSchema: schema(map[string]any{
			"folder_id": prop("string", "Folder to list; omit for the full tree"),
		}),
	}, h.bookmarksList)

	s.AddTool(mcp.Tool{
		Name:        "bookmarks_search",
		Description: "Search bookmarks by title or URL.",
		InputSchema: schema(map[string]any{
			"query": prop("string", "Text to search for"),
		}, "query"),
	}, h.bookmarksSearch)

	s.AddTool(mcp.Tool{
		Name:        "bookmarks_create",
		Description: "Create a bookmark.",
		InputSchema: schema(map[string]any{
			"title":     prop("string", "Bookmark title"),
			"url":       prop("string", "Bookmark URL"),
			"parent_id": prop("string", "Folder to create the bookmark in"),
		}, "title", "url"),
	}, h.bookmarksCreate)

	s.AddTool(mcp.Tool{
		Name:        "bookmarks_create_folder",
		Description: "Create a bookmark folder.",
		InputSchema: schema(map[string]any{
			"title":     prop("string", "Folder title"),
			"parent_id": prop("string", "Parent folder id"),
		}, "title"),
	}, h.bookmarksCreateFolder)

	s.AddTool(mcp.Tool{
		Name:        "bookmarks_update",
		Description: "Update a bookmark's title and/or URL.",
		InputSchema: schema(map[string]any{
			"bookmark_id": prop("string", "Id of the bookmark to update"),
			"title":       prop("string", "New title"),
			"url":         prop("string", "New URL"),
		}, "bookmark_id"),
	}, h.bookmarksUpdate)

	s.AddTool(mcp.Tool{
		Name:        "bookmarks_delete",
		Description: "Delete a bookmark or empty folder by id.",
		InputSchema: schema(map[string]any{
			"bookmark_id": prop("string", "Id of the bookmark to delete"),
		}, "bookmark_id"),
	}, h.bookmarksDelete)
}

func (h *Handler) registerNavigation(s *server.MCPServer) {
	s.AddTool(mcp.Tool{
		Name:        "navigation_go_to_url",
		Description: "Navigate a tab to a URL.",
		InputSchema: schema(map[string]any{
			"tab_id": prop("integer", "Tab to navigate"),
			"url":    prop("string", "URL to load"),
		}, "tab_id", "url"),
	}, h.navigationGoToURL)

	s.AddTool(mcp.Tool{
		Name:        "navigation_back",
		Description: "Go back one step in a tab's history.",
		InputSchema: schema(map[string]any{
			"tab_id": prop("integer", "Tab to navigate"),
		}, "tab_id"),
	}, h.navigationBack)

	s.AddTool(mcp.Tool{
		Name:        "navigation_forward",
		Description: "Go forward one step in a tab's history.",
		InputSchema: schema(map[string]any{
			"tab_id": prop("integer", "Tab to navigate"),
		}, "tab_id"),
	}, h.navigationForward)

	s.AddTool(mcp.Tool{
		Name:        "navigation_reload",
		Description: "Reload a tab, optionally bypassing the cache.",
		InputSchema: schema(map[string]any{
			"tab_id":       prop("integer", "Tab to reload"),
			"bypass_cache": prop("boolean", "Bypass the HTTP cache (default false)"),
		}, "tab_id"),
	}, h.navigationReload)
}

func (h *Handler) registerContent(s *server.MCPServer) {
	s.AddTool(mcp.Tool{
		Name:        "content_get_text",
		Description: "Extract the visible text of a page.",
		InputSchema: schema(map[string]any{
			"tab_id":     prop("integer", "Tab to read"),
			"max_length": prop("integer", "Truncate the text to this many characters"),
		}, "tab_id"),
	}, h.contentGetText)

	s.AddTool(mcp.Tool{
		Name:        "content_get_html",
		Description: "Return the full HTML of a page.",
		InputSchema: schema(map[string]any{
			"tab_id": prop("integer", "Tab to read"),
		}, "tab_id"),
	}, h.contentGetHTML)

	s.AddTool(mcp.Tool{
		Name:        "content_execute_script",
		Description: "Execute JavaScript in a tab and return the last expression value as JSON.",
		InputSchema: schema(map[string]any{
			"tab_id": prop("integer", "Tab to execute in"),
			"script": prop("string", "JavaScript source to execute"),
		}, "tab_id", "script"),
	}, h.contentExecuteScript)

	s.AddTool(mcp.Tool{
		Name:        "content_execute_predefined",
		Description: "Run a predefined script from the configured scripts directory, then execute the JavaScript it produces in a tab.",
		InputSchema: schema(map[string]any{
			"tab_id":      prop("integer", "Tab to execute in"),
			"script_name": prop("string", "Name of the script file in the scripts directory"),
			"script_args": prop("string", "JSON array of string arguments for the script"),
		}, "tab_id", "script_name"),
	}, h.contentExecutePredefined)
}

func (h *Handler) registerWindows(s *server.MCPServer) {
	populateProp := prop("boolean", "Include the window's tabs (default true)")

	s.AddTool(mcp.Tool{
		Name:        "list_windows",
		Description: "List all browser windows.",
		InputSchema: schema(map[string]any{"populate": populateProp}),
	}, h.windowsList)

	s.AddTool(mcp.Tool{
		Name:        "get_window",
		Description: "Get a browser window by id.",
		InputSchema: schema(map[string]any{
			"window_id": prop("integer", "Id of the window"),
			"populate":  populateProp,
		}, "window_id"),
	}, h.getWindow)

	s.AddTool(mcp.Tool{
		Name:        "get_current_window",
		Description: "Get the current browser window.",
		InputSchema: schema(map[string]any{"populate": populateProp}),
	}, h.getCurrentWindow)

	s.AddTool(mcp.Tool{
		Name:        "get_last_focused_window",
		Description: "Get the most recently focused browser window.",
		InputSchema: schema(map[string]any{"populate": populateProp}),
	}, h.getLastFocusedWindow)

	s.AddTool(mcp.Tool{
		Name:        "create_window",
		Description: "Open a new browser window.",
		InputSchema: schema(map[string]any{
			"url":         prop("string", "URL to open in the new window"),
			"window_type": prop("string", "Window type: normal, popup or panel (default normal)"),
			"state":       prop("string", "Window state: normal, minimized, maximized or fullscreen (default normal)"),
			"focused":     prop("boolean", "Focus the new window (default true)"),
			"width":       prop("integer", "Window width in pixels"),
			"height":      prop("integer", "Window height in pixels"),
			"top":         prop("integer", "Window top offset in pixels"),
			"left":        prop("integer", "Window left offset in pixels"),
			"incognito":   prop("boolean", "Open a private window (default false)"),
		}),
	}, h.createWindow)

	s.AddTool(mcp.Tool{
		Name:        "close_window",
		Description: "Close a browser window by id.",
		InputSchema: schema(map[string]any{
			"window_id": prop("integer", "Id of the window to close"),
		}, "window_id"),
	}, h.closeWindow)

	s.AddTool(mcp.Tool{
		Name:        "focus_window",
		Description: "Focus a browser window by id.",
		InputSchema: schema(map[string]any{
			"window_id": prop("integer", "Id of the window to focus"),
		}, "window_id"),
	}, h.focusWindow)

	s.AddTool(mcp.Tool{
		Name:        "update_window",
		Description: "Update a browser window's state, focus, size or position.",
		InputSchema: schema(map[string]any{
			"window_id": prop("integer", "Id of the window to update"),
			"state":     prop("string", "New state: normal, minimized, maximized or fullscreen"),
			"focused":   prop("boolean", "Focus or unfocus the window"),
			"width":     prop("integer", "New width in pixels"),
			"height":    prop("integer", "New height in pixels"),
			"top":       prop("integer", "New top offset in pixels"),
			"left":      prop("integer", "New left offset in pixels"),
		}, "window_id"),
	}, h.updateWindow)
}

func (h *Handler) registerRequests(s *server.MCPServer) {
	s.AddTool(mcp.Tool{
		Name:        "requests_start_monitoring",
		Description: "Start capturing web requests matching the given URL patterns. Returns a monitor id for later listing and retrieval.",
		InputSchema: schema(map[string]any{
			"url_patterns": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "Match patterns for requests to capture; must be non-empty",
			},
			"options": prop("object", "Capture options passed through to the extension"),
			"tab_id":  prop("integer", "Restrict capture to one tab"),
		}, "url_patterns"),
	}, h.requestsStartMonitoring)

	s.AddTool(mcp.Tool{
		Name:        "requests_stop_monitoring",
		Description: "Stop a monitor session, wait briefly for trailing captures, and return its final statistics.",
		InputSchema: schema(map[string]any{
			"monitor_id":    prop("string", "Monitor session to stop"),
			"drain_timeout": prop("number", "Seconds to wait for trailing captures (default 5)"),
		}, "monitor_id"),
	}, h.requestsStopMonitoring)

	s.AddTool(mcp.Tool{
		Name:        "requests_list_captured",
		Description: "List the request summaries captured by a monitor session, in capture order.",
		InputSchema: schema(map[string]any{
			"monitor_id": prop("string", "Monitor session to list"),
		}, "monitor_id"),
	}, h.requestsListCaptured)

	s.AddTool(mcp.Tool{
		Name:        "requests_get_content",
		Description: "Fetch the headers and bodies of one captured request, optionally saving bodies to files.",
		InputSchema: schema(map[string]any{
			"monitor_id":            prop("string", "Monitor session the request belongs to"),
			"request_id":            prop("string", "Captured request to fetch"),
			"include_binary":        prop("boolean", "Include base64-encoded binary bodies inline (default false)"),
			"save_request_body_to":  prop("string", "Write the request body to this file instead of returning it"),
			"save_response_body_to": prop("string", "Write the response body to this file instead of returning it"),
		}, "monitor_id", "request_id"),
	}, h.requestsGetContent)
}
