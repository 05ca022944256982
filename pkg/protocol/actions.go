package protocol

// Action names form a closed catalog. Every outbound request frame carries one
// of these constants; nothing in the bridge builds action strings dynamically.
const (
	// History actions
	ActionHistoryQuery      = "history.query"
	ActionHistoryRecent     = "history.recent"
	ActionHistoryDeleteItem = "history.delete_item"

	// Tab actions
	ActionTabsList              = "tabs.list"
	ActionTabsActive            = "tabs.active"
	ActionTabsCreate            = "tabs.create"
	ActionTabsClose             = "tabs.close"
	ActionTabsUpdate            = "tabs.update"
	ActionTabsSwitch            = "tabs.switch"
	ActionTabsCaptureScreenshot = "tabs.capture_screenshot"

	// Content actions
	ActionContentGetText       = "content.get_text"
	ActionContentGetHTML       = "content.get_html"
	ActionContentExecuteScript = "content.execute_script"

	// Navigation actions
	ActionNavigationGoToURL = "navigation.go_to_url"
	ActionNavigationBack    = "navigation.back"
	ActionNavigationForward = "navigation.forward"
	ActionNavigationReload  = "navigation.reload"

	// Bookmark actions
	ActionBookmarksList         = "bookmarks.list"
	ActionBookmarksSearch       = "bookmarks.search"
	ActionBookmarksCreate       = "bookmarks.create"
	ActionBookmarksCreateFolder = "bookmarks.create_folder"
	ActionBookmarksUpdate       = "bookmarks.update"
	ActionBookmarksDelete       = "bookmarks.delete"

	// Window actions
	ActionWindowsList           = "windows.list"
	ActionWindowsGet            = "windows.get"
	ActionWindowsGetCurrent     = "windows.get_current"
	ActionWindowsGetLastFocused = "windows.get_last_focused"
	ActionWindowsCreate         = "windows.create"
	ActionWindowsClose          = "windows.close"
	ActionWindowsFocus          = "windows.focus"
	ActionWindowsUpdate         = "windows.update"

	// Request monitoring actions
	ActionRequestsStartMonitoring = "requests.start_monitoring"
	ActionRequestsStopMonitoring  = "requests.stop_monitoring"
	ActionRequestsListCaptured    = "requests.list_captured"
	ActionRequestsGetContent      = "requests.get_content"

	// ActionRequestsCaptured is the unsolicited notification the extension
	// emits for each captured request while a monitor session is active.
	ActionRequestsCaptured = "requests.request_captured"

	// ActionPing is the liveness probe.
	ActionPing = "ping"
)

// actions is the membership set for the closed catalog of request actions the
// bridge may send.
var actions = map[string]struct{}{
	ActionHistoryQuery:            {},
	ActionHistoryRecent:           {},
	ActionHistoryDeleteItem:       {},
	ActionTabsList:                {},
	ActionTabsActive:              {},
	ActionTabsCreate:              {},
	ActionTabsClose:               {},
	ActionTabsUpdate:              {},
	ActionTabsSwitch:              {},
	ActionTabsCaptureScreenshot:   {},
	ActionContentGetText:          {},
	ActionContentGetHTML:          {},
	ActionContentExecuteScript:    {},
	ActionNavigationGoToURL:       {},
	ActionNavigationBack:          {},
	ActionNavigationForward:       {},
	ActionNavigationReload:        {},
	ActionBookmarksList:           {},
	ActionBookmarksSearch:         {},
	ActionBookmarksCreate:         {},
	ActionBookmarksCreateFolder:   {},
	ActionBookmarksUpdate:         {},
	ActionBookmarksDelete:         {},
	ActionWindowsList:             {},
	ActionWindowsGet:              {},
	ActionWindowsGetCurrent:       {},
	ActionWindowsGetLastFocused:   {},
	ActionWindowsCreate:           {},
	ActionWindowsClose:            {},
	ActionWindowsFocus:            {},
	ActionWindowsUpdate:           {},
	ActionRequestsStartMonitoring: {},
	ActionRequestsStopMonitoring:  {},
	ActionRequestsListCaptured:    {},
	ActionRequestsGetContent:      {},
	ActionPing:                    {},
}

// Known reports whether action belongs to the closed catalog of request
// actions.
func Known(action string) bool {
	_, ok := actions[action]
	return ok
}

// IsMonitorNotification reports whether an inbound request frame from the
// extension is an unsolicited monitor notification. The action namespace is
// the discriminator: notifications carry requests.* actions that the bridge
// never sends, and they expect no reply.
func IsMonitorNotification(action string) bool {
	return action == ActionRequestsCaptured
}
