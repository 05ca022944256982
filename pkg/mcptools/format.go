package mcptools

import (
	"fmt"
	"strings"
	"time"
)

// getString reads a string field from an action payload.
func getString(data map[string]any, key string) string {
	s, _ := data[key].(string)
	return s
}

// getInt reads a numeric field from an action payload. JSON numbers decode
// as float64.
func getInt(data map[string]any, key string) int {
	f, _ := data[key].(float64)
	return int(f)
}

// getBool reads a boolean field from an action payload.
func getBool(data map[string]any, key string) bool {
	b, _ := data[key].(bool)
	return b
}

// getList reads an array field from an action payload as a slice of objects.
func getList(data map[string]any, key string) []map[string]any {
	raw, _ := data[key].([]any)
	out := make([]map[string]any, 0, len(raw))
	for _, item := range raw {
		if m, ok := item.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

// epochMillis renders the extension's epoch-millisecond timestamps.
func epochMillis(ms float64) string {
	return time.UnixMilli(int64(ms)).Format("2006-01-02 15:04:05")
}

// truncateRunes cuts s to at most n characters.
func truncateRunes(s string, n int) string {
	if n < 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// formatTab renders one tab line: `ID {id}: {title} - {url}` with the
// (active) and (pinned) suffixes.
func formatTab(tab map[string]any) string {
	var b strings.Builder
	fmt.Fprintf(&b, "ID %d: %s - %s", getInt(tab, "id"), getString(tab, "title"), getString(tab, "url"))
	if getBool(tab, "active") {
		b.WriteString(" (active)")
	}
	if getBool(tab, "pinned") {
		b.WriteString(" (pinned)")
	}
	return b.String()
}

// formatHistoryItem renders one history line using the extension's
// lastVisitTime epoch-millisecond field.
func formatHistoryItem(item map[string]any) string {
	title := getString(item, "title")
	if title == "" {
		title = "(untitled)"
	}
	line := fmt.Sprintf("%s - %s", title, getString(item, "url"))
	if ms, ok := item["lastVisitTime"].(float64); ok {
		line += fmt.Sprintf(" (visited %s)", epochMillis(ms))
	}
	return line
}

// formatWindow renders one window descriptor line.
func formatWindow(win map[string]any) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Window %d: %s %s", getInt(win, "id"), getString(win, "state"), getString(win, "type"))
	if getBool(win, "focused") {
		b.WriteString(" (focused)")
	}
	if getBool(win, "incognito") {
		b.WriteString(" (incognito)")
	}
	if w, ok := win["width"].(float64); ok {
		if h, hok := win["height"].(float64); hok {
			fmt.Fprintf(&b, " %dx%d", int(w), int(h))
		}
	}
	if tabs, ok := win["tabs"].([]any); ok {
		fmt.Fprintf(&b, ", %d tab(s)", len(tabs))
	}
	return b.String()
}

// formatBookmarkTree renders bookmark nodes recursively: folders get the 📁
// prefix, bookmarks 🔖, every node shows its id and parentId.
func formatBookmarkTree(b *strings.Builder, nodes []map[string]any, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, node := range nodes {
		id := getString(node, "id")
		parentID := getString(node, "parentId")
		title := getString(node, "title")
		if title == "" {
			title = "(untitled)"
		}
		if url := getString(node, "url"); url != "" {
			fmt.Fprintf(b, "%s🔖 %s - %s (id: %s, parent: %s)\n", indent, title, url, id, parentID)
			continue
		}
		fmt.Fprintf(b, "%s📁 %s (id: %s, parent: %s)\n", indent, title, id, parentID)
		if children, ok := node["children"].([]any); ok {
			childNodes := make([]map[string]any, 0, len(children))
			for _, c := range children {
				if m, ok := c.(map[string]any); ok {
					childNodes = append(childNodes, m)
				}
			}
			formatBookmarkTree(b, childNodes, depth+1)
		}
	}
}
