// Package mcptools exposes the browser-automation tool surface over MCP.
// Each tool handler validates its arguments locally, builds one action
// request for the extension, awaits the dispatcher, and formats the result.
package mcptools

import (
	"context"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/foxmcp/foxmcp/pkg/bridge"
	"github.com/foxmcp/foxmcp/pkg/errors"
	"github.com/foxmcp/foxmcp/pkg/monitor"
	"github.com/foxmcp/foxmcp/pkg/scripts"
)

// Dispatcher is the slice of the bridge the handlers consume.
type Dispatcher interface {
	Call(ctx context.Context, action string, data map[string]any, timeout time.Duration) (map[string]any, error)
	Status() bridge.Status
}

// Handler implements every MCP tool. One instance serves all concurrent
// tool calls; all state lives in the dispatcher and the registries.
type Handler struct {
	dispatcher Dispatcher
	monitors   *monitor.Registry
	scripts    *scripts.Executor
}

// NewHandler wires the tool handlers to their collaborators.
func NewHandler(d Dispatcher, monitors *monitor.Registry, scriptExec *scripts.Executor) *Handler {
	return &Handler{
		dispatcher: d,
		monitors:   monitors,
		scripts:    scriptExec,
	}
}

// errResult converts a taxonomy error into a tool error result. The kind
// prefix is part of the Error() string, so callers always see the
// originating condition.
func errResult(err error) *mcp.CallToolResult {
	return mcp.NewToolResultError(err.Error())
}

// invalidArgs is shorthand for local validation failures; nothing has been
// sent to the extension when it is returned.
func invalidArgs(format string, args ...any) *mcp.CallToolResult {
	return errResult(errors.NewInvalidArgumentError(fmt.Sprintf(format, args...), nil))
}

// bindError wraps a BindArguments failure.
func bindError(err error) *mcp.CallToolResult {
	return errResult(errors.NewInvalidArgumentError("failed to parse arguments", err))
}
