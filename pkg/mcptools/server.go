package mcptools

import (
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer assembles the MCP server with the full tool surface
// registered.
func NewMCPServer(version string, h *Handler) *server.MCPServer {
	s := server.NewMCPServer(
		"foxmcp",
		version,
		server.WithToolCapabilities(false),
		server.WithLogging(),
	)
	h.Register(s)
	return s
}

// NewStreamableHTTPServer wraps the MCP server in its streamable HTTP
// transport, served at /mcp.
func NewStreamableHTTPServer(s *server.MCPServer) *server.StreamableHTTPServer {
	return server.NewStreamableHTTPServer(s, server.WithEndpointPath("/mcp"))
}
