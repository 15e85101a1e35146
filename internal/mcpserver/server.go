// Package mcpserver exposes mode listing, order previews and syncs to
// Model Context Protocol clients, over stdio or streamable HTTP.
package mcpserver

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/flemzord/modesync/internal/syncer"
	"github.com/mark3labs/mcp-go/server"
)

const instructions = `modesync orders the custom modes of a modes directory and writes them to an editor configuration.
Call preview_order to see the order a configuration produces, then sync_modes to write it.
Use dry_run to render without writing.`

// New creates the MCP server with every tool registered.
func New(svc *syncer.Service, version string, logger *slog.Logger) *server.MCPServer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	h := &handlers{svc: svc, logger: logger.With("component", "mcp")}

	s := server.NewMCPServer(
		"modesync",
		version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(instructions),
	)

	s.AddTool(listModesTool(), h.listModes)
	s.AddTool(previewOrderTool(), h.previewOrder)
	s.AddTool(syncModesTool(), h.syncModes)
	s.AddTool(validateModesTool(), h.validateModes)
	s.AddTool(syncStatusTool(), h.syncStatus)

	return s
}

// ServeStdio serves s over in and out until ctx is canceled or in is
// closed.
func ServeStdio(ctx context.Context, s *server.MCPServer, in io.Reader, out io.Writer) error {
	return server.NewStdioServer(s).Listen(ctx, in, out)
}

// HTTPHandler serves s over streamable HTTP.
func HTTPHandler(s *server.MCPServer) http.Handler {
	return server.NewStreamableHTTPServer(s)
}
