// Package mcpserver exposes the search pipeline as an MCP server over the
// official SDK. Protocol envelopes, the initialize handshake and request
// routing are the SDK's job; this package supplies the tool definition and
// its handler.
package mcpserver

import (
	"context"
	"log"
	"os"

	"github.com/ca-srg/rgmcp/internal/observability"
	"github.com/ca-srg/rgmcp/internal/ripgrep"
	"github.com/ca-srg/rgmcp/internal/types"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	serverName    = "rgmcp"
	serverVersion = "0.1.0"

	serverInstructions = "Ripgrep MCP server for code search. All searches are confined to the configured root directory."
)

// Server wraps the SDK server with the search tool wired in.
type Server struct {
	sdkServer *mcp.Server
	registry  *ToolRegistry
	logger    *log.Logger
}

// New builds a server serving exactly one tool: search.
func New(cfg *types.Config, searcher *ripgrep.Searcher, metrics *observability.SearchMetrics) (*Server, error) {
	impl := &mcp.Implementation{
		Name:    serverName,
		Version: serverVersion,
	}

	sdkServer := mcp.NewServer(impl, &mcp.ServerOptions{
		Instructions: serverInstructions,
	})

	registry := NewToolRegistry(sdkServer)
	handler := NewSearchHandler(searcher, metrics)

	if err := registry.Register(defaultSearchToolName, cfg.MCPToolNameSearch, SearchToolDefinition(), handler.HandleToolCall); err != nil {
		return nil, err
	}

	return &Server{
		sdkServer: sdkServer,
		registry:  registry,
		logger:    log.New(os.Stderr, "[MCPServer] ", log.LstdFlags),
	}, nil
}

// Run serves MCP over stdin/stdout until ctx is canceled or the client
// disconnects. Cancellation propagates into in-flight tool calls, which
// terminates any running engine subprocess.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Printf("serving MCP on stdio (tools: %v)", s.registry.ToolNames())
	return s.sdkServer.Run(ctx, &mcp.StdioTransport{})
}

// Connect attaches the server to an arbitrary transport. Tests use this
// with the SDK's in-memory transport pair.
func (s *Server) Connect(ctx context.Context, t mcp.Transport) (*mcp.ServerSession, error) {
	return s.sdkServer.Connect(ctx, t, nil)
}
