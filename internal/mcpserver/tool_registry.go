package mcpserver

import (
	"fmt"
	"log"
	"os"
	"sort"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ToolRegistry manages tool registration with the SDK server. Tools can be
// published under a configured name (e.g. to avoid collisions with other
// MCP servers in the same client) while keeping a stable internal name.
type ToolRegistry struct {
	server  *mcp.Server
	tools   map[string]*mcp.Tool
	nameMap map[string]string
	mutex   sync.RWMutex
	logger  *log.Logger
}

// NewToolRegistry creates a registry bound to an SDK server.
func NewToolRegistry(server *mcp.Server) *ToolRegistry {
	return &ToolRegistry{
		server:  server,
		tools:   make(map[string]*mcp.Tool),
		nameMap: make(map[string]string),
		logger:  log.New(os.Stderr, "[ToolRegistry] ", log.LstdFlags),
	}
}

// Register adds a tool to the SDK server. An empty configuredName keeps the
// internal name as the published name.
func (tr *ToolRegistry) Register(internalName, configuredName string, tool *mcp.Tool, handler mcp.ToolHandler) error {
	if internalName == "" {
		return fmt.Errorf("internal tool name cannot be empty")
	}
	if tool == nil {
		return fmt.Errorf("tool definition cannot be nil")
	}
	if handler == nil {
		return fmt.Errorf("tool handler cannot be nil")
	}
	if configuredName == "" {
		configuredName = internalName
	}

	tr.mutex.Lock()
	defer tr.mutex.Unlock()

	if _, exists := tr.tools[internalName]; exists {
		return fmt.Errorf("tool with internal name %q already registered", internalName)
	}

	tool.Name = configuredName
	tr.server.AddTool(tool, handler)

	tr.tools[internalName] = tool
	tr.nameMap[internalName] = configuredName
	tr.logger.Printf("Tool registered: %s -> %s", internalName, configuredName)

	return nil
}

// ToolNames returns the published tool names in stable order.
func (tr *ToolRegistry) ToolNames() []string {
	tr.mutex.RLock()
	defer tr.mutex.RUnlock()

	names := make([]string, 0, len(tr.nameMap))
	for _, name := range tr.nameMap {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
