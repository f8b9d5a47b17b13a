package mcpserver

import (
	"encoding/json"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const defaultSearchToolName = "search"

// SearchToolDefinition returns the MCP tool definition for search. The
// schema mirrors the SearchRequest fields; only pattern is required.
func SearchToolDefinition() *mcp.Tool {
	schemaMap := map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"pattern": map[string]interface{}{
				"type":        "string",
				"description": "Search pattern (regex by default, literal with fixed_strings)",
			},
			"path": map[string]interface{}{
				"type":        "string",
				"description": "Relative path within the root directory to search in",
			},
			"fixed_strings": map[string]interface{}{
				"type":        "boolean",
				"description": "Treat the pattern as a literal string instead of a regex",
				"default":     false,
			},
			"case_sensitive": map[string]interface{}{
				"type":        "boolean",
				"description": "Match case sensitively (default is case-insensitive)",
				"default":     false,
			},
			"line_numbers": map[string]interface{}{
				"type":        "boolean",
				"description": "Include line numbers in match output",
				"default":     true,
			},
			"context_lines": map[string]interface{}{
				"type":        "integer",
				"description": "Lines of context to show around each match",
				"minimum":     0,
				"default":     0,
			},
			"file_types": map[string]interface{}{
				"type":        "array",
				"description": "Restrict the search to ripgrep file type tags (e.g. \"rust\", \"go\")",
				"items": map[string]interface{}{
					"type": "string",
				},
			},
			"max_depth": map[string]interface{}{
				"type":        "integer",
				"description": "Maximum directory depth to descend",
				"minimum":     0,
			},
		},
		"required": []string{"pattern"},
	}

	// Build the schema as a map first, then round-trip through JSON into
	// the typed schema the SDK expects.
	var inputSchema *jsonschema.Schema
	if schemaBytes, err := json.Marshal(schemaMap); err == nil {
		inputSchema = &jsonschema.Schema{}
		_ = json.Unmarshal(schemaBytes, inputSchema)
	}

	return &mcp.Tool{
		Name:        defaultSearchToolName,
		Description: "Search files under the configured root directory using ripgrep",
		InputSchema: inputSchema,
	}
}
