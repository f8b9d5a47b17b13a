package mcpserver

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/ca-srg/rgmcp/internal/ripgrep"
	"github.com/ca-srg/rgmcp/internal/types"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubExecutor satisfies ripgrep.Executor without spawning processes.
type stubExecutor struct {
	calls  int
	output *ripgrep.RawOutput
}

func (s *stubExecutor) Run(_ context.Context, _ *ripgrep.Command) (*ripgrep.RawOutput, error) {
	s.calls++
	if s.output != nil {
		return s.output, nil
	}
	return &ripgrep.RawOutput{}, nil
}

func newTestSearcher(t *testing.T, exec ripgrep.Executor) *ripgrep.Searcher {
	t.Helper()
	root, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	return ripgrep.NewSearcher(&types.Config{
		FilesRoot:            root,
		RgBinary:             "rg",
		SearchTimeout:        10 * time.Second,
		SearchMaxOutputBytes: 1 << 20,
		SearchMaxConcurrent:  2,
		LogLevel:             "info",
	}, exec)
}

func callReq(args string) *mcp.CallToolRequest {
	req := &mcp.CallToolRequest{Params: &mcp.CallToolParamsRaw{Name: defaultSearchToolName}}
	if args != "" {
		req.Params.Arguments = json.RawMessage(args)
	}
	return req
}

func TestDecodeSearchArgs(t *testing.T) {
	t.Run("applies defaults", func(t *testing.T) {
		req, err := decodeSearchArgs(json.RawMessage(`{"pattern":"fn main"}`))
		require.NoError(t, err)

		assert.Equal(t, "fn main", req.Pattern)
		assert.Empty(t, req.Path)
		assert.False(t, req.FixedStrings)
		assert.False(t, req.CaseSensitive)
		assert.True(t, req.LineNumbers, "line numbers default on")
		assert.Zero(t, req.ContextLines)
		assert.Nil(t, req.MaxDepth)
	})

	t.Run("honors explicit false line_numbers", func(t *testing.T) {
		req, err := decodeSearchArgs(json.RawMessage(`{"pattern":"p","line_numbers":false}`))
		require.NoError(t, err)
		assert.False(t, req.LineNumbers)
	})

	t.Run("decodes full argument set", func(t *testing.T) {
		req, err := decodeSearchArgs(json.RawMessage(`{
			"pattern": "p",
			"path": "src",
			"fixed_strings": true,
			"case_sensitive": true,
			"context_lines": 2,
			"file_types": ["rust", "go"],
			"max_depth": 3
		}`))
		require.NoError(t, err)

		assert.Equal(t, "src", req.Path)
		assert.True(t, req.FixedStrings)
		assert.True(t, req.CaseSensitive)
		assert.Equal(t, 2, req.ContextLines)
		assert.Equal(t, []string{"rust", "go"}, req.FileTypes)
		require.NotNil(t, req.MaxDepth)
		assert.Equal(t, 3, *req.MaxDepth)
	})

	t.Run("missing arguments", func(t *testing.T) {
		_, err := decodeSearchArgs(nil)
		require.Error(t, err)
		assert.True(t, types.IsKind(err, types.ErrInvalidParams))
	})

	t.Run("wrong-typed field", func(t *testing.T) {
		_, err := decodeSearchArgs(json.RawMessage(`{"pattern":"p","context_lines":"three"}`))
		require.Error(t, err)
		assert.True(t, types.IsKind(err, types.ErrInvalidParams))
		assert.Contains(t, err.Error(), "context_lines")
	})

	t.Run("malformed JSON", func(t *testing.T) {
		_, err := decodeSearchArgs(json.RawMessage(`{`))
		require.Error(t, err)
		assert.True(t, types.IsKind(err, types.ErrInvalidParams))
	})
}

func TestHandleToolCallSuccess(t *testing.T) {
	exec := &stubExecutor{output: &ripgrep.RawOutput{
		Stdout:  []byte("src/lib.rs:10:fn main() {}\n"),
		Elapsed: 5 * time.Millisecond,
	}}
	handler := NewSearchHandler(newTestSearcher(t, exec), nil)

	result, err := handler.HandleToolCall(context.Background(), callReq(`{"pattern":"fn main"}`))
	require.NoError(t, err)
	require.Len(t, result.Content, 1)

	text, ok := result.Content[0].(*mcp.TextContent)
	require.True(t, ok)

	var parsed types.SearchResult
	require.NoError(t, json.Unmarshal([]byte(text.Text), &parsed))
	assert.Equal(t, []string{"src/lib.rs:10:fn main() {}"}, parsed.Matches)
	assert.Equal(t, 1, parsed.Stats.MatchedLines)
	assert.Equal(t, int64(5), parsed.Stats.ElapsedMs)
}

func TestHandleToolCallInvalidParams(t *testing.T) {
	tests := []struct {
		name string
		args string
	}{
		{"no arguments", ""},
		{"empty pattern", `{"pattern":""}`},
		{"whitespace pattern", `{"pattern":"   "}`},
		{"negative context lines", `{"pattern":"p","context_lines":-1}`},
		{"string max_depth", `{"pattern":"p","max_depth":"deep"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exec := &stubExecutor{}
			handler := NewSearchHandler(newTestSearcher(t, exec), nil)

			_, err := handler.HandleToolCall(context.Background(), callReq(tt.args))
			require.Error(t, err)
			assert.True(t, types.IsKind(err, types.ErrInvalidParams), "got %v", err)
			assert.Zero(t, exec.calls, "invalid params must not reach the executor")
		})
	}
}

func TestHandleToolCallPathTraversal(t *testing.T) {
	exec := &stubExecutor{}
	handler := NewSearchHandler(newTestSearcher(t, exec), nil)

	_, err := handler.HandleToolCall(context.Background(), callReq(`{"pattern":"p","path":"../outside"}`))
	require.Error(t, err)
	assert.True(t, types.IsKind(err, types.ErrPathTraversal))
	assert.Contains(t, err.Error(), string(types.ErrPathTraversal))
	assert.Zero(t, exec.calls, "traversal must be rejected before any subprocess")
}
