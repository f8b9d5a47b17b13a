package mcpserver

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"time"

	"github.com/ca-srg/rgmcp/internal/observability"
	"github.com/ca-srg/rgmcp/internal/ripgrep"
	"github.com/ca-srg/rgmcp/internal/types"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// SearchHandler is the dispatcher for the search tool: it validates the
// raw tool-call arguments into a typed request, runs the pipeline, and
// renders the result or error back to the protocol layer.
type SearchHandler struct {
	searcher *ripgrep.Searcher
	metrics  *observability.SearchMetrics
	tracer   trace.Tracer
	logger   *log.Logger
}

// NewSearchHandler wires a handler to a searcher. metrics may be nil.
func NewSearchHandler(searcher *ripgrep.Searcher, metrics *observability.SearchMetrics) *SearchHandler {
	return &SearchHandler{
		searcher: searcher,
		metrics:  metrics,
		tracer:   otel.Tracer("github.com/ca-srg/rgmcp/internal/mcpserver"),
		logger:   log.New(os.Stderr, "[SearchHandler] ", log.LstdFlags),
	}
}

// HandleToolCall implements the SDK tool handler for search. Errors
// returned here carry the machine-readable kind token in their message; the
// SDK binds them to the originating request id.
func (h *SearchHandler) HandleToolCall(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx, span := h.tracer.Start(ctx, "tools/call search")
	defer span.End()

	request, err := decodeSearchArgs(req.Params.Arguments)
	if err != nil {
		h.metrics.RecordFailure(ctx, types.KindOf(err))
		return nil, err
	}

	result, err := h.searcher.Search(ctx, request)
	if err != nil {
		kind := types.KindOf(err)
		h.metrics.RecordFailure(ctx, kind)
		span.SetAttributes(attribute.String("error.kind", string(kind)))
		h.logger.Printf("search failed (%s): %v", kind, err)
		return nil, err
	}

	h.metrics.RecordSuccess(ctx, time.Duration(result.Stats.ElapsedMs)*time.Millisecond, result.Stats.MatchedLines)
	span.SetAttributes(attribute.Int("search.matched_lines", result.Stats.MatchedLines))

	payload, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return nil, types.WrapError(types.ErrInternal, err, "failed to serialize search result")
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(payload)},
		},
	}, nil
}

// searchArgs is the wire shape of the tool arguments. Pointer fields
// distinguish "absent" from zero values so defaults apply correctly.
type searchArgs struct {
	Pattern       string   `json:"pattern"`
	Path          string   `json:"path"`
	FixedStrings  bool     `json:"fixed_strings"`
	CaseSensitive bool     `json:"case_sensitive"`
	LineNumbers   *bool    `json:"line_numbers"`
	ContextLines  *int     `json:"context_lines"`
	FileTypes     []string `json:"file_types"`
	MaxDepth      *int     `json:"max_depth"`
}

// decodeSearchArgs turns raw JSON arguments into a typed SearchRequest.
// Wrong-typed fields (e.g. a string context_lines) are invalid parameters,
// not internal errors.
func decodeSearchArgs(raw json.RawMessage) (*types.SearchRequest, error) {
	if len(raw) == 0 {
		return nil, types.NewError(types.ErrInvalidParams, "missing required arguments for search")
	}

	var args searchArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		if typeErr, ok := err.(*json.UnmarshalTypeError); ok && typeErr.Field != "" {
			return nil, types.WrapError(types.ErrInvalidParams, err, "field %q must be of type %s", typeErr.Field, typeErr.Type)
		}
		return nil, types.WrapError(types.ErrInvalidParams, err, "malformed search arguments")
	}

	request := &types.SearchRequest{
		Pattern:       args.Pattern,
		Path:          args.Path,
		FixedStrings:  args.FixedStrings,
		CaseSensitive: args.CaseSensitive,
		LineNumbers:   true,
		FileTypes:     args.FileTypes,
		MaxDepth:      args.MaxDepth,
	}
	if args.LineNumbers != nil {
		request.LineNumbers = *args.LineNumbers
	}
	if args.ContextLines != nil {
		request.ContextLines = *args.ContextLines
	}

	return request, nil
}
