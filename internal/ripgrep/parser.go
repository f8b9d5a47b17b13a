package ripgrep

import (
	"strings"

	"github.com/ca-srg/rgmcp/internal/types"
)

// ParseOutput converts captured engine output into a SearchResult. Each
// non-empty stdout line becomes one match entry, kept verbatim in the
// engine's own `path[:line][:content]` layout and emission order. Parsing
// is format-preserving and never fails; whatever the engine printed is what
// the caller gets.
func ParseOutput(raw *RawOutput) *types.SearchResult {
	matches := []string{}
	for _, line := range strings.Split(string(raw.Stdout), "\n") {
		if line != "" {
			matches = append(matches, line)
		}
	}

	return &types.SearchResult{
		Matches: matches,
		Stats: types.SearchStats{
			MatchedLines: len(matches),
			ElapsedMs:    raw.Elapsed.Milliseconds(),
		},
		Truncated: raw.Truncated,
	}
}
