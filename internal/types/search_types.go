package types

// SearchRequest is the validated form of one search tool invocation. All
// boundary validation happens before a SearchRequest is constructed; the
// pipeline stages downstream never re-check primitive field types.
type SearchRequest struct {
	// Pattern is the regex (or literal, with FixedStrings) to search for.
	// Never empty after validation.
	Pattern string `json:"pattern"`

	// Path is a relative path inside the sandbox root. Empty means the
	// root itself.
	Path string `json:"path,omitempty"`

	// FixedStrings switches ripgrep to literal matching.
	FixedStrings bool `json:"fixed_strings,omitempty"`

	// CaseSensitive disables the default case-insensitive matching.
	CaseSensitive bool `json:"case_sensitive,omitempty"`

	// LineNumbers includes line numbers in the output. Defaults to true.
	LineNumbers bool `json:"line_numbers"`

	// ContextLines requests N lines of context around each match.
	ContextLines int `json:"context_lines,omitempty"`

	// FileTypes restricts the search to ripgrep type tags (e.g. "rust",
	// "go"). Empty means unrestricted.
	FileTypes []string `json:"file_types,omitempty"`

	// MaxDepth bounds directory recursion. Nil means unlimited.
	MaxDepth *int `json:"max_depth,omitempty"`
}

// SearchStats summarizes one completed search.
type SearchStats struct {
	MatchedLines int   `json:"matched_lines"`
	ElapsedMs    int64 `json:"elapsed_ms"`
}

// SearchResult carries the engine-formatted match lines and summary stats
// for one search. Matches preserve ripgrep's own emission order and its
// `path[:line][:content]` layout verbatim.
type SearchResult struct {
	Matches []string    `json:"matches"`
	Stats   SearchStats `json:"stats"`

	// Truncated is set when the engine produced more output than the
	// configured cap and the tail was discarded.
	Truncated bool `json:"truncated,omitempty"`
}
