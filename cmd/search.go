package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	appcfg "github.com/ca-srg/rgmcp/internal/config"
	"github.com/ca-srg/rgmcp/internal/ripgrep"
	"github.com/ca-srg/rgmcp/internal/types"
)

var (
	searchRoot          string
	searchFixedStrings  bool
	searchCaseSensitive bool
	searchNoLineNumbers bool
	searchContextLines  int
	searchFileTypes     []string
	searchMaxDepth      int
	searchTimeout       time.Duration
)

var searchCmd = &cobra.Command{
	Use:   "search <pattern> [path]",
	Short: "Run a single confined search and print the result as JSON",
	Long: `
Run one search directly, without starting the MCP server. The same
validation, path confinement, and resource limits apply as for searches
issued over the protocol; the result is printed to stdout as JSON.

Useful for debugging a server configuration or scripting ad-hoc lookups.

Examples:
  rgmcp search "fn main" src
  rgmcp search --type rust --context 2 "Result<" .
  rgmcp search --root /srv/code --fixed-strings "a+b"
`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringVar(&searchRoot, "root", "", "Root directory the search is confined to (default: FILES_ROOT or cwd)")
	searchCmd.Flags().BoolVarP(&searchFixedStrings, "fixed-strings", "F", false, "Treat the pattern as a literal string, not a regex")
	searchCmd.Flags().BoolVar(&searchCaseSensitive, "case-sensitive", false, "Match case exactly (default is case-insensitive)")
	searchCmd.Flags().BoolVar(&searchNoLineNumbers, "no-line-numbers", false, "Omit line numbers from matches")
	searchCmd.Flags().IntVarP(&searchContextLines, "context", "C", 0, "Lines of context around each match")
	searchCmd.Flags().StringSliceVarP(&searchFileTypes, "type", "t", nil, "Restrict to ripgrep file types (repeatable)")
	searchCmd.Flags().IntVar(&searchMaxDepth, "max-depth", 0, "Maximum directory depth to descend")
	searchCmd.Flags().DurationVar(&searchTimeout, "timeout", 30*time.Second, "Wall-clock limit for the search")
}

func runSearch(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	cfg, err := appcfg.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if cmd.Flags().Changed("root") {
		cfg.FilesRoot = searchRoot
	}
	if cmd.Flags().Changed("timeout") {
		cfg.SearchTimeout = searchTimeout
	}

	if err := appcfg.ResolveFilesRoot(cfg); err != nil {
		return err
	}
	if _, err := exec.LookPath(cfg.RgBinary); err != nil {
		return fmt.Errorf("ripgrep (%s) is not installed or not in PATH: %w", cfg.RgBinary, err)
	}

	req := &types.SearchRequest{
		Pattern:       args[0],
		FixedStrings:  searchFixedStrings,
		CaseSensitive: searchCaseSensitive,
		LineNumbers:   !searchNoLineNumbers,
		ContextLines:  searchContextLines,
		FileTypes:     searchFileTypes,
	}
	if len(args) == 2 {
		req.Path = args[1]
	}
	if cmd.Flags().Changed("max-depth") {
		depth := searchMaxDepth
		req.MaxDepth = &depth
	}

	executor := ripgrep.NewProcessExecutor(cfg.SearchTimeout, cfg.SearchMaxOutputBytes)
	searcher := ripgrep.NewSearcher(cfg, executor)

	result, err := searcher.Search(cmd.Context(), req)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}
