// Package ripgrep drives the external ripgrep binary: it translates
// validated search requests into argument vectors, executes them under
// resource bounds, and parses the textual output into structured results.
package ripgrep

import (
	"strconv"

	"github.com/ca-srg/rgmcp/internal/types"
)

// Command is a fully built ripgrep invocation: binary, argument vector and
// working directory. It is immutable once built and handed to an Executor;
// nothing here ever passes through a shell.
type Command struct {
	Binary string
	Args   []string
	Dir    string
}

// NewCommand builds the ripgrep invocation for a validated request against
// a confined target path. The working directory is pinned to the sandbox
// root so relative output paths stay stable across invocations.
func NewCommand(binary string, req *types.SearchRequest, target, root string) *Command {
	return &Command{
		Binary: binary,
		Args:   BuildArgs(req, target),
		Dir:    root,
	}
}

// BuildArgs derives the argument vector from request fields one-to-one.
// The pattern and target are separate tokens after a "--" terminator, so
// pattern content can never be parsed as a flag or shell construct.
func BuildArgs(req *types.SearchRequest, target string) []string {
	args := []string{"--no-config"}

	if req.FixedStrings {
		args = append(args, "-F")
	}

	// Matching is case-insensitive unless the caller opts out.
	if !req.CaseSensitive {
		args = append(args, "-i")
	}

	if req.LineNumbers {
		args = append(args, "-n")
	}

	if req.ContextLines > 0 {
		args = append(args, "-C", strconv.Itoa(req.ContextLines))
	}

	for _, fileType := range req.FileTypes {
		args = append(args, "-t", fileType)
	}

	if req.MaxDepth != nil {
		args = append(args, "--max-depth", strconv.Itoa(*req.MaxDepth))
	}

	args = append(args, "--", req.Pattern, target)
	return args
}
