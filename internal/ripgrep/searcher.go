package ripgrep

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/ca-srg/rgmcp/internal/sandbox"
	"github.com/ca-srg/rgmcp/internal/types"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// Searcher runs the full search pipeline for one request: path
// confinement, command construction, bounded execution and output parsing.
// It is safe for concurrent use; the only shared state is the read-only
// configuration plus the concurrency semaphore and rate limiter.
type Searcher struct {
	root    string
	binary  string
	exec    Executor
	sem     *semaphore.Weighted
	limiter *rate.Limiter
	logger  *log.Logger
	debug   bool
}

// NewSearcher wires a pipeline from configuration and an executor. Passing
// the executor in keeps the subprocess capability substitutable in tests.
func NewSearcher(cfg *types.Config, executor Executor) *Searcher {
	var limiter *rate.Limiter
	if cfg.SearchRateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.SearchRateLimit), cfg.SearchRateBurst)
	}

	return &Searcher{
		root:    cfg.FilesRoot,
		binary:  cfg.RgBinary,
		exec:    executor,
		sem:     semaphore.NewWeighted(int64(cfg.SearchMaxConcurrent)),
		limiter: limiter,
		logger:  log.New(os.Stderr, "[Searcher] ", log.LstdFlags),
		debug:   cfg.DebugLogging(),
	}
}

// Root returns the canonical sandbox root the searcher confines to.
func (s *Searcher) Root() string {
	return s.root
}

// Search validates the request and runs it through the pipeline. No
// subprocess is spawned unless validation and path confinement both pass.
func (s *Searcher) Search(ctx context.Context, req *types.SearchRequest) (*types.SearchResult, error) {
	if err := ValidateRequest(req); err != nil {
		return nil, err
	}

	target, err := sandbox.Confine(s.root, req.Path)
	if err != nil {
		// The resolved absolute path is debug-only detail; normal
		// verbosity must not reveal filesystem layout.
		if s.debug {
			s.logger.Printf("confinement rejected path %q under root %q: %v", req.Path, s.root, err)
		}
		return nil, err
	}

	if s.debug {
		s.logger.Printf("search pattern=%q target=%s", req.Pattern, target)
	}

	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, types.WrapError(types.ErrInternal, err, "canceled while waiting for rate limiter")
		}
	}

	if err := s.sem.Acquire(ctx, 1); err != nil {
		return nil, types.WrapError(types.ErrInternal, err, "canceled while waiting for a search slot")
	}
	defer s.sem.Release(1)

	// The engine runs with the root as working directory and a
	// root-relative target, so match lines come back with stable
	// root-relative paths.
	raw, err := s.exec.Run(ctx, NewCommand(s.binary, req, relativeTarget(s.root, target), s.root))
	if err != nil {
		return nil, err
	}

	return ParseOutput(raw), nil
}

func relativeTarget(root, target string) string {
	rel, err := filepath.Rel(root, target)
	if err != nil {
		return target
	}
	return rel
}

// ValidateRequest enforces the request invariants at the pipeline boundary.
// Downstream stages rely on these holding and do not re-check them.
func ValidateRequest(req *types.SearchRequest) error {
	if req == nil {
		return types.NewError(types.ErrInvalidParams, "request is required")
	}
	if strings.TrimSpace(req.Pattern) == "" {
		return types.NewError(types.ErrInvalidParams, "pattern must not be empty")
	}
	if req.ContextLines < 0 {
		return types.NewError(types.ErrInvalidParams, "context_lines must not be negative")
	}
	if req.MaxDepth != nil && *req.MaxDepth < 0 {
		return types.NewError(types.ErrInvalidParams, "max_depth must not be negative")
	}
	for _, fileType := range req.FileTypes {
		if strings.TrimSpace(fileType) == "" {
			return types.NewError(types.ErrInvalidParams, "file_types entries must not be empty")
		}
	}
	return nil
}
