// Package sandbox confines caller-supplied paths to a fixed root directory.
//
// The guarantee is strict: a path returned by Confine is the canonical root
// itself or a canonical descendant of it. Anything else, including paths
// that cannot be resolved at all, is rejected as a traversal attempt.
package sandbox

import (
	"path/filepath"
	"strings"

	"github.com/ca-srg/rgmcp/internal/types"
	securejoin "github.com/cyphar/filepath-securejoin"
)

// Confine resolves candidate against root and proves the result stays
// inside root. root must already be absolute and canonical (symlinks
// resolved); config.ResolveFilesRoot establishes that at startup.
//
// An empty or "." candidate selects the root itself. Unresolvable
// candidates (missing components, dangling symlinks) are treated as
// traversal attempts rather than trusting the unresolved string.
func Confine(root string, candidate string) (string, error) {
	candidate = strings.TrimSpace(candidate)
	if candidate == "" || candidate == "." {
		return root, nil
	}

	if strings.ContainsRune(candidate, 0) {
		return "", types.NewError(types.ErrPathTraversal, "path contains a null byte")
	}

	if filepath.IsAbs(candidate) {
		return "", types.NewError(types.ErrPathTraversal, "path must be relative to the root directory: %q", candidate)
	}

	// SecureJoin resolves "." and ".." lexically and expands symlinks
	// scoped to root, so the joined path cannot point outside it.
	joined, err := securejoin.SecureJoin(root, candidate)
	if err != nil {
		return "", types.WrapError(types.ErrPathTraversal, err, "failed to join %q onto the root directory", candidate)
	}

	// Canonicalize for the final containment proof. This also requires
	// the target to exist; a missing component is indistinguishable from
	// an escape attempt, so it fails the same way.
	resolved, err := filepath.EvalSymlinks(joined)
	if err != nil {
		return "", types.WrapError(types.ErrPathTraversal, err, "cannot resolve path %q inside the root directory", candidate)
	}

	if !isWithin(root, resolved) {
		return "", types.NewError(types.ErrPathTraversal, "path escapes the root directory: %q", candidate)
	}

	return resolved, nil
}

// isWithin reports whether path equals root or is a descendant of it,
// comparing whole path components so that e.g. /root-2 never passes for
// root /root.
func isWithin(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	if rel == "." {
		return true
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
