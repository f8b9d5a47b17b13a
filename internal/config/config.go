package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/ca-srg/rgmcp/internal/types"
	env "github.com/netflix/go-env"
)

// Type alias for Config
type Config = types.Config

// Load loads configuration from environment variables. Filesystem state is
// not touched here; ResolveFilesRoot finishes startup after CLI flags have
// had a chance to override the loaded values.
func Load() (*Config, error) {
	var config Config

	_, err := env.UnmarshalFromEnviron(&config)
	if err != nil {
		return nil, fmt.Errorf("failed to parse environment variables: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &config, nil
}

// validateConfig validates configuration values and adjusts them to safe ranges
func validateConfig(config *Config) error {
	if config.FilesRoot == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("FILES_ROOT not set and current directory unavailable: %w", err)
		}
		log.Printf("FILES_ROOT not set, using current directory %s", cwd)
		config.FilesRoot = cwd
	}

	if config.RgBinary == "" {
		config.RgBinary = "rg"
	}

	if config.SearchTimeout <= 0 {
		config.SearchTimeout = 30 * time.Second
	}
	if config.SearchTimeout > 10*time.Minute {
		config.SearchTimeout = 10 * time.Minute
	}

	// Floor of 64 KiB keeps the output cap from strangling legitimate
	// results when misconfigured.
	if config.SearchMaxOutputBytes < 64*1024 {
		config.SearchMaxOutputBytes = 64 * 1024
	}

	if config.SearchMaxConcurrent < 1 {
		config.SearchMaxConcurrent = 1
	}
	if config.SearchMaxConcurrent > 64 {
		config.SearchMaxConcurrent = 64
	}

	if config.SearchRateLimit < 0 {
		config.SearchRateLimit = 0
	}
	if config.SearchRateLimit > 0 && config.SearchRateBurst < 1 {
		config.SearchRateBurst = 1
	}

	switch config.LogLevel {
	case "trace", "debug", "info", "warn", "error":
	default:
		config.LogLevel = "info"
	}

	return nil
}

// ResolveFilesRoot canonicalizes FilesRoot (absolute path, symlinks
// resolved) and verifies it is an existing directory. The sandbox relies on
// the root being canonical, so this must run before any search is served.
func ResolveFilesRoot(config *Config) error {
	abs, err := filepath.Abs(config.FilesRoot)
	if err != nil {
		return fmt.Errorf("failed to resolve FILES_ROOT %q: %w", config.FilesRoot, err)
	}

	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return fmt.Errorf("FILES_ROOT directory does not exist: %q: %w", config.FilesRoot, err)
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return fmt.Errorf("FILES_ROOT is not accessible: %q: %w", config.FilesRoot, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("FILES_ROOT is not a directory: %q", config.FilesRoot)
	}

	config.FilesRoot = resolved
	return nil
}
