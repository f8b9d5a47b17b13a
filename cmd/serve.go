package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	appcfg "github.com/ca-srg/rgmcp/internal/config"
	"github.com/ca-srg/rgmcp/internal/mcpserver"
	"github.com/ca-srg/rgmcp/internal/observability"
	"github.com/ca-srg/rgmcp/internal/ripgrep"
)

var (
	// Command line flags for the MCP server
	serveRoot           string
	serveLogLevel       string
	serveRgBinary       string
	serveTimeout        time.Duration
	serveMaxOutputBytes int
	serveMaxConcurrent  int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP search server on stdin/stdout",
	Long: `
Start an MCP server that exposes ripgrep search as a tool usable by
MCP-compatible clients like Claude Desktop, IDEs, and other applications.

The server speaks the MCP stdio transport: protocol messages go over
stdout, all logging goes to stderr. Searches never leave the configured
root directory.

Configuration is loaded from environment variables (FILES_ROOT, LOG_LEVEL,
RG_BINARY, SEARCH_TIMEOUT, ...); flags override the environment.

Examples:
  rgmcp serve                          # Serve the current directory
  rgmcp serve --root /srv/code         # Serve a specific tree
  rgmcp serve --timeout 10s            # Tighter per-search bound
`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveRoot, "root", "", "Root directory searches are confined to (default: FILES_ROOT or cwd)")
	serveCmd.Flags().StringVar(&serveLogLevel, "log-level", "info", "Log verbosity: trace, debug, info, warn, error")
	serveCmd.Flags().StringVar(&serveRgBinary, "rg-binary", "rg", "Path to the ripgrep executable")
	serveCmd.Flags().DurationVar(&serveTimeout, "timeout", 30*time.Second, "Wall-clock limit per search")
	serveCmd.Flags().IntVar(&serveMaxOutputBytes, "max-output-bytes", 10*1024*1024, "Cap on captured engine output per search")
	serveCmd.Flags().IntVar(&serveMaxConcurrent, "max-concurrent", 4, "Maximum concurrently running searches")
}

func runServe(cmd *cobra.Command, args []string) error {
	// Load .env file if present (for development)
	_ = godotenv.Load()

	cfg, err := appcfg.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Override configuration with command line flags if provided
	if cmd.Flags().Changed("root") {
		cfg.FilesRoot = serveRoot
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = serveLogLevel
	}
	if cmd.Flags().Changed("rg-binary") {
		cfg.RgBinary = serveRgBinary
	}
	if cmd.Flags().Changed("timeout") {
		cfg.SearchTimeout = serveTimeout
	}
	if cmd.Flags().Changed("max-output-bytes") {
		cfg.SearchMaxOutputBytes = serveMaxOutputBytes
	}
	if cmd.Flags().Changed("max-concurrent") {
		cfg.SearchMaxConcurrent = serveMaxConcurrent
	}

	if err := appcfg.ResolveFilesRoot(cfg); err != nil {
		return err
	}

	// Refuse to start without the engine; per-request detection would
	// only fail every call later.
	rgPath, err := exec.LookPath(cfg.RgBinary)
	if err != nil {
		return fmt.Errorf("ripgrep (%s) is not installed or not in PATH: %w", cfg.RgBinary, err)
	}

	log.Printf("Starting ripgrep MCP server")
	log.Printf("Files root directory: %s", cfg.FilesRoot)
	log.Printf("Found ripgrep at %s", rgPath)

	obsCfg, err := observability.LoadConfig(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tracerProvider, err := observability.InitTracer(ctx, obsCfg)
	if err != nil {
		return err
	}
	meterProvider, err := observability.InitMeter(ctx, obsCfg)
	if err != nil {
		return err
	}
	shutdownTelemetry := observability.NewShutdownFunc(tracerProvider, meterProvider)
	defer func() {
		if err := shutdownTelemetry(context.Background()); err != nil {
			log.Printf("telemetry shutdown: %v", err)
		}
	}()

	metrics, err := observability.NewSearchMetrics()
	if err != nil {
		return err
	}

	executor := ripgrep.NewProcessExecutor(cfg.SearchTimeout, cfg.SearchMaxOutputBytes)
	searcher := ripgrep.NewSearcher(cfg, executor)

	server, err := mcpserver.New(cfg, searcher, metrics)
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}

	if err := server.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("server error: %w", err)
	}

	log.Printf("Server shutdown")
	return nil
}
