package ripgrep

import (
	"context"
	"errors"
	"log"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/ca-srg/rgmcp/internal/types"
)

// ripgrep exits 1 when the search completed but nothing matched.
const exitNoMatches = 1

// stderr is small and only kept for diagnostics.
const stderrCapBytes = 64 * 1024

// RawOutput is the captured result of one engine run.
type RawOutput struct {
	Stdout    []byte
	Stderr    []byte
	Truncated bool
	Elapsed   time.Duration
}

// Executor runs a built Command and captures its output. It exists as a
// narrow capability interface so the pipeline can be tested against a
// deterministic fake without ripgrep installed.
type Executor interface {
	Run(ctx context.Context, cmd *Command) (*RawOutput, error)
}

// ProcessExecutor executes commands as real subprocesses with a wall-clock
// timeout, bounded output capture and guaranteed child termination on every
// exit path. Each Run exclusively owns the child it spawns.
type ProcessExecutor struct {
	timeout        time.Duration
	maxOutputBytes int
	logger         *log.Logger
}

// NewProcessExecutor creates an executor with the given wall-clock timeout
// and stdout capture cap.
func NewProcessExecutor(timeout time.Duration, maxOutputBytes int) *ProcessExecutor {
	return &ProcessExecutor{
		timeout:        timeout,
		maxOutputBytes: maxOutputBytes,
		logger:         log.New(os.Stderr, "[Executor] ", log.LstdFlags),
	}
}

// Run spawns the command and waits for completion, the timeout, or ctx
// cancellation, whichever comes first. Timeout and cancellation both kill
// the child's whole process group before returning.
func (e *ProcessExecutor) Run(ctx context.Context, cmd *Command) (*RawOutput, error) {
	runCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	child := exec.CommandContext(runCtx, cmd.Binary, cmd.Args...)
	child.Dir = cmd.Dir

	stdout := newBoundedBuffer(e.maxOutputBytes)
	stderr := newBoundedBuffer(stderrCapBytes)
	child.Stdout = stdout
	child.Stderr = stderr

	// Kill the entire process group so descendants spawned by the engine
	// cannot outlive it; see executor_unix.go.
	setProcessGroup(child)
	child.Cancel = func() error { return killProcessGroup(child) }
	child.WaitDelay = 5 * time.Second

	start := time.Now()
	if err := child.Start(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return nil, types.WrapError(types.ErrEngineNotFound, err, "search engine %q is not installed or not in PATH", cmd.Binary)
		}
		return nil, types.WrapError(types.ErrInternal, err, "failed to spawn %q", cmd.Binary)
	}

	waitErr := child.Wait()
	elapsed := time.Since(start)

	if runCtx.Err() != nil {
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			e.logger.Printf("search timed out after %s, child terminated", e.timeout)
			return nil, types.NewError(types.ErrTimeout, "search exceeded the %s time limit", e.timeout)
		}
		return nil, types.WrapError(types.ErrInternal, runCtx.Err(), "search canceled")
	}

	if waitErr != nil {
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) && exitErr.ExitCode() == exitNoMatches {
			// Clean run with zero matches; not an error.
		} else {
			detail := strings.TrimSpace(string(stderr.Bytes()))
			e.logger.Printf("engine failed: %v: %s", waitErr, detail)
			return nil, types.WrapError(types.ErrExecutionFailed, waitErr, "search engine failed: %s", detail)
		}
	}

	if stdout.Truncated() {
		e.logger.Printf("engine output exceeded %d bytes, result truncated", e.maxOutputBytes)
	}

	return &RawOutput{
		Stdout:    stdout.Bytes(),
		Stderr:    stderr.Bytes(),
		Truncated: stdout.Truncated(),
		Elapsed:   elapsed,
	}, nil
}

// boundedBuffer accepts writes up to a byte cap and silently drops the
// rest, remembering that it did. Dropping instead of failing keeps the
// child's stdout pipe drained so it can exit normally.
type boundedBuffer struct {
	limit     int
	buf       []byte
	truncated bool
}

func newBoundedBuffer(limit int) *boundedBuffer {
	return &boundedBuffer{limit: limit}
}

func (b *boundedBuffer) Write(p []byte) (int, error) {
	remaining := b.limit - len(b.buf)
	if remaining > 0 {
		if len(p) <= remaining {
			b.buf = append(b.buf, p...)
		} else {
			b.buf = append(b.buf, p[:remaining]...)
			b.truncated = true
		}
	} else if len(p) > 0 {
		b.truncated = true
	}
	return len(p), nil
}

func (b *boundedBuffer) Bytes() []byte {
	return b.buf
}

func (b *boundedBuffer) Truncated() bool {
	return b.truncated
}
