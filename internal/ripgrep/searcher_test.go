package ripgrep

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ca-srg/rgmcp/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// fakeExecutor is the deterministic stand-in for the subprocess capability.
type fakeExecutor struct {
	calls  []*Command
	output *RawOutput
	err    error
}

func (f *fakeExecutor) Run(_ context.Context, cmd *Command) (*RawOutput, error) {
	f.calls = append(f.calls, cmd)
	if f.err != nil {
		return nil, f.err
	}
	return f.output, nil
}

func testConfig(t *testing.T) *types.Config {
	root, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	return &types.Config{
		FilesRoot:            root,
		RgBinary:             "rg",
		SearchTimeout:        10 * time.Second,
		SearchMaxOutputBytes: 1 << 20,
		SearchMaxConcurrent:  2,
		LogLevel:             "info",
	}
}

func TestSearchRejectsInvalidRequestsBeforeSpawn(t *testing.T) {
	cfg := testConfig(t)

	tests := []struct {
		name string
		req  *types.SearchRequest
	}{
		{"nil request", nil},
		{"empty pattern", &types.SearchRequest{Pattern: ""}},
		{"whitespace pattern", &types.SearchRequest{Pattern: "   \t"}},
		{"negative context lines", &types.SearchRequest{Pattern: "p", ContextLines: -1}},
		{"negative max depth", &types.SearchRequest{Pattern: "p", MaxDepth: intPtr(-2)}},
		{"blank file type", &types.SearchRequest{Pattern: "p", FileTypes: []string{" "}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeExecutor{}
			s := NewSearcher(cfg, fake)

			_, err := s.Search(context.Background(), tt.req)
			require.Error(t, err)
			assert.True(t, types.IsKind(err, types.ErrInvalidParams), "got %v", err)
			assert.Empty(t, fake.calls, "no subprocess may be spawned for invalid params")
		})
	}
}

func TestSearchRejectsTraversalBeforeSpawn(t *testing.T) {
	cfg := testConfig(t)
	fake := &fakeExecutor{}
	s := NewSearcher(cfg, fake)

	_, err := s.Search(context.Background(), &types.SearchRequest{Pattern: "p", Path: "../outside"})
	require.Error(t, err)
	assert.True(t, types.IsKind(err, types.ErrPathTraversal))
	assert.Empty(t, fake.calls)
}

func TestSearchPipelineWithFakeExecutor(t *testing.T) {
	cfg := testConfig(t)
	writeFile(t, cfg.FilesRoot, "src/lib.rs", "fn main() {}\n")

	fake := &fakeExecutor{output: &RawOutput{
		Stdout:  []byte("src/lib.rs:1:fn main() {}\n"),
		Elapsed: 7 * time.Millisecond,
	}}
	s := NewSearcher(cfg, fake)

	result, err := s.Search(context.Background(), &types.SearchRequest{
		Pattern:     "fn main",
		Path:        "src",
		LineNumbers: true,
	})
	require.NoError(t, err)

	require.Equal(t, []string{"src/lib.rs:1:fn main() {}"}, result.Matches)
	assert.Equal(t, 1, result.Stats.MatchedLines)
	assert.Equal(t, int64(7), result.Stats.ElapsedMs)
	assert.Len(t, result.Matches, result.Stats.MatchedLines)

	require.Len(t, fake.calls, 1)
	cmd := fake.calls[0]
	assert.Equal(t, cfg.FilesRoot, cmd.Dir, "engine runs with the root as working directory")
	assert.Equal(t, "src", cmd.Args[len(cmd.Args)-1], "target is passed root-relative")
	assert.Contains(t, cmd.Args, "--")
}

func TestSearchDefaultsToRootTarget(t *testing.T) {
	cfg := testConfig(t)
	fake := &fakeExecutor{output: &RawOutput{}}
	s := NewSearcher(cfg, fake)

	_, err := s.Search(context.Background(), &types.SearchRequest{Pattern: "p"})
	require.NoError(t, err)

	require.Len(t, fake.calls, 1)
	assert.Equal(t, ".", fake.calls[0].Args[len(fake.calls[0].Args)-1])
}

func TestSearchPropagatesExecutorErrors(t *testing.T) {
	cfg := testConfig(t)
	fake := &fakeExecutor{err: types.NewError(types.ErrTimeout, "search exceeded the 10s time limit")}
	s := NewSearcher(cfg, fake)

	_, err := s.Search(context.Background(), &types.SearchRequest{Pattern: "p"})
	require.Error(t, err)
	assert.True(t, types.IsKind(err, types.ErrTimeout))
}

func TestSearchEndToEndWithRipgrep(t *testing.T) {
	if _, err := exec.LookPath("rg"); err != nil {
		t.Skip("rg not installed")
	}

	cfg := testConfig(t)
	filler := strings.Repeat("// filler\n", 9)
	writeFile(t, cfg.FilesRoot, "src/lib.rs", filler+"fn main() {}\n")
	writeFile(t, cfg.FilesRoot, "README.md", "nothing to see\n")

	s := NewSearcher(cfg, NewProcessExecutor(cfg.SearchTimeout, cfg.SearchMaxOutputBytes))

	req := &types.SearchRequest{Pattern: "fn main", Path: "src", LineNumbers: true}

	result, err := s.Search(context.Background(), req)
	require.NoError(t, err)

	require.Equal(t, []string{"src/lib.rs:10:fn main() {}"}, result.Matches)
	assert.Equal(t, 1, result.Stats.MatchedLines)
	assert.GreaterOrEqual(t, result.Stats.ElapsedMs, int64(0))

	// Idempotence: an unchanged tree yields identical matches.
	again, err := s.Search(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, result.Matches, again.Matches)
}

func TestSearchNoMatchesIsEmptySuccess(t *testing.T) {
	if _, err := exec.LookPath("rg"); err != nil {
		t.Skip("rg not installed")
	}

	cfg := testConfig(t)
	writeFile(t, cfg.FilesRoot, "a.txt", "alpha\n")

	s := NewSearcher(cfg, NewProcessExecutor(cfg.SearchTimeout, cfg.SearchMaxOutputBytes))

	result, err := s.Search(context.Background(), &types.SearchRequest{Pattern: "zebra-not-present"})
	require.NoError(t, err)
	assert.Empty(t, result.Matches)
	assert.Zero(t, result.Stats.MatchedLines)
}

func TestSearchFileTypeFilterWithRipgrep(t *testing.T) {
	if _, err := exec.LookPath("rg"); err != nil {
		t.Skip("rg not installed")
	}

	cfg := testConfig(t)
	writeFile(t, cfg.FilesRoot, "hello.rs", "fn hello_world() {}\n")
	writeFile(t, cfg.FilesRoot, "hello.js", "function helloWorld() {}\n")

	s := NewSearcher(cfg, NewProcessExecutor(cfg.SearchTimeout, cfg.SearchMaxOutputBytes))

	result, err := s.Search(context.Background(), &types.SearchRequest{
		Pattern:      "hello",
		FixedStrings: true,
		FileTypes:    []string{"rust"},
	})
	require.NoError(t, err)
	require.Len(t, result.Matches, 1)
	assert.Contains(t, result.Matches[0], "hello.rs")
}
