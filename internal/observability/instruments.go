package observability

import (
	"context"
	"fmt"
	"time"

	"github.com/ca-srg/rgmcp/internal/types"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/ca-srg/rgmcp"

// SearchMetrics groups the instruments recorded around each search tool
// call. A nil *SearchMetrics is valid and records nothing, so callers never
// need to branch on telemetry being configured.
type SearchMetrics struct {
	requests     metric.Int64Counter
	failures     metric.Int64Counter
	duration     metric.Float64Histogram
	matchedLines metric.Int64Counter
}

// NewSearchMetrics creates the search instruments on the globally installed
// meter provider.
func NewSearchMetrics() (*SearchMetrics, error) {
	meter := otel.Meter(instrumentationName)

	requests, err := meter.Int64Counter(
		"rgmcp.search.requests",
		metric.WithDescription("Total search tool invocations"),
	)
	if err != nil {
		return nil, fmt.Errorf("observability: failed to create request counter: %w", err)
	}

	failures, err := meter.Int64Counter(
		"rgmcp.search.failures",
		metric.WithDescription("Search tool invocations that ended in an error, by kind"),
	)
	if err != nil {
		return nil, fmt.Errorf("observability: failed to create failure counter: %w", err)
	}

	duration, err := meter.Float64Histogram(
		"rgmcp.search.duration",
		metric.WithDescription("Engine execution time per search"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("observability: failed to create duration histogram: %w", err)
	}

	matchedLines, err := meter.Int64Counter(
		"rgmcp.search.matched_lines",
		metric.WithDescription("Total match lines returned across searches"),
	)
	if err != nil {
		return nil, fmt.Errorf("observability: failed to create matched lines counter: %w", err)
	}

	return &SearchMetrics{
		requests:     requests,
		failures:     failures,
		duration:     duration,
		matchedLines: matchedLines,
	}, nil
}

// RecordSuccess records one completed search.
func (m *SearchMetrics) RecordSuccess(ctx context.Context, elapsed time.Duration, matchedLines int) {
	if m == nil {
		return
	}
	m.requests.Add(ctx, 1)
	m.duration.Record(ctx, float64(elapsed.Milliseconds()))
	m.matchedLines.Add(ctx, int64(matchedLines))
}

// RecordFailure records one failed search with its error kind.
func (m *SearchMetrics) RecordFailure(ctx context.Context, kind types.ErrorKind) {
	if m == nil {
		return
	}
	m.requests.Add(ctx, 1)
	m.failures.Add(ctx, 1, metric.WithAttributes(attribute.String("error.kind", string(kind))))
}
