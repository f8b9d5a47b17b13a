package observability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ca-srg/rgmcp/internal/types"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric/noop"
)

func TestLoadConfigDisabledByDefault(t *testing.T) {
	cfg, err := LoadConfig(&types.Config{OTelServiceName: "rgmcp"})
	require.NoError(t, err)

	require.False(t, cfg.Enabled)
	require.Equal(t, "rgmcp", cfg.ServiceName)
	require.Equal(t, defaultExporterProtocol, cfg.ExporterProtocol)
	require.Equal(t, 60*time.Second, cfg.MetricExportInterval)
}

func TestLoadConfigRequiresEndpointWhenEnabled(t *testing.T) {
	_, err := LoadConfig(&types.Config{OTelEnabled: true})
	require.Error(t, err)
}

func TestLoadConfigParsesResourceAttributes(t *testing.T) {
	cfg, err := LoadConfig(&types.Config{
		OTelEnabled:              true,
		OTelExporterOTLPEndpoint: "http://localhost:4318",
		OTelResourceAttributes:   "environment=dev, team = search ",
	})
	require.NoError(t, err)

	require.Equal(t, "dev", cfg.ResourceAttributes["environment"])
	require.Equal(t, "search", cfg.ResourceAttributes["team"])
}

func TestLoadConfigRejectsMalformedAttributes(t *testing.T) {
	_, err := LoadConfig(&types.Config{OTelResourceAttributes: "just-a-key"})
	require.Error(t, err)
}

func TestValidateRejectsUnknownProtocol(t *testing.T) {
	cfg := &Config{
		Enabled:          true,
		ExporterEndpoint: "http://localhost:4318",
		ExporterProtocol: "carrier-pigeon",
	}
	require.Error(t, cfg.Validate())
}

func TestNormalizeOTLPHTTPPath(t *testing.T) {
	tests := []struct {
		endpoint string
		suffix   string
		want     string
	}{
		{"http://localhost:4318", "/v1/metrics", "http://localhost:4318/v1/metrics"},
		{"http://localhost:4318/", "/v1/metrics", "http://localhost:4318/v1/metrics"},
		{"http://localhost:4318/v1/metrics", "/v1/metrics", "http://localhost:4318/v1/metrics"},
		{"https://collector.example.com/otlp", "/v1/traces", "https://collector.example.com/otlp/v1/traces"},
	}

	for _, tt := range tests {
		got, err := normalizeOTLPHTTPPath(tt.endpoint, tt.suffix)
		require.NoError(t, err)
		require.Equal(t, tt.want, got)
	}
}

func TestInitMeterExportsToOTLPHTTP(t *testing.T) {
	var metricRequests atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/metrics" {
			metricRequests.Add(1)
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	t.Cleanup(server.Close)

	cfg := &Config{
		Enabled:              true,
		ServiceName:          "rgmcp-test",
		ExporterEndpoint:     server.URL,
		ExporterProtocol:     defaultExporterProtocol,
		MetricExportInterval: time.Hour,
	}
	require.NoError(t, cfg.Validate())

	ctx := context.Background()
	mp, err := InitMeter(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	metrics, err := NewSearchMetrics()
	require.NoError(t, err)
	metrics.RecordSuccess(ctx, 12*time.Millisecond, 3)
	metrics.RecordFailure(ctx, types.ErrTimeout)

	require.NoError(t, mp.ForceFlush(ctx))
	require.GreaterOrEqual(t, metricRequests.Load(), int32(1))

	// Restore an inert provider for other tests.
	otel.SetMeterProvider(noop.NewMeterProvider())
}
