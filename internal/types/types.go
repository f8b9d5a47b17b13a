package types

import (
	"time"
)

// Config holds all runtime configuration resolved from environment variables.
// It is populated once at startup and treated as read-only afterwards; every
// component receives it (or the fields it needs) explicitly rather than
// reading ambient process state.
type Config struct {
	// Search sandbox
	FilesRoot string `json:"files_root" env:"FILES_ROOT"`

	// Logging
	LogLevel string `json:"log_level" env:"LOG_LEVEL,default=info"`

	// Ripgrep engine
	RgBinary             string        `json:"rg_binary" env:"RG_BINARY,default=rg"`
	SearchTimeout        time.Duration `json:"search_timeout" env:"SEARCH_TIMEOUT,default=30s"`
	SearchMaxOutputBytes int           `json:"search_max_output_bytes" env:"SEARCH_MAX_OUTPUT_BYTES,default=10485760"`
	SearchMaxConcurrent  int           `json:"search_max_concurrent" env:"SEARCH_MAX_CONCURRENT,default=4"`
	SearchRateLimit      float64       `json:"search_rate_limit" env:"SEARCH_RATE_LIMIT,default=0"`
	SearchRateBurst      int           `json:"search_rate_burst" env:"SEARCH_RATE_BURST,default=1"`

	// MCP server
	MCPToolNameSearch string `json:"mcp_tool_name_search" env:"MCP_TOOL_NAME_SEARCH"`

	// OpenTelemetry
	OTelEnabled              bool          `json:"otel_enabled" env:"OTEL_ENABLED,default=false"`
	OTelServiceName          string        `json:"otel_service_name" env:"OTEL_SERVICE_NAME,default=rgmcp"`
	OTelExporterOTLPEndpoint string        `json:"otel_exporter_otlp_endpoint" env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OTelExporterOTLPProtocol string        `json:"otel_exporter_otlp_protocol" env:"OTEL_EXPORTER_OTLP_PROTOCOL,default=http/protobuf"`
	OTelResourceAttributes   string        `json:"otel_resource_attributes" env:"OTEL_RESOURCE_ATTRIBUTES"`
	OTelTracesSampler        string        `json:"otel_traces_sampler" env:"OTEL_TRACES_SAMPLER,default=always_on"`
	OTelTracesSamplerArg     float64       `json:"otel_traces_sampler_arg" env:"OTEL_TRACES_SAMPLER_ARG,default=1.0"`
	OTelMetricExportInterval time.Duration `json:"otel_metric_export_interval" env:"OTEL_METRIC_EXPORT_INTERVAL,default=60s"`
}

// DebugLogging reports whether the configured log level asks for debug detail.
// Path resolution results are only logged when this returns true, so normal
// verbosity never leaks the filesystem layout outside the sandbox root.
func (c *Config) DebugLogging() bool {
	switch c.LogLevel {
	case "debug", "trace":
		return true
	default:
		return false
	}
}
