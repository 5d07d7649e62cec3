package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds everything the CLI needs to issue a call: the client
// configuration plus operation inputs and output options.
type Config struct {
	Endpoint    string            `mapstructure:"endpoint"`
	Query       string            `mapstructure:"query"`
	QueryFile   string            `mapstructure:"query_file"`
	Variables   map[string]any    `mapstructure:"variables"`
	VarsFile    string            `mapstructure:"vars_file"`
	Headers     map[string]string `mapstructure:"headers"`
	Timeout     time.Duration     `mapstructure:"timeout"`
	Extract     string            `mapstructure:"extract"`
	JSONOutput  bool              `mapstructure:"json_output"`
	HistoryFile string            `mapstructure:"history"`
	Interval    time.Duration     `mapstructure:"interval"`
	Tracing     TracingConfig     `mapstructure:"tracing"`
	ConfigFile  string            `mapstructure:"-"`
}

// TracingConfig controls OTLP trace export and header propagation.
type TracingConfig struct {
	ServiceName string  `mapstructure:"service_name"`
	Endpoint    string  `mapstructure:"endpoint"`
	Protocol    string  `mapstructure:"protocol"`
	Insecure    bool    `mapstructure:"insecure"`
	SampleRate  float64 `mapstructure:"sample_rate"`
	Propagate   bool    `mapstructure:"propagate"`
}

// Enabled reports whether an export endpoint is configured. Load has
// already folded in the OTEL_EXPORTER_OTLP_ENDPOINT fallback.
func (t TracingConfig) Enabled() bool {
	return strings.TrimSpace(t.Endpoint) != ""
}

// ShouldPropagate reports whether W3C trace headers are injected into
// outgoing calls.
func (t TracingConfig) ShouldPropagate() bool {
	return t.Propagate
}

// ValidationError aggregates every configuration issue found.
type ValidationError struct {
	issues []string
}

func (e ValidationError) Error() string {
	if len(e.issues) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(e.issues, "; "))
}

func (e ValidationError) Issues() []string {
	return append([]string(nil), e.issues...)
}

func (c Config) Validate() error {
	var issues []string

	if strings.TrimSpace(c.Endpoint) == "" {
		issues = append(issues, "endpoint is required")
	}
	if strings.TrimSpace(c.Query) == "" && strings.TrimSpace(c.QueryFile) == "" {
		issues = append(issues, "query or query file is required")
	}
	if strings.TrimSpace(c.Query) != "" && strings.TrimSpace(c.QueryFile) != "" {
		issues = append(issues, "query and query file are mutually exclusive")
	}
	if c.Timeout < 0 {
		issues = append(issues, "timeout must be >= 0")
	}
	if c.Interval < 0 {
		issues = append(issues, "interval must be >= 0")
	}
	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1.0 {
		issues = append(issues, "tracing sample_rate must be between 0.0 and 1.0")
	}
	if p := strings.ToLower(strings.TrimSpace(c.Tracing.Protocol)); p != "" && p != "grpc" && p != "http" {
		issues = append(issues, fmt.Sprintf("tracing protocol %q is not supported", c.Tracing.Protocol))
	}

	if len(issues) > 0 {
		return ValidationError{issues: issues}
	}
	return nil
}

// OperationText returns the operation document, reading the query file
// when no inline query is set. The text is opaque; nothing parses it.
func (c Config) OperationText() (string, error) {
	if strings.TrimSpace(c.Query) != "" {
		return c.Query, nil
	}
	path := strings.TrimSpace(c.QueryFile)
	if path == "" {
		return "", fmt.Errorf("no query configured")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("query file: %w", err)
	}
	return string(data), nil
}

// ResolvedVariables merges the vars file (YAML or JSON) under the
// explicitly configured variables; explicit variables win per key.
func (c Config) ResolvedVariables() (map[string]any, error) {
	merged := map[string]any{}

	if path := strings.TrimSpace(c.VarsFile); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("vars file: %w", err)
		}
		if err := yaml.Unmarshal(data, &merged); err != nil {
			return nil, fmt.Errorf("vars file: %w", err)
		}
	}

	for key, value := range c.Variables {
		merged[key] = value
	}
	return merged, nil
}
