package config

import (
	"net/http"
	"strings"
	"time"

	"github.com/spf13/pflag"
)

// RegisterFlags sets up all CLI flags on the provided flag set.
func RegisterFlags(flags *pflag.FlagSet) {
	// Core request flags
	flags.StringP("endpoint", "e", "", "GraphQL endpoint URL")
	flags.StringP("query", "q", "", "Inline operation text (query or mutation)")
	flags.String("query-file", "", "Path to file containing the operation text")
	flags.StringArray("var", nil, "Operation variable in key=value form (value parsed as JSON when possible, repeatable)")
	flags.String("vars-file", "", "Path to YAML or JSON file with operation variables")
	flags.StringArray("header", nil, "Additional request header in key=value form (repeatable)")
	flags.Duration("timeout", 30*time.Second, "Per-request timeout (0 disables)")

	// Output flags
	flags.String("extract", "", "gjson path to extract from the response data")
	flags.Bool("json", false, "Emit the full response as JSON")
	flags.String("history", "", "Append call results to this JSONL history file")
	flags.Duration("interval", 2*time.Second, "Refetch interval for watch mode")
	flags.String("config", "", "Path to configuration file (JSON or YAML)")

	// Tracing flags
	flags.String("trace-endpoint", "", "OTLP endpoint for trace export")
	flags.String("trace-protocol", "", "OTLP protocol: 'grpc' or 'http'")
	flags.Bool("trace-insecure", false, "Disable TLS for OTLP export")
	flags.Float64("trace-sample-rate", 1.0, "Trace sampling rate between 0.0 and 1.0")
	flags.String("trace-service", "", "Service name reported on spans")
	flags.Bool("trace-propagate", false, "Inject W3C trace context headers into calls")
}

// applyFlagOverrides applies command-line flag values to the config,
// overriding values from the config file.
func applyFlagOverrides(cfg *Config, fs *pflag.FlagSet) error {
	if fs.Changed("endpoint") {
		val, err := fs.GetString("endpoint")
		if err != nil {
			return err
		}
		cfg.Endpoint = strings.TrimSpace(val)
	}
	if fs.Changed("query") {
		val, err := fs.GetString("query")
		if err != nil {
			return err
		}
		cfg.Query = val
		cfg.QueryFile = ""
	}
	if fs.Changed("query-file") {
		val, err := fs.GetString("query-file")
		if err != nil {
			return err
		}
		cfg.QueryFile = val
		cfg.Query = ""
	}
	if fs.Changed("var") {
		entries, err := fs.GetStringArray("var")
		if err != nil {
			return err
		}
		if cfg.Variables == nil {
			cfg.Variables = map[string]any{}
		}
		for _, entry := range entries {
			key, value, err := parseKeyValue(entry)
			if err != nil {
				return err
			}
			cfg.Variables[key] = coerceVariableValue(value)
		}
	}
	if fs.Changed("vars-file") {
		val, err := fs.GetString("vars-file")
		if err != nil {
			return err
		}
		cfg.VarsFile = strings.TrimSpace(val)
	}
	if fs.Changed("header") {
		entries, err := fs.GetStringArray("header")
		if err != nil {
			return err
		}
		if cfg.Headers == nil {
			cfg.Headers = map[string]string{}
		}
		for _, entry := range entries {
			key, value, err := parseKeyValue(entry)
			if err != nil {
				return err
			}
			cfg.Headers[http.CanonicalHeaderKey(key)] = strings.TrimSpace(value)
		}
	}
	if fs.Changed("timeout") {
		val, err := fs.GetDuration("timeout")
		if err != nil {
			return err
		}
		cfg.Timeout = val
	}
	if fs.Changed("extract") {
		val, err := fs.GetString("extract")
		if err != nil {
			return err
		}
		cfg.Extract = strings.TrimSpace(val)
	}
	if fs.Changed("json") {
		val, err := fs.GetBool("json")
		if err != nil {
			return err
		}
		cfg.JSONOutput = val
	}
	if fs.Changed("history") {
		val, err := fs.GetString("history")
		if err != nil {
			return err
		}
		cfg.HistoryFile = strings.TrimSpace(val)
	}
	if fs.Changed("interval") {
		val, err := fs.GetDuration("interval")
		if err != nil {
			return err
		}
		cfg.Interval = val
	}
	if fs.Changed("trace-endpoint") {
		val, err := fs.GetString("trace-endpoint")
		if err != nil {
			return err
		}
		cfg.Tracing.Endpoint = strings.TrimSpace(val)
	}
	if fs.Changed("trace-protocol") {
		val, err := fs.GetString("trace-protocol")
		if err != nil {
			return err
		}
		cfg.Tracing.Protocol = strings.ToLower(strings.TrimSpace(val))
	}
	if fs.Changed("trace-insecure") {
		val, err := fs.GetBool("trace-insecure")
		if err != nil {
			return err
		}
		cfg.Tracing.Insecure = val
	}
	if fs.Changed("trace-sample-rate") {
		val, err := fs.GetFloat64("trace-sample-rate")
		if err != nil {
			return err
		}
		cfg.Tracing.SampleRate = val
	}
	if fs.Changed("trace-service") {
		val, err := fs.GetString("trace-service")
		if err != nil {
			return err
		}
		cfg.Tracing.ServiceName = strings.TrimSpace(val)
	}
	if fs.Changed("trace-propagate") {
		val, err := fs.GetBool("trace-propagate")
		if err != nil {
			return err
		}
		cfg.Tracing.Propagate = val
	}
	return nil
}
