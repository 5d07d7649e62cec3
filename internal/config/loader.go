package config

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Load builds a Config from a parsed flag set, reading the config file
// named by --config first and letting explicit flags override it.
func Load(flags *pflag.FlagSet) (*Config, error) {
	configPath, err := flags.GetString("config")
	if err != nil {
		return nil, err
	}
	configPath = strings.TrimSpace(configPath)

	settings := map[string]interface{}{}
	if configPath != "" {
		cfgViper := viper.New()
		cfgViper.SetConfigFile(configPath)
		if err := cfgViper.ReadInConfig(); err != nil {
			return nil, err
		}
		settings = cfgViper.AllSettings()
	}

	cfg := &Config{
		Headers:    map[string]string{},
		Variables:  map[string]any{},
		Timeout:    30 * time.Second,
		Interval:   2 * time.Second,
		Tracing:    TracingConfig{SampleRate: 1.0},
		ConfigFile: configPath,
	}

	if err := applyConfigSettings(cfg, settings); err != nil {
		return nil, err
	}
	if err := applyFlagOverrides(cfg, flags); err != nil {
		return nil, err
	}

	cfg.Endpoint = strings.TrimSpace(cfg.Endpoint)
	cfg.QueryFile = strings.TrimSpace(cfg.QueryFile)
	cfg.VarsFile = strings.TrimSpace(cfg.VarsFile)

	// Standard OTel environment variables fill tracing gaps the file
	// and flags left open, lowest precedence of the three.
	if cfg.Tracing.Endpoint == "" {
		cfg.Tracing.Endpoint = strings.TrimSpace(os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"))
	}
	if cfg.Tracing.ServiceName == "" {
		cfg.Tracing.ServiceName = strings.TrimSpace(os.Getenv("OTEL_SERVICE_NAME"))
	}

	return cfg, nil
}

// applyConfigSettings applies settings from a config file to the
// Config struct.
func applyConfigSettings(cfg *Config, settings map[string]interface{}) error {
	if len(settings) == 0 {
		return nil
	}

	if raw, ok := lookupSetting(settings, "endpoint", "target"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("endpoint: %w", err)
		}
		cfg.Endpoint = strings.TrimSpace(val)
	}

	if raw, ok := lookupSetting(settings, "query"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("query: %w", err)
		}
		cfg.Query = val
	}

	if raw, ok := lookupSetting(settings, "queryfile", "query_file", "query-file"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("queryFile: %w", err)
		}
		cfg.QueryFile = val
	}

	if raw, ok := lookupSetting(settings, "variables"); ok {
		vars, err := toStringKeyMap(raw)
		if err != nil {
			return fmt.Errorf("variables: %w", err)
		}
		for key, value := range vars {
			cfg.Variables[key] = value
		}
	}

	if raw, ok := lookupSetting(settings, "varsfile", "vars_file", "vars-file"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("varsFile: %w", err)
		}
		cfg.VarsFile = val
	}

	if raw, ok := lookupSetting(settings, "headers"); ok {
		hdrs, err := asStringMap(raw)
		if err != nil {
			return fmt.Errorf("headers: %w", err)
		}
		for k, v := range hdrs {
			cfg.Headers[http.CanonicalHeaderKey(k)] = v
		}
	}

	if raw, ok := lookupSetting(settings, "timeout"); ok {
		dur, err := asDuration(raw)
		if err != nil {
			return fmt.Errorf("timeout: %w", err)
		}
		cfg.Timeout = dur
	}

	if raw, ok := lookupSetting(settings, "extract"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("extract: %w", err)
		}
		cfg.Extract = strings.TrimSpace(val)
	}

	if raw, ok := lookupSetting(settings, "jsonoutput", "json_output", "json-output", "json"); ok {
		val, err := asBool(raw)
		if err != nil {
			return fmt.Errorf("jsonOutput: %w", err)
		}
		cfg.JSONOutput = val
	}

	if raw, ok := lookupSetting(settings, "history"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("history: %w", err)
		}
		cfg.HistoryFile = strings.TrimSpace(val)
	}

	if raw, ok := lookupSetting(settings, "interval"); ok {
		dur, err := asDuration(raw)
		if err != nil {
			return fmt.Errorf("interval: %w", err)
		}
		cfg.Interval = dur
	}

	if raw, ok := lookupSetting(settings, "tracing"); ok {
		tracing, err := parseTracing(raw)
		if err != nil {
			return fmt.Errorf("tracing: %w", err)
		}
		if tracing.SampleRate == 0 && !tracingHasSampleRate(raw) {
			tracing.SampleRate = cfg.Tracing.SampleRate
		}
		cfg.Tracing = tracing
	}

	return nil
}

func tracingHasSampleRate(value interface{}) bool {
	entry, err := toStringKeyMap(value)
	if err != nil {
		return false
	}
	_, ok := lookupSetting(entry, "samplerate", "sample_rate", "sample-rate")
	return ok
}

func parseTracing(value interface{}) (TracingConfig, error) {
	if value == nil {
		return TracingConfig{}, nil
	}
	entry, err := toStringKeyMap(value)
	if err != nil {
		return TracingConfig{}, err
	}

	var tracing TracingConfig
	if raw, ok := lookupSetting(entry, "servicename", "service_name", "service-name"); ok {
		val, err := asString(raw)
		if err != nil {
			return TracingConfig{}, fmt.Errorf("service_name: %w", err)
		}
		tracing.ServiceName = strings.TrimSpace(val)
	}
	if raw, ok := lookupSetting(entry, "endpoint"); ok {
		val, err := asString(raw)
		if err != nil {
			return TracingConfig{}, fmt.Errorf("endpoint: %w", err)
		}
		tracing.Endpoint = strings.TrimSpace(val)
	}
	if raw, ok := lookupSetting(entry, "protocol"); ok {
		val, err := asString(raw)
		if err != nil {
			return TracingConfig{}, fmt.Errorf("protocol: %w", err)
		}
		tracing.Protocol = strings.ToLower(strings.TrimSpace(val))
	}
	if raw, ok := lookupSetting(entry, "insecure"); ok {
		val, err := asBool(raw)
		if err != nil {
			return TracingConfig{}, fmt.Errorf("insecure: %w", err)
		}
		tracing.Insecure = val
	}
	if raw, ok := lookupSetting(entry, "samplerate", "sample_rate", "sample-rate"); ok {
		val, err := asFloat64(raw)
		if err != nil {
			return TracingConfig{}, fmt.Errorf("sample_rate: %w", err)
		}
		tracing.SampleRate = val
	}
	if raw, ok := lookupSetting(entry, "propagate"); ok {
		val, err := asBool(raw)
		if err != nil {
			return TracingConfig{}, fmt.Errorf("propagate: %w", err)
		}
		tracing.Propagate = val
	}
	return tracing, nil
}
