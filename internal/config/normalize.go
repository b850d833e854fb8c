// internal/config/normalize.go
package config

import "strings"

const (
	defaultTimeoutMs    = 2000
	defaultMetricsAddr  = ":9090"
	defaultRedisAddr    = "localhost:6379"
	defaultRedisChannel = "mate3"
)

// Normalize applies post-validation defaults.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	cfg.Log.Level = strings.ToLower(cfg.Log.Level)
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}

	if cfg.Metrics.Listen == "" {
		cfg.Metrics.Listen = defaultMetricsAddr
	}

	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = defaultRedisAddr
	}
	if cfg.Redis.Channel == "" {
		cfg.Redis.Channel = defaultRedisChannel
	}

	for i := range cfg.Devices {
		d := &cfg.Devices[i]

		if d.Source.TimeoutMs == 0 {
			d.Source.TimeoutMs = defaultTimeoutMs
		}
		// MATE3 answers as unit 1 unless reconfigured
		if d.Source.UnitID == 0 {
			d.Source.UnitID = 1
		}
	}
}
