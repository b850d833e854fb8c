// internal/config/validate.go
package config

import (
	"fmt"
	"net"
	"strings"
)

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config: empty configuration")
	}

	// ------------------------------------------------------------
	// AMBIENT
	// ------------------------------------------------------------

	switch strings.ToLower(cfg.Log.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("log.level %q: want debug, info, warn or error", cfg.Log.Level)
	}

	switch cfg.Log.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("log.format %q: want text or json", cfg.Log.Format)
	}

	if cfg.Log.Output == "file" && cfg.Log.FilePath == "" {
		return fmt.Errorf("log.output is file but log.file_path is empty")
	}

	if cfg.Redis.Enabled && cfg.Redis.History < 0 {
		return fmt.Errorf("redis.history must be >= 0")
	}

	// ------------------------------------------------------------
	// DEVICES
	// ------------------------------------------------------------

	if len(cfg.Devices) == 0 {
		return fmt.Errorf("at least one device is required")
	}

	seen := make(map[string]struct{})
	endpoints := make(map[string]string)

	for _, d := range cfg.Devices {
		if d.ID == "" {
			return fmt.Errorf("device id is required")
		}
		if _, dup := seen[d.ID]; dup {
			return fmt.Errorf("device %q: duplicate id", d.ID)
		}
		seen[d.ID] = struct{}{}

		if d.Source.Endpoint == "" {
			return fmt.Errorf("device %q: source.endpoint is required", d.ID)
		}
		if _, _, err := net.SplitHostPort(d.Source.Endpoint); err != nil {
			return fmt.Errorf("device %q: source.endpoint %q: %v", d.ID, d.Source.Endpoint, err)
		}

		// one walker per connection: two devices must not share a unit on one endpoint
		unitID := d.Source.UnitID
		if unitID == 0 {
			unitID = 1 // Normalize default
		}
		key := fmt.Sprintf("%s|%d", d.Source.Endpoint, unitID)
		if prev, exists := endpoints[key]; exists {
			return fmt.Errorf(
				"endpoint collision: endpoint=%s unit_id=%d used by devices %q and %q",
				d.Source.Endpoint,
				unitID,
				prev,
				d.ID,
			)
		}
		endpoints[key] = d.ID

		if d.Source.TimeoutMs < 0 {
			return fmt.Errorf("device %q: source.timeout_ms must be >= 0", d.ID)
		}
		if !d.Poll.Once && d.Poll.IntervalMs <= 0 {
			return fmt.Errorf("device %q: poll.interval_ms must be > 0 unless poll.once is set", d.ID)
		}
	}

	return nil
}
