// internal/config/config.go
package config

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tamzrod/mate3-sunspec/internal/sunspec"
)

type Config struct {
	Log     LogConfig      `yaml:"log"`
	Metrics MetricsConfig  `yaml:"metrics"`
	Redis   RedisConfig    `yaml:"redis"`
	Devices []DeviceConfig `yaml:"devices"`
}

// ---- AMBIENT ----

type LogConfig struct {
	Level    string `yaml:"level"`  // debug, info, warn, error
	Format   string `yaml:"format"` // text, json
	Output   string `yaml:"output"` // stdout, file
	FilePath string `yaml:"file_path"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Listen  string `yaml:"listen"`
}

// ---- REPORTING ----

type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Channel  string `yaml:"channel"`
	History  int64  `yaml:"history"` // per-device list length; 0 disables the list
}

// ---- DEVICE ----

type DeviceConfig struct {
	ID     string       `yaml:"id"`
	Source SourceConfig `yaml:"source"`
	Poll   PollConfig   `yaml:"poll"`
}

type SourceConfig struct {
	Endpoint  string `yaml:"endpoint"`
	UnitID    uint8  `yaml:"unit_id"`
	TimeoutMs int    `yaml:"timeout_ms"`

	// SunSpec root; nil means the MATE3 default.
	BaseAddress *uint16 `yaml:"base_address"`
}

// Base returns the configured SunSpec root address.
func (s SourceConfig) Base() uint16 {
	if s.BaseAddress == nil {
		return sunspec.DefaultBaseAddress
	}
	return *s.BaseAddress
}

// ---- POLL ----

type PollConfig struct {
	IntervalMs int  `yaml:"interval_ms"`
	Once       bool `yaml:"once"` // walk the chain once and exit
}

// Load reads and parses a YAML config file.
// It does not validate; call Validate then Normalize.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes YAML config bytes. Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	return &cfg, nil
}
