// Package config loads gqlguard's YAML configuration.
package config

import (
	"fmt"
	"os"
	"time"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Config represents the complete gqlguard configuration
type Config struct {
	// Schema lists SDL files merged into one schema, in order.
	Schema     []string         `yaml:"schema"`
	Log        LogConfig        `yaml:"log"`
	OTel       OTelConfig       `yaml:"otel"`
	Validation ValidationConfig `yaml:"validation"`
	Server     ServerConfig     `yaml:"server"`
}

type LogConfig struct {
	// Level is one of debug, info, warn, error (default: info)
	Level string `yaml:"level"`
}

// OTelConfig configures trace export. An empty endpoint disables it.
type OTelConfig struct {
	Endpoint string `yaml:"endpoint"`
	Service  string `yaml:"service"`
}

type ValidationConfig struct {
	// FailFast stops a document pass at the first error
	FailFast bool `yaml:"failFast"`
}

// ServerConfig configures the validation endpoint started by "serve".
type ServerConfig struct {
	Addr         string        `yaml:"addr"`
	Pretty       bool          `yaml:"pretty"`
	Timeout      time.Duration `yaml:"timeout"`
	MaxBodyBytes int64         `yaml:"maxBodyBytes"`
	CORSOrigins  []string      `yaml:"corsOrigins"`
}

// Default returns a Config with sensible defaults
func Default() *Config {
	return &Config{
		Log:  LogConfig{Level: "info"},
		OTel: OTelConfig{Service: "gqlguard"},
		Server: ServerConfig{
			Addr:         ":8080",
			Timeout:      10 * time.Second,
			MaxBodyBytes: 1 << 20,
		},
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if len(c.Schema) == 0 {
		return fmt.Errorf("schema: at least one SDL file is required")
	}
	for i, path := range c.Schema {
		if path == "" {
			return fmt.Errorf("schema[%d]: path is empty", i)
		}
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if c.OTel.Endpoint != "" && c.OTel.Service == "" {
		return fmt.Errorf("otel.service is required when otel.endpoint is set")
	}
	if c.Server.Timeout < 0 {
		return fmt.Errorf("server.timeout must not be negative")
	}
	if c.Server.MaxBodyBytes < 0 {
		return fmt.Errorf("server.maxBodyBytes must not be negative")
	}
	return nil
}

// Load reads a YAML file over the defaults. Unknown keys are rejected.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	defer f.Close()

	config := Default()
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return config, nil
}

// Merge merges another config into this one (other takes precedence for non-zero values)
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}
	if len(other.Schema) > 0 {
		c.Schema = other.Schema
	}
	if other.Log.Level != "" {
		c.Log.Level = other.Log.Level
	}
	if other.OTel.Endpoint != "" {
		c.OTel.Endpoint = other.OTel.Endpoint
	}
	if other.OTel.Service != "" {
		c.OTel.Service = other.OTel.Service
	}
	if other.Validation.FailFast {
		c.Validation.FailFast = true
	}
	if other.Server.Addr != "" {
		c.Server.Addr = other.Server.Addr
	}
	if other.Server.Pretty {
		c.Server.Pretty = true
	}
	if other.Server.Timeout != 0 {
		c.Server.Timeout = other.Server.Timeout
	}
	if other.Server.MaxBodyBytes != 0 {
		c.Server.MaxBodyBytes = other.Server.MaxBodyBytes
	}
	if len(other.Server.CORSOrigins) > 0 {
		c.Server.CORSOrigins = other.Server.CORSOrigins
	}
}
