// Package config loads abacus settings from defaults, an optional YAML or JSON
// file and ABACUS_* environment variables, in that order of precedence.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aretw0/abacus/internal/logging"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// DefaultPath is read when no config file is given explicitly. It may be absent.
const DefaultPath = "abacus.yaml"

// Store backends.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
)

// Config is the complete runtime configuration.
type Config struct {
	LogLevel     string      `mapstructure:"log_level" yaml:"log_level"`
	LogFormat    string      `mapstructure:"log_format" yaml:"log_format"`
	MaxInputSize int         `mapstructure:"max_input_size" yaml:"max_input_size"`
	HistoryLimit int         `mapstructure:"history_limit" yaml:"history_limit"`
	Store        StoreConfig `mapstructure:"store" yaml:"store"`
	HTTP         HTTPConfig  `mapstructure:"http" yaml:"http"`
	MCP          MCPConfig   `mapstructure:"mcp" yaml:"mcp"`
}

// StoreConfig selects and configures the history backend.
type StoreConfig struct {
	Backend string      `mapstructure:"backend" yaml:"backend"`
	Dir     string      `mapstructure:"dir" yaml:"dir"`
	Redis   RedisConfig `mapstructure:"redis" yaml:"redis"`
}

// RedisConfig configures the Redis history backend.
type RedisConfig struct {
	Addr     string        `mapstructure:"addr" yaml:"addr"`
	Password string        `mapstructure:"password" yaml:"password"`
	DB       int           `mapstructure:"db" yaml:"db"`
	Prefix   string        `mapstructure:"prefix" yaml:"prefix"`
	TTL      time.Duration `mapstructure:"ttl" yaml:"ttl"`
}

// HTTPConfig configures the HTTP server.
type HTTPConfig struct {
	Addr    string `mapstructure:"addr" yaml:"addr"`
	Metrics bool   `mapstructure:"metrics" yaml:"metrics"`
}

// MCPConfig configures the MCP server.
type MCPConfig struct {
	Transport string `mapstructure:"transport" yaml:"transport"` // "stdio" or "sse"
	Port      int    `mapstructure:"port" yaml:"port"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		LogLevel:     "info",
		LogFormat:    "text",
		MaxInputSize: 4096,
		HistoryLimit: 20,
		Store: StoreConfig{
			Backend: BackendMemory,
			Dir:     filepath.Join(".abacus", "history"),
			Redis: RedisConfig{
				Addr:   "localhost:6379",
				Prefix: "abacus:",
			},
		},
		HTTP: HTTPConfig{
			Addr:    ":8080",
			Metrics: true,
		},
		MCP: MCPConfig{
			Transport: "stdio",
			Port:      8081,
		},
	}
}

// envKeys maps environment variables to config keys.
var envKeys = map[string]string{
	"ABACUS_LOG_LEVEL":      "log_level",
	"ABACUS_LOG_FORMAT":     "log_format",
	"ABACUS_MAX_INPUT_SIZE": "max_input_size",
	"ABACUS_HISTORY_LIMIT":  "history_limit",
	"ABACUS_STORE":          "store.backend",
	"ABACUS_STORE_DIR":      "store.dir",
	"ABACUS_REDIS_ADDR":     "store.redis.addr",
	"ABACUS_REDIS_PASSWORD": "store.redis.password",
	"ABACUS_REDIS_DB":       "store.redis.db",
	"ABACUS_REDIS_PREFIX":   "store.redis.prefix",
	"ABACUS_REDIS_TTL":      "store.redis.ttl",
	"ABACUS_HTTP_ADDR":      "http.addr",
	"ABACUS_HTTP_METRICS":   "http.metrics",
	"ABACUS_MCP_TRANSPORT":  "mcp.transport",
	"ABACUS_MCP_PORT":       "mcp.port",
}

// Load builds the configuration from defaults, the file at path and the process environment.
// An empty path reads DefaultPath if it exists.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}
	if err := cfg.MergeFile(path); err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			// No default config file: defaults only.
		} else {
			return nil, err
		}
	}

	if err := cfg.MergeEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// MergeFile overlays the YAML or JSON file at path onto c.
func (c *Config) MergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}

	raw := map[string]any{}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		if err := json.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	} else {
		// Default to YAML
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	}
	if err := c.merge(raw); err != nil {
		return fmt.Errorf("invalid config %s: %w", filepath.Base(path), err)
	}
	return nil
}

// MergeEnv overlays ABACUS_* variables found through lookup onto c.
func (c *Config) MergeEnv(lookup func(string) (string, bool)) error {
	raw := map[string]any{}
	for env, key := range envKeys {
		if val, ok := lookup(env); ok && val != "" {
			setPath(raw, key, val)
		}
	}
	if len(raw) == 0 {
		return nil
	}
	if err := c.merge(raw); err != nil {
		return fmt.Errorf("invalid environment: %w", err)
	}
	return nil
}

// merge decodes raw into c. Weak typing lets "3" become an int and "1h" a
// duration, so the same path serves files and environment strings.
func (c *Config) merge(raw map[string]any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           c,
	})
	if err != nil {
		return err
	}
	return dec.Decode(raw)
}

func setPath(m map[string]any, key string, val any) {
	parts := strings.Split(key, ".")
	for _, p := range parts[:len(parts)-1] {
		next, ok := m[p].(map[string]any)
		if !ok {
			next = map[string]any{}
			m[p] = next
		}
		m = next
	}
	m[parts[len(parts)-1]] = val
}

// Validate checks values that cannot be expressed by types alone.
func (c *Config) Validate() error {
	var errs []error
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("unknown log format %q", c.LogFormat))
	}
	switch c.Store.Backend {
	case BackendMemory, BackendFile, BackendRedis:
	default:
		errs = append(errs, fmt.Errorf("unknown store backend %q (want memory, file or redis)", c.Store.Backend))
	}
	switch c.MCP.Transport {
	case "stdio", "sse":
	default:
		errs = append(errs, fmt.Errorf("unknown mcp transport %q (want stdio or sse)", c.MCP.Transport))
	}
	if c.MaxInputSize < 0 {
		errs = append(errs, fmt.Errorf("max_input_size must not be negative"))
	}
	if c.Store.Redis.TTL < 0 {
		errs = append(errs, fmt.Errorf("store.redis.ttl must not be negative"))
	}
	return errors.Join(errs...)
}
