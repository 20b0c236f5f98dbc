package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// EnvPath names the environment variable consulted when no -config flag is
// given.
const EnvPath = "CLF_CONFIG"

// Resolve picks the config path from the flag value or the environment.
func Resolve(flagPath string) string {
	if flagPath != "" {
		return flagPath
	}
	return os.Getenv(EnvPath)
}

// Load reads, parses, and validates configuration from the provided path. An
// empty path yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := Config{Follow: FollowConfig{ReOpen: true}}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

func validate(c *Config) error {
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("unsupported logging.level %q", c.Logging.Level)
	}

	if c.Input.OnError == "" {
		c.Input.OnError = OnErrorSkip
	}
	if c.Input.OnError != OnErrorSkip && c.Input.OnError != OnErrorAbort {
		return fmt.Errorf("input.on_error must be %q or %q, got %q", OnErrorSkip, OnErrorAbort, c.Input.OnError)
	}

	if c.Input.Compression == "" {
		c.Input.Compression = "auto"
	}
	switch c.Input.Compression {
	case "auto", "none", "gzip", "zstd":
	default:
		return fmt.Errorf("unsupported input.compression %q", c.Input.Compression)
	}

	return nil
}
