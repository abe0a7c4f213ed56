package di

import (
	"fmt"
	"net/url"
	"os"

	"gopkg.in/yaml.v3"
)

// CacheConfig is the YAML-friendly slice of the cache configuration. Zero
// fields fall back to the cache defaults.
type CacheConfig struct {
	Capacity           int `yaml:"capacity"`
	NumShards          int `yaml:"num_shards"`
	RetentionSeconds   int `yaml:"retention_seconds"`
	EvictionPercentage int `yaml:"eviction_percentage"`
}

// Config is the container configuration.
type Config struct {
	BaseURL   string      `yaml:"base_url"`
	UserAgent string      `yaml:"user_agent"`
	Cache     CacheConfig `yaml:"cache"`
}

// DefaultConfig returns a Config with everything but the base URL filled.
func DefaultConfig() Config {
	return Config{
		UserAgent: "erpkit/1.0",
	}
}

// LoadConfig reads a YAML config file and validates it.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("di: read config %s: %w", path, err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("di: parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration values.
func (c Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("di: base_url is required")
	}
	if _, err := url.Parse(c.BaseURL); err != nil {
		return fmt.Errorf("di: invalid base_url %q: %w", c.BaseURL, err)
	}
	if c.Cache.Capacity < 0 || c.Cache.NumShards < 0 || c.Cache.RetentionSeconds < 0 {
		return fmt.Errorf("di: cache sizing values must be non-negative")
	}
	if c.Cache.EvictionPercentage < 0 || c.Cache.EvictionPercentage > 100 {
		return fmt.Errorf("di: cache eviction_percentage must be between 0 and 100")
	}
	return nil
}
