// internal/config/config.go
package config

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML values can be written as "30s",
// "5m" and so on.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config is the root service configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server" json:"server"`
	Fetch      FetchConfig      `yaml:"fetch" json:"fetch"`
	Classify   ClassifyConfig   `yaml:"classify" json:"classify"`
	Normalizer NormalizerConfig `yaml:"normalizer" json:"normalizer"`
	Resolver   ResolverConfig   `yaml:"resolver" json:"resolver"`
	Storage    StorageConfig    `yaml:"storage" json:"storage"`
	Discovery  DiscoveryConfig  `yaml:"discovery" json:"discovery"`
	Metrics    MetricsConfig    `yaml:"metrics" json:"metrics"`
	LogLevel   string           `yaml:"log_level" json:"log_level"`
}

// ServerConfig holds the HTTP surface settings.
type ServerConfig struct {
	Address   string  `yaml:"address" json:"address"`
	APIKey    string  `yaml:"api_key,omitempty" json:"api_key,omitempty"`
	RateLimit float64 `yaml:"rate_limit" json:"rate_limit"`
	RateBurst int     `yaml:"rate_burst" json:"rate_burst"`
}

// FetchConfig tunes the HTTP fetcher.
type FetchConfig struct {
	Timeout           Duration          `yaml:"timeout" json:"timeout"`
	RetryAttempts     int               `yaml:"retry_attempts" json:"retry_attempts"`
	RetryDelay        Duration          `yaml:"retry_delay" json:"retry_delay"`
	RequestsPerSecond float64           `yaml:"requests_per_second" json:"requests_per_second"`
	Burst             int               `yaml:"burst" json:"burst"`
	MaxBodyBytes      int64             `yaml:"max_body_bytes" json:"max_body_bytes"`
	Headers           map[string]string `yaml:"headers,omitempty" json:"headers,omitempty"`
}

// ClassifyConfig tunes table classification. Weights are not exposed in
// YAML; only the acceptance threshold is.
type ClassifyConfig struct {
	Threshold int `yaml:"threshold" json:"threshold"`
}

// NormalizerConfig selects the record normalizer. Mode is "rules" or
// "remote"; remote mode needs an endpoint and falls back to nothing
// (ingestion fails closed) on errors.
type NormalizerConfig struct {
	Mode     string   `yaml:"mode" json:"mode"`
	Endpoint string   `yaml:"endpoint,omitempty" json:"endpoint,omitempty"`
	APIKey   string   `yaml:"api_key,omitempty" json:"api_key,omitempty"`
	Model    string   `yaml:"model,omitempty" json:"model,omitempty"`
	Timeout  Duration `yaml:"timeout,omitempty" json:"timeout,omitempty"`
}

// ResolverConfig tunes duplicate resolution.
type ResolverConfig struct {
	Threshold float64  `yaml:"threshold" json:"threshold"`
	Window    Duration `yaml:"window" json:"window"`
	// Policy is "first_match" or "best_match".
	Policy string `yaml:"policy" json:"policy"`
}

// StorageConfig selects the posting store and the advisory locker.
type StorageConfig struct {
	// MongoURI enables the MongoDB store; empty means in-memory.
	MongoURI string `yaml:"mongo_uri,omitempty" json:"mongo_uri,omitempty"`
	Database string `yaml:"database" json:"database"`
	// RedisURL enables the Redis locker; empty means in-process mutex.
	RedisURL string   `yaml:"redis_url,omitempty" json:"redis_url,omitempty"`
	LockTTL  Duration `yaml:"lock_ttl" json:"lock_ttl"`
}

// DiscoveryConfig drives the scheduled category sync.
type DiscoveryConfig struct {
	Categories  []string `yaml:"categories,omitempty" json:"categories,omitempty"`
	CronSpec    string   `yaml:"cron" json:"cron"`
	Concurrency int      `yaml:"concurrency" json:"concurrency"`
	MaxPages    int      `yaml:"max_pages" json:"max_pages"`
	MaxPosts    int      `yaml:"max_posts" json:"max_posts"`
	SyncTimeout Duration `yaml:"sync_timeout" json:"sync_timeout"`
}

// MetricsConfig names the Prometheus namespace.
type MetricsConfig struct {
	Namespace string `yaml:"namespace" json:"namespace"`
}

// LoadFromFile loads configuration from a YAML file.
func LoadFromFile(filename string) (*Config, error) {
	if filename == "" {
		return nil, fmt.Errorf("configuration filename cannot be empty")
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file: %w", err)
	}

	return LoadFromBytes(data)
}

// LoadFromBytes loads configuration from YAML bytes. Environment
// variables in the form $VAR or ${VAR} are expanded before parsing.
func LoadFromBytes(data []byte) (*Config, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("configuration data cannot be empty")
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML configuration: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// LoadFromReader loads configuration from an io.Reader.
func LoadFromReader(reader io.Reader) (*Config, error) {
	if reader == nil {
		return nil, fmt.Errorf("reader cannot be nil")
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read from reader: %w", err)
	}

	return LoadFromBytes(data)
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Address == "" {
		cfg.Server.Address = ":8080"
	}
	if cfg.Server.RateLimit == 0 {
		cfg.Server.RateLimit = 10
	}
	if cfg.Server.RateBurst == 0 {
		cfg.Server.RateBurst = 20
	}

	if cfg.Fetch.Timeout == 0 {
		cfg.Fetch.Timeout = Duration(20 * time.Second)
	}
	if cfg.Fetch.RetryAttempts == 0 {
		cfg.Fetch.RetryAttempts = 1
	}
	if cfg.Fetch.RetryDelay == 0 {
		cfg.Fetch.RetryDelay = Duration(2 * time.Second)
	}
	if cfg.Fetch.RequestsPerSecond == 0 {
		cfg.Fetch.RequestsPerSecond = 1
	}
	if cfg.Fetch.Burst == 0 {
		cfg.Fetch.Burst = 3
	}
	if cfg.Fetch.MaxBodyBytes == 0 {
		cfg.Fetch.MaxBodyBytes = 8 << 20
	}

	if cfg.Classify.Threshold == 0 {
		cfg.Classify.Threshold = 2
	}

	if cfg.Normalizer.Mode == "" {
		cfg.Normalizer.Mode = "rules"
	}
	if cfg.Normalizer.Timeout == 0 {
		cfg.Normalizer.Timeout = Duration(60 * time.Second)
	}

	if cfg.Resolver.Threshold == 0 {
		cfg.Resolver.Threshold = 65
	}
	if cfg.Resolver.Window == 0 {
		cfg.Resolver.Window = Duration(60 * 24 * time.Hour)
	}
	if cfg.Resolver.Policy == "" {
		cfg.Resolver.Policy = "first_match"
	}

	if cfg.Storage.Database == "" {
		cfg.Storage.Database = "jobharvest"
	}
	if cfg.Storage.LockTTL == 0 {
		cfg.Storage.LockTTL = Duration(30 * time.Second)
	}

	if cfg.Discovery.CronSpec == "" {
		cfg.Discovery.CronSpec = "*/30 * * * *"
	}
	if cfg.Discovery.Concurrency == 0 {
		cfg.Discovery.Concurrency = 2
	}
	if cfg.Discovery.MaxPages == 0 {
		cfg.Discovery.MaxPages = 5
	}
	if cfg.Discovery.MaxPosts == 0 {
		cfg.Discovery.MaxPosts = 100
	}
	if cfg.Discovery.SyncTimeout == 0 {
		cfg.Discovery.SyncTimeout = Duration(10 * time.Minute)
	}

	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = "jobharvest"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
}

// Validate checks the configuration for values no component can run with.
func (c *Config) Validate() error {
	if c.Server.RateLimit < 0 {
		return fmt.Errorf("server.rate_limit cannot be negative")
	}

	if c.Fetch.RetryAttempts < 0 {
		return fmt.Errorf("fetch.retry_attempts cannot be negative")
	}
	if c.Fetch.RequestsPerSecond < 0 {
		return fmt.Errorf("fetch.requests_per_second cannot be negative")
	}

	if c.Classify.Threshold < 1 {
		return fmt.Errorf("classify.threshold must be at least 1")
	}

	switch strings.ToLower(c.Normalizer.Mode) {
	case "rules":
	case "remote":
		if c.Normalizer.Endpoint == "" {
			return fmt.Errorf("normalizer.endpoint is required in remote mode")
		}
	default:
		return fmt.Errorf("normalizer.mode must be \"rules\" or \"remote\", got %q", c.Normalizer.Mode)
	}

	if c.Resolver.Threshold <= 0 || c.Resolver.Threshold > 100 {
		return fmt.Errorf("resolver.threshold must be in (0, 100], got %v", c.Resolver.Threshold)
	}
	switch c.Resolver.Policy {
	case "first_match", "best_match":
	default:
		return fmt.Errorf("resolver.policy must be \"first_match\" or \"best_match\", got %q", c.Resolver.Policy)
	}

	for _, category := range c.Discovery.Categories {
		if !strings.HasPrefix(category, "http://") && !strings.HasPrefix(category, "https://") {
			return fmt.Errorf("discovery category %q is not an absolute URL", category)
		}
	}

	return nil
}
