// Package config handles configuration loading and validation for herald.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Storage drivers.
const (
	StorageFile   = "file"
	StorageRedis  = "redis"
	StorageMemory = "memory"
)

// Config holds the application configuration.
type Config struct {
	Backend       BackendConfig       `yaml:"backend"`
	Delivery      DeliveryConfig      `yaml:"delivery"`
	Push          PushConfig          `yaml:"push"`
	Storage       StorageConfig       `yaml:"storage"`
	NATS          NATSConfig          `yaml:"nats"`
	Worker        WorkerConfig        `yaml:"worker"`
	Notifications NotificationsConfig `yaml:"notifications"`
	Firebase      FirebaseConfig      `yaml:"firebase"`
	TUI           TUIConfig           `yaml:"tui"`
	DataDir       string              `yaml:"-"` // set by caller, not from config file
}

// BackendConfig points at the REST backend hosting the device registry.
type BackendConfig struct {
	URL       string        `yaml:"url"`
	AuthToken string        `yaml:"auth_token"`
	UserID    string        `yaml:"user_id"` // optional; derived from auth_token claims when empty
	Timeout   time.Duration `yaml:"timeout"`
}

// DeliveryConfig points at the push-delivery service issuing tokens.
type DeliveryConfig struct {
	URL      string        `yaml:"url"`
	AppID    string        `yaml:"app_id"`
	VAPIDKey string        `yaml:"vapid_key"`
	Timeout  time.Duration `yaml:"timeout"`
}

// PushConfig tunes token handling. The registration cooldown is fixed.
type PushConfig struct {
	TokenTTL time.Duration `yaml:"token_ttl"`
}

// StorageConfig selects the durable storage backend.
type StorageConfig struct {
	Driver      string `yaml:"driver"` // file, redis, memory
	Path        string `yaml:"path"`   // file driver; defaults to <data-dir>/state.json
	Watch       bool   `yaml:"watch"`  // reload the state file on external writes
	RedisURL    string `yaml:"redis_url"`
	RedisPrefix string `yaml:"redis_prefix"`
}

// NATSConfig configures the foreground message source. An empty URL uses
// the in-process source.
type NATSConfig struct {
	URL           string `yaml:"url"`
	SubjectPrefix string `yaml:"subject_prefix"`
}

// WorkerConfig configures the background worker.
type WorkerConfig struct {
	Listen     string `yaml:"listen"`
	ScriptPath string `yaml:"script_path"`
	Scope      string `yaml:"scope"`
	BaseURL    string `yaml:"base_url"` // prefix for relative click URLs
	Opener     string `yaml:"opener"`   // command used to open URLs; auto-detected when empty
}

// NotificationsConfig controls native display and the in-memory store.
type NotificationsConfig struct {
	Enabled  bool     `yaml:"enabled"`
	Mute     []string `yaml:"mute"` // doublestar patterns matched against record URLs
	MaxItems int      `yaml:"max_items"`
}

// FirebaseConfig enables `herald push test`.
type FirebaseConfig struct {
	CredentialsFile string `yaml:"credentials_file"`
	ProjectID       string `yaml:"project_id"`
}

// TUIConfig configures the presenter.
type TUIConfig struct {
	Theme string `yaml:"theme"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Backend: BackendConfig{
			Timeout: 10 * time.Second,
		},
		Delivery: DeliveryConfig{
			Timeout: 10 * time.Second,
		},
		Push: PushConfig{
			TokenTTL: time.Hour,
		},
		Storage: StorageConfig{
			Driver:      StorageFile,
			Watch:       true,
			RedisPrefix: "herald:",
		},
		NATS: NATSConfig{
			SubjectPrefix: "herald.push",
		},
		Worker: WorkerConfig{
			Listen:     "127.0.0.1:7420",
			ScriptPath: "/firebase-messaging-sw.js",
			Scope:      "/",
		},
		Notifications: NotificationsConfig{
			Enabled:  true,
			MaxItems: 200,
		},
		TUI: TUIConfig{
			Theme: "tokyo-night",
		},
	}
}

// Load reads configuration from the given path and sets the data directory.
// If configPath is empty or doesn't exist, returns defaults with the provided dataDir.
func Load(configPath, dataDir string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.DataDir = dataDir

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}

			// Re-set dataDir since Unmarshal may have cleared it
			cfg.DataDir = dataDir
		}
	}

	// Expand environment references such as ${HERALD_TOKEN} in secrets.
	cfg.Backend.AuthToken = os.ExpandEnv(cfg.Backend.AuthToken)
	cfg.Storage.RedisURL = os.ExpandEnv(cfg.Storage.RedisURL)

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.Backend.Timeout == 0 {
		c.Backend.Timeout = defaults.Backend.Timeout
	}
	if c.Delivery.Timeout == 0 {
		c.Delivery.Timeout = defaults.Delivery.Timeout
	}
	if c.Push.TokenTTL == 0 {
		c.Push.TokenTTL = defaults.Push.TokenTTL
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = defaults.Storage.Driver
	}
	if c.Storage.RedisPrefix == "" {
		c.Storage.RedisPrefix = defaults.Storage.RedisPrefix
	}
	if c.NATS.SubjectPrefix == "" {
		c.NATS.SubjectPrefix = defaults.NATS.SubjectPrefix
	}
	if c.Worker.Listen == "" {
		c.Worker.Listen = defaults.Worker.Listen
	}
	if c.Worker.ScriptPath == "" {
		c.Worker.ScriptPath = defaults.Worker.ScriptPath
	}
	if c.Worker.Scope == "" {
		c.Worker.Scope = defaults.Worker.Scope
	}
	if c.TUI.Theme == "" {
		c.TUI.Theme = defaults.TUI.Theme
	}
}

// Validate checks that the configuration is structurally valid.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data directory cannot be empty")
	}

	switch c.Storage.Driver {
	case StorageFile, StorageMemory:
	case StorageRedis:
		if c.Storage.RedisURL == "" {
			return fmt.Errorf("storage.redis_url is required for the redis driver")
		}
	default:
		return fmt.Errorf("storage.driver %q is not one of file, redis, memory", c.Storage.Driver)
	}

	if c.Push.TokenTTL < 0 {
		return fmt.Errorf("push.token_ttl cannot be negative")
	}

	if c.Notifications.MaxItems < 0 {
		return fmt.Errorf("notifications.max_items cannot be negative")
	}

	return nil
}

// StatePath returns the path of the durable state file used by the file driver.
func (c *Config) StatePath() string {
	if c.Storage.Path != "" {
		return c.Storage.Path
	}
	return filepath.Join(c.DataDir, "state.json")
}

// NATSEnabled reports whether messages arrive over NATS rather than the
// in-process source.
func (c *Config) NATSEnabled() bool {
	return c.NATS.URL != ""
}

// FirebaseEnabled reports whether test pushes can be sent.
func (c *Config) FirebaseEnabled() bool {
	return c.Firebase.CredentialsFile != ""
}
