package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/sm2x/neos-backups/internal/domain"
)

// Config holds all application configuration.
type Config struct {
	// TempPath is the local scratch directory for working directories and
	// archive files.
	TempPath string `mapstructure:"temp_path"`

	// Compressor is the default compressor identifier for new backups.
	Compressor string `mapstructure:"compressor"`

	// Interval and BackupOnStartup control serve mode scheduling.
	Interval        time.Duration `mapstructure:"interval"`
	BackupOnStartup bool          `mapstructure:"backup_on_startup"`

	// Steps is the ordered step pipeline for new backups.
	Steps []domain.StepConfig `mapstructure:"step"`

	Index   IndexConfig   `mapstructure:"index"`
	Store   StoreConfig   `mapstructure:"store"`
	Retry   RetryConfig   `mapstructure:"retry"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Apprise AppriseConfig `mapstructure:"apprise"`
	Log     LogConfig     `mapstructure:"log"`
}

// IndexConfig holds backup index configuration.
type IndexConfig struct {
	// Path of the index JSON file.
	Path string `mapstructure:"path"`
}

// StoreConfig selects and configures the remote store backend.
type StoreConfig struct {
	Type  string           `mapstructure:"type"`
	Local LocalStoreConfig `mapstructure:"local"`
	Azure AzureStoreConfig `mapstructure:"azure"`
}

// LocalStoreConfig configures the directory-backed store.
type LocalStoreConfig struct {
	Path string `mapstructure:"path"`
}

// AzureStoreConfig configures the Azure Blob Storage backend.
type AzureStoreConfig struct {
	Account      string `mapstructure:"account"`
	Container    string `mapstructure:"container"`
	Endpoint     string `mapstructure:"endpoint"`
	SASToken     string `mapstructure:"sas_token"`
	TenantID     string `mapstructure:"tenant_id"`
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
}

// RetryConfig holds HTTP retry configuration.
type RetryConfig struct {
	MaxAttempts  int           `mapstructure:"max_attempts"`
	InitialDelay time.Duration `mapstructure:"initial_delay"`
	MaxDelay     time.Duration `mapstructure:"max_delay"`
}

// MetricsConfig holds Prometheus metrics configuration.
type MetricsConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	PushgatewayURL string `mapstructure:"pushgateway_url"`
}

// AppriseConfig holds Apprise notification configuration.
type AppriseConfig struct {
	Enabled bool        `mapstructure:"enabled"`
	URL     string      `mapstructure:"url"`
	Key     string      `mapstructure:"key"`
	Notify  NotifyLevel `mapstructure:"notify"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level     string `mapstructure:"level"`
	Output    string `mapstructure:"output"`
	MaxSizeMB int    `mapstructure:"max_size_mb"`
}

// Loader handles configuration loading from multiple sources.
type Loader struct {
	v          *viper.Viper
	configPath string
}

// NewLoader creates a new configuration loader.
func NewLoader() *Loader {
	return &Loader{
		v: viper.New(),
	}
}

// WithConfigPath sets a specific config file path.
func (l *Loader) WithConfigPath(path string) *Loader {
	l.configPath = path
	return l
}

// Load reads configuration from all sources and returns the merged config.
// Precedence (highest to lowest): CLI flags > environment > config file >
// defaults.
func (l *Loader) Load() (*Config, error) {
	l.setDefaults()
	l.setupEnvBindings()

	if err := l.loadConfigFile(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Path defaults depend on the state directory, so they are filled in
	// after loading. If the state dir cannot be determined the paths stay
	// empty and validation reports them.
	if cfg.Index.Path == "" {
		if p, err := DefaultIndexPath(); err == nil {
			cfg.Index.Path = p
		}
	}
	if cfg.Store.Type == "local" && cfg.Store.Local.Path == "" {
		if dir, err := DefaultStateDir(); err == nil {
			cfg.Store.Local.Path = filepath.Join(dir, "archives")
		}
	}
	if cfg.Log.Output == "" {
		if dir, err := DefaultStateDir(); err == nil {
			cfg.Log.Output = filepath.Join(dir, AppName+".log")
		}
		// Empty output means logging goes to stderr.
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default values for all configuration options.
func (l *Loader) setDefaults() {
	l.v.SetDefault("temp_path", DefaultTempPath())
	l.v.SetDefault("compressor", DefaultCompressor)
	l.v.SetDefault("interval", DefaultInterval)
	l.v.SetDefault("backup_on_startup", DefaultBackupOnStartup)

	l.v.SetDefault("index.path", "")

	l.v.SetDefault("store.type", DefaultStoreType)
	l.v.SetDefault("store.local.path", "")

	l.v.SetDefault("retry.max_attempts", DefaultRetryMaxAttempts)
	l.v.SetDefault("retry.initial_delay", DefaultRetryInitialDelay)
	l.v.SetDefault("retry.max_delay", DefaultRetryMaxDelay)

	l.v.SetDefault("metrics.enabled", DefaultMetricsEnabled)
	l.v.SetDefault("metrics.pushgateway_url", DefaultMetricsPushgatewayURL)

	l.v.SetDefault("apprise.enabled", DefaultAppriseEnabled)
	l.v.SetDefault("apprise.url", DefaultAppriseURL)
	l.v.SetDefault("apprise.key", DefaultAppriseKey)
	l.v.SetDefault("apprise.notify", string(DefaultAppriseNotify))

	l.v.SetDefault("log.level", DefaultLogLevel)
	l.v.SetDefault("log.output", "")
	l.v.SetDefault("log.max_size_mb", DefaultLogMaxSizeMB)
}

// setupEnvBindings configures environment variable bindings.
func (l *Loader) setupEnvBindings() {
	l.v.SetEnvPrefix(EnvPrefix)
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	l.v.AutomaticEnv()
}

// loadConfigFile loads configuration from a file.
func (l *Loader) loadConfigFile() error {
	if l.configPath != "" {
		l.v.SetConfigFile(l.configPath)
	} else {
		configDir, err := DefaultConfigDir()
		if err != nil {
			// Can't determine config dir, proceed without file config
			return nil
		}

		l.v.SetConfigName("config")
		l.v.SetConfigType("toml")
		l.v.AddConfigPath(configDir)
		l.v.AddConfigPath(".")
	}

	if err := l.v.ReadInConfig(); err != nil {
		// Config file not found is not an error - use defaults
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	return nil
}

// Set sets a configuration value (for CLI flag overrides).
func (l *Loader) Set(key string, value interface{}) {
	l.v.Set(key, value)
}

// ConfigFileUsed returns the path of the config file used, if any.
func (l *Loader) ConfigFileUsed() string {
	return l.v.ConfigFileUsed()
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.TempPath == "" {
		return fmt.Errorf("temp_path is required")
	}

	if c.Compressor == "" {
		return fmt.Errorf("compressor is required")
	}

	if c.Interval < time.Minute {
		return fmt.Errorf("interval must be at least 1 minute, got %s", c.Interval)
	}

	if c.Index.Path == "" {
		return fmt.Errorf("index.path is required")
	}

	switch c.Store.Type {
	case "":
		return fmt.Errorf("store.type is required")
	case "local":
		if c.Store.Local.Path == "" {
			return fmt.Errorf("store.local.path is required when store.type is local")
		}
	case "azure":
		if c.Store.Azure.Account == "" || c.Store.Azure.Container == "" {
			return fmt.Errorf("store.azure.account and store.azure.container are required when store.type is azure")
		}
	}

	seen := make(map[string]bool, len(c.Steps))
	for i, s := range c.Steps {
		if s.Name == "" {
			return fmt.Errorf("step %d: name is required", i)
		}
		if s.Type == "" {
			return fmt.Errorf("step %q: type is required", s.Name)
		}
		if seen[s.Name] {
			return fmt.Errorf("step %q: duplicate step name", s.Name)
		}
		seen[s.Name] = true
	}

	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("retry.max_attempts must be at least 1")
	}

	if c.Retry.InitialDelay < 0 {
		return fmt.Errorf("retry.initial_delay cannot be negative")
	}

	if c.Retry.MaxDelay < c.Retry.InitialDelay {
		return fmt.Errorf("retry.max_delay must be >= retry.initial_delay")
	}

	if c.Metrics.Enabled && c.Metrics.PushgatewayURL == "" {
		return fmt.Errorf("metrics.pushgateway_url is required when metrics is enabled")
	}

	if c.Apprise.Enabled {
		if c.Apprise.URL == "" {
			return fmt.Errorf("apprise.url is required when apprise is enabled")
		}
		if c.Apprise.Key == "" {
			return fmt.Errorf("apprise.key is required when apprise is enabled")
		}
		if !c.Apprise.Notify.IsValid() {
			return fmt.Errorf("apprise.notify must be one of: error, always")
		}
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[strings.ToLower(c.Log.Level)] {
		return fmt.Errorf("log.level must be one of: debug, info, warn, error")
	}

	if c.Log.MaxSizeMB < 1 {
		return fmt.Errorf("log.max_size_mb must be at least 1")
	}

	return nil
}

// WriteExampleConfig writes an example config file to the given path.
func WriteExampleConfig(path string) error {
	content := `# neos-backups Configuration

# Local scratch directory for working directories and archive files
# temp_path = "/tmp/neos-backups"

# Default compressor for new backups: "targz" or "zip"
compressor = "targz"

# Serve mode: backup schedule interval and startup behavior
interval = "24h"
backup_on_startup = false

# Backup index file (defaults to the state directory)
# [index]
# path = "/var/lib/neos-backups/index.json"

# Remote archive storage
[store]
type = "local"

[store.local]
path = "/var/backups/neos-backups"

# [store.azure]
# account = "mystorageaccount"
# container = "backups"
# sas_token = ""
# tenant_id = ""
# client_id = ""
# client_secret = ""

# Ordered backup steps. Each step captures part of the application state.
[[step]]
name = "database"
type = "command"
[step.options]
backup = "pg_dump mydb > \"$NEOS_BACKUPS_WORKDIR/database/dump.sql\""
restore = "psql mydb < \"$NEOS_BACKUPS_WORKDIR/database/dump.sql\""

[[step]]
name = "site-data"
type = "directory"
[step.options]
paths = ["/srv/app/data"]

# HTTP retry configuration (metrics and notifications)
[retry]
max_attempts = 3
initial_delay = "5s"
max_delay = "30s"

# Prometheus metrics (optional, disabled by default)
[metrics]
enabled = false
pushgateway_url = "http://pushgateway:9091"

# Apprise notifications (optional, disabled by default)
[apprise]
enabled = false
url = "http://localhost:8000"
key = "neos-backups"
# Notification level: "error" or "always"
notify = "error"

# Logging configuration
[log]
# Level: debug, info, warn, error
level = "info"
# Output file path (defaults to neos-backups.log in the state directory)
# output = ""
# Max log file size before rotation (MB)
max_size_mb = 10
`
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return os.WriteFile(path, []byte(content), 0600)
}
