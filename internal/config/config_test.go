package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sm2x/neos-backups/internal/domain"
)

func TestNotifyLevel_IsValid(t *testing.T) {
	tests := []struct {
		level NotifyLevel
		want  bool
	}{
		{NotifyError, true},
		{NotifyAlways, true},
		{NotifyLevel("warning"), false},
		{NotifyLevel(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.level), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.level.IsValid())
		})
	}
}

func validConfig() *Config {
	return &Config{
		TempPath:   "/tmp/neos-backups",
		Compressor: "targz",
		Interval:   24 * time.Hour,
		Steps: []domain.StepConfig{
			{Name: "data", Type: "directory", Options: map[string]any{"paths": []string{"/srv/data"}}},
		},
		Index: IndexConfig{Path: "/var/lib/neos-backups/index.json"},
		Store: StoreConfig{
			Type:  "local",
			Local: LocalStoreConfig{Path: "/var/backups"},
		},
		Retry: RetryConfig{
			MaxAttempts:  3,
			InitialDelay: 5 * time.Second,
			MaxDelay:     30 * time.Second,
		},
		Apprise: AppriseConfig{
			Enabled: true,
			URL:     "http://localhost:8000",
			Key:     "neos-backups",
			Notify:  NotifyError,
		},
		Log: LogConfig{
			Level:     "info",
			MaxSizeMB: 10,
		},
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		assert.NoError(t, validConfig().Validate())
	})

	t.Run("missing temp_path", func(t *testing.T) {
		cfg := validConfig()
		cfg.TempPath = ""
		assert.ErrorContains(t, cfg.Validate(), "temp_path is required")
	})

	t.Run("missing compressor", func(t *testing.T) {
		cfg := validConfig()
		cfg.Compressor = ""
		assert.ErrorContains(t, cfg.Validate(), "compressor is required")
	})

	t.Run("interval too short", func(t *testing.T) {
		cfg := validConfig()
		cfg.Interval = 30 * time.Second
		assert.ErrorContains(t, cfg.Validate(), "interval must be at least 1 minute")
	})

	t.Run("missing index path", func(t *testing.T) {
		cfg := validConfig()
		cfg.Index.Path = ""
		assert.ErrorContains(t, cfg.Validate(), "index.path is required")
	})

	t.Run("local store without path", func(t *testing.T) {
		cfg := validConfig()
		cfg.Store.Local.Path = ""
		assert.ErrorContains(t, cfg.Validate(), "store.local.path is required")
	})

	t.Run("azure store without account", func(t *testing.T) {
		cfg := validConfig()
		cfg.Store.Type = "azure"
		assert.ErrorContains(t, cfg.Validate(), "store.azure.account")
	})

	t.Run("step without name", func(t *testing.T) {
		cfg := validConfig()
		cfg.Steps = append(cfg.Steps, domain.StepConfig{Type: "directory"})
		assert.ErrorContains(t, cfg.Validate(), "name is required")
	})

	t.Run("step without type", func(t *testing.T) {
		cfg := validConfig()
		cfg.Steps = append(cfg.Steps, domain.StepConfig{Name: "extra"})
		assert.ErrorContains(t, cfg.Validate(), "type is required")
	})

	t.Run("duplicate step name", func(t *testing.T) {
		cfg := validConfig()
		cfg.Steps = append(cfg.Steps, cfg.Steps[0])
		assert.ErrorContains(t, cfg.Validate(), "duplicate step name")
	})

	t.Run("retry max_attempts less than 1", func(t *testing.T) {
		cfg := validConfig()
		cfg.Retry.MaxAttempts = 0
		assert.ErrorContains(t, cfg.Validate(), "retry.max_attempts must be at least 1")
	})

	t.Run("metrics enabled without URL", func(t *testing.T) {
		cfg := validConfig()
		cfg.Metrics.Enabled = true
		assert.ErrorContains(t, cfg.Validate(), "metrics.pushgateway_url is required")
	})

	t.Run("apprise enabled without key", func(t *testing.T) {
		cfg := validConfig()
		cfg.Apprise.Key = ""
		assert.ErrorContains(t, cfg.Validate(), "apprise.key is required")
	})

	t.Run("invalid notify level", func(t *testing.T) {
		cfg := validConfig()
		cfg.Apprise.Notify = NotifyLevel("sometimes")
		assert.ErrorContains(t, cfg.Validate(), "apprise.notify must be one of")
	})

	t.Run("invalid log level", func(t *testing.T) {
		cfg := validConfig()
		cfg.Log.Level = "verbose"
		assert.ErrorContains(t, cfg.Validate(), "log.level must be one of")
	})
}

func TestLoader_Load_Defaults(t *testing.T) {
	loader := NewLoader()
	cfg, err := loader.Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultTempPath(), cfg.TempPath)
	assert.Equal(t, DefaultCompressor, cfg.Compressor)
	assert.Equal(t, DefaultInterval, cfg.Interval)
	assert.Equal(t, DefaultBackupOnStartup, cfg.BackupOnStartup)
	assert.Equal(t, DefaultStoreType, cfg.Store.Type)
	assert.NotEmpty(t, cfg.Index.Path)
	assert.NotEmpty(t, cfg.Store.Local.Path)
	assert.Equal(t, DefaultRetryMaxAttempts, cfg.Retry.MaxAttempts)
	assert.Equal(t, DefaultAppriseNotify, cfg.Apprise.Notify)
	assert.Equal(t, DefaultLogLevel, cfg.Log.Level)
	assert.Empty(t, cfg.Steps)
}

func TestLoader_Load_FromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.toml")

	content := `
temp_path = "/scratch/backups"
compressor = "zip"
interval = "12h"
backup_on_startup = true

[index]
path = "/var/lib/neos-backups/index.json"

[store]
type = "local"

[store.local]
path = "/var/backups/archives"

[[step]]
name = "database"
type = "command"
[step.options]
backup = "true"
restore = "true"

[[step]]
name = "site-data"
type = "directory"
[step.options]
paths = ["/srv/app/data"]

[log]
level = "debug"
max_size_mb = 20
`
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0600))

	loader := NewLoader().WithConfigPath(configPath)
	cfg, err := loader.Load()
	require.NoError(t, err)

	assert.Equal(t, "/scratch/backups", cfg.TempPath)
	assert.Equal(t, "zip", cfg.Compressor)
	assert.Equal(t, 12*time.Hour, cfg.Interval)
	assert.True(t, cfg.BackupOnStartup)
	assert.Equal(t, "/var/backups/archives", cfg.Store.Local.Path)
	assert.Equal(t, "debug", cfg.Log.Level)

	// Step order must survive loading.
	require.Len(t, cfg.Steps, 2)
	assert.Equal(t, "database", cfg.Steps[0].Name)
	assert.Equal(t, "command", cfg.Steps[0].Type)
	assert.Equal(t, "site-data", cfg.Steps[1].Name)
	assert.Equal(t, "directory", cfg.Steps[1].Type)
}

func TestLoader_Load_EnvOverrides(t *testing.T) {
	t.Setenv("NEOS_BACKUPS_COMPRESSOR", "zip")
	t.Setenv("NEOS_BACKUPS_INTERVAL", "2h")

	loader := NewLoader()
	cfg, err := loader.Load()
	require.NoError(t, err)

	assert.Equal(t, "zip", cfg.Compressor)
	assert.Equal(t, 2*time.Hour, cfg.Interval)
}

func TestLoader_Set(t *testing.T) {
	loader := NewLoader()
	loader.Set("log.level", "error")

	cfg, err := loader.Load()
	require.NoError(t, err)

	assert.Equal(t, "error", cfg.Log.Level)
}

func TestWriteExampleConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "subdir", "config.toml")

	require.NoError(t, WriteExampleConfig(configPath))

	loader := NewLoader().WithConfigPath(configPath)
	cfg, err := loader.Load()
	require.NoError(t, err)

	assert.Equal(t, "targz", cfg.Compressor)
	require.Len(t, cfg.Steps, 2)
	assert.Equal(t, "database", cfg.Steps[0].Name)
}

func TestDefaultPaths(t *testing.T) {
	dir, err := DefaultConfigDir()
	require.NoError(t, err)
	assert.Contains(t, dir, AppName)

	path, err := DefaultIndexPath()
	require.NoError(t, err)
	assert.Contains(t, path, "index.json")
}
