package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(New(), "")
	require.NoError(t, err)
	require.Equal(t, "8008", cfg.Server.Port)
	require.Equal(t, "sqlite", cfg.Storage.Driver)
	require.Equal(t, "kanban_tasks_v1", cfg.Storage.Key)
	require.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("TASKBOARD_SERVER_PORT", "9090")
	t.Setenv("TASKBOARD_STORAGE_DRIVER", "memory")
	t.Setenv("TASKBOARD_STORAGE_QUOTA_BYTES", "1024")

	cfg, err := Load(New(), "")
	require.NoError(t, err)
	require.Equal(t, "9090", cfg.Server.Port)
	require.Equal(t, "memory", cfg.Storage.Driver)
	require.Equal(t, 1024, cfg.Storage.QuotaBytes)
	require.Equal(t, 1024, cfg.StorageOptions().QuotaBytes)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taskboard.yaml")
	require.NoError(t, os.WriteFile(path, []byte("storage:\n  driver: redis\n  redis_url: redis://localhost:6379/0\nlog:\n  level: debug\n"), 0o600))

	cfg, err := Load(New(), path)
	require.NoError(t, err)
	require.Equal(t, "redis", cfg.Storage.Driver)
	require.True(t, cfg.StorageOptions().Debug)
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("TASKBOARD_STORAGE_DRIVER", "redis")
	_, err := Load(New(), "")
	require.ErrorContains(t, err, "redis_url")

	t.Setenv("TASKBOARD_STORAGE_DRIVER", "etcd")
	_, err = Load(New(), "")
	require.ErrorContains(t, err, "driver")

	_, err = Load(New(), filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
