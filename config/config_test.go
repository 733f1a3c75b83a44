package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.CacheDays)
	assert.Contains(t, cfg.CachePath, ".lsi_cache.json")
	assert.Contains(t, cfg.KnownHostsPath, ".lsi-known-hosts")
	assert.Equal(t, "us-east-1", cfg.Region)
}

func TestLoad_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "cache_path: /tmp/cache.json\ncache_days: 3\nregion: eu-west-1\ndefault_columns: [name, private_ip]\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/cache.json", cfg.CachePath)
	assert.Equal(t, 3, cfg.CacheDays)
	assert.Equal(t, "eu-west-1", cfg.Region)
	assert.Equal(t, []string{"name", "private_ip"}, cfg.DefaultColumns)
}

func TestLoad_MissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.CacheDays)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("LSI_CACHE", "/tmp/other.json")
	t.Setenv("LSI_CACHE_DAYS", "7")
	t.Setenv("LSI_DEFAULT_COLUMNS", "name, public_ip ,instance_type")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/other.json", cfg.CachePath)
	assert.Equal(t, 7, cfg.CacheDays)
	assert.Equal(t, []string{"name", "public_ip", "instance_type"}, cfg.DefaultColumns)
}

func TestLoad_BadCacheDaysEnv(t *testing.T) {
	t.Setenv("LSI_CACHE_DAYS", "soon")
	_, err := Load("")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.CacheDays = 0
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Region = ""
	assert.Error(t, cfg.Validate())
}
