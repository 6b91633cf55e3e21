package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	viper.Reset()
	t.Chdir(t.TempDir())

	require.NoError(t, Load(""))

	assert.Equal(t, "disk", viper.GetString("storage.type"))
	assert.Equal(t, ".", viper.GetString("repo.path"))
	assert.Equal(t, 24*time.Hour, viper.GetDuration("cache.ttl"))
	assert.Equal(t, 256, viper.GetInt("cache.lru_size"))
	assert.Empty(t, viper.GetString("meta.driver"))
}

func TestLoad_ExplicitFile(t *testing.T) {
	viper.Reset()
	cfg := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("storage:\n  type: badger\nlog:\n  level: debug\n"), 0644))

	require.NoError(t, Load(cfg))

	assert.Equal(t, "badger", viper.GetString("storage.type"))
	assert.Equal(t, "debug", viper.GetString("log.level"))
}

func TestLoad_RepoConfigFile(t *testing.T) {
	viper.Reset()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".groot"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".groot", "config.yaml"), []byte("meta:\n  driver: sqlite\n"), 0644))
	t.Chdir(dir)

	require.NoError(t, Load(""))
	assert.Equal(t, "sqlite", viper.GetString("meta.driver"))
}

func TestLoad_RepoPathConfigFile(t *testing.T) {
	viper.Reset()
	// 1. 配置文件放在另一个仓库里，当前目录什么都没有
	repoDir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(repoDir, ".groot"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(repoDir, ".groot", "config.yaml"), []byte("meta:\n  driver: sqlite\n"), 0644))
	t.Chdir(t.TempDir())

	// 2. 相当于 groot -C <repoDir>
	viper.Set("repo.path", repoDir)

	require.NoError(t, Load(""))
	assert.Equal(t, "sqlite", viper.GetString("meta.driver"))
}

func TestLoad_RepoPathFromEnv(t *testing.T) {
	viper.Reset()
	repoDir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(repoDir, ".groot"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(repoDir, ".groot", "config.yaml"), []byte("storage:\n  type: badger\n"), 0644))
	t.Chdir(t.TempDir())
	t.Setenv("GROOT_REPO_PATH", repoDir)

	require.NoError(t, Load(""))
	assert.Equal(t, "badger", viper.GetString("storage.type"))
}

func TestLoad_EnvOverrides(t *testing.T) {
	viper.Reset()
	t.Chdir(t.TempDir())
	t.Setenv("GROOT_STORAGE_TYPE", "s3")
	t.Setenv("GROOT_STORAGE_S3_BUCKET", "groot-objects")

	require.NoError(t, Load(""))

	assert.Equal(t, "s3", viper.GetString("storage.type"))
	assert.Equal(t, "groot-objects", viper.GetString("storage.s3.bucket"))
}

func TestLoad_BrokenFile(t *testing.T) {
	viper.Reset()
	cfg := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("storage: [unterminated\n"), 0644))

	err := Load(cfg)
	assert.Error(t, err)
}
