package prodsearch

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Run("missing file returns defaults", func(t *testing.T) {
		cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
		require.NoError(t, err)
		assert.Equal(t, "prodsearch.db", cfg.StorePath)
		assert.Equal(t, "hybrid", cfg.Search.Mode)
		assert.Equal(t, 10, cfg.Search.MaxHits)
		assert.Equal(t, 1000, cfg.Index.BatchSize)
		assert.Equal(t, "OPENAI_API_KEY", cfg.AI.APIKeyEnv)
	})

	t.Run("partial file gets defaults applied", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		content := "store_path: /tmp/catalog\nsearch:\n  mode: semantic\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		cfg, err := LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, "/tmp/catalog", cfg.StorePath)
		assert.Equal(t, "semantic", cfg.Search.Mode)
		assert.Equal(t, 10, cfg.Search.MaxHits)
		assert.NotEmpty(t, cfg.AI.EmbeddingModel)
	})

	t.Run("malformed file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("store_path: [not a string"), 0o644))

		_, err := LoadConfig(path)
		assert.Error(t, err)
	})
}

func TestSaveConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "config.yaml")
	cfg := defaultAppConfig()
	cfg.StorePath = "/data/catalog"

	require.NoError(t, SaveConfig(path, cfg))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "/data/catalog", loaded.StorePath)
	assert.Equal(t, cfg.Search.Mode, loaded.Search.Mode)
}

func TestAIConfig(t *testing.T) {
	cfg := defaultAppConfig()
	cfg.AI.EmbeddingHost = "http://embed.local"
	cfg.AI.ChatHost = "http://chat.local/v1"
	cfg.AI.APIKeyEnv = "PRODSEARCH_TEST_KEY"

	t.Run("without key in environment", func(t *testing.T) {
		t.Setenv("PRODSEARCH_TEST_KEY", "")
		aiCfg := cfg.AIConfig()
		// Hosts are normalized with the /v1 suffix
		assert.Equal(t, "http://embed.local/v1", aiCfg.EmbeddingHost)
		assert.Equal(t, "http://chat.local/v1", aiCfg.ChatHost)
		assert.Equal(t, "none", aiCfg.APIKey)
	})

	t.Run("with key in environment", func(t *testing.T) {
		t.Setenv("PRODSEARCH_TEST_KEY", "sk-test")
		aiCfg := cfg.AIConfig()
		assert.Equal(t, "sk-test", aiCfg.APIKey)
	})
}
