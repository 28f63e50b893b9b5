// Copyright 2025 Zava Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package prodsearch

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/zavalabs/prodsearch/ai"
	"github.com/zavalabs/prodsearch/search"
)

// AIServicesConfig configures the OpenAI-compatible embedding and chat services.
type AIServicesConfig struct {
	EmbeddingHost  string `yaml:"embedding_host"`
	ChatHost       string `yaml:"chat_host"`
	EmbeddingModel string `yaml:"embedding_model"`
	ChatModel      string `yaml:"chat_model"`
	APIKeyEnv      string `yaml:"api_key_env"`
}

// SearchConfig holds default search parameters.
type SearchConfig struct {
	Mode          string  `yaml:"mode"`
	MaxHits       int     `yaml:"max_hits"`
	MinSimilarity float32 `yaml:"min_similarity"`
}

// IndexConfig holds default indexing parameters.
type IndexConfig struct {
	BatchSize      int `yaml:"batch_size"`
	EmbedBatchSize int `yaml:"embed_batch_size"`
	Workers        int `yaml:"workers"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	StorePath string           `yaml:"store_path"`
	AI        AIServicesConfig `yaml:"ai"`
	Search    SearchConfig     `yaml:"search"`
	Index     IndexConfig      `yaml:"index"`
}

// LoadConfig reads a config from the specified path.
// If the file does not exist, returns defaults.
func LoadConfig(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaultAppConfig(), nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyConfigDefaults(&cfg)
	return &cfg, nil
}

// LoadDefaultConfig tries ./prodsearch.yaml first, then
// ~/.config/prodsearch/config.yaml. If neither exists, it writes defaults to
// the user path and returns them.
func LoadDefaultConfig() (*AppConfig, string, error) {
	cwdPath := "prodsearch.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := LoadConfig(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := LoadConfig(userPath)
		return cfg, userPath, err
	}
	cfg := defaultAppConfig()
	if err := SaveConfig(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// SaveConfig writes the config to the given path, creating directories as needed.
func SaveConfig(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// AIConfig converts the AI section to an ai.Config, resolving the API key
// from the configured environment variable.
func (c *AppConfig) AIConfig() *ai.Config {
	cfg := ai.NewConfig(
		ai.WithEmbeddingHost(c.AI.EmbeddingHost),
		ai.WithChatHost(c.AI.ChatHost),
		ai.WithEmbeddingModel(c.AI.EmbeddingModel),
		ai.WithChatModel(c.AI.ChatModel),
	)
	if key := os.Getenv(c.AI.APIKeyEnv); key != "" {
		cfg.APIKey = key
	}
	cfg.Normalize()
	return cfg
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "prodsearch", "config.yaml"), nil
}

func defaultAppConfig() *AppConfig {
	defaults := ai.DefaultConfig()
	return &AppConfig{
		StorePath: "prodsearch.db",
		AI: AIServicesConfig{
			EmbeddingHost:  defaults.EmbeddingHost,
			ChatHost:       defaults.ChatHost,
			EmbeddingModel: defaults.EmbeddingModel,
			ChatModel:      defaults.ChatModel,
			APIKeyEnv:      "OPENAI_API_KEY",
		},
		Search: SearchConfig{
			Mode:          string(search.ModeHybrid),
			MaxHits:       10,
			MinSimilarity: 0.60,
		},
		Index: IndexConfig{
			BatchSize:      1000,
			EmbedBatchSize: 64,
		},
	}
}

func applyConfigDefaults(cfg *AppConfig) {
	defaults := defaultAppConfig()
	if cfg.StorePath == "" {
		cfg.StorePath = defaults.StorePath
	}
	if cfg.AI.EmbeddingHost == "" {
		cfg.AI.EmbeddingHost = defaults.AI.EmbeddingHost
	}
	if cfg.AI.ChatHost == "" {
		cfg.AI.ChatHost = defaults.AI.ChatHost
	}
	if cfg.AI.EmbeddingModel == "" {
		cfg.AI.EmbeddingModel = defaults.AI.EmbeddingModel
	}
	if cfg.AI.ChatModel == "" {
		cfg.AI.ChatModel = defaults.AI.ChatModel
	}
	if cfg.AI.APIKeyEnv == "" {
		cfg.AI.APIKeyEnv = defaults.AI.APIKeyEnv
	}
	if cfg.Search.Mode == "" {
		cfg.Search.Mode = defaults.Search.Mode
	}
	if cfg.Search.MaxHits == 0 {
		cfg.Search.MaxHits = defaults.Search.MaxHits
	}
	if cfg.Search.MinSimilarity == 0 {
		cfg.Search.MinSimilarity = defaults.Search.MinSimilarity
	}
	if cfg.Index.BatchSize == 0 {
		cfg.Index.BatchSize = defaults.Index.BatchSize
	}
	if cfg.Index.EmbedBatchSize == 0 {
		cfg.Index.EmbedBatchSize = defaults.Index.EmbedBatchSize
	}
}
