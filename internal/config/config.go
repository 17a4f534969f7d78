// Package config loads the knowcode.yaml configuration document: model
// registrations for embedding/reranking providers and the retrieval
// defaults the engine wires into the hybrid search and context stages.
// Grounded on the reference implementation's AppConfig, including its
// priority order for locating a config file and its tolerant YAML
// parsing that falls back to defaults rather than failing config load.
package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ModelConfig names one embedding or reranking model and the environment
// variable its API key is read from. A missing credential degrades the
// feature that model backs rather than failing config load.
type ModelConfig struct {
	Name           string `yaml:"name"`
	Provider       string `yaml:"provider"`
	APIKeyEnv      string `yaml:"api_key_env"`
	TokensFreeTier int    `yaml:"tokens_free_tier_limit"`
	// BaseURL is only consulted for provider "ollama", which authenticates
	// by network reachability rather than an API key.
	BaseURL string `yaml:"base_url"`
}

// RetrievalConfig holds the hybrid-search defaults the engine wires into
// internal/hybrid and internal/search.
type RetrievalConfig struct {
	RRFK       int  `yaml:"rrf_k"`
	TopN       int  `yaml:"top_n"`
	ExpandDeps bool `yaml:"expand_deps"`
}

// Config is the fully-resolved configuration document.
type Config struct {
	EmbeddingModels      []ModelConfig   `yaml:"embedding_models"`
	RerankingModels      []ModelConfig   `yaml:"reranking_models"`
	Retrieval            RetrievalConfig `yaml:"retrieval"`
	SufficiencyThreshold float64         `yaml:"sufficiency_threshold"`
}

type rawDocument struct {
	EmbeddingModels []ModelConfig    `yaml:"embedding_models"`
	RerankingModels []ModelConfig    `yaml:"reranking_models"`
	Retrieval       *RetrievalConfig `yaml:"retrieval"`
	Config          *struct {
		SufficiencyThreshold *float64 `yaml:"sufficiency_threshold"`
	} `yaml:"config"`
}

const (
	localConfigName = "knowcode.yaml"
	homeConfigName  = ".knowcode.yaml"

	defaultAPIKeyEnv     = "VOYAGE_API_KEY"
	defaultProvider      = "voyageai"
	defaultOllamaBaseURL = "http://localhost:11434"

	defaultRRFK = 60
	defaultTopN = 10
)

// Default returns the built-in configuration used when no knowcode.yaml
// is found anywhere in the search path.
func Default() Config {
	return Config{
		EmbeddingModels: []ModelConfig{
			{Name: "voyage-code-3", Provider: defaultProvider, APIKeyEnv: defaultAPIKeyEnv},
		},
		Retrieval: RetrievalConfig{
			RRFK:       defaultRRFK,
			TopN:       defaultTopN,
			ExpandDeps: true,
		},
		SufficiencyThreshold: 0.8,
	}
}

// Load resolves a Config by priority: an explicit path argument, a
// project-local knowcode.yaml, a knowcode.yaml in the user's home
// directory, and finally the built-in default. explicitPath may be empty.
func Load(explicitPath string) Config {
	if explicitPath != "" {
		if cfg, ok := loadFromYAML(explicitPath); ok {
			return cfg
		}
	}

	if cfg, ok := loadFromYAML(localConfigName); ok {
		return cfg
	}

	if home, err := os.UserHomeDir(); err == nil {
		if cfg, ok := loadFromYAML(filepath.Join(home, homeConfigName)); ok {
			return cfg
		}
	}

	return Default()
}

func loadFromYAML(path string) (Config, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, false
	}

	var raw rawDocument
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Config{}, false
	}

	cfg := Default()
	if len(raw.EmbeddingModels) > 0 {
		cfg.EmbeddingModels = fillModelDefaults(raw.EmbeddingModels)
	}
	if len(raw.RerankingModels) > 0 {
		cfg.RerankingModels = fillModelDefaults(raw.RerankingModels)
	}
	if raw.Retrieval != nil {
		if raw.Retrieval.RRFK > 0 {
			cfg.Retrieval.RRFK = raw.Retrieval.RRFK
		}
		if raw.Retrieval.TopN > 0 {
			cfg.Retrieval.TopN = raw.Retrieval.TopN
		}
		cfg.Retrieval.ExpandDeps = raw.Retrieval.ExpandDeps
	}
	if raw.Config != nil && raw.Config.SufficiencyThreshold != nil {
		cfg.SufficiencyThreshold = *raw.Config.SufficiencyThreshold
	}

	return cfg, true
}

func fillModelDefaults(models []ModelConfig) []ModelConfig {
	out := make([]ModelConfig, len(models))
	for i, m := range models {
		if m.Provider == "" {
			m.Provider = defaultProvider
		}
		if m.Provider == "ollama" {
			if m.BaseURL == "" {
				m.BaseURL = defaultOllamaBaseURL
			}
		} else if m.APIKeyEnv == "" {
			m.APIKeyEnv = defaultAPIKeyEnv
		}
		out[i] = m
	}
	return out
}

// ResolveCredential reads the environment variable named by APIKeyEnv,
// returning ok=false when it is unset so callers can degrade the
// feature that model backs instead of failing outright.
func (m ModelConfig) ResolveCredential() (string, bool) {
	if m.APIKeyEnv == "" {
		return "", false
	}
	v, ok := os.LookupEnv(m.APIKeyEnv)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}
