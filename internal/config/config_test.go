package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFallsBackToDefaultWhenNoFileFound(t *testing.T) {
	dir := t.TempDir()
	wd, _ := os.Getwd()
	defer os.Chdir(wd)
	os.Chdir(dir)

	cfg := Load("")
	if len(cfg.EmbeddingModels) == 0 {
		t.Fatal("expected default embedding models")
	}
	if cfg.Retrieval.RRFK != defaultRRFK {
		t.Errorf("expected default rrf_k %d, got %d", defaultRRFK, cfg.Retrieval.RRFK)
	}
	if cfg.SufficiencyThreshold != 0.8 {
		t.Errorf("expected default sufficiency_threshold 0.8, got %v", cfg.SufficiencyThreshold)
	}
}

func TestLoadExplicitPathOverridesRetrievalDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	yamlDoc := `
embedding_models:
  - name: voyage-code-3
    api_key_env: MY_VOYAGE_KEY
retrieval:
  rrf_k: 30
  top_n: 5
  expand_deps: false
config:
  sufficiency_threshold: 0.9
`
	if err := os.WriteFile(path, []byte(yamlDoc), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := Load(path)
	if cfg.Retrieval.RRFK != 30 {
		t.Errorf("expected rrf_k 30, got %d", cfg.Retrieval.RRFK)
	}
	if cfg.Retrieval.TopN != 5 {
		t.Errorf("expected top_n 5, got %d", cfg.Retrieval.TopN)
	}
	if cfg.Retrieval.ExpandDeps {
		t.Error("expected expand_deps false")
	}
	if cfg.SufficiencyThreshold != 0.9 {
		t.Errorf("expected sufficiency_threshold 0.9, got %v", cfg.SufficiencyThreshold)
	}
	if cfg.EmbeddingModels[0].APIKeyEnv != "MY_VOYAGE_KEY" {
		t.Errorf("expected api_key_env MY_VOYAGE_KEY, got %s", cfg.EmbeddingModels[0].APIKeyEnv)
	}
}

func TestLoadMalformedYAMLFallsBackToDefault(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.yaml")
	os.WriteFile(path, []byte("not: [valid yaml"), 0o644)

	cfg := Load(path)
	if len(cfg.EmbeddingModels) == 0 {
		t.Fatal("expected fallback to default config on malformed YAML")
	}
}

func TestResolveCredentialMissingEnvDegrades(t *testing.T) {
	m := ModelConfig{Name: "m", APIKeyEnv: "KNOWCODE_TEST_UNSET_VAR_XYZ"}
	if _, ok := m.ResolveCredential(); ok {
		t.Error("expected missing env var to report ok=false")
	}
}
