package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the workbench.
type Config struct {
	Embedding EmbeddingConfig `yaml:"embedding"`
	LLM       LLMConfig       `yaml:"llm"`
	Rerank    RerankConfig    `yaml:"rerank"`
	Retrieve  RetrieveConfig  `yaml:"retrieve"`
	Ingest    IngestConfig    `yaml:"ingest"`
	Serve     ServeConfig     `yaml:"serve"`
}

// EmbeddingConfig selects the embedding model. The collection namespace is
// derived from the model name, so changing the model switches collections.
type EmbeddingConfig struct {
	Provider  string `yaml:"provider"` // "openai", "ollama", "mock"
	Model     string `yaml:"model"`
	APIKeyEnv string `yaml:"api_key_env"`
	BaseURL   string `yaml:"base_url"`
	Dimension int    `yaml:"dimension"` // used by the mock provider
}

// LLMConfig selects the generation endpoint.
type LLMConfig struct {
	Provider string `yaml:"provider"` // "openai", "deepseek", "ollama"
	Model    string `yaml:"model"`
	BaseURL  string `yaml:"base_url"`
}

// RerankConfig selects the cross-encoder scorer.
type RerankConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Provider  string `yaml:"provider"` // "overlap", "http"
	Model     string `yaml:"model"`
	BaseURL   string `yaml:"base_url"`
	APIKeyEnv string `yaml:"api_key_env"`
}

// RetrieveConfig holds retrieval defaults.
type RetrieveConfig struct {
	Strategy string `yaml:"strategy"` // "naive", "hyde", "self-rag"
	TopK     int    `yaml:"top_k"`
	MaxLoops int    `yaml:"max_loops"`
}

// IngestConfig holds filesystem loader settings.
type IngestConfig struct {
	Includes []string `yaml:"includes"`
	Excludes []string `yaml:"excludes"`
	MaxChars int      `yaml:"max_chars"`
}

// ServeConfig holds the HTTP API settings.
type ServeConfig struct {
	Addr string `yaml:"addr"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Embedding: EmbeddingConfig{
			Provider:  "ollama",
			Model:     "nomic-embed-text",
			APIKeyEnv: "OPENAI_API_KEY",
		},
		LLM: LLMConfig{
			Provider: "ollama",
			Model:    "llama3.1",
		},
		Rerank: RerankConfig{
			Enabled:   true,
			Provider:  "overlap",
			APIKeyEnv: "COHERE_API_KEY",
		},
		Retrieve: RetrieveConfig{
			Strategy: "naive",
			TopK:     4,
			MaxLoops: 2,
		},
		Ingest: IngestConfig{
			Includes: []string{"**/*.md", "**/*.txt"},
			Excludes: []string{"**/node_modules/**", "**/vendor/**", "**/.git/**"},
			MaxChars: 2000,
		},
		Serve: ServeConfig{
			Addr: ":8080",
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Return defaults if no config file
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromDir loads configuration from a directory (looks for ragbench.yaml).
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, "ragbench.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	path = filepath.Join(dir, ".ragbench", "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	return DefaultConfig(), nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// VectorDBPath returns the path to the vector collection database.
func VectorDBPath(dir string) string {
	return filepath.Join(dir, ".ragbench", "vectors.db")
}

// EnsureDataDir ensures the .ragbench directory exists.
func EnsureDataDir(dir string) error {
	return os.MkdirAll(filepath.Join(dir, ".ragbench"), 0755)
}
