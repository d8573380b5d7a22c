package cli

import (
	"fmt"

	"ragbench/config"
	"ragbench/internal/adapter/embedding"
	"ragbench/internal/adapter/llm"
	"ragbench/internal/collection"
	"ragbench/internal/port"
	"ragbench/internal/rerank"
	"ragbench/internal/store"
	"ragbench/internal/strategy"
	"ragbench/internal/usecase"
)

// app bundles the wired workbench with the store handle that must be
// closed when the command finishes.
type app struct {
	workbench *usecase.Workbench
	bolt      *store.Bolt
}

func (a *app) Close() error {
	return a.bolt.Close()
}

// buildApp wires the workbench from configuration: embedder, LLM client,
// reranker, persistent store and collection registry.
func buildApp(cfg *config.Config, dir string) (*app, error) {
	embedder, err := buildEmbedder(cfg.Embedding)
	if err != nil {
		return nil, err
	}

	generator, err := llm.NewClient(cfg.LLM.Provider, cfg.LLM.Model, cfg.LLM.BaseURL, "")
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	reranker, err := buildReranker(cfg.Rerank)
	if err != nil {
		return nil, err
	}

	if err := config.EnsureDataDir(dir); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	bolt, err := store.Open(config.VectorDBPath(dir))
	if err != nil {
		return nil, err
	}

	registry := collection.NewRegistry(bolt)
	workbench := usecase.NewWorkbench(registry, embedder, generator, reranker)
	if cfg.Retrieve.MaxLoops >= 0 && cfg.Retrieve.MaxLoops != strategy.MaxLoops {
		workbench.SetStrategyParams(map[string]any{"max_loops": cfg.Retrieve.MaxLoops})
	}

	return &app{
		workbench: workbench,
		bolt:      bolt,
	}, nil
}

func buildEmbedder(cfg config.EmbeddingConfig) (port.Embedder, error) {
	switch cfg.Provider {
	case "openai":
		if cfg.BaseURL != "" {
			return embedding.NewOpenAICompatibleEmbedder(cfg.APIKeyEnv, cfg.Model, cfg.BaseURL)
		}
		return embedding.NewOpenAIEmbedder(cfg.APIKeyEnv, cfg.Model)
	case "ollama":
		return embedding.NewOllamaEmbedder(cfg.Model, cfg.BaseURL)
	case "mock":
		dim := cfg.Dimension
		if dim <= 0 {
			dim = 256
		}
		return embedding.NewMockEmbedder(dim), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider: %q", cfg.Provider)
	}
}

func buildReranker(cfg config.RerankConfig) (port.Reranker, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	switch cfg.Provider {
	case "overlap", "":
		return rerank.NewAdapter(rerank.NewOverlapScorer()), nil
	case "http":
		scorer, err := rerank.NewHTTPScorer(cfg.BaseURL, cfg.APIKeyEnv, cfg.Model)
		if err != nil {
			return nil, fmt.Errorf("failed to create rerank scorer: %w", err)
		}
		return rerank.NewAdapter(scorer), nil
	default:
		return nil, fmt.Errorf("unknown rerank provider: %q", cfg.Provider)
	}
}
