package rerank

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// HTTPScorer calls a Cohere-style rerank endpoint to score candidates with
// a hosted cross-encoder.
type HTTPScorer struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

type rerankRequest struct {
	Query     string   `json:"query"`
	Documents []string `json:"documents"`
	Model     string   `json:"model"`
}

type rerankResponse struct {
	Results []rerankResult `json:"results"`
}

type rerankResult struct {
	Index          int     `json:"index"`
	RelevanceScore float64 `json:"relevance_score"`
}

// NewHTTPScorer creates a scorer against the given endpoint. The API key is
// read from the named environment variable.
func NewHTTPScorer(baseURL, apiKeyEnv, model string) (*HTTPScorer, error) {
	apiKey := os.Getenv(apiKeyEnv)
	if apiKey == "" {
		return nil, fmt.Errorf("API key not found in environment variable: %s", apiKeyEnv)
	}

	if baseURL == "" {
		baseURL = "https://api.cohere.ai/v1"
	}
	if model == "" {
		model = "rerank-english-v3.0"
	}

	return &HTTPScorer{
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   model,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

// Score scores every (query, text) pair via the rerank endpoint. The
// endpoint returns results sorted by relevance with original indices, so
// scores are mapped back to input order here.
func (s *HTTPScorer) Score(query string, texts []string) ([]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	// Cohere caps a single request at 1000 documents.
	const maxDocs = 1000
	if len(texts) > maxDocs {
		texts = texts[:maxDocs]
	}

	reqBody := rerankRequest{
		Query:     query,
		Documents: texts,
		Model:     s.model,
	}
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequest("POST", s.baseURL+"/rerank", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
	}

	var parsed rerankResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	scores := make([]float64, len(texts))
	for _, res := range parsed.Results {
		if res.Index >= 0 && res.Index < len(scores) {
			scores[res.Index] = res.RelevanceScore
		}
	}
	return scores, nil
}

// ModelName returns the model name.
func (s *HTTPScorer) ModelName() string {
	return s.model
}
