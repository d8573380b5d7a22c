package rerank

// OverlapScorer is a local, model-free cross-encoder stand-in that scores
// candidates by query term overlap. Useful when no scoring endpoint is
// configured.
type OverlapScorer struct{}

// NewOverlapScorer creates a new term-overlap scorer.
func NewOverlapScorer() *OverlapScorer {
	return &OverlapScorer{}
}

// Score returns the fraction of query terms present in each text. When the
// query has no usable terms, earlier candidates score marginally higher so
// the original ordering is preserved.
func (s *OverlapScorer) Score(query string, texts []string) ([]float64, error) {
	queryTerms := tokenizeSimple(query)

	scores := make([]float64, len(texts))
	if len(queryTerms) == 0 {
		for i := range texts {
			scores[i] = 1.0 - float64(i)*0.01
		}
		return scores, nil
	}

	for i, text := range texts {
		scores[i] = termOverlap(queryTerms, text)
	}
	return scores, nil
}

// ModelName returns the model name.
func (s *OverlapScorer) ModelName() string {
	return "overlap-tf"
}

// tokenizeSimple performs basic tokenization.
func tokenizeSimple(text string) map[string]int {
	terms := make(map[string]int)
	word := ""
	for _, r := range text {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' {
			word += string(r)
		} else {
			if len(word) >= 2 {
				terms[word]++
			}
			word = ""
		}
	}
	if len(word) >= 2 {
		terms[word]++
	}
	return terms
}

// termOverlap calculates overlap between query terms and a candidate text.
func termOverlap(queryTerms map[string]int, text string) float64 {
	textTerms := tokenizeSimple(text)
	if len(textTerms) == 0 {
		return 0
	}

	matches := 0
	for term := range queryTerms {
		if _, exists := textTerms[term]; exists {
			matches++
		}
	}
	return float64(matches) / float64(len(queryTerms))
}
