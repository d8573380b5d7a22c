package domain

// Metadata keys stamped by the retrieval layer.
const (
	MetaSource      = "source"
	MetaStrategy    = "strategy"
	MetaRerankScore = "rerank_score"
	MetaFinalQuery  = "final_query"
)

// Document is a value object: a passage of text plus its metadata.
// Metadata always carries "source" after ingestion; strategies additionally
// stamp "strategy" and, when reranked, "rerank_score". Duplicates are
// permitted and never deduplicated here.
type Document struct {
	Text     string
	Metadata map[string]any
}

// NewDocument creates a document with its source stamped.
func NewDocument(text, source string) Document {
	return Document{
		Text:     text,
		Metadata: map[string]any{MetaSource: source},
	}
}

// Source returns the origin identifier, or "" when unset.
func (d Document) Source() string {
	if s, ok := d.Metadata[MetaSource].(string); ok {
		return s
	}
	return ""
}

// Clone returns a copy with its own metadata map, so callers can stamp
// additional keys without aliasing stored state.
func (d Document) Clone() Document {
	meta := make(map[string]any, len(d.Metadata)+2)
	for k, v := range d.Metadata {
		meta[k] = v
	}
	return Document{Text: d.Text, Metadata: meta}
}

// Chat roles understood by the generation capability.
const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// Message is one turn handed to the generation capability.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CollectionStats summarizes one vector collection.
type CollectionStats struct {
	Count           int `json:"count"`
	DistinctSources int `json:"distinct_sources"`
}
