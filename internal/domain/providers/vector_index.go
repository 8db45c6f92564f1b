package providers

import "context"

// Record kinds stored in the vector index.
const (
	RecordKindService = "service"
	RecordKindRule    = "rule"
)

// EmbeddingDimension is fixed by the embedding model.
const EmbeddingDimension = 1536

// VectorRecord is one embedded record ready for upsert.
type VectorRecord struct {
	ID      string
	Vector  []float32
	Payload map[string]any
}

// SearchFilter restricts a similarity search to one record kind.
type SearchFilter struct {
	Kind string
}

// Match is one similarity search hit, ordered by descending score.
type Match struct {
	ID      string
	Score   float64
	Payload map[string]any
}

// Embedder converts text into a fixed-length vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// VectorIndex is the external embedding index capability. The core owns no
// index internals; ordering of search results is whatever the index returns.
type VectorIndex interface {
	EnsureCollection(ctx context.Context) error
	Upsert(ctx context.Context, records []VectorRecord) error
	Search(ctx context.Context, vector []float32, topK int, filter *SearchFilter) ([]Match, error)
}
