package embedding

import "context"

// EmbeddingProvider defines the interface for generating text embeddings.
// The same provider and model must be used for indexing and querying;
// nothing downstream can detect a mismatch, retrieval quality just degrades.
type EmbeddingProvider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
