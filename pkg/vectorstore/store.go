package vectorstore

import "context"

// Chunk is one indexed unit of document content.
type Chunk struct {
	ID        string            `json:"id"` // "<source-basename>-<global ordinal>", stable across runs
	Text      string            `json:"text"`
	Metadata  map[string]string `json:"metadata"`
	Embedding []float32         `json:"embedding"`
}

// ScoredChunk pairs a chunk with its similarity to a query vector.
type ScoredChunk struct {
	Chunk      Chunk
	Similarity float64 // 0.0 to 1.0 (1.0 = identical)
}

// Store is the retrieval index collaborator: a named collection supporting
// id-keyed upsert and nearest-neighbour search. Re-indexing with a colliding
// id overwrites the previous tuple, it never duplicates.
type Store interface {
	Upsert(ctx context.Context, chunks []Chunk) error
	Search(ctx context.Context, embedding []float32, limit int) ([]ScoredChunk, error)
	Count(ctx context.Context) (int64, error)
}
