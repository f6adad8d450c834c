package retrieval

import (
	"context"

	"petsc-chat-be/internal/pkg/logger"
	"petsc-chat-be/pkg/embedding"
	"petsc-chat-be/pkg/vectorstore"
)

// Retriever answers "what do the docs say about this" with the top-k most
// similar chunks. It fails soft: an empty or unreachable index yields an
// empty result, never an error — the chat flow degrades to a no-context
// prompt instead of failing the request.
type Retriever struct {
	embedder embedding.EmbeddingProvider
	store    vectorstore.Store
	topK     int
	logger   logger.ILogger
}

func NewRetriever(embedder embedding.EmbeddingProvider, store vectorstore.Store, topK int, log logger.ILogger) *Retriever {
	if topK <= 0 {
		topK = 4
	}
	return &Retriever{
		embedder: embedder,
		store:    store,
		topK:     topK,
		logger:   log,
	}
}

// Retrieve returns up to topK chunks ranked most-to-least relevant.
func (r *Retriever) Retrieve(ctx context.Context, query string) []vectorstore.ScoredChunk {
	vec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		r.logger.Warn("retrieval", "query embedding failed, continuing without context", map[string]interface{}{
			"error": err.Error(),
		})
		return nil
	}

	results, err := r.store.Search(ctx, vec, r.topK)
	if err != nil {
		r.logger.Warn("retrieval", "index search failed, continuing without context", map[string]interface{}{
			"error": err.Error(),
		})
		return nil
	}
	return results
}
