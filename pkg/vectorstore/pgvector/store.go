package pgvector

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"petsc-chat-be/internal/model"
	"petsc-chat-be/pkg/vectorstore"
)

// Store persists chunks in Postgres with the pgvector extension and searches
// them by cosine distance (`embedding_value <=> query`).
type Store struct {
	db *gorm.DB
}

var _ vectorstore.Store = &Store{}

// New prepares the doc_chunks table. The vector extension must be installable
// by the connecting role.
func New(db *gorm.DB) (*Store, error) {
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
		return nil, fmt.Errorf("create vector extension: %w", err)
	}
	if err := db.AutoMigrate(&model.DocChunk{}); err != nil {
		return nil, fmt.Errorf("migrate doc_chunks: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Upsert(ctx context.Context, chunks []vectorstore.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	models := make([]*model.DocChunk, len(chunks))
	for i, c := range chunks {
		meta, err := json.Marshal(c.Metadata)
		if err != nil {
			return fmt.Errorf("marshal chunk metadata: %w", err)
		}
		models[i] = &model.DocChunk{
			Id:             c.ID,
			Document:       c.Text,
			EmbeddingValue: pgvector.NewVector(c.Embedding),
			Metadata:       meta,
		}
	}

	// Colliding ids overwrite instead of duplicating
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(models).Error
}

func (s *Store) Search(ctx context.Context, embedding []float32, limit int) ([]vectorstore.ScoredChunk, error) {
	if limit <= 0 {
		limit = 5
	}

	// Cosine distance in pgvector is 1 - cosine_similarity
	type result struct {
		model.DocChunk
		Similarity float64
	}
	var results []result

	queryVector := pgvector.NewVector(embedding)

	err := s.db.WithContext(ctx).
		Table("doc_chunks").
		Select("doc_chunks.*, 1 - (embedding_value <=> ?) as similarity", queryVector).
		Order("similarity DESC").
		Limit(limit).
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	scored := make([]vectorstore.ScoredChunk, len(results))
	for i, res := range results {
		var meta map[string]string
		if len(res.Metadata) > 0 {
			if err := json.Unmarshal(res.Metadata, &meta); err != nil {
				return nil, fmt.Errorf("unmarshal chunk metadata: %w", err)
			}
		}
		scored[i] = vectorstore.ScoredChunk{
			Chunk: vectorstore.Chunk{
				ID:        res.Id,
				Text:      res.Document,
				Metadata:  meta,
				Embedding: res.EmbeddingValue.Slice(),
			},
			Similarity: res.Similarity,
		}
	}
	return scored, nil
}

func (s *Store) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.DocChunk{}).Count(&count).Error
	return count, err
}
