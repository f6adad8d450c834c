package memory

import (
	"context"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"petsc-chat-be/pkg/vectorstore"
)

// Store is a brute-force cosine-similarity vector store that persists the
// whole collection as a gob file under a configured directory. Fine for a
// corpus of documentation chunks; swap for the pgvector store beyond that.
type Store struct {
	mu     sync.RWMutex
	path   string
	chunks []vectorstore.Chunk
	byID   map[string]int
}

var _ vectorstore.Store = &Store{}

// Open loads the named collection from dir, creating an empty one if the
// file does not exist yet.
func Open(dir, collection string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create index dir: %w", err)
	}

	s := &Store{
		path: filepath.Join(dir, collection+".gob"),
		byID: make(map[string]int),
	}

	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("open index file: %w", err)
	}
	defer f.Close()

	if err := gob.NewDecoder(f).Decode(&s.chunks); err != nil {
		return nil, fmt.Errorf("decode index file: %w", err)
	}
	for i, c := range s.chunks {
		s.byID[c.ID] = i
	}
	return s, nil
}

func (s *Store) Upsert(ctx context.Context, chunks []vectorstore.Chunk) error {
	s.mu.Lock()
	for _, c := range chunks {
		if i, ok := s.byID[c.ID]; ok {
			s.chunks[i] = c
			continue
		}
		s.byID[c.ID] = len(s.chunks)
		s.chunks = append(s.chunks, c)
	}
	s.mu.Unlock()
	return s.flush()
}

func (s *Store) Search(ctx context.Context, embedding []float32, limit int) ([]vectorstore.ScoredChunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 5
	}

	// Vectors are stored unit-normalized, so the dot product is the cosine.
	scored := make([]vectorstore.ScoredChunk, 0, len(s.chunks))
	for _, c := range s.chunks {
		scored = append(scored, vectorstore.ScoredChunk{
			Chunk:      c,
			Similarity: dot(c.Embedding, embedding),
		})
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Similarity > scored[j].Similarity
	})

	if limit > len(scored) {
		limit = len(scored)
	}
	return scored[:limit], nil
}

func (s *Store) Count(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.chunks)), nil
}

// flush rewrites the collection file atomically via a rename.
func (s *Store) flush() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tmp := s.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create index file: %w", err)
	}
	if err := gob.NewEncoder(f).Encode(s.chunks); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("encode index file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, s.path)
}

func dot(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
