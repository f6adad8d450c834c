package ingest

import (
	"context"
	"fmt"
	"io/fs"
	"log"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"

	"petsc-chat-be/pkg/embedding"
	"petsc-chat-be/pkg/utils"
	"petsc-chat-be/pkg/vectorstore"
)

const upsertBatchSize = 64

// Stats summarizes one indexing run.
type Stats struct {
	FilesLoaded  int
	FilesSkipped int
	Chunks       int
}

// Pipeline walks a documentation directory, splits each parsed file into
// overlapping chunks, embeds them concurrently and upserts the result into
// the vector store. Chunk ids are `<source-basename>-<global ordinal>`,
// assigned in lexical walk order, so re-running over unchanged content
// produces the same id set and overwrites in place.
type Pipeline struct {
	store     vectorstore.Store
	embedder  embedding.EmbeddingProvider
	chunkSize int
	overlap   int
	poolSize  int
	logger    *log.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithChunking overrides the default 1024/128 chunk size and overlap.
func WithChunking(size, overlap int) Option {
	return func(p *Pipeline) {
		if size > 0 {
			p.chunkSize = size
		}
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// WithPoolSize sets the embedding worker pool size.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) {
		if size > 0 {
			p.poolSize = size
		}
	}
}

// WithLogger sets a custom logger. Default is the stdlib default logger.
func WithLogger(logger *log.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

func NewPipeline(store vectorstore.Store, embedder embedding.EmbeddingProvider, opts ...Option) *Pipeline {
	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	p := &Pipeline{
		store:     store,
		embedder:  embedder,
		chunkSize: 1024,
		overlap:   128,
		poolSize:  poolSize,
		logger:    log.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run indexes every file under docsDir recursively. Files that fail to parse
// are skipped with a warning; embedding or store failures abort the run.
func (p *Pipeline) Run(ctx context.Context, docsDir string) (*Stats, error) {
	stats := &Stats{}

	// filepath.WalkDir visits entries in lexical order, which keeps the
	// global chunk ordinal stable between runs.
	var chunks []vectorstore.Chunk
	ordinal := 0
	err := filepath.WalkDir(docsDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		text, perr := ParserFor(path)(path)
		if perr != nil {
			p.logger.Printf("[WARN] skipping %s: %v", path, perr)
			stats.FilesSkipped++
			return nil
		}
		if text == "" {
			stats.FilesSkipped++
			return nil
		}
		stats.FilesLoaded++

		base := filepath.Base(path)
		for _, piece := range utils.SplitText(text, p.chunkSize, p.overlap) {
			chunks = append(chunks, vectorstore.Chunk{
				ID:   fmt.Sprintf("%s-%d", base, ordinal),
				Text: piece,
				Metadata: map[string]string{
					"source": path,
				},
			})
			ordinal++
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", docsDir, err)
	}

	if err := p.embedAll(ctx, chunks); err != nil {
		return nil, err
	}

	for start := 0; start < len(chunks); start += upsertBatchSize {
		end := start + upsertBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		if err := p.store.Upsert(ctx, chunks[start:end]); err != nil {
			return nil, fmt.Errorf("upsert chunks: %w", err)
		}
	}

	stats.Chunks = len(chunks)
	return stats, nil
}

// embedAll computes embeddings for all chunks using an ants worker pool.
func (p *Pipeline) embedAll(ctx context.Context, chunks []vectorstore.Chunk) error {
	pool, err := ants.NewPool(p.poolSize)
	if err != nil {
		return fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)

	for i := range chunks {
		i := i

		mu.Lock()
		failed := firstErr != nil
		mu.Unlock()
		if failed {
			break
		}

		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			vec, err := p.embedder.Embed(ctx, chunks[i].Text)
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = fmt.Errorf("embed chunk %s: %w", chunks[i].ID, err)
				}
				mu.Unlock()
				return
			}
			chunks[i].Embedding = vec
		})
		if submitErr != nil {
			wg.Done()
			return fmt.Errorf("submit embed task: %w", submitErr)
		}
	}

	wg.Wait()
	return firstErr
}
