package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"petsc-chat-be/pkg/vectorstore"
)

func chunk(id string, vec []float32) vectorstore.Chunk {
	return vectorstore.Chunk{
		ID:        id,
		Text:      "text for " + id,
		Metadata:  map[string]string{"source": id + ".html"},
		Embedding: vec,
	}
}

func TestSearchRanksBySimilarity(t *testing.T) {
	s, err := Open(t.TempDir(), "petsc-docs")
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, s.Upsert(ctx, []vectorstore.Chunk{
		chunk("vec.html-0", []float32{1, 0, 0}),
		chunk("mat.html-1", []float32{0, 1, 0}),
		chunk("ksp.html-2", []float32{0.7071, 0.7071, 0}),
	}))

	results, err := s.Search(ctx, []float32{1, 0, 0}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "vec.html-0", results[0].Chunk.ID)
	assert.Equal(t, "ksp.html-2", results[1].Chunk.ID)
	assert.Greater(t, results[0].Similarity, results[1].Similarity)
}

func TestSearchEmptyStore(t *testing.T) {
	s, err := Open(t.TempDir(), "petsc-docs")
	require.NoError(t, err)

	results, err := s.Search(context.Background(), []float32{1, 0, 0}, 4)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestUpsertOverwritesById(t *testing.T) {
	s, err := Open(t.TempDir(), "petsc-docs")
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.Upsert(ctx, []vectorstore.Chunk{chunk("vec.html-0", []float32{1, 0, 0})}))
	require.NoError(t, s.Upsert(ctx, []vectorstore.Chunk{chunk("vec.html-0", []float32{0, 1, 0})}))

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	results, err := s.Search(ctx, []float32{0, 1, 0}, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.InDelta(t, 1.0, results[0].Similarity, 1e-6)
}

func TestPersistenceRoundTrip(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s1, err := Open(dir, "petsc-docs")
	require.NoError(t, err)
	require.NoError(t, s1.Upsert(ctx, []vectorstore.Chunk{
		chunk("vec.html-0", []float32{1, 0, 0}),
		chunk("mat.html-1", []float32{0, 1, 0}),
	}))

	// Reopen from disk, as a fresh process would.
	s2, err := Open(dir, "petsc-docs")
	require.NoError(t, err)

	count, err := s2.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	results, err := s2.Search(ctx, []float32{0, 1, 0}, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "mat.html-1", results[0].Chunk.ID)
	assert.Equal(t, "mat.html-1.html", results[0].Chunk.Metadata["source"])
}
