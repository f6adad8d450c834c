package prompt

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"petsc-chat-be/pkg/store"
	"petsc-chat-be/pkg/vectorstore"
)

const testPersona = "You are an expert on PETSc and scientific computing."

func scored(texts ...string) []vectorstore.ScoredChunk {
	out := make([]vectorstore.ScoredChunk, len(texts))
	for i, txt := range texts {
		out[i] = vectorstore.ScoredChunk{
			Chunk:      vectorstore.Chunk{ID: fmt.Sprintf("doc-%d", i), Text: txt},
			Similarity: 1.0 - float64(i)*0.1,
		}
	}
	return out
}

func TestBuildOrdering(t *testing.T) {
	b := NewBuilder(testPersona, 6)
	history := []store.Turn{
		{Role: store.RoleUser, Content: "How do I create a Vec?"},
		{Role: store.RoleAssistant, Content: "Use VecCreate."},
	}

	msgs := b.Build(history, "And how do I destroy it?", scored("VecDestroy frees a Vec."))

	require.Len(t, msgs, 5)
	assert.Equal(t, store.RoleSystem, msgs[0].Role)
	assert.Equal(t, testPersona, msgs[0].Content)
	assert.Equal(t, "How do I create a Vec?", msgs[1].Content)
	assert.Equal(t, "Use VecCreate.", msgs[2].Content)
	assert.Equal(t, "And how do I destroy it?", msgs[3].Content)
	assert.Equal(t, store.RoleSystem, msgs[4].Role)
	assert.Equal(t, ContextLabel+"\nVecDestroy frees a Vec.", msgs[4].Content)
}

func TestBuildWindowBound(t *testing.T) {
	const maxTurns = 6
	b := NewBuilder(testPersona, maxTurns)

	// 20 full exchanges, far past the window
	var history []store.Turn
	for i := 0; i < 20; i++ {
		history = append(history,
			store.Turn{Role: store.RoleUser, Content: fmt.Sprintf("question %d", i)},
			store.Turn{Role: store.RoleAssistant, Content: fmt.Sprintf("answer %d", i)},
		)
	}

	msgs := b.Build(history, "final question", nil)

	// one persona turn + at most 2*maxTurns history turns, no context turn
	require.Len(t, msgs, 1+2*maxTurns)
	assert.Equal(t, store.RoleSystem, msgs[0].Role)
	// window truncates from the oldest end and includes the new message
	assert.Equal(t, "final question", msgs[len(msgs)-1].Content)
	assert.Equal(t, "answer 14", msgs[1].Content)
}

func TestBuildOmitsEmptyContext(t *testing.T) {
	b := NewBuilder(testPersona, 6)

	msgs := b.Build(nil, "hello", nil)

	require.Len(t, msgs, 2)
	assert.Equal(t, store.RoleSystem, msgs[0].Role)
	assert.Equal(t, store.RoleUser, msgs[1].Role)
	for _, m := range msgs {
		assert.NotContains(t, m.Content, ContextLabel)
	}
}

func TestBuildJoinsChunksInRankedOrder(t *testing.T) {
	b := NewBuilder(testPersona, 6)

	msgs := b.Build(nil, "query", scored("first chunk", "second chunk", "third chunk"))

	last := msgs[len(msgs)-1]
	assert.Equal(t, ContextLabel+"\nfirst chunk\n\nsecond chunk\n\nthird chunk", last.Content)
}

func TestBuildWindowCountsNewMessage(t *testing.T) {
	// With maxTurns=1 the window is 2 turns: the previous answer plus the
	// new question. The older question falls out.
	b := NewBuilder(testPersona, 1)
	history := []store.Turn{
		{Role: store.RoleUser, Content: "old question"},
		{Role: store.RoleAssistant, Content: "old answer"},
	}

	msgs := b.Build(history, "new question", nil)

	require.Len(t, msgs, 3)
	assert.Equal(t, "old answer", msgs[1].Content)
	assert.Equal(t, "new question", msgs[2].Content)
}
