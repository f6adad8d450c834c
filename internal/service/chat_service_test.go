package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"petsc-chat-be/internal/pkg/logger"
	"petsc-chat-be/internal/repository/contract"
	"petsc-chat-be/internal/repository/memory"
	"petsc-chat-be/pkg/llm"
	"petsc-chat-be/pkg/rag/prompt"
	"petsc-chat-be/pkg/store"
	"petsc-chat-be/pkg/vectorstore"
)

type fakeLLM struct {
	reply string
	err   error
	calls [][]llm.Message
}

func (f *fakeLLM) Chat(_ context.Context, history []llm.Message, _ ...llm.Option) (string, error) {
	f.calls = append(f.calls, history)
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

type fakeRetriever struct {
	chunks []vectorstore.ScoredChunk
}

func (f *fakeRetriever) Retrieve(context.Context, string) []vectorstore.ScoredChunk {
	return f.chunks
}

// countingSessions records Create calls so tests can assert that invalid
// requests never mint a session.
type countingSessions struct {
	contract.SessionRepository
	creates int
}

func (c *countingSessions) Create(ctx context.Context) (*store.Session, error) {
	c.creates++
	return c.SessionRepository.Create(ctx)
}

func newTestService(llmProvider llm.LLMProvider, retriever Retriever, maxTurns int) (IChatService, *countingSessions) {
	sessions := &countingSessions{SessionRepository: memory.NewSessionRepository(0)}
	builder := prompt.NewBuilder("You are a helpful assistant.", maxTurns)
	svc := NewChatService(sessions, retriever, builder, llmProvider, 256, 0.2, logger.NewNopLogger())
	return svc, sessions
}

func TestSendChatRejectsEmptyMessage(t *testing.T) {
	provider := &fakeLLM{reply: "hi"}
	svc, sessions := newTestService(provider, &fakeRetriever{}, 6)

	for _, msg := range []string{"", "   ", "\n\t"} {
		res, err := svc.SendChat(context.Background(), "", msg)
		assert.Nil(t, res)
		assert.ErrorIs(t, err, ErrEmptyMessage)
	}

	assert.Equal(t, 0, sessions.creates, "invalid requests must not mint a session")
	assert.Empty(t, provider.calls, "invalid requests must not reach the model")
}

func TestSendChatRecordsExchanges(t *testing.T) {
	provider := &fakeLLM{reply: "use KSPSetFromOptions"}
	svc, _ := newTestService(provider, &fakeRetriever{}, 6)

	res, err := svc.SendChat(context.Background(), "", "how do I configure a solver?")
	require.NoError(t, err)
	require.NotEmpty(t, res.SessionId)
	assert.Equal(t, "use KSPSetFromOptions", res.Reply)

	// Replaying the token continues the same conversation.
	for i := 0; i < 3; i++ {
		next, err := svc.SendChat(context.Background(), res.SessionId, fmt.Sprintf("follow-up %d", i))
		require.NoError(t, err)
		assert.Equal(t, res.SessionId, next.SessionId)
	}

	hist, err := svc.GetHistory(context.Background(), res.SessionId)
	require.NoError(t, err)
	require.Len(t, hist.History, 8)
	for i, turn := range hist.History {
		want := store.RoleUser
		if i%2 == 1 {
			want = store.RoleAssistant
		}
		assert.Equal(t, want, turn.Role, "turn %d", i)
	}
}

func TestSendChatUnknownTokenStartsFresh(t *testing.T) {
	provider := &fakeLLM{reply: "ok"}
	svc, sessions := newTestService(provider, &fakeRetriever{}, 6)

	res, err := svc.SendChat(context.Background(), "stale-token-from-last-deploy", "hello")
	require.NoError(t, err)
	assert.NotEqual(t, "stale-token-from-last-deploy", res.SessionId)
	assert.Equal(t, 1, sessions.creates)
}

func TestSendChatCompletionFailureLeavesHistoryIntact(t *testing.T) {
	provider := &fakeLLM{reply: "answer one"}
	svc, _ := newTestService(provider, &fakeRetriever{}, 6)

	res, err := svc.SendChat(context.Background(), "", "question one")
	require.NoError(t, err)

	provider.err = errors.New("upstream timeout")
	_, err = svc.SendChat(context.Background(), res.SessionId, "question two")
	assert.ErrorIs(t, err, ErrCompletionFailed)

	// The failed exchange must not leave a dangling user turn behind.
	hist, err := svc.GetHistory(context.Background(), res.SessionId)
	require.NoError(t, err)
	require.Len(t, hist.History, 2)
	assert.Equal(t, "question one", hist.History[0].Content)
	assert.Equal(t, "answer one", hist.History[1].Content)

	// The session recovers once the model does.
	provider.err = nil
	_, err = svc.SendChat(context.Background(), res.SessionId, "question two again")
	require.NoError(t, err)
	hist, err = svc.GetHistory(context.Background(), res.SessionId)
	require.NoError(t, err)
	assert.Len(t, hist.History, 4)
}

func TestSendChatPromptWindowIsBounded(t *testing.T) {
	provider := &fakeLLM{reply: "ack"}
	svc, _ := newTestService(provider, &fakeRetriever{}, 2)

	res, err := svc.SendChat(context.Background(), "", "message 0")
	require.NoError(t, err)
	for i := 1; i < 20; i++ {
		_, err := svc.SendChat(context.Background(), res.SessionId, fmt.Sprintf("message %d", i))
		require.NoError(t, err)
	}

	last := provider.calls[len(provider.calls)-1]
	// Persona turn plus at most 2*maxTurns windowed turns, no context turn.
	require.Len(t, last, 5)
	assert.Equal(t, store.RoleSystem, last[0].Role)
	assert.Equal(t, "message 19", last[len(last)-1].Content)
	assert.Equal(t, store.RoleUser, last[len(last)-1].Role)
}

func TestSendChatContextTurnOnlyWhenRetrievalHits(t *testing.T) {
	hits := []vectorstore.ScoredChunk{
		{Chunk: vectorstore.Chunk{ID: "manual-0", Text: "KSP is the linear solver object."}, Similarity: 0.92},
		{Chunk: vectorstore.Chunk{ID: "manual-7", Text: "Use -ksp_type gmres to select GMRES."}, Similarity: 0.85},
	}
	provider := &fakeLLM{reply: "ack"}
	svc, _ := newTestService(provider, &fakeRetriever{chunks: hits}, 6)

	_, err := svc.SendChat(context.Background(), "", "what is KSP?")
	require.NoError(t, err)

	last := provider.calls[0][len(provider.calls[0])-1]
	assert.Equal(t, store.RoleSystem, last.Role)
	assert.True(t, strings.HasPrefix(last.Content, prompt.ContextLabel))
	assert.Contains(t, last.Content, "linear solver object")
	assert.Contains(t, last.Content, "gmres")

	// Without hits the prompt ends on the user turn.
	empty := &fakeLLM{reply: "ack"}
	svcNoHits, _ := newTestService(empty, &fakeRetriever{}, 6)
	_, err = svcNoHits.SendChat(context.Background(), "", "what is KSP?")
	require.NoError(t, err)
	tail := empty.calls[0][len(empty.calls[0])-1]
	assert.Equal(t, store.RoleUser, tail.Role)
}

func TestGetHistoryUnknownSession(t *testing.T) {
	svc, _ := newTestService(&fakeLLM{reply: "ok"}, &fakeRetriever{}, 6)

	_, err := svc.GetHistory(context.Background(), "")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = svc.GetHistory(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
