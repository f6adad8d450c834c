package service

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"petsc-chat-be/internal/dto"
	"petsc-chat-be/internal/pkg/logger"
	"petsc-chat-be/internal/pkg/serverutils"
	"petsc-chat-be/internal/repository/contract"
	"petsc-chat-be/pkg/llm"
	"petsc-chat-be/pkg/rag/prompt"
	"petsc-chat-be/pkg/store"
	"petsc-chat-be/pkg/vectorstore"
)

var (
	ErrEmptyMessage     = serverutils.NewAppError(fiber.StatusBadRequest, "empty message")
	ErrSessionNotFound  = serverutils.NewAppError(fiber.StatusNotFound, "session not found")
	ErrCompletionFailed = serverutils.NewAppError(fiber.StatusBadGateway, "completion failed")
)

// Retriever yields ranked documentation chunks for a query. Must fail soft:
// no context is a degraded answer, not an error.
type Retriever interface {
	Retrieve(ctx context.Context, query string) []vectorstore.ScoredChunk
}

type IChatService interface {
	// SendChat resolves the session behind clientToken (minting one when the
	// token is absent or stale), answers the message and records the
	// exchange.
	SendChat(ctx context.Context, clientToken, message string) (*dto.SendChatResult, error)
	GetHistory(ctx context.Context, clientToken string) (*dto.GetChatHistoryResponse, error)
}

type chatService struct {
	sessions    contract.SessionRepository
	retriever   Retriever
	builder     *prompt.Builder
	llmProvider llm.LLMProvider
	maxTokens   int
	temperature float64
	logger      logger.ILogger
}

func NewChatService(
	sessions contract.SessionRepository,
	retriever Retriever,
	builder *prompt.Builder,
	llmProvider llm.LLMProvider,
	maxTokens int,
	temperature float64,
	log logger.ILogger,
) IChatService {
	return &chatService{
		sessions:    sessions,
		retriever:   retriever,
		builder:     builder,
		llmProvider: llmProvider,
		maxTokens:   maxTokens,
		temperature: temperature,
		logger:      log,
	}
}

func (cs *chatService) SendChat(ctx context.Context, clientToken, message string) (*dto.SendChatResult, error) {
	message = strings.TrimSpace(message)
	// Reject before touching any collaborator: an invalid request must not
	// mint a session or mutate anything.
	if message == "" {
		return nil, ErrEmptyMessage
	}

	session, err := cs.resolveSession(ctx, clientToken)
	if err != nil {
		return nil, err
	}

	retrieved := cs.retriever.Retrieve(ctx, message)
	messages := cs.builder.Build(session.History, message, retrieved)

	reply, err := cs.llmProvider.Chat(ctx, messages,
		llm.WithMaxTokens(cs.maxTokens),
		llm.WithTemperature(cs.temperature),
	)
	if err != nil {
		// Fail loud but clean: surface a structured error and leave the
		// session history exactly as it was.
		cs.logger.Error("chat", "completion call failed", map[string]interface{}{
			"session_id": session.ID,
			"error":      err.Error(),
		})
		return nil, ErrCompletionFailed
	}

	// The exchange is committed only after a successful completion, so the
	// history never holds a user turn without its answer.
	if err := cs.sessions.AppendTurns(ctx, session,
		store.Turn{Role: store.RoleUser, Content: message},
		store.Turn{Role: store.RoleAssistant, Content: reply},
	); err != nil {
		return nil, err
	}

	cs.logger.Info("chat", "exchange recorded", map[string]interface{}{
		"session_id": session.ID,
		"turns":      len(session.History),
		"retrieved":  len(retrieved),
	})

	return &dto.SendChatResult{
		SessionId: session.ID,
		Reply:     reply,
	}, nil
}

func (cs *chatService) GetHistory(ctx context.Context, clientToken string) (*dto.GetChatHistoryResponse, error) {
	if clientToken == "" {
		return nil, ErrSessionNotFound
	}
	session, found := cs.sessions.Get(ctx, clientToken)
	if !found {
		return nil, ErrSessionNotFound
	}

	turns := make([]dto.TurnDTO, len(session.History))
	for i, t := range session.History {
		turns[i] = dto.TurnDTO{Role: t.Role, Content: t.Content}
	}
	return &dto.GetChatHistoryResponse{
		SessionId: session.ID,
		History:   turns,
	}, nil
}

// resolveSession returns the existing session for a valid token, or registers
// a fresh one. A stale token (evicted or from a previous process) silently
// gets a new session rather than an error.
func (cs *chatService) resolveSession(ctx context.Context, clientToken string) (*store.Session, error) {
	if clientToken != "" {
		if session, found := cs.sessions.Get(ctx, clientToken); found {
			return session, nil
		}
	}
	return cs.sessions.Create(ctx)
}
