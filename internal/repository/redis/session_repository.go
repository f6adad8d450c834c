package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"petsc-chat-be/internal/repository/contract"
	"petsc-chat-be/pkg/store"
)

const keyPrefix = "chat:session:"

// SessionRepository stores sessions as JSON blobs in Redis. Drop-in
// replacement for the in-memory repository when conversations should
// survive a process restart.
type SessionRepository struct {
	client *redis.Client
	ttl    time.Duration // 0 = no expiry
}

var _ contract.SessionRepository = &SessionRepository{}

func NewSessionRepository(client *redis.Client, ttl time.Duration) *SessionRepository {
	return &SessionRepository{
		client: client,
		ttl:    ttl,
	}
}

func (r *SessionRepository) Get(ctx context.Context, sessionID string) (*store.Session, bool) {
	// An unreachable store reads the same as a missing session: the caller
	// mints a fresh one.
	data, err := r.client.Get(ctx, keyPrefix+sessionID).Bytes()
	if err != nil {
		return nil, false
	}

	var session store.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, false
	}
	return &session, true
}

func (r *SessionRepository) Create(ctx context.Context) (*store.Session, error) {
	session := &store.Session{
		ID: uuid.NewString(),
	}
	if err := r.save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (r *SessionRepository) AppendTurns(ctx context.Context, session *store.Session, turns ...store.Turn) error {
	for _, t := range turns {
		session.Append(t.Role, t.Content)
	}
	return r.save(ctx, session)
}

func (r *SessionRepository) save(ctx context.Context, session *store.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, keyPrefix+session.ID, data, r.ttl).Err()
}
