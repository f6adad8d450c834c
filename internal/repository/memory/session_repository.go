package memory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"petsc-chat-be/internal/repository/contract"
	"petsc-chat-be/pkg/store"
)

// SessionRepository keeps sessions in an in-process cache. With a zero TTL
// entries live until the process exits; a positive TTL adds idle-timeout
// eviction, refreshed on every append.
type SessionRepository struct {
	cache *cache.Cache
	ttl   time.Duration
}

var _ contract.SessionRepository = &SessionRepository{}

func NewSessionRepository(ttl time.Duration) *SessionRepository {
	expiration := cache.NoExpiration
	cleanup := time.Duration(0)
	if ttl > 0 {
		expiration = ttl
		cleanup = 10 * time.Minute
	}
	return &SessionRepository{
		cache: cache.New(expiration, cleanup),
		ttl:   ttl,
	}
}

func (r *SessionRepository) Get(ctx context.Context, sessionID string) (*store.Session, bool) {
	if x, found := r.cache.Get(sessionID); found {
		return x.(*store.Session), true
	}
	return nil, false
}

func (r *SessionRepository) Create(ctx context.Context) (*store.Session, error) {
	session := &store.Session{
		ID: uuid.NewString(),
	}
	r.cache.Set(session.ID, session, cache.DefaultExpiration)
	return session, nil
}

func (r *SessionRepository) AppendTurns(ctx context.Context, session *store.Session, turns ...store.Turn) error {
	for _, t := range turns {
		session.Append(t.Role, t.Content)
	}
	// The cache holds the pointer, so this only refreshes the idle timer.
	r.cache.Set(session.ID, session, cache.DefaultExpiration)
	return nil
}
