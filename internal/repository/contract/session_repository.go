package contract

import (
	"context"

	"petsc-chat-be/pkg/store"
)

// SessionRepository is the conversation store behind the chat handler.
// The in-memory implementation is the default; state loss on restart is an
// accepted property of the design, not a bug.
type SessionRepository interface {
	// Get returns the session for the token, if it exists.
	Get(ctx context.Context, sessionID string) (*store.Session, bool)

	// Create mints a collision-resistant session id, registers an empty
	// history and returns the new session.
	Create(ctx context.Context) (*store.Session, error)

	// AppendTurns records turns at the end of the session history and
	// persists the session.
	AppendTurns(ctx context.Context, session *store.Session, turns ...store.Turn) error
}
