package store

// Turn is one role-tagged message unit in a conversation.
// Turns are append-only: once recorded in a session they are never mutated.
type Turn struct {
	Role    string `json:"role"` // "system" | "user" | "assistant"
	Content string `json:"content"`
}

// Session represents one conversation, keyed by the opaque token carried
// in the client's session cookie.
type Session struct {
	ID string `json:"id"`

	// History is strictly append-ordered. Prompt windowing is a read-time
	// view over this slice, never a mutation of it.
	History []Turn `json:"history"`
}

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Append records a turn at the end of the session history.
func (s *Session) Append(role, content string) {
	s.History = append(s.History, Turn{Role: role, Content: content})
}
