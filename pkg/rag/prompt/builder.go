package prompt

import (
	"strings"

	"petsc-chat-be/pkg/llm"
	"petsc-chat-be/pkg/store"
	"petsc-chat-be/pkg/vectorstore"
)

// ContextLabel prefixes the retrieved-documentation system turn so the model
// can tell supplementary context apart from its behavioral instruction.
const ContextLabel = "Relevant documentation:"

// Builder assembles the outgoing message list for one completion call.
//
// Order is fixed: the persona instruction anchors model behavior first,
// recent dialogue stays contiguous in the middle, and retrieved context goes
// last so it sits closest to the generation.
type Builder struct {
	systemPrompt string
	maxTurns     int // user/assistant pairs kept in the window
}

func NewBuilder(systemPrompt string, maxTurns int) *Builder {
	return &Builder{
		systemPrompt: systemPrompt,
		maxTurns:     maxTurns,
	}
}

// Build windows history-including-the-new-message to the most recent
// 2*maxTurns turns and appends the retrieved chunks, if any, as one trailing
// system turn. The stored history itself is never truncated; the window is a
// view.
func (b *Builder) Build(history []store.Turn, userMessage string, retrieved []vectorstore.ScoredChunk) []llm.Message {
	window := make([]store.Turn, 0, len(history)+1)
	window = append(window, history...)
	window = append(window, store.Turn{Role: store.RoleUser, Content: userMessage})

	limit := 2 * b.maxTurns
	if len(window) > limit {
		window = window[len(window)-limit:]
	}

	messages := make([]llm.Message, 0, len(window)+2)
	messages = append(messages, llm.Message{Role: store.RoleSystem, Content: b.systemPrompt})
	for _, turn := range window {
		messages = append(messages, llm.Message{Role: turn.Role, Content: turn.Content})
	}

	if blurb := contextBlurb(retrieved); blurb != "" {
		messages = append(messages, llm.Message{
			Role:    store.RoleSystem,
			Content: ContextLabel + "\n" + blurb,
		})
	}
	return messages
}

// contextBlurb concatenates chunk texts in ranked order, blank-line separated.
func contextBlurb(retrieved []vectorstore.ScoredChunk) string {
	if len(retrieved) == 0 {
		return ""
	}
	texts := make([]string, len(retrieved))
	for i, r := range retrieved {
		texts[i] = r.Chunk.Text
	}
	return strings.Join(texts, "\n\n")
}
