package dto

type SendChatRequest struct {
	Message string `json:"message" validate:"required"`
}

type SendChatResponse struct {
	Reply string `json:"reply"`
}

// SendChatResult carries the reply together with the session it belongs to,
// so the controller can set the session cookie.
type SendChatResult struct {
	SessionId string
	Reply     string
}

type TurnDTO struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type GetChatHistoryResponse struct {
	SessionId string    `json:"session_id"`
	History   []TurnDTO `json:"history"`
}

type ReindexDocsMessage struct {
	DocsDir string `json:"docs_dir"`
}

type ReindexResponse struct {
	Status string `json:"status"`
}
