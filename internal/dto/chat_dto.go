package dto

import (
	"time"
)

type SendChatRequest struct {
	SessionId string `json:"session_id" validate:"required,max=255"`
	Prompt    string `json:"prompt" validate:"required"`
}

// ChatFragmentResponse is one streamed piece of an answer, as relayed over
// the event bus and the websocket.
type ChatFragmentResponse struct {
	SessionId  string  `json:"session_id"`
	MessageId  string  `json:"message_id"`
	Text       string  `json:"text"`
	IsFinal    bool    `json:"is_final"`
	Confidence float64 `json:"confidence"`
	Source     string  `json:"source,omitempty"`
	Error      string  `json:"error,omitempty"`
}

type SendChatResponse struct {
	SessionId  string  `json:"session_id"`
	MessageId  string  `json:"message_id"`
	Answer     string  `json:"answer"`
	Confidence float64 `json:"confidence"`
	Source     string  `json:"source"`
}

type ChatHistoryEntryResponse struct {
	MessageId       string    `json:"message_id"`
	Question        string    `json:"question"`
	Answer          string    `json:"answer"`
	ConfidenceScore float64   `json:"confidence_score"`
	Source          string    `json:"source"`
	AskedAt         time.Time `json:"asked_at"`
}

type GetChatHistoryResponse struct {
	SessionId string                     `json:"session_id"`
	Entries   []ChatHistoryEntryResponse `json:"entries"`
}

// PublishChatPromptMessage is the payload of a ChatPromptedEvent; the
// message id doubles as the idempotency key for redeliveries.
type PublishChatPromptMessage struct {
	SessionId string `json:"session_id"`
	MessageId string `json:"message_id"`
	Prompt    string `json:"prompt"`
}
