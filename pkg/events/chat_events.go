package events

import "time"

// Event type codes for the chat relay.
const (
	ChatPromptedEventType         = "CHAT_PROMPTED"
	ChatResponseStreamedEventType = "CHAT_RESPONSE_STREAMED"
)

// NewChatPromptedEvent announces a prompt waiting for an answer. The message
// id is the idempotency key consumers dedupe redeliveries on.
func NewChatPromptedEvent(sessionId, messageId, prompt string) Event {
	return BaseEvent{
		Type: ChatPromptedEventType,
		Data: map[string]interface{}{
			"session_id": sessionId,
			"message_id": messageId,
			"prompt":     prompt,
		},
		OccurredAt: time.Now(),
	}
}

// NewChatResponseStreamedEvent carries one answer fragment back toward the
// client-facing relay.
func NewChatResponseStreamedEvent(sessionId, messageId, text string, isFinal bool, confidence float64, source string, errText string) Event {
	data := map[string]interface{}{
		"session_id": sessionId,
		"message_id": messageId,
		"text":       text,
		"is_final":   isFinal,
		"confidence": confidence,
		"source":     source,
	}
	if errText != "" {
		data["error"] = errText
	}
	return BaseEvent{
		Type:       ChatResponseStreamedEventType,
		Data:       data,
		OccurredAt: time.Now(),
	}
}
