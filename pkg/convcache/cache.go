package convcache

import (
	"context"
	"errors"

	"ai-docchat-be/pkg/llm"
)

// ErrUnavailable marks a conversation cache backend failure. Callers match
// with errors.Is.
var ErrUnavailable = errors.New("conversation cache unavailable")

// ConversationCache holds per-session chat history with a TTL refreshed on
// every write. The cache is a suffix-consistent view of the durable chat log:
// on a miss the orchestrator rebuilds it from the log before appending.
type ConversationCache interface {
	SessionExists(ctx context.Context, sessionId string) (bool, error)
	CreateSession(ctx context.Context, sessionId string) error
	AppendMessage(ctx context.Context, sessionId string, message llm.Message) error

	// GetMessages returns up to limit most recent messages in chronological
	// order. limit <= 0 returns all cached messages.
	GetMessages(ctx context.Context, sessionId string, limit int) ([]llm.Message, error)

	// Rebuild replaces the cached session with the given chronological
	// message sequence.
	Rebuild(ctx context.Context, sessionId string, messages []llm.Message) error
}
