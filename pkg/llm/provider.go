package llm

import (
	"context"
)

// Standard chat roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message represents a chat message in a provider-agnostic format
type Message struct {
	Role    string // "user", "assistant", "system"
	Content string
}

// StreamDelta is one fragment of a streamed chat completion. Done is true on
// the last fragment of a stream. Err is set when the stream failed before
// completing; no further deltas follow an error.
type StreamDelta struct {
	Content string
	Done    bool
	Err     error
}

// Option allows for optional parameters like Temperature, MaxTokens, etc.
type Option func(*Options)

type Options struct {
	Temperature float64
	MaxTokens   int
	Model       string // Override default model
}

func WithTemperature(temp float64) Option {
	return func(o *Options) {
		o.Temperature = temp
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

// LLMProvider defines the contract for any generative backend
type LLMProvider interface {
	// Chat sends a chat history to the model and returns the full response
	Chat(ctx context.Context, history []Message, options ...Option) (string, error)

	// ChatStream sends a chat history and returns the response one token
	// fragment at a time. The returned channel is closed after the Done or
	// Err delta. Cancelling ctx abandons the stream.
	ChatStream(ctx context.Context, history []Message, options ...Option) (<-chan StreamDelta, error)

	// Generate sends a single prompt to the model (convenience method)
	Generate(ctx context.Context, prompt string, options ...Option) (string, error)
}
