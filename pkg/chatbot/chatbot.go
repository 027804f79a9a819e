package chatbot

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"ai-docchat-be/internal/pkg/logger"
	"ai-docchat-be/pkg/convcache"
	"ai-docchat-be/pkg/llm"
	"ai-docchat-be/pkg/qna"
	"ai-docchat-be/pkg/store"

	"github.com/google/uuid"
)

// DefaultPastMessagesLimit is how many prior messages accompany the new
// prompt when no explicit limit is given.
const DefaultPastMessagesLimit = 10

// ErrDuplicateMessage marks a prompt whose message id was already answered.
// Redelivered prompts are skipped before any cache mutation.
var ErrDuplicateMessage = errors.New("message already answered")

// Exchange is one completed question/answer turn as recorded on the durable
// chat log.
type Exchange struct {
	SessionId        string
	MessageId        string
	Question         string
	Answer           string
	ConfidenceScore  float64
	Source           string
	RequestTimestamp time.Time
}

// ChatLogStore is the durable record of completed exchanges. It is the
// source of truth the conversation cache is rebuilt from.
type ChatLogStore interface {
	// History returns every exchange of a session in chronological order.
	History(ctx context.Context, sessionId string) ([]*Exchange, error)
	Record(ctx context.Context, exchange *Exchange) error
	// Exists reports whether a message id was already recorded.
	Exists(ctx context.Context, messageId string) (bool, error)
}

// QnAAnswerer short-circuits retrieval when a curated pair matches.
type QnAAnswerer interface {
	Lookup(ctx context.Context, question string) (*qna.Match, error)
}

// AnswerEngine produces a streamed, confidence-gated answer from chat history.
type AnswerEngine interface {
	GenerateAnswer(ctx context.Context, history []llm.Message) (<-chan store.AnswerFragment, error)
}

// Chatbot orchestrates one chat turn: history assembly, the curated-answer
// shortcut, streamed generation, and persistence of the finished exchange.
type Chatbot struct {
	cache   convcache.ConversationCache
	chatLog ChatLogStore
	qna     QnAAnswerer
	engine  AnswerEngine
	log     logger.ILogger

	// sessionLocks serializes turns per session so concurrent prompts for
	// the same session cannot interleave cache writes. Entries are never
	// evicted; one mutex per live session is cheap enough.
	mu           sync.Mutex
	sessionLocks map[string]*sync.Mutex
}

func NewChatbot(
	cache convcache.ConversationCache,
	chatLog ChatLogStore,
	qnaAnswerer QnAAnswerer,
	engine AnswerEngine,
	log logger.ILogger,
) *Chatbot {
	return &Chatbot{
		cache:        cache,
		chatLog:      chatLog,
		qna:          qnaAnswerer,
		engine:       engine,
		log:          log,
		sessionLocks: make(map[string]*sync.Mutex),
	}
}

func (c *Chatbot) lockSession(sessionId string) *sync.Mutex {
	c.mu.Lock()
	lock, ok := c.sessionLocks[sessionId]
	if !ok {
		lock = &sync.Mutex{}
		c.sessionLocks[sessionId] = lock
	}
	c.mu.Unlock()
	lock.Lock()
	return lock
}

// CompleteAnswer runs one full chat turn for a session. The returned channel
// replays the answer stream fragment by fragment; after the final fragment is
// delivered the exchange is appended to the cache and the durable log.
//
// messageId is the turn's idempotency key. Prompts arrive over an
// at-least-once bus, so a redelivered id is rejected with ErrDuplicateMessage
// before the cache is touched. An empty id gets a fresh one (direct HTTP
// callers have no delivery to dedupe).
//
// The turn holds the session lock until persistence finishes, so a second
// prompt for the same session observes the completed exchange in its history.
func (c *Chatbot) CompleteAnswer(ctx context.Context, sessionId, messageId, prompt string, pastMessagesLimit int) (<-chan store.AnswerFragment, error) {
	if pastMessagesLimit <= 0 {
		pastMessagesLimit = DefaultPastMessagesLimit
	}
	requestedAt := time.Now().UTC()

	lock := c.lockSession(sessionId)

	release := func() { lock.Unlock() }
	fail := func(err error) (<-chan store.AnswerFragment, error) {
		release()
		return nil, err
	}

	if messageId == "" {
		messageId = uuid.New().String()
	} else {
		answered, err := c.chatLog.Exists(ctx, messageId)
		if err != nil {
			return fail(err)
		}
		if answered {
			return fail(fmt.Errorf("%w: %s", ErrDuplicateMessage, messageId))
		}
	}

	if err := c.ensureSession(ctx, sessionId); err != nil {
		return fail(err)
	}

	userMessage := llm.Message{Role: llm.RoleUser, Content: prompt}
	if err := c.cache.AppendMessage(ctx, sessionId, userMessage); err != nil {
		return fail(err)
	}

	// The prompt itself counts as one message on top of the history window.
	history, err := c.cache.GetMessages(ctx, sessionId, pastMessagesLimit+1)
	if err != nil {
		return fail(err)
	}

	exchange := &Exchange{
		SessionId:        sessionId,
		MessageId:        messageId,
		Question:         prompt,
		RequestTimestamp: requestedAt,
	}

	match, err := c.qna.Lookup(ctx, prompt)
	if err != nil {
		// A broken shortcut never blocks an answer; fall through to the
		// full pipeline.
		c.log.Warn("chatbot", "qna lookup failed, falling back to retrieval", map[string]interface{}{
			"session_id": sessionId,
			"error":      err.Error(),
		})
	}
	if match != nil {
		exchange.Answer = match.Answer
		exchange.ConfidenceScore = match.Score
		exchange.Source = store.SourceQnA

		out := make(chan store.AnswerFragment, 1)
		go func() {
			defer release()
			defer close(out)
			select {
			case out <- store.AnswerFragment{
				Text:       match.Answer,
				IsFinal:    true,
				Confidence: match.Score,
				Source:     store.SourceQnA,
			}:
			case <-ctx.Done():
				return
			}
			c.persistExchange(ctx, sessionId, exchange)
		}()
		return out, nil
	}

	fragments, err := c.engine.GenerateAnswer(ctx, history)
	if err != nil {
		return fail(err)
	}

	// Anything the retrieval engine answers is a RAG exchange, whatever the
	// individual fragments carry.
	exchange.Source = store.SourceRAG

	out := make(chan store.AnswerFragment)
	go func() {
		defer release()
		defer close(out)

		var answer []byte
		failed := false
		for fragment := range fragments {
			if fragment.Err != nil {
				failed = true
			} else {
				answer = append(answer, fragment.Text...)
				exchange.ConfidenceScore = fragment.Confidence
			}
			select {
			case out <- fragment:
			case <-ctx.Done():
				return
			}
		}

		if failed {
			// Nothing durable to record for a turn that never produced
			// a complete answer.
			return
		}

		exchange.Answer = string(answer)
		c.persistExchange(ctx, sessionId, exchange)
	}()
	return out, nil
}

// SessionHistory returns a session's durable exchanges in chronological order.
func (c *Chatbot) SessionHistory(ctx context.Context, sessionId string) ([]*Exchange, error) {
	return c.chatLog.History(ctx, sessionId)
}

// ensureSession guarantees the cache holds the session, rebuilding it from
// the durable log when the cached copy expired.
func (c *Chatbot) ensureSession(ctx context.Context, sessionId string) error {
	exists, err := c.cache.SessionExists(ctx, sessionId)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	exchanges, err := c.chatLog.History(ctx, sessionId)
	if err != nil {
		return err
	}
	if len(exchanges) == 0 {
		return c.cache.CreateSession(ctx, sessionId)
	}

	messages := make([]llm.Message, 0, len(exchanges)*2)
	for _, e := range exchanges {
		messages = append(messages,
			llm.Message{Role: llm.RoleUser, Content: e.Question},
			llm.Message{Role: llm.RoleAssistant, Content: e.Answer},
		)
	}
	c.log.Info("chatbot", "rebuilt session cache from chat log", map[string]interface{}{
		"session_id": sessionId,
		"messages":   len(messages),
	})
	return c.cache.Rebuild(ctx, sessionId, messages)
}

// persistExchange records a delivered answer. The client already has the
// answer at this point, so persistence failures are logged rather than
// surfaced.
func (c *Chatbot) persistExchange(ctx context.Context, sessionId string, exchange *Exchange) {
	assistantMessage := llm.Message{Role: llm.RoleAssistant, Content: exchange.Answer}
	if err := c.cache.AppendMessage(ctx, sessionId, assistantMessage); err != nil && !errors.Is(err, context.Canceled) {
		c.log.Error("chatbot", "failed to cache assistant message", map[string]interface{}{
			"session_id": sessionId,
			"message_id": exchange.MessageId,
			"error":      err.Error(),
		})
	}
	if err := c.chatLog.Record(ctx, exchange); err != nil && !errors.Is(err, context.Canceled) {
		c.log.Error("chatbot", "failed to record exchange", map[string]interface{}{
			"session_id": sessionId,
			"message_id": exchange.MessageId,
			"error":      err.Error(),
		})
	}
}
