package convcache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ai-docchat-be/pkg/llm"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisCache stores each session as a metadata hash plus a sorted set of
// messages scored by append time. Every write refreshes the TTL on both keys.
type RedisCache struct {
	rdb *redis.Client
	ttl time.Duration
}

var _ ConversationCache = &RedisCache{}

func NewRedisCache(rdb *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &RedisCache{rdb: rdb, ttl: ttl}
}

// cachedMessage is the sorted-set member payload. The nonce keeps identical
// role/content pairs as distinct members; content round-trips verbatim
// through JSON, so it may contain any characters.
type cachedMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
	Nonce   string `json:"nonce"`
}

func encodeMessage(message llm.Message) (string, error) {
	raw, err := json.Marshal(cachedMessage{
		Role:    message.Role,
		Content: message.Content,
		Nonce:   uuid.NewString(),
	})
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func decodeMessage(entry string) (llm.Message, error) {
	var cached cachedMessage
	if err := json.Unmarshal([]byte(entry), &cached); err != nil {
		return llm.Message{}, err
	}
	return llm.Message{Role: cached.Role, Content: cached.Content}, nil
}

func sessionKey(sessionId string) string {
	return "session:" + sessionId
}

func messagesKey(sessionId string) string {
	return "session:" + sessionId + ":messages"
}

func (c *RedisCache) SessionExists(ctx context.Context, sessionId string) (bool, error) {
	n, err := c.rdb.Exists(ctx, sessionKey(sessionId)).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return n > 0, nil
}

func (c *RedisCache) CreateSession(ctx context.Context, sessionId string) error {
	now := time.Now().UnixNano()
	_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, sessionKey(sessionId),
			"created_at", now,
			"last_access", now,
		)
		pipe.Expire(ctx, sessionKey(sessionId), c.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: create session: %v", ErrUnavailable, err)
	}
	return nil
}

func (c *RedisCache) AppendMessage(ctx context.Context, sessionId string, message llm.Message) error {
	now := time.Now()

	member, err := encodeMessage(message)
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}

	_, err = c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZAdd(ctx, messagesKey(sessionId), redis.Z{
			Score:  float64(now.UnixNano()),
			Member: member,
		})
		pipe.HSet(ctx, sessionKey(sessionId), "last_access", now.UnixNano())
		pipe.Expire(ctx, sessionKey(sessionId), c.ttl)
		pipe.Expire(ctx, messagesKey(sessionId), c.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: append message: %v", ErrUnavailable, err)
	}
	return nil
}

func (c *RedisCache) GetMessages(ctx context.Context, sessionId string, limit int) ([]llm.Message, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit - 1)
	}

	// Newest first, then reversed: history handed to the prompt builder must
	// be chronological.
	entries, err := c.rdb.ZRevRange(ctx, messagesKey(sessionId), 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: get messages: %v", ErrUnavailable, err)
	}

	messages := make([]llm.Message, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		msg, err := decodeMessage(entries[i])
		if err != nil {
			continue
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

func (c *RedisCache) Rebuild(ctx context.Context, sessionId string, messages []llm.Message) error {
	if err := c.rdb.Del(ctx, sessionKey(sessionId), messagesKey(sessionId)).Err(); err != nil {
		return fmt.Errorf("%w: rebuild: %v", ErrUnavailable, err)
	}
	if err := c.CreateSession(ctx, sessionId); err != nil {
		return err
	}
	for _, msg := range messages {
		if err := c.AppendMessage(ctx, sessionId, msg); err != nil {
			return err
		}
	}
	return nil
}
