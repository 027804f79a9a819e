package chatbot

import (
	"context"
	"errors"
	"testing"

	"ai-docchat-be/pkg/llm"
	"ai-docchat-be/pkg/qna"
	"ai-docchat-be/pkg/rag"
	"ai-docchat-be/pkg/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

type fakeCache struct {
	sessions map[string][]llm.Message
}

func newFakeCache() *fakeCache {
	return &fakeCache{sessions: make(map[string][]llm.Message)}
}

func (f *fakeCache) SessionExists(ctx context.Context, sessionId string) (bool, error) {
	_, ok := f.sessions[sessionId]
	return ok, nil
}

func (f *fakeCache) CreateSession(ctx context.Context, sessionId string) error {
	f.sessions[sessionId] = []llm.Message{}
	return nil
}

func (f *fakeCache) AppendMessage(ctx context.Context, sessionId string, message llm.Message) error {
	f.sessions[sessionId] = append(f.sessions[sessionId], message)
	return nil
}

func (f *fakeCache) GetMessages(ctx context.Context, sessionId string, limit int) ([]llm.Message, error) {
	messages := f.sessions[sessionId]
	if limit > 0 && len(messages) > limit {
		messages = messages[len(messages)-limit:]
	}
	return messages, nil
}

func (f *fakeCache) Rebuild(ctx context.Context, sessionId string, messages []llm.Message) error {
	f.sessions[sessionId] = append([]llm.Message{}, messages...)
	return nil
}

type fakeChatLog struct {
	exchanges map[string][]*Exchange
	recordErr error
}

func newFakeChatLog() *fakeChatLog {
	return &fakeChatLog{exchanges: make(map[string][]*Exchange)}
}

func (f *fakeChatLog) History(ctx context.Context, sessionId string) ([]*Exchange, error) {
	return f.exchanges[sessionId], nil
}

func (f *fakeChatLog) Exists(ctx context.Context, messageId string) (bool, error) {
	for _, exchanges := range f.exchanges {
		for _, e := range exchanges {
			if e.MessageId == messageId {
				return true, nil
			}
		}
	}
	return false, nil
}

func (f *fakeChatLog) Record(ctx context.Context, exchange *Exchange) error {
	if f.recordErr != nil {
		return f.recordErr
	}
	f.exchanges[exchange.SessionId] = append(f.exchanges[exchange.SessionId], exchange)
	return nil
}

type fakeQnA struct {
	match *qna.Match
	err   error
}

func (f *fakeQnA) Lookup(ctx context.Context, question string) (*qna.Match, error) {
	return f.match, f.err
}

type fakeEngine struct {
	fragments  []store.AnswerFragment
	err        error
	gotHistory []llm.Message
}

func (f *fakeEngine) GenerateAnswer(ctx context.Context, history []llm.Message) (<-chan store.AnswerFragment, error) {
	f.gotHistory = history
	if f.err != nil {
		return nil, f.err
	}
	out := make(chan store.AnswerFragment, len(f.fragments))
	for _, fragment := range f.fragments {
		out <- fragment
	}
	close(out)
	return out, nil
}

func collect(t *testing.T, ch <-chan store.AnswerFragment) []store.AnswerFragment {
	t.Helper()
	var got []store.AnswerFragment
	for fragment := range ch {
		got = append(got, fragment)
	}
	return got
}

func ragFragments(confidence float64, texts ...string) []store.AnswerFragment {
	fragments := make([]store.AnswerFragment, len(texts))
	for i, text := range texts {
		fragments[i] = store.AnswerFragment{
			Text:       text,
			Confidence: confidence,
			Source:     store.SourceRAG,
			IsFinal:    i == len(texts)-1,
		}
	}
	return fragments
}

func TestCompleteAnswerStreamsAndPersists(t *testing.T) {
	cache := newFakeCache()
	chatLog := newFakeChatLog()
	engine := &fakeEngine{fragments: ragFragments(0.88, "Paris ", "is the capital.")}
	bot := NewChatbot(cache, chatLog, &fakeQnA{}, engine, nopLogger{})

	ch, err := bot.CompleteAnswer(context.Background(), "s1", "", "What is the capital of France?", 10)
	require.NoError(t, err)

	got := collect(t, ch)
	require.Len(t, got, 2)
	assert.Equal(t, "Paris ", got[0].Text)
	assert.True(t, got[1].IsFinal)

	require.Len(t, chatLog.exchanges["s1"], 1)
	recorded := chatLog.exchanges["s1"][0]
	assert.Equal(t, "What is the capital of France?", recorded.Question)
	assert.Equal(t, "Paris is the capital.", recorded.Answer)
	assert.InDelta(t, 0.88, recorded.ConfidenceScore, 1e-9)
	assert.Equal(t, store.SourceRAG, recorded.Source)
	assert.NotEmpty(t, recorded.MessageId)

	// Cache now holds the user prompt and the assistant answer.
	messages := cache.sessions["s1"]
	require.Len(t, messages, 2)
	assert.Equal(t, llm.RoleUser, messages[0].Role)
	assert.Equal(t, llm.RoleAssistant, messages[1].Role)
	assert.Equal(t, "Paris is the capital.", messages[1].Content)
}

func TestCompleteAnswerQnAShortcut(t *testing.T) {
	cache := newFakeCache()
	chatLog := newFakeChatLog()
	engine := &fakeEngine{fragments: ragFragments(0.9, "should not run")}
	answerer := &fakeQnA{match: &qna.Match{Answer: "Use the forgot-password link.", Score: 0.93}}
	bot := NewChatbot(cache, chatLog, answerer, engine, nopLogger{})

	ch, err := bot.CompleteAnswer(context.Background(), "s1", "", "How do I reset my password?", 10)
	require.NoError(t, err)

	got := collect(t, ch)
	require.Len(t, got, 1)
	assert.True(t, got[0].IsFinal)
	assert.Equal(t, "Use the forgot-password link.", got[0].Text)
	assert.Equal(t, store.SourceQnA, got[0].Source)
	assert.InDelta(t, 0.93, got[0].Confidence, 1e-9)

	assert.Nil(t, engine.gotHistory, "retrieval pipeline must not run on a shortcut hit")
	require.Len(t, chatLog.exchanges["s1"], 1)
	assert.Equal(t, store.SourceQnA, chatLog.exchanges["s1"][0].Source)
}

func TestCompleteAnswerQnAFailureFallsBack(t *testing.T) {
	cache := newFakeCache()
	chatLog := newFakeChatLog()
	engine := &fakeEngine{fragments: ragFragments(0.8, "fallback answer")}
	bot := NewChatbot(cache, chatLog, &fakeQnA{err: errors.New("index offline")}, engine, nopLogger{})

	ch, err := bot.CompleteAnswer(context.Background(), "s1", "", "anything", 10)
	require.NoError(t, err)

	got := collect(t, ch)
	require.Len(t, got, 1)
	assert.Equal(t, "fallback answer", got[0].Text)
}

func TestCompleteAnswerRebuildsExpiredSession(t *testing.T) {
	cache := newFakeCache()
	chatLog := newFakeChatLog()
	chatLog.exchanges["s1"] = []*Exchange{
		{SessionId: "s1", Question: "q1", Answer: "a1"},
		{SessionId: "s1", Question: "q2", Answer: "a2"},
		{SessionId: "s1", Question: "q3", Answer: "a3"},
	}
	engine := &fakeEngine{fragments: ragFragments(0.8, "a4")}
	bot := NewChatbot(cache, chatLog, &fakeQnA{}, engine, nopLogger{})

	ch, err := bot.CompleteAnswer(context.Background(), "s1", "", "q4", 10)
	require.NoError(t, err)
	collect(t, ch)

	// Three durable exchanges expand to six messages; the new prompt is the
	// seventh entry handed to the engine.
	require.Len(t, engine.gotHistory, 7)
	assert.Equal(t, "q1", engine.gotHistory[0].Content)
	assert.Equal(t, llm.RoleAssistant, engine.gotHistory[5].Role)
	assert.Equal(t, "a3", engine.gotHistory[5].Content)
	assert.Equal(t, "q4", engine.gotHistory[6].Content)
}

func TestCompleteAnswerHistoryWindow(t *testing.T) {
	cache := newFakeCache()
	require.NoError(t, cache.CreateSession(context.Background(), "s1"))
	for i := 0; i < 20; i++ {
		require.NoError(t, cache.AppendMessage(context.Background(), "s1", llm.Message{Role: llm.RoleUser, Content: "old"}))
	}
	engine := &fakeEngine{fragments: ragFragments(0.8, "ok")}
	bot := NewChatbot(cache, newFakeChatLog(), &fakeQnA{}, engine, nopLogger{})

	ch, err := bot.CompleteAnswer(context.Background(), "s1", "", "new prompt", 4)
	require.NoError(t, err)
	collect(t, ch)

	require.Len(t, engine.gotHistory, 5)
	assert.Equal(t, "new prompt", engine.gotHistory[4].Content)
}

func TestCompleteAnswerEngineErrorIsSynchronous(t *testing.T) {
	engine := &fakeEngine{err: errors.New("retrieval down")}
	bot := NewChatbot(newFakeCache(), newFakeChatLog(), &fakeQnA{}, engine, nopLogger{})

	ch, err := bot.CompleteAnswer(context.Background(), "s1", "", "q", 10)
	require.Error(t, err)
	assert.Nil(t, ch)
}

func TestCompleteAnswerMidStreamFailureNotRecorded(t *testing.T) {
	chatLog := newFakeChatLog()
	engine := &fakeEngine{fragments: []store.AnswerFragment{
		{Text: "partial ", Confidence: 0.9, Source: store.SourceRAG},
		{Err: errors.New("backend dropped"), IsFinal: true},
	}}
	bot := NewChatbot(newFakeCache(), chatLog, &fakeQnA{}, engine, nopLogger{})

	ch, err := bot.CompleteAnswer(context.Background(), "s1", "", "q", 10)
	require.NoError(t, err)

	got := collect(t, ch)
	require.Len(t, got, 2)
	assert.Error(t, got[1].Err)
	assert.Empty(t, chatLog.exchanges["s1"], "failed turns must not reach the durable log")
}

func TestCompleteAnswerRecordFailureStillDelivers(t *testing.T) {
	chatLog := newFakeChatLog()
	chatLog.recordErr = errors.New("db down")
	engine := &fakeEngine{fragments: ragFragments(0.8, "delivered")}
	bot := NewChatbot(newFakeCache(), chatLog, &fakeQnA{}, engine, nopLogger{})

	ch, err := bot.CompleteAnswer(context.Background(), "s1", "", "q", 10)
	require.NoError(t, err)

	got := collect(t, ch)
	require.Len(t, got, 1)
	assert.Equal(t, "delivered", got[0].Text)
}

func TestCompleteAnswerSerializesSameSession(t *testing.T) {
	cache := newFakeCache()
	chatLog := newFakeChatLog()
	engine := &fakeEngine{fragments: ragFragments(0.8, "one")}
	bot := NewChatbot(cache, chatLog, &fakeQnA{}, engine, nopLogger{})

	first, err := bot.CompleteAnswer(context.Background(), "s1", "", "q1", 10)
	require.NoError(t, err)
	collect(t, first)

	engine.fragments = ragFragments(0.8, "two")
	second, err := bot.CompleteAnswer(context.Background(), "s1", "", "q2", 10)
	require.NoError(t, err)
	collect(t, second)

	// The second turn sees the completed first exchange in its history.
	require.Len(t, engine.gotHistory, 3)
	assert.Equal(t, "q1", engine.gotHistory[0].Content)
	assert.Equal(t, "one", engine.gotHistory[1].Content)
	assert.Equal(t, "q2", engine.gotHistory[2].Content)
	require.Len(t, chatLog.exchanges["s1"], 2)
}

func TestCompleteAnswerDuplicateMessageRejected(t *testing.T) {
	cache := newFakeCache()
	chatLog := newFakeChatLog()
	chatLog.exchanges["s1"] = []*Exchange{
		{SessionId: "s1", MessageId: "msg-1", Question: "q1", Answer: "a1"},
	}
	engine := &fakeEngine{fragments: ragFragments(0.8, "again")}
	bot := NewChatbot(cache, chatLog, &fakeQnA{}, engine, nopLogger{})

	ch, err := bot.CompleteAnswer(context.Background(), "s1", "msg-1", "q1", 10)
	require.ErrorIs(t, err, ErrDuplicateMessage)
	assert.Nil(t, ch)
	assert.Empty(t, cache.sessions["s1"], "duplicate must be rejected before any cache write")
}

type fixedVectorizer struct{ vector []float32 }

func (f *fixedVectorizer) Vectorize(ctx context.Context, history []llm.Message) ([]float32, error) {
	return f.vector, nil
}

type fixedRetriever struct{ chunks []store.RetrievedChunk }

func (f *fixedRetriever) Search(ctx context.Context, vector []float32, topK int) ([]store.RetrievedChunk, error) {
	return f.chunks, nil
}

// scriptedGenerator replays a fixed token stream, Done on the last delta.
type scriptedGenerator struct{ deltas []string }

func (s *scriptedGenerator) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	return "", errors.New("not used")
}

func (s *scriptedGenerator) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return "", errors.New("not used")
}

func (s *scriptedGenerator) ChatStream(ctx context.Context, history []llm.Message, opts ...llm.Option) (<-chan llm.StreamDelta, error) {
	out := make(chan llm.StreamDelta)
	go func() {
		defer close(out)
		for i, d := range s.deltas {
			select {
			case out <- llm.StreamDelta{Content: d, Done: i == len(s.deltas)-1}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// Retrieval-backed turns must reach the durable log tagged as RAG exchanges,
// with the answering engine wired in rather than stubbed out.
func TestCompleteAnswerThroughRetrievalEngine(t *testing.T) {
	cache := newFakeCache()
	chatLog := newFakeChatLog()
	engine := rag.NewEngine(
		&fixedVectorizer{vector: []float32{0.1, 0.2}},
		&fixedRetriever{chunks: []store.RetrievedChunk{{SourceFileName: "policy.pdf", Content: "refund terms", Score: 0.9}}},
		&scriptedGenerator{deltas: []string{"[Confidence: 0.88]", "Refunds take ", "30 days."}},
		rag.Config{ConfidenceThreshold: 0.7},
	)
	bot := NewChatbot(cache, chatLog, &fakeQnA{}, engine, nopLogger{})

	ch, err := bot.CompleteAnswer(context.Background(), "s1", "", "What is the refund policy?", 10)
	require.NoError(t, err)

	got := collect(t, ch)
	require.NotEmpty(t, got)
	for _, fragment := range got {
		assert.Equal(t, store.SourceRAG, fragment.Source)
	}

	require.Len(t, chatLog.exchanges["s1"], 1)
	recorded := chatLog.exchanges["s1"][0]
	assert.Equal(t, store.SourceRAG, recorded.Source)
	assert.Equal(t, "Refunds take 30 days.", recorded.Answer)
	assert.InDelta(t, 0.88, recorded.ConfidenceScore, 1e-9)
}

func TestCompleteAnswerCarriesSuppliedMessageId(t *testing.T) {
	chatLog := newFakeChatLog()
	engine := &fakeEngine{fragments: ragFragments(0.8, "answer")}
	bot := NewChatbot(newFakeCache(), chatLog, &fakeQnA{}, engine, nopLogger{})

	ch, err := bot.CompleteAnswer(context.Background(), "s1", "msg-42", "q", 10)
	require.NoError(t, err)
	collect(t, ch)

	require.Len(t, chatLog.exchanges["s1"], 1)
	assert.Equal(t, "msg-42", chatLog.exchanges["s1"][0].MessageId)
}
