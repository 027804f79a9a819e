package qna

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"ai-docchat-be/pkg/embedding"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEmbedder struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (f *fakeEmbedder) Generate(text string, taskType string) (*embedding.EmbeddingResponse, error) {
	f.mu.Lock()
	f.calls = append(f.calls, text)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return &embedding.EmbeddingResponse{
		Embedding: embedding.EmbeddingResponseEmbedding{Values: []float32{0.1, 0.2, 0.3}},
	}, nil
}

var _ embedding.EmbeddingProvider = (*fakeEmbedder)(nil)

type fakeStore struct {
	mu          sync.Mutex
	match       *Match
	searchErr   error
	replaceErr  error
	searchCalls int
	replaced    []*IndexedEntry
}

func (f *fakeStore) SearchBest(ctx context.Context, vector []float32) (*Match, error) {
	f.mu.Lock()
	f.searchCalls++
	f.mu.Unlock()
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.match, nil
}

func (f *fakeStore) ReplaceAll(ctx context.Context, entries []*IndexedEntry) error {
	if f.replaceErr != nil {
		return f.replaceErr
	}
	f.replaced = entries
	return nil
}

func TestLookupReturnsAnswerAboveThreshold(t *testing.T) {
	store := &fakeStore{match: &Match{Question: "reset password", Answer: "Use the forgot-password link.", Score: 0.91}}
	svc := NewService(store, &fakeEmbedder{}, Config{})

	match, err := svc.Lookup(context.Background(), "How do I reset my password?")
	require.NoError(t, err)
	require.NotNil(t, match)
	assert.Equal(t, "Use the forgot-password link.", match.Answer)
	assert.InDelta(t, 0.91, match.Score, 1e-9)
}

func TestLookupMissesBelowThreshold(t *testing.T) {
	store := &fakeStore{match: &Match{Answer: "nope", Score: 0.84}}
	svc := NewService(store, &fakeEmbedder{}, Config{})

	match, err := svc.Lookup(context.Background(), "unrelated question")
	require.NoError(t, err)
	assert.Nil(t, match)
}

func TestLookupExactThresholdMatches(t *testing.T) {
	store := &fakeStore{match: &Match{Answer: "yes", Score: 0.85}}
	svc := NewService(store, &fakeEmbedder{}, Config{})

	match, err := svc.Lookup(context.Background(), "question")
	require.NoError(t, err)
	require.NotNil(t, match)
	assert.Equal(t, "yes", match.Answer)
}

func TestLookupHotCacheSkipsSearch(t *testing.T) {
	store := &fakeStore{match: &Match{Answer: "cached answer", Score: 0.95}}
	embedder := &fakeEmbedder{}
	svc := NewService(store, embedder, Config{})

	first, err := svc.Lookup(context.Background(), "What are your opening hours?")
	require.NoError(t, err)
	require.NotNil(t, first)

	// Same question with different casing and punctuation normalizes
	// identically and must be served from the hot cache.
	match, err := svc.Lookup(context.Background(), "what are your OPENING hours???")
	require.NoError(t, err)
	require.NotNil(t, match)
	assert.Equal(t, "cached answer", match.Answer)
	assert.Equal(t, 1, store.searchCalls)
	assert.Len(t, embedder.calls, 1)
}

func TestLookupEmptyAfterNormalization(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(store, &fakeEmbedder{}, Config{})

	match, err := svc.Lookup(context.Background(), "the and or!!!")
	require.NoError(t, err)
	assert.Nil(t, match)
	assert.Equal(t, 0, store.searchCalls)
}

func TestRefreshIndexesAllEntries(t *testing.T) {
	store := &fakeStore{}
	embedder := &fakeEmbedder{}
	svc := NewService(store, embedder, Config{EmbedWorkers: 2})

	entries := []Entry{
		{Question: "How do I reset my password?", Answer: "Use the link."},
		{Question: "What are your opening hours?", Answer: "9 to 5."},
		{Question: "Where is the office?", Answer: "Downtown."},
	}
	require.NoError(t, svc.Refresh(context.Background(), entries))

	require.Len(t, store.replaced, 3)
	for i, indexed := range store.replaced {
		assert.Equal(t, entries[i].Question, indexed.Question)
		assert.Equal(t, entries[i].Answer, indexed.Answer)
		assert.NotEmpty(t, indexed.Vector)
		assert.NotContains(t, indexed.NormalizedQuestion, "?")
	}
	assert.Len(t, embedder.calls, 3)
}

func TestRefreshAbortsOnEmbeddingFailure(t *testing.T) {
	store := &fakeStore{}
	embedder := &fakeEmbedder{err: errors.New("model offline")}
	svc := NewService(store, embedder, Config{})

	err := svc.Refresh(context.Background(), []Entry{{Question: "q", Answer: "a"}})
	require.Error(t, err)
	assert.Nil(t, store.replaced)
}

func TestRefreshRejectsEmptySheet(t *testing.T) {
	svc := NewService(&fakeStore{}, &fakeEmbedder{}, Config{})
	assert.Error(t, svc.Refresh(context.Background(), nil))
}

func TestRefreshFlushesHotCache(t *testing.T) {
	store := &fakeStore{match: &Match{Answer: "old answer", Score: 0.9}}
	svc := NewService(store, &fakeEmbedder{}, Config{})

	first, err := svc.Lookup(context.Background(), "stale question")
	require.NoError(t, err)
	require.NotNil(t, first)

	require.NoError(t, svc.Refresh(context.Background(), []Entry{{Question: "q", Answer: "a"}}))

	store.match = &Match{Answer: "new answer", Score: 0.9}
	match, err := svc.Lookup(context.Background(), "stale question")
	require.NoError(t, err)
	require.NotNil(t, match)
	assert.Equal(t, "new answer", match.Answer)
}

func TestParseCSV(t *testing.T) {
	input := "question,answer\nHow do I log in?,Use your email.\nWhere is billing?,Under settings.\n"
	entries, err := ParseCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "How do I log in?", entries[0].Question)
	assert.Equal(t, "Under settings.", entries[1].Answer)
}

func TestParseCSVNoHeader(t *testing.T) {
	entries, err := ParseCSV(strings.NewReader("How do I log in?,Use your email.\n"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestParseCSVRejectsBlankCells(t *testing.T) {
	_, err := ParseCSV(strings.NewReader("question,answer\nHow do I log in?,\n"))
	assert.Error(t, err)
}

func TestParseCSVRejectsEmptySheet(t *testing.T) {
	_, err := ParseCSV(strings.NewReader("question,answer\n"))
	assert.Error(t, err)
}
