package rag

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"ai-docchat-be/pkg/llm"
	"ai-docchat-be/pkg/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeVectorizer struct {
	vector []float32
	err    error
}

func (f *fakeVectorizer) Vectorize(ctx context.Context, history []llm.Message) ([]float32, error) {
	return f.vector, f.err
}

type fakeRetriever struct {
	chunks   []store.RetrievedChunk
	err      error
	gotTopK  int
	gotquery []float32
}

func (f *fakeRetriever) Search(ctx context.Context, vector []float32, topK int) ([]store.RetrievedChunk, error) {
	f.gotTopK = topK
	f.gotquery = vector
	return f.chunks, f.err
}

// fakeGenerator replays a scripted token stream. The last scripted delta
// carries Done=true unless an error is injected.
type fakeGenerator struct {
	fragments   []string
	streamErr   error
	gotMessages []llm.Message
}

func (f *fakeGenerator) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	return "", errors.New("not used")
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return "", errors.New("not used")
}

func (f *fakeGenerator) ChatStream(ctx context.Context, history []llm.Message, opts ...llm.Option) (<-chan llm.StreamDelta, error) {
	f.gotMessages = history
	out := make(chan llm.StreamDelta)
	go func() {
		defer close(out)
		for i, frag := range f.fragments {
			d := llm.StreamDelta{Content: frag, Done: i == len(f.fragments)-1 && f.streamErr == nil}
			select {
			case out <- d:
			case <-ctx.Done():
				return
			}
		}
		if f.streamErr != nil {
			select {
			case out <- llm.StreamDelta{Err: f.streamErr}:
			case <-ctx.Done():
			}
		}
	}()
	return out, nil
}

func collect(t *testing.T, fragments <-chan store.AnswerFragment) []store.AnswerFragment {
	t.Helper()
	var got []store.AnswerFragment
	for f := range fragments {
		got = append(got, f)
	}
	return got
}

func newTestEngine(gen *fakeGenerator, ret *fakeRetriever, cfg Config) *Engine {
	return NewEngine(&fakeVectorizer{vector: []float32{0.1, 0.2}}, ret, gen, cfg)
}

func TestGenerateAnswerEndToEnd(t *testing.T) {
	gen := &fakeGenerator{fragments: []string{
		"[Confidence: 0.",
		"88]Refunds are",
		" processed within 30 days [1].",
		" Sources: [1]policy.pdf",
	}}
	ret := &fakeRetriever{chunks: []store.RetrievedChunk{
		{SourceFileName: "policy.pdf", Content: "refund terms", Score: 0.91},
		{SourceFileName: "policy.pdf", Content: "refund window", Score: 0.85},
		{SourceFileName: "faq.pdf", Content: "faq entry", Score: 0.60},
	}}
	engine := newTestEngine(gen, ret, Config{ConfidenceThreshold: 0.7})

	fragments, err := engine.GenerateAnswer(context.Background(), []llm.Message{{Role: llm.RoleUser, Content: "What is the refund policy?"}})
	require.NoError(t, err)

	got := collect(t, fragments)
	require.Len(t, got, 3)

	assert.Equal(t, "Refunds are", got[0].Text)
	assert.False(t, got[0].IsFinal)
	assert.Equal(t, " processed within 30 days [1].", got[1].Text)
	assert.Equal(t, " Sources: [1]policy.pdf", got[2].Text)
	assert.True(t, got[2].IsFinal)

	for _, f := range got {
		assert.NoError(t, f.Err)
		assert.Equal(t, 0.88, f.Confidence)
	}

	// Header content must never reach the caller
	for _, f := range got {
		assert.NotContains(t, f.Text, "Confidence")
	}

	assert.Equal(t, 5, ret.gotTopK, "default topK")

	// Grounded system prompt first, repeated instruction last
	require.NotEmpty(t, gen.gotMessages)
	assert.Equal(t, llm.RoleSystem, gen.gotMessages[0].Role)
	assert.Contains(t, gen.gotMessages[0].Content, "policy.pdf")
	assert.Equal(t, llm.RoleSystem, gen.gotMessages[len(gen.gotMessages)-1].Role)
}

func TestConfidenceGate(t *testing.T) {
	tests := []struct {
		name        string
		header      string
		wantDefault bool
		wantScore   float64
	}{
		{"exactly at threshold passes", "[Confidence: 0.70]Answer body", false, 0.70},
		{"just below threshold substitutes default", "[Confidence: 0.69]Answer body", true, 0.69},
		{"zero confidence substitutes default", "[Confidence: 0.00]No response.", true, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &fakeGenerator{fragments: []string{tt.header}}
			engine := newTestEngine(gen, &fakeRetriever{}, Config{ConfidenceThreshold: 0.7, DefaultAnswer: "dunno"})

			fragments, err := engine.GenerateAnswer(context.Background(), []llm.Message{{Role: llm.RoleUser, Content: "q"}})
			require.NoError(t, err)
			got := collect(t, fragments)

			require.Len(t, got, 1)
			require.True(t, got[0].IsFinal)
			assert.Equal(t, tt.wantScore, got[0].Confidence)
			if tt.wantDefault {
				assert.Equal(t, "dunno", got[0].Text)
			} else {
				assert.Equal(t, "Answer body", got[0].Text)
			}
		})
	}
}

func TestStreamEndsWithoutHeader(t *testing.T) {
	gen := &fakeGenerator{fragments: []string{"No header", " at all"}}
	engine := newTestEngine(gen, &fakeRetriever{}, Config{DefaultAnswer: "dunno"})

	fragments, err := engine.GenerateAnswer(context.Background(), []llm.Message{{Role: llm.RoleUser, Content: "q"}})
	require.NoError(t, err)
	got := collect(t, fragments)

	require.Len(t, got, 1)
	assert.Equal(t, "dunno", got[0].Text)
	assert.True(t, got[0].IsFinal)
	assert.Equal(t, 0.0, got[0].Confidence)
}

func TestNonConformingStreamHitsBufferCap(t *testing.T) {
	var junk []string
	for i := 0; i < 50; i++ {
		junk = append(junk, strings.Repeat("x", 100))
	}
	gen := &fakeGenerator{fragments: junk}
	engine := newTestEngine(gen, &fakeRetriever{}, Config{DefaultAnswer: "dunno", MaxHeaderBufferBytes: 512})

	fragments, err := engine.GenerateAnswer(context.Background(), []llm.Message{{Role: llm.RoleUser, Content: "q"}})
	require.NoError(t, err)
	got := collect(t, fragments)

	require.Len(t, got, 1)
	assert.Equal(t, "dunno", got[0].Text)
	assert.True(t, got[0].IsFinal)
	assert.Equal(t, 0.0, got[0].Confidence)
}

func TestRetrievalErrorPropagates(t *testing.T) {
	gen := &fakeGenerator{}
	ret := &fakeRetriever{err: errors.New("collection missing")}
	engine := newTestEngine(gen, ret, Config{})

	fragments, err := engine.GenerateAnswer(context.Background(), []llm.Message{{Role: llm.RoleUser, Content: "q"}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRetrieval))
	assert.Nil(t, fragments)
}

func TestEmbeddingErrorPropagates(t *testing.T) {
	engine := NewEngine(
		&fakeVectorizer{err: fmt.Errorf("%w: connection refused", ErrEmbedding)},
		&fakeRetriever{},
		&fakeGenerator{},
		Config{},
	)

	fragments, err := engine.GenerateAnswer(context.Background(), []llm.Message{{Role: llm.RoleUser, Content: "q"}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEmbedding))
	assert.Nil(t, fragments)
}

// A threshold configured to exactly zero means "never gate" and must not be
// bumped to the default at construction.
func TestZeroThresholdIsHonored(t *testing.T) {
	gen := &fakeGenerator{fragments: []string{"[Confidence: 0.10]", "Low but allowed."}}
	engine := newTestEngine(gen, &fakeRetriever{}, Config{ConfidenceThreshold: 0})

	fragments, err := engine.GenerateAnswer(context.Background(), []llm.Message{{Role: llm.RoleUser, Content: "q"}})
	require.NoError(t, err)
	got := collect(t, fragments)

	require.Len(t, got, 1)
	assert.Equal(t, "Low but allowed.", got[0].Text)
	assert.NotEqual(t, DefaultAnswerText, got[0].Text)
	assert.InDelta(t, 0.10, got[0].Confidence, 1e-9)
	assert.True(t, got[0].IsFinal)
}

func TestMidStreamBackendFailure(t *testing.T) {
	gen := &fakeGenerator{
		fragments: []string{"[Confidence: 0.90]Partial answer"},
		streamErr: errors.New("connection reset"),
	}
	engine := newTestEngine(gen, &fakeRetriever{}, Config{})

	fragments, err := engine.GenerateAnswer(context.Background(), []llm.Message{{Role: llm.RoleUser, Content: "q"}})
	require.NoError(t, err)
	got := collect(t, fragments)

	require.NotEmpty(t, got)
	last := got[len(got)-1]
	require.Error(t, last.Err)
	assert.True(t, errors.Is(last.Err, ErrGeneration))
}
