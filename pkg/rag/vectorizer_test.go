package rag

import (
	"context"
	"errors"
	"strings"
	"testing"

	"ai-docchat-be/pkg/embedding"
	"ai-docchat-be/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEmbedder struct {
	gotText     string
	gotTaskType string
	err         error
}

func (f *fakeEmbedder) Generate(text string, taskType string) (*embedding.EmbeddingResponse, error) {
	f.gotText = text
	f.gotTaskType = taskType
	if f.err != nil {
		return nil, f.err
	}
	return &embedding.EmbeddingResponse{
		Embedding: embedding.EmbeddingResponseEmbedding{Values: []float32{0.5, 0.5}},
	}, nil
}

type fakeHyDEGenerator struct {
	fakeGenerator
	response string
	gotChat  []llm.Message
}

func (f *fakeHyDEGenerator) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	f.gotChat = history
	return f.response, nil
}

func TestDirectVectorizerEmbedsLastMessage(t *testing.T) {
	embedder := &fakeEmbedder{}
	v := NewDirectVectorizer(embedder)

	vec, err := v.Vectorize(context.Background(), []llm.Message{
		{Role: llm.RoleUser, Content: "earlier question"},
		{Role: llm.RoleAssistant, Content: "earlier answer"},
		{Role: llm.RoleUser, Content: "current question"},
	})
	require.NoError(t, err)
	assert.Equal(t, []float32{0.5, 0.5}, vec)
	assert.Equal(t, "current question", embedder.gotText)
	assert.Equal(t, embedding.TaskRetrievalQuery, embedder.gotTaskType)
}

func TestDirectVectorizerEmptyHistory(t *testing.T) {
	v := NewDirectVectorizer(&fakeEmbedder{})
	_, err := v.Vectorize(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEmbedding))
}

func TestDirectVectorizerBackendFailure(t *testing.T) {
	v := NewDirectVectorizer(&fakeEmbedder{err: errors.New("refused")})
	_, err := v.Vectorize(context.Background(), []llm.Message{{Role: llm.RoleUser, Content: "q"}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEmbedding))
}

func TestHyDEVectorizerEmbedsHypotheticalDocument(t *testing.T) {
	embedder := &fakeEmbedder{}
	gen := &fakeHyDEGenerator{response: "a detailed hypothetical document"}
	v := NewHyDEVectorizer(gen, embedder)

	_, err := v.Vectorize(context.Background(), []llm.Message{{Role: llm.RoleUser, Content: "terse query"}})
	require.NoError(t, err)

	// The embedded text is the generated document, not the raw query
	assert.Equal(t, "a detailed hypothetical document", embedder.gotText)

	// The HyDE instruction is prepended as a system message
	require.NotEmpty(t, gen.gotChat)
	assert.Equal(t, llm.RoleSystem, gen.gotChat[0].Role)
	assert.True(t, strings.Contains(gen.gotChat[0].Content, "retrieval optimization agent"))
	assert.Equal(t, "terse query", gen.gotChat[len(gen.gotChat)-1].Content)
}
