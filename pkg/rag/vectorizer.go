package rag

import (
	"context"
	"fmt"

	"ai-docchat-be/pkg/embedding"
	"ai-docchat-be/pkg/llm"
	"ai-docchat-be/pkg/rag/prompt"
)

// QueryVectorizer turns a conversation into a query vector for retrieval.
// Two strategies exist: direct embedding of the latest message, and
// hypothetical-document embedding (HyDE) which spends one extra generation
// round-trip for better recall on terse queries.
type QueryVectorizer interface {
	Vectorize(ctx context.Context, history []llm.Message) ([]float32, error)
}

// DirectVectorizer embeds the last message of the conversation verbatim.
type DirectVectorizer struct {
	embedder embedding.EmbeddingProvider
}

func NewDirectVectorizer(embedder embedding.EmbeddingProvider) *DirectVectorizer {
	return &DirectVectorizer{embedder: embedder}
}

func (v *DirectVectorizer) Vectorize(ctx context.Context, history []llm.Message) ([]float32, error) {
	if len(history) == 0 {
		return nil, fmt.Errorf("%w: empty conversation", ErrEmbedding)
	}

	res, err := v.embedder.Generate(history[len(history)-1].Content, embedding.TaskRetrievalQuery)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbedding, err)
	}
	return res.Embedding.Values, nil
}

// HyDEVectorizer asks the generative backend for a hypothetical answer
// document first and embeds that instead of the raw query.
type HyDEVectorizer struct {
	generator llm.LLMProvider
	embedder  embedding.EmbeddingProvider
}

func NewHyDEVectorizer(generator llm.LLMProvider, embedder embedding.EmbeddingProvider) *HyDEVectorizer {
	return &HyDEVectorizer{generator: generator, embedder: embedder}
}

func (v *HyDEVectorizer) Vectorize(ctx context.Context, history []llm.Message) ([]float32, error) {
	chat := make([]llm.Message, 0, len(history)+1)
	chat = append(chat, llm.Message{Role: llm.RoleSystem, Content: prompt.HyDEInstruction})
	chat = append(chat, history...)

	hypothetical, err := v.generator.Chat(ctx, chat)
	if err != nil {
		return nil, fmt.Errorf("%w: hypothetical document: %v", ErrGeneration, err)
	}

	res, err := v.embedder.Generate(hypothetical, embedding.TaskRetrievalQuery)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbedding, err)
	}
	return res.Embedding.Values, nil
}
