package rag

import (
	"context"
	"fmt"

	"ai-docchat-be/pkg/llm"
	"ai-docchat-be/pkg/rag/confidence"
	"ai-docchat-be/pkg/rag/prompt"
	"ai-docchat-be/pkg/store"
)

const DefaultAnswerText = "I don't know the answer to this question"

// Config carries every tunable of the answering engine explicitly. Zero
// values fall back to the documented defaults at construction.
type Config struct {
	TopK                 int
	ConfidenceThreshold  float64
	DefaultAnswer        string
	MaxHeaderBufferBytes int
}

// Engine is the retrieval-augmented answering engine: it embeds the query
// (via the injected vectorization strategy), retrieves grounding chunks,
// builds the grounded message list, streams the generation and gates the
// result on the confidence header parsed out of the stream.
type Engine struct {
	vectorizer QueryVectorizer
	retriever  Retriever
	generator  llm.LLMProvider
	cfg        Config
}

func NewEngine(vectorizer QueryVectorizer, retriever Retriever, generator llm.LLMProvider, cfg Config) *Engine {
	if cfg.TopK <= 0 {
		cfg.TopK = 5
	}
	if cfg.ConfidenceThreshold < 0 {
		cfg.ConfidenceThreshold = 0.7
	}
	if cfg.DefaultAnswer == "" {
		cfg.DefaultAnswer = DefaultAnswerText
	}
	return &Engine{
		vectorizer: vectorizer,
		retriever:  retriever,
		generator:  generator,
		cfg:        cfg,
	}
}

// GenerateAnswer produces the answer stream for a conversation. Failures
// before any token is generated (embedding, retrieval, stream start) are
// returned synchronously and no fragments are emitted. The returned channel
// is closed after the final fragment; a mid-stream backend failure is
// delivered as a fragment with Err set.
//
// No content ever reaches the channel before the confidence header is fully
// resolved. A resolved confidence below the threshold replaces the entire
// body with the default answer; a stream that ends without a parseable
// header falls back to the default answer at confidence zero.
func (e *Engine) GenerateAnswer(ctx context.Context, history []llm.Message) (<-chan store.AnswerFragment, error) {
	vector, err := e.vectorizer.Vectorize(ctx, history)
	if err != nil {
		return nil, err
	}

	chunks, err := e.retriever.Search(ctx, vector, e.cfg.TopK)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRetrieval, err)
	}

	messages := prompt.BuildMessageList(chunks, history)

	streamCtx, cancel := context.WithCancel(ctx)
	deltas, err := e.generator.ChatStream(streamCtx, messages)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("%w: %v", ErrGeneration, err)
	}

	out := make(chan store.AnswerFragment)

	go func() {
		defer close(out)
		defer cancel()

		parser := confidence.NewParser(e.cfg.MaxHeaderBufferBytes)
		parsed := false
		emitted := false
		var score float64

		for delta := range deltas {
			if delta.Err != nil {
				e.emit(ctx, out, store.AnswerFragment{Err: fmt.Errorf("%w: %v", ErrGeneration, delta.Err)})
				return
			}

			if parsed {
				if !e.emit(ctx, out, store.AnswerFragment{Text: delta.Content, IsFinal: delta.Done, Confidence: score, Source: store.SourceRAG}) {
					return
				}
				emitted = true
				continue
			}

			matched, s, remainder := parser.TryExtract(delta.Content)
			switch {
			case matched:
				parsed = true
				score = s

				// Below the threshold the canned answer replaces the whole
				// body; the rest of the backend stream is abandoned.
				if score < e.cfg.ConfidenceThreshold {
					e.emit(ctx, out, store.AnswerFragment{Text: e.cfg.DefaultAnswer, IsFinal: true, Confidence: score, Source: store.SourceRAG})
					return
				}

				if remainder != "" {
					if !e.emit(ctx, out, store.AnswerFragment{Text: remainder, IsFinal: delta.Done, Confidence: score, Source: store.SourceRAG}) {
						return
					}
					emitted = true
				}

			case parser.Failed():
				// Header will never match; stop buffering the stream.
				e.emit(ctx, out, store.AnswerFragment{Text: e.cfg.DefaultAnswer, IsFinal: true, Confidence: 0, Source: store.SourceRAG})
				return
			}

			if delta.Done && !parsed {
				e.emit(ctx, out, store.AnswerFragment{Text: e.cfg.DefaultAnswer, IsFinal: true, Confidence: 0, Source: store.SourceRAG})
				return
			}
		}

		// The stream completed without ever yielding a fragment (e.g. a
		// matched header with nothing after it). Guard so callers always
		// observe one final fragment.
		if !emitted {
			e.emit(ctx, out, store.AnswerFragment{Text: e.cfg.DefaultAnswer, IsFinal: true, Confidence: 0, Source: store.SourceRAG})
		}
	}()

	return out, nil
}

func (e *Engine) emit(ctx context.Context, out chan<- store.AnswerFragment, f store.AnswerFragment) bool {
	select {
	case out <- f:
		return true
	case <-ctx.Done():
		return false
	}
}
