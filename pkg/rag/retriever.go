package rag

import (
	"context"

	"ai-docchat-be/pkg/store"
)

// Retriever returns the topK most similar chunks for a query vector, ordered
// by descending score. Implementations do not retry; retry policy belongs to
// the caller's relay layer.
type Retriever interface {
	Search(ctx context.Context, vector []float32, topK int) ([]store.RetrievedChunk, error)
}
