package rag

import "errors"

// Per-request failure classes. Callers match with errors.Is; each occurrence
// wraps the underlying backend error for context.
var (
	// ErrEmbedding marks a failure of the embedding backend.
	ErrEmbedding = errors.New("embedding backend failure")

	// ErrRetrieval marks a failure of the vector search backend.
	ErrRetrieval = errors.New("retrieval failure")

	// ErrGeneration marks a failure of the generative backend.
	ErrGeneration = errors.New("generation backend failure")
)
