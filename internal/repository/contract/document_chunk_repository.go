package contract

import (
	"context"

	"ai-docchat-be/internal/entity"
	"ai-docchat-be/internal/repository/specification"

	"github.com/google/uuid"
)

// ScoredDocumentChunk wraps DocumentChunk with its similarity score and the
// file name of the document it was cut from.
type ScoredDocumentChunk struct {
	Chunk          *entity.DocumentChunk
	SourceFileName string
	Similarity     float64 // 0.0 to 1.0 (1.0 = identical)
}

type DocumentChunkRepository interface {
	Create(ctx context.Context, chunk *entity.DocumentChunk) error
	CreateBulk(ctx context.Context, chunks []*entity.DocumentChunk) error
	DeleteByDocumentId(ctx context.Context, documentId uuid.UUID) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.DocumentChunk, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// SearchSimilarWithScore returns the chunks nearest to the query vector
	// by cosine similarity, best first, joined to their source documents.
	SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int) ([]*ScoredDocumentChunk, error)
}
