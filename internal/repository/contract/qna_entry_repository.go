package contract

import (
	"context"

	"ai-docchat-be/internal/entity"
	"ai-docchat-be/internal/repository/specification"
)

// ScoredQnAEntry wraps QnAEntry with its similarity score.
type ScoredQnAEntry struct {
	Entry      *entity.QnAEntry
	Similarity float64
}

type QnAEntryRepository interface {
	CreateBulk(ctx context.Context, entries []*entity.QnAEntry) error
	DeleteAll(ctx context.Context) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.QnAEntry, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// SearchSimilar returns the stored entries nearest to the query vector,
	// best first.
	SearchSimilar(ctx context.Context, embedding []float32, limit int) ([]*ScoredQnAEntry, error)
}
