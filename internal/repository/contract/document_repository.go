package contract

import (
	"context"

	"ai-docchat-be/internal/entity"
	"ai-docchat-be/internal/repository/specification"

	"github.com/google/uuid"
)

type DocumentRepository interface {
	Create(ctx context.Context, document *entity.Document) error
	Update(ctx context.Context, document *entity.Document) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Document, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Document, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// UpdateStatus transitions a document's ingestion status. failureReason
	// is only stored for the FAILED status.
	UpdateStatus(ctx context.Context, id uuid.UUID, status string, failureReason string) error
}
