package contract

import (
	"context"

	"ai-docchat-be/internal/entity"
	"ai-docchat-be/internal/repository/specification"

	"github.com/google/uuid"
)

type ChatLogRepository interface {
	Create(ctx context.Context, log *entity.ChatLog) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatLog, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatLog, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// QueryBySession returns a session's exchanges ordered by request time,
	// oldest first.
	QueryBySession(ctx context.Context, sessionId string) ([]*entity.ChatLog, error)
	// ExistsByMessageId reports whether an exchange with the given message
	// id was already recorded. Used to keep redelivered work idempotent.
	ExistsByMessageId(ctx context.Context, messageId uuid.UUID) (bool, error)
}
