package unitofwork

import (
	"context"

	"ai-docchat-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	DocumentRepository() contract.DocumentRepository
	DocumentChunkRepository() contract.DocumentChunkRepository
	ChatLogRepository() contract.ChatLogRepository
	QnAEntryRepository() contract.QnAEntryRepository
}
