package service

import (
	"bytes"
	"context"
	"fmt"

	"ai-docchat-be/internal/dto"
	"ai-docchat-be/internal/pkg/logger"
	"ai-docchat-be/internal/repository/unitofwork"
	"ai-docchat-be/pkg/qna"
	"ai-docchat-be/pkg/storage"
)

// QnASheetObjectKey is where the latest uploaded sheet lives in object
// storage. The index is a full refresh of this one sheet, so a single key
// is enough.
const QnASheetObjectKey = "qna/qna-sheet.csv"

type IQnAService interface {
	UploadSheet(ctx context.Context, content []byte) (*dto.UploadQnAResponse, error)
	Status(ctx context.Context) (*dto.QnAStatusResponse, error)
	Clear(ctx context.Context) error
}

type qnaService struct {
	uowFactory    unitofwork.RepositoryFactory
	qnaIndex      *qna.Service
	objectStorage storage.ObjectStorage
	log           logger.ILogger
}

func NewQnAService(
	uowFactory unitofwork.RepositoryFactory,
	qnaIndex *qna.Service,
	objectStorage storage.ObjectStorage,
	log logger.ILogger,
) IQnAService {
	return &qnaService{
		uowFactory:    uowFactory,
		qnaIndex:      qnaIndex,
		objectStorage: objectStorage,
		log:           log,
	}
}

func (s *qnaService) UploadSheet(ctx context.Context, content []byte) (*dto.UploadQnAResponse, error) {
	entries, err := qna.ParseCSV(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("parse qna sheet: %w", err)
	}

	if err := s.objectStorage.Upload(ctx, QnASheetObjectKey, "text/csv", bytes.NewReader(content), int64(len(content))); err != nil {
		return nil, fmt.Errorf("store qna sheet: %w", err)
	}

	if err := s.qnaIndex.Refresh(ctx, entries); err != nil {
		return nil, err
	}

	s.log.Info("qna", "qna sheet refreshed", map[string]interface{}{
		"entries": len(entries),
	})

	return &dto.UploadQnAResponse{EntryCount: len(entries)}, nil
}

func (s *qnaService) Status(ctx context.Context) (*dto.QnAStatusResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	count, err := uow.QnAEntryRepository().Count(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.QnAStatusResponse{EntryCount: count}, nil
}

func (s *qnaService) Clear(ctx context.Context) error {
	if err := s.qnaIndex.Clear(ctx); err != nil {
		return err
	}
	if err := s.objectStorage.Delete(ctx, QnASheetObjectKey); err != nil {
		s.log.Warn("qna", "failed to delete qna sheet blob", map[string]interface{}{
			"error": err.Error(),
		})
	}
	s.log.Info("qna", "qna index cleared", nil)
	return nil
}
