package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ai-docchat-be/internal/dto"
	"ai-docchat-be/internal/entity"
	"ai-docchat-be/internal/pkg/logger"
	"ai-docchat-be/internal/repository/specification"
	"ai-docchat-be/internal/repository/unitofwork"
	"ai-docchat-be/pkg/parser"
	"ai-docchat-be/pkg/storage"

	"github.com/google/uuid"
)

type IDocumentService interface {
	Upload(ctx context.Context, fileName, contentType string, content []byte) (*dto.UploadDocumentResponse, error)
	Show(ctx context.Context, id uuid.UUID) (*dto.DocumentResponse, error)
	List(ctx context.Context) ([]*dto.DocumentResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// Reprocess re-runs the ingestion pipeline for a document whose blob is
	// still in object storage, e.g. after a transient failure.
	Reprocess(ctx context.Context, id uuid.UUID) error
}

type documentService struct {
	uowFactory       unitofwork.RepositoryFactory
	objectStorage    storage.ObjectStorage
	parserRegistry   *parser.Registry
	publisherService IPublisherService
	log              logger.ILogger
}

func NewDocumentService(
	uowFactory unitofwork.RepositoryFactory,
	objectStorage storage.ObjectStorage,
	parserRegistry *parser.Registry,
	publisherService IPublisherService,
	log logger.ILogger,
) IDocumentService {
	return &documentService{
		uowFactory:       uowFactory,
		objectStorage:    objectStorage,
		parserRegistry:   parserRegistry,
		publisherService: publisherService,
		log:              log,
	}
}

func (s *documentService) Upload(ctx context.Context, fileName, contentType string, content []byte) (*dto.UploadDocumentResponse, error) {
	if !s.parserRegistry.SupportedExtension(fileName) {
		return nil, fmt.Errorf("unsupported document type: %s", fileName)
	}

	documentId := uuid.New()
	objectKey := fmt.Sprintf("documents/%s/%s", documentId, fileName)

	if err := s.objectStorage.Upload(ctx, objectKey, contentType, bytes.NewReader(content), int64(len(content))); err != nil {
		return nil, fmt.Errorf("store document blob: %w", err)
	}

	document := entity.Document{
		Id:          documentId,
		FileName:    fileName,
		ObjectKey:   objectKey,
		ContentType: contentType,
		SizeBytes:   int64(len(content)),
		Status:      entity.DocumentStatusUploaded,
		CreatedAt:   time.Now(),
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.DocumentRepository().Create(ctx, &document); err != nil {
		// Metadata row failed; remove the orphaned blob.
		if delErr := s.objectStorage.Delete(ctx, objectKey); delErr != nil {
			s.log.Warn("document", "failed to remove orphaned blob", map[string]interface{}{
				"object_key": objectKey,
				"error":      delErr.Error(),
			})
		}
		return nil, err
	}

	if err := s.publishIngest(ctx, documentId); err != nil {
		return nil, err
	}

	s.log.Info("document", "document uploaded", map[string]interface{}{
		"document_id": documentId,
		"file_name":   fileName,
		"size_bytes":  len(content),
	})

	return &dto.UploadDocumentResponse{
		Id:       document.Id,
		FileName: document.FileName,
		Status:   document.Status,
	}, nil
}

func (s *documentService) Show(ctx context.Context, id uuid.UUID) (*dto.DocumentResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	document, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if document == nil {
		return nil, nil
	}
	return toDocumentResponse(document), nil
}

func (s *documentService) List(ctx context.Context) ([]*dto.DocumentResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	documents, err := uow.DocumentRepository().FindAll(ctx,
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}
	res := make([]*dto.DocumentResponse, len(documents))
	for i, document := range documents {
		res[i] = toDocumentResponse(document)
	}
	return res, nil
}

func (s *documentService) Delete(ctx context.Context, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	document, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return err
	}
	if document == nil {
		return nil
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.DocumentChunkRepository().DeleteByDocumentId(ctx, id); err != nil {
		return err
	}
	if err := uow.DocumentRepository().Delete(ctx, id); err != nil {
		return err
	}
	if err := uow.Commit(); err != nil {
		return err
	}

	// Blob removal after commit: a leftover blob is recoverable garbage, a
	// missing blob with live chunks is not.
	if err := s.objectStorage.Delete(ctx, document.ObjectKey); err != nil {
		s.log.Warn("document", "failed to delete blob", map[string]interface{}{
			"document_id": id,
			"object_key":  document.ObjectKey,
			"error":       err.Error(),
		})
	}

	s.log.Info("document", "document deleted", map[string]interface{}{
		"document_id": id,
	})
	return nil
}

func (s *documentService) Reprocess(ctx context.Context, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	document, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return err
	}
	if document == nil {
		return fmt.Errorf("document %s not found", id)
	}
	if err := uow.DocumentRepository().UpdateStatus(ctx, id, entity.DocumentStatusUploaded, ""); err != nil {
		return err
	}
	return s.publishIngest(ctx, id)
}

func (s *documentService) publishIngest(ctx context.Context, documentId uuid.UUID) error {
	payload, err := json.Marshal(dto.PublishIngestDocumentMessage{DocumentId: documentId})
	if err != nil {
		return err
	}
	return s.publisherService.Publish(ctx, payload)
}

func toDocumentResponse(document *entity.Document) *dto.DocumentResponse {
	return &dto.DocumentResponse{
		Id:            document.Id,
		FileName:      document.FileName,
		ContentType:   document.ContentType,
		SizeBytes:     document.SizeBytes,
		Status:        document.Status,
		FailureReason: document.FailureReason,
		ChunkCount:    document.ChunkCount,
		Metadata:      document.Metadata,
		CreatedAt:     document.CreatedAt,
		UpdatedAt:     document.UpdatedAt,
	}
}
