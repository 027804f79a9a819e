package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"ai-docchat-be/internal/dto"
	"ai-docchat-be/internal/entity"
	"ai-docchat-be/internal/repository/specification"
	"ai-docchat-be/internal/repository/unitofwork"
	"ai-docchat-be/pkg/embedding"
	"ai-docchat-be/pkg/parser"
	"ai-docchat-be/pkg/storage"
	"ai-docchat-be/pkg/utils"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

type IIngestionService interface {
	Consume(ctx context.Context) error
}

type ingestionService struct {
	pubSub            *gochannel.GoChannel
	topicName         string
	uowFactory        unitofwork.RepositoryFactory
	objectStorage     storage.ObjectStorage
	parserRegistry    *parser.Registry
	embeddingProvider embedding.EmbeddingProvider
	chunkSize         int
	chunkOverlap      int
}

func NewIngestionService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	objectStorage storage.ObjectStorage,
	parserRegistry *parser.Registry,
	embeddingProvider embedding.EmbeddingProvider,
	chunkSize int,
	chunkOverlap int,
) IIngestionService {
	return &ingestionService{
		pubSub:            pubSub,
		topicName:         topicName,
		uowFactory:        uowFactory,
		objectStorage:     objectStorage,
		parserRegistry:    parserRegistry,
		embeddingProvider: embeddingProvider,
		chunkSize:         chunkSize,
		chunkOverlap:      chunkOverlap,
	}
}

func (s *ingestionService) Consume(ctx context.Context) error {
	messages, err := s.pubSub.Subscribe(ctx, s.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			s.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (s *ingestionService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PublishIngestDocumentMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		log.Printf("[ERROR] Failed to unmarshal ingest message: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	log.Printf("[INFO] Ingesting document %s", payload.DocumentId)

	uow := s.uowFactory.NewUnitOfWork(ctx)

	document, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: payload.DocumentId})
	if err != nil {
		log.Printf("[ERROR] Failed to load document %s: %v", payload.DocumentId, err)
		msg.Nack()
		return
	}
	if document == nil {
		log.Printf("[ERROR] Document not found: %s", payload.DocumentId)
		msg.Ack() // Deleted before ingestion ran? Ack.
		return
	}

	if err := s.ingest(ctx, uow, document); err != nil {
		log.Printf("[ERROR] Ingestion failed for document %s: %v", document.Id, err)
		if statusErr := uow.DocumentRepository().UpdateStatus(ctx, document.Id, entity.DocumentStatusFailed, err.Error()); statusErr != nil {
			log.Printf("[ERROR] Failed to mark document %s failed: %v", document.Id, statusErr)
		}
		// The document is parked at FAILED; redelivery would fail the same
		// way, so ack and leave recovery to the reprocess endpoint.
		msg.Ack()
		return
	}

	msg.Ack()
}

func (s *ingestionService) ingest(ctx context.Context, uow unitofwork.UnitOfWork, document *entity.Document) error {
	docs := uow.DocumentRepository()

	// 1. Parse
	fileParser, err := s.parserRegistry.For(document.FileName)
	if err != nil {
		return err
	}

	blob, err := s.objectStorage.Download(ctx, document.ObjectKey)
	if err != nil {
		return fmt.Errorf("download blob: %w", err)
	}
	defer blob.Close()

	text, err := fileParser.Extract(blob)
	if err != nil {
		return fmt.Errorf("extract text: %w", err)
	}
	if text == "" {
		return fmt.Errorf("document has no extractable text")
	}
	if err := docs.UpdateStatus(ctx, document.Id, entity.DocumentStatusParsed, ""); err != nil {
		return err
	}

	// 2. Chunk
	chunks := utils.SplitText(text, s.chunkSize, s.chunkOverlap)
	log.Printf("[INFO] Document %s split into %d chunks", document.Id, len(chunks))
	if err := docs.UpdateStatus(ctx, document.Id, entity.DocumentStatusChunked, ""); err != nil {
		return err
	}

	// 3. Embed
	newChunks := make([]*entity.DocumentChunk, 0, len(chunks))
	for i, chunk := range chunks {
		res, err := s.embeddingProvider.Generate(chunk, embedding.TaskRetrievalDocument)
		if err != nil {
			return fmt.Errorf("embed chunk %d: %w", i, err)
		}
		newChunks = append(newChunks, &entity.DocumentChunk{
			Id:         uuid.New(),
			DocumentId: document.Id,
			Content:    chunk,
			ChunkIndex: i,
			Embedding:  res.Embedding.Values,
			CreatedAt:  time.Now(),
		})
	}
	if err := docs.UpdateStatus(ctx, document.Id, entity.DocumentStatusEmbedded, ""); err != nil {
		return err
	}

	// 4. Index: replace any chunks from a previous run atomically.
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.DocumentChunkRepository().DeleteByDocumentId(ctx, document.Id); err != nil {
		return fmt.Errorf("delete stale chunks: %w", err)
	}
	if err := uow.DocumentChunkRepository().CreateBulk(ctx, newChunks); err != nil {
		return fmt.Errorf("index chunks: %w", err)
	}

	document.Status = entity.DocumentStatusIndexed
	document.FailureReason = ""
	document.ChunkCount = len(newChunks)
	document.Metadata = map[string]interface{}{
		"text_length": len(text),
		"indexed_at":  time.Now().UTC().Format(time.RFC3339),
	}
	if err := uow.DocumentRepository().Update(ctx, document); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return err
	}

	log.Printf("[INFO] Document %s indexed (%d chunks)", document.Id, len(newChunks))
	return nil
}
