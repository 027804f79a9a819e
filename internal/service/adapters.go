package service

import (
	"context"
	"time"

	"ai-docchat-be/internal/entity"
	"ai-docchat-be/internal/repository/unitofwork"
	"ai-docchat-be/pkg/chatbot"
	"ai-docchat-be/pkg/qna"
	"ai-docchat-be/pkg/rag"
	"ai-docchat-be/pkg/store"

	"github.com/google/uuid"
)

// Adapters binding the pkg-level pipeline interfaces to the gorm
// repositories. Each one is a thin translation layer; the repositories own
// the SQL.

type chunkRetriever struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewChunkRetriever(uowFactory unitofwork.RepositoryFactory) rag.Retriever {
	return &chunkRetriever{uowFactory: uowFactory}
}

func (r *chunkRetriever) Search(ctx context.Context, vector []float32, topK int) ([]store.RetrievedChunk, error) {
	uow := r.uowFactory.NewUnitOfWork(ctx)
	scored, err := uow.DocumentChunkRepository().SearchSimilarWithScore(ctx, vector, topK)
	if err != nil {
		return nil, err
	}
	chunks := make([]store.RetrievedChunk, len(scored))
	for i, s := range scored {
		chunks[i] = store.RetrievedChunk{
			ChunkId:        s.Chunk.Id.String(),
			DocumentId:     s.Chunk.DocumentId.String(),
			Content:        s.Chunk.Content,
			SourceFileName: s.SourceFileName,
			Score:          s.Similarity,
		}
	}
	return chunks, nil
}

type qnaEntryStore struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewQnAEntryStore(uowFactory unitofwork.RepositoryFactory) qna.Store {
	return &qnaEntryStore{uowFactory: uowFactory}
}

func (s *qnaEntryStore) SearchBest(ctx context.Context, vector []float32) (*qna.Match, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	scored, err := uow.QnAEntryRepository().SearchSimilar(ctx, vector, 1)
	if err != nil {
		return nil, err
	}
	if len(scored) == 0 {
		return nil, nil
	}
	best := scored[0]
	return &qna.Match{
		Question: best.Entry.Question,
		Answer:   best.Entry.Answer,
		Score:    best.Similarity,
	}, nil
}

func (s *qnaEntryStore) ReplaceAll(ctx context.Context, entries []*qna.IndexedEntry) error {
	rows := make([]*entity.QnAEntry, len(entries))
	for i, e := range entries {
		rows[i] = &entity.QnAEntry{
			Id:                 uuid.New(),
			Question:           e.Question,
			NormalizedQuestion: e.NormalizedQuestion,
			Answer:             e.Answer,
			Embedding:          e.Vector,
			CreatedAt:          time.Now(),
		}
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.QnAEntryRepository().DeleteAll(ctx); err != nil {
		return err
	}
	if err := uow.QnAEntryRepository().CreateBulk(ctx, rows); err != nil {
		return err
	}
	return uow.Commit()
}

type chatLogStore struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewChatLogStore(uowFactory unitofwork.RepositoryFactory) chatbot.ChatLogStore {
	return &chatLogStore{uowFactory: uowFactory}
}

func (s *chatLogStore) History(ctx context.Context, sessionId string) ([]*chatbot.Exchange, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	logs, err := uow.ChatLogRepository().QueryBySession(ctx, sessionId)
	if err != nil {
		return nil, err
	}
	exchanges := make([]*chatbot.Exchange, len(logs))
	for i, l := range logs {
		exchanges[i] = &chatbot.Exchange{
			SessionId:        l.SessionId,
			MessageId:        l.MessageId.String(),
			Question:         l.Question,
			Answer:           l.Answer,
			ConfidenceScore:  l.ConfidenceScore,
			Source:           l.Source,
			RequestTimestamp: l.RequestTimestamp,
		}
	}
	return exchanges, nil
}

func (s *chatLogStore) Exists(ctx context.Context, messageId string) (bool, error) {
	id, err := uuid.Parse(messageId)
	if err != nil {
		return false, nil
	}
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.ChatLogRepository().ExistsByMessageId(ctx, id)
}

func (s *chatLogStore) Record(ctx context.Context, exchange *chatbot.Exchange) error {
	messageId, err := uuid.Parse(exchange.MessageId)
	if err != nil {
		messageId = uuid.New()
	}
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.ChatLogRepository().Create(ctx, &entity.ChatLog{
		Id:               uuid.New(),
		SessionId:        exchange.SessionId,
		MessageId:        messageId,
		Question:         exchange.Question,
		Answer:           exchange.Answer,
		ConfidenceScore:  exchange.ConfidenceScore,
		Source:           exchange.Source,
		RequestTimestamp: exchange.RequestTimestamp,
		CreatedAt:        time.Now(),
	})
}
