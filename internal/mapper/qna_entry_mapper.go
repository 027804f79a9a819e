package mapper

import (
	"ai-docchat-be/internal/entity"
	"ai-docchat-be/internal/model"

	"github.com/pgvector/pgvector-go"
)

type QnAEntryMapper struct{}

func NewQnAEntryMapper() *QnAEntryMapper {
	return &QnAEntryMapper{}
}

func (m *QnAEntryMapper) ToEntity(e *model.QnAEntry) *entity.QnAEntry {
	if e == nil {
		return nil
	}
	return &entity.QnAEntry{
		Id:                 e.Id,
		Question:           e.Question,
		NormalizedQuestion: e.NormalizedQuestion,
		Answer:             e.Answer,
		Embedding:          e.Embedding.Slice(),
		CreatedAt:          e.CreatedAt,
	}
}

func (m *QnAEntryMapper) ToModel(e *entity.QnAEntry) *model.QnAEntry {
	if e == nil {
		return nil
	}
	return &model.QnAEntry{
		Id:                 e.Id,
		Question:           e.Question,
		NormalizedQuestion: e.NormalizedQuestion,
		Answer:             e.Answer,
		Embedding:          pgvector.NewVector(e.Embedding),
		CreatedAt:          e.CreatedAt,
	}
}

func (m *QnAEntryMapper) ToModels(entries []*entity.QnAEntry) []*model.QnAEntry {
	models := make([]*model.QnAEntry, len(entries))
	for i, e := range entries {
		models[i] = m.ToModel(e)
	}
	return models
}
