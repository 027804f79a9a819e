package mapper

import (
	"ai-docchat-be/internal/entity"
	"ai-docchat-be/internal/model"
)

type ChatLogMapper struct{}

func NewChatLogMapper() *ChatLogMapper {
	return &ChatLogMapper{}
}

func (m *ChatLogMapper) ToEntity(e *model.ChatLog) *entity.ChatLog {
	if e == nil {
		return nil
	}
	return &entity.ChatLog{
		Id:               e.Id,
		SessionId:        e.SessionId,
		MessageId:        e.MessageId,
		Question:         e.Question,
		Answer:           e.Answer,
		ConfidenceScore:  e.ConfidenceScore,
		Source:           e.Source,
		RequestTimestamp: e.RequestTimestamp,
		CreatedAt:        e.CreatedAt,
	}
}

func (m *ChatLogMapper) ToModel(e *entity.ChatLog) *model.ChatLog {
	if e == nil {
		return nil
	}
	return &model.ChatLog{
		Id:               e.Id,
		SessionId:        e.SessionId,
		MessageId:        e.MessageId,
		Question:         e.Question,
		Answer:           e.Answer,
		ConfidenceScore:  e.ConfidenceScore,
		Source:           e.Source,
		RequestTimestamp: e.RequestTimestamp,
		CreatedAt:        e.CreatedAt,
	}
}

func (m *ChatLogMapper) ToEntities(logs []*model.ChatLog) []*entity.ChatLog {
	entities := make([]*entity.ChatLog, len(logs))
	for i, e := range logs {
		entities[i] = m.ToEntity(e)
	}
	return entities
}
