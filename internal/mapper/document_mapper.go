package mapper

import (
	"encoding/json"
	"time"

	"ai-docchat-be/internal/entity"
	"ai-docchat-be/internal/model"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type DocumentMapper struct{}

func NewDocumentMapper() *DocumentMapper {
	return &DocumentMapper{}
}

func (m *DocumentMapper) ToEntity(e *model.Document) *entity.Document {
	if e == nil {
		return nil
	}

	var deletedAt *time.Time
	if e.DeletedAt.Valid {
		t := e.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !e.UpdatedAt.IsZero() {
		t := e.UpdatedAt
		updatedAt = &t
	}

	var metadata map[string]interface{}
	if len(e.Metadata) > 0 {
		// Malformed metadata is dropped rather than failing the read.
		_ = json.Unmarshal(e.Metadata, &metadata)
	}

	return &entity.Document{
		Id:            e.Id,
		FileName:      e.FileName,
		ObjectKey:     e.ObjectKey,
		ContentType:   e.ContentType,
		SizeBytes:     e.SizeBytes,
		Status:        e.Status,
		FailureReason: e.FailureReason,
		ChunkCount:    e.ChunkCount,
		Metadata:      metadata,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     updatedAt,
		DeletedAt:     deletedAt,
		IsDeleted:     e.DeletedAt.Valid,
	}
}

func (m *DocumentMapper) ToModel(e *entity.Document) *model.Document {
	if e == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if e.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *e.DeletedAt, Valid: true}
	} else if e.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if e.UpdatedAt != nil {
		updatedAt = *e.UpdatedAt
	}

	var metadata datatypes.JSON
	if e.Metadata != nil {
		if raw, err := json.Marshal(e.Metadata); err == nil {
			metadata = raw
		}
	}

	return &model.Document{
		Id:            e.Id,
		FileName:      e.FileName,
		ObjectKey:     e.ObjectKey,
		ContentType:   e.ContentType,
		SizeBytes:     e.SizeBytes,
		Status:        e.Status,
		FailureReason: e.FailureReason,
		ChunkCount:    e.ChunkCount,
		Metadata:      metadata,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     updatedAt,
		DeletedAt:     deletedAt,
	}
}

func (m *DocumentMapper) ToEntities(documents []*model.Document) []*entity.Document {
	entities := make([]*entity.Document, len(documents))
	for i, e := range documents {
		entities[i] = m.ToEntity(e)
	}
	return entities
}
