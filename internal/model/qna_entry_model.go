package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

type QnAEntry struct {
	Id                 uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Question           string          `gorm:"type:text;not null"`
	NormalizedQuestion string          `gorm:"type:text;not null"`
	Answer             string          `gorm:"type:text;not null"`
	Embedding          pgvector.Vector `gorm:"type:vector(768)"`
	CreatedAt          time.Time       `gorm:"autoCreateTime"`
}

func (QnAEntry) TableName() string {
	return "qna_entries"
}
