package model

import (
	"time"

	"github.com/google/uuid"
)

type ChatLog struct {
	Id               uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SessionId        string    `gorm:"type:varchar(255);not null;index"`
	MessageId        uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	Question         string    `gorm:"type:text;not null"`
	Answer           string    `gorm:"type:text;not null"`
	ConfidenceScore  float64   `gorm:"not null;default:0"`
	Source           string    `gorm:"type:varchar(16);not null"`
	RequestTimestamp time.Time `gorm:"not null;index"`
	CreatedAt        time.Time `gorm:"autoCreateTime"`
}

func (ChatLog) TableName() string {
	return "chat_logs"
}
