package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Document struct {
	Id            uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	FileName      string         `gorm:"type:varchar(512);not null"`
	ObjectKey     string         `gorm:"type:varchar(1024);not null;uniqueIndex"`
	ContentType   string         `gorm:"type:varchar(255)"`
	SizeBytes     int64          `gorm:"not null;default:0"`
	Status        string         `gorm:"type:varchar(32);not null;index"`
	FailureReason string         `gorm:"type:text"`
	ChunkCount    int            `gorm:"default:0"`
	Metadata      datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt     time.Time      `gorm:"autoCreateTime"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime"`
	DeletedAt     gorm.DeletedAt `gorm:"index"`
}

func (Document) TableName() string {
	return "documents"
}
