package dto

import (
	"time"

	"github.com/google/uuid"
)

type UploadDocumentResponse struct {
	Id       uuid.UUID `json:"id"`
	FileName string    `json:"file_name"`
	Status   string    `json:"status"`
}

type DocumentResponse struct {
	Id            uuid.UUID              `json:"id"`
	FileName      string                 `json:"file_name"`
	ContentType   string                 `json:"content_type"`
	SizeBytes     int64                  `json:"size_bytes"`
	Status        string                 `json:"status"`
	FailureReason string                 `json:"failure_reason,omitempty"`
	ChunkCount    int                    `json:"chunk_count"`
	Metadata      map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt     time.Time              `json:"created_at"`
	UpdatedAt     *time.Time             `json:"updated_at,omitempty"`
}

// PublishIngestDocumentMessage kicks the ingestion pipeline for one document.
type PublishIngestDocumentMessage struct {
	DocumentId uuid.UUID `json:"document_id"`
}
