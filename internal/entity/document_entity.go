package entity

import (
	"time"

	"github.com/google/uuid"
)

// Document ingestion statuses. A document walks Uploaded -> Parsed ->
// Chunked -> Embedded -> Indexed; any stage failure parks it at Failed
// with the reason recorded.
const (
	DocumentStatusUploaded = "UPLOADED"
	DocumentStatusParsed   = "PARSED"
	DocumentStatusChunked  = "CHUNKED"
	DocumentStatusEmbedded = "EMBEDDED"
	DocumentStatusIndexed  = "INDEXED"
	DocumentStatusFailed   = "FAILED"
)

type Document struct {
	Id            uuid.UUID
	FileName      string
	ObjectKey     string
	ContentType   string
	SizeBytes     int64
	Status        string
	FailureReason string
	ChunkCount    int
	Metadata      map[string]interface{}
	CreatedAt     time.Time
	UpdatedAt     *time.Time
	DeletedAt     *time.Time
	IsDeleted     bool
}
