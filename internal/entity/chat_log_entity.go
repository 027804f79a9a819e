package entity

import (
	"time"

	"github.com/google/uuid"
)

// ChatLog is one completed question/answer exchange. It is the durable
// source of truth the Redis session cache is rebuilt from.
type ChatLog struct {
	Id               uuid.UUID
	SessionId        string
	MessageId        uuid.UUID
	Question         string
	Answer           string
	ConfidenceScore  float64
	Source           string
	RequestTimestamp time.Time
	CreatedAt        time.Time
}
