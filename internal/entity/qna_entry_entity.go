package entity

import (
	"time"

	"github.com/google/uuid"
)

type QnAEntry struct {
	Id                 uuid.UUID
	Question           string
	NormalizedQuestion string
	Answer             string
	Embedding          []float32
	CreatedAt          time.Time
}
