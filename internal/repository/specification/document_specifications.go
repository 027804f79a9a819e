package specification

import (
	"gorm.io/gorm"
)

// ByStatus filters documents by ingestion status
type ByStatus struct {
	Status string
}

func (s ByStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", s.Status)
}

// ByObjectKey filters documents by their object storage key
type ByObjectKey struct {
	ObjectKey string
}

func (s ByObjectKey) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("object_key = ?", s.ObjectKey)
}
