package implementation

import (
	"context"

	"ai-docchat-be/internal/entity"
	"ai-docchat-be/internal/mapper"
	"ai-docchat-be/internal/model"
	"ai-docchat-be/internal/repository/contract"
	"ai-docchat-be/internal/repository/specification"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type QnAEntryRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.QnAEntryMapper
}

func NewQnAEntryRepository(db *gorm.DB) contract.QnAEntryRepository {
	return &QnAEntryRepositoryImpl{
		db:     db,
		mapper: mapper.NewQnAEntryMapper(),
	}
}

func (r *QnAEntryRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *QnAEntryRepositoryImpl) CreateBulk(ctx context.Context, entries []*entity.QnAEntry) error {
	if len(entries) == 0 {
		return nil
	}
	models := r.mapper.ToModels(entries)
	if err := r.db.WithContext(ctx).CreateInBatches(models, 100).Error; err != nil {
		return err
	}
	for i, m := range models {
		*entries[i] = *r.mapper.ToEntity(m)
	}
	return nil
}

func (r *QnAEntryRepositoryImpl) DeleteAll(ctx context.Context) error {
	return r.db.WithContext(ctx).Where("1 = 1").Delete(&model.QnAEntry{}).Error
}

func (r *QnAEntryRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.QnAEntry, error) {
	var models []*model.QnAEntry
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.QnAEntry, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}

func (r *QnAEntryRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	err := query.Model(&model.QnAEntry{}).Count(&count).Error
	return count, err
}

func (r *QnAEntryRepositoryImpl) SearchSimilar(ctx context.Context, embedding []float32, limit int) ([]*contract.ScoredQnAEntry, error) {
	if limit <= 0 {
		limit = 1
	}

	type result struct {
		model.QnAEntry
		Similarity float64
	}
	var results []result

	queryVector := pgvector.NewVector(embedding)

	err := r.db.WithContext(ctx).
		Table("qna_entries").
		Select("qna_entries.*, 1 - (embedding <=> ?) as similarity", queryVector).
		Order("similarity DESC").
		Limit(limit).
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	scored := make([]*contract.ScoredQnAEntry, len(results))
	for i, res := range results {
		scored[i] = &contract.ScoredQnAEntry{
			Entry:      r.mapper.ToEntity(&res.QnAEntry),
			Similarity: res.Similarity,
		}
	}
	return scored, nil
}
