package implementation

import (
	"context"
	"errors"

	"ai-docchat-be/internal/entity"
	"ai-docchat-be/internal/mapper"
	"ai-docchat-be/internal/model"
	"ai-docchat-be/internal/repository/contract"
	"ai-docchat-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ChatLogRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ChatLogMapper
}

func NewChatLogRepository(db *gorm.DB) contract.ChatLogRepository {
	return &ChatLogRepositoryImpl{
		db:     db,
		mapper: mapper.NewChatLogMapper(),
	}
}

func (r *ChatLogRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *ChatLogRepositoryImpl) Create(ctx context.Context, log *entity.ChatLog) error {
	m := r.mapper.ToModel(log)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*log = *r.mapper.ToEntity(m)
	return nil
}

func (r *ChatLogRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatLog, error) {
	var m model.ChatLog
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *ChatLogRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatLog, error) {
	var models []*model.ChatLog
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *ChatLogRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	err := query.Model(&model.ChatLog{}).Count(&count).Error
	return count, err
}

func (r *ChatLogRepositoryImpl) QueryBySession(ctx context.Context, sessionId string) ([]*entity.ChatLog, error) {
	var models []*model.ChatLog
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionId).
		Order("request_timestamp ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *ChatLogRepositoryImpl) ExistsByMessageId(ctx context.Context, messageId uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.ChatLog{}).
		Where("message_id = ?", messageId).
		Count(&count).Error
	return count > 0, err
}
