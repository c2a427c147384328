package repository

import (
	"context"

	"gorm.io/gorm"

	"shiftgrid/internal/model"
)

// GenerationRepository 生成轮次数据访问接口
type GenerationRepository interface {
	// Create 创建生成记录，Assignments 随之写入
	Create(ctx context.Context, gen *model.Generation) error
	GetByID(ctx context.Context, id string) (*model.Generation, error)
	// GetLatestParsed 会话最近一次解析成功的生成（含排班行）
	GetLatestParsed(ctx context.Context, sessionID string) (*model.Generation, error)
	ListBySession(ctx context.Context, sessionID string) ([]model.Generation, error)
}

type generationRepo struct {
	db *gorm.DB
}

// NewGenerationRepo 创建 GenerationRepository 实例
func NewGenerationRepo(db *gorm.DB) GenerationRepository {
	return &generationRepo{db: db}
}

func (r *generationRepo) Create(ctx context.Context, gen *model.Generation) error {
	return r.db.WithContext(ctx).Create(gen).Error
}

func (r *generationRepo) GetByID(ctx context.Context, id string) (*model.Generation, error) {
	var gen model.Generation
	err := r.db.WithContext(ctx).
		Preload("Assignments", orderByPosition).
		Where("generation_id = ?", id).
		First(&gen).Error
	if err != nil {
		return nil, err
	}
	return &gen, nil
}

func (r *generationRepo) GetLatestParsed(ctx context.Context, sessionID string) (*model.Generation, error) {
	var gen model.Generation
	err := r.db.WithContext(ctx).
		Preload("Assignments", orderByPosition).
		Where("session_id = ? AND status = ?", sessionID, model.GenerationStatusParsed).
		Order("created_at DESC").
		First(&gen).Error
	if err != nil {
		return nil, err
	}
	return &gen, nil
}

// ListBySession 不加载 prompt/response 大字段
func (r *generationRepo) ListBySession(ctx context.Context, sessionID string) ([]model.Generation, error) {
	var gens []model.Generation
	err := r.db.WithContext(ctx).
		Select("generation_id", "session_id", "source", "status", "reason", "strategy", "dropped_rows", "created_by", "created_at").
		Where("session_id = ?", sessionID).
		Order("created_at DESC").
		Find(&gens).Error
	return gens, err
}

func orderByPosition(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}
