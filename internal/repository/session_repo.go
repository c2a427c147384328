package repository

import (
	"context"

	"gorm.io/gorm"

	"shiftgrid/internal/model"
	pkgerrors "shiftgrid/pkg/errors"
)

// SessionRepository 排班会话数据访问接口
type SessionRepository interface {
	// CreateWithRoster 在同一事务内创建会话及其登记、可用性
	CreateWithRoster(ctx context.Context, session *model.PlanningSession, regs []model.Registration, avails []model.Availability) error
	GetByID(ctx context.Context, id string) (*model.PlanningSession, error)
	List(ctx context.Context, operator string, limit int) ([]model.PlanningSession, error)
	// Update 乐观锁更新，版本不匹配时返回 ErrOptimisticLock
	Update(ctx context.Context, session *model.PlanningSession) error
	// ReplaceRoster 重新登记：乐观锁更新会话并整体替换登记与可用性
	ReplaceRoster(ctx context.Context, session *model.PlanningSession, regs []model.Registration, avails []model.Availability) error
	ListRegistrations(ctx context.Context, sessionID string) ([]model.Registration, error)
	ListAvailability(ctx context.Context, sessionID string) ([]model.Availability, error)
}

type sessionRepo struct {
	db *gorm.DB
}

// NewSessionRepo 创建 SessionRepository 实例
func NewSessionRepo(db *gorm.DB) SessionRepository {
	return &sessionRepo{db: db}
}

func (r *sessionRepo) CreateWithRoster(ctx context.Context, session *model.PlanningSession, regs []model.Registration, avails []model.Availability) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(session).Error; err != nil {
			return err
		}
		return insertRoster(tx, session.SessionID, regs, avails)
	})
}

func (r *sessionRepo) GetByID(ctx context.Context, id string) (*model.PlanningSession, error) {
	var session model.PlanningSession
	err := r.db.WithContext(ctx).
		Where("session_id = ?", id).
		First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepo) List(ctx context.Context, operator string, limit int) ([]model.PlanningSession, error) {
	var sessions []model.PlanningSession
	query := r.db.WithContext(ctx).Order("created_at DESC")
	if operator != "" {
		query = query.Where("operator = ?", operator)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&sessions).Error
	return sessions, err
}

func (r *sessionRepo) Update(ctx context.Context, session *model.PlanningSession) error {
	return updateSession(r.db.WithContext(ctx), session)
}

func (r *sessionRepo) ReplaceRoster(ctx context.Context, session *model.PlanningSession, regs []model.Registration, avails []model.Availability) error {
	oldVersion := session.Version
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := updateSession(tx, session); err != nil {
			return err
		}
		// 硬删除：重新登记不做增量合并
		if err := tx.Where("session_id = ?", session.SessionID).Delete(&model.Availability{}).Error; err != nil {
			return err
		}
		if err := tx.Where("session_id = ?", session.SessionID).Delete(&model.Registration{}).Error; err != nil {
			return err
		}
		return insertRoster(tx, session.SessionID, regs, avails)
	})
	if err != nil {
		// 事务回滚后版本号还原
		session.Version = oldVersion
	}
	return err
}

func (r *sessionRepo) ListRegistrations(ctx context.Context, sessionID string) ([]model.Registration, error) {
	var regs []model.Registration
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("position ASC").
		Find(&regs).Error
	return regs, err
}

func (r *sessionRepo) ListAvailability(ctx context.Context, sessionID string) ([]model.Availability, error) {
	var avails []model.Availability
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("position ASC").
		Find(&avails).Error
	return avails, err
}

func updateSession(db *gorm.DB, session *model.PlanningSession) error {
	oldVersion := session.Version
	result := db.
		Model(session).
		Where("session_id = ? AND version = ?", session.SessionID, oldVersion).
		Updates(map[string]interface{}{
			"week_monday":    session.WeekMonday,
			"degraded":       session.Degraded,
			"status":         session.Status,
			"source":         session.Source,
			"raw_input":      session.RawInput,
			"staff_base":     session.StaffBase,
			"staff_elevated": session.StaffElevated,
			"updated_at":     gorm.Expr("NOW()"),
			"version":        oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	session.Version = oldVersion + 1
	return nil
}

func insertRoster(tx *gorm.DB, sessionID string, regs []model.Registration, avails []model.Availability) error {
	for i := range regs {
		regs[i].SessionID = sessionID
	}
	for i := range avails {
		avails[i].SessionID = sessionID
	}
	if len(regs) > 0 {
		if err := tx.CreateInBatches(&regs, 200).Error; err != nil {
			return err
		}
	}
	if len(avails) > 0 {
		if err := tx.CreateInBatches(&avails, 500).Error; err != nil {
			return err
		}
	}
	return nil
}
