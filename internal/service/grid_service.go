package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"shiftgrid/internal/dto"
	"shiftgrid/internal/model"
	"shiftgrid/internal/repository"
	"shiftgrid/internal/roster"
)

// ── 网格模块业务错误 ──

var (
	ErrNoGeneration     = errors.New("该会话尚无解析成功的排班结果")
	ErrInvalidSelection = roster.ErrInvalidSelection
)

// GridService 可编辑排班网格业务接口
type GridService interface {
	// 以最近一次解析成功的生成为种子，叠加手动选择
	GetGrid(ctx context.Context, sessionID string) (*dto.GridResponse, error)
	// 记录一个位置的手动选择并返回新网格
	Select(ctx context.Context, sessionID string, req *dto.SelectionRequest) (*dto.GridResponse, error)
}

type gridService struct {
	grids *gridReconciler
}

// NewGridService 创建 GridService 实例
func NewGridService(repo *repository.Repository, store SelectionStore, logger *zap.Logger) GridService {
	return &gridService{grids: newGridReconciler(repo, store, logger)}
}

func (s *gridService) GetGrid(ctx context.Context, sessionID string) (*dto.GridResponse, error) {
	state, err := s.grids.reconcile(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return toGridResponse(sessionID, state.generation.GenerationID, state.result.Rows), nil
}

func (s *gridService) Select(ctx context.Context, sessionID string, req *dto.SelectionRequest) (*dto.GridResponse, error) {
	date, err := time.Parse(isoDate, req.Date)
	if err != nil {
		return nil, fmt.Errorf("%w: 日期 %q 格式应为 yyyy-mm-dd", ErrInvalidSelection, req.Date)
	}
	key := roster.SelectionKey{Shift: roster.Shift(req.Shift), Slot: req.Slot, Date: date}

	state, err := s.grids.reconcile(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	next, err := roster.ApplySelection(state.result, key, req.Employee)
	if err != nil {
		return nil, err
	}
	result := state.reconcileWith(next)
	if err := s.grids.store.Save(ctx, sessionID, state.generation.GenerationID, result.Selections); err != nil {
		s.grids.logger.Error("保存手动选择失败", zap.String("session_id", sessionID), zap.Error(err))
		return nil, err
	}

	s.grids.logger.Info("手动选择已更新",
		zap.String("session_id", sessionID),
		zap.String("key", key.String()),
		zap.String("employee", req.Employee),
	)
	return toGridResponse(sessionID, state.generation.GenerationID, result.Rows), nil
}

// ════════════════════════════════════════════════════════════
// gridReconciler：网格与导出共用的调和流程
// ════════════════════════════════════════════════════════════

type gridReconciler struct {
	repo   *repository.Repository
	store  SelectionStore
	logger *zap.Logger
}

func newGridReconciler(repo *repository.Repository, store SelectionStore, logger *zap.Logger) *gridReconciler {
	return &gridReconciler{repo: repo, store: store, logger: logger}
}

// gridState 一次调和的输入与结果
type gridState struct {
	session    *model.PlanningSession
	generation *model.Generation
	input      roster.ReconcileInput
	result     roster.ReconcileResult
}

// reconcileWith 以新的手动选择重新调和
func (g *gridState) reconcileWith(sel roster.Selections) roster.ReconcileResult {
	in := g.input
	in.Selections = sel
	return roster.Reconcile(in)
}

// load 加载会话、最近一次解析成功的生成与手动选择并调和，不写回存储
func (r *gridReconciler) load(ctx context.Context, sessionID string) (*gridState, error) {
	session, err := loadSession(ctx, r.repo, sessionID, r.logger)
	if err != nil {
		return nil, err
	}

	gen, err := r.repo.Generation.GetLatestParsed(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoGeneration
		}
		r.logger.Error("查询生成结果失败", zap.String("session_id", sessionID), zap.Error(err))
		return nil, err
	}

	table, err := loadAvailability(ctx, r.repo, session, r.logger)
	if err != nil {
		return nil, err
	}

	sel, err := r.store.Load(ctx, sessionID, gen.GenerationID)
	if err != nil {
		r.logger.Error("读取手动选择失败", zap.String("session_id", sessionID), zap.Error(err))
		return nil, err
	}

	state := &gridState{
		session:    session,
		generation: gen,
		input: roster.ReconcileInput{
			Assignments:  parsedAssignments(gen.Assignments),
			Availability: table,
			Staffing:     sessionPolicy(session).Plan(sessionAnchor(session)),
			Selections:   sel,
		},
	}
	state.result = roster.Reconcile(state.input)
	return state, nil
}

// reconcile 同 load，并回写每个位置的最终取值，后续轮次以此为准
func (r *gridReconciler) reconcile(ctx context.Context, sessionID string) (*gridState, error) {
	state, err := r.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := r.store.Save(ctx, sessionID, state.generation.GenerationID, state.result.Selections); err != nil {
		r.logger.Error("保存手动选择失败", zap.String("session_id", sessionID), zap.Error(err))
		return nil, err
	}
	return state, nil
}
