package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"shiftgrid/internal/dto"
	"shiftgrid/internal/model"
	"shiftgrid/internal/repository"
	"shiftgrid/internal/roster"
	pkgerrors "shiftgrid/pkg/errors"
	"shiftgrid/pkg/llm"
)

// ── 生成模块业务错误 ──

var (
	ErrGeneratorUnavailable = errors.New("文本生成服务未配置，请使用手动粘贴")
	ErrGenerationFailed     = errors.New("调用文本生成服务失败")
	ErrTableUnparseable     = roster.ErrUnparseableTable
	ErrTableColumnCount     = roster.ErrColumnCountMismatch
)

// GenerationService 生成（AI / 手动）业务接口
//
// 失败的生成也会落库（status=failed + reason），
// 最近一次解析成功的生成及其手动选择保持不变。
type GenerationService interface {
	// 调用文本生成服务并解析结果
	Generate(ctx context.Context, sessionID, operator string, req *dto.GenerateRequest) (*dto.GenerationResponse, error)
	// 解析操作员粘贴的生成结果
	SubmitManual(ctx context.Context, sessionID, operator string, req *dto.ManualGenerationRequest) (*dto.GenerationResponse, error)
	List(ctx context.Context, sessionID string) ([]dto.GenerationSummary, error)
}

type generationService struct {
	repo      *repository.Repository
	generator llm.TextGenerator
	settings  Settings
	logger    *zap.Logger
}

// NewGenerationService 创建 GenerationService 实例；generator 可为 nil（仅手动模式）
func NewGenerationService(repo *repository.Repository, generator llm.TextGenerator, settings Settings, logger *zap.Logger) GenerationService {
	return &generationService{repo: repo, generator: generator, settings: settings, logger: logger}
}

// ════════════════════════════════════════════════════════════
// Generate：提示词 → 生成服务 → 表格解析
// ════════════════════════════════════════════════════════════

func (s *generationService) Generate(ctx context.Context, sessionID, operator string, req *dto.GenerateRequest) (*dto.GenerationResponse, error) {
	if s.generator == nil {
		return nil, ErrGeneratorUnavailable
	}

	session, err := loadSession(ctx, s.repo, sessionID, s.logger)
	if err != nil {
		return nil, err
	}
	in, err := loadPromptInput(ctx, s.repo, session, s.logger)
	if err != nil {
		return nil, err
	}

	var overrides *dto.ConstraintOverrides
	if req != nil {
		overrides = &req.Constraints
	}
	prompt, err := buildPrompt(session, in, applyOverrides(s.settings.Constraints, overrides))
	if err != nil {
		s.logger.Error("渲染提示词失败", zap.Error(err))
		return nil, err
	}

	gen := &model.Generation{
		SessionID: sessionID,
		Source:    model.GenerationSourceAI,
		Prompt:    prompt,
		CreatedBy: operator,
	}

	text, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		s.logger.Warn("文本生成服务调用失败", zap.String("session_id", sessionID), zap.Error(err))
		s.recordFailure(ctx, gen, err.Error())
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	gen.Response = text

	return s.parseAndStore(ctx, session, gen)
}

// ════════════════════════════════════════════════════════════
// SubmitManual：手动粘贴的生成结果
// ════════════════════════════════════════════════════════════

func (s *generationService) SubmitManual(ctx context.Context, sessionID, operator string, req *dto.ManualGenerationRequest) (*dto.GenerationResponse, error) {
	session, err := loadSession(ctx, s.repo, sessionID, s.logger)
	if err != nil {
		return nil, err
	}

	gen := &model.Generation{
		SessionID: sessionID,
		Source:    model.GenerationSourceManual,
		Response:  req.Text,
		CreatedBy: operator,
	}
	return s.parseAndStore(ctx, session, gen)
}

func (s *generationService) parseAndStore(ctx context.Context, session *model.PlanningSession, gen *model.Generation) (*dto.GenerationResponse, error) {
	parsed, report, err := roster.ParseScheduleTableWithReport(gen.Response)
	if err != nil {
		s.logger.Info("排班表格解析失败",
			zap.String("session_id", session.SessionID),
			zap.String("source", gen.Source),
			zap.Error(err),
		)
		s.recordFailure(ctx, gen, err.Error())
		return nil, err
	}

	gen.Status = model.GenerationStatusParsed
	gen.Strategy = report.Strategy
	gen.DroppedRows = report.DroppedRows
	gen.Assignments = toAssignmentRows(parsed)
	if err := s.repo.Generation.Create(ctx, gen); err != nil {
		s.logger.Error("保存生成结果失败", zap.Error(err))
		return nil, err
	}

	if err := s.markGenerated(ctx, session); err != nil {
		// 生成结果已保存，状态更新失败不影响网格
		s.logger.Warn("更新会话状态失败", zap.String("session_id", session.SessionID), zap.Error(err))
	}

	s.logger.Info("排班表格解析完成",
		zap.String("session_id", session.SessionID),
		zap.String("generation_id", gen.GenerationID),
		zap.String("strategy", report.Strategy),
		zap.Int("rows", len(parsed)),
		zap.Int("dropped", report.DroppedRows),
		zap.Int("duplicates", report.DuplicateRows),
	)

	return &dto.GenerationResponse{
		GenerationID:  gen.GenerationID,
		Source:        gen.Source,
		Status:        gen.Status,
		Strategy:      report.Strategy,
		DroppedRows:   report.DroppedRows,
		DuplicateRows: report.DuplicateRows,
		Assignments:   toAssignmentResponses(parsed),
		CreatedAt:     formatTimestamp(gen.CreatedAt),
	}, nil
}

// recordFailure 失败记录仅用于审计，写入失败只记日志
func (s *generationService) recordFailure(ctx context.Context, gen *model.Generation, reason string) {
	gen.Status = model.GenerationStatusFailed
	gen.Reason = reason
	gen.Assignments = nil
	if err := s.repo.Generation.Create(ctx, gen); err != nil {
		s.logger.Error("保存失败的生成记录失败", zap.Error(err))
	}
}

// markGenerated 乐观锁冲突时重读一次再更新
func (s *generationService) markGenerated(ctx context.Context, session *model.PlanningSession) error {
	if session.Status == model.SessionStatusGenerated {
		return nil
	}
	session.Status = model.SessionStatusGenerated
	err := s.repo.Session.Update(ctx, session)
	if !errors.Is(err, pkgerrors.ErrOptimisticLock) {
		return err
	}
	fresh, err := s.repo.Session.GetByID(ctx, session.SessionID)
	if err != nil {
		return err
	}
	fresh.Status = model.SessionStatusGenerated
	return s.repo.Session.Update(ctx, fresh)
}

func (s *generationService) List(ctx context.Context, sessionID string) ([]dto.GenerationSummary, error) {
	if _, err := loadSession(ctx, s.repo, sessionID, s.logger); err != nil {
		return nil, err
	}
	gens, err := s.repo.Generation.ListBySession(ctx, sessionID)
	if err != nil {
		s.logger.Error("查询生成记录失败", zap.Error(err))
		return nil, err
	}
	out := make([]dto.GenerationSummary, 0, len(gens))
	for _, g := range gens {
		out = append(out, dto.GenerationSummary{
			GenerationID: g.GenerationID,
			Source:       g.Source,
			Status:       g.Status,
			Reason:       g.Reason,
			CreatedBy:    g.CreatedBy,
			CreatedAt:    formatTimestamp(g.CreatedAt),
		})
	}
	return out, nil
}

// ── 提示词 ──

// buildPrompt 原始登记 + 可用性 + 人数计划 + 约束 → 提示词
func buildPrompt(session *model.PlanningSession, in *promptInput, constraints roster.Constraints) (string, error) {
	policy := sessionPolicy(session)
	payload := roster.BuildGenerationPayload(in.regs, in.table, sessionAnchor(session), policy, constraints)
	return roster.RenderPrompt(payload, policy.Base)
}

// applyOverrides 以请求中非空字段覆盖默认约束
func applyOverrides(base roster.Constraints, o *dto.ConstraintOverrides) roster.Constraints {
	out := base
	if o == nil {
		return out
	}
	if o.MaxShiftsPerDay != nil {
		out.MaxShiftsPerDay = *o.MaxShiftsPerDay
	}
	if o.ShiftsPerWeek != nil {
		out.ShiftsPerWeek = *o.ShiftsPerWeek
	}
	if o.MinRestHours != nil {
		out.MinRestHours = *o.MinRestHours
	}
	if o.MaxConsecutiveDays != nil {
		out.MaxConsecutiveDays = *o.MaxConsecutiveDays
	}
	if o.PreferenceWeight != nil {
		out.PreferenceWeight = *o.PreferenceWeight
	}
	return out
}
