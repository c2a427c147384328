package handler

import (
	"errors"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"shiftgrid/internal/dto"
	"shiftgrid/internal/service"
	"shiftgrid/pkg/response"
)

// SessionHandler 排班会话（登记）HTTP 处理器
type SessionHandler struct {
	sessionSvc service.SessionService
}

// NewSessionHandler 创建 SessionHandler
func NewSessionHandler(sessionSvc service.SessionService) *SessionHandler {
	return &SessionHandler{sessionSvc: sessionSvc}
}

// Create 粘贴登记文本创建会话
// POST /api/v1/sessions
func (h *SessionHandler) Create(c *gin.Context) {
	operator, ok := MustGetOperator(c)
	if !ok {
		return
	}

	var req dto.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.sessionSvc.CreateFromText(c.Request.Context(), operator, req.Text)
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	response.Created(c, result)
}

// Import 上传 .xlsx 登记表创建会话
// POST /api/v1/sessions/import (multipart: file)
func (h *SessionHandler) Import(c *gin.Context) {
	operator, ok := MustGetOperator(c)
	if !ok {
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, 20107, "请上传登记表文件")
		return
	}
	if !strings.EqualFold(filepath.Ext(fh.Filename), ".xlsx") {
		response.BadRequest(c, 20107, "仅支持 .xlsx 文件")
		return
	}

	f, err := fh.Open()
	if err != nil {
		response.BadRequest(c, 20107, "无法读取上传文件")
		return
	}
	defer f.Close()

	result, err := h.sessionSvc.CreateFromWorkbook(c.Request.Context(), operator, f)
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	response.Created(c, result)
}

// Reregister 重新登记
// PUT /api/v1/sessions/:id
func (h *SessionHandler) Reregister(c *gin.Context) {
	operator, ok := MustGetOperator(c)
	if !ok {
		return
	}

	var req dto.ReregisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.sessionSvc.Reregister(c.Request.Context(), c.Param("id"), operator, &req)
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	response.OK(c, result)
}

// Get 会话摘要
// GET /api/v1/sessions/:id
func (h *SessionHandler) Get(c *gin.Context) {
	result, err := h.sessionSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleSessionError(c, err)
		return
	}
	response.OK(c, result)
}

// List 会话列表
// GET /api/v1/sessions?limit=20&mine=true
func (h *SessionHandler) List(c *gin.Context) {
	operator, ok := MustGetOperator(c)
	if !ok {
		return
	}

	var req dto.SessionListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.sessionSvc.List(c.Request.Context(), operator, &req)
	if err != nil {
		h.handleSessionError(c, err)
		return
	}
	response.OK(c, result)
}

// Availability 可用性记录
// GET /api/v1/sessions/:id/availability
func (h *SessionHandler) Availability(c *gin.Context) {
	result, err := h.sessionSvc.GetAvailability(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleSessionError(c, err)
		return
	}
	response.OK(c, result)
}

// Prompt 预览提示词；查询参数可覆盖约束
// GET /api/v1/sessions/:id/prompt
func (h *SessionHandler) Prompt(c *gin.Context) {
	var overrides dto.ConstraintOverrides
	if err := c.ShouldBindQuery(&overrides); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.sessionSvc.GetPrompt(c.Request.Context(), c.Param("id"), &overrides)
	if err != nil {
		h.handleSessionError(c, err)
		return
	}
	response.OK(c, result)
}

// handleSessionError 将登记模块错误映射为 HTTP 响应
func (h *SessionHandler) handleSessionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrRegistrationEmpty):
		response.BadRequest(c, 20101, "登记内容为空")
	case errors.Is(err, service.ErrRegistrationColumns):
		response.Unprocessable(c, 20102, "登记表缺少必需列", err.Error())
	case errors.Is(err, service.ErrRegistrationUnreadable):
		response.ErrorWithDetails(c, http.StatusBadRequest, 20103, "无法读取登记内容", err.Error())
	case errors.Is(err, service.ErrSessionNotFound):
		response.NotFound(c, 20104, "排班会话不存在")
	case errors.Is(err, service.ErrSessionVersionConflict):
		response.Conflict(c, 20105, "会话已被其他操作修改，请刷新后重试")
	case errors.Is(err, service.ErrRegistrationNotOwnedByOp):
		response.Forbidden(c, 20106, "只能修改自己创建的会话")
	default:
		response.InternalError(c)
	}
}
