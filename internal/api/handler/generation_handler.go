package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"shiftgrid/internal/dto"
	"shiftgrid/internal/service"
	"shiftgrid/pkg/response"
)

// GenerationHandler 生成模块 HTTP 处理器
type GenerationHandler struct {
	generationSvc service.GenerationService
}

// NewGenerationHandler 创建 GenerationHandler
func NewGenerationHandler(generationSvc service.GenerationService) *GenerationHandler {
	return &GenerationHandler{generationSvc: generationSvc}
}

// Generate 调用文本生成服务（请求体可省略）
// POST /api/v1/sessions/:id/generations
func (h *GenerationHandler) Generate(c *gin.Context) {
	operator, ok := MustGetOperator(c)
	if !ok {
		return
	}

	var req dto.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.generationSvc.Generate(c.Request.Context(), c.Param("id"), operator, &req)
	if err != nil {
		h.handleGenerationError(c, err)
		return
	}

	response.Created(c, result)
}

// Manual 提交手动粘贴的生成结果
// POST /api/v1/sessions/:id/generations/manual
func (h *GenerationHandler) Manual(c *gin.Context) {
	operator, ok := MustGetOperator(c)
	if !ok {
		return
	}

	var req dto.ManualGenerationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.generationSvc.SubmitManual(c.Request.Context(), c.Param("id"), operator, &req)
	if err != nil {
		h.handleGenerationError(c, err)
		return
	}

	response.Created(c, result)
}

// List 会话的生成记录（含失败记录）
// GET /api/v1/sessions/:id/generations
func (h *GenerationHandler) List(c *gin.Context) {
	result, err := h.generationSvc.List(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleGenerationError(c, err)
		return
	}
	response.OK(c, result)
}

func (h *GenerationHandler) handleGenerationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		response.NotFound(c, 20104, "排班会话不存在")
	case errors.Is(err, service.ErrGeneratorUnavailable):
		response.Error(c, http.StatusServiceUnavailable, 20201, "文本生成服务未配置，请使用手动粘贴")
	case errors.Is(err, service.ErrGenerationFailed):
		response.BadGateway(c, 20202, "调用文本生成服务失败")
	case errors.Is(err, service.ErrTableUnparseable):
		response.Unprocessable(c, 20203, "生成结果中没有可解析的排班表格", err.Error())
	case errors.Is(err, service.ErrTableColumnCount):
		response.Unprocessable(c, 20204, "排班表格列数不符合要求", err.Error())
	default:
		response.InternalError(c)
	}
}
