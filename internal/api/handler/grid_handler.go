package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"shiftgrid/internal/dto"
	"shiftgrid/internal/service"
	"shiftgrid/pkg/response"
)

// GridHandler 排班网格 HTTP 处理器
type GridHandler struct {
	gridSvc service.GridService
}

// NewGridHandler 创建 GridHandler
func NewGridHandler(gridSvc service.GridService) *GridHandler {
	return &GridHandler{gridSvc: gridSvc}
}

// Get 当前网格
// GET /api/v1/sessions/:id/grid
func (h *GridHandler) Get(c *gin.Context) {
	result, err := h.gridSvc.GetGrid(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleGridError(c, err)
		return
	}
	response.OK(c, result)
}

// Select 单个位置的手动选择
// PUT /api/v1/sessions/:id/grid/selection
func (h *GridHandler) Select(c *gin.Context) {
	var req dto.SelectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.gridSvc.Select(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.handleGridError(c, err)
		return
	}
	response.OK(c, result)
}

func (h *GridHandler) handleGridError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		response.NotFound(c, 20104, "排班会话不存在")
	case errors.Is(err, service.ErrNoGeneration):
		response.NotFound(c, 20301, "该会话尚无解析成功的排班结果")
	case errors.Is(err, service.ErrInvalidSelection):
		response.ErrorWithDetails(c, http.StatusBadRequest, 20302, "无效的手动选择", err.Error())
	default:
		response.InternalError(c)
	}
}
