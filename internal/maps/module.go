package maps

import (
	apphttp "distancematrix/internal/http"
	"distancematrix/platform/config"
	"distancematrix/platform/logger"
)

// Module wires the maps address lookup HTTP routes.
type Module struct {
	svc     *Service
	handler *Handler
}

func NewModule(cfg config.PlacesConfig, log *logger.Logger) *Module {
	svc := NewService(cfg, log)
	h := NewHandler(svc)
	return &Module{svc: svc, handler: h}
}

func (m *Module) Name() string {
	return "maps"
}

// Service exposes the search service to the web front end.
func (m *Module) Service() *Service {
	return m.svc
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.V1.Group("/maps")
	group.GET("/address-lookup", ctx.RateLimit, m.handler.LookupAddress)
}

var _ apphttp.Module = (*Module)(nil)
