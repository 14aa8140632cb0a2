// Package commute provides the commute report bounded context module.
package commute

import (
	"distancematrix/internal/commute/handler"
	"distancematrix/internal/commute/service"
	"distancematrix/internal/distancematrix"
	"distancematrix/internal/events"
	apphttp "distancematrix/internal/http"
	"distancematrix/platform/config"
	"distancematrix/platform/logger"
)

// Module wires the commute report routes.
type Module struct {
	service *service.Service
	handler *handler.Handler
}

// NewModule creates the commute module on top of a distance provider.
func NewModule(provider distancematrix.Provider, cfg config.CommuteConfig, bus events.Bus, log *logger.Logger) *Module {
	svc := service.New(provider, cfg, bus, log)
	return &Module{
		service: svc,
		handler: handler.New(svc),
	}
}

func (m *Module) Name() string {
	return "commute"
}

// Service returns the commute service for other modules.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts GET /commute at the root, where the form expects it,
// and under the versioned API.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Engine.GET("/commute", ctx.RateLimit, m.handler.GetCommute)
	ctx.V1.GET("/commute", ctx.RateLimit, m.handler.GetCommute)
}

var _ apphttp.Module = (*Module)(nil)
