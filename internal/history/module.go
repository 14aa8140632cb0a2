package history

import (
	"context"

	"distancematrix/internal/events"
	apphttp "distancematrix/internal/http"
	"distancematrix/platform/logger"
)

// Module records commute reports and serves them back.
type Module struct {
	service *Service
	handler *Handler
}

// NewModule creates the history module on top of repo.
func NewModule(repo Repository, log *logger.Logger) *Module {
	svc := NewService(repo, log)
	return &Module{service: svc, handler: NewHandler(svc)}
}

func (m *Module) Name() string {
	return "history"
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.V1.GET("/commute/history", m.handler.List)
}

// RegisterHandlers subscribes to computed commute reports.
func (m *Module) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.CommuteComputed{}.EventName(), m)
}

// Handle routes events to the appropriate handler method.
func (m *Module) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.CommuteComputed:
		return m.service.Record(ctx, e)
	default:
		return nil
	}
}

var _ apphttp.Module = (*Module)(nil)
