// Package handler exposes the commute report over HTTP.
package handler

import (
	"net/http"

	"distancematrix/internal/commute/service"
	"distancematrix/internal/commute/transport"
	"distancematrix/platform/httpkit"

	"github.com/gin-gonic/gin"
)

// Handler serves commute reports.
type Handler struct {
	svc *service.Service
}

func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// GetCommute handles GET /commute?origin=...&destination=...&date=YYYY-MM-DD
func (h *Handler) GetCommute(c *gin.Context) {
	var q transport.Query
	if err := c.ShouldBindQuery(&q); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "origin, destination and date (YYYY-MM-DD) are required", err.Error())
		return
	}

	result, err := h.svc.Report(c.Request.Context(), q)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}
