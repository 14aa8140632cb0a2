package history

import (
	"net/http"

	"distancematrix/platform/httpkit"

	"github.com/gin-gonic/gin"
)

// Handler serves the history endpoint.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type listRequest struct {
	Limit *int `form:"limit" binding:"omitempty,min=1,max=100"`
}

// List handles GET /api/v1/commute/history?limit=...
func (h *Handler) List(c *gin.Context) {
	var req listRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "limit must be an integer between 1 and 100", nil)
		return
	}

	limit := DefaultLimit
	if req.Limit != nil {
		limit = *req.Limit
	}

	reports, err := h.svc.ListRecent(c.Request.Context(), limit)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, reports)
}
