package web

import (
	"context"
	"fmt"
	"net/http"

	"distancematrix/internal/form"
	"distancematrix/internal/maps"
	"distancematrix/platform/httpkit"
	"distancematrix/platform/logger"

	"github.com/gin-gonic/gin"
)

// CookieName holds the session id.
const CookieName = "commute_session"

// MsgLookupFailed is shown when the place search is down.
const MsgLookupFailed = "Address lookup is unavailable."

// PlaceSearcher finds places for a free-text query.
type PlaceSearcher interface {
	SearchAddress(ctx context.Context, query string) ([]maps.AddressSuggestion, error)
}

// Handler serves the form page.
type Handler struct {
	store  *Store
	places PlaceSearcher
	log    *logger.Logger
}

func NewHandler(store *Store, places PlaceSearcher, log *logger.Logger) *Handler {
	return &Handler{store: store, places: places, log: log}
}

type page struct {
	form.View
	Flash []string
}

type submitRequest struct {
	Origin      string `form:"origin"`
	Destination string `form:"destination"`
	Date        string `form:"date"`
}

type placeRequest struct {
	Field string `form:"field" binding:"required,oneof=origin destination"`
	Query string `form:"q" binding:"required"`
}

// Index handles GET /
func (h *Handler) Index(c *gin.Context) {
	sess := h.session(c)
	c.HTML(http.StatusOK, "index.html", page{
		View:  sess.Form.View(),
		Flash: sess.TakeFlash(),
	})
}

// Submit handles POST /submit. The form reports problems through the
// session's flash, so the response is always a redirect back to the page.
func (h *Handler) Submit(c *gin.Context) {
	var req submitRequest
	if err := c.ShouldBind(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid form submission", nil)
		return
	}

	sess := h.session(c)
	sess.Form.SetOrigin(req.Origin)
	sess.Form.SetDestination(req.Destination)
	sess.Form.SetDate(req.Date)

	if _, err := sess.Form.Submit(c.Request.Context()); err != nil {
		h.log.WithContext(c.Request.Context()).Debug("form submission rejected", "session_id", sess.ID, "error", err)
	}

	c.Redirect(http.StatusSeeOther, "/")
}

// Place handles POST /place: it types q into field, looks it up and, when
// something matches, applies the selection the way an autocomplete would.
func (h *Handler) Place(c *gin.Context) {
	var req placeRequest
	if err := c.ShouldBind(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "field must be origin or destination and q is required", nil)
		return
	}

	sess := h.session(c)
	selection := sess.Selection(req.Field)

	if req.Field == "origin" {
		sess.Form.SetOrigin(req.Query)
	} else {
		sess.Form.SetDestination(req.Query)
	}

	suggestions, err := h.places.SearchAddress(c.Request.Context(), req.Query)
	switch {
	case err != nil:
		h.log.WithContext(c.Request.Context()).Warn("place lookup failed", "error", err)
		selection.Clear()
		sess.Warn(MsgLookupFailed)
	case len(suggestions) == 0:
		selection.Clear()
		sess.Warn(fmt.Sprintf("No place found for %q.", req.Query))
	default:
		selection.Choose(suggestions[0])
	}
	sess.PlaceChanged(req.Field)

	c.Redirect(http.StatusSeeOther, "/")
}

func (h *Handler) session(c *gin.Context) *Session {
	if id, err := c.Cookie(CookieName); err == nil {
		if sess, ok := h.store.Get(id); ok {
			return sess
		}
	}

	sess := h.store.Create()
	maxAge := 0
	if h.store.ttl > 0 {
		maxAge = int(h.store.ttl.Seconds())
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, sess.ID, maxAge, "/", "", c.Request.TLS != nil, true)
	return sess
}
