package web

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"

	apphttp "distancematrix/internal/http"
	"distancematrix/platform/logger"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

// Module serves the form page and its assets.
type Module struct {
	handler *Handler
	tmpl    *template.Template
	static  fs.FS
}

// NewModule creates the web module. It panics if the embedded templates
// do not parse.
func NewModule(store *Store, places PlaceSearcher, log *logger.Logger) *Module {
	static, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return &Module{
		handler: NewHandler(store, places, log),
		tmpl:    template.Must(template.ParseFS(templateFS, "templates/*.html")),
		static:  static,
	}
}

func (m *Module) Name() string {
	return "web"
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Engine.SetHTMLTemplate(m.tmpl)
	ctx.Engine.StaticFS("/static", http.FS(m.static))

	ctx.Engine.GET("/", m.handler.Index)
	ctx.Engine.POST("/submit", ctx.RateLimit, m.handler.Submit)
	ctx.Engine.POST("/place", ctx.RateLimit, m.handler.Place)
}

var _ apphttp.Module = (*Module)(nil)
