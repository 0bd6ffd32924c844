// Package pages renders the portal's server-side HTML shell. The pages are
// deliberately thin; all data loading happens through the /api/v1 surface.
package pages

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/pickspot/vendor-portal/api/middleware"
	"github.com/pickspot/vendor-portal/pkg/auth"
	"github.com/pickspot/vendor-portal/pkg/logger"
)

//go:embed templates/*.html
var templatesFS embed.FS

type pageData struct {
	Title    string
	Identity *auth.Identity
}

// Renderer serves the embedded page templates.
type Renderer struct {
	tmpl *template.Template
	logg *logger.Logger
}

// New parses the embedded templates.
func New(logg *logger.Logger) (*Renderer, error) {
	tmpl, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parsing page templates: %w", err)
	}
	return &Renderer{tmpl: tmpl, logg: logg}, nil
}

// Page returns a handler rendering the named template with the request's
// identity, when one is present.
func (p *Renderer) Page(name, title string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := pageData{
			Title:    title,
			Identity: middleware.IdentityFromContext(r.Context()),
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := p.tmpl.ExecuteTemplate(w, name, data); err != nil && p.logg != nil {
			p.logg.Error(r.Context(), "pages.render_failed", err)
		}
	}
}
