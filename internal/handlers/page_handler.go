package handlers

import (
	"html/template"
	"net/http"

	"filmsoc-backend/templates"
)

type PageHandler struct {
	templates *template.Template
}

func NewPageHandler() *PageHandler {
	// Parse all templates from embedded filesystem
	templates := template.Must(template.ParseFS(templates.FS, "*.html"))

	return &PageHandler{
		templates: templates,
	}
}

// LandingPage serves the public availability board
func (h *PageHandler) LandingPage(w http.ResponseWriter, r *http.Request) {
	h.templates.ExecuteTemplate(w, "index.html", nil)
}
