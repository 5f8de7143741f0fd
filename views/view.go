package views

import (
	"net/http"

	"github.com/a-h/templ"
)

// Render writes component as an HTML response.
func Render(w http.ResponseWriter, r *http.Request, component templ.Component) error {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return component.Render(r.Context(), w)
}
