// Package views embeds the HTML templates and static assets.
package views

import (
	"embed"
	"html/template"
	"io/fs"

	"github.com/kelibin/secretaria/internal/app/models"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed public
var publicFS embed.FS

var funcs = template.FuncMap{
	"statusClass": func(status models.EnrollmentStatus) string {
		switch status {
		case models.EnrollmentCompleted:
			return "success"
		case models.EnrollmentCancelled:
			return "secondary"
		default:
			return "warning"
		}
	},
}

// Templates parses every page and partial
func Templates() (*template.Template, error) {
	return template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
}

// Public returns the static asset tree served under /public
func Public() fs.FS {
	sub, err := fs.Sub(publicFS, "public")
	if err != nil {
		panic(err)
	}
	return sub
}
