// Package assets provides access to embedded static files such as the landing page template.
package assets

import (
	"embed"
	"html/template"
)

//go:embed *.html
var embedFS embed.FS

// ReadFile returns the content of a specific file from the embedded assets by its name.
func ReadFile(name string) ([]byte, error) {
	return embedFS.ReadFile(name)
}

// Template parses an embedded file as an HTML template named after the file.
func Template(name string) (*template.Template, error) {
	return template.New(name).ParseFS(embedFS, name)
}
