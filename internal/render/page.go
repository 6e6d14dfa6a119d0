package render

import (
	"embed"
	"html/template"
)

// PageTemplate is the name of the search page template.
const PageTemplate = "index"

// Title is shown at the top of every page.
const Title = "Recipe Search Application"

//go:embed templates/*.html
var templateFS embed.FS

// PageData is everything the search page needs.
type PageData struct {
	Title      string
	Query      string
	Searched   bool
	Count      int
	Cards      []Card
	FetchError string
	Error      string
}

// NewPageData returns page data with the standard title set.
func NewPageData() PageData {
	return PageData{Title: Title}
}

// Templates parses the embedded page templates.
func Templates() *template.Template {
	return template.Must(template.New("").ParseFS(templateFS, "templates/*.html"))
}
