package render

import (
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/i474232898/activity-heatmap/internal/heatmap"
)

//go:embed templates/*.html
var templateFiles embed.FS

var page = template.Must(template.New("heatmap.html").Funcs(template.FuncMap{
	"isSelected": func(year, selected int) bool { return year == selected },
}).ParseFS(templateFiles, "templates/heatmap.html"))

// Page writes the full HTML page for v.
func Page(w io.Writer, v heatmap.View) error {
	if err := page.Execute(w, v); err != nil {
		return fmt.Errorf("render heatmap page: %w", err)
	}
	return nil
}
