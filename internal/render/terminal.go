package render

import (
	"github.com/charmbracelet/glamour"
)

// Terminal styles Markdown for display at the given width. Width 0 uses 80
// columns.
func Terminal(md []byte, width int) (string, error) {
	if width <= 0 {
		width = 80
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", err
	}
	return r.Render(string(md))
}
