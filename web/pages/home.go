package pages

import "github.com/cristianadrielbraun/qrcreator/web/components"

// HomeProps is the state the editor page is rendered with.
type HomeProps struct {
	Text       string
	Size       components.Range
	Margin     components.Range
	Levels     []components.Option
	Foreground string
	Background string
	HasLogo    bool
	Generation uint64
	Renders    int
	Error      string
	Formats    []components.Option
}
