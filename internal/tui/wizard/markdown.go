package wizard

import (
	"strings"

	"charm.land/glamour/v2"
	"github.com/charmbracelet/x/ansi"
)

// markdown renders Markdown for the step body, reusing the renderer while
// the wrap width is unchanged.
type markdown struct {
	width    int
	renderer *glamour.TermRenderer
}

func (md *markdown) render(content string, width int) string {
	if strings.TrimSpace(content) == "" {
		return ""
	}
	width = min(max(width, 20), 120)

	if md.renderer == nil || md.width != width {
		r, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle("dark"),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return ansi.Wordwrap(content, width, "")
		}
		md.renderer = r
		md.width = width
	}

	out, err := md.renderer.Render(content)
	if err != nil {
		return ansi.Wordwrap(content, width, "")
	}
	return strings.Trim(out, "\n")
}
