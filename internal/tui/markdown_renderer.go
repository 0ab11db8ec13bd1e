package tui

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

const (
	minHelpWrap = 24
	maxHelpWrap = 72
	// helpMargin leaves room for the overlay border, padding and some board.
	helpMargin = 12
)

// markdownRenderer renders the help overlay. View runs on every frame, so
// the last output is kept until the source or the wrap width changes.
type markdownRenderer struct {
	term     *glamour.TermRenderer
	termWrap int

	source string
	wrap   int
	out    string
}

// helpWrap is the glamour wrap width for a terminal termWidth cells wide.
func helpWrap(termWidth int) int {
	return clamp(termWidth-helpMargin, minHelpWrap, maxHelpWrap)
}

// render returns markdown styled for a terminal termWidth cells wide.
// Renderer failures fall back to the raw markdown.
func (r *markdownRenderer) render(markdown string, termWidth int) string {
	markdown = strings.TrimSpace(markdown)
	if markdown == "" {
		return ""
	}
	wrap := helpWrap(termWidth)
	if r.out != "" && r.source == markdown && r.wrap == wrap {
		return r.out
	}

	if r.term == nil || r.termWrap != wrap {
		term, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle("dark"),
			glamour.WithWordWrap(wrap),
		)
		if err != nil {
			return markdown
		}
		r.term, r.termWrap = term, wrap
	}
	rendered, err := r.term.Render(markdown)
	if err != nil {
		return markdown
	}

	r.source, r.wrap, r.out = markdown, wrap, trimBlankLines(rendered)
	return r.out
}

// trimBlankLines drops the empty margin rows glamour puts around a document.
func trimBlankLines(s string) string {
	lines := strings.Split(s, "\n")
	start, end := 0, len(lines)
	for start < end && strings.TrimSpace(lines[start]) == "" {
		start++
	}
	for end > start && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}
	return strings.Join(lines[start:end], "\n")
}

// helpMarkdown documents the bindings in k for the help overlay.
func helpMarkdown(k keyMap) string {
	var b strings.Builder
	b.WriteString("# dragboard\n\n")
	b.WriteString("Drag cards between columns with the mouse, or pick one up with the keyboard.\n\n")
	b.WriteString("| key | action |\n|---|---|\n")
	for _, group := range k.FullHelp() {
		for _, binding := range group {
			h := binding.Help()
			b.WriteString("| `" + h.Key + "` | " + h.Desc + " |\n")
		}
	}
	b.WriteString("\n- Drag a column by its header.\n")
	b.WriteString("- Click **+ Add column** to append an empty column.\n")
	b.WriteString("- Scroll a column with the mouse wheel.\n")
	return b.String()
}
