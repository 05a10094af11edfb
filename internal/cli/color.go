package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// painter colors patch text line by line
type painter struct {
	enabled bool
	meta    lipgloss.Style
	hunk    lipgloss.Style
	add     lipgloss.Style
	del     lipgloss.Style
	note    lipgloss.Style
}

// newPainter picks the color profile for w: always forces ANSI colors,
// never disables them and auto asks the terminal
func newPainter(w io.Writer, mode string) (painter, error) {
	r := lipgloss.NewRenderer(w)
	switch mode {
	case "always":
		r.SetColorProfile(termenv.ANSI)
	case "never":
		r.SetColorProfile(termenv.Ascii)
	case "auto", "":
	default:
		return painter{}, fmt.Errorf("invalid --color value %q (want auto, always or never)", mode)
	}

	base := r.NewStyle().TabWidth(lipgloss.NoTabConversion)
	return painter{
		enabled: r.ColorProfile() != termenv.Ascii,
		meta:    base.Bold(true),
		hunk:    base.Foreground(lipgloss.Color("6")),
		add:     base.Foreground(lipgloss.Color("2")),
		del:     base.Foreground(lipgloss.Color("1")),
		note:    base.Faint(true),
	}, nil
}

// Render colors a patch. File headers precede the first hunk of a file;
// inside hunks the first byte decides the color.
func (p painter) Render(patch string) string {
	if !p.enabled {
		return patch
	}
	var sb strings.Builder
	inHunk := false
	for _, line := range strings.SplitAfter(patch, "\n") {
		if line == "" {
			continue
		}
		text := strings.TrimSuffix(line, "\n")
		switch {
		case strings.HasPrefix(text, "diff --git "):
			inHunk = false
			text = p.meta.Render(text)
		case strings.HasPrefix(text, "@@ "):
			inHunk = true
			text = p.hunk.Render(text)
		case !inHunk:
			text = p.meta.Render(text)
		case strings.HasPrefix(text, "+"):
			text = p.add.Render(text)
		case strings.HasPrefix(text, "-"):
			text = p.del.Render(text)
		case strings.HasPrefix(text, `\`):
			text = p.note.Render(text)
		}
		sb.WriteString(text)
		if strings.HasSuffix(line, "\n") {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}
