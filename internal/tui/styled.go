package tui

import (
	"strings"
	"unicode"

	"github.com/charmbracelet/lipgloss"

	"github.com/jask/rostertab/internal/text"
)

// styled renders formatted roster text with terminal colours. Colour codes
// reset decorations; r resets everything; x starts a six digit hex colour.
func styled(s string) string {
	var (
		out   strings.Builder
		seg   strings.Builder
		style = cellStyle
	)
	flush := func() {
		if seg.Len() > 0 {
			out.WriteString(style.Render(seg.String()))
			seg.Reset()
		}
	}

	r := []rune(s)
	for i := 0; i < len(r); i++ {
		if r[i] != text.Marker || i+1 >= len(r) {
			seg.WriteRune(r[i])
			continue
		}
		code := unicode.ToLower(r[i+1])
		i++
		if code == 'x' {
			if hex, ok := hexColour(r, i+1); ok {
				flush()
				style = cellStyle.Foreground(lipgloss.Color(hex))
				i += 12
			}
			continue
		}
		if c, ok := legacyColors[code]; ok {
			flush()
			style = cellStyle.Foreground(c)
			continue
		}
		flush()
		switch code {
		case 'l':
			style = style.Bold(true)
		case 'o':
			style = style.Italic(true)
		case 'n':
			style = style.Underline(true)
		case 'm':
			style = style.Strikethrough(true)
		case 'r':
			style = cellStyle
		}
	}
	flush()
	return out.String()
}

// hexColour reads the six marker-prefixed digits that follow a §x code.
func hexColour(r []rune, at int) (string, bool) {
	if at+12 > len(r) {
		return "", false
	}
	var b strings.Builder
	b.WriteByte('#')
	for j := 0; j < 6; j++ {
		if r[at+2*j] != text.Marker {
			return "", false
		}
		d := r[at+2*j+1]
		if !strings.ContainsRune("0123456789abcdefABCDEF", d) {
			return "", false
		}
		b.WriteRune(d)
	}
	return b.String(), true
}
