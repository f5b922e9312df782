package text

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// glyph widths in pixels of the default client font; anything missing is 5.
var glyphWidth = map[rune]int{
	' ': 3, '!': 1, '"': 3, '\'': 1, '(': 3, ')': 3, '*': 3, ',': 1, '.': 1,
	':': 1, ';': 1, '<': 4, '>': 4, '@': 6, 'I': 3, '[': 3, ']': 3, '`': 2,
	'f': 4, 'i': 1, 'k': 4, 'l': 2, 't': 3, '{': 3, '|': 1, '}': 3, '~': 6,
}

func glyphPixels(c rune, bold bool) int {
	w, ok := glyphWidth[c]
	if !ok {
		w = 5
	}
	if runewidth.RuneWidth(c) == 2 {
		w *= 2
	}
	if bold && c != ' ' {
		w++
	}
	return w
}

// PixelWidth measures s in client pixels, one pixel of spacing per glyph.
func PixelWidth(s string) int {
	px := 0
	code, bold := false, false
	for _, c := range s {
		switch {
		case c == Marker:
			code = true
		case code:
			code = false
			bold = isBold(c)
		default:
			px += glyphPixels(c, bold) + 1
		}
	}
	return px
}

// Center prefixes s with spaces so it sits in the middle of a cell width
// characters wide.
func Center(s string, width int) string {
	if s == "" {
		return ""
	}
	half := PixelWidth(s) / 2
	compensate := width*2 - half
	space := glyphWidth[' '] + 1
	n := 0
	for c := 0; c < compensate; c += space {
		n++
	}
	return strings.Repeat(" ", n) + s
}
