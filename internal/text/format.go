package text

import (
	"regexp"
	"strings"
)

// Marker starts a two-character format code, e.g. "§l" for bold.
const Marker = '§'

const codeChars = "0123456789abcdefklmnorx"

var hexColour = regexp.MustCompile(`&#([0-9a-fA-F]{6})`)

// Format translates '&' codes into format codes and expands "&#RRGGBB"
// into the "§x§R§R§G§G§B§B" hex form.
func Format(s string) string {
	s = hexColour.ReplaceAllStringFunc(s, func(m string) string {
		var b strings.Builder
		b.WriteRune(Marker)
		b.WriteByte('x')
		for _, c := range strings.ToLower(m[2:]) {
			b.WriteRune(Marker)
			b.WriteRune(c)
		}
		return b.String()
	})

	r := []rune(s)
	for i := 0; i < len(r)-1; i++ {
		if r[i] != '&' {
			continue
		}
		lower := []rune(strings.ToLower(string(r[i+1])))[0]
		if strings.ContainsRune(codeChars, lower) {
			r[i] = Marker
			r[i+1] = lower
		}
	}
	return string(r)
}

// Strip removes every format code pair.
func Strip(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	code := false
	for _, c := range s {
		switch {
		case c == Marker:
			code = true
		case code:
			code = false
		default:
			b.WriteRune(c)
		}
	}
	return b.String()
}

// VisibleLen is the number of characters left after stripping format codes.
func VisibleLen(s string) int {
	return len([]rune(Strip(s)))
}

func isBold(c rune) bool { return c == 'l' || c == 'L' }

// Trim cuts s so it fits a cell of width characters. Bold glyphs render
// wider, so the cut point moves left by one character for every eight bold
// ones, plus a fixed four-character margin. The cut never leaves a lone
// marker at the end.
func Trim(s string, width int) string {
	if width < 0 {
		width = 0
	}
	if VisibleLen(s) <= width {
		return s
	}

	r := []rune(s)
	code, bold, boldChars := false, false, 0
	for j := 0; j < width && j < len(r); j++ {
		c := r[j]
		switch {
		case c == Marker:
			code = true
		case code:
			code = false
			bold = isBold(c)
		case bold:
			boldChars++
		}
	}

	cut := width - boldChars/8 - 4
	if cut < 0 {
		cut = 0
	}
	if cut > len(r) {
		cut = len(r)
	}
	if cut > 0 && r[cut-1] == Marker {
		cut--
	}
	return string(r[:cut])
}
