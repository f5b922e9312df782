package text

import (
	"sort"
	"strconv"
	"strings"
)

// Page placeholders filled in on every cell of a paginated column.
const (
	PageCurrent = "current_page"
	PageMax     = "max_page"
)

// Vars maps placeholder names to values for "{name}" tokens.
type Vars map[string]string

// PageVars returns the page placeholders for a page position.
func PageVars(current, last int) Vars {
	return Vars{
		PageCurrent: strconv.Itoa(current),
		PageMax:     strconv.Itoa(last),
	}
}

// Apply replaces every known "{name}" token in s. Unknown tokens are kept.
func (v Vars) Apply(s string) string {
	if len(v) == 0 || !strings.Contains(s, "{") {
		return s
	}
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(keys)*2)
	for _, k := range keys {
		pairs = append(pairs, "{"+k+"}", v[k])
	}
	return strings.NewReplacer(pairs...).Replace(s)
}
