package definitions

import (
	"fmt"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// suggest returns the known name closest to name, or "" when nothing is close.
func suggest(name string, known []string) string {
	name = strings.ToLower(name)
	best, bestDist := "", -1
	for _, k := range known {
		d := levenshtein.ComputeDistance(name, strings.ToLower(k))
		if bestDist < 0 || d < bestDist || (d == bestDist && k < best) {
			best, bestDist = k, d
		}
	}
	if bestDist < 0 || bestDist > max(2, len(name)/3) {
		return ""
	}
	return best
}

// unknownRef formats a missing reference with a "did you mean" hint.
func unknownRef(kind, name string, known []string) error {
	if s := suggest(name, known); s != "" {
		return fmt.Errorf("unknown %s %q (did you mean %q?)", kind, name, s)
	}
	return fmt.Errorf("unknown %s %q", kind, name)
}

func keys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
