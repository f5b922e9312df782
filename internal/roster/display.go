package roster

import (
	"sort"

	"github.com/jask/rostertab/internal/text"
)

// DefaultElementWidth is the cell width used when a display sets none.
const DefaultElementWidth = 50

// Display is a configured grid of columns shown to eligible viewers.
type Display struct {
	ID           string
	Weight       int
	Eligible     Predicate
	ShowTitles   bool
	ElementWidth int
	Columns      map[int]*Column
	Header       []text.Dynamic
	Footer       []text.Dynamic
}

func (d *Display) eligible(v Viewer) bool {
	return d.Eligible == nil || d.Eligible(v)
}

// Slots returns the configured column slots in ascending order.
func (d *Display) Slots() []int {
	slots := make([]int, 0, len(d.Columns))
	for s := range d.Columns {
		slots = append(slots, s)
	}
	sort.Ints(slots)
	return slots
}

// Registry is an immutable snapshot of everything loaded from definitions.
type Registry struct {
	Displays map[string]*Display
	Columns  map[string]*Column
	Groups   *Groups
	Avatars  map[string]*Avatar
}

// Select picks the eligible display with the greatest weight; equal weights
// go to the lexicographically smallest id. With nothing eligible it falls
// back to the display named fallback, or nil.
func (r *Registry) Select(v Viewer, fallback string) *Display {
	if r == nil {
		return nil
	}
	var best *Display
	for _, d := range r.Displays {
		if !d.eligible(v) {
			continue
		}
		if best == nil || d.Weight > best.Weight || (d.Weight == best.Weight && d.ID < best.ID) {
			best = d
		}
	}
	if best != nil {
		return best
	}
	return r.Displays[fallback]
}
