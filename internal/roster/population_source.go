package roster

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/jask/rostertab/internal/text"
)

// SortType selects how population entries are weighted.
type SortType int

const (
	// SortWeight ranks by resolved group weight, 0 without a group.
	SortWeight SortType = iota
	// SortStringVariable is reserved; every entry weighs 0.
	SortStringVariable
	// SortNumberVariable ranks by an integer variable.
	SortNumberVariable
	// SortDistance ranks nearer entries first.
	SortDistance
)

var sortNames = map[string]SortType{
	"WEIGHT":          SortWeight,
	"STRING_VARIABLE": SortStringVariable,
	"NUMBER_VARIABLE": SortNumberVariable,
	"DISTANCE":        SortDistance,
}

func ParseSortType(s string) (SortType, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return SortWeight, nil
	}
	if t, ok := sortNames[s]; ok {
		return t, nil
	}
	return SortWeight, fmt.Errorf("unknown sorter %q", s)
}

func (t SortType) String() string {
	for n, v := range sortNames {
		if v == t {
			return n
		}
	}
	return fmt.Sprintf("SortType(%d)", int(t))
}

// ErrNotNumeric is returned when a number-variable sort meets a value that
// does not parse as an integer.
var ErrNotNumeric = errors.New("roster: sort variable is not numeric")

// PopulationSource lists the present population ranked by weight. Each entry
// becomes an item built from Element, or from the entry's group item when the
// group defines one.
type PopulationSource struct {
	Population Population
	Groups     *Groups
	Vars       Substituter
	Sort       SortType
	// SortVariable is substituted per member for SortNumberVariable.
	SortVariable string
	// Element is the item template. Its Filter selects which members are
	// listed; produced items carry no filter of their own.
	Element *Item
}

type weighted struct {
	member *Member
	weight float64
}

func (s *PopulationSource) Produce(_ int, viewer Viewer, _ bool) ([]*Item, error) {
	if s.Population == nil {
		return nil, nil
	}
	members := s.Population.Members()

	var ref *Location
	if s.Sort == SortDistance {
		if self, ok := s.Population.Member(viewer.ID()); ok && self.Location != nil {
			ref = self.Location
		}
	}

	ranked := make([]weighted, 0, len(members))
	for _, m := range members {
		if !s.Population.Visible(viewer, m) {
			continue
		}
		if s.Element != nil && s.Element.Filter != nil && !s.Element.Filter(m) {
			continue
		}
		w, err := s.weigh(m, ref)
		if err != nil {
			return nil, fmt.Errorf("weigh %s: %w", m.Username, err)
		}
		ranked = append(ranked, weighted{member: m, weight: w})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].weight > ranked[j].weight
	})

	items := make([]*Item, 0, len(ranked))
	for _, r := range ranked {
		items = append(items, s.itemFor(r.member))
	}
	return items, nil
}

func (s *PopulationSource) weigh(m *Member, ref *Location) (float64, error) {
	switch s.Sort {
	case SortWeight:
		if g := s.Groups.Resolve(m); g != nil {
			return float64(g.Weight), nil
		}
		return 0, nil
	case SortNumberVariable:
		vars := s.Vars
		if vars == nil {
			vars = Passthrough
		}
		raw := strings.TrimSpace(text.Strip(vars.Substitute(m, s.SortVariable)))
		n, err := strconv.Atoi(raw)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrNotNumeric, raw)
		}
		return float64(n), nil
	case SortDistance:
		if ref == nil || m.Location == nil {
			return 0, nil
		}
		d := ref.Distance(*m.Location)
		if math.IsInf(d, 1) {
			return -math.MaxFloat64, nil
		}
		return -d, nil
	default:
		return 0, nil
	}
}

func (s *PopulationSource) itemFor(m *Member) *Item {
	tmpl := s.Element
	if g := s.Groups.Resolve(m); g != nil && g.Item != nil {
		tmpl = g.Item
	}
	item := &Item{Subject: m, Avatar: m.Avatar}
	if tmpl != nil {
		item.Text = tmpl.Text
		item.Ping = tmpl.Ping
		item.Center = tmpl.Center
	}
	if item.Text == nil {
		item.Text = text.Static("{name}")
	}
	return item
}
