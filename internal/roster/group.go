package roster

import "sort"

// Group is a rank resolved from permissions. Its weight orders population
// columns and its Item, when set, replaces the column's element template.
type Group struct {
	ID         string
	Permission string
	Weight     int
	Item       *Item
	Tag        string
}

// Groups resolves the highest ranked group a viewer belongs to.
type Groups struct {
	list []*Group
}

// NewGroups orders groups by descending weight, ties by id.
func NewGroups(groups ...*Group) *Groups {
	list := make([]*Group, 0, len(groups))
	for _, g := range groups {
		if g != nil {
			list = append(list, g)
		}
	}
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].Weight != list[j].Weight {
			return list[i].Weight > list[j].Weight
		}
		return list[i].ID < list[j].ID
	})
	return &Groups{list: list}
}

// Resolve returns the heaviest group whose permission v holds, or nil.
func (g *Groups) Resolve(v Viewer) *Group {
	if g == nil {
		return nil
	}
	for _, grp := range g.list {
		if grp.Permission == "" || v.HasPermission(grp.Permission) {
			return grp
		}
	}
	return nil
}

// All returns the groups in resolution order.
func (g *Groups) All() []*Group {
	if g == nil {
		return nil
	}
	return append([]*Group(nil), g.list...)
}
