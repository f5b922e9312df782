package roster

import "slices"

// Source produces the ordered items of a column for one render pass.
type Source interface {
	Produce(slot int, viewer Viewer, titles bool) ([]*Item, error)
}

// StaticSource returns the same configured items every pass.
type StaticSource struct {
	items []*Item
}

func NewStaticSource(items ...*Item) *StaticSource {
	return &StaticSource{items: slices.Clone(items)}
}

func (s *StaticSource) Produce(int, Viewer, bool) ([]*Item, error) {
	return slices.Clone(s.items), nil
}

func (s *StaticSource) Len() int { return len(s.items) }
