package roster

import "github.com/jask/rostertab/internal/text"

// Item is one renderable cell.
type Item struct {
	Text   text.Dynamic
	Avatar *Avatar
	Ping   Ping
	Center bool
	// Filter hides the item from viewers it rejects. Nil shows it to everyone.
	Filter Predicate
	// Subject, when set, is the viewer placeholders are resolved against
	// instead of the viewer being rendered for.
	Subject Viewer
}

// TextItem is a static, uncentred item without avatar.
func TextItem(s string) *Item {
	return &Item{Text: text.Static(s)}
}

func (i *Item) VisibleTo(v Viewer) bool {
	return i.Filter == nil || i.Filter(v)
}

// AvatarKey is the key of the item's avatar, empty when it has none.
func (i *Item) AvatarKey() string {
	return i.Avatar.Key()
}
