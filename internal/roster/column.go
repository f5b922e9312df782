package roster

import (
	"fmt"
	"strings"

	"github.com/jask/rostertab/internal/scheduler"
	"github.com/jask/rostertab/internal/text"
)

// Column defaults.
const (
	DefaultCapacity     = 20
	DefaultPageInterval = 100
	DefaultMaxPages     = 5
	DefaultPageText     = "&7{current_page}&8/&7{max_page}"
)

// Column is a configured, vertically addressed group of rows.
type Column struct {
	ID       string
	Capacity int
	// PageInterval is the number of ticks a page stays up. Negative never turns.
	PageInterval int64
	Title        *Item
	Source       Source
	Paging       bool
	// MaxPages caps the number of pages; 0 means no cap.
	MaxPages int
	// PageItem replaces the default page indicator.
	PageItem *Item
}

// ColumnState is the per-viewer render state of one column.
type ColumnState struct {
	column   *Column
	items    []*Item
	cursor   int
	interval *scheduler.PresetCooldown
	// avatars holds, per row, the key of the last avatar sent there.
	avatars map[int]string
}

func newColumnState(c *Column, clock scheduler.Clock) *ColumnState {
	return &ColumnState{
		column:   c,
		interval: scheduler.NewPresetCooldown(clock, c.PageInterval),
		avatars:  make(map[int]string),
	}
}

// Cursor is the index of the first item on the current page.
func (s *ColumnState) Cursor() int { return s.cursor }

// Items are the items produced by the last pass.
func (s *ColumnState) Items() []*Item { return s.items }

// pass carries what one column render needs from its display instance.
type pass struct {
	viewer   Viewer
	slot     int
	titles   bool
	width    int
	rows     []Identity
	sender   Sender
	vars     Substituter
	pageText string
}

// page describes the window shown this pass.
type page struct {
	start, end    int
	current, last int
	paging        bool
	turn          bool
	window        int
}

// layout computes the page window for n items. It reports false when the
// cursor points past the last page, in which case the pass is skipped.
func (s *ColumnState) layout(n int, titles bool) (page, bool) {
	c := s.column
	room := c.Capacity
	if titles {
		room -= 2
	}
	if room < 0 {
		room = 0
	}

	p := page{current: 1, last: 1, window: room}
	if c.Paging && n > room && room > 1 {
		p.paging = true
		p.window = room - 1
		p.last = (n + p.window - 1) / p.window
		if c.MaxPages > 0 && p.last > c.MaxPages {
			p.last = c.MaxPages
		}
		p.current = s.cursor/p.window + 1
		if p.current > p.last {
			return p, false
		}
		p.turn = s.interval.Ready()
	} else {
		s.cursor = 0
	}

	p.start = min(max(s.cursor, 0), n)
	p.end = min(n, p.start+p.window)
	return p, true
}

// Render runs one pass: produce, paginate, emit every row, then advance the
// text of the rows that were shown.
func (s *ColumnState) Render(p pass) error {
	c := s.column
	produced, err := c.Source.Produce(p.slot, p.viewer, p.titles)
	if err != nil {
		return fmt.Errorf("column %s: %w", c.ID, err)
	}
	items := make([]*Item, 0, len(produced))
	for _, it := range produced {
		if it != nil && it.VisibleTo(p.viewer) {
			items = append(items, it)
		}
	}
	s.items = items

	pg, ok := s.layout(len(items), p.titles)
	if !ok {
		s.cursor = 0
		return nil
	}

	rows := make([]*Item, 0, c.Capacity)
	lead := 0
	if p.titles {
		lead = 2
		title := c.Title
		if title == nil {
			title = TextItem("")
		}
		rows = append(rows, title, TextItem(strings.Repeat(" ", max(p.width, 0))))
	}
	rows = append(rows, items[pg.start:pg.end]...)
	if pg.paging {
		indicator := c.PageItem
		if indicator == nil {
			indicator = TextItem(p.pageText)
		}
		rows = append(rows, indicator)
	}
	entries := lead + pg.end - pg.start

	vars := text.PageVars(pg.current, pg.last)
	for row := 1; row <= c.Capacity; row++ {
		id := p.rows[row-1]
		if row-1 < len(rows) {
			ping := row > lead && row <= entries
			if err := s.emit(p, id, row, rows[row-1], vars, ping); err != nil {
				return fmt.Errorf("column %s row %d: %w", c.ID, row, err)
			}
			continue
		}
		if err := p.sender.SetText(p.viewer, id, ""); err != nil {
			return fmt.Errorf("column %s row %d: %w", c.ID, row, err)
		}
		if _, ok := s.avatars[row]; ok {
			if err := p.sender.HideAvatar(p.viewer, id); err != nil {
				return fmt.Errorf("column %s row %d: %w", c.ID, row, err)
			}
			delete(s.avatars, row)
		}
	}

	advanced := make(map[text.Dynamic]bool, len(rows))
	for _, it := range rows {
		if it.Text == nil || advanced[it.Text] {
			continue
		}
		advanced[it.Text] = true
		it.Text.Advance()
	}

	if pg.turn {
		s.interval.Restart()
		s.cursor += pg.window
		if s.cursor >= min(len(items), pg.last*pg.window) {
			s.cursor = 0
		}
	}
	return nil
}

// emit writes one row. Only rows holding a source item carry a ping; title,
// spacer and page indicator rows leave the client's ping untouched.
func (s *ColumnState) emit(p pass, id Identity, row int, it *Item, vars text.Vars, ping bool) error {
	subject := p.viewer
	if it.Subject != nil {
		subject = it.Subject
	}
	out := vars.Apply(text.Format(it.Text.Current()))
	out = p.vars.Substitute(subject, out)
	out = text.Trim(out, p.width)
	if it.Center {
		out = text.Center(out, p.width)
	}
	if err := p.sender.SetText(p.viewer, id, out); err != nil {
		return err
	}
	if ping {
		if err := p.sender.SetPing(p.viewer, id, it.Ping); err != nil {
			return err
		}
	}

	key := it.AvatarKey()
	cached, seen := s.avatars[row]
	switch {
	case key == "" && seen:
		if err := p.sender.HideAvatar(p.viewer, id); err != nil {
			return err
		}
		delete(s.avatars, row)
	case key != "" && (!seen || cached != key):
		if err := p.sender.SetAvatar(p.viewer, id, *it.Avatar); err != nil {
			return err
		}
		s.avatars[row] = key
	}
	return nil
}
