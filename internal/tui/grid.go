package tui

import (
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/jask/rostertab/internal/roster"
)

type cell struct {
	text   string
	ping   roster.Ping
	avatar string
}

type coord struct{ column, row int }

// Grid is a roster.Sender that keeps what one local client would display.
type Grid struct {
	mu     sync.Mutex
	viewer uuid.UUID
	cells  map[coord]cell
	header string
	footer string
	modes  map[uuid.UUID]roster.GameMode
	sends  int
}

func NewGrid(viewer uuid.UUID) *Grid {
	return &Grid{
		viewer: viewer,
		cells:  make(map[coord]cell),
		modes:  make(map[uuid.UUID]roster.GameMode),
	}
}

func (g *Grid) update(v roster.Viewer, id roster.Identity, fn func(*cell)) error {
	if v.ID() != g.viewer {
		return nil
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	k := coord{id.Column, id.Row}
	c := g.cells[k]
	fn(&c)
	g.cells[k] = c
	g.sends++
	return nil
}

func (g *Grid) AddEntries(v roster.Viewer, entries []roster.Entry) error {
	if v.ID() != g.viewer {
		return nil
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, e := range entries {
		c := cell{text: e.Text, ping: e.Ping}
		if e.Avatar != nil {
			c.avatar = e.Avatar.Name
		}
		g.cells[coord{e.Identity.Column, e.Identity.Row}] = c
	}
	g.sends++
	return nil
}

func (g *Grid) RemoveEntries(v roster.Viewer, ids []roster.Identity) error {
	if v.ID() != g.viewer {
		return nil
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, id := range ids {
		delete(g.cells, coord{id.Column, id.Row})
	}
	g.sends++
	return nil
}

func (g *Grid) SetText(v roster.Viewer, id roster.Identity, s string) error {
	return g.update(v, id, func(c *cell) { c.text = s })
}

func (g *Grid) SetPing(v roster.Viewer, id roster.Identity, p roster.Ping) error {
	return g.update(v, id, func(c *cell) { c.ping = p })
}

func (g *Grid) SetAvatar(v roster.Viewer, id roster.Identity, a roster.Avatar) error {
	return g.update(v, id, func(c *cell) { c.avatar = a.Name })
}

func (g *Grid) HideAvatar(v roster.Viewer, id roster.Identity) error {
	return g.update(v, id, func(c *cell) { c.avatar = "" })
}

func (g *Grid) SetHeaderFooter(v roster.Viewer, header, footer string) error {
	if v.ID() != g.viewer {
		return nil
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.header, g.footer = header, footer
	g.sends++
	return nil
}

func (g *Grid) SetGameMode(_ []roster.Viewer, subject uuid.UUID, mode roster.GameMode) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.modes[subject] = mode
	g.sends++
	return nil
}

// gridView is a consistent copy of the grid for rendering.
type gridView struct {
	header, footer string
	columns        []int
	rows           map[int][]cell
	sends          int
}

func (g *Grid) view() gridView {
	g.mu.Lock()
	defer g.mu.Unlock()
	v := gridView{header: g.header, footer: g.footer, rows: make(map[int][]cell), sends: g.sends}
	height := make(map[int]int)
	for k := range g.cells {
		height[k.column] = max(height[k.column], k.row)
	}
	for col, h := range height {
		v.columns = append(v.columns, col)
		rows := make([]cell, h)
		for row := 1; row <= h; row++ {
			rows[row-1] = g.cells[coord{col, row}]
		}
		v.rows[col] = rows
	}
	sort.Ints(v.columns)
	return v
}

// Text returns the text shown at a cell.
func (g *Grid) Text(column, row int) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.cells[coord{column, row}].text
}

// Mode returns the last game mode mirrored for subject.
func (g *Grid) Mode(subject uuid.UUID) (roster.GameMode, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	m, ok := g.modes[subject]
	return m, ok
}
