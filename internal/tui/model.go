// Package tui previews a roster display in the terminal, rendering the grid a
// remote client would show for one local viewer.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/google/uuid"

	"github.com/jask/rostertab/internal/roster"
	"github.com/jask/rostertab/internal/scheduler"
)

const (
	defaultCellWidth = 24
	minPeriod        = 10 * time.Millisecond
	maxPeriod        = 2 * time.Second
)

type keyMap struct {
	Add    key.Binding
	Remove key.Binding
	Group  key.Binding
	Faster key.Binding
	Slower key.Binding
	Pause  key.Binding
	Quit   key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Add, k.Remove, k.Group, k.Faster, k.Pause, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Add, k.Remove, k.Group}, {k.Faster, k.Slower, k.Pause, k.Quit}}
}

func newKeyMap() keyMap {
	return keyMap{
		Add:    key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add member")),
		Remove: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "remove member")),
		Group:  key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "cycle group")),
		Faster: key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+/-", "speed")),
		Slower: key.NewBinding(key.WithKeys("-", "_"), key.WithHelp("+/-", "speed")),
		Pause:  key.NewBinding(key.WithKeys("p", " "), key.WithHelp("p", "pause")),
		Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

type Options struct {
	Engine     *roster.Engine
	Scheduler  *scheduler.Scheduler
	Population *roster.MemberSet
	Grid       *Grid
	// Viewer must already have joined Engine with Grid as its sender.
	Viewer    roster.Viewer
	CellWidth int
	// Members is how many simulated members exist before the first frame.
	Members int
}

type tickMsg time.Time

// Model is the bubbletea model of the preview.
type Model struct {
	ctx    context.Context
	engine *roster.Engine
	sched  *scheduler.Scheduler
	pop    *roster.MemberSet
	grid   *Grid
	viewer roster.Viewer

	keys      keyMap
	help      help.Model
	cellWidth int
	paused    bool
	sims      []uuid.UUID
	groupIdx  map[uuid.UUID]int
	nextSim   int
	status    string
}

func New(ctx context.Context, opts Options) *Model {
	w := opts.CellWidth
	if w <= 0 {
		w = defaultCellWidth
	}
	m := &Model{
		ctx:       ctx,
		engine:    opts.Engine,
		sched:     opts.Scheduler,
		pop:       opts.Population,
		grid:      opts.Grid,
		viewer:    opts.Viewer,
		keys:      newKeyMap(),
		help:      help.New(),
		cellWidth: w,
		groupIdx:  make(map[uuid.UUID]int),
	}
	for range opts.Members {
		m.addMember()
	}
	m.status = ""
	return m
}

func (m *Model) Init() tea.Cmd {
	return m.tick()
}

func (m *Model) tick() tea.Cmd {
	return tea.Tick(m.sched.Period(), func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil
	case tickMsg:
		if !m.paused {
			m.sched.Step(m.ctx)
		}
		return m, m.tick()
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Add):
		m.addMember()
	case key.Matches(msg, m.keys.Remove):
		m.removeMember()
	case key.Matches(msg, m.keys.Group):
		m.cycleGroup()
	case key.Matches(msg, m.keys.Faster):
		m.setPeriod(m.sched.Period() / 2)
	case key.Matches(msg, m.keys.Slower):
		m.setPeriod(m.sched.Period() * 2)
	case key.Matches(msg, m.keys.Pause):
		m.paused = !m.paused
		if m.paused {
			m.status = "paused"
		} else {
			m.status = "resumed"
		}
	}
	return m, nil
}

func (m *Model) addMember() {
	m.nextSim++
	name := fmt.Sprintf("sim%02d", m.nextSim)
	id := uuid.NewSHA1(uuid.NameSpaceOID, []byte("rostertab:sim:"+name))
	m.pop.Put(&roster.Member{UUID: id, Username: name})
	m.sims = append(m.sims, id)
	m.status = "added " + name
}

func (m *Model) removeMember() {
	if len(m.sims) == 0 {
		m.status = "no simulated members"
		return
	}
	id := m.sims[len(m.sims)-1]
	m.sims = m.sims[:len(m.sims)-1]
	m.pop.Remove(id)
	delete(m.groupIdx, id)
	m.status = "removed a member"
}

// cycleGroup moves the newest simulated member to the next group.
func (m *Model) cycleGroup() {
	if len(m.sims) == 0 {
		m.status = "add a member first"
		return
	}
	groups := m.engine.Registry().Groups.All()
	if len(groups) == 0 {
		m.status = "no groups defined"
		return
	}
	id := m.sims[len(m.sims)-1]
	idx := m.groupIdx[id] % len(groups)
	g := groups[idx]
	m.groupIdx[id] = idx + 1
	m.pop.Update(id, func(mem *roster.Member) {
		mem.Permissions = nil
		if g.Permission != "" {
			mem.Permissions = []string{g.Permission}
		}
	})
	m.status = "group " + g.ID
}

func (m *Model) setPeriod(d time.Duration) {
	d = min(max(d, minPeriod), maxPeriod)
	m.sched.SetPeriod(d)
	m.status = "period " + d.String()
}

func (m *Model) View() string {
	v := m.grid.view()
	var b strings.Builder

	if v.header != "" {
		b.WriteString(m.lines(v.header))
		b.WriteByte('\n')
	}

	cols := make([]string, 0, len(v.columns))
	for _, col := range v.columns {
		rows := make([]string, 0, len(v.rows[col]))
		for _, c := range v.rows[col] {
			rows = append(rows, m.cell(c))
		}
		cols = append(cols, columnStyle.Render(strings.Join(rows, "\n")))
	}
	if len(cols) == 0 {
		b.WriteString(emptyStyle.Render("nothing rendered yet"))
	} else {
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cols...))
	}
	b.WriteByte('\n')

	if v.footer != "" {
		b.WriteString(m.lines(v.footer))
		b.WriteByte('\n')
	}
	b.WriteString(footerStyle.Render(m.statusLine()))
	b.WriteByte('\n')
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m *Model) lines(s string) string {
	parts := strings.Split(s, "\n")
	for i, p := range parts {
		parts[i] = styled(p)
	}
	return titleStyle.Render(strings.Join(parts, "\n"))
}

func (m *Model) cell(c cell) string {
	mark := "  "
	if c.avatar != "" {
		mark = avatarStyle.Render("◆ ")
	}
	body := ansi.Truncate(styled(c.text), m.cellWidth, "…")
	if pad := m.cellWidth - ansi.StringWidth(body); pad > 0 {
		body += strings.Repeat(" ", pad)
	}
	return mark + body + " " + pingBars(c.ping)
}

func pingBars(p roster.Ping) string {
	n := 5 - int(p)
	if p == roster.PingNone || n < 0 {
		return statusStyle.Render("✕    ")
	}
	bars := strings.Repeat("▮", n) + strings.Repeat(" ", 5-n)
	if s, ok := pingStyles[n]; ok {
		return s.Render(bars)
	}
	return bars
}

func (m *Model) statusLine() string {
	parts := []string{
		fmt.Sprintf("members %d", m.pop.Len()),
		fmt.Sprintf("tick %d", m.sched.Ticks()),
		"period " + m.sched.Period().String(),
	}
	if in, ok := m.engine.Instance(m.viewer.ID()); ok {
		snap := in.Snapshot()
		parts = append(parts, "display "+snap.Display)
		for _, c := range snap.Columns {
			parts = append(parts, fmt.Sprintf("%d:%s %d/%d", c.Slot, c.Column, c.Cursor, c.Items))
		}
	}
	if m.paused {
		parts = append(parts, pausedStyle.Render("paused"))
	}
	if m.status != "" {
		parts = append(parts, m.status)
	}
	return strings.Join(parts, " · ")
}
