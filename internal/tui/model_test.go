package tui

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/jask/rostertab/internal/roster"
	"github.com/jask/rostertab/internal/scheduler"
)

type fixture struct {
	model  *Model
	grid   *Grid
	sched  *scheduler.Scheduler
	pop    *roster.MemberSet
	engine *roster.Engine
	viewer *roster.Member
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	pop := roster.NewMemberSet()
	sched := scheduler.New(scheduler.WithPeriod(100 * time.Millisecond))
	viewer := &roster.Member{UUID: uuid.New(), Username: "preview"}
	pop.Put(viewer)

	reg := &roster.Registry{
		Displays: map[string]*roster.Display{
			"main": {
				ID:           "main",
				ElementWidth: 50,
				Columns: map[int]*roster.Column{
					1: {ID: "who", Capacity: 4, PageInterval: -1, Source: &roster.PopulationSource{Population: pop}},
				},
			},
		},
		Groups: roster.NewGroups(
			&roster.Group{ID: "vip", Permission: "rank.vip", Weight: 10},
			&roster.Group{ID: "default"},
		),
	}
	grid := NewGrid(viewer.UUID)
	eng, err := roster.NewEngine(reg, roster.Options{
		Sender:         grid,
		Vars:           roster.PopulationVars{Population: pop},
		Clock:          sched,
		DefaultDisplay: "main",
	})
	require.NoError(t, err)
	require.NoError(t, sched.Register("render", scheduler.Tick, eng.Tick))
	require.NoError(t, eng.Join(viewer))

	m := New(context.Background(), Options{
		Engine:     eng,
		Scheduler:  sched,
		Population: pop,
		Grid:       grid,
		Viewer:     viewer,
		CellWidth:  16,
	})
	return &fixture{model: m, grid: grid, sched: sched, pop: pop, engine: eng, viewer: viewer}
}

func press(m *Model, k string) {
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)})
}

func TestStyledStripsToPlainText(t *testing.T) {
	require.Equal(t, "red plain", ansi.Strip(styled("§cred§r plain")))
	require.Equal(t, "bold", ansi.Strip(styled("§l§obold")))
	require.Equal(t, "hex", ansi.Strip(styled("§x§f§f§0§0§a§ahex")))
	require.Equal(t, "dangling§", ansi.Strip(styled("dangling§")))
}

func TestHexColour(t *testing.T) {
	hex, ok := hexColour([]rune("§1§2§3§a§b§c"), 0)
	require.True(t, ok)
	require.Equal(t, "#123abc", hex)

	_, ok = hexColour([]rune("§1§2§3"), 0)
	require.False(t, ok)
	_, ok = hexColour([]rune("§1§2§3§a§b§z"), 0)
	require.False(t, ok)
}

func TestGridIgnoresOtherViewers(t *testing.T) {
	me := uuid.New()
	g := NewGrid(me)
	id, err := roster.IdentityAt(1, 1)
	require.NoError(t, err)

	other := &roster.Member{UUID: uuid.New(), Username: "other"}
	require.NoError(t, g.SetText(other, id, "nope"))
	require.Empty(t, g.Text(1, 1))

	self := &roster.Member{UUID: me, Username: "me"}
	require.NoError(t, g.AddEntries(self, []roster.Entry{{Identity: id, Text: "hi"}}))
	require.NoError(t, g.SetText(self, id, "hello"))
	require.Equal(t, "hello", g.Text(1, 1))

	require.NoError(t, g.SetGameMode(nil, other.UUID, roster.Spectator))
	mode, ok := g.Mode(other.UUID)
	require.True(t, ok)
	require.Equal(t, roster.Spectator, mode)

	require.NoError(t, g.RemoveEntries(self, []roster.Identity{id}))
	require.Empty(t, g.Text(1, 1))
}

func TestTickRendersMembers(t *testing.T) {
	f := newFixture(t)
	press(f.model, "a")
	press(f.model, "a")

	f.model.Update(tickMsg(time.Now()))
	require.Equal(t, int64(1), f.sched.Ticks())
	require.Equal(t, "preview", f.grid.Text(1, 1))
	require.Equal(t, "sim01", f.grid.Text(1, 2))
	require.Equal(t, "sim02", f.grid.Text(1, 3))

	view := ansi.Strip(f.model.View())
	require.Contains(t, view, "sim02")
	require.Contains(t, view, "members 3")
	require.Contains(t, view, "display main")
}

func TestRemoveAndPause(t *testing.T) {
	f := newFixture(t)
	press(f.model, "a")
	press(f.model, "d")
	require.Equal(t, 1, f.pop.Len())

	press(f.model, "d")
	require.Equal(t, "no simulated members", f.model.status)

	press(f.model, "p")
	f.model.Update(tickMsg(time.Now()))
	require.Equal(t, int64(0), f.sched.Ticks())
	require.Contains(t, ansi.Strip(f.model.View()), "paused")

	press(f.model, "p")
	f.model.Update(tickMsg(time.Now()))
	require.Equal(t, int64(1), f.sched.Ticks())
}

func TestCycleGroupGrantsPermission(t *testing.T) {
	f := newFixture(t)
	press(f.model, "g")
	require.Equal(t, "add a member first", f.model.status)

	press(f.model, "a")
	press(f.model, "g")
	sim := f.model.sims[0]
	m, ok := f.pop.Member(sim)
	require.True(t, ok)
	require.True(t, m.HasPermission("rank.vip"))

	press(f.model, "g")
	m, _ = f.pop.Member(sim)
	require.Empty(t, m.Permissions)
}

func TestSpeedIsClamped(t *testing.T) {
	f := newFixture(t)
	for range 10 {
		press(f.model, "+")
	}
	require.Equal(t, minPeriod, f.sched.Period())
	for range 10 {
		press(f.model, "-")
	}
	require.Equal(t, maxPeriod, f.sched.Period())
}

func TestQuit(t *testing.T) {
	f := newFixture(t)
	_, cmd := f.model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	require.IsType(t, tea.QuitMsg{}, cmd())
}

func TestPingBars(t *testing.T) {
	require.Equal(t, "▮▮▮▮▮", ansi.Strip(pingBars(roster.PingFive)))
	require.Equal(t, "▮    ", ansi.Strip(pingBars(roster.PingOne)))
	require.Equal(t, "✕    ", ansi.Strip(pingBars(roster.PingNone)))
}

func TestInitialMembers(t *testing.T) {
	f := newFixture(t)
	m := New(context.Background(), Options{
		Engine:     f.engine,
		Scheduler:  f.sched,
		Population: f.pop,
		Grid:       f.grid,
		Viewer:     f.viewer,
		Members:    3,
	})
	require.Len(t, m.sims, 3)
	require.Equal(t, 4, f.pop.Len())
	require.Empty(t, m.status)
	require.Equal(t, defaultCellWidth, m.cellWidth)
}
