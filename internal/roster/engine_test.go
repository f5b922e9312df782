package roster

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/jask/rostertab/internal/scheduler"
	"github.com/jask/rostertab/internal/text"
)

func display(id string, weight int, eligible bool) *Display {
	d := &Display{
		ID:     id,
		Weight: weight,
		Columns: map[int]*Column{
			1: {ID: id + "-col", Capacity: 4, PageInterval: -1, Source: NewStaticSource(TextItem(id))},
		},
	}
	if !eligible {
		d.Eligible = func(Viewer) bool { return false }
	}
	return d
}

func TestSelectHighestEligibleWeight(t *testing.T) {
	reg := &Registry{Displays: map[string]*Display{
		"low":    display("low", 5, true),
		"high":   display("high", 20, true),
		"hidden": display("hidden", 10, false),
	}}
	v := member("viewer")
	require.Equal(t, "high", reg.Select(v, "default").ID)

	reg = &Registry{Displays: map[string]*Display{
		"a":       display("a", 5, false),
		"b":       display("b", 20, false),
		"default": display("default", 0, false),
	}}
	require.Equal(t, "default", reg.Select(v, "default").ID)
	require.Nil(t, reg.Select(v, "missing"))
}

func TestSelectTieBreaksByID(t *testing.T) {
	reg := &Registry{Displays: map[string]*Display{
		"beta":  display("beta", 7, true),
		"alpha": display("alpha", 7, true),
		"gamma": display("gamma", 7, true),
	}}
	for i := 0; i < 20; i++ {
		require.Equal(t, "alpha", reg.Select(member("v"), "").ID)
	}
}

func TestSelectByPermission(t *testing.T) {
	staff := display("staff", 10, true)
	staff.Eligible = RequirePermission("rostertab.staff")
	reg := &Registry{Displays: map[string]*Display{"staff": staff, "default": display("default", 1, true)}}

	require.Equal(t, "default", reg.Select(member("player"), "default").ID)
	require.Equal(t, "staff", reg.Select(member("mod", "rostertab.staff"), "default").ID)
}

func newTestEngine(t *testing.T, reg *Registry) (*Engine, *recorder) {
	t.Helper()
	rec := newRecorder()
	e, err := NewEngine(reg, Options{Sender: rec, Clock: &scheduler.ManualClock{}, DefaultDisplay: "default"})
	require.NoError(t, err)
	return e, rec
}

func TestNewEngineValidatesOptions(t *testing.T) {
	_, err := NewEngine(nil, Options{Sender: newRecorder(), Clock: &scheduler.ManualClock{}})
	require.Error(t, err)
	_, err = NewEngine(&Registry{}, Options{Clock: &scheduler.ManualClock{}})
	require.Error(t, err)
	_, err = NewEngine(&Registry{}, Options{Sender: newRecorder()})
	require.Error(t, err)
}

func TestJoinSendsPlaceholderRowsForEveryColumn(t *testing.T) {
	d := display("default", 1, true)
	d.Columns[2] = &Column{ID: "second", Capacity: 6, PageInterval: -1, Source: NewStaticSource()}
	e, rec := newTestEngine(t, &Registry{Displays: map[string]*Display{"default": d}})

	v := member("viewer")
	require.NoError(t, e.Join(v))
	add, ok := rec.last("add")
	require.True(t, ok)
	require.Equal(t, 10, add.count)

	in, ok := e.Instance(v.ID())
	require.True(t, ok)
	seen := make(map[uuid.UUID]bool)
	for _, id := range in.Identities() {
		require.False(t, seen[id.ID])
		seen[id.ID] = true
	}
	require.Len(t, seen, 10)
}

func TestJoinWithoutDisplay(t *testing.T) {
	e, _ := newTestEngine(t, &Registry{Displays: map[string]*Display{"x": display("x", 1, false)}})
	err := e.Join(member("viewer"))
	require.ErrorIs(t, err, ErrNoDisplay)
	require.Empty(t, e.Viewers())
}

func TestJoinRejectsOversizedColumn(t *testing.T) {
	d := display("default", 1, true)
	d.Columns[1].Capacity = MaxRows + 1
	e, _ := newTestEngine(t, &Registry{Displays: map[string]*Display{"default": d}})
	require.ErrorIs(t, e.Join(member("viewer")), ErrCoordinateOutOfRange)
}

func TestQuitStopsRendering(t *testing.T) {
	e, rec := newTestEngine(t, &Registry{Displays: map[string]*Display{"default": display("default", 1, true)}})
	a, b := member("a"), member("b")
	require.NoError(t, e.Join(a))
	require.NoError(t, e.Join(b))
	require.Len(t, e.Viewers(), 2)

	require.NoError(t, e.Tick(t.Context()))
	before := rec.countFor("text", a.ID())
	require.Equal(t, 4, before)

	e.Quit(a.ID())
	require.NoError(t, e.Tick(t.Context()))
	require.Equal(t, before, rec.countFor("text", a.ID()))
	require.Equal(t, 8, rec.countFor("text", b.ID()))
}

func TestHeaderFooterAreJoinedAndAdvanced(t *testing.T) {
	clock := &scheduler.ManualClock{}
	anim, err := text.NewFrames(clock, 1, "&aone", "&btwo")
	require.NoError(t, err)
	d := display("default", 1, true)
	d.Header = []text.Dynamic{text.Static("Welcome {name}"), anim}
	d.Footer = []text.Dynamic{text.Static("bye")}

	rec := newRecorder()
	e, err := NewEngine(&Registry{Displays: map[string]*Display{"default": d}}, Options{
		Sender:         rec,
		Clock:          clock,
		DefaultDisplay: "default",
		Vars:           PopulationVars{},
	})
	require.NoError(t, err)
	v := member("alice")
	require.NoError(t, e.Join(v))

	require.NoError(t, e.Tick(t.Context()))
	require.Equal(t, "Welcome alice\n§aone|bye", rec.header[v.ID()])

	// The frame shown in a pass is the one current before it advances.
	clock.Advance(1)
	require.NoError(t, e.Tick(t.Context()))
	require.Equal(t, "Welcome alice\n§aone|bye", rec.header[v.ID()])
	require.NoError(t, e.Tick(t.Context()))
	require.Equal(t, "Welcome alice\n§btwo|bye", rec.header[v.ID()])
}

func TestGameModeFansOutToAllViewers(t *testing.T) {
	e, rec := newTestEngine(t, &Registry{Displays: map[string]*Display{"default": display("default", 1, true)}})
	require.NoError(t, e.GameModeChanged(uuid.New(), Creative))
	require.Zero(t, rec.count("mode"))

	for _, n := range []string{"a", "b", "c"} {
		require.NoError(t, e.Join(member(n)))
	}
	subject := member("a").ID()
	require.NoError(t, e.GameModeChanged(subject, Creative))
	c, ok := rec.last("mode")
	require.True(t, ok)
	require.Equal(t, 3, c.count)
	require.Equal(t, subject, c.viewer)
	require.Equal(t, "creative", c.text)
}

func TestReselectSwitchesDisplay(t *testing.T) {
	staff := display("staff", 10, true)
	staff.Eligible = RequirePermission("rostertab.staff")
	e, rec := newTestEngine(t, &Registry{Displays: map[string]*Display{"staff": staff, "default": display("default", 1, true)}})

	v := member("viewer")
	require.NoError(t, e.Join(v))
	in, _ := e.Instance(v.ID())
	require.Equal(t, "default", in.Display().ID)

	require.NoError(t, e.Reselect(v))
	require.Zero(t, rec.count("remove"))

	v.Permissions = append(v.Permissions, "rostertab.staff")
	require.NoError(t, e.Reselect(v))
	in, _ = e.Instance(v.ID())
	require.Equal(t, "staff", in.Display().ID)
	require.Equal(t, 1, rec.count("remove"))
	require.Equal(t, 2, rec.count("add"))
}

func TestReloadRebuildsInstances(t *testing.T) {
	e, rec := newTestEngine(t, &Registry{Displays: map[string]*Display{"default": display("default", 1, true)}})
	v := member("viewer")
	require.NoError(t, e.Join(v))
	require.NoError(t, e.Tick(t.Context()))
	require.Equal(t, "default", rec.text(v, 1, 1))

	next := display("default", 1, true)
	next.Columns[1].Source = NewStaticSource(TextItem("reloaded"))
	require.NoError(t, e.Reload(&Registry{Displays: map[string]*Display{"default": next}}))
	require.Equal(t, 1, rec.count("remove"))
	require.Equal(t, 2, rec.count("add"))

	require.NoError(t, e.Tick(t.Context()))
	require.Equal(t, "reloaded", rec.text(v, 1, 1))
}

// quittingSender quits the viewer while its old rows are being removed, as a
// disconnect arriving mid-reload would.
type quittingSender struct {
	*recorder
	engine *Engine
}

func (s *quittingSender) RemoveEntries(v Viewer, ids []Identity) error {
	s.engine.Quit(v.ID())
	return s.recorder.RemoveEntries(v, ids)
}

func newQuittingEngine(t *testing.T, reg *Registry) (*Engine, *recorder) {
	t.Helper()
	rec := newRecorder()
	s := &quittingSender{recorder: rec}
	e, err := NewEngine(reg, Options{Sender: s, Clock: &scheduler.ManualClock{}, DefaultDisplay: "default"})
	require.NoError(t, err)
	s.engine = e
	return e, rec
}

func TestReloadDoesNotRestoreViewerThatQuit(t *testing.T) {
	e, rec := newQuittingEngine(t, &Registry{Displays: map[string]*Display{"default": display("default", 1, true)}})
	v := member("viewer")
	require.NoError(t, e.Join(v))

	require.NoError(t, e.Reload(&Registry{Displays: map[string]*Display{"default": display("default", 1, true)}}))
	_, ok := e.Instance(v.ID())
	require.False(t, ok)
	require.Empty(t, e.Viewers())
	require.Equal(t, 1, rec.countFor("add", v.ID()))

	require.NoError(t, e.Tick(t.Context()))
	require.Zero(t, rec.countFor("text", v.ID()))
}

func TestReselectDoesNotRestoreViewerThatQuit(t *testing.T) {
	staff := display("staff", 10, true)
	staff.Eligible = RequirePermission("rostertab.staff")
	e, rec := newQuittingEngine(t, &Registry{Displays: map[string]*Display{"staff": staff, "default": display("default", 1, true)}})
	v := member("viewer")
	require.NoError(t, e.Join(v))

	v.Permissions = append(v.Permissions, "rostertab.staff")
	require.NoError(t, e.Reselect(v))
	_, ok := e.Instance(v.ID())
	require.False(t, ok)
	require.Equal(t, 1, rec.countFor("add", v.ID()))
}

func TestReloadRejoinsWhenRemoveFails(t *testing.T) {
	e, rec := newTestEngine(t, &Registry{Displays: map[string]*Display{"default": display("default", 1, true)}})
	v := member("viewer")
	require.NoError(t, e.Join(v))

	next := display("default", 1, true)
	next.Columns[1].Source = NewStaticSource(TextItem("reloaded"))
	rec.failOn = "remove"
	require.NoError(t, e.Reload(&Registry{Displays: map[string]*Display{"default": next}}))
	rec.failOn = ""

	in, ok := e.Instance(v.ID())
	require.True(t, ok)
	require.Same(t, next, in.Display())
	require.Equal(t, 2, rec.count("add"))

	require.NoError(t, e.Tick(t.Context()))
	require.Equal(t, "reloaded", rec.text(v, 1, 1))
}

func TestJoinAfterQuitDuringReload(t *testing.T) {
	e, rec := newQuittingEngine(t, &Registry{Displays: map[string]*Display{"default": display("default", 1, true)}})
	v := member("viewer")
	require.NoError(t, e.Join(v))
	require.NoError(t, e.Reload(&Registry{Displays: map[string]*Display{"default": display("default", 1, true)}}))

	require.NoError(t, e.Join(v))
	_, ok := e.Instance(v.ID())
	require.True(t, ok)
	require.NoError(t, e.Tick(t.Context()))
	require.Equal(t, "default", rec.text(v, 1, 1))
}

func TestSendFailureIsContainedPerColumn(t *testing.T) {
	e, rec := newTestEngine(t, &Registry{Displays: map[string]*Display{"default": display("default", 1, true)}})
	v := member("viewer")
	require.NoError(t, e.Join(v))

	rec.failOn = "ping"
	require.NoError(t, e.Tick(t.Context()))
	require.Equal(t, "default", rec.text(v, 1, 1))
	require.Equal(t, "", rec.text(v, 1, 2))
}

func TestPanickingSourceIsRecovered(t *testing.T) {
	d := display("default", 1, true)
	d.Columns[2] = &Column{ID: "bad", Capacity: 2, PageInterval: -1, Source: NewStaticSource(&Item{})}
	e, rec := newTestEngine(t, &Registry{Displays: map[string]*Display{"default": d}})
	v := member("viewer")
	require.NoError(t, e.Join(v))

	require.NotPanics(t, func() { require.NoError(t, e.Tick(t.Context())) })
	require.Equal(t, "default", rec.text(v, 1, 1))
}
