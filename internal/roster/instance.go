package roster

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jask/rostertab/internal/scheduler"
	"github.com/jask/rostertab/internal/text"
)

// Instance is the per-viewer rendering of a Display.
type Instance struct {
	viewer  Viewer
	display *Display
	slots   []int
	states  map[int]*ColumnState
	rows    map[int][]Identity
}

func newInstance(v Viewer, d *Display, clock scheduler.Clock) (*Instance, error) {
	in := &Instance{
		viewer:  v,
		display: d,
		slots:   d.Slots(),
		states:  make(map[int]*ColumnState, len(d.Columns)),
		rows:    make(map[int][]Identity, len(d.Columns)),
	}
	for _, slot := range in.slots {
		col := d.Columns[slot]
		if col.Capacity < 1 || col.Capacity > MaxRows {
			return nil, fmt.Errorf("display %s slot %d: capacity %d: %w", d.ID, slot, col.Capacity, ErrCoordinateOutOfRange)
		}
		ids := make([]Identity, 0, col.Capacity)
		for row := 1; row <= col.Capacity; row++ {
			id, err := IdentityAt(slot, row)
			if err != nil {
				return nil, fmt.Errorf("display %s: %w", d.ID, err)
			}
			ids = append(ids, id)
		}
		in.rows[slot] = ids
		in.states[slot] = newColumnState(col, clock)
	}
	return in, nil
}

func (in *Instance) Viewer() Viewer { return in.viewer }
func (in *Instance) Display() *Display { return in.display }

// Identities lists every synthetic identity of the instance, column by column.
func (in *Instance) Identities() []Identity {
	var out []Identity
	for _, slot := range in.slots {
		out = append(out, in.rows[slot]...)
	}
	return out
}

// InitialEntries is the placeholder population sent once when the instance
// is created, so the client has every row before content arrives.
func (in *Instance) InitialEntries() []Entry {
	ids := in.Identities()
	entries := make([]Entry, 0, len(ids))
	for _, id := range ids {
		entries = append(entries, Entry{Identity: id, Ping: PingFive, Mode: Survival})
	}
	return entries
}

// renderer holds what an instance needs from the engine for one pass.
type renderer struct {
	sender   Sender
	vars     Substituter
	pageText string
}

// Render sends header and footer, then renders every column. A failing
// column does not stop the others; all failures are returned joined.
func (in *Instance) Render(r renderer) error {
	var errs []error
	header := in.joinLines(in.display.Header, r.vars)
	footer := in.joinLines(in.display.Footer, r.vars)
	if err := r.sender.SetHeaderFooter(in.viewer, header, footer); err != nil {
		errs = append(errs, fmt.Errorf("header/footer: %w", err))
	}

	width := in.display.ElementWidth
	if width <= 0 {
		width = DefaultElementWidth
	}
	for _, slot := range in.slots {
		p := pass{
			viewer:   in.viewer,
			slot:     slot,
			titles:   in.display.ShowTitles,
			width:    width,
			rows:     in.rows[slot],
			sender:   r.sender,
			vars:     r.vars,
			pageText: r.pageText,
		}
		if err := renderColumn(in.states[slot], p); err != nil {
			errs = append(errs, fmt.Errorf("slot %d: %w", slot, err))
		}
	}
	return errors.Join(errs...)
}

func renderColumn(s *ColumnState, p pass) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("column %s panicked: %v", s.column.ID, r)
		}
	}()
	return s.Render(p)
}

func (in *Instance) joinLines(lines []text.Dynamic, vars Substituter) string {
	parts := make([]string, 0, len(lines))
	for _, l := range lines {
		parts = append(parts, text.Format(vars.Substitute(in.viewer, l.Current())))
		l.Advance()
	}
	return strings.Join(parts, "\n")
}

// Snapshot is a read-only view of an instance for status displays.
type Snapshot struct {
	Display string
	Columns []ColumnSnapshot
}

type ColumnSnapshot struct {
	Slot   int
	Column string
	Cursor int
	Items  int
}

func (in *Instance) Snapshot() Snapshot {
	snap := Snapshot{Display: in.display.ID}
	for _, slot := range in.slots {
		st := in.states[slot]
		snap.Columns = append(snap.Columns, ColumnSnapshot{
			Slot:   slot,
			Column: st.column.ID,
			Cursor: st.cursor,
			Items:  len(st.items),
		})
	}
	return snap
}
