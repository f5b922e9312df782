package roster

import (
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"
)

type cell struct{ col, row int }

type call struct {
	op     string
	viewer uuid.UUID
	cell   cell
	text   string
	avatar string
	count  int
}

// recorder is a Sender that keeps the latest state of every cell per viewer.
type recorder struct {
	mu     sync.Mutex
	calls  []call
	texts  map[uuid.UUID]map[cell]string
	pings  map[uuid.UUID]map[cell]Ping
	header map[uuid.UUID]string
	failOn string
}

func newRecorder() *recorder {
	return &recorder{
		texts:  make(map[uuid.UUID]map[cell]string),
		pings:  make(map[uuid.UUID]map[cell]Ping),
		header: make(map[uuid.UUID]string),
	}
}

func (r *recorder) record(c call) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failOn != "" && r.failOn == c.op {
		return fmt.Errorf("send %s refused", c.op)
	}
	r.calls = append(r.calls, c)
	return nil
}

func (r *recorder) AddEntries(v Viewer, entries []Entry) error {
	return r.record(call{op: "add", viewer: v.ID(), count: len(entries)})
}

func (r *recorder) RemoveEntries(v Viewer, ids []Identity) error {
	return r.record(call{op: "remove", viewer: v.ID(), count: len(ids)})
}

func (r *recorder) SetText(v Viewer, id Identity, s string) error {
	if err := r.record(call{op: "text", viewer: v.ID(), cell: cell{id.Column, id.Row}, text: s}); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.texts[v.ID()] == nil {
		r.texts[v.ID()] = make(map[cell]string)
	}
	r.texts[v.ID()][cell{id.Column, id.Row}] = s
	return nil
}

func (r *recorder) SetPing(v Viewer, id Identity, p Ping) error {
	if err := r.record(call{op: "ping", viewer: v.ID(), cell: cell{id.Column, id.Row}}); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.pings[v.ID()] == nil {
		r.pings[v.ID()] = make(map[cell]Ping)
	}
	r.pings[v.ID()][cell{id.Column, id.Row}] = p
	return nil
}

func (r *recorder) SetAvatar(v Viewer, id Identity, a Avatar) error {
	return r.record(call{op: "avatar", viewer: v.ID(), cell: cell{id.Column, id.Row}, avatar: a.Name})
}

func (r *recorder) HideAvatar(v Viewer, id Identity) error {
	return r.record(call{op: "hide", viewer: v.ID(), cell: cell{id.Column, id.Row}})
}

func (r *recorder) SetHeaderFooter(v Viewer, header, footer string) error {
	if err := r.record(call{op: "header", viewer: v.ID(), text: header + "|" + footer}); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.header[v.ID()] = header + "|" + footer
	return nil
}

func (r *recorder) SetGameMode(viewers []Viewer, subject uuid.UUID, mode GameMode) error {
	return r.record(call{op: "mode", viewer: subject, count: len(viewers), text: mode.String()})
}

func (r *recorder) text(v Viewer, col, row int) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.texts[v.ID()][cell{col, row}]
}

// pingedRows lists the rows of col that ever received a ping, ascending.
func (r *recorder) pingedRows(v Viewer, col int) []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	var rows []int
	for c := range r.pings[v.ID()] {
		if c.col == col {
			rows = append(rows, c.row)
		}
	}
	slices.Sort(rows)
	return rows
}

func (r *recorder) count(op string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.calls {
		if c.op == op {
			n++
		}
	}
	return n
}

func (r *recorder) countFor(op string, v uuid.UUID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.calls {
		if c.op == op && c.viewer == v {
			n++
		}
	}
	return n
}

func (r *recorder) last(op string) (call, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.calls) - 1; i >= 0; i-- {
		if r.calls[i].op == op {
			return r.calls[i], true
		}
	}
	return call{}, false
}

func member(name string, perms ...string) *Member {
	return &Member{
		UUID:        uuid.NewSHA1(uuid.NameSpaceOID, []byte("member:"+name)),
		Username:    name,
		Permissions: perms,
	}
}
