package roster

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/jask/rostertab/internal/scheduler"
)

// ErrNoDisplay is returned when no display applies to a viewer.
var ErrNoDisplay = errors.New("roster: no display for viewer")

// Options wires an Engine to its collaborators.
type Options struct {
	Sender Sender
	// Vars substitutes external variables; nil passes text through.
	Vars  Substituter
	Clock scheduler.Clock
	// DefaultDisplay is used when no display is eligible for a viewer.
	DefaultDisplay string
	// PageText is the default page indicator text.
	PageText string
	Logger   *slog.Logger
}

// Engine owns the loaded registry and the per-viewer instances. Joins and
// quits may arrive from any goroutine; render passes run only from Tick,
// Reload and Reselect, which are serialised.
type Engine struct {
	mu        sync.RWMutex
	registry  *Registry
	instances map[uuid.UUID]*Instance
	// pending marks viewers whose instance is being rebuilt by Reload or
	// Reselect. Quit clears the mark so a departed viewer is not rebuilt.
	pending map[uuid.UUID]bool

	// renderMu serialises render passes with registry swaps.
	renderMu sync.Mutex

	sender         Sender
	vars           Substituter
	clock          scheduler.Clock
	defaultDisplay string
	pageText       string
	logger         *slog.Logger
}

// NewEngine builds an engine over reg.
func NewEngine(reg *Registry, opts Options) (*Engine, error) {
	if reg == nil {
		return nil, errors.New("roster: nil registry")
	}
	if opts.Sender == nil {
		return nil, errors.New("roster: sender is required")
	}
	if opts.Clock == nil {
		return nil, errors.New("roster: clock is required")
	}
	e := &Engine{
		registry:       reg,
		instances:      make(map[uuid.UUID]*Instance),
		pending:        make(map[uuid.UUID]bool),
		sender:         opts.Sender,
		vars:           opts.Vars,
		clock:          opts.Clock,
		defaultDisplay: opts.DefaultDisplay,
		pageText:       opts.PageText,
		logger:         opts.Logger,
	}
	if e.vars == nil {
		e.vars = Passthrough
	}
	if e.pageText == "" {
		e.pageText = DefaultPageText
	}
	if e.logger == nil {
		e.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return e, nil
}

// Registry returns the current registry snapshot.
func (e *Engine) Registry() *Registry {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.registry
}

// Select returns the display a viewer would be shown.
func (e *Engine) Select(v Viewer) *Display {
	return e.Registry().Select(v, e.defaultDisplay)
}

// Join builds and registers an instance for v and sends its placeholder rows.
// A viewer that joins twice gets a fresh instance. Joins wait for a running
// render pass or reload so an instance is never built from a registry that
// is being replaced.
func (e *Engine) Join(v Viewer) error {
	e.renderMu.Lock()
	defer e.renderMu.Unlock()
	return e.join(v, false)
}

// join builds an instance from the current registry. With rebuild set it only
// registers while v is still pending; a viewer that quit meanwhile stays gone.
// The caller holds renderMu.
func (e *Engine) join(v Viewer, rebuild bool) error {
	id := v.ID()
	d := e.Select(v)
	if d == nil {
		e.unmark(id)
		return fmt.Errorf("%w: %s", ErrNoDisplay, v.Name())
	}
	in, err := newInstance(v, d, e.clock)
	if err != nil {
		e.unmark(id)
		return err
	}
	if rebuild && !e.isPending(id) {
		return nil
	}
	if err := e.sender.AddEntries(v, in.InitialEntries()); err != nil {
		e.unmark(id)
		return fmt.Errorf("send initial entries: %w", err)
	}

	e.mu.Lock()
	if rebuild && !e.pending[id] {
		e.mu.Unlock()
		return nil
	}
	delete(e.pending, id)
	e.instances[id] = in
	e.mu.Unlock()
	e.logger.Info("viewer joined", "viewer", v.Name(), "display", d.ID)
	return nil
}

func (e *Engine) isPending(id uuid.UUID) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.pending[id]
}

func (e *Engine) unmark(id uuid.UUID) {
	e.mu.Lock()
	delete(e.pending, id)
	e.mu.Unlock()
}

// Quit forgets a viewer. No further calls are made for it, including by a
// reload or reselect already in progress.
func (e *Engine) Quit(id uuid.UUID) {
	e.mu.Lock()
	in, ok := e.instances[id]
	delete(e.instances, id)
	delete(e.pending, id)
	e.mu.Unlock()
	if ok {
		e.logger.Info("viewer quit", "viewer", in.viewer.Name())
	}
}

// Viewers returns the registered viewers ordered by id.
func (e *Engine) Viewers() []Viewer {
	list := e.snapshot()
	out := make([]Viewer, 0, len(list))
	for _, in := range list {
		out = append(out, in.viewer)
	}
	return out
}

// Instance returns the registered instance for a viewer.
func (e *Engine) Instance(id uuid.UUID) (*Instance, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	in, ok := e.instances[id]
	return in, ok
}

func (e *Engine) snapshot() []*Instance {
	e.mu.RLock()
	list := make([]*Instance, 0, len(e.instances))
	for _, in := range e.instances {
		list = append(list, in)
	}
	e.mu.RUnlock()
	sort.Slice(list, func(i, j int) bool {
		a, b := list[i].viewer.ID(), list[j].viewer.ID()
		return a.String() < b.String()
	})
	return list
}

func (e *Engine) renderer() renderer {
	return renderer{sender: e.sender, vars: e.vars, pageText: e.pageText}
}

// Tick renders every registered instance once. Failures are logged per
// viewer and never stop the pass.
func (e *Engine) Tick(ctx context.Context) error {
	e.renderMu.Lock()
	defer e.renderMu.Unlock()

	r := e.renderer()
	for _, in := range e.snapshot() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, live := e.Instance(in.viewer.ID()); !live {
			continue
		}
		if err := in.Render(r); err != nil {
			e.logger.Warn("render failed",
				"viewer", in.viewer.Name(),
				"display", in.display.ID,
				"err", err,
			)
		}
	}
	return nil
}

// GameModeChanged mirrors a member's new game mode to every viewer.
func (e *Engine) GameModeChanged(subject uuid.UUID, mode GameMode) error {
	viewers := e.Viewers()
	if len(viewers) == 0 {
		return nil
	}
	if err := e.sender.SetGameMode(viewers, subject, mode); err != nil {
		return fmt.Errorf("broadcast game mode: %w", err)
	}
	return nil
}

// Reselect rebuilds a viewer's instance when a different display now applies,
// for example after its permissions changed.
func (e *Engine) Reselect(v Viewer) error {
	e.renderMu.Lock()
	defer e.renderMu.Unlock()

	cur, ok := e.Instance(v.ID())
	if !ok {
		return nil
	}
	if d := e.Select(v); d != nil && d == cur.display {
		return nil
	}
	e.mu.Lock()
	if e.instances[v.ID()] != cur {
		e.mu.Unlock()
		return nil
	}
	delete(e.instances, v.ID())
	e.pending[v.ID()] = true
	e.mu.Unlock()

	if err := e.sender.RemoveEntries(cur.viewer, cur.Identities()); err != nil {
		e.logger.Warn("remove entries failed", "viewer", v.Name(), "err", err)
	}
	return e.join(v, true)
}

// Reload swaps the registry and rebuilds every instance from it. No render
// pass runs while the swap is in progress.
func (e *Engine) Reload(reg *Registry) error {
	if reg == nil {
		return errors.New("roster: nil registry")
	}
	e.renderMu.Lock()
	defer e.renderMu.Unlock()

	old := e.snapshot()
	e.mu.Lock()
	e.registry = reg
	e.instances = make(map[uuid.UUID]*Instance, len(old))
	e.pending = make(map[uuid.UUID]bool, len(old))
	for _, in := range old {
		e.pending[in.viewer.ID()] = true
	}
	e.mu.Unlock()

	var errs []error
	for _, in := range old {
		if !e.isPending(in.viewer.ID()) {
			continue
		}
		// A failed removal is logged and the viewer is still rejoined.
		if err := e.sender.RemoveEntries(in.viewer, in.Identities()); err != nil {
			e.logger.Warn("remove entries failed", "viewer", in.viewer.Name(), "err", err)
		}
		if err := e.join(in.viewer, true); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", in.viewer.Name(), err))
		}
	}
	e.logger.Info("registry reloaded", "displays", len(reg.Displays), "viewers", len(old))
	return errors.Join(errs...)
}

// Close drops every instance.
func (e *Engine) Close() {
	e.mu.Lock()
	e.instances = make(map[uuid.UUID]*Instance)
	e.pending = make(map[uuid.UUID]bool)
	e.mu.Unlock()
}
