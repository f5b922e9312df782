package definitions

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/jask/rostertab/internal/roster"
	"github.com/jask/rostertab/internal/scheduler"
	"github.com/jask/rostertab/internal/text"
)

// Options supplies what built definitions need at render time.
type Options struct {
	// Clock drives animated text and page intervals. Nil leaves text static.
	Clock      scheduler.Clock
	Population roster.Population
	// Vars resolves sort variables for population lists.
	Vars roster.Substituter
	// Skins are known before files are read, for example from the skin store.
	// A skin of the same name in skins.toml replaces it.
	Skins  []roster.Avatar
	Logger *slog.Logger
}

// Problem is one definition that could not be loaded and was skipped.
type Problem struct {
	File       string
	Definition string
	Err        error
}

func (p Problem) Error() string {
	if p.Definition == "" {
		return fmt.Sprintf("%s: %v", p.File, p.Err)
	}
	return fmt.Sprintf("%s: %s: %v", p.File, p.Definition, p.Err)
}

func (p Problem) Unwrap() error { return p.Err }

// Result is a loaded registry plus everything that was skipped on the way.
type Result struct {
	Dir      string
	Registry *roster.Registry
	Problems []Problem
}

// Err joins every problem, nil when the bundle loaded cleanly.
func (r *Result) Err() error {
	errs := make([]error, 0, len(r.Problems))
	for _, p := range r.Problems {
		errs = append(errs, p)
	}
	return errors.Join(errs...)
}

type loader struct {
	opts     Options
	logger   *slog.Logger
	problems []Problem

	avatars map[string]*roster.Avatar
	groups  *roster.Groups
	columns map[string]*roster.Column
	// kinds remembers whether a name is a column or a list.
	kinds    map[string]string
	displays map[string]*roster.Display
}

// Load reads every definition under dir, seeding a default bundle into
// missing directories. Invalid definitions are logged and skipped; only
// filesystem failures are returned as errors.
func Load(dir string, opts Options) (*Result, error) {
	if strings.TrimSpace(dir) == "" {
		dir = "."
	}
	if err := Seed(dir); err != nil {
		return nil, err
	}

	l := &loader{
		opts:     opts,
		logger:   opts.Logger,
		avatars:  make(map[string]*roster.Avatar),
		columns:  make(map[string]*roster.Column),
		kinds:    make(map[string]string),
		displays: make(map[string]*roster.Display),
	}
	if l.logger == nil {
		l.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	for i := range opts.Skins {
		a := opts.Skins[i]
		l.avatars[a.Name] = &a
	}

	if path, ok := findFile(dir, "skins"); ok {
		l.loadSkins(path)
	}
	l.groups = roster.NewGroups()
	if path, ok := findFile(dir, "groups"); ok {
		l.loadGroups(path)
	}

	columnFiles, err := listFiles(filepath.Join(dir, "columns"))
	if err != nil {
		return nil, err
	}
	for _, path := range columnFiles {
		l.loadColumn(path)
	}
	listPaths, err := listFiles(filepath.Join(dir, "lists"))
	if err != nil {
		return nil, err
	}
	for _, path := range listPaths {
		l.loadList(path)
	}
	displayFiles, err := listFiles(filepath.Join(dir, "displays"))
	if err != nil {
		return nil, err
	}
	for _, path := range displayFiles {
		l.loadDisplay(path)
	}

	return &Result{
		Dir: dir,
		Registry: &roster.Registry{
			Displays: l.displays,
			Columns:  l.columns,
			Groups:   l.groups,
			Avatars:  l.avatars,
		},
		Problems: l.problems,
	}, nil
}

func (l *loader) skip(file, definition string, err error) {
	l.problems = append(l.problems, Problem{File: file, Definition: definition, Err: err})
	l.logger.Warn("definition skipped", "file", file, "definition", definition, "err", err)
}

func findFile(dir, base string) (string, bool) {
	for _, ext := range []string{".toml", ".yml", ".yaml"} {
		path := filepath.Join(dir, base+ext)
		if _, err := os.Stat(path); err == nil {
			return path, true
		}
	}
	return "", false
}

func listFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", dir, err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !isDefinitionFile(e.Name()) {
			continue
		}
		out = append(out, filepath.Join(dir, e.Name()))
	}
	sort.Strings(out)
	return out, nil
}

func (l *loader) loadSkins(path string) {
	var f SkinsFile
	if err := decodeFile(path, &f); err != nil {
		l.skip(path, "", err)
		return
	}
	if err := checkVersion(&f.Version); err != nil {
		l.skip(path, "", err)
		return
	}
	for _, name := range keys(f.Skin) {
		s := f.Skin[name]
		if strings.TrimSpace(s.Value) == "" || strings.TrimSpace(s.Signature) == "" {
			l.skip(path, name, errors.New("value and signature are required"))
			continue
		}
		l.avatars[name] = &roster.Avatar{Name: name, Value: s.Value, Signature: s.Signature}
	}
}

func (l *loader) loadGroups(path string) {
	var f GroupsFile
	if err := decodeFile(path, &f); err != nil {
		l.skip(path, "", err)
		return
	}
	if err := checkVersion(&f.Version); err != nil {
		l.skip(path, "", err)
		return
	}
	groups := make([]*roster.Group, 0, len(f.Group))
	for _, id := range keys(f.Group) {
		def := f.Group[id]
		g := &roster.Group{
			ID:         id,
			Permission: strings.TrimSpace(def.Permission),
			Weight:     def.Weight,
			Tag:        def.Tag,
		}
		if def.Tab != nil {
			item, err := l.item(def.Tab)
			if err != nil {
				l.skip(path, id, fmt.Errorf("tab: %w", err))
				continue
			}
			g.Item = item
		}
		groups = append(groups, g)
	}
	l.groups = roster.NewGroups(groups...)
}

func (l *loader) register(path, name, kind string, c *roster.Column) {
	if prev, dup := l.kinds[name]; dup {
		l.skip(path, name, fmt.Errorf("name already used by a %s", prev))
		return
	}
	l.kinds[name] = kind
	l.columns[name] = c
}

func (l *loader) loadColumn(path string) {
	var f ColumnFile
	if err := decodeFile(path, &f); err != nil {
		l.skip(path, "", err)
		return
	}
	name := definitionName(f.Name, path)
	if err := checkVersion(&f.Version); err != nil {
		l.skip(path, name, err)
		return
	}
	c, err := l.column(name, f.Page, f.Title)
	if err != nil {
		l.skip(path, name, err)
		return
	}
	items := make([]*roster.Item, 0, len(f.Text))
	for i := range f.Text {
		it, err := l.item(&f.Text[i])
		if err != nil {
			l.skip(path, name, fmt.Errorf("text %d: %w", i+1, err))
			return
		}
		items = append(items, it)
	}
	c.Source = roster.NewStaticSource(items...)
	l.register(path, name, "column", c)
}

func (l *loader) loadList(path string) {
	var f ListFile
	if err := decodeFile(path, &f); err != nil {
		l.skip(path, "", err)
		return
	}
	name := definitionName(f.Name, path)
	if err := checkVersion(&f.Version); err != nil {
		l.skip(path, name, err)
		return
	}
	switch strings.ToUpper(strings.TrimSpace(f.Type)) {
	case "", "ONLINE", "ONLINE_PLAYERS":
	default:
		l.skip(path, name, unknownRef("list type", f.Type, []string{"ONLINE_PLAYERS"}))
		return
	}
	sortType, err := roster.ParseSortType(f.Sorter)
	if err != nil {
		l.skip(path, name, err)
		return
	}
	if sortType == roster.SortNumberVariable && strings.TrimSpace(f.SortVariable) == "" {
		l.skip(path, name, errors.New("sort_variable is required for NUMBER_VARIABLE"))
		return
	}
	c, err := l.column(name, f.Page, f.Title)
	if err != nil {
		l.skip(path, name, err)
		return
	}

	var element *roster.Item
	if f.Text != nil {
		if element, err = l.item(f.Text); err != nil {
			l.skip(path, name, fmt.Errorf("text: %w", err))
			return
		}
	}
	if perm := strings.TrimSpace(f.Permission); perm != "" {
		if element == nil {
			element = &roster.Item{Text: text.Static("{name}")}
		}
		element.Filter = both(element.Filter, roster.RequirePermission(perm))
	}

	c.Source = &roster.PopulationSource{
		Population:   l.opts.Population,
		Groups:       l.groups,
		Vars:         l.opts.Vars,
		Sort:         sortType,
		SortVariable: f.SortVariable,
		Element:      element,
	}
	l.register(path, name, "list", c)
}

func both(a, b roster.Predicate) roster.Predicate {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(v roster.Viewer) bool { return a(v) && b(v) }
}

// column builds the shared part of columns and lists.
func (l *loader) column(name string, page PageDef, title *ItemDef) (*roster.Column, error) {
	c := &roster.Column{
		ID:           name,
		Capacity:     page.Elements,
		PageInterval: roster.DefaultPageInterval,
		Paging:       true,
		MaxPages:     roster.DefaultMaxPages,
	}
	if c.Capacity == 0 {
		c.Capacity = roster.DefaultCapacity
	}
	if c.Capacity < 1 || c.Capacity > roster.MaxRows {
		return nil, fmt.Errorf("page.elements must be between 1 and %d", roster.MaxRows)
	}
	if page.Interval != nil {
		c.PageInterval = *page.Interval
	}
	if page.Enabled != nil {
		c.Paging = *page.Enabled
	}
	if page.Max != nil {
		if *page.Max < 0 {
			return nil, errors.New("page.max must be >= 0")
		}
		c.MaxPages = *page.Max
	}
	if page.Text != nil {
		it, err := l.item(page.Text)
		if err != nil {
			return nil, fmt.Errorf("page.text: %w", err)
		}
		c.PageItem = it
	}
	if title != nil {
		it, err := l.item(title)
		if err != nil {
			return nil, fmt.Errorf("title: %w", err)
		}
		c.Title = it
	}
	return c, nil
}

func (l *loader) loadDisplay(path string) {
	var f DisplayFile
	if err := decodeFile(path, &f); err != nil {
		l.skip(path, "", err)
		return
	}
	name := definitionName(f.Name, path)
	if err := checkVersion(&f.Version); err != nil {
		l.skip(path, name, err)
		return
	}
	if _, dup := l.displays[name]; dup {
		l.skip(path, name, errors.New("display already defined"))
		return
	}

	d := &roster.Display{
		ID:           name,
		Weight:       1,
		Eligible:     roster.RequirePermission(strings.TrimSpace(f.Permission)),
		ShowTitles:   true,
		ElementWidth: f.Columns.Width,
		Columns:      make(map[int]*roster.Column, len(f.Columns.List)),
	}
	if f.Weight != nil {
		d.Weight = *f.Weight
	}
	if f.Columns.DisplayTitles != nil {
		d.ShowTitles = *f.Columns.DisplayTitles
	}
	if d.ElementWidth == 0 {
		d.ElementWidth = roster.DefaultElementWidth
	}
	if d.ElementWidth < 1 {
		l.skip(path, name, errors.New("columns.width must be positive"))
		return
	}

	var err error
	if d.Header, err = l.lines(f.Header.Text); err != nil {
		l.skip(path, name, fmt.Errorf("header: %w", err))
		return
	}
	if d.Footer, err = l.lines(f.Footer.Text); err != nil {
		l.skip(path, name, fmt.Errorf("footer: %w", err))
		return
	}

	for _, key := range keys(f.Columns.List) {
		slot, err := strconv.Atoi(strings.TrimSpace(key))
		if err != nil || slot < 1 || slot > roster.MaxColumns {
			l.skip(path, name+"/"+key, fmt.Errorf("column slot must be a number between 1 and %d", roster.MaxColumns))
			continue
		}
		ref := strings.TrimSpace(f.Columns.List[key])
		c, ok := l.columns[ref]
		if !ok {
			l.skip(path, name+"/"+key, unknownRef("column", ref, keys(l.columns)))
			continue
		}
		d.Columns[slot] = c
	}
	l.displays[name] = d
}

func (l *loader) lines(defs []TextDef) ([]text.Dynamic, error) {
	out := make([]text.Dynamic, 0, len(defs))
	for i, def := range defs {
		t, err := l.text(def.Animations, def.Interval)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		out = append(out, t)
	}
	return out, nil
}

func (l *loader) text(frames []string, interval *int64) (text.Dynamic, error) {
	every := int64(-1)
	if interval != nil {
		every = *interval
	}
	return text.NewFrames(l.opts.Clock, every, frames...)
}

func (l *loader) item(def *ItemDef) (*roster.Item, error) {
	t, err := l.text(def.Animations, def.Interval)
	if err != nil {
		return nil, err
	}
	ping, err := roster.ParsePing(def.Ping)
	if err != nil {
		return nil, err
	}
	avatar, err := l.avatar(def.Skin)
	if err != nil {
		return nil, err
	}
	return &roster.Item{
		Text:   t,
		Avatar: avatar,
		Ping:   ping,
		Center: def.Center,
		Filter: roster.RequirePermission(strings.TrimSpace(def.Permission)),
	}, nil
}

// avatar resolves an inline skin (value and signature) or a named one.
func (l *loader) avatar(def *SkinDef) (*roster.Avatar, error) {
	if def == nil {
		return nil, nil
	}
	value, sig := strings.TrimSpace(def.Value), strings.TrimSpace(def.Signature)
	if value != "" && sig != "" {
		name := strings.TrimSpace(def.Name)
		if name == "" {
			name = "inline-" + uuid.NewSHA1(uuid.NameSpaceOID, []byte(value)).String()
		}
		return &roster.Avatar{Name: name, Value: value, Signature: sig}, nil
	}
	name := strings.TrimSpace(def.Name)
	if name == "" {
		return nil, nil
	}
	if a, ok := l.avatars[name]; ok {
		return a, nil
	}
	if name == roster.UnknownAvatar.Name {
		a := roster.UnknownAvatar
		return &a, nil
	}
	return nil, unknownRef("skin", name, keys(l.avatars))
}

// ReadSkins decodes a skins file on its own, for importing into the skin store.
func ReadSkins(path string) ([]roster.Avatar, error) {
	var f SkinsFile
	if err := decodeFile(path, &f); err != nil {
		return nil, err
	}
	if err := checkVersion(&f.Version); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	out := make([]roster.Avatar, 0, len(f.Skin))
	var errs []error
	for _, name := range keys(f.Skin) {
		s := f.Skin[name]
		if strings.TrimSpace(s.Value) == "" || strings.TrimSpace(s.Signature) == "" {
			errs = append(errs, fmt.Errorf("skin %q: value and signature are required", name))
			continue
		}
		out = append(out, roster.Avatar{Name: name, Value: s.Value, Signature: s.Signature})
	}
	return out, errors.Join(errs...)
}
