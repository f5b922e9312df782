package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"

	"github.com/jask/rostertab/internal/config"
	"github.com/jask/rostertab/internal/database"
	"github.com/jask/rostertab/internal/database/repository"
	"github.com/jask/rostertab/internal/definitions"
	"github.com/jask/rostertab/internal/logs"
	"github.com/jask/rostertab/internal/roster"
	"github.com/jask/rostertab/internal/scheduler"
)

// app holds what every command needs: config, logger and the skin store.
type app struct {
	cfg    config.Config
	logger *slog.Logger
	db     *sql.DB
	skins  *repository.SkinRepo
}

func openApp(ctx context.Context, logOut io.Writer) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	level, err := logs.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	logs.SetLevel(level)

	logger := logs.Discard()
	if logOut != nil {
		logger = logs.New(logOut, logs.Options{Journal: cfg.Log.Journal})
	}

	if err := database.RunMigrations(cfg.Database.Path); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := database.SeedDefaults(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("seed defaults: %w", err)
	}
	return &app{cfg: cfg, logger: logger, db: db, skins: repository.NewSkinRepo(db)}, nil
}

func (a *app) Close() error {
	return a.db.Close()
}

func (a *app) storedSkins(ctx context.Context) ([]roster.Avatar, error) {
	rows, err := a.skins.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list skins: %w", err)
	}
	out := make([]roster.Avatar, 0, len(rows))
	for _, s := range rows {
		out = append(out, roster.Avatar{Name: s.Name, Value: s.Value, Signature: s.Signature})
	}
	return out, nil
}

// runtime is a built engine with the collaborators it renders through.
type runtime struct {
	engine     *roster.Engine
	scheduler  *scheduler.Scheduler
	population *roster.MemberSet
	loadOpts   definitions.Options
	result     *definitions.Result
}

// build loads definitions and creates an engine sending through sender.
// Placeholders resolve groups from whatever registry the engine holds, so a
// reload picks up new groups.
func (a *app) build(ctx context.Context, pop *roster.MemberSet, sender roster.Sender) (*runtime, error) {
	rate, err := scheduler.ParseRate(a.cfg.Engine.Tick)
	if err != nil {
		return nil, fmt.Errorf("engine.tick: %w", err)
	}
	skins, err := a.storedSkins(ctx)
	if err != nil {
		return nil, err
	}

	rt := &runtime{
		scheduler:  scheduler.New(scheduler.WithLogger(a.logger)),
		population: pop,
	}
	vars := roster.SubstituterFunc(func(subject roster.Viewer, s string) string {
		var groups *roster.Groups
		if rt.engine != nil {
			groups = rt.engine.Registry().Groups
		}
		return roster.PopulationVars{Population: pop, Groups: groups}.Substitute(subject, s)
	})
	rt.loadOpts = definitions.Options{
		Clock:      rt.scheduler,
		Population: pop,
		Vars:       vars,
		Skins:      skins,
		Logger:     a.logger,
	}
	rt.result, err = definitions.Load(a.cfg.Definitions.Dir, rt.loadOpts)
	if err != nil {
		return nil, fmt.Errorf("load definitions: %w", err)
	}

	rt.engine, err = roster.NewEngine(rt.result.Registry, roster.Options{
		Sender:         sender,
		Vars:           vars,
		Clock:          rt.scheduler,
		DefaultDisplay: a.cfg.Engine.DefaultDisplay,
		PageText:       a.cfg.Engine.PageText,
		Logger:         a.logger,
	})
	if err != nil {
		return nil, err
	}
	if err := rt.scheduler.Register("render", rate, rt.engine.Tick); err != nil {
		return nil, err
	}
	a.logger.Info("engine ready",
		"displays", len(rt.result.Registry.Displays),
		"columns", len(rt.result.Registry.Columns),
		"skipped", len(rt.result.Problems),
		"tick", rate.String(),
	)
	return rt, nil
}

// reload re-reads the definition directory and swaps the engine's registry.
func (rt *runtime) reload(dir string) error {
	res, err := definitions.Load(dir, rt.loadOpts)
	if err != nil {
		return err
	}
	rt.result = res
	return rt.engine.Reload(res.Registry)
}
