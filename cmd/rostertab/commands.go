package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jask/rostertab/internal/bridge"
	"github.com/jask/rostertab/internal/config"
	"github.com/jask/rostertab/internal/database/repository"
	"github.com/jask/rostertab/internal/definitions"
	"github.com/jask/rostertab/internal/roster"
	"github.com/jask/rostertab/internal/tui"
)

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := openApp(ctx, os.Stderr)
	if err != nil {
		return err
	}
	defer a.Close()

	pop := roster.NewMemberSet()
	srv := bridge.New(bridge.Options{
		Population: pop,
		WriteWait:  a.cfg.Bridge.WriteWait,
		Logger:     a.logger,
	})
	rt, err := a.build(ctx, pop, srv)
	if err != nil {
		return err
	}
	srv.Attach(rt.engine)
	defer rt.engine.Close()

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	go func() {
		_ = rt.scheduler.Run(ctx)
	}()
	errc := make(chan error, 1)
	go func() {
		errc <- srv.ListenAndServe(ctx, a.cfg.Bridge.Addr)
	}()

	for {
		select {
		case <-hup:
			if err := rt.reload(a.cfg.Definitions.Dir); err != nil {
				a.logger.Warn("reload failed", "err", err)
				continue
			}
			a.logger.Info("definitions reloaded", "skipped", len(rt.result.Problems))
		case err := <-errc:
			stop()
			return err
		}
	}
}

func runPreview(cmd *cobra.Command, _ []string) error {
	display, _ := cmd.Flags().GetString("display")
	members, _ := cmd.Flags().GetInt("members")
	width, _ := cmd.Flags().GetInt("width")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The terminal belongs to the preview, so nothing is logged.
	a, err := openApp(ctx, nil)
	if err != nil {
		return err
	}
	defer a.Close()

	pop := roster.NewMemberSet()
	viewer := &roster.Member{
		UUID:     uuid.NewSHA1(uuid.NameSpaceOID, []byte("rostertab:preview")),
		Username: "preview",
	}
	pop.Put(viewer)
	grid := tui.NewGrid(viewer.UUID)

	rt, err := a.build(ctx, pop, grid)
	if err != nil {
		return err
	}
	if display != "" {
		if err := forceDisplay(rt, display); err != nil {
			return err
		}
	}
	if err := rt.engine.Join(viewer); err != nil {
		return err
	}

	model := tui.New(ctx, tui.Options{
		Engine:     rt.engine,
		Scheduler:  rt.scheduler,
		Population: pop,
		Grid:       grid,
		Viewer:     viewer,
		CellWidth:  width,
		Members:    members,
	})
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}

// forceDisplay narrows the engine to one display open to every viewer.
func forceDisplay(rt *runtime, id string) error {
	reg := *rt.engine.Registry()
	d, ok := reg.Displays[id]
	if !ok {
		names := make([]string, 0, len(reg.Displays))
		for name := range reg.Displays {
			names = append(names, name)
		}
		sort.Strings(names)
		return fmt.Errorf("unknown display %q (have %s)", id, strings.Join(names, ", "))
	}
	only := *d
	only.Eligible = nil
	reg.Displays = map[string]*roster.Display{id: &only}
	return rt.engine.Reload(&reg)
}

func runValidate(cmd *cobra.Command, _ []string) error {
	writeConfig, _ := cmd.Flags().GetBool("write-config")
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	a, err := openApp(ctx, nil)
	if err != nil {
		return err
	}
	defer a.Close()

	skins, err := a.storedSkins(ctx)
	if err != nil {
		return err
	}
	res, err := definitions.Load(a.cfg.Definitions.Dir, definitions.Options{Skins: skins})
	if err != nil {
		return err
	}

	reg := res.Registry
	fmt.Fprintf(out, "%s: %d displays, %d columns, %d groups, %d skins\n",
		res.Dir, len(reg.Displays), len(reg.Columns), len(reg.Groups.All()), len(reg.Avatars))
	for _, p := range res.Problems {
		fmt.Fprintf(out, "  skipped %s\n", p.Error())
	}

	if writeConfig {
		path, err := config.Save(a.cfg)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "config written to %s\n", path)
	}

	if len(res.Problems) > 0 {
		return fmt.Errorf("%d definitions skipped", len(res.Problems))
	}
	return nil
}

func runSkinsImport(cmd *cobra.Command, args []string) error {
	source, _ := cmd.Flags().GetString("source")
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	avatars, readErr := definitions.ReadSkins(args[0])
	if readErr != nil && len(avatars) == 0 {
		return readErr
	}

	a, err := openApp(ctx, nil)
	if err != nil {
		return err
	}
	defer a.Close()

	rows := make([]repository.Skin, 0, len(avatars))
	for _, av := range avatars {
		rows = append(rows, repository.Skin{Name: av.Name, Value: av.Value, Signature: av.Signature, Source: source})
	}
	n, err := a.skins.Import(ctx, rows)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "imported %d skins\n", n)
	if readErr != nil {
		return fmt.Errorf("some skins were not imported: %w", readErr)
	}
	return nil
}

func runSkinsList(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	a, err := openApp(ctx, nil)
	if err != nil {
		return err
	}
	defer a.Close()

	rows, err := a.skins.List(ctx)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Fprintln(out, "no skins stored")
		return nil
	}
	for _, s := range rows {
		fmt.Fprintf(out, "%-24s %-8s %s\n", s.Name, s.Source, s.UpdatedAt.Format("2006-01-02 15:04"))
	}
	return nil
}
