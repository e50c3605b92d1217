package cmd

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/sadopc/timeline/internal/config"
	"github.com/sadopc/timeline/internal/logging"
	"github.com/sadopc/timeline/internal/store"
	"github.com/sadopc/timeline/internal/timeline"
)

// workspace bundles everything a command needs: the resolved config, the
// logger, the open store and a state loaded from it.
type workspace struct {
	cfg   config.Config
	log   *slog.Logger
	store *store.Store
	state *timeline.State

	logCloser io.Closer
}

// openWorkspace opens the configured store. Only commands that own the
// workspace pass persist; read-only commands seed in memory and leave the
// database untouched.
func openWorkspace(persist bool) (*workspace, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if dbFlag != "" {
		cfg.DBPath = dbFlag
	}

	log, closer, err := logging.New(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	s, err := store.New(cfg.DBPath)
	if err != nil {
		closer.Close()
		return nil, fmt.Errorf("open workspace: %w", err)
	}

	w := &workspace{
		cfg:       cfg,
		log:       log,
		store:     s,
		state:     timeline.New(timeline.WithLogger(log)),
		logCloser: closer,
	}
	if err := w.load(persist); err != nil {
		w.Close()
		return nil, err
	}
	return w, nil
}

// load copies the stored workspace into the state. An empty workspace is
// seeded with the configured groups and window preset, and saved only when
// persist is set.
func (w *workspace) load(persist bool) error {
	snap, err := w.store.LoadSnapshot()
	if err != nil {
		return fmt.Errorf("load workspace: %w", err)
	}
	if err := w.state.Replace(snap); err != nil {
		return fmt.Errorf("load workspace: %w", err)
	}
	settings, err := w.store.LoadSettings()
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	g, t, e := w.state.Counts()
	if g+t+e > 0 {
		w.state.SetSettings(settings)
		w.log.Info("workspace loaded", "db", w.cfg.DBPath, "groups", g, "tracks", t, "entries", e)
		return nil
	}

	settings.Preset = w.cfg.Preset()
	w.state.SetSettings(settings)
	for _, name := range w.cfg.SeedGroups {
		if err := w.state.AddGroup(name); err != nil {
			w.log.Warn("skipping seed group", "group", name, "error", err)
		}
	}
	w.log.Info("new workspace", "db", w.cfg.DBPath, "seed_groups", len(w.cfg.SeedGroups), "persist", persist)
	if !persist {
		return nil
	}
	return w.save()
}

func (w *workspace) save() error {
	if err := w.store.SaveSnapshot(w.state.Export()); err != nil {
		return fmt.Errorf("save workspace: %w", err)
	}
	if err := w.store.SaveSettings(w.state.Settings()); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

func (w *workspace) Close() error {
	err := w.store.Close()
	if cerr := w.logCloser.Close(); err == nil {
		err = cerr
	}
	return err
}
