package app

import (
	"fmt"
	"log/slog"

	"logicdoc/internal/core/config"
	"logicdoc/internal/core/watcher"
	"logicdoc/internal/shared/util"
)

// ApplyConfig swaps in a reloaded configuration. Phases, exclusions, report,
// marker and watch settings apply from the next run; paths and the
// collaborators wired by New keep their startup values.
func (a *App) ApplyConfig(cfg *config.Config) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}
	excludes, err := compileGlobs(cfg.Exclude.Files, "exclude file")
	if err != nil {
		return err
	}

	a.runMu.Lock()
	defer a.runMu.Unlock()

	next := *cfg
	next.Paths = a.Config.Paths
	next.DB = a.Config.DB
	next.Caches = a.Config.Caches
	next.Syntax = a.Config.Syntax
	next.Redact = a.Config.Redact
	next.Publish = a.Config.Publish
	next.Observability = a.Config.Observability

	a.cfgMu.Lock()
	a.Config = &next
	a.sources = &sourceReader{root: a.sources.root, excludes: excludes, cache: a.sources.cache}
	a.rebuilds = util.NewPerMinuteLimiter(next.Watch.MaxRebuildsPerMinute)
	w := a.activeWatcher
	a.cfgMu.Unlock()

	if w != nil {
		tracked := util.SortedStringKeys(a.trackedFiles())
		w.SetFilters(watcher.DefaultExtensions, tracked)
		w.SetDebounce(next.Watch.Debounce)
		w.Prime(tracked...)
	}
	slog.Info("configuration reloaded", "phases", len(next.Phases), "files", len(next.AllFiles()))
	return nil
}

func (a *App) currentConfig() *config.Config {
	a.cfgMu.RLock()
	defer a.cfgMu.RUnlock()
	return a.Config
}

func (a *App) currentWatcher() *watcher.Watcher {
	a.cfgMu.RLock()
	defer a.cfgMu.RUnlock()
	return a.activeWatcher
}

func (a *App) watching() bool {
	return a.currentWatcher() != nil
}

func (a *App) cacheLen() int {
	a.cfgMu.RLock()
	defer a.cfgMu.RUnlock()
	return a.sources.cache.len()
}
