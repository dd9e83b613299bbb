package app

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"logicdoc/internal/core/ports"
	"logicdoc/internal/core/watcher"
	"logicdoc/internal/shared/observability"
	"logicdoc/internal/shared/util"
)

// StartWatcher watches the directories holding configured files and
// regenerates the documentation when one of them changes. req is reused for
// every rebuild.
func (a *App) StartWatcher(ctx context.Context, req ports.GenerateRequest) error {
	tracked := a.trackedFiles()
	cfg := a.currentConfig()
	w, err := watcher.NewWatcher(
		cfg.Watch.Debounce,
		cfg.Exclude.Dirs,
		nil,
		func(paths []string) { a.HandleChanges(ctx, req, paths) },
	)
	if err != nil {
		return err
	}
	w.SetFilters(watcher.DefaultExtensions, util.SortedStringKeys(tracked))
	w.Prime(util.SortedStringKeys(tracked)...)

	roots := watchRoots(a.Paths.ProjectRoot, util.SortedStringKeys(tracked))
	a.cfgMu.Lock()
	a.activeWatcher = w
	a.cfgMu.Unlock()
	slog.Info("watching for changes", "roots", roots, "files", len(tracked))
	return w.Watch(roots)
}

// HandleChanges regenerates the documentation when any changed path is a
// configured, non-excluded file. Rebuilds beyond the per-minute limit are
// skipped.
func (a *App) HandleChanges(ctx context.Context, req ports.GenerateRequest, paths []string) {
	tracked := a.trackedFiles()
	relevant := make([]string, 0, len(paths))
	for _, p := range paths {
		if rel, ok := tracked[filepath.Clean(p)]; ok {
			relevant = append(relevant, rel)
		}
	}
	if len(relevant) == 0 {
		return
	}
	a.cfgMu.RLock()
	limiter := a.rebuilds
	a.cfgMu.RUnlock()
	if !limiter.Allow(1) {
		observability.RebuildsThrottledTotal.Inc()
		slog.Warn("rebuild skipped by rate limit", "changed", relevant)
		return
	}
	if ctx.Err() != nil {
		return
	}

	slog.Info("source change detected, regenerating", "changed", relevant)
	if req.Trigger == "" {
		req.Trigger = "watch"
	}
	if _, _, err := a.Generate(ctx, req); err != nil {
		slog.Error("watch rebuild failed", "error", err)
	}
}

// trackedFiles maps the absolute path of every configured, non-excluded file
// to its configured relative path.
func (a *App) trackedFiles() map[string]string {
	a.cfgMu.RLock()
	defer a.cfgMu.RUnlock()

	out := make(map[string]string)
	for _, rel := range a.Config.AllFiles() {
		if a.sources.Excluded(rel) {
			continue
		}
		out[filepath.Clean(a.sources.Resolve(rel))] = rel
	}
	return out
}

// watchRoots returns the smallest set of existing directories covering every
// tracked file. A missing parent is replaced by its nearest existing
// ancestor inside root.
func watchRoots(root string, files []string) []string {
	root = filepath.Clean(root)
	dirs := make(map[string]bool)
	for _, f := range files {
		dir := filepath.Dir(f)
		for !isDir(dir) && util.HasPathPrefix(dir, root) && dir != root {
			dir = filepath.Dir(dir)
		}
		if !isDir(dir) {
			continue
		}
		dirs[dir] = true
	}

	candidates := util.SortedStringKeys(dirs)
	out := make([]string, 0, len(candidates))
	for _, dir := range candidates {
		covered := false
		for _, kept := range out {
			if util.HasPathPrefix(dir, kept) {
				covered = true
				break
			}
		}
		if !covered {
			out = append(out, dir)
		}
	}
	return out
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
