package app

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"logicdoc/internal/core/config"
	"logicdoc/internal/core/ports"
	"logicdoc/internal/core/watcher"
	"logicdoc/internal/data/history"
	"logicdoc/internal/data/objectstore"
	"logicdoc/internal/data/queue"
	"logicdoc/internal/engine/analyzer"
	"logicdoc/internal/engine/redact"
	"logicdoc/internal/engine/syntax"
	"logicdoc/internal/shared/util"
	"logicdoc/internal/ui/report"

	"github.com/gobwas/glob"
)

const historyQueueCapacity = 64

// Update is published to the update handler after every completed run.
type Update struct {
	Result   ports.GenerateResult
	Document report.Document
}

// Dependencies are the optional collaborators of App. Nil fields disable the
// matching feature.
type Dependencies struct {
	Syntax    ports.SyntaxChecker
	Redactor  ports.Redactor
	History   ports.RunRecorder
	Publisher ports.Publisher
	Queue     ports.RunQueuePort
	Clock     func() time.Time
}

type App struct {
	Config *config.Config
	Paths  config.ResolvedPaths

	analyzer  *analyzer.Analyzer
	sources   *sourceReader
	syntax    ports.SyntaxChecker
	redactor  ports.Redactor
	history   ports.RunRecorder
	publisher ports.Publisher
	now       func() time.Time

	runMu sync.Mutex
	cfgMu sync.RWMutex

	updateMu sync.RWMutex
	onUpdate func(Update)
	last     *Update

	historyQueue ports.RunQueuePort
	workerCancel context.CancelFunc
	workerDone   chan struct{}

	activeWatcher *watcher.Watcher
	rebuilds      *util.Limiter
}

// New wires the collaborators enabled in cfg: the syntax checker, the
// redactor, the SQLite history store and the S3 publisher.
func New(cfg *config.Config, paths config.ResolvedPaths) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	deps := Dependencies{}
	if cfg.Syntax.Enabled {
		deps.Syntax = syntax.NewChecker()
	}
	if cfg.Redact.Enabled {
		patterns := make([]redact.Pattern, 0, len(cfg.Redact.Patterns))
		for _, p := range cfg.Redact.Patterns {
			patterns = append(patterns, redact.Pattern{Name: p.Name, Regex: p.Regex, Severity: p.Severity})
		}
		redactor, err := redact.New(redact.Config{
			EntropyThreshold: cfg.Redact.EntropyThreshold,
			MinTokenLength:   cfg.Redact.MinTokenLength,
			Patterns:         patterns,
		})
		if err != nil {
			return nil, err
		}
		deps.Redactor = redactor
	}
	if cfg.DB.Enabled {
		store, err := history.Open(paths.DBPath, cfg.DB.BusyTimeout)
		if err != nil {
			if history.IsCorruptError(err) {
				return nil, fmt.Errorf("history database %s is corrupt; move it aside or set [db].enabled = false: %w", paths.DBPath, err)
			}
			return nil, fmt.Errorf("open history store: %w", err)
		}
		deps.History = history.NewAdapter(store, projectKey(paths.ProjectRoot))
		deps.Queue = queue.NewMemoryQueue(historyQueueCapacity)
	}
	if cfg.Publish.Enabled {
		publisher, err := objectstore.NewS3Publisher(objectstore.S3Config{
			Endpoint:  cfg.Publish.Endpoint,
			Region:    cfg.Publish.Region,
			AccessKey: cfg.Publish.AccessKey,
			SecretKey: cfg.Publish.SecretKey,
			Bucket:    cfg.Publish.Bucket,
			Prefix:    cfg.Publish.Prefix,
			UseSSL:    cfg.Publish.UseSSL,
		})
		if err != nil {
			if deps.History != nil {
				_ = deps.History.Close()
			}
			return nil, err
		}
		deps.Publisher = publisher
	}
	return NewWithDependencies(cfg, paths, deps)
}

func NewWithDependencies(cfg *config.Config, paths config.ResolvedPaths, deps Dependencies) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if strings.TrimSpace(paths.ProjectRoot) == "" {
		return nil, fmt.Errorf("project root is required")
	}

	excludes, err := compileGlobs(cfg.Exclude.Files, "exclude file")
	if err != nil {
		return nil, err
	}
	sources, err := newSourceReader(paths.ProjectRoot, excludes, cfg.Caches.FileContents)
	if err != nil {
		return nil, err
	}

	now := deps.Clock
	if now == nil {
		now = time.Now
	}

	a := &App{
		Config:       cfg,
		Paths:        paths,
		analyzer:     analyzer.New(),
		sources:      sources,
		syntax:       deps.Syntax,
		redactor:     deps.Redactor,
		history:      deps.History,
		publisher:    deps.Publisher,
		now:          now,
		historyQueue: deps.Queue,
		rebuilds:     util.NewPerMinuteLimiter(cfg.Watch.MaxRebuildsPerMinute),
	}
	if a.history != nil && a.historyQueue != nil {
		a.startHistoryWorker()
	}
	return a, nil
}

func compileGlobs(patterns []string, label string) ([]glob.Glob, error) {
	out := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid %s pattern %q: %w", label, p, err)
		}
		out = append(out, g)
	}
	return out, nil
}

func projectKey(root string) string {
	base := filepath.Base(filepath.Clean(root))
	if base == "." || base == string(filepath.Separator) {
		return "default"
	}
	return base
}

func (a *App) SetUpdateHandler(handler func(Update)) {
	a.updateMu.Lock()
	defer a.updateMu.Unlock()
	a.onUpdate = handler
}

// LastUpdate returns the most recent completed run, if any.
func (a *App) LastUpdate() (Update, bool) {
	a.updateMu.RLock()
	defer a.updateMu.RUnlock()
	if a.last == nil {
		return Update{}, false
	}
	return *a.last, true
}

func (a *App) emitUpdate(update Update) {
	a.updateMu.Lock()
	a.last = &update
	handler := a.onUpdate
	a.updateMu.Unlock()
	if handler != nil {
		handler(update)
	}
}

// HistoryEnabled reports whether runs are persisted.
func (a *App) HistoryEnabled() bool {
	return a.history != nil
}

// Trend builds the trend report from persisted runs.
func (a *App) Trend(ctx context.Context, since time.Time, window time.Duration) (history.TrendReport, error) {
	if a.history == nil {
		return history.TrendReport{}, fmt.Errorf("history is disabled; set [db].enabled = true")
	}
	return a.history.Trend(ctx, since, window)
}

// Close stops the watcher, drains pending history writes and closes the store.
func (a *App) Close(ctx context.Context) error {
	if a == nil {
		return nil
	}
	a.cfgMu.Lock()
	w := a.activeWatcher
	a.activeWatcher = nil
	a.cfgMu.Unlock()
	if w != nil {
		if err := w.Close(); err != nil {
			slog.Warn("failed to close watcher", "error", err)
		}
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
	}
	if err := a.stopHistoryWorker(ctx); err != nil {
		return err
	}
	if a.history != nil {
		if err := a.history.Close(); err != nil {
			return err
		}
		a.history = nil
	}
	return nil
}
