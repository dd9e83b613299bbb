package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	coreapp "logicdoc/internal/core/app"
	"logicdoc/internal/core/config"
	"logicdoc/internal/core/ports"
	"logicdoc/internal/data/history"
	"logicdoc/internal/shared/observability"
	"logicdoc/internal/shared/util"
	"logicdoc/internal/shared/version"
	"logicdoc/internal/ui/report"
)

func Run(args []string) int {
	opts, err := parseOptions(args)
	if err != nil {
		return 2
	}

	if opts.version {
		fmt.Printf("logicdoc %s\n", version.String())
		return 0
	}

	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to load .env: %v\n", err)
	}

	cleanupLogs := configureLogging(opts.ui, opts.verbose)
	defer cleanupLogs()

	if err := applyModeOptions(&opts); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return 1
	}

	cwd, err := os.Getwd()
	if err != nil {
		slog.Error("failed to detect working directory", "error", err)
		return 1
	}

	cfg, cfgPath, err := loadConfig(opts.configPath, opts.configSet, cwd)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return 1
	}
	if opts.root != "" {
		cfg.Paths.ProjectRoot = opts.root
	}

	paths, err := config.ResolvePaths(cfg, cwd)
	if err != nil {
		slog.Error("failed to resolve runtime paths", "error", err)
		return 1
	}

	req, err := generateRequest(opts, cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfig{
		Enabled:     cfg.Observability.Enabled && cfg.Observability.EnableTracing,
		Endpoint:    cfg.Observability.OTLPEndpoint,
		ServiceName: cfg.Observability.ServiceName,
		Insecure:    cfg.Observability.OTLPInsecure,
	})
	if err != nil {
		slog.Error("failed to initialize tracing", "error", err)
		return 1
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			slog.Warn("failed to flush traces", "error", err)
		}
	}()

	application, err := coreapp.New(cfg, paths)
	if err != nil {
		slog.Error("failed to initialize app", "error", err)
		return 1
	}
	defer func() {
		if err := application.Close(context.Background()); err != nil {
			slog.Error("failed to close app", "error", err)
		}
	}()

	if cfg.Observability.Enabled && cfg.Observability.EnableMetrics {
		server := NewObservabilityServer(fmt.Sprintf(":%d", cfg.Observability.Port), coreapp.NewHealthService(application))
		if err := server.Start(ctx); err != nil {
			slog.Error("failed to start observability server", "error", err)
			return 1
		}
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = server.Stop(stopCtx)
		}()
	}

	trend, err := runHistoryMode(ctx, opts, application.DocumentationService())
	if err != nil {
		slog.Error("history mode failed", "error", err)
		return 1
	}
	if opts.history && !opts.watch && !opts.ui {
		return 0
	}

	result, doc, err := application.Generate(ctx, req)
	if err != nil {
		slog.Error("documentation run failed", "error", err)
		return 1
	}
	if !opts.ui {
		printSummary(os.Stdout, result, doc)
	}

	if !opts.watch && !opts.ui {
		return 0
	}

	if !opts.ui {
		application.SetUpdateHandler(func(update coreapp.Update) {
			printSummary(os.Stdout, update.Result, update.Document)
		})
	}

	watchReq := req
	watchReq.Trigger = "watch"
	if err := application.StartWatcher(ctx, watchReq); err != nil {
		slog.Error("failed to start watcher", "error", err)
		return 1
	}

	if cfg.Watch.ReloadConfigOnChange && cfgPath != "" {
		cfgWatcher := config.NewWatcher(cfgPath, func(next *config.Config) {
			if err := application.ApplyConfig(next); err != nil {
				slog.Error("failed to apply reloaded config", "error", err)
				return
			}
			reloadReq := req
			reloadReq.Trigger = "config"
			if _, _, err := application.Generate(ctx, reloadReq); err != nil {
				slog.Error("rebuild after config reload failed", "error", err)
			}
		})
		if err := cfgWatcher.Start(ctx); err != nil {
			slog.Warn("config reload disabled", "error", err)
		} else {
			defer cfgWatcher.Stop()
		}
	}

	if opts.ui {
		if err := runUI(ctx, application, trend); err != nil {
			slog.Error("failed to run UI", "error", err)
			return 1
		}
		return 0
	}

	<-ctx.Done()
	slog.Info("shutting down")
	return 0
}

func generateRequest(opts cliOptions, cfg *config.Config) (ports.GenerateRequest, error) {
	phases, err := parsePhaseList(opts.phases)
	if err != nil {
		return ports.GenerateRequest{}, err
	}
	for _, n := range phases {
		if _, ok := cfg.PhaseByNumber(n); !ok {
			return ports.GenerateRequest{}, fmt.Errorf("--phase %d is not configured", n)
		}
	}
	return ports.GenerateRequest{
		Phases:        phases,
		DryRunMarkers: opts.dryRunMarkers,
		SkipMarkers:   opts.noMarkers,
		Trigger:       "cli",
	}, nil
}

func loadConfig(path string, explicit bool, cwd string) (*config.Config, string, error) {
	if explicit {
		cfg, err := config.Load(path)
		if err != nil {
			return nil, "", err
		}
		return cfg, path, nil
	}

	if found := config.FindConfig(cwd); found != "" {
		cfg, err := config.Load(found)
		if err != nil {
			return nil, "", err
		}
		return cfg, found, nil
	}

	slog.Debug("no config file found, using built-in phases", "cwd", cwd)
	cfg, err := config.Default()
	if err != nil {
		return nil, "", err
	}
	return cfg, "", nil
}

func applyModeOptions(opts *cliOptions) error {
	if len(opts.args) > 1 {
		return fmt.Errorf("at most one positional project root is accepted, got %d", len(opts.args))
	}
	if len(opts.args) == 1 {
		if opts.root != "" {
			return fmt.Errorf("--root and a positional project root cannot be combined")
		}
		opts.root = opts.args[0]
	}

	if opts.once && (opts.watch || opts.ui) {
		return fmt.Errorf("--once cannot be combined with --watch or --ui")
	}
	if opts.dryRunMarkers && opts.noMarkers {
		return fmt.Errorf("--dry-run-markers and --no-markers cannot be combined")
	}
	if (opts.historyTSV != "" || opts.historyJSON != "") && !opts.history {
		return fmt.Errorf("--history-tsv/--history-json require --history")
	}
	if opts.since != "" && !opts.history {
		return fmt.Errorf("--since requires --history")
	}
	if opts.history {
		if _, err := parseSince(opts.since); err != nil {
			return err
		}
		if _, err := parseHistoryWindow(opts.historyWindow); err != nil {
			return err
		}
	}
	if _, err := parsePhaseList(opts.phases); err != nil {
		return err
	}
	return nil
}

func parseSince(value string) (time.Time, error) {
	raw := strings.TrimSpace(value)
	if raw == "" {
		return time.Time{}, nil
	}

	rfc3339, err := time.Parse(time.RFC3339, raw)
	if err == nil {
		return rfc3339.UTC(), nil
	}

	dateOnly, err := time.Parse("2006-01-02", raw)
	if err == nil {
		return dateOnly.UTC(), nil
	}

	return time.Time{}, fmt.Errorf("--since must be RFC3339 or YYYY-MM-DD, got %q", value)
}

func parseHistoryWindow(value string) (time.Duration, error) {
	raw := strings.TrimSpace(value)
	if raw == "" {
		return 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("--history-window must be a Go duration (example: 24h), got %q", value)
	}
	if d <= 0 {
		return 0, fmt.Errorf("--history-window must be > 0, got %q", value)
	}
	return d, nil
}

func runHistoryMode(ctx context.Context, opts cliOptions, svc ports.DocumentationService) (*history.TrendReport, error) {
	if !opts.history {
		return nil, nil
	}
	if svc == nil {
		return nil, fmt.Errorf("documentation service unavailable")
	}

	since, err := parseSince(opts.since)
	if err != nil {
		return nil, err
	}
	window, err := parseHistoryWindow(opts.historyWindow)
	if err != nil {
		return nil, err
	}

	trend, err := svc.Trend(ctx, since, window)
	if err != nil {
		if errors.Is(err, history.ErrNoRuns) {
			fmt.Println("History: no runs matched the requested time window.")
			return nil, nil
		}
		return nil, err
	}

	fmt.Printf(
		"History: %d runs from %s to %s\n",
		trend.RunCount,
		trend.Since.Format("2006-01-02 15:04:05"),
		trend.Until.Format("2006-01-02 15:04:05"),
	)
	if len(trend.Points) > 0 {
		latest := trend.Points[len(trend.Points)-1]
		fmt.Printf(
			"Trend latest: documented=%d (%+d), missing=%d (%+d), explained=%d (%+d), drop rate=%.2f%%\n",
			latest.FilesDocumented,
			latest.DeltaDocumented,
			latest.FilesMissing,
			latest.DeltaMissing,
			latest.UnitsExplained,
			latest.DeltaExplained,
			latest.DropRatePct,
		)
	}

	if opts.historyTSV != "" {
		tsv, err := report.RenderTrendTSV(trend)
		if err != nil {
			return nil, fmt.Errorf("render trend TSV: %w", err)
		}
		if err := util.WriteFileWithDirs(opts.historyTSV, tsv, 0o644); err != nil {
			return nil, fmt.Errorf("write trend TSV %q: %w", opts.historyTSV, err)
		}
	}

	if opts.historyJSON != "" {
		raw, err := report.RenderTrendJSON(trend)
		if err != nil {
			return nil, fmt.Errorf("render trend JSON: %w", err)
		}
		if err := util.WriteFileWithDirs(opts.historyJSON, raw, 0o644); err != nil {
			return nil, fmt.Errorf("write trend JSON %q: %w", opts.historyJSON, err)
		}
	}

	return &trend, nil
}

func configureLogging(uiMode, verbose bool) func() {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}

	output := os.Stderr
	var closeFn func() = func() {}
	if uiMode {
		logPath := resolveLogPath()
		if err := os.MkdirAll(filepath.Dir(logPath), 0o700); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to create log dir for %s: %v\n", logPath, err)
		} else {
			if fi, err := os.Lstat(logPath); err == nil && (fi.Mode()&os.ModeSymlink) != 0 {
				fmt.Fprintf(os.Stderr, "warning: refusing to write logs to symlink path %s\n", logPath)
			} else {
				f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
				if err == nil {
					output = f
					closeFn = func() { _ = f.Close() }
				} else {
					fmt.Fprintf(os.Stderr, "warning: failed to open log file %s: %v\n", logPath, err)
				}
			}
		}
	}

	logger := slog.New(slog.NewTextHandler(output, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)
	return closeFn
}

func resolveLogPath() string {
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, "logicdoc", "logicdoc.log")
	}

	home, err := os.UserHomeDir()
	if err == nil && home != "" {
		return filepath.Join(home, ".local", "state", "logicdoc", "logicdoc.log")
	}

	return "logicdoc.log"
}
