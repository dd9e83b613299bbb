package cli

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
)

type cliOptions struct {
	configPath    string
	configSet     bool
	root          string
	once          bool
	watch         bool
	ui            bool
	dryRunMarkers bool
	noMarkers     bool
	history       bool
	since         string
	historyWindow string
	historyTSV    string
	historyJSON   string
	phases        string
	verbose       bool
	version       bool
	args          []string
}

const defaultConfigPath = "./data/config/logicdoc.toml"

func parseOptions(args []string) (cliOptions, error) {
	fs := flag.NewFlagSet("logicdoc", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var opts cliOptions
	fs.StringVar(&opts.configPath, "config", defaultConfigPath, "Path to config file")
	fs.StringVar(&opts.root, "root", "", "Project root (overrides [paths].project_root)")
	fs.BoolVar(&opts.once, "once", false, "Generate once and exit (the default unless --watch or --ui)")
	fs.BoolVar(&opts.watch, "watch", false, "Regenerate whenever a documented file changes")
	fs.BoolVar(&opts.ui, "ui", false, "Browse the generated documentation in a terminal UI")
	fs.BoolVar(&opts.dryRunMarkers, "dry-run-markers", false, "Print marker diffs instead of editing source files")
	fs.BoolVar(&opts.noMarkers, "no-markers", false, "Do not add documentation markers to source files")
	fs.BoolVar(&opts.history, "history", false, "Print the run trend from the history database")
	fs.StringVar(&opts.since, "since", "", "Trend start time (RFC3339 or YYYY-MM-DD)")
	fs.StringVar(&opts.historyWindow, "history-window", "24h", "Moving-average window for the trend")
	fs.StringVar(&opts.historyTSV, "history-tsv", "", "Write the trend as TSV to this path")
	fs.StringVar(&opts.historyJSON, "history-json", "", "Write the trend as JSON to this path")
	fs.StringVar(&opts.phases, "phase", "", "Comma-separated phase numbers to document (default all)")
	fs.BoolVar(&opts.verbose, "verbose", false, "Enable debug logging")
	fs.BoolVar(&opts.version, "version", false, "Print version and exit")

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	opts.args = fs.Args()
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "config" {
			opts.configSet = true
		}
	})
	return opts, nil
}

func parsePhaseList(raw string) ([]int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	out := make([]int, 0, len(parts))
	seen := make(map[int]bool, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("--phase must be a comma-separated list of positive numbers, got %q", raw)
		}
		if seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out, nil
}
