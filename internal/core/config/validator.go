package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"logicdoc/internal/core/config/helpers"

	"github.com/gobwas/glob"
)

func validateVersion(cfg *Config) error {
	if cfg.Version != 1 {
		return fmt.Errorf("unsupported config version %d; supported version is 1", cfg.Version)
	}
	return nil
}

func validatePhases(cfg *Config) error {
	if len(cfg.Phases) == 0 {
		return fmt.Errorf("phases must declare at least one phase")
	}
	seen := make(map[int]bool, len(cfg.Phases))
	for i, phase := range cfg.Phases {
		ref := fmt.Sprintf("phases[%d]", i)
		if phase.Number < 1 {
			return fmt.Errorf("%s.number must be >= 1, got %d", ref, phase.Number)
		}
		if seen[phase.Number] {
			return fmt.Errorf("duplicate phase number %d", phase.Number)
		}
		seen[phase.Number] = true
		if phase.Title == "" {
			return fmt.Errorf("%s.title must not be empty", ref)
		}
		if len(phase.Files) == 0 {
			return fmt.Errorf("%s.files must not be empty", ref)
		}
		files := make(map[string]bool, len(phase.Files))
		for j, file := range phase.Files {
			if helpers.HasWildcard(file) {
				return fmt.Errorf("%s.files[%d] %q must be a file path, not a pattern", ref, j, file)
			}
			if filepath.IsAbs(file) {
				return fmt.Errorf("%s.files[%d] %q must be relative to paths.project_root", ref, j, file)
			}
			key := filepath.ToSlash(filepath.Clean(file))
			if files[key] {
				return fmt.Errorf("%s lists %q more than once", ref, file)
			}
			files[key] = true
		}
	}
	return nil
}

func validateExclude(cfg *Config) error {
	for i, pattern := range cfg.Exclude.Dirs {
		if strings.TrimSpace(pattern) == "" {
			return fmt.Errorf("exclude.dirs[%d] must not be empty", i)
		}
		if _, err := glob.Compile(pattern); err != nil {
			return fmt.Errorf("exclude.dirs[%d] %q is not a valid glob: %w", i, pattern, err)
		}
	}
	for i, pattern := range cfg.Exclude.Files {
		if strings.TrimSpace(pattern) == "" {
			return fmt.Errorf("exclude.files[%d] must not be empty", i)
		}
		if _, err := glob.Compile(pattern, '/'); err != nil {
			return fmt.Errorf("exclude.files[%d] %q is not a valid glob: %w", i, pattern, err)
		}
	}
	return nil
}

func validateReport(cfg *Config) error {
	if strings.TrimSpace(cfg.Report.Markdown) == "" && strings.TrimSpace(cfg.Report.TSV) == "" {
		return fmt.Errorf("report.markdown and report.tsv must not both be empty")
	}
	if cfg.Report.Markdown != "" && cfg.Report.TSV != "" &&
		helpers.IsPathOverlap(filepath.Clean(cfg.Report.Markdown), filepath.Clean(cfg.Report.TSV)) {
		return fmt.Errorf("output conflict: report.markdown and report.tsv share the same path %q", cfg.Report.Markdown)
	}
	for _, file := range cfg.AllFiles() {
		for name, out := range map[string]string{"report.markdown": cfg.Report.Markdown, "report.tsv": cfg.Report.TSV} {
			if out != "" && filepath.Clean(out) == filepath.Clean(file) {
				return fmt.Errorf("%s %q would overwrite a documented source file", name, out)
			}
		}
	}

	seen := make(map[string]bool, len(cfg.Report.UpdateMarkdown))
	for i, injection := range cfg.Report.UpdateMarkdown {
		ref := fmt.Sprintf("report.update_markdown[%d]", i)
		file := strings.TrimSpace(injection.File)
		if file == "" {
			return fmt.Errorf("%s.file must not be empty", ref)
		}
		marker := strings.TrimSpace(injection.Marker)
		if marker == "" {
			return fmt.Errorf("%s.marker must not be empty", ref)
		}
		key := file + "|" + marker
		if seen[key] {
			return fmt.Errorf("duplicate markdown injection target: file=%q marker=%q", file, marker)
		}
		seen[key] = true
	}
	return nil
}

func validateMarker(cfg *Config) error {
	if strings.Count(cfg.Marker.Template, "%d") != 1 {
		return fmt.Errorf("marker.template must contain exactly one %%d, got %q", cfg.Marker.Template)
	}
	if strings.Contains(cfg.Marker.Template, "\n") {
		return fmt.Errorf("marker.template must be a single line")
	}
	return nil
}

func validateWatch(cfg *Config) error {
	if cfg.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative")
	}
	if cfg.Watch.MaxRebuildsPerMinute < 1 {
		return fmt.Errorf("watch.max_rebuilds_per_minute must be >= 1")
	}
	return nil
}

func validateDatabase(cfg *Config) error {
	if cfg.DB.Retention < 0 {
		return fmt.Errorf("db.retention must be >= 0")
	}
	return nil
}

func validatePublish(cfg *Config) error {
	if !cfg.Publish.Enabled {
		return nil
	}
	if strings.TrimSpace(cfg.Publish.Endpoint) == "" {
		return fmt.Errorf("publish.endpoint is required when publish.enabled is true")
	}
	if strings.TrimSpace(cfg.Publish.Bucket) == "" {
		return fmt.Errorf("publish.bucket is required when publish.enabled is true")
	}
	if strings.Contains(cfg.Publish.Endpoint, "://") {
		return fmt.Errorf("publish.endpoint must be host[:port] without a scheme, got %q", cfg.Publish.Endpoint)
	}
	return nil
}

func validateRedact(cfg *Config) error {
	for i, pattern := range cfg.Redact.Patterns {
		ref := fmt.Sprintf("redact.patterns[%d]", i)
		if strings.TrimSpace(pattern.Name) == "" {
			return fmt.Errorf("%s.name must not be empty", ref)
		}
		if _, err := regexp.Compile(pattern.Regex); err != nil || strings.TrimSpace(pattern.Regex) == "" {
			return fmt.Errorf("%s.regex %q is not a valid regular expression", ref, pattern.Regex)
		}
		switch strings.ToLower(strings.TrimSpace(pattern.Severity)) {
		case "", "low", "medium", "high", "critical":
		default:
			return fmt.Errorf("%s.severity must be low, medium, high or critical, got %q", ref, pattern.Severity)
		}
	}
	return nil
}

func validateObservability(cfg *Config) error {
	if !cfg.Observability.Enabled {
		return nil
	}
	if cfg.Observability.Port < 1 || cfg.Observability.Port > 65535 {
		return fmt.Errorf("observability.port must be between 1 and 65535, got %d", cfg.Observability.Port)
	}
	if cfg.Observability.EnableTracing && strings.TrimSpace(cfg.Observability.OTLPEndpoint) == "" {
		return fmt.Errorf("observability.otlp_endpoint is required when enable_tracing is true")
	}
	return nil
}

// Validate returns every problem found, in a stable order.
func Validate(cfg *Config) []error {
	var errs []error
	for _, check := range []func(*Config) error{
		validateVersion,
		validatePhases,
		validateExclude,
		validateReport,
		validateMarker,
		validateWatch,
		validateDatabase,
		validateRedact,
		validatePublish,
		validateObservability,
	} {
		if err := check(cfg); err != nil {
			errs = append(errs, err)
		}
	}
	errs = append(errs, validatePaths(cfg)...)
	return errs
}

func validatePaths(cfg *Config) []error {
	var errs []error
	root := strings.TrimSpace(cfg.Paths.ProjectRoot)
	if root == "" {
		return nil
	}
	stat, err := os.Stat(root)
	if os.IsNotExist(err) {
		errs = append(errs, fmt.Errorf("paths.project_root %q does not exist", root))
	} else if err == nil && !stat.IsDir() {
		errs = append(errs, fmt.Errorf("paths.project_root %q is not a directory", root))
	}
	return errs
}
