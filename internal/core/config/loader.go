package config

import (
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const DefaultMarkerTemplate = "DOCUMENTED BY SCRIPT - Phase %d"

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(string(data))
}

// Parse decodes TOML text, fills defaults, applies LOGICDOC_* overrides and
// validates the result.
func Parse(data string) (*Config, error) {
	var cfg Config
	if _, err := toml.Decode(data, &cfg); err != nil {
		return nil, err
	}
	return finalize(&cfg)
}

// Default returns the built-in configuration: four phases covering a
// Convex + Next.js project layout.
func Default() (*Config, error) {
	return finalize(&Config{})
}

func finalize(cfg *Config) (*Config, error) {
	applyDefaults(cfg)
	ApplyEnvOverrides(cfg)
	normalizePhases(cfg)
	if err := firstError(Validate(cfg)); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Version == 0 {
		cfg.Version = 1
	}

	if strings.TrimSpace(cfg.Paths.ConfigDir) == "" {
		cfg.Paths.ConfigDir = "data/config"
	}
	if strings.TrimSpace(cfg.Paths.StateDir) == "" {
		cfg.Paths.StateDir = "data/state"
	}
	if strings.TrimSpace(cfg.Paths.DatabaseDir) == "" {
		cfg.Paths.DatabaseDir = "data/database"
	}
	if strings.TrimSpace(cfg.Paths.OutputDir) == "" {
		cfg.Paths.OutputDir = "docs"
	}

	if len(cfg.Phases) == 0 {
		cfg.Phases = DefaultPhases()
	}

	if cfg.Exclude.Dirs == nil {
		cfg.Exclude.Dirs = []string{"node_modules", ".git", ".next", "dist", "build", "coverage"}
	}

	if strings.TrimSpace(cfg.Report.Title) == "" {
		cfg.Report.Title = "Backend Code Documentation"
	}
	if strings.TrimSpace(cfg.Report.Subtitle) == "" {
		cfg.Report.Subtitle = "Complete Backend & Logic Documentation"
	}
	if strings.TrimSpace(cfg.Report.Markdown) == "" {
		cfg.Report.Markdown = "backend_documentation.md"
	}
	if cfg.Report.MaxFunctions <= 0 {
		cfg.Report.MaxFunctions = 10
	}
	if cfg.Report.MaxExcerptChars <= 0 {
		cfg.Report.MaxExcerptChars = 800
	}
	if cfg.Report.MaxListingChars <= 0 {
		cfg.Report.MaxListingChars = 8000
	}

	if strings.TrimSpace(cfg.Marker.Template) == "" {
		cfg.Marker.Template = DefaultMarkerTemplate
	}

	if strings.TrimSpace(cfg.DB.Path) == "" {
		cfg.DB.Path = "history.db"
	}
	if cfg.DB.BusyTimeout <= 0 {
		cfg.DB.BusyTimeout = 5 * time.Second
	}

	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = 500 * time.Millisecond
	}
	if cfg.Watch.MaxRebuildsPerMinute <= 0 {
		cfg.Watch.MaxRebuildsPerMinute = 30
	}

	if cfg.Caches.FileContents <= 0 {
		cfg.Caches.FileContents = 256
	}

	if cfg.Redact.EntropyThreshold <= 0 {
		cfg.Redact.EntropyThreshold = 4.0
	}
	if cfg.Redact.MinTokenLength <= 0 {
		cfg.Redact.MinTokenLength = 20
	}

	if strings.TrimSpace(cfg.Publish.Prefix) == "" {
		cfg.Publish.Prefix = "logicdoc"
	}

	if cfg.Observability.Port == 0 {
		cfg.Observability.Port = 9464
	}
	if strings.TrimSpace(cfg.Observability.ServiceName) == "" {
		cfg.Observability.ServiceName = "logicdoc"
	}
}

func normalizePhases(cfg *Config) {
	for i := range cfg.Phases {
		phase := &cfg.Phases[i]
		if phase.Number == 0 {
			phase.Number = i + 1
		}
		phase.Title = strings.TrimSpace(phase.Title)
		files := phase.Files[:0]
		for _, f := range phase.Files {
			f = strings.TrimSpace(f)
			if f == "" {
				continue
			}
			files = append(files, f)
		}
		phase.Files = files
	}
}

func firstError(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	return errs[0]
}
