package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

type ResolvedPaths struct {
	ProjectRoot  string
	ConfigDir    string
	StateDir     string
	DatabaseDir  string
	DBPath       string
	OutputDir    string
	MarkdownPath string
	TSVPath      string
}

func ResolvePaths(cfg *Config, cwd string) (ResolvedPaths, error) {
	if strings.TrimSpace(cwd) == "" {
		return ResolvedPaths{}, fmt.Errorf("cwd must not be empty")
	}

	projectRoot := strings.TrimSpace(cfg.Paths.ProjectRoot)
	if projectRoot != "" {
		projectRoot = ResolveRelative(cwd, projectRoot)
	} else {
		root, err := DetectProjectRoot([]string{cwd})
		if err != nil {
			return ResolvedPaths{}, err
		}
		projectRoot = root
	}

	configDir := ResolveRelative(projectRoot, cfg.Paths.ConfigDir)
	stateDir := ResolveRelative(projectRoot, cfg.Paths.StateDir)
	databaseDir := ResolveRelative(projectRoot, cfg.Paths.DatabaseDir)
	outputDir := ResolveRelative(projectRoot, cfg.Paths.OutputDir)

	dbPath := strings.TrimSpace(cfg.DB.Path)
	if filepath.IsAbs(dbPath) {
		dbPath = filepath.Clean(dbPath)
	} else {
		dbPath = filepath.Join(databaseDir, dbPath)
	}

	resolved := ResolvedPaths{
		ProjectRoot: filepath.Clean(projectRoot),
		ConfigDir:   filepath.Clean(configDir),
		StateDir:    filepath.Clean(stateDir),
		DatabaseDir: filepath.Clean(databaseDir),
		DBPath:      filepath.Clean(dbPath),
		OutputDir:   filepath.Clean(outputDir),
	}
	if md := strings.TrimSpace(cfg.Report.Markdown); md != "" {
		resolved.MarkdownPath = ResolveRelative(outputDir, md)
	}
	if tsv := strings.TrimSpace(cfg.Report.TSV); tsv != "" {
		resolved.TSVPath = ResolveRelative(outputDir, tsv)
	}
	return resolved, nil
}

func ResolveRelative(base, value string) string {
	raw := strings.TrimSpace(value)
	if raw == "" {
		return filepath.Clean(base)
	}
	if filepath.IsAbs(raw) {
		return filepath.Clean(raw)
	}
	return filepath.Clean(filepath.Join(base, raw))
}

// DetectProjectRoot walks up from each candidate looking for a project
// marker and falls back to the working directory.
func DetectProjectRoot(candidates []string) (string, error) {
	markers := []string{
		"package.json",
		".git",
		"data/config/logicdoc.toml",
		"logicdoc.toml",
	}

	for _, candidate := range candidates {
		if strings.TrimSpace(candidate) == "" {
			continue
		}

		abs, err := filepath.Abs(candidate)
		if err != nil {
			continue
		}
		root := abs
		if info, err := os.Stat(abs); err == nil && !info.IsDir() {
			root = filepath.Dir(abs)
		}

		for {
			for _, marker := range markers {
				if _, err := os.Stat(filepath.Join(root, marker)); err == nil {
					return filepath.Clean(root), nil
				}
			}
			parent := filepath.Dir(root)
			if parent == root {
				break
			}
			root = parent
		}
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Clean(cwd), nil
}

// FindConfig returns the first existing config candidate under root, or ""
// when none exists.
func FindConfig(root string) string {
	candidates := []string{
		filepath.Join(root, "data", "config", "logicdoc.toml"),
		filepath.Join(root, "logicdoc.toml"),
		filepath.Join(root, "data", "config", "logicdoc.example.toml"),
		filepath.Join(root, "logicdoc.example.toml"),
	}
	for _, c := range candidates {
		if info, err := os.Stat(c); err == nil && !info.IsDir() {
			return c
		}
	}
	return ""
}
