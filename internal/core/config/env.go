package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads KEY=VALUE pairs from the given files (default ".env")
// into the process environment. Variables already set win. Missing files
// are skipped.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return err
		}
	}
	return nil
}

// ApplyEnvOverrides applies environment variable overrides to the configuration.
// Pattern: LOGICDOC_[SECTION]_[KEY] (e.g., LOGICDOC_OBSERVABILITY_PORT).
func ApplyEnvOverrides(cfg *Config) {
	// Paths
	setEnvString(&cfg.Paths.ProjectRoot, "LOGICDOC_PATHS_PROJECT_ROOT")
	setEnvString(&cfg.Paths.ConfigDir, "LOGICDOC_PATHS_CONFIG_DIR")
	setEnvString(&cfg.Paths.StateDir, "LOGICDOC_PATHS_STATE_DIR")
	setEnvString(&cfg.Paths.DatabaseDir, "LOGICDOC_PATHS_DATABASE_DIR")
	setEnvString(&cfg.Paths.OutputDir, "LOGICDOC_PATHS_OUTPUT_DIR")

	// Report
	setEnvString(&cfg.Report.Markdown, "LOGICDOC_REPORT_MARKDOWN")
	setEnvString(&cfg.Report.TSV, "LOGICDOC_REPORT_TSV")
	setEnvInt(&cfg.Report.MaxFunctions, "LOGICDOC_REPORT_MAX_FUNCTIONS")
	setEnvInt(&cfg.Report.MaxExcerptChars, "LOGICDOC_REPORT_MAX_EXCERPT_CHARS")
	setEnvInt(&cfg.Report.MaxListingChars, "LOGICDOC_REPORT_MAX_LISTING_CHARS")

	// Marker
	setEnvBoolPtr(&cfg.Marker.Enabled, "LOGICDOC_MARKER_ENABLED")
	setEnvBool(&cfg.Marker.DryRun, "LOGICDOC_MARKER_DRY_RUN")

	// Database
	setEnvBool(&cfg.DB.Enabled, "LOGICDOC_DB_ENABLED")
	setEnvString(&cfg.DB.Path, "LOGICDOC_DB_PATH")
	setEnvDuration(&cfg.DB.BusyTimeout, "LOGICDOC_DB_BUSY_TIMEOUT")
	setEnvDuration(&cfg.DB.Retention, "LOGICDOC_DB_RETENTION")

	// Watch
	setEnvDuration(&cfg.Watch.Debounce, "LOGICDOC_WATCH_DEBOUNCE")
	setEnvInt(&cfg.Watch.MaxRebuildsPerMinute, "LOGICDOC_WATCH_MAX_REBUILDS_PER_MINUTE")

	// Caches
	setEnvInt(&cfg.Caches.FileContents, "LOGICDOC_CACHES_FILE_CONTENTS")

	// Syntax
	setEnvBool(&cfg.Syntax.Enabled, "LOGICDOC_SYNTAX_ENABLED")

	// Redact
	setEnvBool(&cfg.Redact.Enabled, "LOGICDOC_REDACT_ENABLED")

	// Publish
	setEnvBool(&cfg.Publish.Enabled, "LOGICDOC_PUBLISH_ENABLED")
	setEnvString(&cfg.Publish.Endpoint, "LOGICDOC_PUBLISH_ENDPOINT")
	setEnvString(&cfg.Publish.Bucket, "LOGICDOC_PUBLISH_BUCKET")
	setEnvString(&cfg.Publish.Prefix, "LOGICDOC_PUBLISH_PREFIX")
	setEnvString(&cfg.Publish.Region, "LOGICDOC_PUBLISH_REGION")
	setEnvSecret(&cfg.Publish.AccessKey, "LOGICDOC_PUBLISH_ACCESS_KEY")
	setEnvSecret(&cfg.Publish.SecretKey, "LOGICDOC_PUBLISH_SECRET_KEY")
	setEnvBool(&cfg.Publish.UseSSL, "LOGICDOC_PUBLISH_USE_SSL")

	// Observability
	setEnvBool(&cfg.Observability.Enabled, "LOGICDOC_OBSERVABILITY_ENABLED")
	setEnvInt(&cfg.Observability.Port, "LOGICDOC_OBSERVABILITY_PORT")
	setEnvString(&cfg.Observability.OTLPEndpoint, "LOGICDOC_OBSERVABILITY_OTLP_ENDPOINT")
	setEnvBool(&cfg.Observability.OTLPInsecure, "LOGICDOC_OBSERVABILITY_OTLP_INSECURE")
	setEnvBool(&cfg.Observability.EnableTracing, "LOGICDOC_OBSERVABILITY_ENABLE_TRACING")
	setEnvBool(&cfg.Observability.EnableMetrics, "LOGICDOC_OBSERVABILITY_ENABLE_METRICS")
}

func setEnvString(target *string, key string) {
	if val, ok := os.LookupEnv(key); ok {
		slog.Debug("applying env override", "key", key, "value", val)
		*target = val
	}
}

func setEnvSecret(target *string, key string) {
	if val, ok := os.LookupEnv(key); ok {
		slog.Debug("applying env override", "key", key)
		*target = val
	}
}

func setEnvInt(target *int, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = i
		}
	}
}

func setEnvBool(target *bool, key string) {
	if val, ok := os.LookupEnv(key); ok {
		b, err := strconv.ParseBool(strings.ToLower(val))
		if err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = b
		}
	}
}

func setEnvBoolPtr(target **bool, key string) {
	val, ok := os.LookupEnv(key)
	if !ok {
		return
	}
	b, err := strconv.ParseBool(strings.ToLower(val))
	if err != nil {
		return
	}
	slog.Debug("applying env override", "key", key, "value", val)
	*target = &b
}

func setEnvDuration(target *time.Duration, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = d
		}
	}
}
