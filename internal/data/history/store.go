package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const (
	driverName  = "sqlite"
	maxAttempts = 5
)

// timeLayout is fixed-width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

type Store struct {
	path string
	db   *sql.DB
	mu   sync.Mutex
}

// Open creates or opens the run history database at path. busyTimeout <= 0
// falls back to two seconds.
func Open(path string, busyTimeout time.Duration) (*Store, error) {
	cleanPath := strings.TrimSpace(path)
	if cleanPath == "" {
		return nil, fmt.Errorf("history path must not be empty")
	}
	if info, err := os.Stat(cleanPath); err == nil && info.IsDir() {
		return nil, fmt.Errorf("history path %q is a directory, expected file", cleanPath)
	}

	dir := filepath.Dir(cleanPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create history directory %q: %w", dir, err)
		}
	}

	if busyTimeout <= 0 {
		busyTimeout = 2 * time.Second
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)",
		cleanPath, busyTimeout.Milliseconds())
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite history %q: %w", cleanPath, err)
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite history %q: %w", cleanPath, err)
	}
	if err := EnsureSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize sqlite schema %q: %w", cleanPath, err)
	}

	return &Store{path: cleanPath, db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// SaveRun writes a run and its files in one transaction. An empty run ID is
// filled with a fresh UUID and returned.
func (s *Store) SaveRun(ctx context.Context, run Run) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	run.ProjectKey = normalizeProjectKey(run.ProjectKey)
	if strings.TrimSpace(run.ID) == "" {
		run.ID = uuid.NewString()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}
	if run.FinishedAt.IsZero() {
		run.FinishedAt = run.StartedAt
	}
	if run.SchemaVersion == 0 {
		run.SchemaVersion = SchemaVersion
	}
	if run.SchemaVersion != SchemaVersion {
		return "", fmt.Errorf("unsupported run schema version %d", run.SchemaVersion)
	}

	err := s.withRetry("save run", func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback() }()

		if _, err := tx.ExecContext(ctx, `
INSERT INTO runs (
  id, project_key, schema_version, started_at_utc, finished_at_utc, phase_count,
  files_documented, files_missing, units_explained, units_dropped, markers_added
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID,
			run.ProjectKey,
			run.SchemaVersion,
			formatTime(run.StartedAt),
			formatTime(run.FinishedAt),
			run.PhaseCount,
			run.FilesDocumented,
			run.FilesMissing,
			run.UnitsExplained,
			run.UnitsDropped,
			run.MarkersAdded,
		); err != nil {
			return err
		}

		stmt, err := tx.PrepareContext(ctx, `
INSERT INTO run_files (
  run_id, ordinal, path, phase, found, domain, functions, dropped_units, listing_chars, syntax_errors
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for i, f := range run.Files {
			if _, err := stmt.ExecContext(ctx,
				run.ID, i, f.Path, f.Phase, boolToInt(f.Found), f.Domain,
				f.Functions, f.DroppedUnits, f.ListingChars, f.SyntaxErrors,
			); err != nil {
				return fmt.Errorf("insert run file %q: %w", f.Path, err)
			}
		}
		return tx.Commit()
	})
	if err != nil {
		return "", err
	}
	return run.ID, nil
}

// LoadRuns returns runs for projectKey started at or after since, oldest
// first. Files are not populated; use LoadRunFiles.
func (s *Store) LoadRuns(ctx context.Context, projectKey string, since time.Time) ([]Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
SELECT
  id, project_key, schema_version, started_at_utc, finished_at_utc, phase_count,
  files_documented, files_missing, units_explained, units_dropped, markers_added
FROM runs
WHERE project_key = ?`
	args := []any{normalizeProjectKey(projectKey)}
	if !since.IsZero() {
		query += " AND started_at_utc >= ?"
		args = append(args, formatTime(since))
	}
	query += " ORDER BY started_at_utc ASC, id ASC"

	var rows *sql.Rows
	err := s.withRetry("load runs", func() error {
		var qErr error
		rows, qErr = s.db.QueryContext(ctx, query, args...)
		return qErr
	})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := make([]Run, 0)
	for rows.Next() {
		var (
			run        Run
			startedRaw string
			finishRaw  string
		)
		if err := rows.Scan(
			&run.ID,
			&run.ProjectKey,
			&run.SchemaVersion,
			&startedRaw,
			&finishRaw,
			&run.PhaseCount,
			&run.FilesDocumented,
			&run.FilesMissing,
			&run.UnitsExplained,
			&run.UnitsDropped,
			&run.MarkersAdded,
		); err != nil {
			return nil, fmt.Errorf("scan run row: %w", err)
		}
		if run.StartedAt, err = parseTime(startedRaw); err != nil {
			return nil, err
		}
		if run.FinishedAt, err = parseTime(finishRaw); err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run rows: %w", err)
	}
	return runs, nil
}

func (s *Store) LoadRunFiles(ctx context.Context, runID string) ([]RunFile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rows *sql.Rows
	err := s.withRetry("load run files", func() error {
		var qErr error
		rows, qErr = s.db.QueryContext(ctx, `
SELECT path, phase, found, domain, functions, dropped_units, listing_chars, syntax_errors
FROM run_files
WHERE run_id = ?
ORDER BY ordinal ASC`, runID)
		return qErr
	})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	files := make([]RunFile, 0)
	for rows.Next() {
		var (
			f     RunFile
			found int
		)
		if err := rows.Scan(&f.Path, &f.Phase, &found, &f.Domain, &f.Functions, &f.DroppedUnits, &f.ListingChars, &f.SyntaxErrors); err != nil {
			return nil, fmt.Errorf("scan run file row: %w", err)
		}
		f.Found = found != 0
		files = append(files, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run file rows: %w", err)
	}
	return files, nil
}

// PruneBefore deletes runs started before cutoff and returns how many were
// removed. Their files go with them via the foreign key.
func (s *Store) PruneBefore(ctx context.Context, projectKey string, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed int64
	err := s.withRetry("prune runs", func() error {
		res, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE project_key = ? AND started_at_utc < ?`,
			normalizeProjectKey(projectKey), formatTime(cutoff))
		if err != nil {
			return err
		}
		removed, err = res.RowsAffected()
		return err
	})
	return removed, err
}

func (s *Store) withRetry(op string, fn func() error) error {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		if !isLockError(err) || attempt == maxAttempts {
			break
		}
		time.Sleep(time.Duration(attempt*25) * time.Millisecond)
	}
	return fmt.Errorf("%s: %w", op, lastErr)
}

func isLockError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "busy")
}

func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

func IsCorruptError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "malformed") || strings.Contains(msg, "not a database") || errors.Is(err, os.ErrInvalid)
}

func normalizeProjectKey(key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return "default"
	}
	return key
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(raw string) (time.Time, error) {
	t, err := time.Parse(timeLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", raw, err)
	}
	return t.UTC(), nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
