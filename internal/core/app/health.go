package app

import (
	"context"
	"fmt"
	"time"

	"logicdoc/internal/shared/util"
)

type HealthStatus struct {
	Status     string            `json:"status"`
	Timestamp  time.Time         `json:"timestamp"`
	Components map[string]string `json:"components"`
}

type HealthService struct {
	app *App
}

func NewHealthService(app *App) *HealthService {
	return &HealthService{app: app}
}

func (s *HealthService) Check(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:     "up",
		Timestamp:  time.Now().UTC(),
		Components: make(map[string]string),
	}
	if err := ctx.Err(); err != nil {
		status.Status = "down"
		status.Components["context"] = err.Error()
		return status
	}

	cfg := s.app.currentConfig()
	status.Components["phases"] = fmt.Sprintf("ok (%d phases, %d files)", len(cfg.Phases), len(cfg.AllFiles()))
	status.Components["source_cache"] = fmt.Sprintf("ok (%d entries)", s.app.cacheLen())
	status.Components["runtime"] = util.ReadRuntimeStats().String()

	if last, ok := s.app.LastUpdate(); ok {
		status.Components["last_run"] = fmt.Sprintf("ok (%s, %d documented, %d missing)",
			last.Result.StartedAt.UTC().Format(time.RFC3339), last.Result.FilesDocumented, last.Result.FilesMissing)
	} else {
		status.Components["last_run"] = "pending"
	}

	if s.app.history != nil {
		status.Components["history"] = "ok"
	} else if cfg.DB.Enabled {
		status.Status = "degraded"
		status.Components["history"] = "missing but enabled in config"
	}

	if s.app.syntax != nil {
		status.Components["syntax"] = "ok"
	} else if cfg.Syntax.Enabled {
		status.Status = "degraded"
		status.Components["syntax"] = "missing but enabled in config"
	}

	if s.app.redactor != nil {
		status.Components["redact"] = "ok"
	} else if cfg.Redact.Enabled {
		status.Status = "degraded"
		status.Components["redact"] = "missing but enabled in config"
	}

	if s.app.publisher != nil {
		status.Components["publisher"] = "ok"
	} else if cfg.Publish.Enabled {
		status.Status = "degraded"
		status.Components["publisher"] = "missing but enabled in config"
	}

	if s.app.watching() {
		status.Components["watcher"] = "ok"
	}
	return status
}
