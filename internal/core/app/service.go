package app

import (
	"context"
	"fmt"
	"time"

	"logicdoc/internal/core/errors"
	"logicdoc/internal/core/ports"
	"logicdoc/internal/data/history"
	"logicdoc/internal/shared/observability"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type documentationService struct {
	app *App
}

var _ ports.DocumentationService = (*documentationService)(nil)

func NewDocumentationService(app *App) ports.DocumentationService {
	return &documentationService{app: app}
}

func (a *App) DocumentationService() ports.DocumentationService {
	return NewDocumentationService(a)
}

func (s *documentationService) Unwrap() *App {
	return s.app
}

func (s *documentationService) Generate(ctx context.Context, req ports.GenerateRequest) (ports.GenerateResult, error) {
	if err := ctx.Err(); err != nil {
		return ports.GenerateResult{}, err
	}
	if s.app == nil {
		return ports.GenerateResult{}, fmt.Errorf("app is required")
	}
	if s.app.currentConfig() == nil {
		return ports.GenerateResult{}, fmt.Errorf("config is required")
	}
	result, _, err := s.app.Generate(ctx, req)
	if err != nil {
		return ports.GenerateResult{}, errors.AddContext(err, errors.CtxOperation, "generate")
	}
	return result, nil
}

func (s *documentationService) Trend(ctx context.Context, since time.Time, window time.Duration) (history.TrendReport, error) {
	ctx, span := observability.Tracer.Start(ctx, "documentationService.Trend", trace.WithAttributes(
		attribute.String("window", window.String()),
	))
	defer span.End()

	if err := ctx.Err(); err != nil {
		return history.TrendReport{}, err
	}
	if s.app == nil {
		return history.TrendReport{}, fmt.Errorf("app is required")
	}
	if window <= 0 {
		return history.TrendReport{}, errors.New(errors.CodeValidationError, "trend window must be positive")
	}
	report, err := s.app.Trend(ctx, since, window)
	if err != nil {
		return history.TrendReport{}, errors.AddContext(err, errors.CtxOperation, "trend")
	}
	return report, nil
}
