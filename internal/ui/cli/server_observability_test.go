package cli

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"logicdoc/internal/core/app"
	"logicdoc/internal/core/config"
)

func TestObservabilityServer_Health(t *testing.T) {
	cfg, err := config.Default()
	if err != nil {
		t.Fatal(err)
	}
	application, err := app.NewWithDependencies(cfg, config.ResolvedPaths{ProjectRoot: t.TempDir()}, app.Dependencies{})
	if err != nil {
		t.Fatal(err)
	}
	server := NewObservabilityServer("127.0.0.1:0", app.NewHealthService(application))

	rec := httptest.NewRecorder()
	server.handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	var status app.HealthStatus
	if err := json.NewDecoder(rec.Body).Decode(&status); err != nil {
		t.Fatal(err)
	}
	if status.Components["last_run"] != "pending" {
		t.Fatalf("unexpected components: %v", status.Components)
	}

	rec = httptest.NewRecorder()
	server.handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected metrics status %d", rec.Code)
	}
}
