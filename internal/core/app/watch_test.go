package app

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"logicdoc/internal/core/ports"
	"logicdoc/internal/shared/util"
)

func TestWatchRoots(t *testing.T) {
	root := writeProject(t, map[string]string{
		"convex/users.ts":              "",
		"convex/lib/auth.ts":           "",
		"src/app/api/leave/route.ts":   "",
		"src/components/FileTree.tsx":  "",
		"src/components/ui/Button.tsx": "",
	})
	files := []string{
		filepath.Join(root, "convex", "users.ts"),
		filepath.Join(root, "convex", "lib", "auth.ts"),
		filepath.Join(root, "src", "app", "api", "leave", "route.ts"),
		filepath.Join(root, "src", "components", "FileTree.tsx"),
		filepath.Join(root, "src", "components", "ui", "Button.tsx"),
		filepath.Join(root, "src", "hooks", "useMissing.ts"),
	}

	got := watchRoots(root, files)
	want := []string{
		filepath.Join(root, "convex"),
		filepath.Join(root, "src"),
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("watchRoots() = %v, want %v", got, want)
	}
}

func TestHandleChanges_FiltersAndThrottles(t *testing.T) {
	app, root := newTestApp(t, Dependencies{})
	app.rebuilds = util.NewPerMinuteLimiter(1)
	runs := make(chan Update, 4)
	app.SetUpdateHandler(func(u Update) { runs <- u })
	ctx := context.Background()
	req := ports.GenerateRequest{SkipMarkers: true}

	app.HandleChanges(ctx, req, []string{filepath.Join(root, "README.md")})
	select {
	case <-runs:
		t.Fatal("untracked path must not trigger a rebuild")
	default:
	}

	tracked := filepath.Join(root, "convex", "users.ts")
	app.HandleChanges(ctx, req, []string{tracked})
	select {
	case u := <-runs:
		if u.Result.FilesDocumented != 3 {
			t.Fatalf("unexpected rebuild result: %+v", u.Result)
		}
	default:
		t.Fatal("tracked change should trigger a rebuild")
	}

	app.HandleChanges(ctx, req, []string{tracked})
	select {
	case <-runs:
		t.Fatal("second rebuild within the minute should be throttled")
	default:
	}
}

func TestStartWatcher_RebuildsOnChange(t *testing.T) {
	app, root := newTestApp(t, Dependencies{})
	app.Config.Watch.Debounce = 50 * time.Millisecond
	runs := make(chan Update, 8)
	app.SetUpdateHandler(func(u Update) { runs <- u })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := app.StartWatcher(ctx, ports.GenerateRequest{SkipMarkers: true}); err != nil {
		t.Fatalf("start watcher: %v", err)
	}
	time.Sleep(100 * time.Millisecond)

	path := filepath.Join(root, "convex", "users.ts")
	if err := os.WriteFile(path, []byte(usersSource+"\nexport const extra = () => 1;\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case u := <-runs:
		if u.Result.FilesDocumented == 0 {
			t.Fatalf("unexpected rebuild: %+v", u.Result)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for watch rebuild")
	}
}
