package configwatcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"snaketests_backend/internal/config"
)

const configTemplate = `
server:
  mode: debug
database:
  driver: sqlite
session:
  secret: watcher-secret
storage:
  local_path: %s
pagination:
  posts_per_page: %d
`

func writeConfig(t *testing.T, path string, perPage int) {
	t.Helper()
	body := fmt.Sprintf(configTemplate, filepath.Join(filepath.Dir(path), "uploads"), perPage)
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestWatchConfigReloadsOnWrite(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "configs")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "config.yaml")
	writeConfig(t, path, 10)

	ctx, cancel := context.WithCancel(context.Background())
	reloaded := make(chan *config.Config, 1)
	done := make(chan error, 1)
	go func() {
		done <- WatchConfig(ctx, path, func(cfg *config.Config) {
			select {
			case reloaded <- cfg:
			default:
			}
		})
	}()

	// 等待监听建立
	time.Sleep(200 * time.Millisecond)
	writeConfig(t, path, 3)

	select {
	case cfg := <-reloaded:
		if cfg.Pagination.PostsPerPage != 3 {
			t.Errorf("reloaded posts_per_page = %d, want 3", cfg.Pagination.PostsPerPage)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("config was not reloaded")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("WatchConfig returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("WatchConfig did not stop after cancel")
	}
}

func TestWatchConfigMissingDirectory(t *testing.T) {
	err := WatchConfig(context.Background(), filepath.Join(t.TempDir(), "missing", "config.yaml"), func(*config.Config) {})
	if err == nil {
		t.Fatal("expected an error for a missing directory")
	}
}
