package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func setupSQLite(t *testing.T) *SQLiteGateway {
	t.Helper()
	gw, err := OpenSQLite(filepath.Join(t.TempDir(), "nested", "habitd-test.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = gw.Close() })
	return gw
}

func setupFile(t *testing.T) *FileGateway {
	t.Helper()
	gw, err := NewFileGateway(filepath.Join(t.TempDir(), "state"))
	if err != nil {
		t.Fatalf("new file gateway: %v", err)
	}
	return gw
}

// exerciseGateway runs the behaviour every backend must share.
func exerciseGateway(t *testing.T, gw Gateway) {
	t.Helper()
	ctx := context.Background()

	if _, err := gw.Load(ctx, "habits"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on empty store, got %v", err)
	}
	if err := gw.Save(ctx, "habits", []byte("v1")); err != nil {
		t.Fatalf("save v1: %v", err)
	}
	if err := gw.Save(ctx, "habits", []byte("v2")); err != nil {
		t.Fatalf("save v2: %v", err)
	}
	got, err := gw.Load(ctx, "habits")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if string(got) != "v2" {
		t.Fatalf("expected last write to win, got %q", got)
	}
	if _, err := gw.Load(ctx, "other"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected keys to be isolated, got %v", err)
	}
	if err := gw.Save(ctx, "  ", []byte("x")); !errors.Is(err, ErrEmptyKey) {
		t.Fatalf("expected ErrEmptyKey, got %v", err)
	}
}

func TestSQLiteGateway(t *testing.T) {
	exerciseGateway(t, setupSQLite(t))
}

func TestFileGateway(t *testing.T) {
	exerciseGateway(t, setupFile(t))
}

func TestMemoryGateway(t *testing.T) {
	exerciseGateway(t, NewMemoryGateway())
}

func TestSQLiteGatewayDelete(t *testing.T) {
	gw := setupSQLite(t)
	ctx := context.Background()
	if err := gw.Save(ctx, "habits", []byte("[]")); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := gw.Delete(ctx, "habits"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := gw.Delete(ctx, "habits"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestFileGatewayWritesAtomically(t *testing.T) {
	gw := setupFile(t)
	if err := gw.Save(context.Background(), "habits", []byte("[]")); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := os.Stat(gw.Path("habits") + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("expected temp file to be renamed away, stat err=%v", err)
	}
	if filepath.Base(gw.Path("../escape")) != ".._escape.json" {
		t.Fatalf("unexpected sanitized path: %s", gw.Path("../escape"))
	}
}

func TestMemoryGatewayInjectedFailures(t *testing.T) {
	gw := NewMemoryGateway()
	boom := errors.New("disk full")
	gw.SetFailures(nil, boom)
	if err := gw.Save(context.Background(), "habits", []byte("x")); !errors.Is(err, boom) {
		t.Fatalf("expected injected save error, got %v", err)
	}
	if gw.Saves() != 0 {
		t.Fatalf("failed save should not count, got %d", gw.Saves())
	}
	_ = gw.Close()
	if _, err := gw.Load(context.Background(), "habits"); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}

func TestOpenFactory(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	gw, err := Open(ctx, Options{Backend: "SQLite", StateDir: dir})
	if err != nil {
		t.Fatalf("open sqlite backend: %v", err)
	}
	if _, ok := gw.(*SQLiteGateway); !ok {
		t.Fatalf("expected *SQLiteGateway, got %T", gw)
	}
	_ = gw.Close()

	gw, err = Open(ctx, Options{StateDir: dir})
	if err != nil {
		t.Fatalf("open default backend: %v", err)
	}
	if _, ok := gw.(*FileGateway); !ok {
		t.Fatalf("expected default *FileGateway, got %T", gw)
	}

	if _, err := Open(ctx, Options{Backend: "floppy"}); !errors.Is(err, ErrUnknownBackend) {
		t.Fatalf("expected ErrUnknownBackend, got %v", err)
	}
}

func TestRedisGatewayIntegration(t *testing.T) {
	url := os.Getenv("HABITD_TEST_REDIS_URL")
	if url == "" {
		t.Skip("HABITD_TEST_REDIS_URL not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	gw, err := OpenRedis(ctx, url, "habitd-test-"+time.Now().Format("150405.000000"))
	if err != nil {
		t.Fatalf("open redis: %v", err)
	}
	defer gw.Close()
	exerciseGateway(t, gw)
}

func TestPostgresGatewayIntegration(t *testing.T) {
	url := os.Getenv("HABITD_TEST_POSTGRES_URL")
	if url == "" {
		t.Skip("HABITD_TEST_POSTGRES_URL not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	gw, err := OpenPostgres(ctx, url)
	if err != nil {
		t.Fatalf("open postgres: %v", err)
	}
	defer gw.Close()
	if _, err := gw.pool.Exec(ctx, `DELETE FROM habitd_kv WHERE key IN ('habits', 'other')`); err != nil {
		t.Fatalf("reset table: %v", err)
	}
	exerciseGateway(t, gw)
}
