package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// exerciseStore runs the shared contract every TokenStore must meet.
func exerciseStore(t *testing.T, store TokenStore) {
	t.Helper()
	ctx := context.Background()

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear() on empty store error = %v", err)
	}
	if got, err := store.Load(ctx); err != nil || got != "" {
		t.Fatalf("Load() = %q, %v, want empty", got, err)
	}
	if err := store.Save(ctx, "first"); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := store.Save(ctx, "second"); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if got, err := store.Load(ctx); err != nil || got != "second" {
		t.Fatalf("Load() = %q, %v, want %q", got, err, "second")
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if got, err := store.Load(ctx); err != nil || got != "" {
		t.Fatalf("Load() after Clear = %q, %v", got, err)
	}
}

func TestMemoryTokenStore(t *testing.T) {
	t.Parallel()
	exerciseStore(t, NewMemoryTokenStore(""))
}

func TestFileTokenStore(t *testing.T) {
	t.Parallel()
	dir := filepath.Join(t.TempDir(), "nested")
	store := NewFileTokenStore(dir)
	exerciseStore(t, store)

	if err := store.Save(context.Background(), "abc"); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	info, err := os.Stat(store.Path())
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Fatalf("mode = %v, want 0600", perm)
	}
	if filepath.Base(store.Path()) != TokenKey {
		t.Fatalf("Path() = %q, want file named %q", store.Path(), TokenKey)
	}
}

func TestFileTokenStoreTrimsNewline(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, TokenKey), []byte("abc\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	got, err := NewFileTokenStore(dir).Load(context.Background())
	if err != nil || got != "abc" {
		t.Fatalf("Load() = %q, %v, want %q", got, err, "abc")
	}
}

func TestRedisTokenStore(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	store, err := NewRedisTokenStore(ctx, addr, 15)
	if err != nil {
		t.Fatalf("NewRedisTokenStore() error = %v", err)
	}
	defer store.Close()
	exerciseStore(t, store)
}

func TestMongoTokenStore(t *testing.T) {
	uri := os.Getenv("MONGODB_URI")
	if uri == "" {
		t.Skip("MONGODB_URI not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	store, err := NewMongoTokenStore(ctx, uri, "tripmate_test")
	if err != nil {
		t.Fatalf("NewMongoTokenStore() error = %v", err)
	}
	defer store.Close(context.Background())
	exerciseStore(t, store)
}
