package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestFileStore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	store := NewFileStore(path)

	token, err := store.Get(ctx)
	if err != nil {
		t.Fatalf("unexpected error on missing file: %v", err)
	}
	if token != "" {
		t.Fatalf("expected empty token, got %q", token)
	}

	if err := store.Set(ctx, "abc"); err != nil {
		t.Fatalf("set: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("expected 0600 permissions, got %v", info.Mode().Perm())
	}

	// A fresh store reads what the previous one persisted.
	token, err = NewFileStore(path).Get(ctx)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if token != "abc" {
		t.Fatalf("expected abc, got %q", token)
	}

	if err := store.Remove(ctx); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := store.Remove(ctx); err != nil {
		t.Fatalf("second remove should be a no-op: %v", err)
	}

	token, _ = store.Get(ctx)
	if token != "" {
		t.Fatalf("expected token to be removed, got %q", token)
	}
}

func TestFileStoreCorrupted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	if _, err := NewFileStore(path).Get(context.Background()); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore("initial")

	token, _ := store.Get(ctx)
	if token != "initial" {
		t.Fatalf("expected initial, got %q", token)
	}

	_ = store.Set(ctx, "next")
	token, _ = store.Get(ctx)
	if token != "next" {
		t.Fatalf("expected next, got %q", token)
	}

	_ = store.Remove(ctx)
	token, _ = store.Get(ctx)
	if token != "" {
		t.Fatalf("expected empty token, got %q", token)
	}
}

func TestNewStore(t *testing.T) {
	ctx := context.Background()

	store, err := NewStore(ctx, &Config{Backend: "memory"})
	if err != nil {
		t.Fatalf("memory: %v", err)
	}
	if _, ok := store.(*MemoryStore); !ok {
		t.Fatalf("expected *MemoryStore, got %T", store)
	}

	path := filepath.Join(t.TempDir(), "s.json")
	store, err = NewStore(ctx, &Config{File: path})
	if err != nil {
		t.Fatalf("file: %v", err)
	}
	fileStore, ok := store.(*FileStore)
	if !ok {
		t.Fatalf("expected *FileStore, got %T", store)
	}
	if fileStore.Path() != path {
		t.Fatalf("expected path %q, got %q", path, fileStore.Path())
	}

	if _, err := NewStore(ctx, &Config{Backend: "etcd"}); err == nil {
		t.Fatalf("expected error for unsupported backend")
	}

	if _, err := NewStore(ctx, &Config{Backend: "redis", RedisURL: "http://localhost"}); err == nil {
		t.Fatalf("expected error for invalid redis url")
	}
}

func TestParseClaims(t *testing.T) {
	issued := time.Now().Add(-time.Hour).Truncate(time.Second)
	expires := issued.Add(24 * time.Hour)

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": 42,
		"iat": issued.Unix(),
		"exp": expires.Unix(),
	}).SignedString([]byte("backend-secret"))
	if err != nil {
		t.Fatalf("signing: %v", err)
	}

	claims, err := ParseClaims(token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if claims.Subject != "42" {
		t.Fatalf("expected subject 42, got %q", claims.Subject)
	}
	if !claims.ExpiresAt.Equal(expires) {
		t.Fatalf("expected expiry %v, got %v", expires, claims.ExpiresAt)
	}
	if !claims.IssuedAt.Equal(issued) {
		t.Fatalf("expected issued at %v, got %v", issued, claims.IssuedAt)
	}
	if claims.Expired(issued.Add(time.Hour)) {
		t.Fatalf("token should not be expired yet")
	}
	if !claims.Expired(expires.Add(time.Second)) {
		t.Fatalf("token should be expired")
	}

	if _, err := ParseClaims("not-a-token"); err == nil {
		t.Fatalf("expected error for malformed token")
	}
}
