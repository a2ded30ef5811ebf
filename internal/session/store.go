// Package session keeps the bearer token that survives between runs.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// TokenKey is the single durable key of the client.
const TokenKey = "token"

const (
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Store persists the bearer token. Get returns an empty string when no token
// is stored.
type Store interface {
	Get(ctx context.Context) (string, error)
	Set(ctx context.Context, token string) error
	Remove(ctx context.Context) error
}

// Config selects and configures a Store.
type Config struct {
	Backend  string `mapstructure:"backend"`
	File     string `mapstructure:"file"`
	RedisURL string `mapstructure:"redis-url"`
	// RedisKey defaults to "talentmatch:token".
	RedisKey string `mapstructure:"redis-key"`
}

// NewStore builds the store described by cfg. An empty backend means file.
func NewStore(ctx context.Context, cfg *Config) (Store, error) {
	if cfg == nil {
		cfg = &Config{}
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "", BackendFile:
		path := strings.TrimSpace(cfg.File)
		if path == "" {
			path = DefaultFilePath()
		}
		return NewFileStore(path), nil
	case BackendMemory:
		return NewMemoryStore(""), nil
	case BackendRedis:
		return NewRedisStore(ctx, cfg.RedisURL, cfg.RedisKey)
	default:
		return nil, fmt.Errorf("unsupported session backend: %s", cfg.Backend)
	}
}

// MemoryStore keeps the token in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	token string
}

func NewMemoryStore(token string) *MemoryStore {
	return &MemoryStore{token: token}
}

func (s *MemoryStore) Get(context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, nil
}

func (s *MemoryStore) Set(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return nil
}

func (s *MemoryStore) Remove(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	return nil
}

// FileStore keeps the token in a small JSON document on disk.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// DefaultFilePath returns $XDG_DATA_HOME/talentmatch/session.json, falling back
// to ~/.local/share.
func DefaultFilePath() string {
	dir := os.Getenv("XDG_DATA_HOME")
	if dir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			dir = filepath.Join(home, ".local", "share")
		} else {
			dir = "."
		}
	}
	return filepath.Join(dir, "talentmatch", "session.json")
}

func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Get(context.Context) (string, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading session file: %w", err)
	}

	if len(strings.TrimSpace(string(data))) == 0 {
		return "", nil
	}

	var values map[string]string
	if err := json.Unmarshal(data, &values); err != nil {
		return "", fmt.Errorf("parsing session file %q: %w", s.path, err)
	}

	return values[TokenKey], nil
}

func (s *FileStore) Set(_ context.Context, token string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("creating session dir: %w", err)
	}

	out, err := json.MarshalIndent(map[string]string{TokenKey: token}, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(s.path, out, 0o600)
}

func (s *FileStore) Remove(context.Context) error {
	err := os.Remove(s.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing session file: %w", err)
	}
	return nil
}
