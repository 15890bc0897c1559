// Package afs stores review packages at URL locations through github.com/viant/afs
// (file://, mem://, s3://, gs:// and the other registered schemes).
package afs

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"strings"
	"sync"

	"github.com/aretw0/introspection"
	"github.com/viant/afs"
	"github.com/viant/afs/file"

	"github.com/aretw0/redline/pkg/core"
)

// Store implements core.Store over an afs.Service.
type Store struct {
	fs     afs.Service
	logger *slog.Logger

	mu    sync.RWMutex
	loads int
	saves int
}

// NewStore creates a Store backed by afs.New().
func NewStore(logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Store{fs: afs.New(), logger: logger}
}

// IsURL reports whether location carries a scheme the store should handle.
func IsURL(location string) bool {
	i := strings.Index(location, "://")
	return i > 0
}

// Load downloads the package at URL.
func (s *Store) Load(ctx context.Context, URL string) ([]byte, error) {
	exists, err := s.fs.Exists(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to check %s: %w", URL, err)
	}
	if !exists {
		return nil, fmt.Errorf("%s: %w", URL, fs.ErrNotExist)
	}
	data, err := s.fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to download %s: %w", URL, err)
	}
	s.count(&s.loads)
	return data, nil
}

// Save uploads data to a temporary URL first, then moves it over URL so that readers
// never see a partial package. Without server-side moves it re-uploads to URL.
func (s *Store) Save(ctx context.Context, URL string, data []byte) error {
	tmp := URL + ".tmp"
	if err := s.fs.Upload(ctx, tmp, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to upload temp package: %w", err)
	}

	type mover interface {
		Move(context.Context, string, string) error
	}
	if mv, ok := any(s.fs).(mover); ok {
		if err := mv.Move(ctx, tmp, URL); err == nil {
			s.count(&s.saves)
			return nil
		}
	}

	if err := s.fs.Upload(ctx, URL, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		_ = s.fs.Delete(ctx, tmp)
		return fmt.Errorf("failed to upload %s: %w", URL, err)
	}
	_ = s.fs.Delete(ctx, tmp)
	s.count(&s.saves)
	s.logger.Debug("package uploaded", "url", URL, "bytes", len(data))
	return nil
}

// Stage copies the package at src to dst.
func (s *Store) Stage(ctx context.Context, src, dst string) error {
	if src == dst {
		return nil
	}
	data, err := s.Load(ctx, src)
	if err != nil {
		return err
	}
	return s.Save(ctx, dst, data)
}

func (s *Store) count(counter *int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	*counter++
}

// StoreState exposes internal state for observability.
type StoreState struct {
	Loads int `json:"loads"`
	Saves int `json:"saves"`
}

// State implements introspection.Introspectable.
func (s *Store) State() any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return StoreState{Loads: s.loads, Saves: s.saves}
}

// ComponentType implements introspection.Component.
func (s *Store) ComponentType() string {
	return "afs-store"
}

var _ core.Store = (*Store)(nil)
var _ introspection.Introspectable = (*Store)(nil)
var _ introspection.Component = (*Store)(nil)
