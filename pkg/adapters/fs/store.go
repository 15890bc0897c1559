// Package fs stores review packages on the local filesystem and watches directories
// for documents to review.
package fs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/aretw0/redline/pkg/core"
)

// DefaultPerm is the mode of files created by the store.
const DefaultPerm os.FileMode = 0644

// Config holds the configuration for the filesystem store.
type Config struct {
	Logger *slog.Logger
	// Perm is used for new files; existing files keep their mode.
	Perm os.FileMode
}

// Store implements core.Store on the local filesystem.
type Store struct {
	config Config

	mu     sync.RWMutex
	loads  int
	saves  int
	staged int
}

// NewStore creates a new filesystem store.
func NewStore(config Config) *Store {
	if config.Logger == nil {
		config.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if config.Perm == 0 {
		config.Perm = DefaultPerm
	}
	return &Store{config: config}
}

// Load reads the package at path.
func (s *Store) Load(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	s.count(&s.loads)
	return data, nil
}

// Save atomically replaces the file at path with data.
func (s *Store) Save(ctx context.Context, path string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	perm := s.config.Perm
	if info, err := os.Stat(path); err == nil {
		perm = info.Mode().Perm()
	}
	if err := writeFileAtomic(path, data, perm); err != nil {
		return err
	}
	s.count(&s.saves)
	s.config.Logger.Debug("package saved", "path", path, "bytes", len(data))
	return nil
}

// Stage copies src to dst, creating dst's directory when needed.
// Staging a file onto itself is a no-op.
func (s *Store) Stage(ctx context.Context, src, dst string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	same, err := samePath(src, dst)
	if err != nil {
		return err
	}
	if same {
		return nil
	}

	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", src, err)
	}
	info, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", src, err)
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", dst, err)
	}
	if err := writeFileAtomic(dst, data, info.Mode().Perm()); err != nil {
		return err
	}
	s.count(&s.staged)
	s.config.Logger.Debug("package staged", "src", src, "dst", dst)
	return nil
}

// Glob returns the files below root matching any include pattern and no exclude pattern.
// Patterns use doublestar syntax relative to root; results are sorted paths joined with root.
func (s *Store) Glob(root string, include, exclude []string) ([]string, error) {
	fsys := os.DirFS(root)
	seen := make(map[string]bool)
	var matches []string

	for _, pattern := range include {
		found, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
		}
		for _, rel := range found {
			if seen[rel] || isTempFile(rel) {
				continue
			}
			excluded, err := MatchAny(rel, exclude)
			if err != nil {
				return nil, err
			}
			if excluded {
				continue
			}
			seen[rel] = true
			matches = append(matches, rel)
		}
	}

	sort.Strings(matches)
	for i, rel := range matches {
		matches[i] = filepath.Join(root, filepath.FromSlash(rel))
	}
	return matches, nil
}

// MatchAny reports whether the slash-separated relative path rel matches any pattern.
func MatchAny(rel string, patterns []string) (bool, error) {
	for _, pattern := range patterns {
		ok, err := doublestar.Match(pattern, rel)
		if err != nil {
			return false, fmt.Errorf("invalid pattern %q: %w", pattern, err)
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// Included reports whether rel matches an include pattern and no exclude pattern.
func Included(rel string, include, exclude []string) (bool, error) {
	in, err := MatchAny(rel, include)
	if err != nil || !in {
		return false, err
	}
	out, err := MatchAny(rel, exclude)
	if err != nil {
		return false, err
	}
	return !out, nil
}

func (s *Store) count(counter *int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	*counter++
}

func samePath(a, b string) (bool, error) {
	ia, err := os.Stat(a)
	if err != nil {
		return false, fmt.Errorf("failed to stat %s: %w", a, err)
	}
	ib, err := os.Stat(b)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to stat %s: %w", b, err)
	}
	return os.SameFile(ia, ib), nil
}

var _ core.Store = (*Store)(nil)
