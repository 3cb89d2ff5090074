// Package storage keeps uploaded photos in a blob store addressed by
// slash-separated keys such as "posts/{post}/spots/{spot}/photo_{ms}.jpg".
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"strings"

	"github.com/spf13/afero"

	"github.com/pkordes/map-collection/internal/domain"
)

// Store is a blob store over an afero filesystem. Production wraps the OS
// filesystem in afero.NewBasePathFs; tests use afero.NewMemMapFs.
type Store struct {
	fs      afero.Fs
	baseURL string
}

// NewStore returns a Store writing to fs. baseURL is the public prefix the
// media route is served under, e.g. "http://localhost:8080/media".
func NewStore(fs afero.Fs, baseURL string) *Store {
	return &Store{fs: fs, baseURL: strings.TrimRight(baseURL, "/")}
}

// Save writes r to key, replacing any existing blob, and returns the byte count.
func (s *Store) Save(ctx context.Context, key string, r io.Reader) (int64, error) {
	p, err := cleanKey(key)
	if err != nil {
		return 0, fmt.Errorf("storage.Store.Save: %w", err)
	}
	if err := s.fs.MkdirAll(path.Dir(p), 0o755); err != nil {
		return 0, fmt.Errorf("storage.Store.Save: mkdir: %w", err)
	}
	f, err := s.fs.Create(p)
	if err != nil {
		return 0, fmt.Errorf("storage.Store.Save: create: %w", err)
	}

	n, err := io.Copy(f, r)
	if err != nil {
		_ = f.Close()
		return n, fmt.Errorf("storage.Store.Save: write: %w", err)
	}
	if err := f.Close(); err != nil {
		return n, fmt.Errorf("storage.Store.Save: close: %w", err)
	}
	return n, nil
}

// Open returns a reader for key. Returns domain.ErrNotFound for a missing blob.
func (s *Store) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	p, err := cleanKey(key)
	if err != nil {
		return nil, fmt.Errorf("storage.Store.Open: %w", err)
	}
	info, err := s.fs.Stat(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("storage.Store.Open: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("storage.Store.Open: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("storage.Store.Open: %w", domain.ErrNotFound)
	}
	f, err := s.fs.Open(p)
	if err != nil {
		return nil, fmt.Errorf("storage.Store.Open: %w", err)
	}
	return f, nil
}

// Delete removes key. Deleting a missing blob is not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	p, err := cleanKey(key)
	if err != nil {
		return fmt.Errorf("storage.Store.Delete: %w", err)
	}
	if err := s.fs.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("storage.Store.Delete: %w", err)
	}
	return nil
}

// DeletePrefix removes every blob under prefix, e.g. all photos of a post.
func (s *Store) DeletePrefix(ctx context.Context, prefix string) error {
	p, err := cleanKey(prefix)
	if err != nil {
		return fmt.Errorf("storage.Store.DeletePrefix: %w", err)
	}
	if err := s.fs.RemoveAll(p); err != nil {
		return fmt.Errorf("storage.Store.DeletePrefix: %w", err)
	}
	return nil
}

// URL returns the public URL a saved key is served from.
func (s *Store) URL(key string) string {
	p, err := cleanKey(key)
	if err != nil {
		return ""
	}
	return s.baseURL + "/" + p
}

// cleanKey normalises key to a relative slash path that cannot climb above the
// store root. The root itself is not a valid key.
func cleanKey(key string) (string, error) {
	p := strings.TrimPrefix(path.Clean("/"+strings.ReplaceAll(key, "\\", "/")), "/")
	if p == "" {
		return "", fmt.Errorf("%w: empty storage key", domain.ErrValidation)
	}
	return p, nil
}
