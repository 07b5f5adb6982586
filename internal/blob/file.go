package blob

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/matheus3301/jobboard/internal/apperr"
)

// FileStore keeps objects under a local directory.
type FileStore struct {
	root    string
	baseURL string
}

// NewFileStore stores objects under root. Public URLs are baseURL/key, or
// file:// URLs when baseURL is empty.
func NewFileStore(root, baseURL string) (*FileStore, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve blob root: %w", err)
	}
	if err := os.MkdirAll(abs, 0700); err != nil {
		return nil, fmt.Errorf("create blob root: %w", err)
	}
	return &FileStore{root: abs, baseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

// Put writes r to key, replacing any existing object.
func (s *FileStore) Put(_ context.Context, key, _ string, r io.Reader) (string, error) {
	if !ValidKey(key) {
		return "", apperr.Invalid("blob key rejected", key)
	}
	dst := s.path(key)
	if err := os.MkdirAll(filepath.Dir(dst), 0700); err != nil {
		return "", fmt.Errorf("create blob dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(dst), ".upload-*")
	if err != nil {
		return "", fmt.Errorf("create blob: %w", err)
	}
	if _, err := io.Copy(tmp, r); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("write blob: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("close blob: %w", err)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("commit blob: %w", err)
	}
	return s.url(key), nil
}

// Get opens the object stored at key.
func (s *FileStore) Get(_ context.Context, key string) (io.ReadCloser, error) {
	if !ValidKey(key) {
		return nil, apperr.Invalid("blob key rejected", key)
	}
	f, err := os.Open(s.path(key))
	if os.IsNotExist(err) {
		return nil, apperr.NotFound("blob %q", key)
	}
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.root, filepath.FromSlash(key))
}

func (s *FileStore) url(key string) string {
	if s.baseURL != "" {
		return PublicURL(s.baseURL, key)
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(s.path(key))}
	return u.String()
}
