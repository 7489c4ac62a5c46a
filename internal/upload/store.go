package upload

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

var (
	ErrInvalidPath = errors.New("invalid storage path")
	ErrTooLarge    = errors.New("upload exceeds authorized size")
	ErrNotFound    = errors.New("upload not found")
)

// Store persists uploaded media on disk under a root directory.
type Store struct {
	log  *zap.SugaredLogger
	root string
}

// NewStore creates the root directory if needed.
func NewStore(log *zap.SugaredLogger, root string) (*Store, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &Store{log: log, root: root}, nil
}

func (s *Store) resolve(storagePath string) (string, error) {
	if storagePath == "" || strings.Contains(storagePath, "..") || strings.HasPrefix(storagePath, "/") {
		return "", ErrInvalidPath
	}
	return filepath.Join(s.root, filepath.FromSlash(storagePath)), nil
}

// Save streams the body to disk, refusing more than maxBytes.
func (s *Store) Save(storagePath string, body io.Reader, maxBytes int64) (int64, error) {
	full, err := s.resolve(storagePath)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return 0, err
	}

	f, err := os.Create(full)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	written, err := io.Copy(f, io.LimitReader(body, maxBytes+1))
	if err != nil {
		os.Remove(full)
		return 0, err
	}
	if written > maxBytes {
		os.Remove(full)
		return 0, ErrTooLarge
	}
	s.log.Debugw("upload stored", "path", storagePath, "bytes", written)
	return written, nil
}

// Stat reports the stored size, or ErrNotFound.
func (s *Store) Stat(storagePath string) (int64, error) {
	full, err := s.resolve(storagePath)
	if err != nil {
		return 0, err
	}
	fi, err := os.Stat(full)
	if err != nil {
		return 0, ErrNotFound
	}
	return fi.Size(), nil
}

// Root returns the directory served as static media.
func (s *Store) Root() string {
	return s.root
}
