package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// UploadStore manages the filesystem area where user photos are written and
// served from.
type UploadStore struct {
	dir string
}

// New creates the upload directory if it is absent and returns a store
// rooted at it.
func New(dir string) (*UploadStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory %s: %w", dir, err)
	}
	return &UploadStore{dir: dir}, nil
}

// Dir returns the root of the upload area.
func (s *UploadStore) Dir() string {
	return s.dir
}

// Save writes the reader's contents under a generated file name, keeping the
// original extension, and returns the stored name.
func (s *UploadStore) Save(r io.Reader, originalName string) (string, error) {
	name := uuid.New().String() + filepath.Ext(originalName)

	dst, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("failed to create upload file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, r); err != nil {
		return "", fmt.Errorf("failed to write upload file: %w", err)
	}
	return name, nil
}

// Exists reports whether a stored file name is present in the upload area.
func (s *UploadStore) Exists(name string) bool {
	_, err := os.Stat(filepath.Join(s.dir, name))
	return err == nil
}

// Size walks the upload area and returns its total size in bytes.
func (s *UploadStore) Size() (int64, error) {
	var size int64
	err := filepath.Walk(s.dir, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			size += info.Size()
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return size, nil
}
