package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// LocalStorage keeps objects as plain files under a base directory
type LocalStorage struct {
	basePath string
}

// NewLocalStorage creates the base directory if needed
func NewLocalStorage(basePath string) (*LocalStorage, error) {
	err := os.MkdirAll(basePath, 0755)
	if err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	return &LocalStorage{basePath: basePath}, nil
}

func (s *LocalStorage) path(key string) (string, error) {
	if err := validKey(key); err != nil {
		return "", err
	}
	return filepath.Join(s.basePath, key), nil
}

// Save writes to a temp file first and renames it into place, so a failed
// write never leaves a partial object under key.
func (s *LocalStorage) Save(ctx context.Context, key string, r io.Reader, size int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	target, err := s.path(key)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.basePath, ".upload-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	written, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write content: %w", err)
	}

	if size >= 0 && written != size {
		tmp.Close()
		return fmt.Errorf("short write for %s: got %d bytes, expected %d", key, written, size)
	}

	err = tmp.Close()
	if err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	err = os.Rename(tmp.Name(), target)
	if err != nil {
		return fmt.Errorf("failed to store content: %w", err)
	}

	return nil
}

type sectionReadCloser struct {
	io.Reader
	io.Closer
}

func (s *LocalStorage) Open(ctx context.Context, key string, offset, length int64) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path, err := s.path(key)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("content %s: %w", key, ErrObjectNotFound)
		}
		return nil, fmt.Errorf("failed to open content: %w", err)
	}

	if length < 0 {
		_, err = file.Seek(offset, io.SeekStart)
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to seek content: %w", err)
		}
		return file, nil
	}

	return sectionReadCloser{Reader: io.NewSectionReader(file, offset, length), Closer: file}, nil
}

func (s *LocalStorage) Size(ctx context.Context, key string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	path, err := s.path(key)
	if err != nil {
		return 0, err
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, fmt.Errorf("content %s: %w", key, ErrObjectNotFound)
		}
		return 0, fmt.Errorf("failed to stat content: %w", err)
	}

	return info.Size(), nil
}

func (s *LocalStorage) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path, err := s.path(key)
	if err != nil {
		return err
	}

	err = os.Remove(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete content: %w", err)
	}

	if err == nil {
		slog.Debug("deleted content", "key", key)
	}
	return nil
}
