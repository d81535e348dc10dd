package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	cfg "github.com/templui/filebox/internal/config"
)

const (
	DriverLocal = "local"
	DriverS3    = "s3"
)

var (
	ErrObjectNotFound = errors.New("object not found")
	ErrInvalidKey     = errors.New("invalid object key")
)

// Storage holds the bytes of path-located files. Keys are flat names
// produced by Key; they never contain path separators.
type Storage interface {
	// Save stores r under key. size is the expected length, or -1 if unknown.
	Save(ctx context.Context, key string, r io.Reader, size int64) error

	// Open returns a reader over length bytes starting at offset.
	// A negative length reads to the end of the object.
	Open(ctx context.Context, key string, offset, length int64) (io.ReadCloser, error)

	// Size returns the current length of the stored object
	Size(ctx context.Context, key string) (int64, error)

	// Delete removes the object. Deleting a missing object is not an error.
	Delete(ctx context.Context, key string) error
}

// New creates the storage backend selected by STORAGE_DRIVER
func New(c *cfg.Config) (Storage, error) {
	switch c.StorageDriver {
	case DriverLocal, "":
		slog.Info("initializing local storage", "dir", c.UploadDir)
		return NewLocalStorage(c.UploadDir)
	case DriverS3:
		slog.Info("initializing S3 storage",
			"bucket", c.S3Bucket,
			"region", c.S3Region,
			"endpoint", c.S3Endpoint,
		)
		return NewS3Storage(S3Config{
			Region:    c.S3Region,
			Bucket:    c.S3Bucket,
			AccessKey: c.S3AccessKey,
			SecretKey: c.S3SecretKey,
			Endpoint:  c.S3Endpoint,
		})
	default:
		return nil, fmt.Errorf("unknown storage driver %q", c.StorageDriver)
	}
}

var unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// SanitizeName replaces every run of characters outside [a-zA-Z0-9._-] with "_"
func SanitizeName(name string) string {
	safe := unsafeNameChars.ReplaceAllString(name, "_")
	safe = strings.Trim(safe, ".")
	if safe == "" {
		return "file"
	}
	return safe
}

// Key builds a unique object key for an uploaded file name
func Key(name string, now time.Time) string {
	prefix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%s-%d__%s", prefix, now.UnixMilli(), SanitizeName(name))
}

func validKey(key string) error {
	if key == "" || key == "." || key == ".." || strings.ContainsAny(key, `/\`) {
		return fmt.Errorf("%q: %w", key, ErrInvalidKey)
	}
	return nil
}
