// Package archive stores raw provider replies that could not be parsed, so
// degraded generations can be inspected later.
//
// Implementations:
//   - Local: files under a base directory (development, single node)
//   - R2: Cloudflare R2 through the S3 API (production)
package archive

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Archive is a write-mostly object store for raw generation text.
type Archive interface {
	// Put stores data at key. Existing objects are replaced.
	Put(ctx context.Context, key string, data []byte, contentType string) error

	// Get returns the object at key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
}

// Provider names accepted by New.
const (
	ProviderLocal = "local"
	ProviderR2    = "r2"
)

// ContentTypeText is used for raw provider replies.
const ContentTypeText = "text/plain; charset=utf-8"

var (
	// ErrNotFound is returned when a requested object doesn't exist.
	ErrNotFound = errors.New("object not found")

	// ErrInvalidKey is returned for empty keys and path traversal attempts.
	ErrInvalidKey = errors.New("invalid archive key")

	// ErrAccessDenied is returned when the provider refuses the credentials.
	ErrAccessDenied = errors.New("access denied")
)

// Error wraps an archive failure with the operation and key.
type Error struct {
	Op  string
	Key string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("archive %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err means the object is missing.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// Config selects and configures an archive provider.
type Config struct {
	Provider string

	// local
	LocalPath string

	// r2
	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2Bucket          string
	R2Endpoint        string // overrides the account endpoint (tests, other S3 stores)
}

// New creates the configured archive.
func New(cfg Config, logger *slog.Logger) (Archive, error) {
	switch cfg.Provider {
	case ProviderLocal, "":
		return NewLocal(cfg.LocalPath, logger)
	case ProviderR2:
		return NewR2(R2Config{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			Bucket:          cfg.R2Bucket,
			Endpoint:        cfg.R2Endpoint,
		}, logger)
	default:
		return nil, fmt.Errorf("unsupported archive provider: %q", cfg.Provider)
	}
}

// RawOutputKey returns the key for a generation's raw reply.
// Format: generations/{accountID}/{yyyy}/{mm}/{generationID}.txt
func RawOutputKey(accountID, generationID uuid.UUID, at time.Time) string {
	at = at.UTC()
	return fmt.Sprintf("generations/%s/%04d/%02d/%s.txt", accountID, at.Year(), int(at.Month()), generationID)
}

// validateKey rejects empty keys and keys containing "..".
func validateKey(key string) error {
	if key == "" || strings.Contains(key, "..") || strings.HasPrefix(key, "/") {
		return ErrInvalidKey
	}
	return nil
}
