package archive

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Local stores objects as files under a base directory.
type Local struct {
	basePath string
	logger   *slog.Logger
}

// NewLocal creates a Local archive, creating basePath if needed.
func NewLocal(basePath string, logger *slog.Logger) (*Local, error) {
	if basePath == "" {
		return nil, fmt.Errorf("local archive path is required")
	}
	absPath, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve archive path: %w", err)
	}
	if err := os.MkdirAll(absPath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create archive directory: %w", err)
	}

	logger.Info("initialized local archive", "base_path", absPath)
	return &Local{basePath: absPath, logger: logger}, nil
}

// Put writes data to the file for key, replacing any previous content.
func (s *Local) Put(ctx context.Context, key string, data []byte, contentType string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.resolvePath(key)
	if err != nil {
		return &Error{Op: "put", Key: key, Err: err}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return &Error{Op: "put", Key: key, Err: fmt.Errorf("create directory: %w", err)}
	}

	// Write to a sibling then rename so readers never see a partial file.
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return &Error{Op: "put", Key: key, Err: fmt.Errorf("write file: %w", err)}
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return &Error{Op: "put", Key: key, Err: fmt.Errorf("rename file: %w", err)}
	}

	s.logger.Debug("archived object", "key", key, "size", len(data), "content_type", contentType)
	return nil
}

// Get reads the file for key.
func (s *Local) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := s.resolvePath(key)
	if err != nil {
		return nil, &Error{Op: "get", Key: key, Err: err}
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, &Error{Op: "get", Key: key, Err: ErrNotFound}
	}
	if err != nil {
		return nil, &Error{Op: "get", Key: key, Err: err}
	}
	return data, nil
}

// resolvePath maps a key to a path inside basePath.
func (s *Local) resolvePath(key string) (string, error) {
	if err := validateKey(key); err != nil {
		return "", err
	}
	path := filepath.Join(s.basePath, filepath.Clean(key))
	if !strings.HasPrefix(path, s.basePath+string(filepath.Separator)) {
		return "", ErrInvalidKey
	}
	return path, nil
}
