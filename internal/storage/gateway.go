package storage

import (
	"context"
	"errors"
	"strings"
)

var (
	ErrNotFound       = errors.New("storage: not found")
	ErrEmptyKey       = errors.New("storage: empty key")
	ErrUnknownBackend = errors.New("storage: unknown backend")
	ErrClosed         = errors.New("storage: gateway closed")
)

// Gateway stores opaque blobs under string keys.
type Gateway interface {
	// Load returns ErrNotFound when nothing is stored under key.
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, value []byte) error
	Close() error
}

func validateKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return ErrEmptyKey
	}
	return nil
}
