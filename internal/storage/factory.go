package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
)

const (
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

type Options struct {
	Backend        string
	StateDir       string
	SQLitePath     string
	RedisURL       string
	RedisNamespace string
	PostgresURL    string
}

// Open builds the Gateway selected by opts.Backend.
func Open(ctx context.Context, opts Options) (Gateway, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Backend)) {
	case "", BackendFile:
		return NewFileGateway(opts.StateDir)
	case BackendSQLite:
		path := opts.SQLitePath
		if path == "" {
			path = filepath.Join(opts.StateDir, "habitd.db")
		}
		return OpenSQLite(path)
	case BackendRedis:
		return OpenRedis(ctx, opts.RedisURL, opts.RedisNamespace)
	case BackendPostgres:
		return OpenPostgres(ctx, opts.PostgresURL)
	case BackendMemory:
		return NewMemoryGateway(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, opts.Backend)
	}
}
