package store

import (
	"context"
	"fmt"
	"time"

	"fintrack/internal/cache"
	"fintrack/internal/config"
	"fintrack/internal/log"
)

// BackendType represents the type of backend
type BackendType string

const (
	SQLiteBackend BackendType = config.BackendSQLite
	MemoryBackend BackendType = config.BackendMemory
)

func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}

// Options selects and tunes a backend.
type Options struct {
	Backend    BackendType
	SQLitePath string
	// CacheSize of zero disables the read cache.
	CacheSize int
	CacheTTL  time.Duration
}

// Opened is a ready store plus the function releasing it.
type Opened struct {
	Store   Store
	Cleanup CleanupFunc
}

// OptionsFromConfig converts the application config to store options.
func OptionsFromConfig(cfg *config.Config) (Options, error) {
	if cfg == nil {
		return Options{}, fmt.Errorf("app config is nil")
	}
	bt := BackendType(cfg.DataBackend)
	if !bt.IsValid() {
		return Options{}, fmt.Errorf("invalid backend type in config: %s", cfg.DataBackend)
	}
	return Options{
		Backend:    bt,
		SQLitePath: cfg.SQLiteDBPath,
		CacheSize:  cfg.CacheSize,
		CacheTTL:   cfg.CacheTTL,
	}, nil
}

// Open builds the configured backend, wrapped in a read cache when enabled.
func Open(_ context.Context, opts Options, logger *log.Logger) (*Opened, error) {
	logger = log.OrDiscard(logger).WithComponent(log.ComponentStorage)

	var (
		st      Store
		cleanup CleanupFunc = func() error { return nil }
	)

	switch opts.Backend {
	case SQLiteBackend:
		if opts.SQLitePath == "" {
			return nil, fmt.Errorf("SQLite database path is required for sqlite backend")
		}
		sq, err := NewSQLiteStore(opts.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite store: %w", err)
		}
		st, cleanup = sq, sq.Close
		logger.Debug("Initialized SQLite backend", log.FieldBackend, opts.Backend.String(), "db_path", opts.SQLitePath)
	case MemoryBackend:
		st = NewMemoryStore(nil)
		logger.Debug("Initialized memory backend", log.FieldBackend, opts.Backend.String())
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", opts.Backend)
	}

	if opts.CacheSize > 0 {
		st = NewCachedStore(st, cache.NewLRUCache[[]byte](opts.CacheSize, opts.CacheTTL))
		logger.Debug("Enabled read cache", "size", opts.CacheSize, "ttl", opts.CacheTTL.String())
	}

	return &Opened{Store: st, Cleanup: cleanup}, nil
}
