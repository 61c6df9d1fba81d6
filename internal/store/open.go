package store

import (
	"context"
	"fmt"
	"path/filepath"
)

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendBolt   = "bolt"
	BackendS3     = "s3"
	BackendMemory = "memory"
)

// Config selects and configures a backend.
type Config struct {
	Backend string
	Dir     string // data directory for file and bolt backends
	S3      S3Config
}

// Open creates the KV named by cfg.Backend.
func Open(ctx context.Context, cfg Config) (KV, error) {
	switch cfg.Backend {
	case "", BackendFile:
		return OpenFile(filepath.Join(cfg.Dir, "state.json"))
	case BackendBolt:
		return OpenBolt(filepath.Join(cfg.Dir, "state.db"))
	case BackendS3:
		return OpenS3(ctx, cfg.S3)
	case BackendMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown store backend: %s", cfg.Backend)
	}
}
