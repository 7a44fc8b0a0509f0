package archive

import (
	"context"
	"fmt"

	"github.com/newthinker/quanta/internal/config"
	"github.com/newthinker/quanta/internal/core"
)

// Storage defines the interface for report export backends
type Storage interface {
	// Write stores data at the given path
	Write(ctx context.Context, path string, data []byte) error

	// Read retrieves data from the given path
	Read(ctx context.Context, path string) ([]byte, error)

	// List returns all paths matching the prefix
	List(ctx context.Context, prefix string) ([]string, error)

	// Exists checks if data exists at the given path
	Exists(ctx context.Context, path string) (bool, error)
}

// New creates the backend selected by cfg.Type
func New(cfg config.ExportConfig) (Storage, error) {
	switch cfg.Type {
	case "", "localfs":
		return NewLocalFS(cfg.Path)
	case "s3":
		return NewS3(cfg.S3)
	default:
		return nil, core.WrapError(core.ErrConfigInvalid, fmt.Errorf("unknown export type: %s", cfg.Type))
	}
}

// Backend returns the metrics label for cfg.Type
func Backend(cfg config.ExportConfig) string {
	if cfg.Type == "" {
		return "localfs"
	}
	return cfg.Type
}
