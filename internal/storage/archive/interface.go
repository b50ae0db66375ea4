// internal/storage/archive/interface.go
package archive

import (
	"context"
	"errors"
)

// Storage is the store backtest artifacts are read from and results are
// written to. Paths use forward slashes.
type Storage interface {
	// Write stores data at the given path
	Write(ctx context.Context, path string, data []byte) error

	// Read retrieves data from the given path
	Read(ctx context.Context, path string) ([]byte, error)

	// List returns all file paths under the prefix, recursively
	List(ctx context.Context, prefix string) ([]string, error)

	// Exists checks if a file exists at the given path
	Exists(ctx context.Context, path string) (bool, error)
}

// Backend types.
const (
	TypeLocalFS = "localfs"
	TypeS3      = "s3"
)

// Config selects and configures a backend.
type Config struct {
	Type string   `mapstructure:"type" validate:"oneof=localfs s3"`
	Path string   `mapstructure:"path"`
	S3   S3Config `mapstructure:"s3"`
}

// ErrUnknownType is returned by New for an unsupported backend type.
var ErrUnknownType = errors.New("unknown storage type")

// New creates the backend described by cfg.
func New(cfg Config) (Storage, error) {
	switch cfg.Type {
	case "", TypeLocalFS:
		base := cfg.Path
		if base == "" {
			base = "."
		}
		return NewLocalFS(base)
	case TypeS3:
		return NewS3(cfg.S3)
	default:
		return nil, ErrUnknownType
	}
}
