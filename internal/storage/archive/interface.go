// Package archive persists backtest reports to a local directory or an
// S3-compatible bucket.
package archive

import (
	"context"
	"fmt"

	"github.com/newthinker/tradando/internal/config"
	"github.com/newthinker/tradando/internal/core"
)

// Storage is a flat key/value blob store addressed by slash-separated paths.
// Read of a missing path fails with core.ErrNotFound.
type Storage interface {
	Write(ctx context.Context, path string, data []byte) error
	Read(ctx context.Context, path string) ([]byte, error)
	// List returns all paths under prefix, relative to the storage root
	List(ctx context.Context, prefix string) ([]string, error)
	Delete(ctx context.Context, path string) error
	Exists(ctx context.Context, path string) (bool, error)
}

// Open builds the storage backend selected by cfg.Type
func Open(cfg config.ArchiveConfig) (Storage, error) {
	switch cfg.Type {
	case "", "localfs":
		path := cfg.Path
		if path == "" {
			path = "data/archive"
		}
		fs, err := NewLocalFS(path)
		if err != nil {
			return nil, err
		}
		return fs, nil
	case "s3":
		s3, err := NewS3(S3Config{
			Bucket:    cfg.S3.Bucket,
			Endpoint:  cfg.S3.Endpoint,
			Region:    cfg.S3.Region,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			Prefix:    cfg.S3.Prefix,
		})
		if err != nil {
			return nil, err
		}
		return s3, nil
	default:
		return nil, core.WrapError(core.ErrConfigInvalid, fmt.Errorf("unknown archive type: %s", cfg.Type))
	}
}
