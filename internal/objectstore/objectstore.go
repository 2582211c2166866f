package objectstore

import (
	"context"
	"fmt"

	conf "github.com/trunov/resizer/internal/config"
)

// Store is what every driver provides. Failures are *entities.StorageError.
type Store interface {
	Get(ctx context.Context, bucket, key string) ([]byte, error)
	Put(ctx context.Context, bucket, key string, body []byte) error
}

// New picks the driver named by cfg.Driver.
func New(ctx context.Context, cfg *conf.StorageConfig) (Store, error) {
	switch cfg.Driver {
	case "", "s3":
		return NewS3(ctx, cfg)
	case "minio":
		return NewMinio(cfg)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
