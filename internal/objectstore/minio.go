package objectstore

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	conf "github.com/trunov/resizer/internal/config"
	"github.com/trunov/resizer/internal/entities"
)

// Minio is the storage driver for self-hosted deployments (MinIO bucket notifications + worker).
type Minio struct {
	client *minio.Client
}

func NewMinio(cfg *conf.StorageConfig) (*Minio, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	return &Minio{client: client}, nil
}

func (m *Minio) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	object, err := m.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, minioError("get", bucket, key, err)
	}
	defer object.Close()

	// minio defers the request until the first read, so errors show up here.
	b, err := io.ReadAll(object)
	if err != nil {
		return nil, minioError("get", bucket, key, err)
	}
	return b, nil
}

func (m *Minio) Put(ctx context.Context, bucket, key string, body []byte) error {
	_, err := m.client.PutObject(ctx, bucket, key, bytes.NewReader(body), int64(len(body)), minio.PutObjectOptions{
		ContentType: jpegContentType,
	})
	if err != nil {
		return minioError("put", bucket, key, err)
	}
	return nil
}

func minioError(op, bucket, key string, err error) error {
	return &entities.StorageError{
		Op:         op,
		Bucket:     bucket,
		Key:        key,
		StatusCode: minio.ToErrorResponse(err).StatusCode,
		Err:        err,
	}
}
