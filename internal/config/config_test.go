package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trunov/resizer/internal/config"
	"github.com/trunov/resizer/internal/entities"
)

func TestLoad(t *testing.T) {
	t.Setenv("BUCKET_NAME", "images")
	t.Setenv("RESIZED_IMAGES_PATH", "resized")
	t.Setenv("STORAGE_DRIVER", "minio")
	t.Setenv("WORKER_BACKOFF_BASE", "2s")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "images", cfg.Resize.BucketName)
	assert.Equal(t, "resized", cfg.Resize.ResizedImagesPath)
	assert.True(t, cfg.Resize.AcceptStorageEvents)
	assert.Equal(t, "minio", cfg.Storage.Driver)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 2*time.Second, cfg.Worker.BackoffBase)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestResizeConfigCheck(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.ResizeConfig
		wantErr error
	}{
		{
			name: "complete",
			cfg:  config.ResizeConfig{BucketName: "b", ResizedImagesPath: "p", AcceptStorageEvents: true},
		},
		{
			name:    "missing bucket",
			cfg:     config.ResizeConfig{ResizedImagesPath: "p", AcceptStorageEvents: true},
			wantErr: entities.ErrMissingBucket,
		},
		{
			name:    "missing bucket is reported before missing path",
			cfg:     config.ResizeConfig{AcceptStorageEvents: true},
			wantErr: entities.ErrMissingBucket,
		},
		{
			name:    "missing path with storage events",
			cfg:     config.ResizeConfig{BucketName: "b", AcceptStorageEvents: true},
			wantErr: entities.ErrMissingResizedImagesPath,
		},
		{
			name: "path optional for upload-only deployments",
			cfg:  config.ResizeConfig{BucketName: "b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Check()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}

			var cerr *entities.ConfigurationError
			require.ErrorAs(t, err, &cerr)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
