package objectstore

import (
	"context"
	"errors"
	"net/http"
	"testing"

	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/smithy-go"
	smithyhttp "github.com/aws/smithy-go/transport/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	conf "github.com/trunov/resizer/internal/config"
	"github.com/trunov/resizer/internal/entities"
)

func TestS3ErrorCarriesStatusCode(t *testing.T) {
	sdkErr := &smithy.OperationError{
		ServiceID:     "S3",
		OperationName: "GetObject",
		Err: &awshttp.ResponseError{
			ResponseError: &smithyhttp.ResponseError{
				Response: &smithyhttp.Response{Response: &http.Response{StatusCode: http.StatusNotFound}},
				Err:      errors.New("NoSuchKey"),
			},
		},
	}

	err := s3Error("get", "bucket", "photos/a.jpg", sdkErr)

	var serr *entities.StorageError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, http.StatusNotFound, serr.StatusCode)
	assert.Equal(t, "get", serr.Op)
	assert.Equal(t, "photos/a.jpg", serr.Key)
}

func TestS3ErrorWithoutResponse(t *testing.T) {
	err := s3Error("put", "bucket", "k", errors.New("dial tcp: connection refused"))

	var serr *entities.StorageError
	require.ErrorAs(t, err, &serr)
	assert.Zero(t, serr.StatusCode)
}

func TestNewUnknownDriver(t *testing.T) {
	_, err := New(context.Background(), &conf.StorageConfig{Driver: "ftp"})
	assert.Error(t, err)
}

func TestNewS3WithEndpoint(t *testing.T) {
	store, err := New(context.Background(), &conf.StorageConfig{
		Driver:          "s3",
		Region:          "auto",
		Endpoint:        "http://localhost:4566",
		AccessKeyID:     "test",
		SecretAccessKey: "test",
	})
	require.NoError(t, err)

	s, ok := store.(*S3)
	require.True(t, ok)
	assert.True(t, s.S3Client.Options().UsePathStyle)
	assert.Equal(t, "http://localhost:4566", *s.S3Client.Options().BaseEndpoint)
}
