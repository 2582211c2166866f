package objectstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	conf "github.com/trunov/resizer/internal/config"
	"github.com/trunov/resizer/internal/entities"
)

const jpegContentType = "image/jpeg"

// S3 reads and writes objects through the AWS SDK. Built once per process.
type S3 struct {
	S3Client *s3.Client
	Uploader *manager.Uploader
}

// NewS3 builds the client from the default AWS chain (the Lambda role),
// with static credentials and a custom endpoint when configured.
func NewS3(ctx context.Context, cfg *conf.StorageConfig) (*S3, error) {
	opts := []func(*config.LoadOptions) error{}
	if cfg.Region != "" {
		opts = append(opts, config.WithRegion(cfg.Region))
	}
	if cfg.AccessKeyID != "" {
		opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID, cfg.SecretAccessKey, "",
		)))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3{
		S3Client: client,
		Uploader: manager.NewUploader(client),
	}, nil
}

func (s *S3) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	out, err := s.S3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, s3Error("get", bucket, key, err)
	}
	defer out.Body.Close()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(out.Body); err != nil {
		return nil, s3Error("get", bucket, key, fmt.Errorf("failed to read body: %w", err))
	}

	return buf.Bytes(), nil
}

func (s *S3) Put(ctx context.Context, bucket, key string, body []byte) error {
	_, err := s.Uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(jpegContentType),
	})
	if err != nil {
		return s3Error("put", bucket, key, err)
	}
	return nil
}

func s3Error(op, bucket, key string, err error) error {
	serr := &entities.StorageError{Op: op, Bucket: bucket, Key: key, Err: err}

	var re *awshttp.ResponseError
	if errors.As(err, &re) {
		serr.StatusCode = re.HTTPStatusCode()
	}
	return serr
}
