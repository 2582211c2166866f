package config

import (
	"time"
)

type Config struct {
	Resize  ResizeConfig
	Storage StorageConfig
	Log     LogConfig
	Sentry  SentryConfig
	Server  ServerConfig
	Redis   RedisConfig
	Worker  WorkerConfig
	NATS    NATSConfig
}

// ResizeConfig is read on every invocation; a missing bucket fails the invocation, not the process.
type ResizeConfig struct {
	BucketName          string `envconfig:"BUCKET_NAME" validate:"required"`
	ResizedImagesPath   string `envconfig:"RESIZED_IMAGES_PATH" validate:"required_if=AcceptStorageEvents true"`
	AcceptStorageEvents bool   `envconfig:"ACCEPT_STORAGE_EVENTS" default:"true"`
}

type StorageConfig struct {
	Driver          string `envconfig:"STORAGE_DRIVER" default:"s3"` // "s3" | "minio"
	Region          string `envconfig:"STORAGE_REGION"`
	Endpoint        string `envconfig:"STORAGE_ENDPOINT"` // optional override (R2, LocalStack, MinIO host:port)
	AccessKeyID     string `envconfig:"STORAGE_ACCESS_KEY_ID"`
	SecretAccessKey string `envconfig:"STORAGE_SECRET_ACCESS_KEY"`
	UseSSL          bool   `envconfig:"STORAGE_USE_SSL" default:"true"`
}

type LogConfig struct {
	Level string `envconfig:"LOG_LEVEL" default:"info"`
}

type SentryConfig struct {
	SentryDSN   string `envconfig:"SENTRY_DSN"`
	Environment string `envconfig:"SENTRY_ENVIRONMENT" default:"production"`
}

type ServerConfig struct {
	Port             int           `envconfig:"SERVER_PORT" default:"8080"`
	MaxRequestBodyMB int64         `envconfig:"SERVER_MAX_REQUEST_BODY_MB" default:"10"`
	ReadTimeout      time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"30s"`
	WriteTimeout     time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"30s"`
}

type RedisConfig struct {
	Addr        string        `envconfig:"REDIS_ADDR"`
	Password    string        `envconfig:"REDIS_PASSWORD"`
	DatabaseID  int           `envconfig:"REDIS_DB" default:"0"`
	DialTimeout time.Duration `envconfig:"REDIS_DIAL_TIMEOUT" default:"5s"`
}

type WorkerConfig struct {
	Source       string        `envconfig:"WORKER_SOURCE" default:"redis"` // "redis" | "nats"
	Stream       string        `envconfig:"WORKER_STREAM" default:"resizer:notifications"`
	Group        string        `envconfig:"WORKER_GROUP" default:"resizer"`
	Consumer     string        `envconfig:"WORKER_CONSUMER" default:"resizer-1"`
	Workers      int           `envconfig:"WORKER_CONCURRENCY" default:"2"`
	MaxAttempts  int           `envconfig:"WORKER_MAX_ATTEMPTS" default:"3"`
	MaxLen       int64         `envconfig:"WORKER_MAX_LEN" default:"10000"`
	BackoffBase  time.Duration `envconfig:"WORKER_BACKOFF_BASE" default:"500ms"`
	BlockTimeout time.Duration `envconfig:"WORKER_BLOCK_TIMEOUT" default:"5s"`
}

type NATSConfig struct {
	URL          string `envconfig:"NATS_URL" default:"nats://localhost:4222"`
	StreamName   string `envconfig:"NATS_STREAM_NAME" default:"BUCKET_EVENTS"`
	ConsumerName string `envconfig:"NATS_CONSUMER_NAME" default:"resizer"`
	Subject      string `envconfig:"NATS_SUBJECT" default:"bucket.events"`
}
