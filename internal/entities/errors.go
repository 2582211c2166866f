package entities

import (
	"errors"
	"fmt"
)

// ErrInvalidContentType is returned when the input is not a JPEG.
var ErrInvalidContentType = errors.New("input must be of JPG type")

// ErrNotBase64Encoded is returned when a direct upload is not declared base64-encoded.
var ErrNotBase64Encoded = errors.New("input must be binary (base64-encoded)")

// ErrUnsupportedTrigger is returned for storage notifications on a deployment that only accepts uploads.
var ErrUnsupportedTrigger = errors.New("storage notifications are not accepted by this deployment")

// ErrMissingBucket is returned when no destination bucket is configured.
var ErrMissingBucket = errors.New("missing bucket name")

// ErrMissingResizedImagesPath is returned when the output prefix is required but not configured.
var ErrMissingResizedImagesPath = errors.New("missing path to resized images")

// ErrPermanent marks a failure that no retry can fix. Queue consumers drop
// such messages instead of redelivering them.
var ErrPermanent = errors.New("permanent failure")

// ValidationError wraps a rejected trigger.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string { return "validation: " + e.Err.Error() }
func (e *ValidationError) Unwrap() error { return e.Err }

// ConfigurationError wraps missing or invalid process configuration.
type ConfigurationError struct {
	Err error
}

func (e *ConfigurationError) Error() string { return "configuration: " + e.Err.Error() }
func (e *ConfigurationError) Unwrap() error { return e.Err }

// StorageError is a failed object storage call. StatusCode is the upstream
// HTTP status when the storage client reported one, zero otherwise.
type StorageError struct {
	Op         string
	Bucket     string
	Key        string
	StatusCode int
	Err        error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s %s/%s: %v", e.Op, e.Bucket, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// HTTPStatusCode exposes the upstream status to the response formatter.
func (e *StorageError) HTTPStatusCode() int { return e.StatusCode }

// TransformError is a failed resize of one conversion.
type TransformError struct {
	Conversion ConversionSpec
	Err        error
}

func (e *TransformError) Error() string {
	return fmt.Sprintf("transform %s: %v", e.Conversion, e.Err)
}

func (e *TransformError) Unwrap() error { return e.Err }
