package trigger

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/trunov/resizer/internal/entities"
)

// JPEGMediaType is the only content-type a direct upload may declare.
const JPEGMediaType = "image/jpg"

const jpegSuffix = ".jpg"

// Parse decides which trigger variant raw is. A payload with a headers field
// is a direct upload, anything else is a storage notification.
func Parse(raw []byte) (entities.TriggerEvent, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, &entities.ValidationError{Err: fmt.Errorf("decode trigger: %w", err)}
	}

	if h, ok := probe["headers"]; ok && !bytes.Equal(bytes.TrimSpace(h), []byte("null")) {
		var req events.APIGatewayProxyRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			return nil, &entities.ValidationError{Err: fmt.Errorf("decode direct upload: %w", err)}
		}
		return entities.DirectUpload{
			Headers:         req.Headers,
			IsBase64Encoded: req.IsBase64Encoded,
			Body:            req.Body,
		}, nil
	}

	var ev events.S3Event
	if err := json.Unmarshal(raw, &ev); err != nil {
		return nil, &entities.ValidationError{Err: fmt.Errorf("decode storage notification: %w", err)}
	}

	n := entities.StorageNotification{Records: make([]entities.ObjectRecord, 0, len(ev.Records))}
	for _, r := range ev.Records {
		n.Records = append(n.Records, entities.ObjectRecord{
			Bucket: r.S3.Bucket.Name,
			Key:    unescapeKey(r.S3.Object.Key),
		})
	}
	return n, nil
}

// S3 notifications carry form-encoded keys ("my+photo.jpg").
func unescapeKey(key string) string {
	decoded, err := url.QueryUnescape(key)
	if err != nil {
		return key
	}
	return decoded
}

// Options narrow what a deployment accepts.
type Options struct {
	AcceptStorageEvents bool
}

// Validate checks ev without touching storage. Failures are *entities.ValidationError.
func Validate(ev entities.TriggerEvent, opts Options) error {
	switch e := ev.(type) {
	case entities.DirectUpload:
		return validateDirectUpload(e)
	case entities.StorageNotification:
		if !opts.AcceptStorageEvents {
			return &entities.ValidationError{Err: entities.ErrUnsupportedTrigger}
		}
		return validateStorageNotification(e)
	default:
		return &entities.ValidationError{Err: fmt.Errorf("unknown trigger %T", ev)}
	}
}

func validateDirectUpload(e entities.DirectUpload) error {
	if header(e.Headers, "content-type") != JPEGMediaType {
		return &entities.ValidationError{Err: entities.ErrInvalidContentType}
	}
	if !e.IsBase64Encoded {
		return &entities.ValidationError{Err: entities.ErrNotBase64Encoded}
	}
	return nil
}

func validateStorageNotification(e entities.StorageNotification) error {
	if len(e.Records) == 0 {
		return &entities.ValidationError{Err: fmt.Errorf("%w: no records", entities.ErrInvalidContentType)}
	}

	for _, r := range e.Records {
		if !hasJPEGName(r.Key) {
			return &entities.ValidationError{Err: fmt.Errorf("%w: %q", entities.ErrInvalidContentType, r.Key)}
		}
	}
	return nil
}

func hasJPEGName(key string) bool {
	name := key[strings.LastIndex(key, "/")+1:]
	return strings.HasSuffix(name, jpegSuffix)
}

// header looks name up exactly first, then case-insensitively.
func header(headers map[string]string, name string) string {
	if v, ok := headers[name]; ok {
		return v
	}
	for k, v := range headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}
