package use_case

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/trunov/resizer/internal/entities"
	"go.uber.org/zap"
)

type transportEncoding int

const (
	encodingBinary transportEncoding = iota
	encodingBase64
)

// payload is an image as it arrived, before its transport encoding is removed.
type payload struct {
	source   string
	data     []byte
	encoding transportEncoding
}

// acquireBuffers returns one raw image per input, in input order.
func (c *useCase) acquireBuffers(ctx context.Context, ev entities.TriggerEvent, bucket string) ([][]byte, error) {
	payloads, err := c.collectPayloads(ctx, ev, bucket)
	if err != nil {
		return nil, err
	}

	buffers := make([][]byte, 0, len(payloads))
	for _, p := range payloads {
		b, err := decodePayload(p)
		if err != nil {
			return nil, err
		}
		buffers = append(buffers, b)
	}
	return buffers, nil
}

func (c *useCase) collectPayloads(ctx context.Context, ev entities.TriggerEvent, bucket string) ([]payload, error) {
	switch e := ev.(type) {
	case entities.DirectUpload:
		return []payload{{source: "body", data: []byte(e.Body), encoding: encodingBase64}}, nil

	case entities.StorageNotification:
		payloads := make([]payload, 0, len(e.Records))
		for _, r := range e.Records {
			if r.Key == "" {
				continue
			}
			b, err := c.storage.Get(ctx, bucket, r.Key)
			if err != nil {
				return nil, err
			}
			c.logger.Debug("fetched source image",
				zap.String("bucket", bucket),
				zap.String("record_bucket", r.Bucket),
				zap.String("key", r.Key),
				zap.Int("bytes", len(b)),
			)
			payloads = append(payloads, payload{source: r.Key, data: b, encoding: encodingBinary})
		}
		return payloads, nil

	default:
		return nil, &entities.ValidationError{Err: fmt.Errorf("unknown trigger %T", ev)}
	}
}

// decodePayload removes the transport encoding. It is the only place this happens.
func decodePayload(p payload) ([]byte, error) {
	switch p.encoding {
	case encodingBase64:
		out := make([]byte, base64.StdEncoding.DecodedLen(len(p.data)))
		n, err := base64.StdEncoding.Decode(out, p.data)
		if err != nil {
			return nil, &entities.ValidationError{Err: fmt.Errorf("%w: %s: %v", entities.ErrNotBase64Encoded, p.source, err)}
		}
		return out[:n], nil
	default:
		return p.data, nil
	}
}
