package queue

import (
	"context"

	"github.com/redis/go-redis/v9"
)

type Producer struct {
	r      redis.UniversalClient
	stream string
	maxLen int64
}

func NewProducer(r redis.UniversalClient, stream string, maxLen int64) *Producer {
	return &Producer{r: r, stream: stream, maxLen: maxLen}
}

// EnqueueNotification appends a raw storage notification document to the stream.
func (p *Producer) EnqueueNotification(ctx context.Context, raw []byte) error {
	return p.r.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		MaxLen: p.maxLen,
		Approx: true,
		Values: map[string]any{
			fieldPayload: string(raw),
			fieldAttempt: 0,
		},
	}).Err()
}
