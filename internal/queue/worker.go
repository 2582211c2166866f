package queue

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/trunov/resizer/internal/config"
	"github.com/trunov/resizer/internal/entities"
	"go.uber.org/zap"
)

// MessageHandler processes one storage notification document.
type MessageHandler interface {
	HandleMessage(ctx context.Context, data []byte) error
}

type Worker struct {
	rc      redis.UniversalClient
	cfg     config.WorkerConfig
	handler MessageHandler
	logger  *zap.Logger
}

func NewWorker(rc redis.UniversalClient, cfg config.WorkerConfig, handler MessageHandler, logger *zap.Logger) *Worker {
	return &Worker{
		rc:      rc,
		cfg:     cfg,
		handler: handler,
		logger:  logger.With(zap.String("stream", cfg.Stream), zap.String("group", cfg.Group)),
	}
}

func (w *Worker) EnsureGroup(ctx context.Context) error {
	// MkStream lets the group exist before the first notification arrives.
	err := w.rc.XGroupCreateMkStream(ctx, w.cfg.Stream, w.cfg.Group, "0").Err()
	// BUSYGROUP means it already exists
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		return err
	}
	return nil
}

// Start blocks until ctx is canceled or a loop fails.
func (w *Worker) Start(ctx context.Context) error {
	if err := w.EnsureGroup(ctx); err != nil {
		return fmt.Errorf("failed to ensure Redis group: %w", err)
	}

	w.logger.Info("starting consumer", zap.Int("workers", w.cfg.Workers))

	// Adopt orphaned pending messages
	w.recoverPending(ctx)
	w.autoClaim(ctx)

	errCh := make(chan error, w.cfg.Workers)
	for i := 0; i < w.cfg.Workers; i++ {
		id := i
		go func() {
			err := w.loop(ctx)
			if err != nil {
				w.logger.Error("worker stopped with error", zap.Int("worker", id), zap.Error(err))
			} else {
				w.logger.Info("worker stopped", zap.Int("worker", id))
			}
			errCh <- err
		}()
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("worker loop exited with error: %w", err)
		}
		return nil
	}
}

// recoverPending handles entries this consumer read but never acked, such as
// a retry still waiting for its not_before when the process stopped.
func (w *Worker) recoverPending(ctx context.Context) {
	next := "0"
	for {
		streams, err := w.rc.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    w.cfg.Group,
			Consumer: w.cfg.Consumer,
			Streams:  []string{w.cfg.Stream, next},
			Count:    100,
			Block:    -1,
		}).Result()
		if err != nil || len(streams) == 0 || len(streams[0].Messages) == 0 {
			return
		}

		w.logger.Info("recovering pending notifications", zap.Int("count", len(streams[0].Messages)))
		for _, m := range streams[0].Messages {
			_ = w.handle(ctx, m)
			next = m.ID
		}
	}
}

// autoClaim takes over entries delivered to a consumer that died before XACK
// and handles them here.
func (w *Worker) autoClaim(ctx context.Context) {
	next := "0-0"

	// Never steal from a consumer that may still be working on the entry.
	minIdle := 30 * time.Second
	if t := w.cfg.BlockTimeout * 6; t > minIdle {
		minIdle = t
	}

	for {
		msgs, start, err := w.rc.XAutoClaim(ctx, &redis.XAutoClaimArgs{
			Stream:   w.cfg.Stream,
			Group:    w.cfg.Group,
			Consumer: w.cfg.Consumer,
			MinIdle:  minIdle,
			Start:    next,
			Count:    100,
		}).Result()
		if err != nil || len(msgs) == 0 {
			return
		}

		w.logger.Info("claimed pending notifications", zap.Int("count", len(msgs)))
		for _, m := range msgs {
			_ = w.handle(ctx, m)
		}

		if start == "0-0" {
			return
		}
		next = start
	}
}

func (w *Worker) loop(ctx context.Context) error {
	for {
		// Entries stay pending until handle acks them; autoClaim picks up the
		// ones a crashed consumer left behind.
		streams, err := w.rc.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    w.cfg.Group,
			Consumer: w.cfg.Consumer,
			Streams:  []string{w.cfg.Stream, ">"},
			Count:    1,
			Block:    w.cfg.BlockTimeout,
		}).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			if ctx.Err() != nil {
				return nil
			}
			w.logger.Warn("read failed", zap.Error(err))
			if !sleep(ctx, w.cfg.BackoffBase) {
				return nil
			}
			continue
		}
		for _, s := range streams {
			for _, m := range s.Messages {
				_ = w.handle(ctx, m)
			}
		}
	}
}

func (w *Worker) handle(ctx context.Context, m redis.XMessage) error {
	logger := w.logger.With(zap.String("id", m.ID))

	raw, ok := m.Values[fieldPayload].(string)
	if !ok {
		logger.Error("dropping entry without payload")
		w.ack(ctx, m.ID)
		return nil
	}

	attempt, err := parseInt(m.Values[fieldAttempt])
	if err != nil {
		logger.Warn("invalid attempt field, treating as first attempt", zap.Error(err))
	}
	notBefore, err := parseInt(m.Values[fieldNotBefore])
	if err != nil {
		logger.Warn("invalid not_before field, handling now", zap.Error(err))
	}

	// Unacked on cancellation, so the entry is reclaimed after a restart.
	if !sleep(ctx, time.Until(time.UnixMilli(int64(notBefore)))) {
		return ctx.Err()
	}

	err = w.handler.HandleMessage(ctx, []byte(raw))
	switch {
	case err == nil:
		w.ack(ctx, m.ID)
		return nil

	case errors.Is(err, entities.ErrPermanent):
		logger.Error("dropping notification that cannot succeed", zap.Int("attempt", attempt+1), zap.Error(err))
		w.ack(ctx, m.ID)
		return err

	case attempt+1 >= w.cfg.MaxAttempts:
		logger.Error("giving up on notification", zap.Int("attempt", attempt+1), zap.Error(err))
		w.ack(ctx, m.ID)
		return err
	}

	// exponential backoff requeue; the original stays pending until the retry is stored
	backoff := w.cfg.BackoffBase << attempt
	logger.Warn("requeueing notification",
		zap.Int("attempt", attempt+1),
		zap.Duration("backoff", backoff),
		zap.Error(err),
	)
	if xerr := w.rc.XAdd(ctx, &redis.XAddArgs{
		Stream: w.cfg.Stream,
		MaxLen: w.cfg.MaxLen,
		Approx: true,
		Values: map[string]any{
			fieldPayload:   raw,
			fieldAttempt:   attempt + 1,
			fieldNotBefore: time.Now().Add(backoff).UnixMilli(),
		},
	}).Err(); xerr != nil {
		logger.Error("failed to requeue", zap.Error(xerr))
		return err
	}
	w.ack(ctx, m.ID)
	return err
}

func (w *Worker) ack(ctx context.Context, id string) {
	if err := w.rc.XAck(ctx, w.cfg.Stream, w.cfg.Group, id).Err(); err != nil {
		w.logger.Error("failed to ack", zap.String("id", id), zap.Error(err))
	}
}

// sleep waits d and reports false when ctx ends first.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// parseInt reads a numeric stream field. A missing field is zero.
func parseInt(v any) (int, error) {
	switch t := v.(type) {
	case nil:
		return 0, nil
	case int:
		return t, nil
	case int64:
		return int(t), nil
	case string:
		n, err := strconv.Atoi(t)
		if err != nil {
			return 0, fmt.Errorf("parse %q: %w", t, err)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("unexpected field type %T", v)
	}
}
