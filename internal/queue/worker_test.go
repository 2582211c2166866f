package queue_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/trunov/resizer/internal/config"
	"github.com/trunov/resizer/internal/entities"
	"github.com/trunov/resizer/internal/queue"
	"go.uber.org/zap"
)

type recordingHandler struct {
	mu       sync.Mutex
	messages [][]byte
	received chan struct{}
	err      error
}

func (h *recordingHandler) HandleMessage(_ context.Context, data []byte) error {
	h.mu.Lock()
	h.messages = append(h.messages, data)
	h.mu.Unlock()

	h.received <- struct{}{}
	return h.err
}

func setupRedis(t *testing.T) *config.RedisConfig {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	return &config.RedisConfig{Addr: host + ":" + port.Port(), DialTimeout: 5 * time.Second}
}

func workerConfig() config.WorkerConfig {
	return config.WorkerConfig{
		Stream:       "test:notifications",
		Group:        "test",
		Consumer:     "test-1",
		Workers:      1,
		MaxAttempts:  2,
		MaxLen:       100,
		BackoffBase:  10 * time.Millisecond,
		BlockTimeout: 100 * time.Millisecond,
	}
}

func waitFor(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(10 * time.Second):
		t.Fatal("timeout waiting for message")
	}
}

func TestWorkerDeliversNotifications(t *testing.T) {
	// Arrange
	redisCfg := setupRedis(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rc, err := queue.NewClient(ctx, redisCfg)
	require.NoError(t, err)
	defer rc.Close()

	cfg := workerConfig()
	handler := &recordingHandler{received: make(chan struct{}, 10)}
	worker := queue.NewWorker(rc, cfg, handler, zap.NewNop())
	require.NoError(t, worker.EnsureGroup(ctx))
	go func() { _ = worker.Start(ctx) }()

	event := []byte(`{"Records":[{"s3":{"object":{"key":"a.jpg"}}}]}`)

	// Act
	require.NoError(t, queue.NewProducer(rc, cfg.Stream, cfg.MaxLen).EnqueueNotification(ctx, event))

	// Assert
	waitFor(t, handler.received)
	handler.mu.Lock()
	defer handler.mu.Unlock()
	assert.Equal(t, [][]byte{event}, handler.messages)
}

func TestWorkerRetriesUntilMaxAttempts(t *testing.T) {
	redisCfg := setupRedis(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rc, err := queue.NewClient(ctx, redisCfg)
	require.NoError(t, err)
	defer rc.Close()

	cfg := workerConfig()
	handler := &recordingHandler{received: make(chan struct{}, 10), err: errors.New("status 503")}
	worker := queue.NewWorker(rc, cfg, handler, zap.NewNop())
	require.NoError(t, worker.EnsureGroup(ctx))
	go func() { _ = worker.Start(ctx) }()

	event := []byte(`{"Records":[{"s3":{"object":{"key":"a.jpg"}}}]}`)
	require.NoError(t, queue.NewProducer(rc, cfg.Stream, cfg.MaxLen).EnqueueNotification(ctx, event))

	waitFor(t, handler.received)
	waitFor(t, handler.received)

	select {
	case <-handler.received:
		t.Fatal("message handled more than MaxAttempts times")
	case <-time.After(500 * time.Millisecond):
	}

	pending, err := rc.XPending(ctx, cfg.Stream, cfg.Group).Result()
	require.NoError(t, err)
	assert.Zero(t, pending.Count)

	entries, err := rc.XRange(ctx, cfg.Stream, "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "1", entries[1].Values["attempt"])
	assert.Contains(t, entries[1].Values, "not_before")
}

func TestWorkerHandlesPermanentFailureOnce(t *testing.T) {
	redisCfg := setupRedis(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rc, err := queue.NewClient(ctx, redisCfg)
	require.NoError(t, err)
	defer rc.Close()

	cfg := workerConfig()
	cfg.MaxAttempts = 5
	handler := &recordingHandler{
		received: make(chan struct{}, 10),
		err:      fmt.Errorf("%w: message rejected with status 400", entities.ErrPermanent),
	}
	worker := queue.NewWorker(rc, cfg, handler, zap.NewNop())
	require.NoError(t, worker.EnsureGroup(ctx))
	go func() { _ = worker.Start(ctx) }()

	event := []byte(`{"Records":[{"s3":{"object":{"key":"photos/b.png"}}}]}`)
	require.NoError(t, queue.NewProducer(rc, cfg.Stream, cfg.MaxLen).EnqueueNotification(ctx, event))

	waitFor(t, handler.received)
	select {
	case <-handler.received:
		t.Fatal("permanent failure was retried")
	case <-time.After(500 * time.Millisecond):
	}

	pending, err := rc.XPending(ctx, cfg.Stream, cfg.Group).Result()
	require.NoError(t, err)
	assert.Zero(t, pending.Count)

	length, err := rc.XLen(ctx, cfg.Stream).Result()
	require.NoError(t, err)
	assert.EqualValues(t, 1, length)
}

func TestWorkerRetrySurvivesRestart(t *testing.T) {
	redisCfg := setupRedis(t)
	ctx := context.Background()

	rc, err := queue.NewClient(ctx, redisCfg)
	require.NoError(t, err)
	defer rc.Close()

	cfg := workerConfig()
	cfg.MaxAttempts = 3
	cfg.BackoffBase = time.Second

	// first worker fails and stops while the retry waits out its backoff
	firstCtx, stopFirst := context.WithCancel(ctx)
	failing := &recordingHandler{received: make(chan struct{}, 10), err: errors.New("status 503")}
	first := queue.NewWorker(rc, cfg, failing, zap.NewNop())
	require.NoError(t, first.EnsureGroup(ctx))
	done := make(chan struct{})
	go func() {
		_ = first.Start(firstCtx)
		close(done)
	}()

	event := []byte(`{"Records":[{"s3":{"object":{"key":"a.jpg"}}}]}`)
	require.NoError(t, queue.NewProducer(rc, cfg.Stream, cfg.MaxLen).EnqueueNotification(ctx, event))
	waitFor(t, failing.received)
	time.Sleep(200 * time.Millisecond)
	stopFirst()
	<-done

	secondCtx, stopSecond := context.WithCancel(ctx)
	defer stopSecond()
	succeeding := &recordingHandler{received: make(chan struct{}, 10)}
	second := queue.NewWorker(rc, cfg, succeeding, zap.NewNop())
	go func() { _ = second.Start(secondCtx) }()

	waitFor(t, succeeding.received)
	succeeding.mu.Lock()
	defer succeeding.mu.Unlock()
	assert.Equal(t, [][]byte{event}, succeeding.messages)
}

func TestNewClientWithoutAddress(t *testing.T) {
	_, err := queue.NewClient(context.Background(), &config.RedisConfig{})
	assert.Error(t, err)
}
