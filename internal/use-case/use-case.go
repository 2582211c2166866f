package use_case

import (
	"context"
	"time"

	"github.com/trunov/resizer/internal/config"
	"github.com/trunov/resizer/internal/entities"
	"github.com/trunov/resizer/internal/trigger"
	"go.uber.org/zap"
)

type Storage interface {
	Get(ctx context.Context, bucket, key string) ([]byte, error)
	Put(ctx context.Context, bucket, key string, body []byte) error
}

type Transformer interface {
	Transform(ctx context.Context, input []byte, conversion entities.ConversionSpec) ([]byte, error)
}

type useCase struct {
	storage     Storage
	transformer Transformer
	conversions []entities.ConversionSpec
	cfg         config.ResizeConfig
	now         func() time.Time
	logger      *zap.Logger
}

// Option tweaks a useCase at construction.
type Option func(*useCase)

// WithClock replaces time.Now for output naming.
func WithClock(now func() time.Time) Option {
	return func(c *useCase) { c.now = now }
}

// WithConversions replaces entities.DefaultConversions.
func WithConversions(conversions []entities.ConversionSpec) Option {
	return func(c *useCase) { c.conversions = conversions }
}

func New(storage Storage, transformer Transformer, cfg config.ResizeConfig, logger *zap.Logger, opts ...Option) *useCase {
	c := &useCase{
		storage:     storage,
		transformer: transformer,
		conversions: entities.DefaultConversions,
		cfg:         cfg,
		now:         time.Now,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ResizeImages validates ev, gathers its images and writes every resized copy.
// It stops at the first error.
func (c *useCase) ResizeImages(ctx context.Context, ev entities.TriggerEvent) error {
	if err := trigger.Validate(ev, trigger.Options{AcceptStorageEvents: c.cfg.AcceptStorageEvents}); err != nil {
		return err
	}

	if err := c.cfg.Check(); err != nil {
		return err
	}

	buffers, err := c.acquireBuffers(ctx, ev, c.cfg.BucketName)
	if err != nil {
		return err
	}

	return c.convertImages(ctx, convertOptions{
		bucket:      c.cfg.BucketName,
		prefix:      c.cfg.ResizedImagesPath,
		buffers:     buffers,
		conversions: c.conversions,
	})
}
