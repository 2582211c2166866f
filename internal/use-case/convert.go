package use_case

import (
	"context"

	"github.com/trunov/resizer/internal/entities"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type convertOptions struct {
	bucket      string
	prefix      string
	buffers     [][]byte
	conversions []entities.ConversionSpec
}

// convertImages handles buffers one after another. Each buffer is resized into
// every conversion at once; its copies are written only after all of them succeeded.
func (c *useCase) convertImages(ctx context.Context, opts convertOptions) error {
	for _, buffer := range opts.buffers {
		images, err := c.resizeAll(ctx, buffer, opts.conversions)
		if err != nil {
			return err
		}

		date := c.now().UnixMilli()

		for i, image := range images {
			out := entities.OutputObject{
				Bucket: opts.bucket,
				Key:    entities.OutputKey(opts.prefix, date, opts.conversions[i]),
				Body:   image,
			}
			if err := c.storage.Put(ctx, out.Bucket, out.Key, out.Body); err != nil {
				return err
			}
			c.logger.Info("resized image written",
				zap.String("bucket", out.Bucket),
				zap.String("key", out.Key),
				zap.Int("bytes", len(out.Body)),
			)
		}
	}
	return nil
}

// resizeAll returns the resized copies in conversions order.
func (c *useCase) resizeAll(ctx context.Context, buffer []byte, conversions []entities.ConversionSpec) ([][]byte, error) {
	g, gctx := errgroup.WithContext(ctx)
	images := make([][]byte, len(conversions))

	for i, conversion := range conversions {
		i, conversion := i, conversion
		g.Go(func() error {
			img, err := c.transformer.Transform(gctx, buffer, conversion)
			if err != nil {
				return err
			}
			images[i] = img
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return images, nil
}
