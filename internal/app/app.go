package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/go-playground/validator/v10"
	"github.com/trunov/resizer/internal/config"
	"github.com/trunov/resizer/internal/entities"
	"github.com/trunov/resizer/internal/eventbroker/nats"
	"github.com/trunov/resizer/internal/objectstore"
	"github.com/trunov/resizer/internal/processor"
	"github.com/trunov/resizer/internal/queue"
	"github.com/trunov/resizer/internal/transport/handler"
	lambdah "github.com/trunov/resizer/internal/transport/lambda"
	"github.com/trunov/resizer/internal/transport/router"
	use_case "github.com/trunov/resizer/internal/use-case"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

// App owns everything that lives for the whole process: the storage client
// and the invocation handler built on top of it.
type App struct {
	cfg     *config.Config
	logger  *zap.Logger
	Handler *lambdah.Handler
}

func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	if err := validateConversions(entities.DefaultConversions); err != nil {
		return nil, err
	}

	store, err := objectstore.New(ctx, &cfg.Storage)
	if err != nil {
		return nil, err
	}
	logger.Info("storage client initialized", zap.String("driver", cfg.Storage.Driver))

	uc := use_case.New(store, processor.Transformer{}, cfg.Resize, logger)

	return &App{
		cfg:     cfg,
		logger:  logger,
		Handler: lambdah.New(uc, logger),
	}, nil
}

func validateConversions(conversions []entities.ConversionSpec) error {
	if len(conversions) == 0 {
		return errors.New("no conversions configured")
	}
	v := validator.New()
	for _, c := range conversions {
		if err := v.Struct(c); err != nil {
			return fmt.Errorf("invalid conversion %s: %w", c, err)
		}
	}
	return nil
}

// RunLambda hands control to the Lambda runtime and never returns.
func (a *App) RunLambda() {
	lambda.Start(a.Handler.Handle)
}

// RunServer serves the local HTTP adapter until ctx is canceled.
func (a *App) RunServer(ctx context.Context) error {
	var notifier handler.Notifier
	if a.cfg.Redis.Addr != "" {
		rc, err := queue.NewClient(ctx, &a.cfg.Redis)
		if err != nil {
			return err
		}
		defer rc.Close()
		notifier = queue.NewProducer(rc, a.cfg.Worker.Stream, a.cfg.Worker.MaxLen)
	}

	h := handler.New(a.Handler, notifier, &a.cfg.Server)
	s := &http.Server{
		Handler:      router.NewRouter(h),
		Addr:         fmt.Sprintf(":%d", a.cfg.Server.Port),
		ReadTimeout:  a.cfg.Server.ReadTimeout,
		WriteTimeout: a.cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("starting server", zap.String("addr", s.Addr), zap.Bool("queue", notifier != nil))
		errCh <- s.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.Shutdown(shutdownCtx)
}

// RunWorker consumes storage notifications from the configured source until ctx is canceled.
func (a *App) RunWorker(ctx context.Context) error {
	switch a.cfg.Worker.Source {
	case "redis":
		rc, err := queue.NewClient(ctx, &a.cfg.Redis)
		if err != nil {
			return err
		}
		defer rc.Close()

		err = queue.NewWorker(rc, a.cfg.Worker, a.Handler, a.logger).Start(ctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err

	case "nats":
		consumer, err := nats.NewConsumer(a.cfg.NATS, a.logger)
		if err != nil {
			return err
		}
		defer consumer.Close()

		if err := consumer.Subscribe(ctx, a.Handler); err != nil {
			return err
		}
		<-ctx.Done()
		return nil

	default:
		return fmt.Errorf("unknown worker source %q", a.cfg.Worker.Source)
	}
}
