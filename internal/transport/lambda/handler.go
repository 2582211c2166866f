package lambda

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"
	"github.com/trunov/resizer/internal/entities"
	"github.com/trunov/resizer/internal/transport/response"
	"github.com/trunov/resizer/internal/trigger"
	"go.uber.org/zap"
)

const sentryFlushTimeout = 2 * time.Second

type UseCase interface {
	ResizeImages(ctx context.Context, ev entities.TriggerEvent) error
}

// Handler is the only place errors are caught. Whatever happens, the invoker
// gets an envelope and never an invocation error.
type Handler struct {
	useCase UseCase
	logger  *zap.Logger
}

func New(useCase UseCase, logger *zap.Logger) *Handler {
	return &Handler{useCase: useCase, logger: logger}
}

// Handle is registered with lambda.Start.
func (h *Handler) Handle(ctx context.Context, raw json.RawMessage) (entities.ResultEnvelope, error) {
	res, _ := h.invoke(ctx, raw)
	return res, nil
}

// HandleMessage lets queue consumers reuse the invocation path. A non-200
// envelope is a handling failure so the message is retried, unless the
// failure wraps entities.ErrPermanent.
func (h *Handler) HandleMessage(ctx context.Context, data []byte) error {
	res, err := h.invoke(ctx, data)
	if res.StatusCode == http.StatusOK {
		return nil
	}
	if isPermanent(err) {
		return fmt.Errorf("%w: message rejected with status %d: %w", entities.ErrPermanent, res.StatusCode, err)
	}
	return fmt.Errorf("message rejected with status %d: %w", res.StatusCode, err)
}

func (h *Handler) invoke(ctx context.Context, raw []byte) (entities.ResultEnvelope, error) {
	requestID := requestID(ctx)
	logger := h.logger.With(zap.String("request_id", requestID))
	start := time.Now()

	err := h.process(ctx, raw)
	if err != nil {
		res := response.Error(err)
		logger.Error("resize failed",
			zap.Error(err),
			zap.Int("status_code", res.StatusCode),
			zap.Duration("elapsed", time.Since(start)),
		)
		report(ctx, requestID, err)
		return res, err
	}

	logger.Info("resize completed", zap.Duration("elapsed", time.Since(start)))
	return response.OK(), nil
}

// isPermanent reports failures that depend only on the message or the deployment.
func isPermanent(err error) bool {
	var (
		verr *entities.ValidationError
		cerr *entities.ConfigurationError
		terr *entities.TransformError
	)
	switch {
	case errors.As(err, &verr), errors.As(err, &cerr):
		return true
	case errors.As(err, &terr):
		return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
	default:
		return false
	}
}

func (h *Handler) process(ctx context.Context, raw []byte) error {
	ev, err := trigger.Parse(raw)
	if err != nil {
		return err
	}
	return h.useCase.ResizeImages(ctx, ev)
}

func requestID(ctx context.Context) string {
	if lc, ok := lambdacontext.FromContext(ctx); ok && lc.AwsRequestID != "" {
		return lc.AwsRequestID
	}
	return uuid.NewString()
}

// report sends err to Sentry and waits for delivery; a frozen Lambda sandbox would drop it otherwise.
func report(ctx context.Context, requestID string, err error) {
	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub().Clone()
	}
	hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("request_id", requestID)
		hub.CaptureException(err)
	})
	hub.Flush(sentryFlushTimeout)
}
