package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/gabriel-vasile/mimetype"
	"github.com/trunov/resizer/internal/config"
	"github.com/trunov/resizer/internal/entities"
)

// Invoker runs one trigger the way the Lambda runtime would.
type Invoker interface {
	Handle(ctx context.Context, raw json.RawMessage) (entities.ResultEnvelope, error)
}

// Notifier hands storage notifications to the background worker.
type Notifier interface {
	EnqueueNotification(ctx context.Context, raw []byte) error
}

type Handler struct {
	invoker  Invoker
	notifier Notifier
	cfg      *config.ServerConfig
}

// New builds the local HTTP adapter. notifier may be nil, in which case
// storage notifications are processed in the request.
func New(invoker Invoker, notifier Notifier, cfg *config.ServerConfig) *Handler {
	return &Handler{
		invoker:  invoker,
		notifier: notifier,
		cfg:      cfg,
	}
}

// UploadImage takes the raw image as request body and replays it as an API Gateway upload.
func (h *Handler) UploadImage(w http.ResponseWriter, r *http.Request) {
	body, ok := h.readBody(w, r)
	if !ok {
		return
	}

	mime := mimetype.Detect(body)
	if err := validateMimeType(mime.String()); err != nil {
		writeJSONError(w, fmt.Sprintf("unsupported file type: %s", mime.String()), http.StatusBadRequest)
		return
	}

	raw, err := json.Marshal(events.APIGatewayProxyRequest{
		HTTPMethod:      r.Method,
		Path:            r.URL.Path,
		Headers:         map[string]string{"content-type": r.Header.Get("Content-Type")},
		IsBase64Encoded: true,
		Body:            base64.StdEncoding.EncodeToString(body),
	})
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	h.invoke(r.Context(), w, raw)
}

// SubmitEvent takes an S3 event notification document.
func (h *Handler) SubmitEvent(w http.ResponseWriter, r *http.Request) {
	body, ok := h.readBody(w, r)
	if !ok {
		return
	}

	var ev events.S3Event
	if err := json.Unmarshal(body, &ev); err != nil {
		writeJSONError(w, "invalid event document: "+err.Error(), http.StatusBadRequest)
		return
	}

	if h.notifier == nil {
		h.invoke(r.Context(), w, body)
		return
	}

	if err := h.notifier.EnqueueNotification(r.Context(), body); err != nil {
		writeJSONError(w, "failed to queue event: "+err.Error(), http.StatusServiceUnavailable)
		return
	}

	writeJSON(w, http.StatusAccepted, queuedResponse{Status: "queued", Records: len(ev.Records)})
}

func (h *Handler) invoke(ctx context.Context, w http.ResponseWriter, raw json.RawMessage) {
	res, err := h.invoker.Handle(ctx, raw)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(res.StatusCode)
	_, _ = io.WriteString(w, res.Body)
}

func (h *Handler) readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxRequestBodyMB<<20)

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeBodyError(w, err)
		return nil, false
	}
	if len(body) == 0 {
		writeJSONError(w, "empty request body", http.StatusBadRequest)
		return nil, false
	}
	return body, true
}
