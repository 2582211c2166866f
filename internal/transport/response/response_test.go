package response_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/trunov/resizer/internal/entities"
	"github.com/trunov/resizer/internal/transport/response"
)

func TestOK(t *testing.T) {
	assert.Equal(t, entities.ResultEnvelope{StatusCode: 200, Body: `"OK"`}, response.OK())
}

func TestError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"plain error", errors.New("boom"), http.StatusBadRequest},
		{"validation", &entities.ValidationError{Err: entities.ErrInvalidContentType}, http.StatusBadRequest},
		{"configuration", &entities.ConfigurationError{Err: entities.ErrMissingBucket}, http.StatusBadRequest},
		{"transform", &entities.TransformError{Err: errors.New("corrupt")}, http.StatusBadRequest},
		{"storage with upstream status", &entities.StorageError{StatusCode: http.StatusForbidden, Err: errors.New("denied")}, http.StatusForbidden},
		{"wrapped storage error", fmt.Errorf("fetch: %w", &entities.StorageError{StatusCode: 503, Err: errors.New("slow down")}), 503},
		{"storage without status", &entities.StorageError{Err: errors.New("timeout")}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := response.Error(tt.err)
			assert.Equal(t, tt.want, got.StatusCode)
			assert.Equal(t, `"Error"`, got.Body)
		})
	}
}

func TestResultEncodesObjects(t *testing.T) {
	got := response.Result(map[string]string{"message": "hi"}, http.StatusAccepted)
	assert.Equal(t, http.StatusAccepted, got.StatusCode)
	assert.JSONEq(t, `{"message":"hi"}`, got.Body)
}
