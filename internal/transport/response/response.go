package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/trunov/resizer/internal/entities"
)

const (
	okMessage    = "OK"
	errorMessage = "Error"
)

// Result builds an envelope whose body is message encoded as JSON.
func Result(message any, statusCode int) entities.ResultEnvelope {
	body, err := json.Marshal(message)
	if err != nil {
		body = []byte(`"` + errorMessage + `"`)
		statusCode = http.StatusInternalServerError
	}
	return entities.ResultEnvelope{StatusCode: statusCode, Body: string(body)}
}

func OK() entities.ResultEnvelope {
	return Result(okMessage, http.StatusOK)
}

// Error never exposes err itself; only the status code depends on it.
func Error(err error) entities.ResultEnvelope {
	return Result(errorMessage, StatusCode(err))
}

type httpStatusCoder interface {
	HTTPStatusCode() int
}

// StatusCode is the upstream status carried somewhere in err's chain, or 400.
func StatusCode(err error) int {
	var sc httpStatusCoder
	if errors.As(err, &sc) && sc.HTTPStatusCode() > 0 {
		return sc.HTTPStatusCode()
	}
	return http.StatusBadRequest
}
