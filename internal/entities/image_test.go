package entities_test

import (
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trunov/resizer/internal/entities"
)

func TestOutputKey(t *testing.T) {
	box := entities.ConversionSpec{MaxWidth: 500, MaxHeight: 300}

	assert.Equal(t, "image-1700000000000-500x300.jpg", entities.OutputKey("", 1700000000000, box))
	assert.Equal(t, "resized/image-1700000000000-500x300.jpg", entities.OutputKey("resized", 1700000000000, box))
	assert.Equal(t, "resized/image-1700000000000-500x300.jpg", entities.OutputKey("resized/", 1700000000000, box))
}

func TestOutputKeyDistinctPerConversion(t *testing.T) {
	seen := map[string]struct{}{}
	for _, ts := range []int64{1, 2} {
		for _, box := range entities.DefaultConversions {
			seen[entities.OutputKey("p", ts, box)] = struct{}{}
		}
	}
	assert.Len(t, seen, 2*len(entities.DefaultConversions))
}

func TestDefaultConversionsAreValid(t *testing.T) {
	v := validator.New()
	for _, box := range entities.DefaultConversions {
		require.NoError(t, v.Struct(box), box.String())
	}

	assert.Error(t, v.Struct(entities.ConversionSpec{MaxWidth: 0, MaxHeight: 10}))
}

func TestStorageErrorStatus(t *testing.T) {
	cause := errors.New("access denied")
	err := &entities.StorageError{Op: "get", Bucket: "b", Key: "k.jpg", StatusCode: 403, Err: cause}

	assert.Equal(t, 403, err.HTTPStatusCode())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "storage get b/k.jpg: access denied", err.Error())
}
