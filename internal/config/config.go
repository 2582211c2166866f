package config

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"github.com/trunov/resizer/internal/entities"
)

var validate = validator.New()

// Load reads the whole configuration from the process environment.
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Check reports what the invocation needs and is missing, as a *entities.ConfigurationError.
func (c ResizeConfig) Check() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &entities.ConfigurationError{Err: err}
	}

	switch verrs[0].Field() {
	case "BucketName":
		return &entities.ConfigurationError{Err: entities.ErrMissingBucket}
	case "ResizedImagesPath":
		return &entities.ConfigurationError{Err: entities.ErrMissingResizedImagesPath}
	default:
		return &entities.ConfigurationError{Err: err}
	}
}
