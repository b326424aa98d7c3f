package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is matched by every ConfigError.
var ErrInvalidConfig = errors.New("invalid token configuration")

// ErrInvalidInterval is returned when a rotation source reports a non-positive interval.
var ErrInvalidInterval = errors.New("invalid rotation interval")

// ErrNoRotationSource is returned when a rotating label is built without a source.
var ErrNoRotationSource = errors.New("rotation source is required")

// ErrSourceClosed is returned by sources queried after Close.
var ErrSourceClosed = errors.New("rotation source closed")

// ConfigError describes a single rejected TokenConfiguration field.
type ConfigError struct {
	Field  string // Field name
	Value  any    // The rejected value
	Reason string // Human-readable reason
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("token configuration %s: %s (got %v)", e.Field, e.Reason, e.Value)
}

// Unwrap allows errors.Is(err, ErrInvalidConfig).
func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfig
}
