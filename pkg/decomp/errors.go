package decomp

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidParameter reports a dx that is non-finite or outside the
	// configured range. The state is left untouched.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrInvalidConfiguration reports a config that cannot produce a valid
	// layout.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrBusy is returned when Update is re-entered while applying.
	ErrBusy = errors.New("update already in progress")
)

// ParameterError describes a rejected dx value.
type ParameterError struct {
	Value    float64
	Min, Max float64
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("dx %g outside [%g, %g]", e.Value, e.Min, e.Max)
}

func (e *ParameterError) Unwrap() error { return ErrInvalidParameter }

// ConfigError names the configuration field that failed validation.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config %s: %s", e.Field, e.Message)
}

func (e *ConfigError) Unwrap() error { return ErrInvalidConfiguration }
