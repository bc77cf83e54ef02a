package score

import (
	"errors"
	"fmt"
)

// Kind is a stable, greppable identifier of an engine error class.
type Kind string

const (
	KindConfig      Kind = "config_error"
	KindInput       Kind = "input_error"
	KindComputation Kind = "computation_error"
)

// ConfigError reports a malformed or out-of-range configuration field.
type ConfigError struct {
	Field   string
	Message string
}

// Error returns the error text prefixed with the offending field.
func (e *ConfigError) Error() string {
	return "config error: " + e.Field + ": " + e.Message
}

// Kind returns KindConfig.
func (e *ConfigError) Kind() Kind { return KindConfig }

// NewConfigError creates a ConfigError for field with a formatted message.
func NewConfigError(field, format string, args ...any) *ConfigError {
	return &ConfigError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// InputError reports an invalid bidder list.
type InputError struct {
	Field   string
	Message string
}

func (e *InputError) Error() string {
	return "input error: " + e.Field + ": " + e.Message
}

func (e *InputError) Kind() Kind { return KindInput }

// NewInputError creates an InputError for field with a formatted message.
func NewInputError(field, format string, args ...any) *InputError {
	return &InputError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// ComputationError reports that a valid configuration and bidder list still
// cannot produce a benchmark.
type ComputationError struct {
	Message string
}

func (e *ComputationError) Error() string {
	return "computation error: " + e.Message
}

func (e *ComputationError) Kind() Kind { return KindComputation }

// NewComputationError creates a ComputationError with a formatted message.
func NewComputationError(format string, args ...any) *ComputationError {
	return &ComputationError{Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of the first engine error in err's chain and
// whether one was found.
func KindOf(err error) (Kind, bool) {
	var kinded interface{ Kind() Kind }
	if errors.As(err, &kinded) {
		return kinded.Kind(), true
	}
	return "", false
}

// FieldOf returns the offending field of a ConfigError or InputError in err's chain.
func FieldOf(err error) string {
	var configErr *ConfigError
	if errors.As(err, &configErr) {
		return configErr.Field
	}
	var inputErr *InputError
	if errors.As(err, &inputErr) {
		return inputErr.Field
	}
	return ""
}
