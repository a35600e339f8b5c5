package types

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidAction is returned when an agent produces an action outside [0, ActionCount)
	ErrInvalidAction = errors.New("invalid action")
	// ErrInvalidState is returned when the environment reports a state outside [0, stateCount)
	ErrInvalidState = errors.New("invalid state")
)

// ConfigurationError reports an unrecognized selector or an invalid setting.
// It is fatal at construction time.
type ConfigurationError struct {
	Field string
	Value string
	Err   error
}

func (c *ConfigurationError) Error() string {
	if c.Err != nil {
		return fmt.Sprintf("invalid configuration %s=%q: %v", c.Field, c.Value, c.Err)
	}
	return fmt.Sprintf("invalid configuration %s=%q", c.Field, c.Value)
}

func (c *ConfigurationError) Unwrap() error {
	return c.Err
}

// NewConfigurationError creates a ConfigurationError for the field and value
func NewConfigurationError(field, value string) *ConfigurationError {
	return &ConfigurationError{Field: field, Value: value}
}
