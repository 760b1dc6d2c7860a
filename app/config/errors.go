package config

import (
	"errors"
	"fmt"
)

// ErrNotFound marks a configuration document (or an extends base) that could
// not be located. The HTTP layer maps it to a not-ready response.
var ErrNotFound = errors.New("configuration not found")

// ConfigError marks a document that exists but cannot be used: malformed
// YAML, missing required fields, or mutually exclusive filter rules.
type ConfigError struct {
	Document string
	Reason   string
}

func (e *ConfigError) Error() string {
	if e.Document == "" {
		return fmt.Sprintf("invalid configuration: %s", e.Reason)
	}
	return fmt.Sprintf("invalid configuration %q: %s", e.Document, e.Reason)
}

// IsConfigError reports whether err is (or wraps) a ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}
