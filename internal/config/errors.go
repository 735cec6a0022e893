package config

import (
	"errors"
	"fmt"
)

// NotFoundMessage is the user-facing text of ConfigNotFoundError.
const NotFoundMessage = "No tryeach configuration found. Please see the README for configuration options"

// ConfigNotFoundError means no usable configuration source exists.
type ConfigNotFoundError struct {
	// Path is the explicit config path that does not exist, if one was given.
	Path string

	// Searched lists the candidate files that were probed.
	Searched []string
}

func (e *ConfigNotFoundError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s (config file %s does not exist)", NotFoundMessage, e.Path)
	}
	return NotFoundMessage
}

// InvalidConfigError means a configuration was found but cannot be used.
type InvalidConfigError struct {
	Path string
	Err  error
}

func (e *InvalidConfigError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("invalid configuration %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("invalid configuration: %v", e.Err)
}

func (e *InvalidConfigError) Unwrap() error {
	return e.Err
}

// IsNotFound returns true if err is a ConfigNotFoundError.
// Uses errors.As to handle wrapped errors.
func IsNotFound(err error) bool {
	var nf *ConfigNotFoundError
	return errors.As(err, &nf)
}

// IsInvalid returns true if err is an InvalidConfigError.
func IsInvalid(err error) bool {
	var ic *InvalidConfigError
	return errors.As(err, &ic)
}
