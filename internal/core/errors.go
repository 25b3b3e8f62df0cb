package core

import (
	"errors"
	"fmt"
)

// ErrUnknownEcosystem is returned when no format is registered for an ecosystem.
var ErrUnknownEcosystem = errors.New("unknown ecosystem")

// ErrInvalidManifest is the sentinel wrapped by all validation failures.
var ErrInvalidManifest = errors.New("invalid manifest")

// ParseError wraps a format codec failure.
type ParseError struct {
	Ecosystem string
	Err       error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: parsing manifest: %v", e.Ecosystem, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ValidationError reports a single invalid manifest field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidManifest
}

// UnknownFeatureError is returned when a feature activation names something
// that is neither a declared feature nor a declared dependency.
type UnknownFeatureError struct {
	Name string
}

func (e *UnknownFeatureError) Error() string {
	return fmt.Sprintf("unknown feature or dependency: %s", e.Name)
}
