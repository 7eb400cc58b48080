package amd

import (
	"errors"
	"fmt"
)

var (
	ErrMalformedWrapper = errors.New("malformed module wrapper")
	ErrRoundTrip        = errors.New("emitted source does not round-trip")
)

// Assumption names the structural expectation a recognized wrapper violated.
type Assumption string

const (
	AssumeFactoryFunction   Assumption = "factory-function"
	AssumeDependencyLiteral Assumption = "dependency-literal"
	AssumeParameterName     Assumption = "parameter-name"
	AssumeAMDBranch         Assumption = "amd-branch"
)

// MalformedWrapperError is returned when a statement classified as AMD or UMD
// does not have the shape the rewrite needs.
type MalformedWrapperError struct {
	Pattern    Pattern
	Assumption Assumption
	Detail     string
}

func (e *MalformedWrapperError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("malformed %s wrapper: %s", e.Pattern, e.Assumption)
	}
	return fmt.Sprintf("malformed %s wrapper: %s: %s", e.Pattern, e.Assumption, e.Detail)
}

func (e *MalformedWrapperError) Unwrap() error {
	return ErrMalformedWrapper
}

func malformed(pattern Pattern, assumption Assumption, format string, args ...any) error {
	return &MalformedWrapperError{
		Pattern:    pattern,
		Assumption: assumption,
		Detail:     fmt.Sprintf(format, args...),
	}
}
