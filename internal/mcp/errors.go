package mcp

import (
	"errors"
	"fmt"
	"strings"
)

// Cause tags an error envelope with the stage that rejected the invocation.
type Cause string

const (
	CauseUnknownCapability Cause = "unknown_capability"
	CauseInvalidArguments  Cause = "invalid_arguments"
	CauseExecutionFailed   Cause = "execution_failed"
)

// Coarse classes reported for execution failures.
const (
	ClassInternal     = "internal"
	ClassPanic        = "panic"
	ClassPrecondition = "precondition"
	ClassExternal     = "external"
	ClassEncoding     = "encoding"
)

// UnknownCapabilityError is returned when no capability is registered under (kind, name).
type UnknownCapabilityError struct {
	Kind Kind
	Name string
}

func (e *UnknownCapabilityError) Error() string {
	return fmt.Sprintf("unknown %s: %s", e.Kind, e.Name)
}

// DuplicateNameError is returned when (kind, name) is registered twice.
type DuplicateNameError struct {
	Kind Kind
	Name string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("%s %q already registered", e.Kind, e.Name)
}

// MissingParameterError reports an absent required parameter.
type MissingParameterError struct {
	Param string
}

func (e *MissingParameterError) Error() string {
	return fmt.Sprintf("missing required parameter %q", e.Param)
}

// TypeMismatchError reports a value that cannot be read as the declared type.
type TypeMismatchError struct {
	Param    string
	Expected ParamType
	Got      string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("parameter %q: expected %s, got %s", e.Param, e.Expected, e.Got)
}

// InvalidEnumValueError reports a value outside an enumerated set.
type InvalidEnumValueError struct {
	Param    string
	Value    string
	Accepted []string
}

func (e *InvalidEnumValueError) Error() string {
	return fmt.Sprintf("parameter %q: invalid value %q (accepted: %s)",
		e.Param, e.Value, strings.Join(e.Accepted, ", "))
}

// ExecutionError is a handler fault after classification.
type ExecutionError struct {
	Class   string
	Message string
	Err     error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("%s: %s", e.Class, e.Message)
}

func (e *ExecutionError) Unwrap() error { return e.Err }

// classifier is implemented by errors that know their own class, such as the
// image generation adapter's errors.
type classifier interface {
	ErrorClass() string
}

// Classify wraps a handler error in an ExecutionError. Errors exposing
// ErrorClass keep their class; everything else is internal.
func Classify(err error) *ExecutionError {
	if err == nil {
		return nil
	}
	var ee *ExecutionError
	if errors.As(err, &ee) {
		return ee
	}
	class := ClassInternal
	var c classifier
	if errors.As(err, &c) {
		class = c.ErrorClass()
	}
	return &ExecutionError{Class: class, Message: err.Error(), Err: err}
}

// IsValidationError reports whether err came from argument validation.
func IsValidationError(err error) bool {
	var (
		missing  *MissingParameterError
		mismatch *TypeMismatchError
		enum     *InvalidEnumValueError
	)
	return errors.As(err, &missing) || errors.As(err, &mismatch) || errors.As(err, &enum)
}
