// Package util provides utility functions and common error types.
package util

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the error taxonomy
var (
	ErrValidationFailed     = errors.New("validation failed")
	ErrParseFailed          = errors.New("parse failed")
	ErrUnimplemented        = errors.New("not implemented")
	ErrCollectionMembership = errors.New("invalid collection member")
	ErrTypeCoercion         = errors.New("type coercion failed")
	ErrCommandsExhausted    = errors.New("none of the commands passed succeeded")
	ErrNoConnector          = errors.New("connector not attached")
)

// ValidationError represents a field value that violates its domain constraint.
// Entity and Field are empty when the error comes from a multi-field check
// built with ValidationBuilder.
type ValidationError struct {
	Entity string
	Field  string
	Value  interface{}
	Errors []string
	Err    error
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	b.WriteString("validation failed")
	if e.Field != "" {
		b.WriteString(": ")
		if e.Entity != "" {
			b.WriteString(e.Entity + ".")
		}
		fmt.Fprintf(&b, "%s = %#v", e.Field, e.Value)
	}
	msgs := e.Errors
	if e.Err != nil {
		msgs = append(append([]string{}, msgs...), e.Err.Error())
	}
	switch len(msgs) {
	case 0:
	case 1:
		b.WriteString(": " + msgs[0])
	default:
		fmt.Fprintf(&b, ":\n  - %s", strings.Join(msgs, "\n  - "))
	}
	return b.String()
}

func (e *ValidationError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrValidationFailed, e.Err}
	}
	return []error{ErrValidationFailed}
}

// NewValidationError creates a validation error from messages
func NewValidationError(messages ...string) *ValidationError {
	return &ValidationError{Errors: messages}
}

// NewFieldError creates a validation error for a single field assignment.
// A cause that is itself a field error of a nested record keeps its value
// and gets the field path prefixed, e.g. "physical.mac". A bare message
// error is attached to the field.
func NewFieldError(entity, field string, value interface{}, cause error) *ValidationError {
	var ve *ValidationError
	if errors.As(cause, &ve) {
		if ve.Field == "" {
			return &ValidationError{Entity: entity, Field: field, Value: value, Errors: ve.Errors, Err: ve.Err}
		}
		return &ValidationError{
			Entity: entity,
			Field:  field + "." + ve.Field,
			Value:  ve.Value,
			Errors: ve.Errors,
			Err:    ve.Err,
		}
	}
	return &ValidationError{Entity: entity, Field: field, Value: value, Err: cause}
}

// ValidationBuilder helps accumulate validation errors
type ValidationBuilder struct {
	errors []string
}

// Add adds an error message if condition is false
func (v *ValidationBuilder) Add(condition bool, message string) *ValidationBuilder {
	if !condition {
		v.errors = append(v.errors, message)
	}
	return v
}

// AddError adds an error message unconditionally
func (v *ValidationBuilder) AddError(message string) *ValidationBuilder {
	v.errors = append(v.errors, message)
	return v
}

// AddErrorf adds a formatted error message
func (v *ValidationBuilder) AddErrorf(format string, args ...interface{}) *ValidationBuilder {
	v.errors = append(v.errors, fmt.Sprintf(format, args...))
	return v
}

// HasErrors returns true if there are validation errors
func (v *ValidationBuilder) HasErrors() bool {
	return len(v.errors) > 0
}

// Build returns the validation error or nil if no errors
func (v *ValidationBuilder) Build() error {
	if len(v.errors) == 0 {
		return nil
	}
	return &ValidationError{Errors: v.errors}
}

// ParseError is raised when a raw vendor payload lacks the expected structure.
// Payload always carries the offending raw data.
type ParseError struct {
	Parser  string
	Reason  string
	Payload interface{}
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s\ncould not retrieve data from: %v", e.Parser, e.Reason, e.Payload)
}

func (e *ParseError) Unwrap() error {
	return ErrParseFailed
}

// NewParseError creates a parse error
func NewParseError(parser, reason string, payload interface{}) *ParseError {
	return &ParseError{Parser: parser, Reason: reason, Payload: payload}
}

// UnimplementedError names a dispatch key with no registered implementation
type UnimplementedError struct {
	Kind string
	Key  string
}

func (e *UnimplementedError) Error() string {
	if e.Kind == "" {
		return fmt.Sprintf("%s: not implemented", e.Key)
	}
	return fmt.Sprintf("%s not implemented for %s", e.Kind, e.Key)
}

func (e *UnimplementedError) Unwrap() error {
	return ErrUnimplemented
}

// NewUnimplementedError creates an unimplemented error
func NewUnimplementedError(kind, key string) *UnimplementedError {
	return &UnimplementedError{Kind: kind, Key: key}
}

// CollectionMembershipError is raised when a value of the wrong kind is
// inserted into a collection.
type CollectionMembershipError struct {
	Kind  string
	Value interface{}
}

func (e *CollectionMembershipError) Error() string {
	return fmt.Sprintf("%v -> it is not a valid %s object", e.Value, e.Kind)
}

func (e *CollectionMembershipError) Unwrap() error {
	return ErrCollectionMembership
}

// TypeCoercionError carries the original error text of a failed unit conversion
type TypeCoercionError struct {
	Type  string
	Value interface{}
	Err   error
}

func (e *TypeCoercionError) Error() string {
	return fmt.Sprintf("cannot coerce %#v to %s: %v", e.Value, e.Type, e.Err)
}

func (e *TypeCoercionError) Unwrap() []error {
	return []error{ErrTypeCoercion, e.Err}
}

