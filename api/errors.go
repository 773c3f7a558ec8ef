// Package api
// Author: momentics <momentics@gmail.com>
//
// Common error types and error handling utilities for nioclient.

package api

import (
	"errors"
	"fmt"
)

// Common errors used across the library.
var (
	ErrNotConnected    = errors.New("connection not established")
	ErrClosed          = errors.New("connection is closed")
	ErrConnectFailed   = errors.New("connect failed")
	ErrSelectorClosed  = errors.New("selector is closed")
	ErrNotRegistered   = errors.New("descriptor not registered")
	ErrBufferOverflow  = errors.New("buffer overflow")
	ErrBufferUnderflow = errors.New("buffer underflow")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNotSupported    = errors.New("operation not supported")
)

// ErrorCode classifies failures by the phase of the connection lifecycle they occurred in.
type ErrorCode int

const (
	ErrCodeOK ErrorCode = iota
	ErrCodeSetup
	ErrCodeConnect
	ErrCodeRead
	ErrCodeWrite
	ErrCodePoll
	ErrCodeInternal
)

func (c ErrorCode) String() string {
	switch c {
	case ErrCodeOK:
		return "ok"
	case ErrCodeSetup:
		return "setup"
	case ErrCodeConnect:
		return "connect"
	case ErrCodeRead:
		return "read"
	case ErrCodeWrite:
		return "write"
	case ErrCodePoll:
		return "poll"
	default:
		return "internal"
	}
}

// Error represents a structured error with code, context and an optional cause.
type Error struct {
	Code    ErrorCode
	Message string
	Context map[string]any
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	if len(e.Context) == 0 {
		return msg
	}
	return fmt.Sprintf("%s (context: %+v)", msg, e.Context)
}

// Unwrap exposes the cause to errors.Is / errors.As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a new structured error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Context: make(map[string]any),
	}
}

// WrapError creates a structured error around cause.
func WrapError(code ErrorCode, message string, cause error) *Error {
	e := NewError(code, message)
	e.Cause = cause
	return e
}

// WithContext adds context information to the error.
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// CodeOf returns the ErrorCode carried by err, or ErrCodeInternal for foreign errors.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ErrCodeOK
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ErrCodeInternal
}
