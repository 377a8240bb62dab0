// Copyright (c) 2025 BVK Chaitanya

package rest

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failed network operation by what the caller may
// safely do next.
type ErrorKind int

const (
	// Transient failures (timeouts on read-only calls, 5xx on read-only
	// calls) are safe to retry.
	Transient ErrorKind = iota

	// Fatal failures are definite rejections. They are surfaced
	// immediately and never retried.
	Fatal

	// Ambiguous failures have an unknown outcome: the request may or may
	// not have been applied. The caller must resolve the outcome with a
	// status query by digest; blind resubmission is forbidden.
	Ambiguous
)

func (k ErrorKind) String() string {
	switch k {
	case Transient:
		return "transient"
	case Fatal:
		return "fatal"
	case Ambiguous:
		return "ambiguous"
	}
	return "unknown"
}

// Error wraps a failed operation with its retry classification.
type Error struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s error: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// StatusError is an error response from the venue API.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Code, e.Message)
}

// Venue API result codes.
const (
	CodeOK                  = 200
	CodeInvalidTx           = 21100
	CodeNonceConflict       = 21505
	CodeInsufficientBalance = 21602
	CodeUnauthorized        = 21403
)

func kindOf(err error) (ErrorKind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

// IsTransient reports whether err is classified as safe to retry.
func IsTransient(err error) bool {
	k, ok := kindOf(err)
	return ok && k == Transient
}

// IsAmbiguous reports whether err left the operation's outcome unknown.
func IsAmbiguous(err error) bool {
	k, ok := kindOf(err)
	return ok && k == Ambiguous
}

// IsFatal reports whether err is a definite rejection.
func IsFatal(err error) bool {
	k, ok := kindOf(err)
	return ok && k == Fatal
}

// IsNonceConflict reports whether err is a server-side stale-nonce
// rejection.
func IsNonceConflict(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == CodeNonceConflict
}
