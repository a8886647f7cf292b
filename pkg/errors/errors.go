package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents different types of errors that can occur
type ErrorType string

const (
	ErrorTypeNetwork          ErrorType = "network"
	ErrorTypeRateLimit        ErrorType = "rate_limit"
	ErrorTypeServerError      ErrorType = "server_error"
	ErrorTypeDecode           ErrorType = "decode"
	ErrorTypeStatus           ErrorType = "status"
	ErrorTypeDomain           ErrorType = "domain"
	ErrorTypeAttemptsExceeded ErrorType = "attempts_exceeded"
	ErrorTypeBoundary         ErrorType = "boundary"
	ErrorTypeResume           ErrorType = "resume"
	ErrorTypeConfig           ErrorType = "config"
	ErrorTypeUnknown          ErrorType = "unknown"
)

// Stage names the part of a run an error came from.
type Stage string

const (
	StageBoundary Stage = "boundary search"
	StageFetch    Stage = "fetch"
	StageResume   Stage = "resume"
	StageLookup   Stage = "lookup"
	StageHeroes   Stage = "heroes"
	StageProcess  Stage = "process"
)

var (
	ErrAttemptsExceeded = errors.New("maximum number of attempts exceeded")
	ErrBoundaryNotFound = errors.New("first match of current patch not found")
	ErrNoDataset        = errors.New("no stored dataset")
)

// Error represents a failure with type and stage information
type Error struct {
	Type    ErrorType
	Stage   Stage
	Message string
	Code    int
	Err     error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s error", e.Type)
	if e.Stage != "" {
		msg = fmt.Sprintf("%s: %s", e.Stage, msg)
	}
	if e.Code != 0 {
		msg = fmt.Sprintf("%s (code %d)", msg, e.Code)
	}
	if e.Message != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Message)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an error of the given type
func New(t ErrorType, stage Stage, message string) *Error {
	return &Error{Type: t, Stage: stage, Message: message}
}

// Wrap creates an error of the given type around err
func Wrap(t ErrorType, stage Stage, err error, message string) *Error {
	return &Error{Type: t, Stage: stage, Message: message, Err: err}
}

// WithStage returns err tagged with stage if it is an *Error without one.
// Other errors are wrapped as unknown.
func WithStage(err error, stage Stage) error {
	if err == nil {
		return nil
	}
	var typed *Error
	if errors.As(err, &typed) {
		if typed.Stage == "" {
			copied := *typed
			copied.Stage = stage
			return &copied
		}
		return err
	}
	return &Error{Type: ErrorTypeUnknown, Stage: stage, Err: err}
}

// TypeOf returns the type of err, or ErrorTypeUnknown
func TypeOf(err error) ErrorType {
	var typed *Error
	if errors.As(err, &typed) {
		return typed.Type
	}
	return ErrorTypeUnknown
}

// StageOf returns the stage recorded on err, if any
func StageOf(err error) Stage {
	var typed *Error
	if errors.As(err, &typed) {
		return typed.Stage
	}
	return ""
}

// IsRetryable checks if an error type should be retried by a bounded caller
func IsRetryable(errorType ErrorType) bool {
	switch errorType {
	case ErrorTypeNetwork, ErrorTypeRateLimit, ErrorTypeServerError, ErrorTypeDecode, ErrorTypeStatus:
		return true
	default:
		return false
	}
}

// IsTransientStatusCode reports the statuses the transport cools down on forever
func IsTransientStatusCode(statusCode int) bool {
	return statusCode == 429 || statusCode == 503
}
