package types

import (
	"errors"
	"fmt"
)

type ErrorCode string

const (
	CodeValidation        ErrorCode = "validation_error"
	CodeInvalidTransition ErrorCode = "invalid_transition"
	CodeLockedAssessment  ErrorCode = "assessment_locked"
	CodeIncompleteData    ErrorCode = "incomplete_data"
	CodeNotReady          ErrorCode = "not_ready"
	CodeInProgress        ErrorCode = "in_progress"
	CodeRender            ErrorCode = "render_error"
	CodeNotFound          ErrorCode = "not_found"
)

// Error is an expected, typed outcome of an engine operation. Anything that
// is not an *Error is an infrastructure failure.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Code)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error carrying the same code, so the package sentinels
// work with errors.Is regardless of message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

var (
	ErrValidation        = &Error{Code: CodeValidation}
	ErrInvalidTransition = &Error{Code: CodeInvalidTransition}
	ErrLockedAssessment  = &Error{Code: CodeLockedAssessment}
	ErrIncompleteData    = &Error{Code: CodeIncompleteData}
	ErrNotReady          = &Error{Code: CodeNotReady}
	ErrInProgress        = &Error{Code: CodeInProgress}
	ErrRender            = &Error{Code: CodeRender}
	ErrNotFound          = &Error{Code: CodeNotFound}
)

// Store level sentinels, translated into *Error by the services.
var (
	ErrAssessmentNotFound = errors.New("assessment not found")
	ErrBuildingNotFound   = errors.New("building not found")
	ErrElementNotFound    = errors.New("element not found")
	ErrReportNotFound     = errors.New("report not found")
	ErrArtifactNotFound   = errors.New("artifact not found")
	ErrStatusConflict     = errors.New("assessment status changed concurrently")
	ErrNoEntries          = errors.New("assessment has no element condition entries")
	ErrAssessmentClosed   = errors.New("assessment is closed to changes")
)

func NewError(code ErrorCode, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

func WrapError(code ErrorCode, err error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Err: err}
}

// CodeOf returns the code of the first *Error in err's chain, or "" for
// infrastructure errors.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
