// Package connerr defines the error taxonomy shared by the connector
// pipeline.
//
// Every error surfaced to the host is an *Error carrying a Code, a
// human-readable Message and a UserSafe flag. When UserSafe is set the
// Message may be shown verbatim to a non-admin user; the host recognises
// this by the UserSafePrefix at the start of Error(). Anything else should
// collapse to GenericMessage.
package connerr

import (
	"errors"
	"fmt"
	"strings"
)

// Code categorizes connector errors.
type Code string

const (
	// CodeEndpointUnreachable covers transport failures, timeouts and
	// non-success HTTP statuses.
	CodeEndpointUnreachable Code = "ENDPOINT_UNREACHABLE"

	// CodeMalformedResponse indicates the response body is not JSON.
	CodeMalformedResponse Code = "MALFORMED_RESPONSE"

	// CodeUnsupportedResultFormat indicates the JSON lacks head or results.
	CodeUnsupportedResultFormat Code = "UNSUPPORTED_RESULT_FORMAT"

	// CodeQueryPreparation wraps failures while templating the query.
	CodeQueryPreparation Code = "QUERY_PREPARATION_FAILURE"

	// CodeRowTranslation is a per-row conversion failure.
	CodeRowTranslation Code = "ROW_TRANSLATION_FAILURE"

	// CodeInvalidSchema indicates the declared schema text cannot be used.
	CodeInvalidSchema Code = "INVALID_SCHEMA"
)

// UserSafePrefix marks an error message as safe to display to end users.
const UserSafePrefix = "DS_USER:"

// GenericMessage is shown to users when an error is not user-safe.
const GenericMessage = "An unexpected error occurred while talking to the SPARQL endpoint."

// Error is the structured error type returned by the connector.
type Error struct {
	Code     Code
	Message  string
	UserSafe bool
	Cause    error
}

// Error implements the error interface. User-safe errors start with
// UserSafePrefix so the host can pass the text through unchanged.
func (e *Error) Error() string {
	var b strings.Builder
	if e.UserSafe {
		b.WriteString(UserSafePrefix)
	}
	b.WriteString(e.Message)
	if e.Cause != nil && !e.UserSafe {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}
	return b.String()
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error with the same code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// New creates an error without an underlying cause.
func New(code Code, message string, userSafe bool) *Error {
	return &Error{Code: code, Message: message, UserSafe: userSafe}
}

// Wrap creates an error wrapping cause.
func Wrap(code Code, message string, userSafe bool, cause error) *Error {
	return &Error{Code: code, Message: message, UserSafe: userSafe, Cause: cause}
}

// CodeOf returns the code of the first *Error in err's chain, or "" if none.
func CodeOf(err error) Code {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Code
	}
	return ""
}

// IsUserSafe reports whether err carries a message safe for end users.
func IsUserSafe(err error) bool {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.UserSafe
	}
	return false
}

// UserMessage returns the text the host should display for err.
func UserMessage(err error) string {
	var ce *Error
	if errors.As(err, &ce) && ce.UserSafe {
		return ce.Message
	}
	return GenericMessage
}

// Sentinels for errors.Is matching on code.
var (
	ErrEndpointUnreachable     = New(CodeEndpointUnreachable, "endpoint unreachable", false)
	ErrMalformedResponse       = New(CodeMalformedResponse, "malformed response", false)
	ErrUnsupportedResultFormat = New(CodeUnsupportedResultFormat, "unsupported result format", false)
	ErrQueryPreparation        = New(CodeQueryPreparation, "query preparation failed", false)
	ErrRowTranslation          = New(CodeRowTranslation, "row translation failed", false)
	ErrInvalidSchema           = New(CodeInvalidSchema, "invalid schema", false)
)
