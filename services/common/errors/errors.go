package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Kind classifies an application error for the HTTP boundary.
type Kind string

const (
	KindValidation Kind = "validation_error"
	KindUpstream   Kind = "upstream_error"
	KindSession    Kind = "session_error"
	KindInternal   Kind = "internal_error"
)

// Error represents an application error
type Error struct {
	Code    int            `json:"-"`
	Kind    Kind           `json:"code"`
	Message string         `json:"error"`
	Details map[string]any `json:"details,omitempty"`
	Err     error          `json:"-"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *Error) Unwrap() error {
	return e.Err
}

// JSON returns the error as a JSON string
func (e *Error) JSON() string {
	b, _ := json.Marshal(e)
	return string(b)
}

// New creates a new Error
func New(code int, kind Kind, message string, err error) *Error {
	return &Error{
		Code:    code,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// Validation reports bad or missing client input.
func Validation(message string) *Error {
	return New(http.StatusBadRequest, KindValidation, message, nil)
}

// Upstream reports a failed call to an external dependency. Details must
// already be sanitized by the caller.
func Upstream(message string, err error, details map[string]any) *Error {
	e := New(http.StatusInternalServerError, KindUpstream, message, err)
	e.Details = details
	return e
}

// Session reports a failure to persist or destroy session state.
func Session(message string, err error) *Error {
	return New(http.StatusInternalServerError, KindSession, message, err)
}

// Internal wraps an unexpected failure.
func Internal(err error) *Error {
	return New(http.StatusInternalServerError, KindInternal, "Internal server error", err)
}

// As extracts an *Error from err, falling back to an internal error.
func As(err error) *Error {
	var appErr *Error
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return Internal(err)
}

// Respond writes err as a JSON body with its HTTP status.
func Respond(c *gin.Context, err error) {
	appErr := As(err)
	c.JSON(appErr.Code, appErr)
}
