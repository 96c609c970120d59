package model

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"content-backend/internal/shared/response"
	"content-backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Store-level sentinels. Repositories return these; the service wraps them
// into a *PostError before they reach the handler.
var (
	ErrPostNotFound      = errors.New("post not found")
	ErrSlugAlreadyExists = errors.New("slug already exists")
	ErrDecode            = errors.New("unable to decode request")
)

// ErrorKind - one entry of the error taxonomy
type ErrorKind string

const (
	KindDecode     ErrorKind = "DECODE_ERROR"
	KindValidation ErrorKind = "VALIDATION_ERROR"
	KindConflict   ErrorKind = "CONFLICT"
	KindNotFound   ErrorKind = "NOT_FOUND"
	KindUpload     ErrorKind = "UPLOAD_ERROR"
	KindStore      ErrorKind = "STORE_ERROR"
)

var kindStatus = map[ErrorKind]int{
	KindDecode:     http.StatusBadRequest,
	KindValidation: http.StatusBadRequest,
	KindConflict:   http.StatusConflict,
	KindNotFound:   http.StatusNotFound,
	KindUpload:     http.StatusInternalServerError,
	KindStore:      http.StatusInternalServerError,
}

// PostError - base error of the post domain
type PostError struct {
	Kind    ErrorKind
	Message string   // human-readable, returned to the caller as-is
	Fields  []string // offending field names (validation only)
	Err     error
}

// Error implements error interface
func (e *PostError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

// Unwrap allows errors.Is against the store sentinels
func (e *PostError) Unwrap() error {
	return e.Err
}

// Status - HTTP status for this error kind
func (e *PostError) Status() int {
	if s, ok := kindStatus[e.Kind]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// ============================================
// CONSTRUCTORS
// ============================================

func NewDecodeError(err error) *PostError {
	msg := ErrDecode.Error()
	if err != nil {
		msg = fmt.Sprintf("%s: %v", msg, err)
	}
	return &PostError{Kind: KindDecode, Message: msg, Err: ErrDecode}
}

func NewValidationError(message string, fields ...string) *PostError {
	return &PostError{Kind: KindValidation, Message: message, Fields: fields}
}

// NewMissingFieldsError lists the required fields the caller left out.
func NewMissingFieldsError(fields []string) *PostError {
	return NewValidationError("missing required fields: "+strings.Join(fields, ", "), fields...)
}

// NewConflictError names the stored slug, and the caller's input too when
// normalization changed it.
func NewConflictError(requested, slug string) *PostError {
	msg := fmt.Sprintf("slug %q is already in use", slug)
	if requested = strings.TrimSpace(requested); requested != "" && requested != slug {
		msg = fmt.Sprintf("slug %q normalizes to %q, which is already in use", requested, slug)
	}
	return &PostError{
		Kind:    KindConflict,
		Message: msg,
		Err:     ErrSlugAlreadyExists,
	}
}

func NewNotFoundError() *PostError {
	return &PostError{Kind: KindNotFound, Message: "post not found", Err: ErrPostNotFound}
}

func NewUploadError(err error) *PostError {
	return &PostError{Kind: KindUpload, Message: fmt.Sprintf("media upload failed: %v", err), Err: err}
}

func NewStoreError(op string, err error) *PostError {
	return &PostError{Kind: KindStore, Message: fmt.Sprintf("failed to %s", op), Err: err}
}

// AsKind returns the kind of err, or "" if err is not a *PostError.
func AsKind(err error) ErrorKind {
	var pe *PostError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return ""
}

// HandlePostError writes err as a `{error: message}` body with the mapped
// status. It returns false when err is nil.
func HandlePostError(c *gin.Context, err error) bool {
	if err == nil {
		return false
	}

	var pe *PostError
	if !errors.As(err, &pe) {
		switch {
		case errors.Is(err, ErrPostNotFound):
			pe = NewNotFoundError()
		case errors.Is(err, ErrDecode):
			pe = NewDecodeError(nil)
		default:
			pe = NewStoreError("process request", err)
		}
	}

	status := pe.Status()
	if status >= http.StatusInternalServerError {
		logger.Error(fmt.Sprintf("[Handler] %s %s", c.Request.Method, c.Request.URL.Path), err)
	}

	response.Error(c, status, pe.Message)
	return true
}
