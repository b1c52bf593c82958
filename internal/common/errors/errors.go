// Package errors provides the error taxonomy shared by the intent resolver,
// the HTTP layer and the job worker.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeUnrecognizedIntent    ErrorCode = "UNRECOGNIZED_INTENT"
	ErrCodeMissingRequiredEntity ErrorCode = "MISSING_REQUIRED_ENTITY"
	ErrCodeUpstreamFailure       ErrorCode = "UPSTREAM_FAILURE"

	ErrCodeInvalidRequest ErrorCode = "INVALID_REQUEST"
	ErrCodeInternal       ErrorCode = "INTERNAL_ERROR"
)

// Field names reported by MISSING_REQUIRED_ENTITY.
const (
	FieldSupplierID = "supplier_id"
	FieldBrand      = "brand"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`

	cause error
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("StandardError[%s]: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// Is matches any StandardError carrying the same code.
func (e *StandardError) Is(target error) bool {
	t, ok := target.(*StandardError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Field returns the missing entity name for MISSING_REQUIRED_ENTITY errors.
func (e *StandardError) Field() string {
	if e.Metadata == nil {
		return ""
	}
	f, _ := e.Metadata["field"].(string)
	return f
}

// UpstreamStatus returns the HTTP status the data provider answered with, or 0.
func (e *StandardError) UpstreamStatus() int {
	if e.Metadata == nil {
		return 0
	}
	s, _ := e.Metadata["upstreamStatus"].(int)
	return s
}

// NewUnrecognizedIntentError is returned when no classification rule matches.
func NewUnrecognizedIntentError(query string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUnrecognizedIntent,
		Message:   "Unable to interpret the requested intent.",
		Details:   "rephrase the request to mention inventory, stock or sales",
		Retryable: false,
		Metadata:  map[string]interface{}{"query": query},
		Timestamp: time.Now().UTC(),
	}
}

// NewMissingRequiredEntityError is returned when the intent is known but a
// required entity could not be resolved from text, override or defaults.
func NewMissingRequiredEntityError(field string) *StandardError {
	var msg string
	switch field {
	case FieldSupplierID:
		msg = "Supplier ID is required for inventory queries. Set EWEB_DEFAULT_SUPPLIER_ID or provide one in the request."
	case FieldBrand:
		msg = "Unable to determine a brand or item for the sales query. Please specify a brand name."
	default:
		msg = fmt.Sprintf("Required entity %q is missing.", field)
	}
	return &StandardError{
		Code:      ErrCodeMissingRequiredEntity,
		Message:   msg,
		Details:   fmt.Sprintf("field: %s", field),
		Retryable: false,
		Metadata:  map[string]interface{}{"field": field},
		Timestamp: time.Now().UTC(),
	}
}

// NewUpstreamFailureError wraps a data provider failure. status is the
// upstream HTTP status, or 0 when the request never got a response.
func NewUpstreamFailureError(endpoint string, status int, err error) *StandardError {
	details := ""
	if err != nil {
		details = err.Error()
	}
	meta := map[string]interface{}{"endpoint": endpoint}
	if status != 0 {
		meta["upstreamStatus"] = status
	}
	return &StandardError{
		Code:      ErrCodeUpstreamFailure,
		Message:   fmt.Sprintf("Data provider call '%s' failed", endpoint),
		Details:   details,
		Retryable: false,
		Metadata:  meta,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func NewInvalidRequestError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidRequest,
		Message:   "Invalid request payload",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewInternalError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// AsStandardError extracts a StandardError from the chain.
func AsStandardError(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// Normalize always returns a StandardError, wrapping foreign errors as INTERNAL_ERROR.
func Normalize(err error) *StandardError {
	if stdErr, ok := AsStandardError(err); ok {
		return stdErr
	}
	return NewInternalError(err)
}

// HasCode reports whether err carries the given code anywhere in its chain.
func HasCode(err error, code ErrorCode) bool {
	stdErr, ok := AsStandardError(err)
	return ok && stdErr.Code == code
}

// CodeOf returns the code of err, or ErrCodeInternal for foreign errors.
func CodeOf(err error) ErrorCode {
	if stdErr, ok := AsStandardError(err); ok {
		return stdErr.Code
	}
	return ErrCodeInternal
}

// HTTPStatus maps an error to the status the serving layer answers with.
// Caller-input problems are 400. Upstream failures keep the provider's 4xx/5xx
// status and fall back to 502 when no response was received.
func HTTPStatus(err error) int {
	stdErr, ok := AsStandardError(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch stdErr.Code {
	case ErrCodeUnrecognizedIntent, ErrCodeMissingRequiredEntity, ErrCodeInvalidRequest:
		return http.StatusBadRequest
	case ErrCodeUpstreamFailure:
		if s := stdErr.UpstreamStatus(); s >= 400 && s <= 599 {
			return s
		}
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// ==========================
// BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	vars := map[string]interface{}{
		"originalErrorCode": string(stdErr.Code),
		"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
	}
	if f := stdErr.Field(); f != "" {
		vars["missingField"] = f
	}
	if s := stdErr.UpstreamStatus(); s != 0 {
		vars["upstreamStatus"] = s
	}

	return &BPMNError{
		Code:           string(stdErr.Code),
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        0,
		ErrorVariables: vars,
	}
}

func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "INTENT"), strings.Contains(codeStr, "ENTITY"):
		return "RESOLUTION"
	case strings.Contains(codeStr, "UPSTREAM"):
		return "UPSTREAM"
	case strings.Contains(codeStr, "INVALID"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
