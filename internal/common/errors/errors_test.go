package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"unrecognized intent", NewUnrecognizedIntentError("hello"), http.StatusBadRequest},
		{"missing entity", NewMissingRequiredEntityError(FieldBrand), http.StatusBadRequest},
		{"invalid request", NewInvalidRequestError("bad json"), http.StatusBadRequest},
		{"upstream with status", NewUpstreamFailureError("SalesHistory", 503, stderrors.New("down")), http.StatusServiceUnavailable},
		{"upstream 404", NewUpstreamFailureError("SupplierStock", 404, stderrors.New("gone")), http.StatusNotFound},
		{"upstream without response", NewUpstreamFailureError("SupplierStock", 0, stderrors.New("dial")), http.StatusBadGateway},
		{"upstream odd status", NewUpstreamFailureError("SupplierStock", 302, stderrors.New("redirect")), http.StatusBadGateway},
		{"wrapped", fmt.Errorf("outer: %w", NewMissingRequiredEntityError(FieldSupplierID)), http.StatusBadRequest},
		{"foreign", stderrors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestStandardError_IsAndCode(t *testing.T) {
	err := fmt.Errorf("resolve: %w", NewMissingRequiredEntityError(FieldSupplierID))

	assert.True(t, stderrors.Is(err, &StandardError{Code: ErrCodeMissingRequiredEntity}))
	assert.False(t, stderrors.Is(err, &StandardError{Code: ErrCodeUpstreamFailure}))
	assert.True(t, HasCode(err, ErrCodeMissingRequiredEntity))
	assert.Equal(t, ErrCodeMissingRequiredEntity, CodeOf(err))
	assert.Equal(t, ErrCodeInternal, CodeOf(stderrors.New("x")))

	stdErr, ok := AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, FieldSupplierID, stdErr.Field())
	assert.Contains(t, stdErr.Message, "EWEB_DEFAULT_SUPPLIER_ID")
}

func TestUpstreamFailure_KeepsCause(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := NewUpstreamFailureError("SupplierStock", 0, cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, 0, err.UpstreamStatus())
	assert.Equal(t, "connection refused", err.Details)
	assert.Equal(t, "SupplierStock", err.Metadata["endpoint"])
}

func TestNormalize(t *testing.T) {
	orig := NewUnrecognizedIntentError("what")
	assert.Same(t, orig, Normalize(orig))

	n := Normalize(stderrors.New("boom"))
	assert.Equal(t, ErrCodeInternal, n.Code)
	assert.Equal(t, "boom", n.Details)
}

// ==========================
// BPMN conversion
// ==========================

func TestConvertToBPMNError(t *testing.T) {
	t.Run("missing entity carries the field", func(t *testing.T) {
		b := ConvertToBPMNError(NewMissingRequiredEntityError(FieldBrand))
		assert.Equal(t, string(ErrCodeMissingRequiredEntity), b.Code)
		assert.Equal(t, 0, b.Retries)
		assert.False(t, b.Retryable)

		vars := b.ToErrorVariables()
		assert.Equal(t, FieldBrand, vars["missingField"])
		assert.Equal(t, string(ErrCodeMissingRequiredEntity), vars["originalErrorCode"])
		assert.NotContains(t, vars, "upstreamStatus")
	})

	t.Run("upstream failure carries the status", func(t *testing.T) {
		b := ConvertToBPMNError(NewUpstreamFailureError("SalesHistory", 500, stderrors.New("oops")))
		vars := b.ToErrorVariables()
		assert.Equal(t, 500, vars["upstreamStatus"])
		assert.Equal(t, "oops", vars["errorDetails"])
	})
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "RESOLUTION", GetErrorCategory(ErrCodeUnrecognizedIntent))
	assert.Equal(t, "RESOLUTION", GetErrorCategory(ErrCodeMissingRequiredEntity))
	assert.Equal(t, "UPSTREAM", GetErrorCategory(ErrCodeUpstreamFailure))
	assert.Equal(t, "VALIDATION", GetErrorCategory(ErrCodeInvalidRequest))
	assert.Equal(t, "OTHER", GetErrorCategory(ErrCodeInternal))
}
