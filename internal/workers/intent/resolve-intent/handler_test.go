// internal/workers/intent/resolve-intent/handler_test.go
package resolveintent

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "eweb-intent/internal/common/errors"
	"eweb-intent/internal/common/logger"
	"eweb-intent/internal/intent"
)

// ==========================
// Test Helpers
// ==========================

type stubProvider struct {
	lastStock *intent.StockRequest
	lastSales *intent.SalesRequest
	err       error
}

func (s *stubProvider) SupplierStock(_ context.Context, req intent.StockRequest) (intent.Payload, error) {
	s.lastStock = &req
	return intent.Payload(`{"items":[{"sku":"ACME-1"}]}`), s.err
}

func (s *stubProvider) SalesHistory(_ context.Context, req intent.SalesRequest) (intent.Payload, error) {
	s.lastSales = &req
	return intent.Payload(`{"sales":[]}`), s.err
}

type upstreamErr struct{}

func (upstreamErr) Error() string   { return "eweb returned 500" }
func (upstreamErr) StatusCode() int { return 500 }

func createTestHandler(t *testing.T, provider intent.DataProvider, defaults intent.Defaults) *Handler {
	t.Helper()
	log := logger.NewTestLogger(t)
	now := time.Date(2024, time.May, 31, 0, 0, 0, 0, time.UTC)
	resolver := intent.NewResolver(provider, log, intent.WithClock(func() time.Time { return now }))

	cfg := LoadConfig()
	cfg.Defaults = defaults
	return NewHandler(cfg, resolver, log)
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_Success(t *testing.T) {
	tests := []struct {
		name           string
		input          *Input
		defaults       intent.Defaults
		expectedIntent string
		expectedParams map[string]interface{}
		expectedData   string
	}{
		{
			name:           "stock with default supplier",
			input:          &Input{Query: "Show ACME stock"},
			defaults:       intent.Defaults{DefaultSupplierID: "S1"},
			expectedIntent: "supplier_stock",
			expectedParams: map[string]interface{}{"supplier_id": "S1", "brand": "ACME"},
			expectedData:   `{"items":[{"sku":"ACME-1"}]}`,
		},
		{
			name:           "stock with supplier from process",
			input:          &Input{Query: "Show ACME stock", SupplierID: "S7"},
			defaults:       intent.Defaults{DefaultSupplierID: "S1"},
			expectedIntent: "supplier_stock",
			expectedParams: map[string]interface{}{"supplier_id": "S7", "brand": "ACME"},
			expectedData:   `{"items":[{"sku":"ACME-1"}]}`,
		},
		{
			name:           "sales with window",
			input:          &Input{Query: "Show TechCo sales last 2 weeks"},
			expectedIntent: "sales_history",
			expectedParams: map[string]interface{}{"brand": "TechCo", "start_date": "2024-05-17", "end_date": "2024-05-31"},
			expectedData:   `{"sales":[]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := createTestHandler(t, &stubProvider{}, tt.defaults)

			output, err := handler.Execute(context.Background(), tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expectedIntent, output.Intent)
			assert.Equal(t, tt.expectedParams, output.Parameters)
			assert.JSONEq(t, tt.expectedData, string(output.Data))

			// Output is what gets written back as process variables.
			raw, err := json.Marshal(output)
			require.NoError(t, err)
			assert.Contains(t, string(raw), `"intent":"`+tt.expectedIntent+`"`)
		})
	}
}

func TestHandler_Execute_Errors(t *testing.T) {
	tests := []struct {
		name         string
		input        *Input
		providerErr  error
		expectedCode apperrors.ErrorCode
		expectedVars map[string]interface{}
	}{
		{
			name:         "blank query",
			input:        &Input{Query: "   "},
			expectedCode: apperrors.ErrCodeUnrecognizedIntent,
		},
		{
			name:         "unrecognized",
			input:        &Input{Query: "what's the weather"},
			expectedCode: apperrors.ErrCodeUnrecognizedIntent,
		},
		{
			name:         "missing supplier",
			input:        &Input{Query: "Show ACME stock"},
			expectedCode: apperrors.ErrCodeMissingRequiredEntity,
			expectedVars: map[string]interface{}{"missingField": "supplier_id"},
		},
		{
			name:         "missing brand",
			input:        &Input{Query: "sales last week"},
			expectedCode: apperrors.ErrCodeMissingRequiredEntity,
			expectedVars: map[string]interface{}{"missingField": "brand"},
		},
		{
			name:         "upstream failure",
			input:        &Input{Query: "Nike sales"},
			providerErr:  upstreamErr{},
			expectedCode: apperrors.ErrCodeUpstreamFailure,
			expectedVars: map[string]interface{}{"upstreamStatus": 500},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := createTestHandler(t, &stubProvider{err: tt.providerErr}, intent.Defaults{})

			output, err := handler.Execute(context.Background(), tt.input)
			require.Error(t, err)
			assert.Nil(t, output)
			assert.Equal(t, tt.expectedCode, apperrors.CodeOf(err))

			bpmnErr := apperrors.ConvertToBPMNError(apperrors.Normalize(err))
			assert.Equal(t, string(tt.expectedCode), bpmnErr.Code)
			assert.Zero(t, bpmnErr.Retries)
			vars := bpmnErr.ToErrorVariables()
			for k, v := range tt.expectedVars {
				assert.Equal(t, v, vars[k], k)
			}
		})
	}
}

func TestHandler_Execute_PassesRequestToProvider(t *testing.T) {
	provider := &stubProvider{}
	handler := createTestHandler(t, provider, intent.Defaults{DefaultSupplierID: "S1"})

	_, err := handler.Execute(context.Background(), &Input{Query: "inventory for Puma"})
	require.NoError(t, err)
	require.NotNil(t, provider.lastStock)
	assert.Equal(t, intent.StockRequest{SupplierID: "S1", Brand: "Puma", Page: 1, PageSize: 100}, *provider.lastStock)
	assert.Nil(t, provider.lastSales)
}

func TestParseInput(t *testing.T) {
	input, err := parseInput(`{"query":"Show ACME stock","supplierId":"S3","processStarter":"demo"}`)
	require.NoError(t, err)
	assert.Equal(t, "Show ACME stock", input.Query)
	assert.Equal(t, "S3", input.SupplierID)

	_, err = parseInput(`{"query":`)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidRequest))

	var stdErr *apperrors.StandardError
	assert.True(t, errors.As(err, &stdErr))
}

func TestLoadConfig(t *testing.T) {
	cfg := LoadConfig()
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Empty(t, cfg.Defaults.DefaultSupplierID)
}
