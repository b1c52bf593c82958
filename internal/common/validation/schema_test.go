package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntentRequestSchema(t *testing.T) {
	v := MustIntentRequestValidator()

	tests := []struct {
		name  string
		body  string
		valid bool
	}{
		{name: "query only", body: `{"query":"Show ACME stock"}`, valid: true},
		{name: "query with supplier override", body: `{"query":"Show ACME stock","supplier_id":"S9"}`, valid: true},
		{name: "null supplier", body: `{"query":"Show ACME stock","supplier_id":null}`, valid: true},
		{name: "missing query", body: `{"supplier_id":"S9"}`, valid: false},
		{name: "empty query left to the classifier", body: `{"query":""}`, valid: true},
		{name: "query wrong type", body: `{"query":42}`, valid: false},
		{name: "unknown field ignored", body: `{"query":"Show ACME stock","brand":"ACME"}`, valid: true},
		{name: "query too long", body: `{"query":"` + strings.Repeat("a", 1001) + `"}`, valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := v.ValidateBytes([]byte(tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.valid, result.Valid, result.Summary())
			if !tt.valid {
				assert.NotEmpty(t, result.Errors)
				assert.NotEmpty(t, result.Summary())
			}
		})
	}
}

func TestValidateInput_DecodedDocument(t *testing.T) {
	v := MustIntentRequestValidator()

	result, err := v.ValidateInput(map[string]interface{}{"query": "ACME sales"})
	require.NoError(t, err)
	assert.True(t, result.Valid)
}

func TestValidateBytes_MalformedJSON(t *testing.T) {
	v := MustIntentRequestValidator()

	_, err := v.ValidateBytes([]byte(`{"query":`))
	assert.Error(t, err)
}

func TestNewValidator_BadSchema(t *testing.T) {
	_, err := NewValidator(`{"type": 12}`)
	assert.Error(t, err)
}
