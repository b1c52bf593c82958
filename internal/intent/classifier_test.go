package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "eweb-intent/internal/common/errors"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		expected IntentKind
	}{
		{name: "inventory keyword", query: "check inventory for brand X", expected: SupplierStock},
		{name: "stock keyword", query: "Show ACME stock", expected: SupplierStock},
		{name: "upper case", query: "INVENTORY LEVELS", expected: SupplierStock},
		{name: "stock as substring", query: "when do we restock Nike", expected: SupplierStock},
		{name: "sales keyword", query: "Show TechCo sales last 2 weeks", expected: SalesHistory},
		{name: "singular sale", query: "Nike sale figures", expected: SalesHistory},
		{name: "sale as substring", query: "wholesale numbers for Puma", expected: SalesHistory},
		{name: "stock beats sale", query: "stock and sales for ACME", expected: SupplierStock},
		{name: "inventory beats sale", query: "Sales vs inventory", expected: SupplierStock},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, err := Classify(tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, kind)
		})
	}
}

func TestClassify_Unrecognized(t *testing.T) {
	for _, q := range []string{"hello world", "", "what is the weather", "purchase orders"} {
		t.Run(q, func(t *testing.T) {
			kind, err := Classify(q)
			require.Error(t, err)
			assert.Empty(t, kind)
			assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeUnrecognizedIntent))
			assert.Equal(t, "Unable to interpret the requested intent.", apperrors.Normalize(err).Message)
		})
	}
}

func TestClassify_Deterministic(t *testing.T) {
	q := "Stock and sale report for ACME"
	first, err1 := Classify(q)
	second, err2 := Classify(q)
	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.Equal(t, first, second)
}
