// internal/models/intent.go
package models

import (
	apperrors "eweb-intent/internal/common/errors"
	"eweb-intent/internal/intent"
)

// IntentRequest is the body of POST /intent.
type IntentRequest struct {
	Query      string  `json:"query"`
	SupplierID *string `json:"supplier_id,omitempty"`
}

// ToQuery converts the wire request; a blank supplier id counts as absent.
func (r IntentRequest) ToQuery() intent.Query {
	q := intent.Query{Text: r.Query}
	if r.SupplierID != nil {
		q.SupplierIDOverride = *r.SupplierID
	}
	return q
}

type IntentResponse struct {
	Intent     string            `json:"intent"`
	Parameters intent.Parameters `json:"parameters"`
	Data       intent.Payload    `json:"data"`
}

func NewIntentResponse(res *intent.IntentResult) IntentResponse {
	return IntentResponse{
		Intent:     res.Intent.String(),
		Parameters: res.Parameters,
		Data:       res.Data,
	}
}

type ErrorResponse struct {
	Error     *apperrors.StandardError `json:"error"`
	RequestID string                   `json:"requestId,omitempty"`
}

type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}
