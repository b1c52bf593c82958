// internal/workers/intent/resolve-intent/models.go
package resolveintent

import "encoding/json"

type Input struct {
	Query      string `json:"query"`
	SupplierID string `json:"supplierId,omitempty"`
}

type Output struct {
	Intent     string                 `json:"intent"`
	Parameters map[string]interface{} `json:"parameters"`
	Data       json.RawMessage        `json:"data"`
}
