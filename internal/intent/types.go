// Package intent resolves free-text inventory and sales requests into
// structured eWeb data provider calls.
package intent

import (
	"context"
	"encoding/json"
)

// IntentKind is the closed set of intents the resolver understands.
type IntentKind string

const (
	SupplierStock IntentKind = "supplier_stock"
	SalesHistory  IntentKind = "sales_history"
)

func (k IntentKind) String() string { return string(k) }

// DateLayout is the calendar date format of every time window bound.
const DateLayout = "2006-01-02"

// Query is one inbound request. SupplierIDOverride is empty when the caller
// supplied none.
type Query struct {
	Text               string
	SupplierIDOverride string
}

// Defaults are passed into every resolution explicitly.
type Defaults struct {
	DefaultSupplierID string
}

// TimeWindow is an inclusive reporting window. Both bounds are always set.
type TimeWindow struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// ExtractedEntities holds what the extractors found in the query text.
type ExtractedEntities struct {
	Brand      string      `json:"brand,omitempty"`
	TimeWindow *TimeWindow `json:"time_window,omitempty"`
}

// Parameters are the resolved call parameters, keyed by wire name.
type Parameters map[string]interface{}

// Payload is the data provider response, passed through untouched.
type Payload = json.RawMessage

// IntentResult is the outcome of a successful resolution.
type IntentResult struct {
	Intent     IntentKind `json:"intent"`
	Parameters Parameters `json:"parameters"`
	Data       Payload    `json:"data"`
}

// StockRequest mirrors the supplier stock endpoint.
type StockRequest struct {
	SupplierID string
	Brand      string
	Page       int
	PageSize   int
}

// SalesRequest mirrors the sales history endpoint. At least one of SKU, UPC
// or Brand must be set.
type SalesRequest struct {
	Brand      string
	SKU        string
	UPC        string
	StartDate  string
	EndDate    string
	LocationID string
}

// DataProvider is the collaborator that owns the network round trip,
// including any timeout, throttling or caching policy.
type DataProvider interface {
	SupplierStock(ctx context.Context, req StockRequest) (Payload, error)
	SalesHistory(ctx context.Context, req SalesRequest) (Payload, error)
}

// StatusCoder is implemented by provider errors that carry an HTTP status.
type StatusCoder interface {
	StatusCode() int
}

const (
	defaultStockPage     = 1
	defaultStockPageSize = 100
)
