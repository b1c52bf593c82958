// Package eweb is the eWeb REST API client. It implements intent.DataProvider.
package eweb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"eweb-intent/internal/common/config"
	commonhttp "eweb-intent/internal/common/http"
	"eweb-intent/internal/common/logger"
	"eweb-intent/internal/common/metrics"
	"eweb-intent/internal/intent"
)

const (
	EndpointSupplierStock = "/inventory/supplier-stock"
	EndpointSalesHistory  = "/sales/history"

	defaultTimeout  = 30 * time.Second
	maxResponseSize = 10 << 20
)

var (
	ErrSupplierRequired   = errors.New("a supplier_id is required")
	ErrIdentifierRequired = errors.New("at least one of sku, upc, or brand must be provided")
	ErrNonJSONResponse    = errors.New("eweb returned a non-JSON body")
)

// APIError is a non-2xx answer from eWeb.
type APIError struct {
	Endpoint string
	Status   int
	Body     string
}

func (e *APIError) Error() string {
	body := e.Body
	if len(body) > 256 {
		body = body[:256] + "..."
	}
	return fmt.Sprintf("eweb %s returned status %d: %s", e.Endpoint, e.Status, body)
}

func (e *APIError) StatusCode() int { return e.Status }

type Options struct {
	BaseURL   string
	APIKey    string
	AccountID string
	Timeout   time.Duration
	RateLimit float64
	RateBurst int
}

// OptionsFromConfig converts the eweb config section.
func OptionsFromConfig(cfg config.EWebConfig) Options {
	return Options{
		BaseURL:   cfg.BaseURL,
		APIKey:    cfg.APIKey,
		AccountID: cfg.AccountID,
		Timeout:   config.GetDuration(cfg.Timeout),
		RateLimit: cfg.RateLimit,
		RateBurst: cfg.RateBurst,
	}
}

type Client struct {
	baseURL    string
	apiKey     string
	accountID  string
	httpClient *commonhttp.Client
	logger     logger.Logger
}

var _ intent.DataProvider = (*Client)(nil)

func NewClient(opts Options, log logger.Logger) (*Client, error) {
	if opts.BaseURL == "" {
		return nil, errors.New("EWEB_BASE_URL must be provided")
	}
	if opts.APIKey == "" {
		return nil, errors.New("EWEB_API_KEY must be provided")
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}

	return &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		apiKey:     opts.APIKey,
		accountID:  opts.AccountID,
		httpClient: commonhttp.NewClient(opts.Timeout).WithRateLimit(opts.RateLimit, opts.RateBurst),
		logger:     log.With(map[string]interface{}{"component": "eweb-client"}),
	}, nil
}

// SupplierStock fetches one page of a supplier's stock, optionally filtered by brand.
func (c *Client) SupplierStock(ctx context.Context, req intent.StockRequest) (intent.Payload, error) {
	if req.SupplierID == "" {
		return nil, ErrSupplierRequired
	}
	return c.get(ctx, EndpointSupplierStock, stockParams(req))
}

// SalesHistory fetches sales for a SKU, UPC or brand within an optional window.
func (c *Client) SalesHistory(ctx context.Context, req intent.SalesRequest) (intent.Payload, error) {
	if req.SKU == "" && req.UPC == "" && req.Brand == "" {
		return nil, ErrIdentifierRequired
	}
	return c.get(ctx, EndpointSalesHistory, salesParams(req))
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values) (intent.Payload, error) {
	u := c.baseURL + endpoint
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "build request for %s", endpoint)
	}
	c.setHeaders(req)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.EWebRequestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.EWebRequests.WithLabelValues(endpoint, "error").Inc()
		return nil, errors.Wrapf(err, "eweb GET %s", endpoint)
	}
	defer resp.Body.Close()
	metrics.EWebRequests.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, errors.Wrapf(err, "read %s response", endpoint)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("eweb request failed", map[string]interface{}{
			"endpoint": endpoint,
			"status":   resp.StatusCode,
		})
		return nil, &APIError{Endpoint: endpoint, Status: resp.StatusCode, Body: string(body)}
	}

	if !json.Valid(body) {
		return nil, errors.Wrapf(ErrNonJSONResponse, "%s", endpoint)
	}

	c.logger.Debug("eweb request completed", map[string]interface{}{
		"endpoint":   endpoint,
		"status":     resp.StatusCode,
		"durationMs": time.Since(start).Milliseconds(),
	})
	return intent.Payload(body), nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	if c.accountID != "" {
		req.Header.Set("X-Account-ID", c.accountID)
	}
}

// stockParams renders the query string. Absent values are omitted.
func stockParams(req intent.StockRequest) url.Values {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PageSize < 1 {
		req.PageSize = 100
	}
	params := url.Values{}
	params.Set("supplierId", req.SupplierID)
	setIfPresent(params, "brand", req.Brand)
	params.Set("page", strconv.Itoa(req.Page))
	params.Set("pageSize", strconv.Itoa(req.PageSize))
	return params
}

func salesParams(req intent.SalesRequest) url.Values {
	params := url.Values{}
	setIfPresent(params, "sku", req.SKU)
	setIfPresent(params, "upc", req.UPC)
	setIfPresent(params, "brand", req.Brand)
	setIfPresent(params, "startDate", req.StartDate)
	setIfPresent(params, "endDate", req.EndDate)
	setIfPresent(params, "locationId", req.LocationID)
	return params
}

func setIfPresent(params url.Values, key, value string) {
	if value != "" {
		params.Set(key, value)
	}
}
