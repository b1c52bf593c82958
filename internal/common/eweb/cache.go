package eweb

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/redis/go-redis/v9"

	"eweb-intent/internal/common/logger"
	"eweb-intent/internal/common/metrics"
	"eweb-intent/internal/intent"
)

const cacheKeyPrefix = "eweb:"

// CachedProvider stores eWeb payloads in Redis. Only provider responses are
// cached; failures are never stored. A Redis outage degrades to direct calls.
type CachedProvider struct {
	next   intent.DataProvider
	redis  redis.Cmdable
	ttl    time.Duration
	logger logger.Logger
}

var _ intent.DataProvider = (*CachedProvider)(nil)

func NewCachedProvider(next intent.DataProvider, rdb redis.Cmdable, ttl time.Duration, log logger.Logger) *CachedProvider {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &CachedProvider{
		next:   next,
		redis:  rdb,
		ttl:    ttl,
		logger: log.With(map[string]interface{}{"component": "eweb-cache"}),
	}
}

func (p *CachedProvider) SupplierStock(ctx context.Context, req intent.StockRequest) (intent.Payload, error) {
	key := cacheKey(EndpointSupplierStock, stockParams(req))
	return p.fetch(ctx, key, func() (intent.Payload, error) {
		return p.next.SupplierStock(ctx, req)
	})
}

func (p *CachedProvider) SalesHistory(ctx context.Context, req intent.SalesRequest) (intent.Payload, error) {
	key := cacheKey(EndpointSalesHistory, salesParams(req))
	return p.fetch(ctx, key, func() (intent.Payload, error) {
		return p.next.SalesHistory(ctx, req)
	})
}

func (p *CachedProvider) fetch(ctx context.Context, key string, call func() (intent.Payload, error)) (intent.Payload, error) {
	cached, err := p.redis.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		metrics.EWebCacheLookups.WithLabelValues("hit").Inc()
		return intent.Payload(cached), nil
	case errors.Is(err, redis.Nil):
		metrics.EWebCacheLookups.WithLabelValues("miss").Inc()
	default:
		metrics.EWebCacheLookups.WithLabelValues("error").Inc()
		p.logger.Warn("cache read failed, calling eweb directly", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
		return call()
	}

	payload, err := call()
	if err != nil {
		return nil, err
	}

	if err := p.redis.Set(ctx, key, []byte(payload), p.ttl).Err(); err != nil {
		p.logger.Warn("cache write failed", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	}
	return payload, nil
}

// cacheKey is stable for equal requests: url.Values encodes keys in sorted order.
func cacheKey(endpoint string, params url.Values) string {
	return cacheKeyPrefix + endpoint + "?" + params.Encode()
}
