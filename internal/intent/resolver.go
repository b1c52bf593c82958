package intent

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	apperrors "eweb-intent/internal/common/errors"
	"eweb-intent/internal/common/logger"
)

// Observer is notified once per Resolve call. intent is empty when
// classification failed.
type Observer interface {
	ObserveResolution(ctx context.Context, intent string, err error, d time.Duration)
}

// Resolver classifies a query, extracts entities, assembles the call
// parameters and dispatches to the data provider. It is immutable after
// construction and safe for concurrent use.
type Resolver struct {
	provider DataProvider
	brands   BrandExtractor
	now      func() time.Time
	logger   logger.Logger
	tracer   trace.Tracer
	observer Observer
}

type Option func(*Resolver)

// WithBrandExtractor replaces the default pattern extractor.
func WithBrandExtractor(e BrandExtractor) Option {
	return func(r *Resolver) {
		if e != nil {
			r.brands = e
		}
	}
}

// WithClock pins the reference time used for time windows.
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) {
		if now != nil {
			r.now = now
		}
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(r *Resolver) {
		if t != nil {
			r.tracer = t
		}
	}
}

func WithObserver(o Observer) Option {
	return func(r *Resolver) { r.observer = o }
}

func NewResolver(provider DataProvider, log logger.Logger, opts ...Option) *Resolver {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	r := &Resolver{
		provider: provider,
		brands:   PatternBrandExtractor{},
		now:      func() time.Time { return time.Now().UTC() },
		logger:   log.WithFields(map[string]interface{}{"component": "intent-resolver"}),
		tracer:   noop.NewTracerProvider().Tracer("intent"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolution is an assembled, validated call that has not been dispatched yet.
type Resolution struct {
	Intent     IntentKind
	Entities   ExtractedEntities
	Parameters Parameters

	stock *StockRequest
	sales *SalesRequest
}

// Extract runs every entity extractor against the text.
func (r *Resolver) Extract(text string) ExtractedEntities {
	var ents ExtractedEntities
	if brand, ok := r.brands.ExtractBrand(text); ok {
		ents.Brand = brand
	}
	ents.TimeWindow = ExtractTimeWindow(text, r.now())
	return ents
}

// Assemble classifies the query and builds the validated parameter set. It
// performs no I/O.
func (r *Resolver) Assemble(q Query, defaults Defaults) (*Resolution, error) {
	kind, err := Classify(q.Text)
	if err != nil {
		return nil, err
	}
	return r.assemble(kind, q, defaults)
}

func (r *Resolver) assemble(kind IntentKind, q Query, defaults Defaults) (*Resolution, error) {
	ents := r.Extract(q.Text)
	res := &Resolution{Intent: kind, Entities: ents}

	switch kind {
	case SupplierStock:
		supplierID := q.SupplierIDOverride
		if supplierID == "" {
			supplierID = defaults.DefaultSupplierID
		}
		if supplierID == "" {
			return nil, apperrors.NewMissingRequiredEntityError(apperrors.FieldSupplierID)
		}
		res.Parameters = Parameters{
			"supplier_id": supplierID,
			"brand":       optional(ents.Brand),
		}
		res.stock = &StockRequest{
			SupplierID: supplierID,
			Brand:      ents.Brand,
			Page:       defaultStockPage,
			PageSize:   defaultStockPageSize,
		}

	case SalesHistory:
		if ents.Brand == "" {
			return nil, apperrors.NewMissingRequiredEntityError(apperrors.FieldBrand)
		}
		res.Parameters = Parameters{"brand": ents.Brand}
		res.sales = &SalesRequest{Brand: ents.Brand}
		if tw := ents.TimeWindow; tw != nil {
			res.Parameters["start_date"] = tw.StartDate
			res.Parameters["end_date"] = tw.EndDate
			res.sales.StartDate = tw.StartDate
			res.sales.EndDate = tw.EndDate
		}
	}

	return res, nil
}

// Dispatch sends an assembled resolution to the data provider. Provider
// errors come back as UPSTREAM_FAILURE with the provider status preserved.
func (r *Resolver) Dispatch(ctx context.Context, res *Resolution) (*IntentResult, error) {
	ctx, span := r.tracer.Start(ctx, "intent.dispatch",
		trace.WithAttributes(attribute.String("intent", res.Intent.String())))
	defer span.End()

	var (
		data Payload
		err  error
	)
	switch {
	case res.stock != nil:
		data, err = r.provider.SupplierStock(ctx, *res.stock)
	case res.sales != nil:
		data, err = r.provider.SalesHistory(ctx, *res.sales)
	default:
		err = errors.New("resolution has no dispatch target")
		span.RecordError(err)
		return nil, apperrors.NewInternalError(err)
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "data provider call failed")
		return nil, apperrors.NewUpstreamFailureError(res.Intent.String(), upstreamStatus(err), err)
	}

	return &IntentResult{
		Intent:     res.Intent,
		Parameters: res.Parameters,
		Data:       data,
	}, nil
}

// Resolve runs the whole pipeline for one query. Every failure is terminal.
func (r *Resolver) Resolve(ctx context.Context, q Query, defaults Defaults) (result *IntentResult, err error) {
	start := time.Now()
	ctx, span := r.tracer.Start(ctx, "intent.resolve")
	defer span.End()

	var kind IntentKind
	defer func() {
		if r.observer != nil {
			r.observer.ObserveResolution(ctx, kind.String(), err, time.Since(start))
		}
	}()

	notResolved := func(err error) {
		span.SetStatus(codes.Error, string(apperrors.CodeOf(err)))
		r.logger.Warn("query not resolved", map[string]interface{}{
			"query":     q.Text,
			"intent":    kind.String(),
			"errorCode": string(apperrors.CodeOf(err)),
		})
	}

	if kind, err = Classify(q.Text); err != nil {
		notResolved(err)
		return nil, err
	}
	span.SetAttributes(attribute.String("intent", kind.String()))

	res, err := r.assemble(kind, q, defaults)
	if err != nil {
		notResolved(err)
		return nil, err
	}

	result, err = r.Dispatch(ctx, res)
	if err != nil {
		span.SetStatus(codes.Error, string(apperrors.CodeOf(err)))
		r.logger.Error("data provider call failed", map[string]interface{}{
			"intent": kind.String(),
			"error":  err.Error(),
		})
		return nil, err
	}

	r.logger.Info("query resolved", map[string]interface{}{
		"intent":     kind.String(),
		"parameters": res.Parameters,
		"durationMs": time.Since(start).Milliseconds(),
	})
	return result, nil
}

func upstreamStatus(err error) int {
	var sc StatusCoder
	if errors.As(err, &sc) {
		return sc.StatusCode()
	}
	return 0
}

// optional renders an absent string as JSON null.
func optional(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
