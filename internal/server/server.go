// Package server exposes the intent resolver over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"eweb-intent/internal/audit"
	"eweb-intent/internal/common/config"
	apperrors "eweb-intent/internal/common/errors"
	"eweb-intent/internal/common/logger"
	"eweb-intent/internal/common/validation"
	"eweb-intent/internal/intent"
	"eweb-intent/internal/models"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "requestId"
	maxBodyBytes    = 64 << 10
	readyTimeout    = 2 * time.Second
)

// Resolver is the part of intent.Resolver the HTTP layer needs.
type Resolver interface {
	Resolve(ctx context.Context, q intent.Query, defaults intent.Defaults) (*intent.IntentResult, error)
}

// ReadyCheck reports whether a dependency is usable.
type ReadyCheck func(ctx context.Context) error

type Dependencies struct {
	Resolver    Resolver
	Defaults    intent.Defaults
	Validator   *validation.Validator
	Recorder    audit.Recorder
	ReadyChecks map[string]ReadyCheck
	Metrics     http.Handler
	Logger      logger.Logger
}

type Server struct {
	router     *gin.Engine
	httpServer *http.Server
	deps       Dependencies
	logger     logger.Logger
}

func New(cfg config.ServerConfig, deps Dependencies) *Server {
	if !cfg.DevMode {
		gin.SetMode(gin.ReleaseMode)
	}
	if deps.Validator == nil {
		deps.Validator = validation.MustIntentRequestValidator()
	}
	if deps.Recorder == nil {
		deps.Recorder = audit.NopRecorder{}
	}
	if deps.Metrics == nil {
		deps.Metrics = promhttp.Handler()
	}
	if deps.Logger == nil {
		deps.Logger = logger.NewNoOpLogger()
	}

	s := &Server{
		router: gin.New(),
		deps:   deps,
		logger: deps.Logger.WithFields(map[string]interface{}{"component": "http"}),
	}
	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         cfg.Address,
		Handler:      s.router,
		ReadTimeout:  config.GetDuration(cfg.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.WriteTimeout),
	}
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(gin.Recovery(), s.requestID(), s.accessLog())

	s.router.POST("/intent", s.handleIntent)
	s.router.GET("/healthz", s.handleHealth)
	s.router.GET("/ready", s.handleReady)
	s.router.GET("/metrics", gin.WrapH(s.deps.Metrics))
}

// Handler returns the routed engine, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start blocks until the server stops. A graceful shutdown returns nil.
func (s *Server) Start() error {
	s.logger.Info("http server listening", map[string]interface{}{"address": s.httpServer.Addr})
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info("request handled", map[string]interface{}{
			"method":     c.Request.Method,
			"path":       c.FullPath(),
			"status":     c.Writer.Status(),
			"durationMs": time.Since(start).Milliseconds(),
			"requestId":  c.GetString(requestIDKey),
		})
	}
}

func (s *Server) handleIntent(c *gin.Context) {
	requestID := c.GetString(requestIDKey)

	body, err := readBody(c)
	if err != nil {
		s.writeError(c, apperrors.NewInvalidRequestError(err.Error()))
		return
	}

	result, err := s.deps.Validator.ValidateBytes(body)
	if err != nil {
		s.writeError(c, apperrors.NewInvalidRequestError("request body is not valid JSON"))
		return
	}
	if !result.Valid {
		s.writeError(c, apperrors.NewInvalidRequestError(result.Summary()))
		return
	}

	var req models.IntentRequest
	if err := json.Unmarshal(body, &req); err != nil {
		s.writeError(c, apperrors.NewInvalidRequestError(err.Error()))
		return
	}

	ctx := c.Request.Context()
	start := time.Now()
	res, err := s.deps.Resolver.Resolve(ctx, req.ToQuery(), s.deps.Defaults)
	s.record(ctx, audit.NewEntry(requestID, req.Query, res, err, time.Since(start)))

	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.NewIntentResponse(res))
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, models.HealthResponse{Status: "ok"})
}

func (s *Server) handleReady(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), readyTimeout)
	defer cancel()

	status := http.StatusOK
	resp := models.HealthResponse{Status: "ready", Checks: map[string]string{}}
	for name, check := range s.deps.ReadyChecks {
		if err := check(ctx); err != nil {
			resp.Checks[name] = err.Error()
			resp.Status = "unavailable"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[name] = "ok"
	}
	c.JSON(status, resp)
}

// record never fails the request; audit errors are only logged.
func (s *Server) record(ctx context.Context, e audit.Entry) {
	if err := s.deps.Recorder.Record(ctx, e); err != nil {
		s.logger.Warn("audit record failed", map[string]interface{}{
			"requestId": e.RequestID,
			"error":     err.Error(),
		})
	}
}

func (s *Server) writeError(c *gin.Context, err error) {
	stdErr := apperrors.Normalize(err)
	status := apperrors.HTTPStatus(stdErr)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", map[string]interface{}{
			"requestId": c.GetString(requestIDKey),
			"errorCode": string(stdErr.Code),
			"error":     stdErr.Error(),
		})
	}
	c.AbortWithStatusJSON(status, models.ErrorResponse{
		Error:     stdErr,
		RequestID: c.GetString(requestIDKey),
	})
}

func readBody(c *gin.Context) ([]byte, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)
	body, err := c.GetRawData()
	if err != nil {
		return nil, errors.New("request body could not be read")
	}
	return body, nil
}
