// Package audit keeps a per-request record of resolved queries.
package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	apperrors "eweb-intent/internal/common/errors"
	"eweb-intent/internal/common/logger"
	"eweb-intent/internal/common/metrics"
	"eweb-intent/internal/intent"
)

type Entry struct {
	RequestID  string
	Query      string
	Intent     string
	Parameters intent.Parameters
	Outcome    string
	ErrorCode  string
	Duration   time.Duration
}

// NewEntry summarises one resolution. result is nil when err is set, in which
// case the intent is reclassified from the query when possible.
func NewEntry(requestID, query string, result *intent.IntentResult, err error, d time.Duration) Entry {
	e := Entry{
		RequestID: requestID,
		Query:     query,
		Outcome:   metrics.OutcomeSuccess,
		Duration:  d,
	}
	if result != nil {
		e.Intent = result.Intent.String()
		e.Parameters = result.Parameters
	} else if kind, cerr := intent.Classify(query); cerr == nil {
		e.Intent = kind.String()
	}
	if err != nil {
		e.Outcome = metrics.OutcomeFailure
		e.ErrorCode = string(apperrors.CodeOf(err))
	}
	return e
}

type Recorder interface {
	Record(ctx context.Context, e Entry) error
}

// NopRecorder discards entries.
type NopRecorder struct{}

func (NopRecorder) Record(context.Context, Entry) error { return nil }

const createTableSQL = `
CREATE TABLE IF NOT EXISTS intent_audit (
	id          UUID PRIMARY KEY,
	request_id  TEXT NOT NULL,
	query       TEXT NOT NULL,
	intent      TEXT,
	parameters  JSONB,
	outcome     TEXT NOT NULL,
	error_code  TEXT,
	duration_ms BIGINT NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL
)`

const insertSQL = `
INSERT INTO intent_audit (
	id, request_id, query, intent, parameters, outcome, error_code, duration_ms, created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

type PostgresRecorder struct {
	db     *sql.DB
	logger logger.Logger
	now    func() time.Time
}

func NewPostgresRecorder(db *sql.DB, log logger.Logger) *PostgresRecorder {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &PostgresRecorder{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"component": "audit"}),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// EnsureSchema creates the audit table when it does not exist yet.
func (r *PostgresRecorder) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createTableSQL); err != nil {
		return fmt.Errorf("create intent_audit table: %w", err)
	}
	return nil
}

func (r *PostgresRecorder) Record(ctx context.Context, e Entry) error {
	var params interface{}
	if e.Parameters != nil {
		raw, err := json.Marshal(e.Parameters)
		if err != nil {
			return fmt.Errorf("marshal audit parameters: %w", err)
		}
		params = raw
	}

	id := uuid.New().String()
	_, err := r.db.ExecContext(ctx, insertSQL,
		id,
		e.RequestID,
		e.Query,
		nullable(e.Intent),
		params,
		e.Outcome,
		nullable(e.ErrorCode),
		e.Duration.Milliseconds(),
		r.now(),
	)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}

	r.logger.Debug("audit entry recorded", map[string]interface{}{
		"auditId":   id,
		"requestId": e.RequestID,
		"outcome":   e.Outcome,
	})
	return nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
