package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTracingConfig configures query span enrichment.
type DBTracingConfig struct {
	Enabled         bool
	LogFullSQL      bool          // record SQL parameters in spans; keep off outside dev
	SlowQueryThresh time.Duration // queries above this get a slow_query event
	DBSystem        string
}

// DefaultDBTracingConfig returns the secure defaults: tracing off,
// parameters redacted, 200ms slow-query threshold.
func DefaultDBTracingConfig() DBTracingConfig {
	return DBTracingConfig{
		SlowQueryThresh: 200 * time.Millisecond,
		DBSystem:        "postgresql",
	}
}

// DBTracingPlugin is a gorm.Plugin that layers slow-query detection
// and error marking on top of otelgorm spans.
type DBTracingPlugin struct {
	config DBTracingConfig
	logger *zap.Logger
}

func NewDBTracingPlugin(cfg DBTracingConfig, logger *zap.Logger) *DBTracingPlugin {
	if cfg.SlowQueryThresh <= 0 {
		cfg.SlowQueryThresh = 200 * time.Millisecond
	}
	if cfg.DBSystem == "" {
		cfg.DBSystem = "postgresql"
	}
	return &DBTracingPlugin{config: cfg, logger: logger}
}

func (p *DBTracingPlugin) Name() string { return "db_tracing" }

// Initialize registers otelgorm plus timing callbacks around every
// statement type. Registered via db.Use.
func (p *DBTracingPlugin) Initialize(db *gorm.DB) error {
	if !p.config.Enabled {
		return nil
	}

	opts := []otelgorm.Option{otelgorm.WithDBName(p.config.DBSystem)}
	if !p.config.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := otelgorm.NewPlugin(opts...).Initialize(db); err != nil {
		return err
	}

	if err := p.registerCallbacks(db); err != nil {
		return err
	}

	p.logger.Info("Database tracing enabled",
		zap.Bool("log_full_sql", p.config.LogFullSQL),
		zap.Duration("slow_query_threshold", p.config.SlowQueryThresh),
	)
	return nil
}

func (p *DBTracingPlugin) registerCallbacks(db *gorm.DB) error {
	cb := db.Callback()
	return firstErr(
		cb.Create().Before("gorm:create").Register("trace_timing:create", markStart),
		cb.Query().Before("gorm:query").Register("trace_timing:query", markStart),
		cb.Update().Before("gorm:update").Register("trace_timing:update", markStart),
		cb.Delete().Before("gorm:delete").Register("trace_timing:delete", markStart),
		cb.Row().Before("gorm:row").Register("trace_timing:row", markStart),
		cb.Raw().Before("gorm:raw").Register("trace_timing:raw", markStart),
		cb.Create().After("gorm:create").Register("trace_enrich:create", p.enrichSpan),
		cb.Query().After("gorm:query").Register("trace_enrich:query", p.enrichSpan),
		cb.Update().After("gorm:update").Register("trace_enrich:update", p.enrichSpan),
		cb.Delete().After("gorm:delete").Register("trace_enrich:delete", p.enrichSpan),
		cb.Row().After("gorm:row").Register("trace_enrich:row", p.enrichSpan),
		cb.Raw().After("gorm:raw").Register("trace_enrich:raw", p.enrichSpan),
	)
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

type contextKey string

const queryStartKey contextKey = "query_start"

func markStart(db *gorm.DB) {
	if db.Statement.Context != nil {
		db.Statement.Context = context.WithValue(db.Statement.Context, queryStartKey, time.Now())
	}
}

// enrichSpan runs after each statement. ErrRecordNotFound is a normal
// outcome and never marks the span as failed.
func (p *DBTracingPlugin) enrichSpan(db *gorm.DB) {
	ctx := db.Statement.Context
	if ctx == nil {
		return
	}

	span := trace.SpanFromContext(ctx)
	if span == nil || !span.IsRecording() {
		return
	}

	if db.Statement.RowsAffected >= 0 {
		span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))
	}
	if db.Statement.Table != "" {
		span.SetAttributes(attribute.String("db.sql.table", db.Statement.Table))
	}

	if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) {
		span.SetStatus(codes.Error, db.Error.Error())
		span.RecordError(db.Error)
	}

	start, ok := ctx.Value(queryStartKey).(time.Time)
	if !ok {
		return
	}
	if elapsed := time.Since(start); elapsed > p.config.SlowQueryThresh {
		span.SetAttributes(
			attribute.Bool("db.slow_query", true),
			attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
		)
		span.AddEvent("slow_query_warning", trace.WithAttributes(
			attribute.Int64("duration_ms", elapsed.Milliseconds()),
			attribute.Int64("threshold_ms", p.config.SlowQueryThresh.Milliseconds()),
		))
	}
}
