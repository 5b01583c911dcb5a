package observability

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// StartSpan starts a new span from context
func StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return otel.Tracer(instrumentationName).Start(ctx, name, opts...)
}

// StartServiceSpan starts a span for service operations
func StartServiceSpan(ctx context.Context, service, operation string) (context.Context, trace.Span) {
	return StartSpan(ctx, fmt.Sprintf("%s.%s", service, operation),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("service.component", service),
			attribute.String("service.operation", operation),
		),
	)
}

// StartGatewaySpan starts a span for remote catalog calls
func StartGatewaySpan(ctx context.Context, operation string) (context.Context, trace.Span) {
	return StartSpan(ctx, fmt.Sprintf("artic.%s", operation),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("peer.service", "artic-api"),
			attribute.String("gateway.operation", operation),
		),
	)
}

// RecordError records an error on the span
func RecordError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// SetSuccess marks the span as successful
func SetSuccess(span trace.Span) {
	span.SetStatus(codes.Ok, "")
}

// TraceDB wraps sql.DB with tracing. It satisfies repository.DBTX, so it
// can be installed under every repository without changing them.
type TraceDB struct {
	db       *sql.DB
	dbSystem string
}

// NewTraceDB creates a traced database wrapper
func NewTraceDB(db *sql.DB, dbSystem string) *TraceDB {
	return &TraceDB{db: db, dbSystem: dbSystem}
}

// QueryContext executes a query with tracing
func (t *TraceDB) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	ctx, span := StartSpan(ctx, "DB Query",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", t.dbSystem),
			attribute.String("db.statement", truncateQuery(query)),
		),
	)
	defer span.End()

	start := time.Now()
	rows, err := t.db.QueryContext(ctx, query, args...)
	duration := time.Since(start)

	if err != nil {
		RecordError(span, err)
	} else {
		SetSuccess(span)
	}

	span.SetAttributes(attribute.Int64("db.query_duration_ms", duration.Milliseconds()))

	return rows, err
}

// ExecContext executes a statement with tracing
func (t *TraceDB) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	ctx, span := StartSpan(ctx, "DB Exec",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", t.dbSystem),
			attribute.String("db.statement", truncateQuery(query)),
		),
	)
	defer span.End()

	start := time.Now()
	result, err := t.db.ExecContext(ctx, query, args...)
	duration := time.Since(start)

	if err != nil {
		RecordError(span, err)
	} else {
		SetSuccess(span)
		if rowsAffected, raErr := result.RowsAffected(); raErr == nil {
			span.SetAttributes(attribute.Int64("db.rows_affected", rowsAffected))
		}
	}

	span.SetAttributes(attribute.Int64("db.query_duration_ms", duration.Milliseconds()))

	return result, err
}

// QueryRowContext executes a query that returns a single row with tracing
func (t *TraceDB) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	ctx, span := StartSpan(ctx, "DB QueryRow",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", t.dbSystem),
			attribute.String("db.statement", truncateQuery(query)),
		),
	)

	row := t.db.QueryRowContext(ctx, query, args...)
	span.End()
	return row
}

// DB returns the underlying database connection
func (t *TraceDB) DB() *sql.DB {
	return t.db
}

func truncateQuery(query string) string {
	if len(query) > 500 {
		return query[:500] + "..."
	}
	return query
}

// SearchMetrics holds the cache and gateway counters
type SearchMetrics struct {
	gatewayCalls    metric.Int64Counter
	cacheHits       metric.Int64Counter
	cacheMisses     metric.Int64Counter
	artworksSwept   metric.Int64Counter
	collectionSaves metric.Int64Counter
}

// NewSearchMetrics creates the search metric instruments
func NewSearchMetrics() (*SearchMetrics, error) {
	meter := otel.Meter(instrumentationName)

	gatewayCalls, err := meter.Int64Counter(
		"artsearch.gateway.calls",
		metric.WithDescription("Total number of remote catalog calls"),
		metric.WithUnit("{calls}"),
	)
	if err != nil {
		return nil, err
	}

	cacheHits, err := meter.Int64Counter(
		"artsearch.page.cache_hits",
		metric.WithDescription("Page requests served from the local cache"),
		metric.WithUnit("{requests}"),
	)
	if err != nil {
		return nil, err
	}

	cacheMisses, err := meter.Int64Counter(
		"artsearch.page.cache_misses",
		metric.WithDescription("Page requests that required a remote fetch"),
		metric.WithUnit("{requests}"),
	)
	if err != nil {
		return nil, err
	}

	artworksSwept, err := meter.Int64Counter(
		"artsearch.artworks.swept",
		metric.WithDescription("Unreferenced artwork rows removed by garbage collection"),
		metric.WithUnit("{rows}"),
	)
	if err != nil {
		return nil, err
	}

	collectionSaves, err := meter.Int64Counter(
		"artsearch.collections.saves",
		metric.WithDescription("Artworks saved into collections"),
		metric.WithUnit("{saves}"),
	)
	if err != nil {
		return nil, err
	}

	return &SearchMetrics{
		gatewayCalls:    gatewayCalls,
		cacheHits:       cacheHits,
		cacheMisses:     cacheMisses,
		artworksSwept:   artworksSwept,
		collectionSaves: collectionSaves,
	}, nil
}

// RecordGatewayCall records one remote catalog request
func (m *SearchMetrics) RecordGatewayCall(ctx context.Context, operation string, success bool) {
	m.gatewayCalls.Add(ctx, 1, metric.WithAttributes(
		attribute.String("gateway.operation", operation),
		attribute.Bool("success", success),
	))
}

// RecordPageLookup records whether a page request hit the local cache
func (m *SearchMetrics) RecordPageLookup(ctx context.Context, hit bool) {
	if hit {
		m.cacheHits.Add(ctx, 1)
	} else {
		m.cacheMisses.Add(ctx, 1)
	}
}

// RecordSweep records the outcome of a garbage collection pass
func (m *SearchMetrics) RecordSweep(ctx context.Context, removed int64) {
	m.artworksSwept.Add(ctx, removed)
}

// RecordCollectionSave records an artwork saved into a collection
func (m *SearchMetrics) RecordCollectionSave(ctx context.Context) {
	m.collectionSaves.Add(ctx, 1)
}
