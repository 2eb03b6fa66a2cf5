package neopersist

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// SpanName is the name of the span recorded for every statement.
const SpanName = "neopersist.run"

// TracedRunner records a client span around every statement of the wrapped runner.
type TracedRunner struct {
	next   DBRunner
	tracer trace.Tracer
	dbName string
}

// NewTracedRunner wraps next.
func NewTracedRunner(next DBRunner, tracer trace.Tracer, dbName string) *TracedRunner {
	return &TracedRunner{next: next, tracer: tracer, dbName: dbName}
}

func (t *TracedRunner) Run(ctx context.Context, query string, params map[string]any) (*neo4j.EagerResult, error) {
	ctx, span := t.tracer.Start(ctx, SpanName,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", "neo4j"),
			attribute.String("db.name", t.dbName),
			attribute.String("db.statement", query),
		))
	defer span.End()

	res, err := t.next.Run(ctx, query, params)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("db.neo4j.records", len(res.Records)))
	return res, nil
}
