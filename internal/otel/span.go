// Package otel provides OpenTelemetry span helpers shared by the readmesync packages.
package otel

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys recorded on sync spans.
const (
	AttrSyncID       = attribute.Key("readmesync.sync_id")
	AttrSourceRepo   = attribute.Key("readmesync.source.repository")
	AttrSourceBranch = attribute.Key("readmesync.source.branch")
	AttrTargetRepo   = attribute.Key("readmesync.target.repository")
	AttrStage        = attribute.Key("readmesync.stage")
	AttrReadmeBytes  = attribute.Key("readmesync.readme.bytes")
	AttrErrorKind    = attribute.Key("readmesync.error.kind")
)

// StartSpan starts a span on tracer, or returns the span already in ctx when tracer is nil.
func StartSpan(
	ctx context.Context,
	tracer trace.Tracer,
	name string,
	opts ...trace.SpanStartOption,
) (context.Context, trace.Span) {
	if tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return tracer.Start(ctx, name, opts...)
}

// RecordError records err on span and marks it failed. Nil spans and errors are ignored.
// The status description stays generic so credentials in error text never reach span status.
func RecordError(span trace.Span, err error) {
	if err != nil && span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "operation failed")
	}
}
