// Package otel provides OpenTelemetry span helpers shared by the registry packages.
package otel

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Attribute keys used on template registry spans.
const (
	AttrRepositoryURL   = attribute.Key("repository.url")
	AttrRepositoryCount = attribute.Key("repository.count")
	AttrTemplateCount   = attribute.Key("template.count")
	AttrProjectStyle    = attribute.Key("template.project_style")
	AttrCacheHit        = attribute.Key("cache.hit")
)

// StartSpan starts a new span if the tracer is non-nil, otherwise returns a
// no-op span. Ending the no-op span never ends a parent carried by ctx.
func StartSpan(
	ctx context.Context,
	tracer trace.Tracer,
	name string,
	opts ...trace.SpanStartOption,
) (context.Context, trace.Span) {
	if tracer == nil {
		return ctx, noop.Span{}
	}
	return tracer.Start(ctx, name, opts...)
}

// RecordError records err on span and marks the span as failed.
// Nil spans and nil errors are ignored.
func RecordError(span trace.Span, err error) {
	if err != nil && span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "operation failed")
	}
}
