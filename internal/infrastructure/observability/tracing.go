package observability

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "alfred-api/http"

// GetTracer returns the tracer for the HTTP layer.
func GetTracer() trace.Tracer {
	return otel.Tracer(tracerName)
}

// RequestAttributes returns common attributes for HTTP request spans.
func RequestAttributes(method, route, requestID string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("http.method", method),
		attribute.String("http.route", route),
		attribute.String("request.id", requestID),
	}
}

// RecordError records an error on a span.
func RecordError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
