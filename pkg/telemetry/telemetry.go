// Package telemetry records dashboard API requests as OpenTelemetry spans
// and metrics. Without an SDK installed the global providers are no-ops.
package telemetry

import (
	"context"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/wgdashboard/wgdash/pkg/log"
)

const instrumentationName = "github.com/wgdashboard/wgdash"

// Recorder owns the request instruments.
type Recorder struct {
	tracer   trace.Tracer
	requests metric.Int64Counter
	duration metric.Float64Histogram
	failures metric.Int64Counter
}

// NewRecorder creates a recorder. Nil providers fall back to the globals.
func NewRecorder(mp metric.MeterProvider, tp trace.TracerProvider) *Recorder {
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	meter := mp.Meter(instrumentationName)

	requests, err := meter.Int64Counter("wgdash.api.requests",
		metric.WithDescription("Number of dashboard API requests"),
		metric.WithUnit("{request}"))
	if err != nil {
		debugf("counter: %v", err)
	}
	duration, err := meter.Float64Histogram("wgdash.api.request.duration",
		metric.WithDescription("Duration of dashboard API requests"),
		metric.WithUnit("ms"))
	if err != nil {
		debugf("histogram: %v", err)
	}
	failures, err := meter.Int64Counter("wgdash.api.failures",
		metric.WithDescription("Number of failed dashboard API requests"),
		metric.WithUnit("{request}"))
	if err != nil {
		debugf("counter: %v", err)
	}

	return &Recorder{
		tracer:   tp.Tracer(instrumentationName),
		requests: requests,
		duration: duration,
		failures: failures,
	}
}

// Request is an in-flight request started by StartRequest.
type Request struct {
	rec   *Recorder
	ctx   context.Context
	span  trace.Span
	start time.Time
	attrs []attribute.KeyValue
}

// StartRequest opens a client span for method and path. target is "origin"
// or "cross-server".
func (r *Recorder) StartRequest(ctx context.Context, method, path, target string) (context.Context, *Request) {
	attrs := []attribute.KeyValue{
		attribute.String("http.request.method", method),
		attribute.String("wgdash.api.path", path),
		attribute.String("wgdash.api.target", target),
	}
	ctx, span := r.tracer.Start(ctx, method+" "+path,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attrs...))
	return ctx, &Request{rec: r, ctx: ctx, span: span, start: time.Now(), attrs: attrs}
}

// End records the outcome. status is zero when no response was received.
func (q *Request) End(status int, err error) {
	attrs := append([]attribute.KeyValue{}, q.attrs...)
	if status != 0 {
		attrs = append(attrs, attribute.Int("http.response.status_code", status))
		q.span.SetAttributes(attribute.Int("http.response.status_code", status))
	}
	set := metric.WithAttributes(attrs...)

	if q.rec.requests != nil {
		q.rec.requests.Add(q.ctx, 1, set)
	}
	if q.rec.duration != nil {
		q.rec.duration.Record(q.ctx, float64(time.Since(q.start).Microseconds())/1000, set)
	}
	if err != nil {
		if q.rec.failures != nil {
			q.rec.failures.Add(q.ctx, 1, set)
		}
		q.span.RecordError(err)
		q.span.SetStatus(codes.Error, err.Error())
	}
	q.span.End()
}

func debugf(format string, args ...any) {
	if os.Getenv("WGDASH_TELEMETRY_DEBUG") != "" {
		log.Logf("[TELEMETRY] "+format, args...)
	}
}
