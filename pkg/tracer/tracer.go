// Package tracer exposes the service tracer with a noop fallback, so
// instrumented code works the same whether or not tracing was initialized.
package tracer

import (
	"context"
	"sync"

	"github.com/cukaracha/hrspwr-sub000/pkg/otel"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

var (
	//nolint:gochecknoglobals // service-wide tracer is intentional
	defaultTracer trace.Tracer
	//nolint:gochecknoglobals // guards one-time initialization
	initOnce sync.Once
	//nolint:gochecknoglobals // init error surfaced to every caller
	errInit error
)

func InitTracer(serviceName string, cfg otel.Config) error {
	initOnce.Do(func() {
		cfg.ServiceName = serviceName
		t, err := otel.InitTracer(cfg)
		if err != nil {
			errInit = err
			return
		}
		defaultTracer = t
	})

	return errInit
}

func Start(ctx context.Context, spanName string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	if defaultTracer == nil {
		return noop.NewTracerProvider().Tracer("noop").Start(ctx, spanName, opts...)
	}
	return defaultTracer.Start(ctx, spanName, opts...)
}
