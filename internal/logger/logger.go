package logger

import (
	"context"
	"os"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const serviceName = "stock-screener"

var (
	sugar          = zap.NewNop().Sugar()
	tracingEnabled bool
	tracer         trace.Tracer
	tracerProvider *sdktrace.TracerProvider
)

// Config holds logging configuration.
type Config struct {
	Level          string // debug, info, warn, error
	Format         string // json or console
	TracingEnabled bool
}

// ConfigFromEnv reads LOG_LEVEL, LOG_FORMAT and LOG_TRACING_ENABLED.
func ConfigFromEnv() Config {
	return Config{
		Level:          envOr("LOG_LEVEL", "info"),
		Format:         envOr("LOG_FORMAT", "console"),
		TracingEnabled: os.Getenv("LOG_TRACING_ENABLED") == "true",
	}
}

// Init builds the global logger and, when enabled, the stdout tracer.
func Init(cfg Config) error {
	level := zap.NewAtomicLevel()
	if err := level.UnmarshalText([]byte(strings.ToLower(cfg.Level))); err != nil {
		level.SetLevel(zapcore.InfoLevel)
	}

	var zc zap.Config
	if cfg.Format == "json" {
		zc = zap.NewProductionConfig()
	} else {
		zc = zap.NewDevelopmentConfig()
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	zc.Level = level
	zc.EncoderConfig.TimeKey = "time"
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	l, err := zc.Build(zap.AddCallerSkip(1))
	if err != nil {
		return err
	}
	sugar = l.Sugar()

	tracingEnabled = cfg.TracingEnabled
	if tracingEnabled {
		if err := initTracer(); err != nil {
			sugar.Warnw("tracer init failed, tracing disabled", "error", err)
			tracingEnabled = false
		}
	}
	return nil
}

func initTracer() error {
	exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		return err
	}
	res, err := resource.New(context.Background(),
		resource.WithAttributes(semconv.ServiceName(serviceName)),
	)
	if err != nil {
		return err
	}
	tracerProvider = sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tracerProvider)
	tracer = otel.Tracer(serviceName)
	return nil
}

// Shutdown flushes buffered logs and spans.
func Shutdown(ctx context.Context) error {
	_ = sugar.Sync()
	if tracerProvider != nil {
		return tracerProvider.Shutdown(ctx)
	}
	return nil
}

// StartSpan starts a span when tracing is enabled, otherwise it returns the
// span already in ctx.
func StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	if !tracingEnabled || tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return tracer.Start(ctx, name, opts...)
}

func withTrace(ctx context.Context, kv []any) []any {
	if ctx == nil {
		return kv
	}
	sc := trace.SpanFromContext(ctx).SpanContext()
	if !sc.IsValid() {
		return kv
	}
	return append([]any{"trace_id", sc.TraceID().String(), "span_id", sc.SpanID().String()}, kv...)
}

// Debug logs at debug level with alternating key/value pairs.
func Debug(ctx context.Context, msg string, kv ...any) { sugar.Debugw(msg, withTrace(ctx, kv)...) }

// Info logs at info level.
func Info(ctx context.Context, msg string, kv ...any) { sugar.Infow(msg, withTrace(ctx, kv)...) }

// Warn logs at warn level.
func Warn(ctx context.Context, msg string, kv ...any) { sugar.Warnw(msg, withTrace(ctx, kv)...) }

// Error logs at error level.
func Error(ctx context.Context, msg string, kv ...any) { sugar.Errorw(msg, withTrace(ctx, kv)...) }

// ErrorWithErr logs err and marks the current span as failed.
func ErrorWithErr(ctx context.Context, msg string, err error, kv ...any) {
	if span := trace.SpanFromContext(ctx); span.SpanContext().IsValid() {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	sugar.Errorw(msg, withTrace(ctx, append([]any{"error", err}, kv...))...)
}

// OperationTimer times an operation inside its own span.
type OperationTimer struct {
	ctx   context.Context
	span  trace.Span
	name  string
	start time.Time
}

// StartOperation starts a span named name and returns the derived context.
func StartOperation(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, *OperationTimer) {
	ctx, span := StartSpan(ctx, name, trace.WithAttributes(attrs...))
	return ctx, &OperationTimer{ctx: ctx, span: span, name: name, start: time.Now()}
}

// End closes the span and logs the duration at debug level.
func (o *OperationTimer) End(kv ...any) time.Duration {
	d := time.Since(o.start)
	Debug(o.ctx, o.name+" completed", append(kv, "duration", d)...)
	if tracingEnabled {
		o.span.End()
	}
	return d
}

// EndWithError closes the span, recording err when non-nil.
func (o *OperationTimer) EndWithError(err error, kv ...any) time.Duration {
	if err == nil {
		return o.End(kv...)
	}
	d := time.Since(o.start)
	ErrorWithErr(o.ctx, o.name+" failed", err, append(kv, "duration", d)...)
	if tracingEnabled {
		o.span.End()
	}
	return d
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
