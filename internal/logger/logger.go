// Package logger is the structured logging facade: slog output with
// OpenTelemetry trace and span ids attached when a span is active.
package logger

import (
	"context"
	"log/slog"
	"os"
	"runtime"
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
)

const serviceName = "quant-sentinel"

var (
	globalLogger    *slog.Logger
	detailedLogging bool
	tracingEnabled  bool
	tracer          trace.Tracer
	tracerProvider  *sdktrace.TracerProvider
)

// LogConfig holds logging configuration.
type LogConfig struct {
	Level           string // DEBUG, INFO, WARN, ERROR
	Format          string // json or text
	DetailedLogging bool
	TracingEnabled  bool
}

// Init configures logging from LOG_LEVEL, LOG_FORMAT, LOG_DETAILED and LOG_TRACING_ENABLED.
func Init() error {
	return InitWithConfig(LoadConfigFromEnv())
}

// LoadConfigFromEnv reads the logging configuration from the environment.
func LoadConfigFromEnv() LogConfig {
	return LogConfig{
		Level:           getEnvOrDefault("LOG_LEVEL", "INFO"),
		Format:          getEnvOrDefault("LOG_FORMAT", "json"),
		DetailedLogging: getEnvOrDefault("LOG_DETAILED", "false") == "true",
		TracingEnabled:  getEnvOrDefault("LOG_TRACING_ENABLED", "false") == "true",
	}
}

// InitWithConfig installs the global logger and, if enabled, the tracer.
func InitWithConfig(config LogConfig) error {
	level := parseLogLevel(config.Level)
	detailedLogging = config.DetailedLogging
	if detailedLogging {
		level = slog.LevelDebug
	}
	tracingEnabled = config.TracingEnabled

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if config.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	globalLogger = slog.New(handler)
	slog.SetDefault(globalLogger)

	if tracingEnabled {
		if err := initTracer(); err != nil {
			globalLogger.Warn("tracer init failed, tracing disabled", "error", err)
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
	res, err := resource.New(
		context.Background(),
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion("1.0.0"),
		),
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

// Shutdown flushes pending spans.
func Shutdown(ctx context.Context) error {
	if tracerProvider != nil {
		return tracerProvider.Shutdown(ctx)
	}
	return nil
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// StartSpan starts a span when tracing is enabled; otherwise it returns ctx unchanged.
func StartSpan(ctx context.Context, spanName string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	if !tracingEnabled || tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return tracer.Start(ctx, spanName, opts...)
}

func traceAttrs(ctx context.Context) []any {
	if !tracingEnabled {
		return nil
	}
	sc := trace.SpanFromContext(ctx).SpanContext()
	if !sc.IsValid() {
		return nil
	}
	return []any{"trace_id", sc.TraceID().String(), "span_id", sc.SpanID().String()}
}

func Debug(ctx context.Context, msg string, args ...any) {
	if !detailedLogging {
		return
	}
	logWithTrace(ctx, slog.LevelDebug, msg, args...)
}

func Info(ctx context.Context, msg string, args ...any) {
	logWithTrace(ctx, slog.LevelInfo, msg, args...)
}

func Warn(ctx context.Context, msg string, args ...any) {
	logWithTrace(ctx, slog.LevelWarn, msg, args...)
}

func Error(ctx context.Context, msg string, args ...any) {
	logWithTrace(ctx, slog.LevelError, msg, args...)
}

// ErrorWithErr logs err and records it on the active span.
func ErrorWithErr(ctx context.Context, msg string, err error, args ...any) {
	if tracingEnabled {
		span := trace.SpanFromContext(ctx)
		if span.SpanContext().IsValid() {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}
	logWithTrace(ctx, slog.LevelError, msg, append([]any{"error", err}, args...)...)
}

// Signal logs an emitted trading signal and adds it as a span event.
func Signal(ctx context.Context, kind, symbol, side string, price float64, args ...any) {
	if tracingEnabled {
		span := trace.SpanFromContext(ctx)
		if span.SpanContext().IsValid() {
			span.AddEvent("signal_emitted", trace.WithAttributes(
				attribute.String("kind", kind),
				attribute.String("symbol", symbol),
				attribute.String("side", side),
				attribute.Float64("price", price),
			))
		}
	}
	fields := append([]any{"type", "SIGNAL", "kind", kind, "symbol", symbol, "side", side, "price", price}, args...)
	logWithTrace(ctx, slog.LevelInfo, "signal emitted", fields...)
}

// logWithTrace skips runtime.Caller, logWithTrace and the exported wrapper.
func logWithTrace(ctx context.Context, level slog.Level, msg string, args ...any) {
	if attrs := traceAttrs(ctx); attrs != nil {
		args = append(attrs, args...)
	}
	if detailedLogging {
		if pc, file, line, ok := runtime.Caller(2); ok {
			if fn := runtime.FuncForPC(pc); fn != nil {
				args = append(args, "source", slog.GroupValue(
					slog.String("function", fn.Name()),
					slog.String("file", file),
					slog.Int("line", line),
				))
			}
		}
	}
	l := globalLogger
	if l == nil {
		l = slog.Default()
	}
	l.Log(ctx, level, msg, args...)
}

// OperationTimer measures an operation under its own span.
type OperationTimer struct {
	ctx    context.Context
	span   trace.Span
	start  time.Time
	fields []any
}

// StartOperation opens a span named operation and copies fields onto it.
func StartOperation(ctx context.Context, operation string, fields ...any) *OperationTimer {
	var span trace.Span
	if tracingEnabled {
		ctx, span = StartSpan(ctx, operation)
		span.SetAttributes(toAttributes(fields)...)
	}
	Debug(ctx, "operation started", append([]any{"operation", operation}, fields...)...)
	return &OperationTimer{ctx: ctx, span: span, start: time.Now(), fields: fields}
}

// Context returns the context carrying the operation span.
func (ot *OperationTimer) Context() context.Context { return ot.ctx }

// Elapsed is the time since the operation started.
func (ot *OperationTimer) Elapsed() time.Duration { return time.Since(ot.start) }

// End closes the span successfully.
func (ot *OperationTimer) End(additionalFields ...any) {
	d := ot.Elapsed()
	if ot.span != nil {
		ot.span.SetAttributes(attribute.Int64("duration_ms", d.Milliseconds()))
		ot.span.SetAttributes(toAttributes(additionalFields)...)
		ot.span.SetStatus(codes.Ok, "completed")
		ot.span.End()
	}
	fields := append(append([]any{}, ot.fields...), "duration_ms", d.Milliseconds())
	Debug(ot.ctx, "operation completed", append(fields, additionalFields...)...)
}

// EndWithError closes the span with err and logs it.
func (ot *OperationTimer) EndWithError(err error, additionalFields ...any) {
	d := ot.Elapsed()
	if ot.span != nil {
		ot.span.SetAttributes(attribute.Int64("duration_ms", d.Milliseconds()))
		ot.span.RecordError(err)
		ot.span.SetStatus(codes.Error, err.Error())
		ot.span.End()
	}
	fields := append(append([]any{}, ot.fields...), "duration_ms", d.Milliseconds(), "error", err)
	Error(ot.ctx, "operation failed", append(fields, additionalFields...)...)
}

func toAttributes(fields []any) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, len(fields)/2)
	for i := 0; i+1 < len(fields); i += 2 {
		key, ok := fields[i].(string)
		if !ok {
			continue
		}
		switch v := fields[i+1].(type) {
		case string:
			attrs = append(attrs, attribute.String(key, v))
		case int:
			attrs = append(attrs, attribute.Int(key, v))
		case int64:
			attrs = append(attrs, attribute.Int64(key, v))
		case float64:
			attrs = append(attrs, attribute.Float64(key, v))
		case bool:
			attrs = append(attrs, attribute.Bool(key, v))
		}
	}
	return attrs
}
