package log

import (
	"context"
	"os"

	"github.com/hyperdxio/opentelemetry-go/otelzap"
	"github.com/hyperdxio/opentelemetry-logs-go/exporters/otlp/otlplogs"
	sdk "github.com/hyperdxio/opentelemetry-logs-go/sdk/logs"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// InitLogger builds the console logger. With exportOTLP the same entries are
// also batched to the OTLP log endpoint; the returned func flushes them.
func InitLogger(ctx context.Context, level string, exportOTLP bool) (*zap.Logger, func(context.Context) error, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, nil, err
	}

	consoleEncoder := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	console := zapcore.NewCore(consoleEncoder, zapcore.Lock(os.Stdout), lvl)

	if !exportOTLP {
		return zap.New(console), func(context.Context) error { return nil }, nil
	}

	logExporter, err := otlplogs.NewExporter(ctx)
	if err != nil {
		return nil, nil, err
	}

	loggerProvider := sdk.NewLoggerProvider(
		sdk.WithBatcher(logExporter),
	)

	core := zapcore.NewTee(
		otelzap.NewOtelCore(loggerProvider),
		console,
	)
	return zap.New(core), loggerProvider.Shutdown, nil
}

func LoggerWithTrace(ctx context.Context, logger *zap.Logger) *zap.Logger {
	spanContext := trace.SpanContextFromContext(ctx)
	if !spanContext.IsValid() {
		return logger
	}
	return logger.With(
		zap.String("trace_id", spanContext.TraceID().String()),
		zap.String("span_id", spanContext.SpanID().String()),
	)
}
