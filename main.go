package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/h2non/bimg"
	"github.com/hyperdxio/otel-config-go/otelconfig"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"imgchop/api/rest"
	"imgchop/config"
	img "imgchop/converter/image"
	"imgchop/converter/upscale"
	"imgchop/service"
	"imgchop/shared/log"
	"imgchop/shared/metrics"
	"imgchop/shared/trace"
)

//	@title			imgchop
//	@version		1.0
//	@description	Image recompression and 2x upscaling API

// @BasePath	/
func main() {
	serviceConfig := config.New()

	ctx := context.Background()

	switch serviceConfig.TraceExporter {
	case "stdout":
		tp, err := trace.InitTrace(os.Stdout, serviceConfig.AppName)
		if err != nil {
			slog.Error("Error initializing tracer", "error", err)
			os.Exit(1)
		}
		defer func() {
			if err := tp.Shutdown(ctx); err != nil {
				slog.Error("Error shutting down tracer provider", "error", err)
			}
		}()
	case "otlp":
		otelShutdown, err := otelconfig.ConfigureOpenTelemetry(otelconfig.WithServiceName(serviceConfig.AppName))
		if err != nil {
			slog.Error("Error configuring OpenTelemetry", "error", err)
		} else {
			defer otelShutdown()
		}
	}

	logger, logShutdown, err := log.InitLogger(ctx, serviceConfig.LogLevel, serviceConfig.TraceExporter == "otlp")
	if err != nil {
		slog.Error("Error initializing logger", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := logShutdown(ctx); err != nil {
			slog.Error("Error shutting down log exporter", "error", err)
		}
		_ = logger.Sync()
	}()

	// no decoded image may outlive its request
	bimg.VipsCacheSetMax(0)
	bimg.VipsCacheSetMaxMem(0)
	defer bimg.Shutdown()

	var storage service.ObjectGetter
	if serviceConfig.StorageEnabled() {
		awsSession, err := session.NewSession(&aws.Config{
			Region:           aws.String(serviceConfig.S3Region),
			Credentials:      credentials.NewStaticCredentials(serviceConfig.S3AccessKey, serviceConfig.S3SecretKey, ""),
			Endpoint:         aws.String(serviceConfig.S3Endpoint),
			S3ForcePathStyle: aws.Bool(true),
		})
		if err != nil {
			logger.Error(err.Error())
			panic("Failed to create aws session")
		}
		storage = s3.New(awsSession)
	}

	m := metrics.New(prometheus.DefaultRegisterer)

	imageService := service.NewImageService(
		storage,
		serviceConfig,
		img.NewConverter(img.MustStrategy(logger)),
		upscale.NewLanczos(logger),
		m,
		logger,
	)

	app := rest.NewApp(serviceConfig, imageService, prometheus.DefaultGatherer, logger)

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		s := <-sig
		logger.Info("Shutting down", zap.String("signal", s.String()))

		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			logger.Error("Error shutting down server", zap.Error(err))
		}
	}()

	logger.Info("Starting server", zap.String("port", serviceConfig.Port), zap.Bool("storage", storage != nil))

	if err = app.Listen(":" + serviceConfig.Port); err != nil {
		logger.Error("Server stopped", zap.Error(err))
	}
}
