package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/gabriel-vasile/mimetype"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"imgchop/api/model"
	"imgchop/config"
	"imgchop/shared/log"
	"imgchop/shared/metrics"
)

const (
	opCompress = "compress"
	opUpscale  = "upscale"
)

type ImageService struct {
	config *config.Config

	s3         ObjectGetter
	compressor compressor
	upscaler   upscaler

	metrics *metrics.Metrics
	tracer  trace.Tracer
	logger  *zap.Logger
}

// NewImageService wires the transforms. s3 may be nil when no bucket is configured.
func NewImageService(s3 ObjectGetter, c *config.Config, compressor compressor, upscaler upscaler, m *metrics.Metrics, logger *zap.Logger) *ImageService {
	return &ImageService{
		config:     c,
		s3:         s3,
		compressor: compressor,
		upscaler:   upscaler,
		metrics:    m,
		tracer:     otel.Tracer("imgchop/service"),
		logger:     logger,
	}
}

// Process compresses the object <entity>/<file> from the configured bucket.
func (i *ImageService) Process(ctx context.Context, params model.ImageRequest) (*model.ImageResponse, error) {
	ctx, span := i.tracer.Start(ctx, "process_stored", trace.WithAttributes(
		attribute.String("entity", params.EntityID),
		attribute.String("file", params.FileID),
	))
	defer span.End()
	logger := log.LoggerWithTrace(ctx, i.logger)

	if i.s3 == nil {
		return nil, fmt.Errorf("%w: no bucket configured", model.ErrStorageUnavailable)
	}

	fileKey := fmt.Sprintf("%s/%s", params.EntityID, params.FileID)

	result, err := i.s3.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(i.config.S3Bucket),
		Key:    aws.String(fileKey),
	})
	if err != nil {
		span.RecordError(err)
		if isNotFound(err) {
			logger.Info("Stored image not found", zap.String("key", fileKey))
			return nil, fmt.Errorf("%w: %s", model.ErrImageNotFound, fileKey)
		}
		logger.Error("Error fetching stored image", zap.String("key", fileKey), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", model.ErrStorageUnavailable, err)
	}
	defer result.Body.Close()

	data, err := io.ReadAll(result.Body)
	if err != nil {
		logger.Error("Error reading stored image", zap.String("key", fileKey), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", model.ErrStorageUnavailable, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty object %s", model.ErrCompressionFailed, fileKey)
	}

	req := params.CompressRequest(data)

	image, err := i.Compress(ctx, req)
	if err != nil {
		return nil, err
	}

	image.ContentDisposition = fmt.Sprintf("inline; filename=%s.%s", params.FileID, req.Format)

	return image, nil
}

func (i *ImageService) observe(span trace.Span, operation string, started time.Time, resp *model.ImageResponse, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		i.metrics.Observe(operation, started, 0, err)
		return
	}

	span.SetAttributes(attribute.Int64("output_bytes", resp.ContentLength))
	i.metrics.Observe(operation, started, int(resp.ContentLength), nil)
}

// sniffImage reports the detected content type and whether it is an image
// type worth handing to the decoder.
func sniffImage(data []byte) (string, bool) {
	mtype := mimetype.Detect(data).String()
	return mtype, strings.HasPrefix(mtype, "image/")
}

func isNotFound(err error) bool {
	var aerr awserr.Error
	if !errors.As(err, &aerr) {
		return false
	}
	switch aerr.Code() {
	case s3.ErrCodeNoSuchKey, s3.ErrCodeNoSuchBucket, "NotFound":
		return true
	}
	return false
}
