package service

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"imgchop/api/model"
	"imgchop/shared/log"
)

// Compress re-encodes req.Data in req.Format, shrinking it to req.MaxWidth
// when it is wider.
func (i *ImageService) Compress(ctx context.Context, req model.CompressRequest) (resp *model.ImageResponse, err error) {
	ctx, span := i.tracer.Start(ctx, opCompress, trace.WithAttributes(
		attribute.String("format", req.Format.String()),
		attribute.Int("max_width", req.MaxWidth),
		attribute.Float64("quality", req.Quality),
	))
	defer span.End()
	logger := log.LoggerWithTrace(ctx, i.logger)

	if len(req.Data) == 0 {
		return nil, model.ErrMissingFile
	}

	started := time.Now()
	defer func() { i.observe(span, opCompress, started, resp, err) }()

	inputType, ok := sniffImage(req.Data)
	if !ok {
		logger.Warn("Upload is not an image", zap.String("input_type", inputType))
		return nil, fmt.Errorf("%w: input is %s", model.ErrCompressionFailed, inputType)
	}

	quality := model.QualityPercent(req.Quality)

	logger.Debug("Compressing image",
		zap.String("input_type", inputType),
		zap.String("input_size", humanize.Bytes(uint64(len(req.Data)))),
		zap.String("format", req.Format.String()),
		zap.Int("quality", quality),
		zap.Int("max_width", req.MaxWidth),
	)

	out, err := i.compressor.Compress(ctx, req.Data, req.Format, quality, req.MaxWidth)
	if err != nil {
		logger.Error("Error compressing image", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", model.ErrCompressionFailed, err)
	}

	logger.Debug("Image compressed", zap.String("output_size", humanize.Bytes(uint64(len(out)))))

	return model.NewImageResponse(out, req.Format.ContentType()), nil
}
