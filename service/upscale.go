package service

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"imgchop/api/model"
	"imgchop/shared/log"
)

// Upscale doubles the width of data with Lanczos resampling and returns PNG.
// Targets wider than the configured cap are rejected before decoding pixels.
func (i *ImageService) Upscale(ctx context.Context, data []byte) (resp *model.ImageResponse, err error) {
	ctx, span := i.tracer.Start(ctx, opUpscale)
	defer span.End()
	logger := log.LoggerWithTrace(ctx, i.logger)

	if len(data) == 0 {
		return nil, model.ErrMissingFile
	}

	started := time.Now()
	defer func() { i.observe(span, opUpscale, started, resp, err) }()

	inputType, ok := sniffImage(data)
	if !ok {
		logger.Warn("Upload is not an image", zap.String("input_type", inputType))
		return nil, fmt.Errorf("%w: input is %s", model.ErrInvalidImage, inputType)
	}

	width, height, err := i.upscaler.Dimensions(data)
	if err != nil {
		logger.Warn("Unreadable image dimensions",
			zap.String("input_type", inputType),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %w", model.ErrInvalidImage, err)
	}

	targetWidth := width * 2
	span.SetAttributes(
		attribute.Int("width", width),
		attribute.Int("height", height),
		attribute.Int("target_width", targetWidth),
	)

	if targetWidth > i.config.MaxUpscaleWidth {
		logger.Info("Upscale target too wide", zap.Int("target_width", targetWidth), zap.Int("limit", i.config.MaxUpscaleWidth))
		return nil, fmt.Errorf("%w: target width %d exceeds %d", model.ErrImageTooLarge, targetWidth, i.config.MaxUpscaleWidth)
	}

	logger.Debug("Upscaling image",
		zap.String("input_type", inputType),
		zap.String("input_size", humanize.Bytes(uint64(len(data)))),
		zap.Int("width", width),
		zap.Int("target_width", targetWidth),
	)

	out, err := i.upscaler.Upscale(ctx, data, targetWidth)
	if err != nil {
		logger.Error("Error upscaling image", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", model.ErrUpscalingFailed, err)
	}

	return model.NewImageResponse(out, model.PNG.ContentType()), nil
}
