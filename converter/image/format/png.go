package format

import (
	"context"

	"github.com/h2non/bimg"
	"go.uber.org/zap"
	"imgchop/shared/log"
)

type Png struct {
	logger *zap.Logger
}

func MustPng(logger *zap.Logger) *Png {
	return &Png{logger: logger}
}

// Encode writes a palette PNG; libvips only honours quality when quantising.
func (w *Png) Encode(ctx context.Context, img *bimg.Image, opts bimg.Options) ([]byte, error) {
	logger := log.LoggerWithTrace(ctx, w.logger)
	logger.Debug("Converting image to png", zap.Int("quality", opts.Quality), zap.Int("width", opts.Width))

	opts.Type = bimg.PNG
	opts.Palette = true
	buf, err := img.Process(opts)
	if err != nil {
		logger.Error("Error converting image to png", zap.Error(err))
		return nil, err
	}

	return buf, nil
}
