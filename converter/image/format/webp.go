package format

import (
	"context"

	"github.com/h2non/bimg"
	"go.uber.org/zap"
	"imgchop/shared/log"
)

type Webp struct {
	logger *zap.Logger
}

func MustWebp(logger *zap.Logger) *Webp {
	return &Webp{logger: logger}
}

func (w *Webp) Encode(ctx context.Context, img *bimg.Image, opts bimg.Options) ([]byte, error) {
	logger := log.LoggerWithTrace(ctx, w.logger)
	logger.Debug("Converting image to webp", zap.Int("quality", opts.Quality), zap.Int("width", opts.Width))

	opts.Type = bimg.WEBP
	buf, err := img.Process(opts)
	if err != nil {
		logger.Error("Error converting image to webp", zap.Error(err))
		return nil, err
	}

	return buf, nil
}
