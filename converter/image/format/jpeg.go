package format

import (
	"context"

	"github.com/h2non/bimg"
	"go.uber.org/zap"
	"imgchop/shared/log"
)

type Jpeg struct {
	logger *zap.Logger
}

func MustJpeg(logger *zap.Logger) *Jpeg {
	return &Jpeg{logger: logger}
}

func (w *Jpeg) Encode(ctx context.Context, img *bimg.Image, opts bimg.Options) ([]byte, error) {
	logger := log.LoggerWithTrace(ctx, w.logger)
	logger.Debug("Converting image to jpeg", zap.Int("quality", opts.Quality), zap.Int("width", opts.Width))

	opts.Type = bimg.JPEG
	buf, err := img.Process(opts)
	if err != nil {
		logger.Error("Error converting image to jpeg", zap.Error(err))
		return nil, err
	}

	return buf, nil
}
