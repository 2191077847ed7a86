package upscale

import (
	"bytes"
	"context"
	"errors"

	"github.com/disintegration/imaging"
	"github.com/h2non/bimg"
	"go.uber.org/zap"
	"imgchop/shared/log"
)

var ErrNoDimensions = errors.New("image has no dimensions")

// Lanczos enlarges images with a 3-lobe Lanczos kernel and encodes PNG.
// libvips reads every input so both transforms accept the same formats.
type Lanczos struct {
	logger *zap.Logger
}

func NewLanczos(logger *zap.Logger) *Lanczos {
	return &Lanczos{logger: logger}
}

// Dimensions reads only the image header.
func (l *Lanczos) Dimensions(data []byte) (int, int, error) {
	size, err := bimg.NewImage(data).Size()
	if err != nil {
		return 0, 0, err
	}
	if size.Width <= 0 || size.Height <= 0 {
		return 0, 0, ErrNoDimensions
	}
	return size.Width, size.Height, nil
}

func (l *Lanczos) Upscale(ctx context.Context, data []byte, width int) ([]byte, error) {
	logger := log.LoggerWithTrace(ctx, l.logger)

	// lossless intermediate: libvips decodes, imaging resamples
	normalized, err := bimg.NewImage(data).Process(bimg.Options{
		Type:          bimg.PNG,
		NoAutoRotate:  true,
		StripMetadata: true,
	})
	if err != nil {
		logger.Error("Error decoding image", zap.Error(err))
		return nil, err
	}

	img, err := imaging.Decode(bytes.NewReader(normalized))
	if err != nil {
		logger.Error("Error decoding normalized image", zap.Error(err))
		return nil, err
	}

	logger.Debug("Resizing image", zap.Int("from", img.Bounds().Dx()), zap.Int("to", width))
	resized := imaging.Resize(img, width, 0, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, imaging.PNG); err != nil {
		logger.Error("Error converting image to png", zap.Error(err))
		return nil, err
	}

	return buf.Bytes(), nil
}
