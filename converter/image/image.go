package image

import (
	"context"
	"errors"
	"fmt"

	"github.com/h2non/bimg"
	"imgchop/api/model"
)

const (
	MinQuality = 1
	MaxQuality = 100
)

var ErrQualityOutOfRange = errors.New("quality out of range")

type Encoder interface {
	Encode(ctx context.Context, img *bimg.Image, opts bimg.Options) ([]byte, error)
}

type CustomImage struct {
	img  *bimg.Image
	size bimg.ImageSize
	opts bimg.Options

	t Encoder
}

func NewCustomImage(t Encoder) *CustomImage {
	return &CustomImage{t: t}
}

func (ci *CustomImage) Decode(buf []byte) (err error) {
	if len(buf) == 0 {
		return errors.New("empty image")
	}

	ci.img = bimg.NewImage(buf)

	ci.size, err = ci.img.Size()
	if err != nil {
		return fmt.Errorf("read image size: %w", err)
	}

	// EXIF orientation is left as stored and metadata is dropped.
	ci.opts = bimg.Options{NoAutoRotate: true, StripMetadata: true}

	return nil
}

func (ci *CustomImage) Transform(funcs ...Transform) {
	for _, f := range funcs {
		f(ci.size, &ci.opts)
	}
}

func (ci *CustomImage) Encode(ctx context.Context) ([]byte, error) {
	return ci.t.Encode(ctx, ci.img, ci.opts)
}

// Converter recompresses encoded images with libvips.
type Converter struct {
	strategy *Strategy
}

func NewConverter(strategy *Strategy) *Converter {
	return &Converter{strategy: strategy}
}

// Compress fails for quality outside MinQuality..MaxQuality; libvips would
// otherwise substitute its own default for 0.
func (c *Converter) Compress(ctx context.Context, data []byte, format model.Format, quality, maxWidth int) ([]byte, error) {
	if quality < MinQuality || quality > MaxQuality {
		return nil, fmt.Errorf("%w: %d", ErrQualityOutOfRange, quality)
	}

	encoder := c.strategy.Apply(format)
	if encoder == nil {
		return nil, fmt.Errorf("no encoder for format %q", format)
	}

	ci := NewCustomImage(encoder)
	if err := ci.Decode(data); err != nil {
		return nil, err
	}

	ci.Transform(WithMaxWidth(maxWidth), WithQuality(quality))

	return ci.Encode(ctx)
}
