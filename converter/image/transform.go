package image

import (
	"github.com/h2non/bimg"
)

type Transform func(size bimg.ImageSize, opts *bimg.Options)

// WithMaxWidth shrinks to width when the image is wider. Height is left to
// libvips so the aspect ratio follows its rounding.
func WithMaxWidth(width int) Transform {
	return func(size bimg.ImageSize, opts *bimg.Options) {
		if width > 0 && size.Width > width {
			opts.Width = width
		}
	}
}

func WithQuality(quality int) Transform {
	return func(_ bimg.ImageSize, opts *bimg.Options) {
		opts.Quality = quality
	}
}
