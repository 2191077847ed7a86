package service

import (
	"context"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"imgchop/api/model"
)

type compressor interface {
	Compress(ctx context.Context, data []byte, format model.Format, quality, maxWidth int) ([]byte, error)
}

type upscaler interface {
	Dimensions(data []byte) (width, height int, err error)
	Upscale(ctx context.Context, data []byte, width int) ([]byte, error)
}

// ObjectGetter is the part of s3iface.S3API used for stored images.
type ObjectGetter interface {
	GetObjectWithContext(ctx aws.Context, input *s3.GetObjectInput, opts ...request.Option) (*s3.GetObjectOutput, error)
}
