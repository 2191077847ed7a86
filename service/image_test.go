package service

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"imgchop/api/model"
	"imgchop/config"
	"imgchop/shared/metrics"
)

type MockCompressor struct {
	err      error
	response []byte

	called   bool
	format   model.Format
	quality  int
	maxWidth int
}

func (m *MockCompressor) Compress(_ context.Context, _ []byte, format model.Format, quality, maxWidth int) ([]byte, error) {
	m.called = true
	m.format = format
	m.quality = quality
	m.maxWidth = maxWidth
	return m.response, m.err
}

type MockUpscaler struct {
	width, height int
	dimErr        error
	err           error
	response      []byte

	called      bool
	targetWidth int
}

func (m *MockUpscaler) Dimensions(_ []byte) (int, int, error) {
	return m.width, m.height, m.dimErr
}

func (m *MockUpscaler) Upscale(_ context.Context, _ []byte, width int) ([]byte, error) {
	m.called = true
	m.targetWidth = width
	return m.response, m.err
}

type MockS3 struct {
	body string
	err  error

	key string
}

func (m *MockS3) GetObjectWithContext(_ aws.Context, input *s3.GetObjectInput, _ ...request.Option) (*s3.GetObjectOutput, error) {
	m.key = aws.StringValue(input.Key)
	if m.err != nil {
		return nil, m.err
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(m.body))}, nil
}

func tinyPNG(t *testing.T) []byte {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, 2, 2))))
	return buf.Bytes()
}

func newTestService(store ObjectGetter, c compressor, u upscaler) (*ImageService, *metrics.Metrics) {
	m := metrics.New(prometheus.NewRegistry())
	cfg := &config.Config{MaxUpscaleWidth: 4096, S3Bucket: "posters"}
	return NewImageService(store, cfg, c, u, m, zap.NewNop()), m
}

func TestCompress(t *testing.T) {
	mc := &MockCompressor{response: []byte("webp-bytes")}
	svc, m := newTestService(nil, mc, &MockUpscaler{})

	resp, err := svc.Compress(context.Background(), model.CompressRequest{
		Data:     tinyPNG(t),
		Quality:  0.5,
		MaxWidth: 1920,
		Format:   model.WEBP,
	})
	require.NoError(t, err)

	assert.Equal(t, "image/webp", resp.Type)
	assert.Equal(t, int64(len("webp-bytes")), resp.ContentLength)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "webp-bytes", string(body))

	assert.Equal(t, model.WEBP, mc.format)
	assert.Equal(t, 50, mc.quality)
	assert.Equal(t, 1920, mc.maxWidth)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Transforms().WithLabelValues(opCompress, metrics.OutcomeOK)))
}

func TestCompressErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		mc := &MockCompressor{}
		svc, _ := newTestService(nil, mc, &MockUpscaler{})

		_, err := svc.Compress(context.Background(), model.CompressRequest{Format: model.JPEG})
		assert.ErrorIs(t, err, model.ErrMissingFile)
		assert.False(t, mc.called)
	})

	t.Run("library failure", func(t *testing.T) {
		mc := &MockCompressor{err: errors.New("vips: unsupported image format")}
		svc, m := newTestService(nil, mc, &MockUpscaler{})

		_, err := svc.Compress(context.Background(), model.CompressRequest{Data: tinyPNG(t), Format: model.JPEG})
		assert.ErrorIs(t, err, model.ErrCompressionFailed)
		assert.Equal(t, 1.0, testutil.ToFloat64(m.Transforms().WithLabelValues(opCompress, metrics.OutcomeError)))
	})
}

func TestCompressQualityPassesThrough(t *testing.T) {
	mc := &MockCompressor{err: errors.New("quality out of range: 150")}
	svc, _ := newTestService(nil, mc, &MockUpscaler{})

	_, err := svc.Compress(context.Background(), model.CompressRequest{Data: tinyPNG(t), Quality: 1.5, Format: model.JPEG})

	assert.ErrorIs(t, err, model.ErrCompressionFailed)
	assert.Equal(t, 150, mc.quality)
}

func TestNotAnImage(t *testing.T) {
	text := []byte("name,width\nposter,300\n")

	t.Run("compress", func(t *testing.T) {
		mc := &MockCompressor{}
		svc, _ := newTestService(nil, mc, &MockUpscaler{})

		_, err := svc.Compress(context.Background(), model.CompressRequest{Data: text, Format: model.JPEG})
		assert.ErrorIs(t, err, model.ErrCompressionFailed)
		assert.False(t, mc.called)
	})

	t.Run("upscale", func(t *testing.T) {
		mu := &MockUpscaler{width: 10, height: 10}
		svc, _ := newTestService(nil, &MockCompressor{}, mu)

		_, err := svc.Upscale(context.Background(), text)
		assert.ErrorIs(t, err, model.ErrInvalidImage)
		assert.False(t, mu.called)
	})
}

func TestUpscale(t *testing.T) {
	tests := []struct {
		name       string
		upscaler   *MockUpscaler
		wantErr    error
		wantCalled bool
		wantTarget int
	}{
		{
			name:       "doubles width",
			upscaler:   &MockUpscaler{width: 1000, height: 800, response: []byte("png")},
			wantCalled: true,
			wantTarget: 2000,
		},
		{
			name:       "exactly at limit",
			upscaler:   &MockUpscaler{width: 2048, height: 10, response: []byte("png")},
			wantCalled: true,
			wantTarget: 4096,
		},
		{
			name:     "over limit",
			upscaler: &MockUpscaler{width: 3000, height: 2000},
			wantErr:  model.ErrImageTooLarge,
		},
		{
			name:     "just over limit",
			upscaler: &MockUpscaler{width: 2049, height: 2000},
			wantErr:  model.ErrImageTooLarge,
		},
		{
			name:     "unreadable header",
			upscaler: &MockUpscaler{dimErr: errors.New("image: unknown format")},
			wantErr:  model.ErrInvalidImage,
		},
		{
			name:       "resize failure",
			upscaler:   &MockUpscaler{width: 100, height: 100, err: errors.New("unexpected EOF")},
			wantErr:    model.ErrUpscalingFailed,
			wantCalled: true,
			wantTarget: 200,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc, _ := newTestService(nil, &MockCompressor{}, tc.upscaler)

			resp, err := svc.Upscale(context.Background(), tinyPNG(t))
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				assert.Nil(t, resp)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "image/png", resp.Type)
				assert.Equal(t, int64(3), resp.ContentLength)
			}
			assert.Equal(t, tc.wantCalled, tc.upscaler.called)
			assert.Equal(t, tc.wantTarget, tc.upscaler.targetWidth)
		})
	}
}

func TestUpscaleMissingFile(t *testing.T) {
	mu := &MockUpscaler{width: 10, height: 10}
	svc, _ := newTestService(nil, &MockCompressor{}, mu)

	_, err := svc.Upscale(context.Background(), nil)
	assert.ErrorIs(t, err, model.ErrMissingFile)
	assert.False(t, mu.called)
}

func TestProcess(t *testing.T) {
	store := &MockS3{body: string(tinyPNG(t))}
	mc := &MockCompressor{response: []byte("png-bytes")}
	svc, _ := newTestService(store, mc, &MockUpscaler{})

	resp, err := svc.Process(context.Background(), model.ImageRequest{
		EntityID: "42",
		FileID:   "poster",
		Width:    "300",
		Quality:  "0.9",
		Type:     "png",
	})
	require.NoError(t, err)

	assert.Equal(t, "42/poster", store.key)
	assert.Equal(t, 300, mc.maxWidth)
	assert.Equal(t, 90, mc.quality)
	assert.Equal(t, "image/png", resp.Type)
	assert.Equal(t, "inline; filename=poster.png", resp.ContentDisposition)
}

func TestProcessErrors(t *testing.T) {
	tests := []struct {
		name    string
		store   ObjectGetter
		wantErr error
	}{
		{
			name:    "no bucket",
			store:   nil,
			wantErr: model.ErrStorageUnavailable,
		},
		{
			name:    "missing key",
			store:   &MockS3{err: awserr.New(s3.ErrCodeNoSuchKey, "The specified key does not exist.", nil)},
			wantErr: model.ErrImageNotFound,
		},
		{
			name:    "storage down",
			store:   &MockS3{err: awserr.New("RequestError", "send request failed", errors.New("dial tcp"))},
			wantErr: model.ErrStorageUnavailable,
		},
		{
			name:    "empty object",
			store:   &MockS3{},
			wantErr: model.ErrCompressionFailed,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc, _ := newTestService(tc.store, &MockCompressor{response: []byte("x")}, &MockUpscaler{})

			_, err := svc.Process(context.Background(), model.ImageRequest{EntityID: "1", FileID: "a"})
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}
