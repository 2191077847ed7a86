package service_test

import (
	"bytes"
	"encoding/json"
	"image"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/h2non/bimg"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"imgchop/api/model"
	"imgchop/api/rest"
	"imgchop/config"
	img "imgchop/converter/image"
	"imgchop/converter/upscale"
	"imgchop/service"
	"imgchop/shared/metrics"
)

func newApp() *fiber.App {
	cfg := &config.Config{AppName: "imgchop-test", BodyLimitMB: 32, MaxUpscaleWidth: 4096}
	logger := zap.NewNop()
	reg := prometheus.NewRegistry()

	svc := service.NewImageService(
		nil,
		cfg,
		img.NewConverter(img.MustStrategy(logger)),
		upscale.NewLanczos(logger),
		metrics.New(reg),
		logger,
	)

	return rest.NewApp(cfg, svc, reg, logger)
}

func grayPNG(t *testing.T, w, h int) []byte {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

func upload(t *testing.T, path string, file []byte, fields map[string]string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", "photo.png")
	require.NoError(t, err)
	_, err = part.Write(file)
	require.NoError(t, err)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestUpscaleTooLargeOverHTTP(t *testing.T) {
	resp, err := newApp().Test(upload(t, "/upscale", grayPNG(t, 3000, 2000), nil), -1)
	require.NoError(t, err)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "application/json")

	var payload model.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.Equal(t, "Image too large to upscale further.", payload.Error)
}

func TestUpscaleAtLimitOverHTTP(t *testing.T) {
	resp, err := newApp().Test(upload(t, "/upscale", grayPNG(t, 2048, 21), nil), -1)
	require.NoError(t, err)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, int64(len(body)), resp.ContentLength)

	out, format, err := image.Decode(bytes.NewReader(body))
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, 4096, out.Bounds().Dx())
	assert.Equal(t, 42, out.Bounds().Dy())
}

func TestCompressToWebpOverHTTP(t *testing.T) {
	resp, err := newApp().Test(upload(t, "/compress", grayPNG(t, 1000, 800), map[string]string{
		"quality":  "0.5",
		"maxWidth": "1920",
		"format":   "webp",
	}), -1)
	require.NoError(t, err)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/webp", resp.Header.Get("Content-Type"))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	size, err := bimg.NewImage(body).Size()
	require.NoError(t, err)
	assert.Equal(t, 1000, size.Width)
	assert.Equal(t, 800, size.Height)
}

func TestCompressQualityOutOfRangeOverHTTP(t *testing.T) {
	resp, err := newApp().Test(upload(t, "/compress", grayPNG(t, 10, 10), map[string]string{"quality": "1.5"}), -1)
	require.NoError(t, err)

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	var payload model.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.Equal(t, "Compression failed", payload.Error)
}
