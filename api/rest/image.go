package rest

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"imgchop/api/model"
	"imgchop/config"
	"imgchop/shared/log"
)

type imageService interface {
	Compress(ctx context.Context, req model.CompressRequest) (*model.ImageResponse, error)
	Upscale(ctx context.Context, data []byte) (*model.ImageResponse, error)
	Process(ctx context.Context, params model.ImageRequest) (*model.ImageResponse, error)
}

type ImageController struct {
	cfg     *config.Config
	service imageService
	logger  *zap.Logger
}

func NewImageController(router fiber.Router, cfg *config.Config, service imageService, logger *zap.Logger) *ImageController {
	i := &ImageController{service: service, cfg: cfg, logger: logger}

	for _, prefix := range []string{"", "/api"} {
		router.Post(prefix+"/compress", i.Compress)
		router.Post(prefix+"/upscale", i.Upscale)
	}

	if cfg.StorageEnabled() {
		router.Get("/images/:entity/:file/:width/:quality/:type", i.Process)
	}

	return i
}

// Compress image
//
//	@Summary		Recompress an uploaded image
//	@Description	Re-encodes the image as jpeg, png or webp, shrinking it to maxWidth when wider.
//	@Tags			image
//	@Accept			multipart/form-data
//	@Produce		image/jpeg,image/png,image/webp
//	@Param			file		formData	file	true	"Image"
//	@Param			quality		formData	number	false	"Quality 0..1"	default(0.8)
//	@Param			maxWidth	formData	int		false	"Max width"		default(1920)
//	@Param			format		formData	string	false	"Output format"	Enums(jpeg, png, webp)
//	@Success		200			{file}		file	"Returns the compressed image"
//	@Failure		400			{object}	model.ErrorResponse
//	@Failure		500			{object}	model.ErrorResponse
//	@Router			/compress [post]
func (i *ImageController) Compress(c *fiber.Ctx) error {
	ctx := c.UserContext()
	logger := log.LoggerWithTrace(ctx, i.logger)

	data, err := readFile(c, model.ErrCompressionFailed)
	if err != nil {
		logger.Warn("Compress request without file", zap.Error(err))
		return err
	}

	req := model.CompressRequest{
		Data:     data,
		Quality:  model.ParseQuality(c.FormValue("quality")),
		MaxWidth: model.ParseMaxWidth(c.FormValue("maxWidth")),
		Format:   model.FormatOrDefault(c.FormValue("format")),
	}

	image, err := i.service.Compress(ctx, req)
	if err != nil {
		logger.Error("Error compressing image", zap.Error(err))
		return err
	}

	return sendImage(c, image)
}

// Upscale image
//
//	@Summary		Upscale an uploaded image 2x
//	@Description	Doubles the width with Lanczos resampling and always returns PNG.
//	@Tags			image
//	@Accept			multipart/form-data
//	@Produce		image/png
//	@Param			file	formData	file	true	"Image"
//	@Success		200		{file}		file	"Returns the upscaled image"
//	@Failure		400		{object}	model.ErrorResponse
//	@Failure		500		{object}	model.ErrorResponse
//	@Router			/upscale [post]
func (i *ImageController) Upscale(c *fiber.Ctx) error {
	ctx := c.UserContext()
	logger := log.LoggerWithTrace(ctx, i.logger)

	data, err := readFile(c, model.ErrUpscalingFailed)
	if err != nil {
		logger.Warn("Upscale request without file", zap.Error(err))
		return err
	}

	image, err := i.service.Upscale(ctx, data)
	if err != nil {
		logger.Error("Error upscaling image", zap.Error(err))
		return err
	}

	return sendImage(c, image)
}

// Process image
//
//	@Summary		Compress a stored image
//	@Description	Runs the compress pipeline on <entity>/<file> from the configured bucket.
//	@Tags			image
//	@Produce		image/jpeg,image/png,image/webp
//	@Param			entity	path	string	true	"Entity"
//	@Param			file	path	string	true	"File name"
//	@Param			width	path	int		true	"Max width"
//	@Param			quality	path	number	true	"Quality 0..1"
//	@Param			type	path	string	true	"Image type"
//	@Success		200		{file}	file	"Returns the processed image"
//	@Failure		404		{object}	model.ErrorResponse
//	@Router			/images/{entity}/{file}/{width}/{quality}/{type} [get]
func (i *ImageController) Process(c *fiber.Ctx) error {
	ctx := c.UserContext()
	logger := log.LoggerWithTrace(ctx, i.logger)

	params := &model.ImageRequest{}

	err := c.ParamsParser(params)
	if err != nil {
		logger.Error("Error parsing params", zap.Error(err))
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	logger.Debug(fmt.Sprintf("Processing image with params: %+v", params))

	image, err := i.service.Process(ctx, *params)
	if err != nil {
		logger.Error("Error processing image", zap.Error(err))
		return err
	}

	c.Set(fiber.HeaderContentDisposition, image.ContentDisposition)

	return sendImage(c, image)
}

// readFile returns the uploaded "file" part. Failures after the part was
// found are reported as failed, the route's processing error.
func readFile(c *fiber.Ctx, failed error) ([]byte, error) {
	fh, err := c.FormFile("file")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrMissingFile, err)
	}

	return readUpload(fh, failed)
}

func readUpload(fh *multipart.FileHeader, failed error) ([]byte, error) {
	if fh.Size == 0 {
		return nil, model.ErrMissingFile
	}

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: open upload: %w", failed, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("%w: read upload: %w", failed, err)
	}

	return data, nil
}

func sendImage(c *fiber.Ctx, image *model.ImageResponse) error {
	c.Set(fiber.HeaderContentType, image.Type)

	return c.SendStream(image.Body, int(image.ContentLength))
}
