package rest

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"imgchop/api/model"
	"imgchop/shared/log"
)

var errorMessages = []struct {
	err     error
	status  int
	message string
}{
	{model.ErrMissingFile, fiber.StatusBadRequest, "No file provided"},
	{model.ErrInvalidImage, fiber.StatusBadRequest, "Invalid image data"},
	{model.ErrImageTooLarge, fiber.StatusBadRequest, "Image too large to upscale further."},
	{model.ErrImageNotFound, fiber.StatusNotFound, "Image not found"},
	{model.ErrStorageUnavailable, fiber.StatusBadGateway, "Storage unavailable"},
	{model.ErrCompressionFailed, fiber.StatusInternalServerError, "Compression failed"},
	{model.ErrUpscalingFailed, fiber.StatusInternalServerError, "Upscaling failed"},
}

func statusFor(err error) (int, string) {
	for _, m := range errorMessages {
		if errors.Is(err, m.err) {
			return m.status, m.message
		}
	}

	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code, fe.Message
	}

	return fiber.StatusInternalServerError, "Internal Server Error"
}

// ErrorHandler answers every failed request with {"error": "..."}.
func ErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status, message := statusFor(err)
		if status >= fiber.StatusInternalServerError {
			log.LoggerWithTrace(c.UserContext(), logger).Error("Request failed",
				zap.String("path", c.Path()),
				zap.Int("status", status),
				zap.Error(err),
			)
		}

		return c.Status(status).JSON(model.ErrorResponse{Error: message})
	}
}
