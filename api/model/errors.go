package model

import "errors"

var (
	ErrMissingFile        = errors.New("no file provided")
	ErrInvalidImage       = errors.New("invalid image data")
	ErrImageTooLarge      = errors.New("image too large to upscale")
	ErrCompressionFailed  = errors.New("compression failed")
	ErrUpscalingFailed    = errors.New("upscaling failed")
	ErrImageNotFound      = errors.New("image not found")
	ErrStorageUnavailable = errors.New("storage unavailable")
)

type ErrorResponse struct {
	Error string `json:"error"`
}
