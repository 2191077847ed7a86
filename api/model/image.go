package model

import (
	"bytes"
	"io"
)

// ImageRequest addresses a stored object and the transform to run on it.
type ImageRequest struct {
	EntityID string `params:"entity"`
	FileID   string `params:"file"`
	Width    string `params:"width"`
	Quality  string `params:"quality"`
	Type     string `params:"type"`
}

// CompressRequest is a parsed, defaulted compression job.
type CompressRequest struct {
	Data     []byte
	Quality  float64
	MaxWidth int
	Format   Format
}

func (r ImageRequest) CompressRequest(data []byte) CompressRequest {
	return CompressRequest{
		Data:     data,
		Quality:  ParseQuality(r.Quality),
		MaxWidth: ParseMaxWidth(r.Width),
		Format:   FormatOrDefault(r.Type),
	}
}

type ImageResponse struct {
	Type               string
	ContentLength      int64
	ContentDisposition string

	Body io.Reader
}

func NewImageResponse(data []byte, contentType string) *ImageResponse {
	return &ImageResponse{
		Type:          contentType,
		ContentLength: int64(len(data)),
		Body:          bytes.NewReader(data),
	}
}
