package image

import (
	"go.uber.org/zap"
	"imgchop/api/model"
	"imgchop/converter/image/format"
)

type Strategy struct {
	m map[model.Format]Encoder
}

func MustStrategy(logger *zap.Logger) *Strategy {
	return &Strategy{m: map[model.Format]Encoder{
		model.WEBP: format.MustWebp(logger),
		model.JPEG: format.MustJpeg(logger),
		model.PNG:  format.MustPng(logger),
	}}
}

func (s *Strategy) Apply(t model.Format) Encoder {
	return s.m[t]
}
