package model

import "fmt"

type Format struct {
	s string
}

var (
	JPEG = Format{"jpeg"}
	PNG  = Format{"png"}
	WEBP = Format{"webp"}
)

func (f Format) String() string {
	return f.s
}

// ContentType is the MIME type declared for images encoded in f.
func (f Format) ContentType() string {
	switch f {
	case PNG:
		return "image/png"
	case WEBP:
		return "image/webp"
	default:
		return "image/jpeg"
	}
}

func MakeFromString(s string) (Format, error) {
	switch s {
	case JPEG.s:
		return JPEG, nil
	case PNG.s:
		return PNG, nil
	case WEBP.s:
		return WEBP, nil
	}

	return Format{}, fmt.Errorf("unknown format: %s", s)
}

// FormatOrDefault falls back to JPEG for anything MakeFromString rejects.
func FormatOrDefault(s string) Format {
	f, err := MakeFromString(s)
	if err != nil {
		return JPEG
	}
	return f
}
