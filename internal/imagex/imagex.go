package imagex

import (
	"bytes"
	"fmt"
	"image"
	"net/http"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/yungbote/productintel-backend/internal/platform/apierr"
)

// MaxUploadBytes bounds a single photo upload.
const MaxUploadBytes = 10 << 20

// Info describes a validated upload.
type Info struct {
	Format   string
	MIMEType string
	Width    int
	Height   int
}

// Validate checks that data is a decodable product photo in a supported
// format. It decodes headers only, never full pixel data.
func Validate(data []byte) (*Info, error) {
	if len(data) == 0 {
		return nil, apierr.InvalidInput("image file is empty", nil)
	}
	if len(data) > MaxUploadBytes {
		return nil, apierr.InvalidInput(fmt.Sprintf("image exceeds %d bytes", MaxUploadBytes), nil)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		sniffed := http.DetectContentType(data)
		return nil, apierr.InvalidInput(fmt.Sprintf("unsupported or corrupt image (detected %s)", sniffed), err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, apierr.InvalidInput("image has no dimensions", nil)
	}

	return &Info{
		Format:   format,
		MIMEType: "image/" + format,
		Width:    cfg.Width,
		Height:   cfg.Height,
	}, nil
}
