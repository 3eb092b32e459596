package filehandler

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	"github.com/rs/zerolog/log"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// resizeJPEGQuality is the quality used when a downscaled photo is
// re-encoded.
const resizeJPEGQuality = 90

// Resized is the outcome of Downscale.
type Resized struct {
	Data     []byte
	MIMEType string
	Width    int
	Height   int
	Resized  bool
}

// Downscale shrinks an image so neither side exceeds maxDimension,
// preserving aspect ratio, and re-encodes it as JPEG. Images already within
// bounds are returned unchanged. Images whose header declares more than
// MaxPixels are rejected with ErrTooLarge before any pixels are decoded.
func Downscale(data []byte, mimeType string, maxDimension int) (*Resized, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to read image header: %w", err)
	}
	if pixels := int64(cfg.Width) * int64(cfg.Height); pixels > MaxPixels {
		return nil, fmt.Errorf("%w: %dx%d is %d pixels (max %d)", ErrTooLarge, cfg.Width, cfg.Height, pixels, MaxPixels)
	}

	if cfg.Width <= maxDimension && cfg.Height <= maxDimension {
		return &Resized{Data: data, MIMEType: mimeType, Width: cfg.Width, Height: cfg.Height}, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	newWidth, newHeight := calculateThumbnailDimensions(bounds.Dx(), bounds.Dy(), maxDimension)

	resized := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
	draw.CatmullRom.Scale(resized, resized.Bounds(), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, resized, &jpeg.Options{Quality: resizeJPEGQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode resized image: %w", err)
	}

	log.Debug().
		Int("orig_width", bounds.Dx()).
		Int("orig_height", bounds.Dy()).
		Int("new_width", newWidth).
		Int("new_height", newHeight).
		Int("output_size", buf.Len()).
		Msg("Photo downscaled")

	return &Resized{
		Data:     buf.Bytes(),
		MIMEType: "image/jpeg",
		Width:    newWidth,
		Height:   newHeight,
		Resized:  true,
	}, nil
}

// calculateThumbnailDimensions calculates new dimensions maintaining aspect ratio.
func calculateThumbnailDimensions(width, height, maxDimension int) (int, int) {
	if width <= maxDimension && height <= maxDimension {
		return width, height
	}

	if width > height {
		newWidth := maxDimension
		newHeight := int(float64(height) * float64(maxDimension) / float64(width))
		return newWidth, max(newHeight, 1)
	}

	newHeight := maxDimension
	newWidth := int(float64(width) * float64(maxDimension) / float64(height))
	return max(newWidth, 1), newHeight
}
