package filehandler

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
)

// ReadUpload reads at most MaxUploadBytes from r and prepares the photo.
func ReadUpload(r io.Reader, declaredMIME, name string) (*Photo, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxUploadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	return Prepare(data, declaredMIME, name)
}

// Prepare validates raw image bytes and downscales them when either side
// exceeds MaxDimension. The content is sniffed; the declared type is only
// used when sniffing is inconclusive.
func Prepare(data []byte, declaredMIME, name string) (*Photo, error) {
	if len(data) == 0 {
		return nil, ErrEmptyUpload
	}
	if len(data) > MaxUploadBytes {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrTooLarge, len(data), MaxUploadBytes)
	}

	mimeType := sniffMIMEType(data, declaredMIME)
	if !IsAllowedMIMEType(mimeType) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, mimeType)
	}

	photo := &Photo{Name: name, Data: data, MIMEType: mimeType}

	if meta, err := ExtractImageMetadata(bytes.NewReader(data)); err == nil {
		photo.Metadata = meta
	} else {
		log.Debug().Err(err).Str("name", name).Msg("No EXIF metadata in upload")
	}

	resized, err := Downscale(data, mimeType, MaxDimension)
	if errors.Is(err, ErrTooLarge) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedType, err)
	}
	photo.Data = resized.Data
	photo.MIMEType = resized.MIMEType
	photo.Width = resized.Width
	photo.Height = resized.Height
	photo.Resized = resized.Resized

	evt := log.Debug().
		Str("name", name).
		Str("mime_type", photo.MIMEType).
		Int("bytes", len(photo.Data)).
		Int("width", photo.Width).
		Int("height", photo.Height).
		Bool("resized", photo.Resized)
	if photo.Metadata != nil && photo.Metadata.HasDate {
		evt = evt.Time("taken", photo.Metadata.DateTaken)
	}
	evt.Msg("Photo prepared")

	return photo, nil
}

func sniffMIMEType(data []byte, declared string) string {
	sniffed := http.DetectContentType(data)
	if strings.HasPrefix(sniffed, "image/") {
		return sniffed
	}
	if i := strings.IndexByte(declared, ';'); i >= 0 {
		declared = declared[:i]
	}
	if sniffed == "application/octet-stream" && declared != "" {
		return strings.ToLower(strings.TrimSpace(declared))
	}
	return sniffed
}
