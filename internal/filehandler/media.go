// Package filehandler validates and normalises the photos fed to the image
// model. Uploads and local files go through the same path: the type is
// checked against an allow-list, the size is capped, EXIF metadata is read
// for logging, and oversized images are downscaled before they are sent.
package filehandler

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

// Upload limits.
const (
	MaxUploadBytes = 20 << 20
	MaxDimension   = 2048
	MaxPixels      = 50_000_000
)

var (
	ErrEmptyUpload     = errors.New("uploaded file is empty")
	ErrTooLarge        = errors.New("uploaded file exceeds the size limit")
	ErrUnsupportedType = errors.New("unsupported image type")
)

// SupportedImageExtensions defines the file extensions accepted as photos.
var SupportedImageExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// allowedMIMETypes is the upload allow-list.
var allowedMIMETypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// Photo is a validated image ready to be sent for generation.
type Photo struct {
	Name     string
	Data     []byte
	MIMEType string
	// Width and Height are the dimensions after any downscaling.
	Width    int
	Height   int
	Resized  bool
	Metadata *ImageMetadata
}

// GetMIMEType returns the MIME type for a given file extension.
func GetMIMEType(ext string) (string, error) {
	ext = strings.ToLower(ext)
	if mimeType, ok := SupportedImageExtensions[ext]; ok {
		return mimeType, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedType, ext)
}

// IsSupported reports whether ext is an accepted photo extension.
func IsSupported(ext string) bool {
	_, ok := SupportedImageExtensions[strings.ToLower(ext)]
	return ok
}

// IsAllowedMIMEType reports whether mimeType is on the upload allow-list.
func IsAllowedMIMEType(mimeType string) bool {
	return allowedMIMETypes[strings.ToLower(mimeType)]
}

// LoadPhotoFile reads and prepares a photo from disk.
func LoadPhotoFile(filePath string) (*Photo, error) {
	log.Debug().Str("path", filePath).Msg("Loading photo file")

	info, err := os.Stat(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file not found: %s", filePath)
		}
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("path is a directory, not a file: %s", filePath)
	}
	if info.Size() > MaxUploadBytes {
		return nil, fmt.Errorf("%w: %s is %d bytes", ErrTooLarge, filePath, info.Size())
	}

	mimeType, err := GetMIMEType(filepath.Ext(filePath))
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	return Prepare(data, mimeType, filepath.Base(filePath))
}
