package filehandler

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/evanoberholster/imagemeta"
)

// ImageMetadata is the EXIF subset recorded for uploaded photos.
type ImageMetadata struct {
	DateTaken   time.Time
	HasDate     bool
	CameraMake  string
	CameraModel string
}

// ExtractImageMetadata reads EXIF metadata from r. Only the metadata block
// is read, not the pixel data. Formats without EXIF return an error, which
// callers treat as "no metadata".
func ExtractImageMetadata(r io.ReadSeeker) (*ImageMetadata, error) {
	exifData, err := imagemeta.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode EXIF metadata: %w", err)
	}

	metadata := &ImageMetadata{}

	// Priority: DateTimeOriginal > CreateDate > ModifyDate
	switch {
	case !exifData.DateTimeOriginal().IsZero():
		metadata.DateTaken = exifData.DateTimeOriginal()
		metadata.HasDate = true
	case !exifData.CreateDate().IsZero():
		metadata.DateTaken = exifData.CreateDate()
		metadata.HasDate = true
	case !exifData.ModifyDate().IsZero():
		metadata.DateTaken = exifData.ModifyDate()
		metadata.HasDate = true
	}

	metadata.CameraMake = strings.TrimSpace(exifData.Make)
	metadata.CameraModel = strings.TrimSpace(exifData.Model)

	return metadata, nil
}

// Camera returns "make model", or "" when neither is known.
func (m *ImageMetadata) Camera() string {
	return strings.TrimSpace(m.CameraMake + " " + m.CameraModel)
}
