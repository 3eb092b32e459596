package gateway

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// DefaultMIMEType is assumed for images whose type is unknown.
const DefaultMIMEType = "image/png"

// ErrInvalidDataURI is returned by ParseDataURI for malformed input.
var ErrInvalidDataURI = errors.New("invalid image data URI")

// Image is an opaque image handle: raw bytes plus a MIME type. Uploaded
// photos and generated results share this type so one step's output can be
// the next step's input.
type Image struct {
	Data     []byte
	MIMEType string
}

// NewImage returns an image handle, defaulting the MIME type.
func NewImage(data []byte, mimeType string) Image {
	if mimeType == "" {
		mimeType = DefaultMIMEType
	}
	return Image{Data: data, MIMEType: mimeType}
}

// DataURI renders the image as data:<mime>;base64,<payload>.
func (i Image) DataURI() string {
	mime := i.MIMEType
	if mime == "" {
		mime = DefaultMIMEType
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(i.Data)
}

// Empty reports whether the handle carries no bytes.
func (i Image) Empty() bool {
	return len(i.Data) == 0
}

// ParseDataURI decodes a base64 data URI back into an Image. A URI with no
// media type yields DefaultMIMEType.
func ParseDataURI(uri string) (Image, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return Image{}, fmt.Errorf("%w: missing data: prefix", ErrInvalidDataURI)
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return Image{}, fmt.Errorf("%w: missing payload", ErrInvalidDataURI)
	}
	mime, ok := strings.CutSuffix(meta, ";base64")
	if !ok {
		return Image{}, fmt.Errorf("%w: only base64 payloads are supported", ErrInvalidDataURI)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return Image{}, fmt.Errorf("%w: %v", ErrInvalidDataURI, err)
	}
	if len(data) == 0 {
		return Image{}, fmt.Errorf("%w: empty payload", ErrInvalidDataURI)
	}
	return NewImage(data, mime), nil
}
