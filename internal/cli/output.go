package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/fpang/birthday-surprise/internal/gateway"
)

var extensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// ExtensionFor returns the file extension for an image MIME type.
func ExtensionFor(mimeType string) string {
	if ext, ok := extensions[mimeType]; ok {
		return ext
	}
	return ".bin"
}

// WriteCarousel writes each image as <prefix>-<n><ext> under dir and
// returns the written paths in order.
func WriteCarousel(dir, prefix string, c *gateway.Carousel) ([]string, error) {
	paths := make([]string, 0, len(c.Images))
	for i, img := range c.Images {
		path := filepath.Join(dir, fmt.Sprintf("%s-%d%s", prefix, i+1, ExtensionFor(img.MIMEType)))
		if err := os.WriteFile(path, img.Data, 0o644); err != nil {
			return paths, fmt.Errorf("failed to write %s: %w", path, err)
		}
		log.Debug().Str("path", path).Int("bytes", len(img.Data)).Msg("Image written")
		paths = append(paths, path)
	}
	return paths, nil
}
