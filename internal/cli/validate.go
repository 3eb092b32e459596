package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fpang/birthday-surprise/internal/filehandler"
	"github.com/fpang/birthday-surprise/internal/gateway"
)

// ResolveOutputDir creates dirPath if needed and returns its absolute path.
func ResolveOutputDir(dirPath string) (string, error) {
	if dirPath == "" {
		dirPath = "."
	}
	if err := os.MkdirAll(dirPath, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	info, err := os.Stat(dirPath)
	if err != nil {
		return "", fmt.Errorf("failed to access output directory: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("output path is not a directory: %s", dirPath)
	}
	if abs, err := filepath.Abs(dirPath); err == nil {
		dirPath = abs
	}
	return dirPath, nil
}

// LoadImage reads, validates and downscales the photo at path.
func LoadImage(path string) (gateway.Image, error) {
	photo, err := filehandler.LoadPhotoFile(path)
	if err != nil {
		return gateway.Image{}, err
	}
	return gateway.NewImage(photo.Data, photo.MIMEType), nil
}
