package gateway

import "os"

// Gemini image model IDs.
//
// | Model Name              | API Model ID               | Use Case                      |
// |-------------------------|----------------------------|-------------------------------|
// | Gemini 2.5 Flash Image  | gemini-2.5-flash-image     | Fast image generation/editing |
// | Gemini 3 Pro Image      | gemini-3-pro-image-preview | Advanced image generation     |
const (
	// ModelGemini25FlashImage is fast, stable image generation and editing.
	ModelGemini25FlashImage = "gemini-2.5-flash-image"

	// ModelGemini3ProImage is for advanced image generation/edit.
	ModelGemini3ProImage = "gemini-3-pro-image-preview"
)

// DefaultModelName is the image model used when nothing overrides it.
const DefaultModelName = ModelGemini25FlashImage

// GetModelName returns the image model, resolved from:
// 1. GEMINI_IMAGE_MODEL environment variable (if set)
// 2. Default: gemini-2.5-flash-image
func GetModelName() string {
	if env := os.Getenv("GEMINI_IMAGE_MODEL"); env != "" {
		return env
	}
	return DefaultModelName
}
