package filehandler

import (
	"bytes"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x += 7 {
		img.Set(x, x%h, color.RGBA{R: 255, A: 255})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestPrepare_SmallImageUnchanged(t *testing.T) {
	data := pngBytes(t, 40, 30)
	photo, err := Prepare(data, "", "small.png")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if photo.Resized {
		t.Error("small image must not be resized")
	}
	if photo.MIMEType != "image/png" || !bytes.Equal(photo.Data, data) {
		t.Errorf("expected original png, got %s (%d bytes)", photo.MIMEType, len(photo.Data))
	}
	if photo.Width != 40 || photo.Height != 30 {
		t.Errorf("expected 40x30, got %dx%d", photo.Width, photo.Height)
	}
}

func TestPrepare_LargeImageDownscaled(t *testing.T) {
	photo, err := Prepare(pngBytes(t, 3000, 1000), "image/png", "wide.png")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !photo.Resized || photo.MIMEType != "image/jpeg" {
		t.Fatalf("expected resized jpeg, got resized=%v mime=%s", photo.Resized, photo.MIMEType)
	}
	if photo.Width != MaxDimension || photo.Height != 682 {
		t.Errorf("expected %dx682, got %dx%d", MaxDimension, photo.Width, photo.Height)
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(photo.Data))
	if err != nil || format != "jpeg" || cfg.Width != photo.Width {
		t.Errorf("output does not decode as the reported jpeg: %v %s %d", err, format, cfg.Width)
	}
}

func TestPrepare_Rejects(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		mime string
		want error
	}{
		{"empty", nil, "image/png", ErrEmptyUpload},
		{"text", []byte("hello, this is not an image"), "image/png", ErrUnsupportedType},
		{"pdf", []byte("%PDF-1.4 fake"), "application/pdf", ErrUnsupportedType},
		{"truncated png", []byte("\x89PNG\r\n\x1a\nnot really"), "image/png", ErrUnsupportedType},
		{"too large", make([]byte, MaxUploadBytes+1), "image/png", ErrTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Prepare(tt.data, tt.mime, tt.name); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

// pngHeader returns a PNG signature and IHDR chunk declaring a w x h
// grayscale image with no pixel data.
func pngHeader(w, h uint32) []byte {
	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:], w)
	binary.BigEndian.PutUint32(ihdr[4:], h)
	ihdr[8] = 8 // bit depth
	ihdr[9] = 0 // grayscale

	var buf bytes.Buffer
	buf.WriteString("\x89PNG\r\n\x1a\n")
	binary.Write(&buf, binary.BigEndian, uint32(len(ihdr)))
	chunk := append([]byte("IHDR"), ihdr...)
	buf.Write(chunk)
	binary.Write(&buf, binary.BigEndian, crc32.ChecksumIEEE(chunk))
	return buf.Bytes()
}

func TestPrepare_PixelBudget(t *testing.T) {
	_, err := Prepare(pngHeader(20000, 20000), "image/png", "bomb.png")
	if !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}
	if errors.Is(err, ErrUnsupportedType) {
		t.Errorf("pixel budget error must not be reported as an unsupported type: %v", err)
	}

	if _, err := Downscale(pngHeader(10000, 5001), "image/png", MaxDimension); !errors.Is(err, ErrTooLarge) {
		t.Errorf("expected ErrTooLarge just over the budget, got %v", err)
	}
}

func TestReadUpload_Limit(t *testing.T) {
	r := bytes.NewReader(make([]byte, MaxUploadBytes+10))
	if _, err := ReadUpload(r, "image/png", "big"); !errors.Is(err, ErrTooLarge) {
		t.Errorf("expected ErrTooLarge, got %v", err)
	}
}

func TestLoadPhotoFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "me.png")
	if err := os.WriteFile(path, pngBytes(t, 10, 10), 0o600); err != nil {
		t.Fatal(err)
	}

	photo, err := LoadPhotoFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if photo.Name != "me.png" || photo.MIMEType != "image/png" {
		t.Errorf("unexpected photo %s %s", photo.Name, photo.MIMEType)
	}

	if _, err := LoadPhotoFile(filepath.Join(dir, "missing.png")); err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("expected not found error, got %v", err)
	}
	if _, err := LoadPhotoFile(dir); err == nil {
		t.Error("expected error for directory")
	}

	txt := filepath.Join(dir, "notes.txt")
	os.WriteFile(txt, []byte("x"), 0o600)
	if _, err := LoadPhotoFile(txt); !errors.Is(err, ErrUnsupportedType) {
		t.Errorf("expected ErrUnsupportedType, got %v", err)
	}
}

func TestIsSupported(t *testing.T) {
	tests := []struct {
		ext      string
		expected bool
	}{
		{".jpg", true},
		{".JPEG", true},
		{".png", true},
		{".gif", true},
		{".webp", true},
		{".heic", false},
		{".mp4", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.ext, func(t *testing.T) {
			if got := IsSupported(tt.ext); got != tt.expected {
				t.Errorf("IsSupported(%q) = %v, want %v", tt.ext, got, tt.expected)
			}
		})
	}
}

func TestCalculateThumbnailDimensions(t *testing.T) {
	tests := []struct {
		w, h, max    int
		wantW, wantH int
	}{
		{100, 50, 200, 100, 50},
		{4000, 3000, 2048, 2048, 1536},
		{3000, 4000, 2048, 1536, 2048},
		{5000, 1, 2048, 2048, 1},
	}
	for _, tt := range tests {
		w, h := calculateThumbnailDimensions(tt.w, tt.h, tt.max)
		if w != tt.wantW || h != tt.wantH {
			t.Errorf("%dx%d max %d: got %dx%d, want %dx%d", tt.w, tt.h, tt.max, w, h, tt.wantW, tt.wantH)
		}
	}
}
