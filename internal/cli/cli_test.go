package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fpang/birthday-surprise/internal/gateway"
)

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{512, "512 B"},
		{2048, "2.0 KB"},
		{3 << 20, "3.0 MB"},
	}
	for _, tt := range tests {
		if got := FormatBytes(tt.n); got != tt.want {
			t.Errorf("FormatBytes(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestFormatDurationShort(t *testing.T) {
	if got := FormatDurationShort(75 * time.Second); got != "1:15" {
		t.Errorf("got %q", got)
	}
	if got := FormatDurationShort(time.Hour + 2*time.Second); got != "1:00:02" {
		t.Errorf("got %q", got)
	}
}

func TestWriteCarousel(t *testing.T) {
	dir, err := ResolveOutputDir(filepath.Join(t.TempDir(), "out", "nested"))
	if err != nil {
		t.Fatal(err)
	}
	c := &gateway.Carousel{Requested: 3, Images: []gateway.Image{
		gateway.NewImage([]byte("a"), "image/png"),
		gateway.NewImage([]byte("bb"), "image/jpeg"),
	}}

	paths, err := WriteCarousel(dir, "portrait", c)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"portrait-1.png", "portrait-2.jpg"}
	if len(paths) != len(want) {
		t.Fatalf("expected %d paths, got %v", len(want), paths)
	}
	for i, p := range paths {
		if filepath.Base(p) != want[i] {
			t.Errorf("path %d: expected %s, got %s", i, want[i], filepath.Base(p))
		}
	}
	data, err := os.ReadFile(paths[1])
	if err != nil || string(data) != "bb" {
		t.Errorf("unexpected content %q, %v", data, err)
	}
}

func TestResolveOutputDir_File(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ResolveOutputDir(f); err == nil {
		t.Error("expected error for a regular file")
	}
}

func TestPromptForText(t *testing.T) {
	orig := input
	t.Cleanup(func() { input = orig })

	input = strings.NewReader("  pani puri \n")
	if got := PromptForText("Craving", ""); got != "pani puri" {
		t.Errorf("got %q", got)
	}
	input = strings.NewReader("\n")
	if got := PromptForText("Craving", "pizza"); got != "pizza" {
		t.Errorf("expected default, got %q", got)
	}
}
