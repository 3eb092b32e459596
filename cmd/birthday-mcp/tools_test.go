package main

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/fpang/birthday-surprise/internal/gateway"
	"github.com/fpang/birthday-surprise/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.SetOutput(io.Discard)
	os.Exit(m.Run())
}

type stubGateway struct {
	gateway.Gateway
	food string
}

func carousel(n, requested int) *gateway.Carousel {
	c := &gateway.Carousel{Requested: requested}
	for i := 0; i < n; i++ {
		c.Images = append(c.Images, gateway.NewImage([]byte{byte(i)}, "image/png"))
	}
	return c
}

func (s *stubGateway) GenerateFood(_ context.Context, name string) (*gateway.Carousel, error) {
	s.food = name
	return carousel(1, 1), nil
}

func (s *stubGateway) GenerateCharacter(context.Context) (*gateway.Carousel, error) {
	return nil, gateway.ErrAllVariantsFailed
}

func TestFoodTool_WritesFiles(t *testing.T) {
	stub := &stubGateway{}
	tl := &tools{gw: stub}
	dir := filepath.Join(t.TempDir(), "out")

	res, out, err := tl.food(context.Background(), nil, FoodInput{Name: "pizza", OutDir: dir})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stub.food != "pizza" {
		t.Errorf("expected food name passed through, got %q", stub.food)
	}
	if out.Generated != 1 || out.Requested != 1 || len(out.Files) != 1 {
		t.Errorf("unexpected output %+v", out)
	}
	if len(res.Content) != 1 {
		t.Fatalf("expected one content item, got %d", len(res.Content))
	}
	if img, ok := res.Content[0].(*mcp.ImageContent); !ok || img.MIMEType != "image/png" {
		t.Errorf("expected png image content, got %#v", res.Content[0])
	}
	if _, err := os.Stat(out.Files[0]); err != nil {
		t.Errorf("expected file on disk: %v", err)
	}
}

func TestCharacterTool_PropagatesFailure(t *testing.T) {
	tl := &tools{gw: &stubGateway{}}
	_, _, err := tl.character(context.Background(), nil, CharacterInput{})
	if !errors.Is(err, gateway.ErrAllVariantsFailed) {
		t.Errorf("expected ErrAllVariantsFailed, got %v", err)
	}
}

func TestPortraitTool_MissingPath(t *testing.T) {
	tl := &tools{gw: &stubGateway{}}
	_, _, err := tl.portrait(context.Background(), nil, PortraitInput{})
	if !errors.Is(err, gateway.ErrMissingInput) {
		t.Errorf("expected ErrMissingInput, got %v", err)
	}
}
