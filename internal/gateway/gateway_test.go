package gateway

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fpang/birthday-surprise/internal/metrics"
	"github.com/fpang/birthday-surprise/internal/retry"
)

func TestMain(m *testing.M) {
	metrics.SetOutput(io.Discard)
	os.Exit(m.Run())
}

// fakeGenerator answers with a one-byte image whose content is the index of
// the call, unless fail says otherwise.
type fakeGenerator struct {
	mu    sync.Mutex
	calls []Request
	fail  func(req Request) error
}

func (f *fakeGenerator) Generate(_ context.Context, req Request) (*Response, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	n := len(f.calls)
	f.mu.Unlock()

	if f.fail != nil {
		if err := f.fail(req); err != nil {
			return nil, err
		}
	}
	img := NewImage([]byte(req.Directive[:8]+string(rune('0'+n%10))), "image/png")
	return &Response{Candidates: []Candidate{{Content: Content{Parts: []Part{
		{Text: "here you go"},
		{Image: &img},
	}}}}}, nil
}

func fastRetry() Option {
	return WithRetry(retry.WithInitialDelay(time.Millisecond))
}

func photo() Image {
	return NewImage([]byte{0xff, 0xd8, 0xff}, "image/jpeg")
}

func TestGateway_PartialFailureKeepsOrder(t *testing.T) {
	gen := &fakeGenerator{fail: func(req Request) error {
		if strings.Contains(req.Directive, "Pose 2:") || strings.Contains(req.Directive, "Pose 4:") {
			return errors.New("503 service unavailable")
		}
		return nil
	}}
	g := New(gen, fastRetry())

	got, err := g.CreateGroupCelebration(context.Background(), photo(), photo(), photo())
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if got.Requested != 4 {
		t.Errorf("expected 4 requested, got %d", got.Requested)
	}
	if len(got.Images) != 2 {
		t.Fatalf("expected 2 images, got %d", len(got.Images))
	}
	if !got.Degraded() {
		t.Error("expected degraded carousel")
	}

	// 1 call for variant 1, 3 for variant 2, 1 for variant 3, 3 for variant 4.
	if len(gen.calls) != 8 {
		t.Fatalf("expected 8 calls, got %d", len(gen.calls))
	}
	if !strings.Contains(gen.calls[0].Directive, "Pose 1:") || !strings.Contains(gen.calls[4].Directive, "Pose 3:") {
		t.Error("variants ran out of order")
	}
	first, third := string(got.Images[0].Data), string(got.Images[1].Data)
	if !strings.HasSuffix(first, "1") || !strings.HasSuffix(third, "5") {
		t.Errorf("expected results of calls 1 and 5, got %q and %q", first, third)
	}
	for _, c := range gen.calls {
		if c.Aspect != "16:9" || len(c.Inputs) != 3 {
			t.Errorf("unexpected request shape: aspect=%q inputs=%d", c.Aspect, len(c.Inputs))
		}
	}
}

func TestGateway_AllVariantsFail(t *testing.T) {
	gen := &fakeGenerator{fail: func(Request) error { return errors.New("boom") }}
	g := New(gen, fastRetry())

	got, err := g.StylizePortrait(context.Background(), photo())
	if got != nil {
		t.Errorf("expected nil carousel, got %+v", got)
	}
	if !errors.Is(err, ErrAllVariantsFailed) {
		t.Fatalf("expected ErrAllVariantsFailed, got %v", err)
	}
	if len(gen.calls) != 9 {
		t.Errorf("expected 3 variants x 3 attempts = 9 calls, got %d", len(gen.calls))
	}
}

func TestGateway_EmptyResponseIsRetried(t *testing.T) {
	calls := 0
	gen := GeneratorFunc(func(_ context.Context, req Request) (*Response, error) {
		calls++
		if calls == 1 {
			return &Response{Candidates: []Candidate{{Content: Content{Parts: []Part{{Text: "sorry"}}}}}}, nil
		}
		img := NewImage([]byte("food"), "")
		return &Response{Candidates: []Candidate{{Content: Content{Parts: []Part{{Image: &img}}}}}}, nil
	})
	g := New(gen, fastRetry())

	got, err := g.GenerateFood(context.Background(), "  pani puri ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 2 {
		t.Errorf("expected 2 calls, got %d", calls)
	}
	if got.First().MIMEType != DefaultMIMEType {
		t.Errorf("expected default MIME type, got %q", got.First().MIMEType)
	}
}

func TestGateway_OperationShapes(t *testing.T) {
	tests := []struct {
		name     string
		call     func(*Gateway) (*Carousel, error)
		variants int
		inputs   int
		aspect   string
	}{
		{"portrait", func(g *Gateway) (*Carousel, error) { return g.StylizePortrait(context.Background(), photo()) }, 3, 1, "3:4"},
		{"outfit", func(g *Gateway) (*Carousel, error) { return g.ChangeOutfit(context.Background(), photo(), photo()) }, 1, 2, "9:16"},
		{"food", func(g *Gateway) (*Carousel, error) { return g.GenerateFood(context.Background(), "pizza") }, 1, 0, ""},
		{"character", func(g *Gateway) (*Carousel, error) { return g.GenerateCharacter(context.Background()) }, 1, 0, ""},
		{"photoshoot", func(g *Gateway) (*Carousel, error) {
			return g.CreateCouplePhotoshoot(context.Background(), photo(), photo())
		}, 6, 2, "9:16"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &fakeGenerator{}
			got, err := tt.call(New(gen, fastRetry()))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got.Images) != tt.variants || got.Requested != tt.variants {
				t.Errorf("expected %d images, got %d of %d", tt.variants, len(got.Images), got.Requested)
			}
			for _, c := range gen.calls {
				if len(c.Inputs) != tt.inputs || c.Aspect != tt.aspect {
					t.Errorf("unexpected request: inputs=%d aspect=%q", len(c.Inputs), c.Aspect)
				}
			}
		})
	}
}

func TestGateway_MissingInputMakesNoCalls(t *testing.T) {
	gen := &fakeGenerator{}
	g := New(gen, fastRetry())
	ctx := context.Background()

	checks := []error{
		func() error { _, err := g.StylizePortrait(ctx, Image{}); return err }(),
		func() error { _, err := g.CreateGroupCelebration(ctx, photo(), Image{}, photo()); return err }(),
		func() error { _, err := g.ChangeOutfit(ctx, Image{}, photo()); return err }(),
		func() error { _, err := g.GenerateFood(ctx, "   "); return err }(),
		func() error { _, err := g.CreateCouplePhotoshoot(ctx, photo(), Image{}); return err }(),
	}
	for i, err := range checks {
		if !errors.Is(err, ErrMissingInput) {
			t.Errorf("check %d: expected ErrMissingInput, got %v", i, err)
		}
	}
	if len(gen.calls) != 0 {
		t.Errorf("expected no generator calls, got %d", len(gen.calls))
	}
}

func TestGateway_CancelledContextStopsVariants(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	gen := &fakeGenerator{fail: func(Request) error {
		cancel()
		return errors.New("down")
	}}
	g := New(gen, fastRetry())

	_, err := g.CreateCouplePhotoshoot(ctx, photo(), photo())
	if !errors.Is(err, ErrAllVariantsFailed) {
		t.Fatalf("expected ErrAllVariantsFailed, got %v", err)
	}
	if len(gen.calls) != 1 {
		t.Errorf("expected generation to stop after cancel, got %d calls", len(gen.calls))
	}
}
