// Package gateway turns input images plus a directive into generated
// images. Every call to the image model goes through here: requests are
// built from the embedded directives, each variant is retried with backoff,
// and partial failures are folded into a single Carousel.
//
// Variants of one operation run strictly one after another. A variant that
// still fails after its retries is logged and dropped; the operation
// succeeds if at least one variant produced an image and returns the
// successes in the order they were attempted. Only when every variant
// fails does the caller see an error, always wrapping ErrAllVariantsFailed.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fpang/birthday-surprise/internal/assets"
	"github.com/fpang/birthday-surprise/internal/metrics"
	"github.com/fpang/birthday-surprise/internal/retry"
	"github.com/rs/zerolog/log"
)

var (
	// ErrAllVariantsFailed is returned when an operation produced no image.
	ErrAllVariantsFailed = errors.New("all generation variants failed")

	// ErrMissingInput is returned before any call when a required image or
	// text input is empty.
	ErrMissingInput = errors.New("missing generation input")
)

// Carousel is the result of one gateway operation. Images is never empty.
type Carousel struct {
	Images    []Image
	Requested int
}

// Degraded reports whether some variants were dropped.
func (c *Carousel) Degraded() bool {
	return c != nil && len(c.Images) < c.Requested
}

// First returns the first image. Single-variant operations use it.
func (c *Carousel) First() Image {
	if c == nil || len(c.Images) == 0 {
		return Image{}
	}
	return c.Images[0]
}

// Gateway runs generation operations against a Generator.
type Gateway struct {
	gen        Generator
	directives *assets.Directives
	cast       assets.Cast
	retryOpts  []retry.Option
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithRetry overrides the per-variant retry policy.
func WithRetry(opts ...retry.Option) Option {
	return func(g *Gateway) { g.retryOpts = opts }
}

// WithDirectives replaces the embedded directive set.
func WithDirectives(d *assets.Directives) Option {
	return func(g *Gateway) { g.directives = d }
}

// WithCast overrides the names substituted into directives.
func WithCast(c assets.Cast) Option {
	return func(g *Gateway) { g.cast = c }
}

// New creates a Gateway over gen.
func New(gen Generator, opts ...Option) *Gateway {
	g := &Gateway{gen: gen, directives: assets.Default()}
	for _, opt := range opts {
		opt(g)
	}
	if g.cast == (assets.Cast{}) {
		g.cast = g.directives.Cast()
	}
	return g
}

// Cast returns the names the gateway renders into directives.
func (g *Gateway) Cast() assets.Cast {
	return g.cast
}

// StylizePortrait restyles one photo into three party portraits.
func (g *Gateway) StylizePortrait(ctx context.Context, photo Image) (*Carousel, error) {
	if photo.Empty() {
		return nil, fmt.Errorf("%w: portrait photo", ErrMissingInput)
	}
	return g.run(ctx, assets.OpPortrait, []Image{photo}, assets.Data{})
}

// CreateGroupCelebration composites the generated portrait with the two
// companion photos into four group shots.
func (g *Gateway) CreateGroupCelebration(ctx context.Context, portrait, partner, friend Image) (*Carousel, error) {
	switch {
	case portrait.Empty():
		return nil, fmt.Errorf("%w: portrait", ErrMissingInput)
	case partner.Empty(), friend.Empty():
		return nil, fmt.Errorf("%w: companion photo", ErrMissingInput)
	}
	return g.run(ctx, assets.OpCelebration, []Image{portrait, partner, friend}, assets.Data{})
}

// ChangeOutfit dresses the portrait subject in the outfit photo.
func (g *Gateway) ChangeOutfit(ctx context.Context, portrait, outfit Image) (*Carousel, error) {
	switch {
	case portrait.Empty():
		return nil, fmt.Errorf("%w: portrait", ErrMissingInput)
	case outfit.Empty():
		return nil, fmt.Errorf("%w: outfit photo", ErrMissingInput)
	}
	return g.run(ctx, assets.OpOutfit, []Image{portrait, outfit}, assets.Data{})
}

// GenerateFood renders a photograph of the named food. It may be called
// repeatedly.
func (g *Gateway) GenerateFood(ctx context.Context, name string) (*Carousel, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: food name", ErrMissingInput)
	}
	return g.run(ctx, assets.OpFood, nil, assets.Data{Subject: name})
}

// GenerateCharacter renders the fixed kitchen character image.
func (g *Gateway) GenerateCharacter(ctx context.Context) (*Carousel, error) {
	return g.run(ctx, assets.OpCharacter, nil, assets.Data{})
}

// CreateCouplePhotoshoot composites two people into six travel scenes.
func (g *Gateway) CreateCouplePhotoshoot(ctx context.Context, partner, honoree Image) (*Carousel, error) {
	if partner.Empty() || honoree.Empty() {
		return nil, fmt.Errorf("%w: couple photo", ErrMissingInput)
	}
	return g.run(ctx, assets.OpPhotoshoot, []Image{partner, honoree}, assets.Data{})
}

func (g *Gateway) run(ctx context.Context, op string, inputs []Image, data assets.Data) (*Carousel, error) {
	data.Cast = g.cast
	directives, err := g.directives.Render(op, data)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s directives: %w", op, err)
	}
	aspect := g.directives.Aspect(op)

	start := time.Now()
	log.Info().
		Str("operation", op).
		Int("variants", len(directives)).
		Int("inputs", len(inputs)).
		Msg("Starting generation")

	result := &Carousel{Requested: len(directives)}
	var lastErr error
	for i, directive := range directives {
		if ctx.Err() != nil {
			lastErr = context.Cause(ctx)
			break
		}
		img, err := g.variant(ctx, op, i+1, Request{Inputs: inputs, Directive: directive, Aspect: aspect})
		if err != nil {
			lastErr = err
			continue
		}
		result.Images = append(result.Images, img)
	}

	if len(result.Images) == 0 {
		log.Error().
			Err(lastErr).
			Str("operation", op).
			Int("variants", result.Requested).
			Dur("duration", time.Since(start)).
			Msg("Generation failed for every variant")
		return nil, fmt.Errorf("%w: %s: %w", ErrAllVariantsFailed, op, lastErr)
	}

	log.Info().
		Str("operation", op).
		Int("succeeded", len(result.Images)).
		Int("variants", result.Requested).
		Dur("duration", time.Since(start)).
		Msg("Generation complete")
	return result, nil
}

func (g *Gateway) variant(ctx context.Context, op string, index int, req Request) (Image, error) {
	start := time.Now()
	attempts := 0
	img, err := retry.Do(ctx, func(ctx context.Context) (Image, error) {
		attempts++
		resp, err := g.gen.Generate(ctx, req)
		if err != nil {
			return Image{}, err
		}
		img, err := resp.FirstImage()
		if err != nil {
			log.Debug().
				Str("operation", op).
				Str("text", truncateString(resp.Text(), 200)).
				Msg("Response carried no image")
			return Image{}, err
		}
		return img, nil
	}, g.retryOpts...)
	elapsed := time.Since(start)

	outcome := "success"
	class := Class("")
	if err != nil {
		class = Classify(err)
		outcome = "failed"
		log.Warn().
			Err(err).
			Str("operation", op).
			Int("variant", index).
			Int("attempts", attempts).
			Str("class", string(class)).
			Msg("Variant failed after retries, dropping it")
	}

	metrics.New(metrics.Namespace).
		Dimension("Operation", op).
		Dimension("Outcome", outcome).
		Metric("VariantLatencyMs", float64(elapsed.Milliseconds()), metrics.UnitMilliseconds).
		Metric("VariantAttempts", float64(attempts), metrics.UnitCount).
		Count("VariantCount").
		Property("variant", index).
		Property("errorClass", string(class)).
		Flush()

	return img, err
}
