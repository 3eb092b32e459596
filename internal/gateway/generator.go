package gateway

import "context"

// Request is one logical image-synthesis unit: the input images followed
// by exactly one directive.
type Request struct {
	Inputs    []Image
	Directive string
	// Aspect is the requested output ratio such as "16:9"; empty leaves it
	// to the model.
	Aspect string
}

// Generator performs a single generate-content call. Implementations do
// not retry; the Gateway owns recovery.
type Generator interface {
	Generate(ctx context.Context, req Request) (*Response, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, req Request) (*Response, error)

// Generate calls f.
func (f GeneratorFunc) Generate(ctx context.Context, req Request) (*Response, error) {
	return f(ctx, req)
}
