package gateway

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"
)

// GenAIBackend calls the image model through the Go SDK.
type GenAIBackend struct {
	client *genai.Client
	model  string
}

// NewGeminiClient creates a Gemini API client for apiKey.
func NewGeminiClient(ctx context.Context, apiKey string) (*genai.Client, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return client, nil
}

// NewGenAIBackend wraps an existing client. An empty model selects
// GetModelName().
func NewGenAIBackend(client *genai.Client, model string) *GenAIBackend {
	if model == "" {
		model = GetModelName()
	}
	return &GenAIBackend{client: client, model: model}
}

// Generate sends the inputs followed by the directive and asks for image
// output only.
func (b *GenAIBackend) Generate(ctx context.Context, req Request) (*Response, error) {
	parts := make([]*genai.Part, 0, len(req.Inputs)+1)
	for _, img := range req.Inputs {
		parts = append(parts, &genai.Part{
			InlineData: &genai.Blob{
				MIMEType: img.MIMEType,
				Data:     img.Data,
			},
		})
	}
	parts = append(parts, &genai.Part{Text: req.Directive})

	config := &genai.GenerateContentConfig{}
	config.ResponseModalities = append(config.ResponseModalities, "IMAGE")
	if req.Aspect != "" {
		config.ImageConfig = &genai.ImageConfig{AspectRatio: req.Aspect}
	}

	contents := []*genai.Content{{Role: "user", Parts: parts}}

	start := time.Now()
	log.Debug().
		Str("model", b.model).
		Int("inputs", len(req.Inputs)).
		Str("aspect", req.Aspect).
		Msg("Sending generation request to Gemini")

	resp, err := b.client.Models.GenerateContent(ctx, b.model, contents, config)
	if err != nil {
		return nil, fmt.Errorf("Gemini generate content failed: %w", err)
	}

	log.Debug().
		Dur("duration", time.Since(start)).
		Int("candidates", len(resp.Candidates)).
		Msg("Gemini generation returned")

	return fromGenAI(resp), nil
}

func fromGenAI(resp *genai.GenerateContentResponse) *Response {
	out := &Response{}
	if resp == nil {
		return out
	}
	for _, c := range resp.Candidates {
		var cand Candidate
		if c != nil && c.Content != nil {
			for _, p := range c.Content.Parts {
				if p == nil {
					continue
				}
				if p.InlineData != nil {
					img := NewImage(p.InlineData.Data, p.InlineData.MIMEType)
					cand.Content.Parts = append(cand.Content.Parts, Part{Image: &img})
				} else if p.Text != "" {
					cand.Content.Parts = append(cand.Content.Parts, Part{Text: p.Text})
				}
			}
		}
		out.Candidates = append(out.Candidates, cand)
	}
	return out
}
