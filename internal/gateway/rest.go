package gateway

// rest.go talks to the Gemini REST endpoint directly. It is an alternative
// to the SDK backend for environments that pin an older SDK or need to
// point at a proxy.

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
)

// DefaultRESTBaseURL is the Gemini REST API base URL.
const DefaultRESTBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// restTimeout bounds a single call; image generation can take 10-30s.
const restTimeout = 120 * time.Second

// RESTBackend calls the image model over plain HTTPS.
type RESTBackend struct {
	apiKey string
	model  string
	client *resty.Client
}

// NewRESTBackend creates a REST backend. Empty baseURL and model select the
// defaults.
func NewRESTBackend(apiKey, model, baseURL string) *RESTBackend {
	if model == "" {
		model = GetModelName()
	}
	if baseURL == "" {
		baseURL = DefaultRESTBaseURL
	}
	return &RESTBackend{
		apiKey: apiKey,
		model:  model,
		client: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(restTimeout).
			SetHeader("Content-Type", "application/json"),
	}
}

// --- REST API request/response types ---

type geminiRequest struct {
	Contents         []geminiContent         `json:"contents"`
	GenerationConfig *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text       string          `json:"text,omitempty"`
	InlineData *geminiBlobData `json:"inlineData,omitempty"`
}

type geminiGenerationConfig struct {
	ResponseModalities []string           `json:"responseModalities,omitempty"`
	ImageConfig        *geminiImageConfig `json:"imageConfig,omitempty"`
}

type geminiImageConfig struct {
	AspectRatio string `json:"aspectRatio,omitempty"`
}

type geminiBlobData struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"` // base64 encoded
}

type geminiResponse struct {
	Candidates []geminiCandidate `json:"candidates"`
	Error      *geminiError      `json:"error,omitempty"`
}

type geminiCandidate struct {
	Content geminiContent `json:"content"`
}

type geminiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

// StatusError is a non-2xx reply from the REST endpoint.
type StatusError struct {
	Code    int
	Status  string
	Message string
}

func (e *StatusError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("API returned status %d (%s): %s", e.Code, e.Status, e.Message)
	}
	return fmt.Sprintf("API returned status %d: %s", e.Code, e.Message)
}

// Generate posts one generateContent request.
func (b *RESTBackend) Generate(ctx context.Context, req Request) (*Response, error) {
	body := geminiRequest{
		GenerationConfig: &geminiGenerationConfig{
			ResponseModalities: []string{"IMAGE"},
		},
	}
	if req.Aspect != "" {
		body.GenerationConfig.ImageConfig = &geminiImageConfig{AspectRatio: req.Aspect}
	}

	parts := make([]geminiPart, 0, len(req.Inputs)+1)
	for _, img := range req.Inputs {
		parts = append(parts, geminiPart{
			InlineData: &geminiBlobData{
				MIMEType: img.MIMEType,
				Data:     base64.StdEncoding.EncodeToString(img.Data),
			},
		})
	}
	parts = append(parts, geminiPart{Text: req.Directive})
	body.Contents = []geminiContent{{Role: "user", Parts: parts}}

	start := time.Now()
	log.Debug().
		Str("model", b.model).
		Int("inputs", len(req.Inputs)).
		Str("aspect", req.Aspect).
		Msg("Sending generation request to Gemini REST API")

	var result geminiResponse
	var apiErr geminiResponse
	resp, err := b.client.R().
		SetContext(ctx).
		SetHeader("x-goog-api-key", b.apiKey).
		SetBody(body).
		SetResult(&result).
		SetError(&apiErr).
		Post(fmt.Sprintf("/models/%s:generateContent", b.model))
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}

	if resp.IsError() {
		se := &StatusError{Code: resp.StatusCode(), Message: truncateString(resp.String(), 200)}
		if apiErr.Error != nil {
			se.Status = apiErr.Error.Status
			se.Message = apiErr.Error.Message
		}
		log.Error().
			Int("status", se.Code).
			Str("body", truncateString(resp.String(), 500)).
			Msg("Gemini REST API returned error")
		return nil, se
	}
	if result.Error != nil {
		return nil, &StatusError{Code: result.Error.Code, Status: result.Error.Status, Message: result.Error.Message}
	}

	out, err := fromREST(&result)
	if err != nil {
		return nil, err
	}

	log.Debug().
		Dur("duration", time.Since(start)).
		Int("candidates", len(out.Candidates)).
		Msg("Gemini REST generation returned")
	return out, nil
}

func fromREST(r *geminiResponse) (*Response, error) {
	out := &Response{}
	for _, c := range r.Candidates {
		var cand Candidate
		for _, p := range c.Content.Parts {
			switch {
			case p.InlineData != nil:
				decoded, err := base64.StdEncoding.DecodeString(p.InlineData.Data)
				if err != nil {
					return nil, fmt.Errorf("failed to decode image data: %w", err)
				}
				img := NewImage(decoded, p.InlineData.MIMEType)
				cand.Content.Parts = append(cand.Content.Parts, Part{Image: &img})
			case p.Text != "":
				cand.Content.Parts = append(cand.Content.Parts, Part{Text: p.Text})
			}
		}
		out.Candidates = append(out.Candidates, cand)
	}
	return out, nil
}

// truncateString truncates a string to maxLen, appending "..." if truncated.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
