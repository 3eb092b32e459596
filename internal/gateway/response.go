package gateway

import "errors"

// ErrEmptyResponse means the service answered without an inline image.
// It is retried like any transient failure.
var ErrEmptyResponse = errors.New("no image returned in response")

// Response is the backend-neutral shape of a generate-content reply.
type Response struct {
	Candidates []Candidate
}

// Candidate is one generated alternative.
type Candidate struct {
	Content Content
}

// Content holds the ordered parts of a candidate.
type Content struct {
	Parts []Part
}

// Part is either text or an inline image; exactly one field is set.
type Part struct {
	Text  string
	Image *Image
}

// FirstImage returns the first inline image of the first candidate.
func (r *Response) FirstImage() (Image, error) {
	if r == nil || len(r.Candidates) == 0 {
		return Image{}, ErrEmptyResponse
	}
	for _, p := range r.Candidates[0].Content.Parts {
		if p.Image != nil && !p.Image.Empty() {
			return *p.Image, nil
		}
	}
	return Image{}, ErrEmptyResponse
}

// Text concatenates the text parts of the first candidate. Models sometimes
// explain a refusal this way, which is useful in logs.
func (r *Response) Text() string {
	if r == nil || len(r.Candidates) == 0 {
		return ""
	}
	var s string
	for _, p := range r.Candidates[0].Content.Parts {
		s += p.Text
	}
	return s
}
