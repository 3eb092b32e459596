package gateway

import (
	"bytes"
	"errors"
	"testing"
)

func TestImage_DataURI(t *testing.T) {
	img := NewImage([]byte("hello"), "image/jpeg")
	if got := img.DataURI(); got != "data:image/jpeg;base64,aGVsbG8=" {
		t.Errorf("unexpected data URI %q", got)
	}

	back, err := ParseDataURI(img.DataURI())
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if !bytes.Equal(back.Data, img.Data) || back.MIMEType != "image/jpeg" {
		t.Errorf("round trip mismatch: %+v", back)
	}
}

func TestParseDataURI_DefaultMIME(t *testing.T) {
	img, err := ParseDataURI("data:;base64,aGVsbG8=")
	if err != nil {
		t.Fatal(err)
	}
	if img.MIMEType != DefaultMIMEType {
		t.Errorf("expected %s, got %s", DefaultMIMEType, img.MIMEType)
	}
}

func TestParseDataURI_Invalid(t *testing.T) {
	tests := map[string]string{
		"no prefix":  "image/png;base64,aGVsbG8=",
		"no comma":   "data:image/png;base64",
		"not base64": "data:image/png,hello",
		"bad data":   "data:image/png;base64,!!!",
		"empty":      "data:image/png;base64,",
	}
	for name, uri := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := ParseDataURI(uri); !errors.Is(err, ErrInvalidDataURI) {
				t.Errorf("expected ErrInvalidDataURI, got %v", err)
			}
		})
	}
}

func TestResponse_FirstImage(t *testing.T) {
	a := NewImage([]byte("a"), "image/png")
	b := NewImage([]byte("b"), "image/png")

	tests := []struct {
		name    string
		resp    *Response
		want    string
		wantErr bool
	}{
		{"nil", nil, "", true},
		{"no candidates", &Response{}, "", true},
		{"text only", &Response{Candidates: []Candidate{{Content: Content{Parts: []Part{{Text: "no"}}}}}}, "", true},
		{"first image wins", &Response{Candidates: []Candidate{{Content: Content{Parts: []Part{{Text: "x"}, {Image: &a}, {Image: &b}}}}}}, "a", false},
		{"only first candidate", &Response{Candidates: []Candidate{
			{Content: Content{Parts: []Part{{Text: "x"}}}},
			{Content: Content{Parts: []Part{{Image: &b}}}},
		}}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := tt.resp.FirstImage()
			if tt.wantErr {
				if !errors.Is(err, ErrEmptyResponse) {
					t.Errorf("expected ErrEmptyResponse, got %v", err)
				}
				return
			}
			if err != nil || string(img.Data) != tt.want {
				t.Errorf("expected %q, got %q (err %v)", tt.want, img.Data, err)
			}
		})
	}
}
