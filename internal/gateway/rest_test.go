package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRESTBackend_Generate(t *testing.T) {
	var got geminiRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models/test-model:generateContent" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("x-goog-api-key") != "secret" {
			t.Error("missing API key header")
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("bad request body: %v", err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"done"},{"inlineData":{"mimeType":"image/png","data":"aGVsbG8="}}]}}]}`))
	}))
	defer srv.Close()

	b := NewRESTBackend("secret", "test-model", srv.URL)
	resp, err := b.Generate(context.Background(), Request{
		Inputs:    []Image{NewImage([]byte("in"), "image/jpeg")},
		Directive: "make it festive",
		Aspect:    "3:4",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	img, err := resp.FirstImage()
	if err != nil || string(img.Data) != "hello" || img.MIMEType != "image/png" {
		t.Errorf("unexpected image %q %q (err %v)", img.Data, img.MIMEType, err)
	}

	if len(got.Contents) != 1 || len(got.Contents[0].Parts) != 2 {
		t.Fatalf("unexpected request contents %+v", got.Contents)
	}
	parts := got.Contents[0].Parts
	if parts[0].InlineData == nil || parts[0].InlineData.Data != "aW4=" || parts[1].Text != "make it festive" {
		t.Errorf("expected image part then directive, got %+v", parts)
	}
	if got.GenerationConfig.ImageConfig == nil || got.GenerationConfig.ImageConfig.AspectRatio != "3:4" {
		t.Error("expected aspect ratio in generation config")
	}
	if len(got.GenerationConfig.ResponseModalities) != 1 || got.GenerationConfig.ResponseModalities[0] != "IMAGE" {
		t.Errorf("expected IMAGE modality, got %v", got.GenerationConfig.ResponseModalities)
	}
}

func TestRESTBackend_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"code":429,"message":"quota","status":"RESOURCE_EXHAUSTED"}}`))
	}))
	defer srv.Close()

	_, err := NewRESTBackend("k", "m", srv.URL).Generate(context.Background(), Request{Directive: "x"})
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if se.Code != 429 || se.Status != "RESOURCE_EXHAUSTED" {
		t.Errorf("unexpected status error %+v", se)
	}
	if Classify(err) != ClassQuota {
		t.Errorf("expected quota class, got %s", Classify(err))
	}
}
