package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"gemini2mcp/internal/model"
)

func TestGenerate_ExtractsTextAndSearchResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("unexpected method: %s", r.Method)
		}
		if r.URL.Path != "/v1beta/models/gemini-2.0-flash:generateContent" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("key"); got != "test-key" {
			t.Fatalf("unexpected key query param: %q", got)
		}

		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if _, ok := req["contents"]; !ok {
			t.Fatalf("request body missing contents: %#v", req)
		}

		_, _ = w.Write([]byte(`{
			"candidates": [{
				"content": {"parts": [{"text": "the answer"}]},
				"grounding_metadata": {"search_entry_point": {"rendered_content": "<div>results</div>"}}
			}]
		}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "gemini-2.0-flash", "test-key")
	got, err := c.Generate(context.Background(), NewSearchPayload("question"))
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if got.Text != "the answer" {
		t.Errorf("unexpected text: %q", got.Text)
	}
	if got.SearchResult != "<div>results</div>" {
		t.Errorf("unexpected search result: %q", got.SearchResult)
	}
}

func TestGenerate_NoGroundingMetadata(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"plain"}]}}]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", "key")
	got, err := c.Generate(context.Background(), NewSearchPayload("q"))
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if got.Text != "plain" || got.SearchResult != "" {
		t.Errorf("unexpected result: %+v", got)
	}
}

func TestGenerate_MapsServerErrorToRetryableProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", "key")
	_, err := c.Generate(context.Background(), NewSearchPayload("q"))
	if err == nil {
		t.Fatalf("expected error")
	}
	var pe *model.ProviderError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ProviderError, got %T", err)
	}
	if pe.Code != "GEMINI_FAILED" || !pe.Retryable {
		t.Errorf("unexpected mapping: %+v", pe)
	}
	if pe.StatusCode != http.StatusInternalServerError {
		t.Errorf("unexpected status: %d", pe.StatusCode)
	}
}

func TestGenerate_MapsUnauthorizedToAuthError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", "key")
	_, err := c.Generate(context.Background(), NewSearchPayload("q"))
	var pe *model.ProviderError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ProviderError, got %v", err)
	}
	if pe.Code != "GEMINI_AUTH" || pe.Retryable {
		t.Errorf("unexpected mapping: %+v", pe)
	}
}

func TestGenerate_EmptyCandidatesIsAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", "key")
	_, err := c.Generate(context.Background(), NewSearchPayload("q"))
	if err == nil {
		t.Fatalf("expected error for empty candidates")
	}
	if !strings.Contains(err.Error(), "no candidates") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestGenerate_MissingAPIKeyFailsBeforeRequest(t *testing.T) {
	c := NewClient("http://127.0.0.1:0", "", "")
	_, err := c.Generate(context.Background(), NewSearchPayload("q"))
	var pe *model.ProviderError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ProviderError, got %v", err)
	}
	if pe.Code != "GEMINI_AUTH" {
		t.Errorf("unexpected code: %q", pe.Code)
	}
}
