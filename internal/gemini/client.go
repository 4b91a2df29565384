package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"gemini2mcp/internal/model"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com"
	defaultModel   = "gemini-2.0-flash"
	defaultTimeout = 60 * time.Second
)

type Client struct {
	BaseURL    string
	Model      string
	APIKey     string
	HTTPClient *http.Client
}

func NewClient(baseURL, modelName, apiKey string) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultBaseURL
	}
	if strings.TrimSpace(modelName) == "" {
		modelName = defaultModel
	}
	return &Client{
		BaseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		Model:      strings.TrimSpace(modelName),
		APIKey:     strings.TrimSpace(apiKey),
		HTTPClient: &http.Client{Timeout: defaultTimeout},
	}
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		GroundingMetadata *struct {
			SearchEntryPoint *struct {
				RenderedContent string `json:"rendered_content"`
			} `json:"search_entry_point"`
		} `json:"grounding_metadata"`
	} `json:"candidates"`
}

// Generate issues one generateContent call and extracts the answer text plus
// the rendered search snippet when grounding metadata is present. There are
// no retries; the HTTP client timeout is the only deadline.
func (c *Client) Generate(ctx context.Context, payload Payload) (*GenerationResult, error) {
	apiKey := strings.TrimSpace(c.APIKey)
	if apiKey == "" {
		return nil, &model.ProviderError{
			Code:      "GEMINI_AUTH",
			Message:   "missing Gemini API key",
			Retryable: false,
		}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, &model.ProviderError{Code: "GEMINI_FAILED", Message: "failed to marshal generation request", Retryable: false, Cause: err}
	}

	baseURL := strings.TrimSpace(c.BaseURL)
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")

	modelName := strings.TrimSpace(c.Model)
	if modelName == "" {
		modelName = defaultModel
	}

	reqURL := baseURL + "/v1beta/models/" + url.PathEscape(modelName) + ":generateContent?key=" + url.QueryEscape(apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(body))
	if err != nil {
		return nil, &model.ProviderError{Code: "GEMINI_FAILED", Message: "failed to build generation request", Retryable: false, Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, &model.ProviderError{Code: "GEMINI_FAILED", Message: "generation request failed", Retryable: true, Cause: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &model.ProviderError{Code: "GEMINI_FAILED", Message: "failed to read generation response", Retryable: true, StatusCode: resp.StatusCode, Cause: err}
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		message := strings.TrimSpace(string(respBytes))
		if message == "" {
			message = fmt.Sprintf("gemini returned status %d", resp.StatusCode)
		}
		return nil, mapProviderError(resp.StatusCode, message)
	}

	var parsed generateResponse
	if err := json.Unmarshal(respBytes, &parsed); err != nil {
		return nil, &model.ProviderError{Code: "GEMINI_FAILED", Message: "failed to decode generation response", Retryable: false, Cause: err}
	}

	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return nil, &model.ProviderError{Code: "GEMINI_FAILED", Message: "generation response had no candidates", Retryable: false, StatusCode: resp.StatusCode}
	}

	result := &GenerationResult{
		Text: parsed.Candidates[0].Content.Parts[0].Text,
	}
	if gm := parsed.Candidates[0].GroundingMetadata; gm != nil && gm.SearchEntryPoint != nil {
		result.SearchResult = gm.SearchEntryPoint.RenderedContent
	}
	return result, nil
}

func mapProviderError(statusCode int, message string) error {
	pe := &model.ProviderError{
		Code:       "GEMINI_FAILED",
		Message:    message,
		Retryable:  false,
		StatusCode: statusCode,
	}

	switch {
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		pe.Code = "GEMINI_AUTH"
		pe.Retryable = false
	case statusCode == http.StatusTooManyRequests:
		pe.Code = "GEMINI_RATE_LIMIT"
		pe.Retryable = true
	case statusCode >= http.StatusInternalServerError:
		pe.Retryable = true
	default:
		pe.Retryable = false
	}

	return pe
}
