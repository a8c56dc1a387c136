package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const defaultGoogleBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// GoogleOption configures the Google adapter.
type GoogleOption func(*Google)

// WithGoogleBaseURL sets a custom API base URL.
func WithGoogleBaseURL(baseURL string) GoogleOption {
	return func(g *Google) {
		g.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

// WithGoogleHTTPClient sets a custom HTTP client.
func WithGoogleHTTPClient(client *http.Client) GoogleOption {
	return func(g *Google) {
		g.httpClient = client
	}
}

// Google adapts canonical calls to the Gemini generateContent API.
type Google struct {
	baseURL    string
	httpClient *http.Client
}

// NewGoogle creates a Google adapter.
func NewGoogle(opts ...GoogleOption) *Google {
	g := &Google{
		baseURL:    defaultGoogleBaseURL,
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Google) Name() string {
	return "google"
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
	Temperature     float64 `json:"temperature,omitempty"`
}

type geminiRequest struct {
	Contents         []geminiContent         `json:"contents"`
	GenerationConfig *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiCandidate struct {
	Content      geminiContent `json:"content"`
	FinishReason string        `json:"finishReason"`
}

type geminiUsageMetadata struct {
	PromptTokenCount     int `json:"promptTokenCount"`
	CandidatesTokenCount int `json:"candidatesTokenCount"`
	TotalTokenCount      int `json:"totalTokenCount"`
}

type geminiResponse struct {
	Candidates    []geminiCandidate    `json:"candidates"`
	UsageMetadata *geminiUsageMetadata `json:"usageMetadata"`
}

// Generate sends a generateContent request. Gemini has no system role in
// this shape, so the system prompt is concatenated ahead of the user prompt
// in a single user message.
func (g *Google) Generate(ctx context.Context, req *GenerateRequest) (*GenerateResult, error) {
	fullPrompt := req.Prompt
	if req.SystemPrompt != "" {
		fullPrompt = req.SystemPrompt + "\n\n" + req.Prompt
	}

	apiReq := &geminiRequest{
		Contents: []geminiContent{
			{Role: "user", Parts: []geminiPart{{Text: fullPrompt}}},
		},
		GenerationConfig: &geminiGenerationConfig{
			MaxOutputTokens: maxResponseTokens,
			Temperature:     temperature,
		},
	}

	body, err := json.Marshal(apiReq)
	if err != nil {
		return nil, translateGoogleError(fmt.Errorf("marshal request: %w", err))
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", g.baseURL, req.Model, req.APIKey)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, translateGoogleError(fmt.Errorf("create request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return nil, translateGoogleError(fmt.Errorf("request failed: %w", err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, translateGoogleError(fmt.Errorf("read response: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		return nil, googleAPIError(resp.StatusCode, respBody)
	}

	var apiResp geminiResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return nil, translateGoogleError(fmt.Errorf("unmarshal response: %w", err))
	}

	if len(apiResp.Candidates) == 0 || len(apiResp.Candidates[0].Content.Parts) == 0 {
		return nil, translateGoogleError(fmt.Errorf("response contained no candidates"))
	}

	result := &GenerateResult{Text: apiResp.Candidates[0].Content.Parts[0].Text}
	if apiResp.UsageMetadata != nil {
		result.PromptTokens = apiResp.UsageMetadata.PromptTokenCount
		result.CompletionTokens = apiResp.UsageMetadata.CandidatesTokenCount
	}
	return result, nil
}
