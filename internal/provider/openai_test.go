package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/lailalab/aigateway/internal/domain"
	"github.com/lailalab/aigateway/internal/testutil"
)

func TestOpenAI_Generate(t *testing.T) {
	if os.Getenv("OPENAI_API_KEY") == "" && os.Getenv("VCR_MODE") == "record" {
		t.Skip("Skipping test: OPENAI_API_KEY not set")
	}

	rec, cleanup := testutil.NewVCRRecorder(t, "openai_generate")
	defer cleanup()

	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		apiKey = "test-key"
	}

	o := NewOpenAI(WithOpenAIHTTPClient(testutil.VCRHTTPClient(rec)))

	result, err := o.Generate(context.Background(), &GenerateRequest{
		Model:        "gpt-4o-mini",
		Prompt:       "Hello",
		SystemPrompt: "You are a patient tutor.",
		APIKey:       apiKey,
	})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if result.Text == "" {
		t.Error("Expected text in response")
	}
	if result.PromptTokens == 0 {
		t.Error("Expected prompt token usage")
	}
}

func TestOpenAI_GenerateSystemMessage(t *testing.T) {
	var captured chatCompletionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&captured)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"index":0,"message":{"role":"assistant","content":"ok"},"finish_reason":"stop"}],"usage":{"prompt_tokens":1,"completion_tokens":1,"total_tokens":2}}`))
	}))
	defer srv.Close()

	o := NewOpenAI(WithOpenAIBaseURL(srv.URL))

	_, err := o.Generate(context.Background(), &GenerateRequest{
		Model:        "gpt-4o-mini",
		Prompt:       "Hello",
		SystemPrompt: "Stay on topic.",
		APIKey:       "key",
	})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if len(captured.Messages) != 2 {
		t.Fatalf("messages = %d, want 2 (system + user)", len(captured.Messages))
	}
	if captured.Messages[0].Role != "system" || captured.Messages[0].Content != "Stay on topic." {
		t.Errorf("first message = %+v, want the system prompt", captured.Messages[0])
	}
	if captured.MaxTokens != maxResponseTokens {
		t.Errorf("max_tokens = %d, want %d", captured.MaxTokens, maxResponseTokens)
	}
}

func TestOpenAI_GenerateAuthError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"Incorrect API key provided.","type":"invalid_request_error","code":"invalid_api_key"}}`))
	}))
	defer srv.Close()

	o := NewOpenAI(WithOpenAIBaseURL(srv.URL))

	_, err := o.Generate(context.Background(), &GenerateRequest{
		Model:  "gpt-4o-mini",
		Prompt: "Hello",
		APIKey: "bad-key",
	})
	if err == nil {
		t.Fatal("Generate() expected error")
	}

	gerr, ok := err.(*domain.GatewayError)
	if !ok {
		t.Fatalf("error type = %T, want *domain.GatewayError", err)
	}
	if gerr.StatusCode != http.StatusUnauthorized {
		t.Errorf("StatusCode = %d, want 401", gerr.StatusCode)
	}
	if gerr.Message != "Incorrect API key provided." {
		t.Errorf("Message = %q, want the upstream message", gerr.Message)
	}
}

func TestOpenAI_GenerateEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	o := NewOpenAI(WithOpenAIBaseURL(srv.URL))

	_, err := o.Generate(context.Background(), &GenerateRequest{
		Model:  "gpt-4o-mini",
		Prompt: "Hello",
		APIKey: "key",
	})
	if err == nil {
		t.Error("Generate() expected error for empty choices")
	}
}
