package gateway

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/lailalab/aigateway/internal/credentials"
	"github.com/lailalab/aigateway/internal/domain"
	"github.com/lailalab/aigateway/internal/provider"
	"github.com/lailalab/aigateway/internal/registry"
)

type fakeAdapter struct {
	name     string
	text     string
	err      error
	calls    int
	lastReq  *provider.GenerateRequest
	lastKeys []string
}

func (f *fakeAdapter) Name() string { return f.name }

func (f *fakeAdapter) Generate(_ context.Context, req *provider.GenerateRequest) (*provider.GenerateResult, error) {
	f.calls++
	f.lastReq = req
	f.lastKeys = append(f.lastKeys, req.APIKey)
	if f.err != nil {
		return nil, f.err
	}
	return &provider.GenerateResult{Text: f.text}, nil
}

func newTestGateway(systemKeys map[string]string, adapters map[string]provider.Adapter) *Gateway {
	reg := registry.New()
	resolver := credentials.NewResolver(reg, systemKeys, "google")
	return New(resolver, reg, adapters, WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
}

func bothKeys() map[string]string {
	return map[string]string{
		"google": "google-system-key",
		"openai": "openai-system-key",
	}
}

func TestGateway_Success(t *testing.T) {
	google := &fakeAdapter{name: "google", text: "generated text"}
	gw := newTestGateway(bothKeys(), map[string]provider.Adapter{"google": google})

	outcome := gw.Call(context.Background(), &domain.CallRequest{Prompt: "hello"})

	if outcome.Degraded {
		t.Fatal("Degraded = true, want false")
	}
	if outcome.Text != "generated text" {
		t.Errorf("Text = %q, want %q", outcome.Text, "generated text")
	}
	if outcome.ModelUsed != "gemini-1.5-flash" {
		t.Errorf("ModelUsed = %v, want the resolved default model", outcome.ModelUsed)
	}
	if outcome.Provider != "google" {
		t.Errorf("Provider = %v, want google", outcome.Provider)
	}
}

func TestGateway_ExplicitServiceAndModel(t *testing.T) {
	openai := &fakeAdapter{name: "openai", text: "ok"}
	gw := newTestGateway(bothKeys(), map[string]provider.Adapter{"openai": openai})

	outcome := gw.Call(context.Background(), &domain.CallRequest{
		Prompt:  "hello",
		Service: "openai",
		Model:   "gpt-4o",
	})

	if outcome.ModelUsed != "gpt-4o" {
		t.Errorf("ModelUsed = %v, want gpt-4o", outcome.ModelUsed)
	}
	if openai.lastReq.Model != "gpt-4o" {
		t.Errorf("adapter received model %v, want gpt-4o", openai.lastReq.Model)
	}
}

func TestGateway_FallbackOnPrimaryFailure(t *testing.T) {
	google := &fakeAdapter{name: "google", err: domain.ErrProviderRequest("google", "quota exceeded")}
	openai := &fakeAdapter{name: "openai", text: "fallback answer"}
	gw := newTestGateway(bothKeys(), map[string]provider.Adapter{
		"google": google,
		"openai": openai,
	})

	outcome := gw.Call(context.Background(), &domain.CallRequest{Prompt: "hello"})

	if outcome.Degraded {
		t.Fatal("Degraded = true, want fallback success")
	}
	if outcome.Provider != "openai" {
		t.Errorf("Provider = %v, want openai", outcome.Provider)
	}
	// The fallback runs with its own default model, not the primary's.
	if outcome.ModelUsed != "gpt-4o-mini" {
		t.Errorf("ModelUsed = %v, want gpt-4o-mini", outcome.ModelUsed)
	}
	if google.calls != 1 || openai.calls != 1 {
		t.Errorf("calls = google:%d openai:%d, want 1 each", google.calls, openai.calls)
	}
}

func TestGateway_AtMostTwoAttempts(t *testing.T) {
	google := &fakeAdapter{name: "google", err: domain.ErrProviderRequest("google", "down")}
	openai := &fakeAdapter{name: "openai", err: domain.ErrProviderRequest("openai", "down")}
	gw := newTestGateway(bothKeys(), map[string]provider.Adapter{
		"google": google,
		"openai": openai,
	})

	outcome := gw.Call(context.Background(), &domain.CallRequest{Prompt: "hello"})

	if !outcome.Degraded {
		t.Fatal("Degraded = false, want degraded outcome")
	}
	if total := google.calls + openai.calls; total != 2 {
		t.Errorf("total provider attempts = %d, want 2", total)
	}
}

func TestGateway_DegradedOutcome(t *testing.T) {
	gw := newTestGateway(nil, map[string]provider.Adapter{})

	outcome := gw.Call(context.Background(), &domain.CallRequest{Prompt: "hello"})

	if !outcome.Degraded {
		t.Fatal("Degraded = false, want true")
	}
	if outcome.ModelUsed != domain.OfflineModel {
		t.Errorf("ModelUsed = %v, want %v", outcome.ModelUsed, domain.OfflineModel)
	}
	if !strings.Contains(outcome.Text, "test response") {
		t.Error("degraded text missing the offline marker")
	}
}

func TestGateway_UserKeyPinsProvider(t *testing.T) {
	google := &fakeAdapter{name: "google", err: domain.ErrProviderRequest("google", "invalid key")}
	openai := &fakeAdapter{name: "openai", text: "should never run"}
	gw := newTestGateway(bothKeys(), map[string]provider.Adapter{
		"google": google,
		"openai": openai,
	})

	outcome := gw.Call(context.Background(), &domain.CallRequest{
		Prompt:     "hello",
		Service:    "google",
		UserAPIKey: "user-private-key",
	})

	if !outcome.Degraded {
		t.Fatal("Degraded = false, want degraded (no fallback with a user key)")
	}
	if openai.calls != 0 {
		t.Error("user key was retried against a different provider")
	}
	if google.lastKeys[0] != "user-private-key" {
		t.Errorf("adapter key = %v, want the user key", google.lastKeys[0])
	}
}

func TestGateway_UserKeyNeverCrossesProviders(t *testing.T) {
	google := &fakeAdapter{name: "google", err: domain.ErrProviderRequest("google", "down")}
	openai := &fakeAdapter{name: "openai", text: "ok"}
	gw := newTestGateway(bothKeys(), map[string]provider.Adapter{
		"google": google,
		"openai": openai,
	})

	// Without a user key the fallback runs, and it must use the system key.
	gw.Call(context.Background(), &domain.CallRequest{Prompt: "hello"})

	if openai.calls != 1 {
		t.Fatalf("openai calls = %d, want 1", openai.calls)
	}
	if openai.lastKeys[0] != "openai-system-key" {
		t.Errorf("fallback key = %v, want the fallback provider's system key", openai.lastKeys[0])
	}
}

func TestGateway_UnknownServiceFallsBackToDefault(t *testing.T) {
	google := &fakeAdapter{name: "google", text: "default handled it"}
	gw := newTestGateway(bothKeys(), map[string]provider.Adapter{"google": google})

	outcome := gw.Call(context.Background(), &domain.CallRequest{
		Prompt:  "hello",
		Service: "anthropic",
	})

	if outcome.Degraded {
		t.Fatal("Degraded = true, want fallback to the default service")
	}
	if outcome.Provider != "google" {
		t.Errorf("Provider = %v, want google", outcome.Provider)
	}
}

func TestGateway_NoFallbackWhenFallbackKeyMissing(t *testing.T) {
	google := &fakeAdapter{name: "google", err: domain.ErrProviderRequest("google", "down")}
	openai := &fakeAdapter{name: "openai", text: "unreachable"}
	gw := newTestGateway(map[string]string{"google": "google-system-key"}, map[string]provider.Adapter{
		"google": google,
		"openai": openai,
	})

	outcome := gw.Call(context.Background(), &domain.CallRequest{Prompt: "hello"})

	if !outcome.Degraded {
		t.Fatal("Degraded = false, want degraded (fallback has no usable key)")
	}
	if openai.calls != 0 {
		t.Error("fallback attempted without a usable key")
	}
}

func TestOfflineText_Heuristic(t *testing.T) {
	tests := []struct {
		name         string
		systemPrompt string
		wantFragment string
	}{
		{"bias analysis", "You analyze vignettes for Bias in grading", "bias analysis"},
		{"prompt engineering", "You teach prompt engineering basics", "prompt engineering"},
		{"generic", "You are a helpful tutor", "technical difficulty"},
		{"empty", "", "technical difficulty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := offlineText(tt.systemPrompt)
			if !strings.Contains(strings.ToLower(got), tt.wantFragment) {
				t.Errorf("offlineText() missing %q", tt.wantFragment)
			}
			if !strings.Contains(got, "test response") {
				t.Error("offlineText() missing the offline marker")
			}
		})
	}
}
