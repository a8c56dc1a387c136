package provider

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/lailalab/aigateway/internal/domain"
)

// translateGoogleError wraps any Google-side failure as a canonical
// provider request error.
func translateGoogleError(err error) *domain.GatewayError {
	return domain.ErrProviderRequest("google", err.Error())
}

// translateOpenAIError wraps any OpenAI-side failure as a canonical
// provider request error.
func translateOpenAIError(err error) *domain.GatewayError {
	return domain.ErrProviderRequest("openai", err.Error())
}

// googleAPIError builds a canonical error from a non-200 Gemini response.
// The body shape is {"error": {"code": ..., "message": ..., "status": ...}}.
func googleAPIError(statusCode int, body []byte) *domain.GatewayError {
	var parsed struct {
		Error struct {
			Message string `json:"message"`
			Status  string `json:"status"`
		} `json:"error"`
	}
	msg := statusMessage(statusCode)
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error.Message != "" {
		msg = parsed.Error.Message
	}
	return domain.ErrProviderRequest("google", msg).WithStatusCode(statusCode)
}

// openAIAPIError builds a canonical error from a non-200 OpenAI response.
// The body shape is {"error": {"message": ..., "type": ..., "code": ...}}.
func openAIAPIError(statusCode int, body []byte) *domain.GatewayError {
	var parsed struct {
		Error struct {
			Message string `json:"message"`
			Type    string `json:"type"`
		} `json:"error"`
	}
	msg := statusMessage(statusCode)
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error.Message != "" {
		msg = parsed.Error.Message
	}
	return domain.ErrProviderRequest("openai", msg).WithStatusCode(statusCode)
}

func statusMessage(statusCode int) string {
	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return "authentication rejected"
	case http.StatusTooManyRequests:
		return "rate limit or quota exceeded"
	default:
		return fmt.Sprintf("API error (status %d)", statusCode)
	}
}
