// Package domain holds the canonical types shared by the gateway and the
// interaction recorder.
package domain

import "time"

// Sender identifies who authored a recorded turn.
type Sender string

const (
	SenderUser Sender = "User"
	SenderAI   Sender = "AI"
)

// OfflineModel is the sentinel model name reported when no provider could
// serve a call and the gateway degraded to a canned response.
const OfflineModel = "offline"

// ConversationIdentity ties a call to a user and a logical conversation.
// SessionID is caller-supplied and opaque; ConversationID distinguishes
// independent chat threads (e.g. "vignette_chat") within one session.
type ConversationIdentity struct {
	// UserID is nil when the caller's identity could not be resolved.
	UserID         *int64
	SessionID      string
	ConversationID string
}

// CallRequest is one generation request as received from the route layer.
// All fields except Prompt are optional.
type CallRequest struct {
	Prompt       string
	SystemPrompt string

	// Service pins a provider by name ("google", "openai"). Empty means
	// the configured default service.
	Service string

	// Model overrides the provider's default model for this call.
	Model string

	// UserAPIKey is an explicit per-call key. When set, the gateway never
	// switches providers on failure (the key must not leak to a different
	// service).
	UserAPIKey string
}

// CallOutcome is the terminal result of a gateway call. Every call produces
// exactly one outcome; there is no error-returning exit.
type CallOutcome struct {
	Text      string
	ModelUsed string
	Provider  string

	// Degraded is true when no provider was usable and Text is a canned
	// offline response. ModelUsed is OfflineModel in that case.
	Degraded bool
}

// InteractionRecord is one persisted turn, one row per turn per sender.
// Records are immutable once built.
type InteractionRecord struct {
	UserID    *int64
	SessionID string
	Timestamp time.Time

	// Module is the conversation/category label, e.g. "vignette_chat".
	Module string

	Sender  Sender
	Turn    int
	Message string

	// AIModel is set only for AI turns.
	AIModel string

	// ResponseTimeMS is set only for AI turns.
	ResponseTimeMS *int64

	// Context is the flattened allow-listed key/value context,
	// "key: value | key: value".
	Context string
}
