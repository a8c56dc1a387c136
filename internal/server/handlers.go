package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/lailalab/aigateway/internal/credentials"
	"github.com/lailalab/aigateway/internal/domain"
	"github.com/lailalab/aigateway/internal/gateway"
	"github.com/lailalab/aigateway/internal/recorder"
	"github.com/lailalab/aigateway/internal/registry"
	"github.com/lailalab/aigateway/internal/storage"
)

// defaultModule labels chat turns that arrive without a module name.
const defaultModule = "educational_chat"

// Handler serves the gateway's HTTP routes.
type Handler struct {
	gateway  *gateway.Gateway
	recorder *recorder.Recorder
	resolver *credentials.Resolver
	registry *registry.Registry
	store    storage.InteractionStore
	logger   *slog.Logger
}

// NewHandler creates a handler. store may be nil, in which case the log
// listing routes report empty results.
func NewHandler(gw *gateway.Gateway, rec *recorder.Recorder, resolver *credentials.Resolver, reg *registry.Registry, store storage.InteractionStore, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		gateway:  gw,
		recorder: rec,
		resolver: resolver,
		registry: reg,
		store:    store,
		logger:   logger,
	}
}

type chatRequest struct {
	Message      string `json:"message"`
	SystemPrompt string `json:"system_prompt"`
	Vignette     string `json:"vignette"`
	Module       string `json:"module"`
	Service      string `json:"service"`
	Model        string `json:"model"`
	APIKey       string `json:"api_key"`
	SessionID    string `json:"session_id"`
	UserID       *int64 `json:"user_id"`
}

type chatResponse struct {
	Response  string `json:"response"`
	ModelUsed string `json:"model_used"`
	SessionID string `json:"session_id"`
	Status    string `json:"status"`
}

// HandleChat runs one chat turn through the gateway and records both sides
// of it. The AI call result is returned regardless of recording outcome.
func (h *Handler) HandleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = r.Header.Get("X-Session-ID")
	}
	if sessionID == "" {
		sessionID = uuid.New().String()
	}

	module := req.Module
	if module == "" {
		module = defaultModule
	}

	identity := domain.ConversationIdentity{
		UserID:         req.UserID,
		SessionID:      sessionID,
		ConversationID: module,
	}

	userContext := map[string]string{"user_question": req.Message}
	if req.Vignette != "" {
		userContext["vignette_sample"] = req.Vignette
	}
	h.recorder.Record(r.Context(), identity, domain.SenderUser, req.Message, &recorder.RecordOptions{
		Context: userContext,
	})

	prompt := req.Message
	if req.Vignette != "" {
		prompt = "Here is the vignette we're discussing:\n\"" + req.Vignette + "\"\n\nStudent's question/comment: " + req.Message
	}

	start := time.Now()
	outcome := h.gateway.Call(r.Context(), &domain.CallRequest{
		Prompt:       prompt,
		SystemPrompt: req.SystemPrompt,
		Service:      req.Service,
		Model:        req.Model,
		UserAPIKey:   req.APIKey,
	})
	elapsed := time.Since(start)

	h.recorder.Record(r.Context(), identity, domain.SenderAI, outcome.Text, &recorder.RecordOptions{
		Context:      userContext,
		AIModel:      outcome.ModelUsed,
		ResponseTime: elapsed,
	})

	writeJSON(w, http.StatusOK, chatResponse{
		Response:  outcome.Text,
		ModelUsed: outcome.ModelUsed,
		SessionID: sessionID,
		Status:    "success",
	})
}

type modelInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	MaxTokens   int    `json:"max_tokens"`
}

type serviceModels struct {
	Default string      `json:"default"`
	Models  []modelInfo `json:"models"`
}

// HandleModels lists the selectable models per service.
func (h *Handler) HandleModels(w http.ResponseWriter, r *http.Request) {
	out := make(map[string]serviceModels)
	for _, name := range h.registry.Services() {
		desc, _ := h.registry.Get(name)
		models := make([]modelInfo, 0, len(desc.Models))
		for _, m := range desc.Models {
			models = append(models, modelInfo{
				ID:          m.ID,
				Name:        m.DisplayName,
				Description: m.Description,
				MaxTokens:   m.MaxTokens,
			})
		}
		out[name] = serviceModels{Default: desc.DefaultModel, Models: models}
	}
	writeJSON(w, http.StatusOK, out)
}

type serviceStatus struct {
	Available    bool   `json:"available"`
	DefaultModel string `json:"default_model"`
}

type configResponse struct {
	DefaultService string                   `json:"default_service"`
	Services       map[string]serviceStatus `json:"services"`
}

// HandleConfig reports which services have usable system keys.
func (h *Handler) HandleConfig(w http.ResponseWriter, r *http.Request) {
	resp := configResponse{
		DefaultService: h.resolver.DefaultService(),
		Services:       make(map[string]serviceStatus),
	}
	for _, name := range h.registry.Services() {
		resp.Services[name] = serviceStatus{
			Available:    h.resolver.Available(name),
			DefaultModel: h.registry.DefaultModel(name),
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

type logRow struct {
	UserID          *int64  `json:"user_id"`
	SessionID       string  `json:"session_id"`
	Timestamp       string  `json:"timestamp"`
	Module          string  `json:"module"`
	Sender          string  `json:"sender"`
	Turn            int     `json:"turn"`
	Message         string  `json:"message"`
	AIModel         string  `json:"ai_model,omitempty"`
	ResponseTimeSec float64 `json:"response_time_sec,omitempty"`
	Context         string  `json:"context,omitempty"`
}

// HandleLogs lists recent interaction records, newest first.
func (h *Handler) HandleLogs(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeJSON(w, http.StatusOK, []logRow{})
		return
	}

	opts := storage.ListOptions{
		SessionID: r.URL.Query().Get("session_id"),
		Module:    r.URL.Query().Get("module"),
	}
	if limit := r.URL.Query().Get("limit"); limit != "" {
		if n, err := strconv.Atoi(limit); err == nil {
			opts.Limit = n
		}
	}

	records, err := h.store.ListInteractions(r.Context(), opts)
	if err != nil {
		h.logger.Error("list interactions failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "failed to read logs")
		return
	}

	rows := make([]logRow, 0, len(records))
	for _, rec := range records {
		row := logRow{
			UserID:    rec.UserID,
			SessionID: rec.SessionID,
			Timestamp: rec.Timestamp.Format(time.RFC3339),
			Module:    rec.Module,
			Sender:    string(rec.Sender),
			Turn:      rec.Turn,
			Message:   rec.Message,
			AIModel:   rec.AIModel,
			Context:   rec.Context,
		}
		if rec.ResponseTimeMS != nil {
			row.ResponseTimeSec = float64(*rec.ResponseTimeMS) / 1000
		}
		rows = append(rows, row)
	}
	writeJSON(w, http.StatusOK, rows)
}

// HandleLogCount reports how many records a session has logged, used to
// gate features that unlock after a number of interactions.
func (h *Handler) HandleLogCount(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, "session_id is required")
		return
	}

	count := 0
	if h.store != nil {
		var err error
		count, err = h.store.CountBySession(r.Context(), sessionID, r.URL.Query().Get("module"))
		if err != nil {
			h.logger.Error("count interactions failed", slog.String("error", err.Error()))
			writeError(w, http.StatusInternalServerError, "failed to count logs")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]int{"count": count})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
