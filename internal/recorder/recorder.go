// Package recorder builds interaction records and persists them durably.
//
// Recording never fails visibly: a primary store failure falls back to the
// append-only sink, and a sink failure leaves a full trace in the process
// log. The caller's response is never affected by any of it.
package recorder

import (
	"context"
	"log/slog"
	"time"

	"github.com/lailalab/aigateway/internal/domain"
	"github.com/lailalab/aigateway/internal/session"
	"github.com/lailalab/aigateway/internal/storage"
)

const (
	// messageCap bounds stored message length.
	messageCap = 2000

	// contextValueCap bounds each allow-listed context value.
	contextValueCap = 200

	// persistTimeout bounds the persistence write. The write runs on a
	// context detached from the request so a client disconnect cannot drop
	// a record.
	persistTimeout = 5 * time.Second
)

// contextAllowList is the only set of context keys ever stored. Caller
// context outside this list is dropped, never stringified wholesale.
var contextAllowList = []string{
	"analysis_type",
	"research_context",
	"target_insights",
	"audience_level",
	"vignette_sample",
	"user_question",
}

// RecordOptions carries the AI-turn-only fields and optional context.
type RecordOptions struct {
	Context map[string]string

	// AIModel and ResponseTime apply to AI turns only; they are ignored for
	// user turns so the stored row invariants always hold.
	AIModel      string
	ResponseTime time.Duration
}

// Recorder persists interaction records.
type Recorder struct {
	store    storage.InteractionStore
	fallback storage.InteractionSink
	turns    *session.Tracker
	logger   *slog.Logger
	now      func() time.Time
}

// New creates a recorder. fallback may be nil, in which case a primary
// store failure is traced to the process log only.
func New(store storage.InteractionStore, fallback storage.InteractionSink, turns *session.Tracker, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{
		store:    store,
		fallback: fallback,
		turns:    turns,
		logger:   logger,
		now:      time.Now,
	}
}

// Record builds and persists one interaction record. A user turn advances
// the conversation's turn counter; an AI turn reuses the turn of the user
// message it answers. Record never returns an error and never panics past
// its own boundary.
func (r *Recorder) Record(ctx context.Context, id domain.ConversationIdentity, sender domain.Sender, message string, opts *RecordOptions) {
	if opts == nil {
		opts = &RecordOptions{}
	}

	var turn int
	if sender == domain.SenderUser {
		turn = r.turns.NextTurn(id.SessionID, id.ConversationID)
	} else {
		turn = r.turns.CurrentTurn(id.SessionID, id.ConversationID)
	}

	rec := &domain.InteractionRecord{
		UserID:    id.UserID,
		SessionID: id.SessionID,
		Timestamp: r.now(),
		Module:    id.ConversationID,
		Sender:    sender,
		Turn:      turn,
		Message:   cleanMessage(message),
		Context:   flattenContext(opts.Context),
	}

	if sender == domain.SenderAI {
		rec.AIModel = opts.AIModel
		ms := opts.ResponseTime.Milliseconds()
		rec.ResponseTimeMS = &ms
	}

	r.persist(ctx, rec)
}

// persist writes the record to the primary store, then the fallback sink,
// then the process log. The worst acceptable outcome is a record that only
// exists in diagnostics, never one lost without a trace.
func (r *Recorder) persist(ctx context.Context, rec *domain.InteractionRecord) {
	persistCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
	defer cancel()

	if r.store != nil {
		err := r.store.SaveInteraction(persistCtx, rec)
		if err == nil {
			return
		}
		r.logger.Error("primary interaction store write failed",
			slog.String("session_id", rec.SessionID),
			slog.Int("turn", rec.Turn),
			slog.String("error", err.Error()),
		)
	}

	if r.fallback != nil {
		err := r.fallback.Append(rec)
		if err == nil {
			return
		}
		r.logger.Error("fallback interaction sink write failed",
			slog.String("session_id", rec.SessionID),
			slog.Int("turn", rec.Turn),
			slog.String("error", err.Error()),
		)
	}

	// Last resort: leave the whole record in the process log.
	r.logger.Error("interaction record not persisted",
		slog.String("session_id", rec.SessionID),
		slog.String("module", rec.Module),
		slog.String("sender", string(rec.Sender)),
		slog.Int("turn", rec.Turn),
		slog.String("message", rec.Message),
		slog.String("ai_model", rec.AIModel),
		slog.String("context", rec.Context),
	)
}
